/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the convocation engine server. Handles
  configuration, dependency injection, admin bootstrap, and graceful
  shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Initialize SQLite store
  3. Pick the notifier (SMTP when configured, log-only otherwise)
  4. Create the engine and API handler
  5. Seed the admin user if none exists
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: convoca.db)
           Use ":memory:" for an in-memory database

ENVIRONMENT:
  JWT_SECRET      Token signing secret (required outside dev)
  JWT_EXPIRES     Token lifetime, Go duration (default: 1h)
  ADMIN_USERNAME  Bootstrap admin username (default: admin)
  ADMIN_PASSWORD  Bootstrap admin password (default: admin123, dev only)
  MAIL_*          SMTP settings, see mail/smtp.go

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/convoca.db"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/convoca/convocation-engine/api"
	"github.com/convoca/convocation-engine/engine"
	"github.com/convoca/convocation-engine/mail"
	"github.com/convoca/convocation-engine/store/sqlite"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "convoca.db", "SQLite database path")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Notifier: SMTP when configured, log-only otherwise.
	var notifier engine.Notifier = engine.LogNotifier{}
	if cfg := mail.ConfigFromEnv(); cfg.Enabled() {
		notifier = mail.NewSMTPNotifier(cfg)
		log.Printf("SMTP delivery enabled via %s:%d", cfg.Host, cfg.Port)
	} else {
		log.Printf("SMTP not configured; notifications are logged only")
	}

	eng := engine.New(store, engine.WithNotifier(notifier))

	// Tokens
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
		log.Printf("Warning: JWT_SECRET not set, using development secret")
	}
	expiry := time.Hour
	if raw := os.Getenv("JWT_EXPIRES"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			expiry = d
		}
	}
	tokens := api.NewTokenManager(secret, expiry)

	// Initialize handler
	handler := api.NewHandler(store, eng, tokens)

	if err := seedAdmin(context.Background(), store); err != nil {
		log.Printf("Warning: Failed to seed admin user: %v", err)
	}

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// seedAdmin creates the bootstrap admin user on first run so a fresh
// database is immediately usable.
func seedAdmin(ctx context.Context, store *sqlite.Store) error {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	existing, err := store.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Printf("Warning: ADMIN_PASSWORD not set, using default credentials %q", username)
	}
	hash, err := api.HashPassword(password)
	if err != nil {
		return err
	}

	user := engine.User{
		ID:           engine.UserID(uuid.NewString()),
		Username:     username,
		Email:        os.Getenv("ADMIN_EMAIL"),
		PasswordHash: hash,
		Role:         "ADMIN",
		Active:       true,
		CreatedAt:    time.Now(),
	}
	if err := store.SaveUser(ctx, user); err != nil {
		return err
	}
	log.Printf("Seeded admin user %q", username)
	return nil
}
