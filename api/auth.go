/*
auth.go - Token issuance, verification, and request authentication

PURPOSE:
  JWT-based authentication for the API. Login exchanges credentials for a
  signed token; the middleware validates it on every protected route and
  threads the caller's identity into the request context so mutations can
  stamp CreatedBy.

TOKEN TRANSPORT:
  Authorization: Bearer <token> is the canonical transport. A ?token=
  query parameter is also accepted so browser-initiated downloads (report
  links) can authenticate without headers.

ROLES:
  RequireRole guards admin-only routes. Roles are free-form strings
  assigned at user creation; the middleware only compares membership.
*/
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/convoca/convocation-engine/engine"
)

// Claims is the JWT payload for an authenticated user.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies API tokens.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager creates a TokenManager. Expiry defaults to one hour
// when zero.
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &TokenManager{secret: []byte(secret), expiry: expiry}
}

// Issue signs a token for the given user.
func (tm *TokenManager) Issue(u engine.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
}

// Parse validates a token string and returns its claims.
func (tm *TokenManager) Parse(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// HashPassword returns the bcrypt hash used for stored credentials.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword compares a stored hash with a login attempt.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type ctxKey int

const claimsKey ctxKey = 0

// RequireAuth rejects requests without a valid token and stores the
// claims in the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := ""
		if ah := r.Header.Get("Authorization"); strings.HasPrefix(ah, "Bearer ") {
			raw = strings.TrimPrefix(ah, "Bearer ")
		}
		// Query-param fallback for download links.
		if raw == "" {
			raw = r.URL.Query().Get("token")
		}
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "Missing token", nil)
			return
		}

		claims, err := h.Tokens.Parse(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole guards a route to the given roles. Must be nested inside
// RequireAuth.
func (h *Handler) RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFrom(r)
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
				return
			}
			if !allowed[claims.Role] {
				writeError(w, http.StatusForbidden, "Role not authorized", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func claimsFrom(r *http.Request) *Claims {
	claims, _ := r.Context().Value(claimsKey).(*Claims)
	return claims
}

// actorFrom returns the authenticated caller's id, or the system identity
// when the route is reachable without auth.
func actorFrom(r *http.Request) engine.UserID {
	if c := claimsFrom(r); c != nil {
		return engine.UserID(c.Subject)
	}
	return engine.SystemUser
}
