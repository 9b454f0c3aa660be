/*
handlers.go - HTTP API handlers for the convocation system

PURPOSE:
  Exposes the convocation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Auth:
    POST   /api/auth/login             Exchange credentials for a token
    GET    /api/auth/verify            Validate a token, return its user

  Areas:
    GET    /api/areas                  List areas
    POST   /api/areas                  Create area
    PUT    /api/areas/{id}             Rename area
    DELETE /api/areas/{id}             Delete area

  Employees:
    GET    /api/employees              List (q=, area_id= filters)
    POST   /api/employees              Create employee
    PUT    /api/employees/{id}         Update employee
    DELETE /api/employees/{id}         Soft delete (status -> INACTIVE)

  Convocations:
    GET    /api/convocations           List with rosters
    GET    /api/convocations/{id}      Get one with roster
    POST   /api/convocations           Create (roster build)
    POST   /api/convocations/{id}/send Send notifications, mark SENT
    PATCH  /api/convocations/{id}/attendances  Batch attendance update
    DELETE /api/convocations/{id}      Delete (DRAFT only)

  Penalties:
    GET    /api/penalties              List all
    GET    /api/penalties/employee/{id} List one employee's
    POST   /api/penalties/manual       Manual penalty
    PATCH  /api/penalties/{id}         Edit / deactivate

  Attendance:
    GET    /api/attendance?convocation_id=  Roster detail for a convocation
    PATCH  /api/attendance/{convocationID}  Batch attendance update

  Misc:
    GET    /api/users                  List users
    GET    /api/dashboard              Aggregate counters
    GET    /api/reports/convocations   Attendance totals per convocation
    GET    /api/reports/employees      Employee listing for reports

ERROR HANDLING:
  Engine errors map onto HTTP statuses through their classifiers:
  - 400: validation, no-eligible-employees (with rejection details)
  - 401/403: authentication/authorization
  - 404: unknown ids
  - 409: state machine violations, duplicate names
  - 500: everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - auth.go: Token issuance and middleware
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/convoca/convocation-engine/engine"
	"github.com/convoca/convocation-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Engine *engine.Engine
	Tokens *TokenManager

	validate *validator.Validate
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(store *sqlite.Store, eng *engine.Engine, tokens *TokenManager) *Handler {
	return &Handler{
		Store:    store,
		Engine:   eng,
		Tokens:   tokens,
		validate: validator.New(),
	}
}

// decodeValid decodes a JSON body into dst and runs struct validation.
func (h *Handler) decodeValid(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return h.validate.Struct(dst)
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login exchanges credentials for a signed token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing credentials", err)
		return
	}

	user, err := h.Store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Login failed", err)
		return
	}
	if user == nil || !user.Active || !CheckPassword(user.PasswordHash, req.Password) {
		// One message for both cases; don't leak which credential failed.
		writeError(w, http.StatusUnauthorized, "Invalid username or password", nil)
		return
	}

	token, err := h.Tokens.Issue(*user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: userDTO(*user)})
}

// Verify validates the caller's token and returns the matching user.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	user, err := h.Store.GetUser(r.Context(), engine.UserID(claims.Subject))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Verification failed", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "User no longer exists", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": userDTO(*user)})
}

// ListUsers returns all users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = userDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// AREA HANDLERS
// =============================================================================

// ListAreas returns all areas.
func (h *Handler) ListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.Store.ListAreas(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list areas", err)
		return
	}
	dtos := make([]AreaDTO, len(areas))
	for i, a := range areas {
		dtos[i] = areaDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateArea creates an area with a normalized unique name.
func (h *Handler) CreateArea(w http.ResponseWriter, r *http.Request) {
	var req SaveAreaRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Area name is required", err)
		return
	}
	name := engine.NormalizeAreaName(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Area name is required", nil)
		return
	}

	area := engine.Area{ID: engine.AreaID(uuid.NewString()), Name: name, CreatedAt: time.Now()}
	if err := h.Store.SaveArea(r.Context(), area); err != nil {
		writeEngineError(w, "Failed to create area", err)
		return
	}
	writeJSON(w, http.StatusCreated, areaDTO(area))
}

// UpdateArea renames an area.
func (h *Handler) UpdateArea(w http.ResponseWriter, r *http.Request) {
	id := engine.AreaID(chi.URLParam(r, "id"))
	var req SaveAreaRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Area name is required", err)
		return
	}
	name := engine.NormalizeAreaName(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Area name is required", nil)
		return
	}

	area, err := h.Store.GetArea(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load area", err)
		return
	}
	if area == nil {
		writeError(w, http.StatusNotFound, "Area not found", nil)
		return
	}

	area.Name = name
	if err := h.Store.UpdateArea(r.Context(), *area); err != nil {
		writeEngineError(w, "Failed to update area", err)
		return
	}
	writeJSON(w, http.StatusOK, areaDTO(*area))
}

// DeleteArea removes an area.
func (h *Handler) DeleteArea(w http.ResponseWriter, r *http.Request) {
	id := engine.AreaID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteArea(r.Context(), id); err != nil {
		writeEngineError(w, "Failed to delete area", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns employees with their active penalties annotated.
// Supports q= (name or national-id substring) and area_id= filters;
// INACTIVE employees are hidden.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	f := engine.EmployeeFilter{
		Query:  r.URL.Query().Get("q"),
		AreaID: engine.AreaID(r.URL.Query().Get("area_id")),
	}
	employees, err := h.Store.ListEmployees(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	// Single consistent read of the active ledger; currently-blocking
	// penalties are annotated per employee.
	active, err := h.Store.ListPenalties(r.Context(), engine.PenaltyFilter{ActiveOnly: true})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load penalties", err)
		return
	}
	now := time.Now()
	blocking := make(map[engine.EmployeeID][]PenaltyDTO)
	for _, p := range active {
		if p.Window().Contains(now) {
			blocking[p.EmployeeID] = append(blocking[p.EmployeeID], penaltyDTO(p))
		}
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dto := employeeDTO(e)
		dto.Penalties = blocking[e.ID]
		dtos[i] = dto
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee registers a new ACTIVE employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req SaveEmployeeRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Incomplete employee data", err)
		return
	}

	area, err := h.Store.GetArea(r.Context(), engine.AreaID(req.AreaID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load area", err)
		return
	}
	if area == nil {
		writeError(w, http.StatusBadRequest, "Unknown area", nil)
		return
	}

	emp := engine.Employee{
		ID:         engine.EmployeeID(uuid.NewString()),
		NationalID: req.NationalID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		AreaID:     area.ID,
		Status:     engine.EmployeeActive,
		CreatedAt:  time.Now(),
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeEngineError(w, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, employeeDTO(emp))
}

// UpdateEmployee overwrites an employee record.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))
	var req SaveEmployeeRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Incomplete employee data", err)
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	emp.NationalID = req.NationalID
	emp.FirstName = req.FirstName
	emp.LastName = req.LastName
	emp.Email = req.Email
	emp.Phone = req.Phone
	emp.Address = req.Address
	emp.AreaID = engine.AreaID(req.AreaID)
	if req.Status != "" {
		emp.Status = engine.EmployeeStatus(req.Status)
	}
	if err := h.Store.SaveEmployee(r.Context(), *emp); err != nil {
		writeEngineError(w, "Failed to update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, employeeDTO(*emp))
}

// DeactivateEmployee soft-deletes: status flips to INACTIVE, history stays.
func (h *Handler) DeactivateEmployee(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))
	if err := h.Store.SetEmployeeStatus(r.Context(), id, engine.EmployeeInactive); err != nil {
		writeEngineError(w, "Failed to deactivate employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// =============================================================================
// CONVOCATION HANDLERS
// =============================================================================

// ListConvocations returns all convocations with their rosters, newest
// first.
func (h *Handler) ListConvocations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.Store.ListConvocations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list convocations", err)
		return
	}

	dtos := make([]ConvocationDTO, len(convs))
	for i, c := range convs {
		dto := convocationDTO(c)
		roster, err := h.rosterDTOs(r, c.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load roster", err)
			return
		}
		dto.Roster = roster
		dtos[i] = dto
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetConvocation returns one convocation with its roster.
func (h *Handler) GetConvocation(w http.ResponseWriter, r *http.Request) {
	id := engine.ConvocationID(chi.URLParam(r, "id"))
	conv, err := h.Store.GetConvocation(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get convocation", err)
		return
	}
	if conv == nil {
		writeError(w, http.StatusNotFound, "Convocation not found", nil)
		return
	}

	dto := convocationDTO(*conv)
	roster, err := h.rosterDTOs(r, conv.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load roster", err)
		return
	}
	dto.Roster = roster
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) rosterDTOs(r *http.Request, id engine.ConvocationID) ([]RosterEntryDTO, error) {
	details, err := h.Store.ListRosterDetail(r.Context(), id)
	if err != nil {
		return nil, err
	}
	out := make([]RosterEntryDTO, len(details))
	for i, d := range details {
		out[i] = RosterEntryDTO{
			EmployeeID: string(d.Employee.ID),
			Name:       d.Employee.FullName(),
			Area:       d.AreaName,
			Email:      d.Employee.Email,
			Status:     string(d.Entry.Status),
			Comment:    d.Entry.Comment,
		}
	}
	return out, nil
}

// CreateConvocation builds the roster and persists the convocation.
func (h *Handler) CreateConvocation(w http.ResponseWriter, r *http.Request) {
	var req CreateConvocationRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Title, work date and employees are required", err)
		return
	}
	workDate, err := time.Parse(dateLayout, req.WorkDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid work_date format (use YYYY-MM-DD)", err)
		return
	}

	ids := make([]engine.EmployeeID, len(req.EmployeeIDs))
	for i, id := range req.EmployeeIDs {
		ids[i] = engine.EmployeeID(id)
	}

	result, err := h.Engine.BuildRoster(r.Context(), engine.RosterRequest{
		Title:       req.Title,
		Description: req.Description,
		WorkDate:    workDate,
		EmployeeIDs: ids,
		CreatedBy:   actorFrom(r),
	})
	if err != nil {
		writeEngineError(w, "Failed to create convocation", err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateConvocationResponse{
		ID:       string(result.Convocation.ID),
		Accepted: len(result.Accepted),
		Rejected: len(result.Rejected),
		Details:  result.Rejected,
	})
}

// SendConvocation notifies the roster and marks the convocation SENT.
func (h *Handler) SendConvocation(w http.ResponseWriter, r *http.Request) {
	id := engine.ConvocationID(chi.URLParam(r, "id"))
	result, err := h.Engine.Send(r.Context(), id)
	if err != nil {
		writeEngineError(w, "Failed to send convocation", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"sent":  result.Sent,
		"total": result.Total,
	})
}

// RecordAttendances applies a batch of attendance updates.
func (h *Handler) RecordAttendances(w http.ResponseWriter, r *http.Request) {
	id := engine.ConvocationID(chi.URLParam(r, "id"))
	h.recordAttendanceBatch(w, r, id)
}

// RecordAttendancesByPath is the /api/attendance/{convocationID} variant
// of the same operation.
func (h *Handler) RecordAttendancesByPath(w http.ResponseWriter, r *http.Request) {
	id := engine.ConvocationID(chi.URLParam(r, "convocationID"))
	h.recordAttendanceBatch(w, r, id)
}

func (h *Handler) recordAttendanceBatch(w http.ResponseWriter, r *http.Request, id engine.ConvocationID) {
	var req AttendanceUpdateRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid attendance payload", err)
		return
	}

	updates := make([]engine.AttendanceUpdate, 0, len(req.Updates))
	for _, u := range req.Updates {
		status, err := engine.NormalizeAttendanceStatus(u.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Unknown attendance status", err)
			return
		}
		updates = append(updates, engine.AttendanceUpdate{
			EmployeeID: engine.EmployeeID(u.EmployeeID),
			Status:     status,
			Comment:    u.Comment,
		})
	}

	result, err := h.Engine.RecordAttendance(r.Context(), id, updates, actorFrom(r))
	if err != nil {
		writeEngineError(w, "Failed to record attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, AttendanceUpdateResponse{
		Applied: result.Applied,
		Failed:  result.Failed,
		Items:   result.Items,
	})
}

// DeleteConvocation removes a DRAFT convocation and its roster.
func (h *Handler) DeleteConvocation(w http.ResponseWriter, r *http.Request) {
	id := engine.ConvocationID(chi.URLParam(r, "id"))
	if err := h.Engine.Delete(r.Context(), id); err != nil {
		writeEngineError(w, "Failed to delete convocation", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// GetAttendance returns the roster detail for a convocation
// (?convocation_id=).
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	id := engine.ConvocationID(r.URL.Query().Get("convocation_id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "convocation_id parameter is required", nil)
		return
	}
	conv, err := h.Store.GetConvocation(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load convocation", err)
		return
	}
	if conv == nil {
		writeError(w, http.StatusNotFound, "Convocation not found", nil)
		return
	}
	roster, err := h.rosterDTOs(r, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load roster", err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

// =============================================================================
// PENALTY HANDLERS
// =============================================================================

// ListPenalties returns all penalties, newest window first.
func (h *Handler) ListPenalties(w http.ResponseWriter, r *http.Request) {
	penalties, err := h.Store.ListPenalties(r.Context(), engine.PenaltyFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list penalties", err)
		return
	}
	dtos := make([]PenaltyDTO, len(penalties))
	for i, p := range penalties {
		dtos[i] = penaltyDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListEmployeePenalties returns one employee's penalties.
func (h *Handler) ListEmployeePenalties(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))
	penalties, err := h.Store.ListPenalties(r.Context(), engine.PenaltyFilter{EmployeeID: id})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list penalties", err)
		return
	}
	dtos := make([]PenaltyDTO, len(penalties))
	for i, p := range penalties {
		dtos[i] = penaltyDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateManualPenalty records an administrator-issued penalty.
func (h *Handler) CreateManualPenalty(w http.ResponseWriter, r *http.Request) {
	var req ManualPenaltyRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "employee_id, reason, start and end are required", err)
		return
	}
	start, err := time.Parse(dateLayout, req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
		return
	}
	end, err := time.Parse(dateLayout, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
		return
	}

	p, err := h.Engine.PenalizeManually(r.Context(), engine.ManualPenaltyRequest{
		EmployeeID: engine.EmployeeID(req.EmployeeID),
		Reason:     req.Reason,
		Start:      start,
		End:        end,
		CreatedBy:  actorFrom(r),
	})
	if err != nil {
		writeEngineError(w, "Failed to penalize employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, penaltyDTO(*p))
}

// PatchPenalty edits a penalty's reason, window or active flag.
func (h *Handler) PatchPenalty(w http.ResponseWriter, r *http.Request) {
	id := engine.PenaltyID(chi.URLParam(r, "id"))
	var req PenaltyPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	patch := engine.PenaltyPatch{Reason: req.Reason, Active: req.Active}
	if req.Start != nil {
		t, err := time.Parse(dateLayout, *req.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
			return
		}
		patch.Start = &t
	}
	if req.End != nil {
		t, err := time.Parse(dateLayout, *req.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
			return
		}
		patch.End = &t
	}

	p, err := h.Engine.UpdatePenalty(r.Context(), id, patch)
	if err != nil {
		writeEngineError(w, "Failed to update penalty", err)
		return
	}
	writeJSON(w, http.StatusOK, penaltyDTO(*p))
}

// =============================================================================
// DASHBOARD AND REPORTS
// =============================================================================

// Dashboard returns the aggregate counters.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.Stats(r.Context(), time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, DashboardDTO{
		EmployeesTotal:     st.EmployeesActive + st.EmployeesInactive,
		EmployeesActive:    st.EmployeesActive,
		EmployeesInactive:  st.EmployeesInactive,
		ConvocationsTotal:  st.ConvocationsOpen + st.ConvocationsClosed,
		ConvocationsOpen:   st.ConvocationsOpen,
		ConvocationsClosed: st.ConvocationsClosed,
		PenaltiesActive:    st.PenaltiesActive,
		PenaltiesTotal:     st.PenaltiesTotal,
		AreasTotal:         st.AreasTotal,
	})
}

// ConvocationReport aggregates attendance totals per convocation.
func (h *Handler) ConvocationReport(w http.ResponseWriter, r *http.Request) {
	convs, err := h.Store.ListConvocations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list convocations", err)
		return
	}

	out := make([]ConvocationReportDTO, 0, len(convs))
	for _, c := range convs {
		roster, err := h.Store.ListRoster(r.Context(), c.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load roster", err)
			return
		}

		var attended, absent, justified int
		for _, e := range roster {
			switch e.Status {
			case engine.AttendanceAttended:
				attended++
			case engine.AttendanceAbsent:
				absent++
			case engine.AttendanceJustified:
				justified++
			}
		}

		// Exact percentage; decimal avoids float drift on odd totals.
		rate := decimal.Zero
		if len(roster) > 0 {
			rate = decimal.NewFromInt(int64(attended)).
				Div(decimal.NewFromInt(int64(len(roster)))).
				Mul(decimal.NewFromInt(100)).
				Round(2)
		}

		out = append(out, ConvocationReportDTO{
			ID:             string(c.ID),
			Title:          c.Title,
			WorkDate:       c.WorkDate.Format(dateLayout),
			Status:         string(c.Status),
			Total:          len(roster),
			Attended:       attended,
			Absent:         absent,
			Justified:      justified,
			AttendanceRate: rate.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// EmployeeReport lists employees for reporting, with status and area
// filters and INACTIVE rows included.
func (h *Handler) EmployeeReport(w http.ResponseWriter, r *http.Request) {
	f := engine.EmployeeFilter{
		Status:          engine.EmployeeStatus(r.URL.Query().Get("status")),
		AreaID:          engine.AreaID(r.URL.Query().Get("area_id")),
		IncludeInactive: true,
	}
	employees, err := h.Store.ListEmployees(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = employeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps an engine error onto an HTTP status, attaching
// rejection details when a roster build excluded everyone.
func writeEngineError(w http.ResponseWriter, message string, err error) {
	var noEligible *engine.NoEligibleEmployeesError
	if errors.As(err, &noEligible) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:    "All requested employees were excluded",
			Details:  err.Error(),
			Rejected: noEligible.Rejected,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case engine.IsNotFound(err):
		status = http.StatusNotFound
	case engine.IsConflict(err):
		status = http.StatusConflict
	case engine.IsClientError(err):
		status = http.StatusBadRequest
	}
	writeError(w, status, message, err)
}
