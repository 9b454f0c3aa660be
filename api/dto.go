/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  them through the shared validator before touching the engine. Dates
  travel as "YYYY-MM-DD" strings and are parsed at this boundary, as are
  legacy attendance-status literals.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/types.go: The domain model behind them
*/
package api

import (
	"time"

	"github.com/convoca/convocation-engine/engine"
)

const dateLayout = "2006-01-02"

// =============================================================================
// ERROR RESPONSE
// =============================================================================

// ErrorResponse is the uniform error body. Rejected is populated only for
// roster builds where every candidate was excluded.
type ErrorResponse struct {
	Error    string             `json:"error"`
	Details  string             `json:"details,omitempty"`
	Rejected []engine.Rejection `json:"rejected,omitempty"`
}

// =============================================================================
// AUTH
// =============================================================================

// LoginRequest carries user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserDTO represents a user in API responses. Password hashes never leave
// the server.
type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Active   bool   `json:"active"`
}

// LoginResponse carries the issued token and its user.
type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

func userDTO(u engine.User) UserDTO {
	return UserDTO{
		ID:       string(u.ID),
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Active:   u.Active,
	}
}

// =============================================================================
// AREAS
// =============================================================================

type AreaDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

type SaveAreaRequest struct {
	Name string `json:"name" validate:"required"`
}

func areaDTO(a engine.Area) AreaDTO {
	return AreaDTO{ID: string(a.ID), Name: a.Name, CreatedAt: a.CreatedAt.Format(time.RFC3339)}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID         string             `json:"id"`
	NationalID string             `json:"national_id"`
	FirstName  string             `json:"first_name"`
	LastName   string             `json:"last_name"`
	Email      string             `json:"email,omitempty"`
	Phone      string             `json:"phone,omitempty"`
	Address    string             `json:"address,omitempty"`
	AreaID     string             `json:"area_id"`
	Status     string             `json:"status"`
	CreatedAt  string             `json:"created_at,omitempty"`
	Penalties  []PenaltyDTO       `json:"active_penalties,omitempty"`
}

type SaveEmployeeRequest struct {
	NationalID string `json:"national_id" validate:"required"`
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	AreaID     string `json:"area_id" validate:"required"`
	Status     string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

func employeeDTO(e engine.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         string(e.ID),
		NationalID: e.NationalID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		Phone:      e.Phone,
		Address:    e.Address,
		AreaID:     string(e.AreaID),
		Status:     string(e.Status),
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// PENALTIES
// =============================================================================

type PenaltyDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Active     bool   `json:"active"`
	Origin     string `json:"origin"`
	CreatedBy  string `json:"created_by,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

type ManualPenaltyRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Reason     string `json:"reason" validate:"required"`
	Start      string `json:"start" validate:"required"`
	End        string `json:"end" validate:"required"`
}

// PenaltyPatchRequest edits a penalty. Absent fields stay unchanged.
type PenaltyPatchRequest struct {
	Reason *string `json:"reason,omitempty"`
	Start  *string `json:"start,omitempty"`
	End    *string `json:"end,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

func penaltyDTO(p engine.Penalty) PenaltyDTO {
	return PenaltyDTO{
		ID:         string(p.ID),
		EmployeeID: string(p.EmployeeID),
		Reason:     p.Reason,
		Start:      p.Start.Format(dateLayout),
		End:        p.End.Format(dateLayout),
		Active:     p.Active,
		Origin:     string(p.Origin),
		CreatedBy:  string(p.CreatedBy),
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// CONVOCATIONS
// =============================================================================

type ConvocationDTO struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	WorkDate    string           `json:"work_date"`
	Status      string           `json:"status"`
	CreatedBy   string           `json:"created_by,omitempty"`
	CreatedAt   string           `json:"created_at,omitempty"`
	Roster      []RosterEntryDTO `json:"roster,omitempty"`
}

type RosterEntryDTO struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name,omitempty"`
	Area       string `json:"area,omitempty"`
	Email      string `json:"email,omitempty"`
	Status     string `json:"status"`
	Comment    string `json:"comment,omitempty"`
}

type CreateConvocationRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	WorkDate    string   `json:"work_date" validate:"required"`
	EmployeeIDs []string `json:"employees" validate:"required,min=1"`
}

// CreateConvocationResponse reports the roster partition.
type CreateConvocationResponse struct {
	ID       string             `json:"id"`
	Accepted int                `json:"accepted"`
	Rejected int                `json:"rejected"`
	Details  []engine.Rejection `json:"rejected_details,omitempty"`
}

// AttendanceUpdateItem is one item of an attendance batch. Status accepts
// canonical and legacy literals; normalization happens in the handler.
type AttendanceUpdateItem struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Status     string `json:"status" validate:"required"`
	Comment    string `json:"comment"`
}

type AttendanceUpdateRequest struct {
	Updates []AttendanceUpdateItem `json:"updates" validate:"required,min=1,dive"`
}

// AttendanceUpdateResponse reports per-item outcomes.
type AttendanceUpdateResponse struct {
	Applied int                           `json:"applied"`
	Failed  int                           `json:"failed"`
	Items   []engine.AttendanceItemResult `json:"items"`
}

func convocationDTO(c engine.Convocation) ConvocationDTO {
	return ConvocationDTO{
		ID:          string(c.ID),
		Title:       c.Title,
		Description: c.Description,
		WorkDate:    c.WorkDate.Format(dateLayout),
		Status:      string(c.Status),
		CreatedBy:   string(c.CreatedBy),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// DASHBOARD AND REPORTS
// =============================================================================

type DashboardDTO struct {
	EmployeesTotal     int `json:"employees_total"`
	EmployeesActive    int `json:"employees_active"`
	EmployeesInactive  int `json:"employees_inactive"`
	ConvocationsTotal  int `json:"convocations_total"`
	ConvocationsOpen   int `json:"convocations_open"`
	ConvocationsClosed int `json:"convocations_closed"`
	PenaltiesActive    int `json:"penalties_active"`
	PenaltiesTotal     int `json:"penalties_total"`
	AreasTotal         int `json:"areas_total"`
}

// ConvocationReportDTO aggregates attendance per convocation.
type ConvocationReportDTO struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	WorkDate       string `json:"work_date"`
	Status         string `json:"status"`
	Total          int    `json:"total"`
	Attended       int    `json:"attended"`
	Absent         int    `json:"absent"`
	Justified      int    `json:"justified"`
	AttendanceRate string `json:"attendance_rate"` // percentage, 2 decimals
}
