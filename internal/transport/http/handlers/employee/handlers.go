package employeehandler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/employee"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, e employee.Employee) (*employee.Employee, error)
	Get(ctx context.Context, id int64) (*employee.Employee, error)
	List(ctx context.Context) ([]employee.EmployeeWithProfessional, error)
	Update(ctx context.Context, id int64, e employee.Employee) (*employee.Employee, error)
	Delete(ctx context.Context, id int64) error
	UpsertProfessional(ctx context.Context, empID int64, p employee.ProfessionalInfo) (*employee.ProfessionalInfo, error)
	GetProfessional(ctx context.Context, empID int64) (*employee.ProfessionalInfo, error)
	DeleteProfessional(ctx context.Context, empID int64) error
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermRecordsRead)
	write := middleware.RequirePermission(auth.PermRecordsWrite)

	r.Route("/employees", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.Route("/{empID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDelete)
			r.With(read).Get("/professional", h.handleGetProfessional)
			r.With(write).Put("/professional", h.handleUpsertProfessional)
			r.With(write).Delete("/professional", h.handleDeleteProfessional)
		})
	})
}

type employeeRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	DOB       string `json:"dob"`
	Gender    string `json:"gender"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	HireDate  string `json:"hireDate"`
}

type professionalRequest struct {
	Designation       string   `json:"designation"`
	Department        string   `json:"department"`
	CurrentSalary     *float64 `json:"currentSalary"`
	PreviousSalary    *float64 `json:"previousSalary"`
	LastIncrement     string   `json:"lastIncrement"`
	Skills            []string `json:"skills"`
	PerformanceRating *float64 `json:"performanceRating"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	rows, err := h.Service.List(r.Context())
	if err != nil {
		h.fail(w, reqID, err, "employee_list_failed", "failed to list employees")
		return
	}
	api.Success(w, rows, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload employeeRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	emp, ok := bindEmployee(w, reqID, payload)
	if !ok {
		return
	}
	created, err := h.Service.Create(r.Context(), emp)
	if err != nil {
		h.fail(w, reqID, err, "employee_create_failed", "failed to create employee")
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := pathEmpID(w, r)
	if !ok {
		return
	}
	emp, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, reqID, err, "employee_get_failed", "failed to load employee")
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := pathEmpID(w, r)
	if !ok {
		return
	}
	var payload employeeRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	emp, ok := bindEmployee(w, reqID, payload)
	if !ok {
		return
	}
	updated, err := h.Service.Update(r.Context(), id, emp)
	if err != nil {
		h.fail(w, reqID, err, "employee_update_failed", "failed to update employee")
		return
	}
	api.Success(w, updated, reqID)
}

// handleDelete removes the employee; the professional row goes with it. Personnel documents are
// untouched.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := pathEmpID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.fail(w, reqID, err, "employee_delete_failed", "failed to delete employee")
		return
	}
	api.Success(w, map[string]any{"empId": id, "status": "deleted"}, reqID)
}

func (h *Handler) handleGetProfessional(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := pathEmpID(w, r)
	if !ok {
		return
	}
	info, err := h.Service.GetProfessional(r.Context(), id)
	if err != nil {
		h.fail(w, reqID, err, "professional_get_failed", "failed to load professional info")
		return
	}
	api.Success(w, info, reqID)
}

func (h *Handler) handleUpsertProfessional(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := pathEmpID(w, r)
	if !ok {
		return
	}
	var payload professionalRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}

	v := shared.NewValidator()
	v.MaxLength("designation", payload.Designation, 100)
	v.MaxLength("department", payload.Department, 100)
	v.Amount("currentSalary", payload.CurrentSalary, employee.MaxSalary)
	v.Amount("previousSalary", payload.PreviousSalary, employee.MaxSalary)
	if rating := payload.PerformanceRating; rating != nil && (*rating < 0 || *rating > employee.MaxPerformanceRating) {
		v.Add("performanceRating", "must be between 0 and 5")
	}
	lastIncrement := optionalDate(v, "lastIncrement", payload.LastIncrement)
	if v.Reject(w, reqID) {
		return
	}

	info, err := h.Service.UpsertProfessional(r.Context(), id, employee.ProfessionalInfo{
		Designation:       strings.TrimSpace(payload.Designation),
		Department:        strings.TrimSpace(payload.Department),
		CurrentSalary:     payload.CurrentSalary,
		PreviousSalary:    payload.PreviousSalary,
		LastIncrement:     lastIncrement,
		Skills:            employee.NormalizeSkills(payload.Skills),
		PerformanceRating: payload.PerformanceRating,
	})
	if err != nil {
		h.fail(w, reqID, err, "professional_upsert_failed", "failed to save professional info")
		return
	}
	api.Success(w, info, reqID)
}

func (h *Handler) handleDeleteProfessional(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := pathEmpID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteProfessional(r.Context(), id); err != nil {
		h.fail(w, reqID, err, "professional_delete_failed", "failed to delete professional info")
		return
	}
	api.Success(w, map[string]any{"empId": id, "status": "deleted"}, reqID)
}

func (h *Handler) fail(w http.ResponseWriter, reqID string, err error, code, message string) {
	switch {
	case errors.Is(err, employee.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, employee.ErrEmailExists):
		api.Fail(w, http.StatusConflict, "email_exists", err.Error(), reqID)
	default:
		log.WithError(err).WithField("requestId", reqID).Error(message)
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}

func pathEmpID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := shared.PathID(r, "empID")
	if !ok {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "empId", Reason: "must be a positive integer"}})
	}
	return id, ok
}

func bindEmployee(w http.ResponseWriter, reqID string, payload employeeRequest) (employee.Employee, bool) {
	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "is required")
	v.Required("lastName", payload.LastName, "is required")
	v.MaxLength("firstName", payload.FirstName, 50)
	v.MaxLength("lastName", payload.LastName, 50)
	v.Email("email", payload.Email)
	v.MaxLength("email", payload.Email, 120)
	v.MaxLength("phone", payload.Phone, 20)

	gender := ""
	if strings.TrimSpace(payload.Gender) != "" {
		canonical, ok := employee.CanonicalGender(payload.Gender)
		if !ok {
			v.Add("gender", "must be one of "+strings.Join(employee.Genders, ", "))
		}
		gender = canonical
	}

	dob := optionalDate(v, "dob", payload.DOB)
	hireDate := optionalDate(v, "hireDate", payload.HireDate)
	if dob != nil && hireDate != nil {
		v.DateOrder("dob", *dob, "hireDate", *hireDate)
	}
	if dob != nil && dob.After(time.Now()) {
		v.Add("dob", "must not be in the future")
	}
	if v.Reject(w, reqID) {
		return employee.Employee{}, false
	}

	return employee.Employee{
		FirstName: strings.TrimSpace(payload.FirstName),
		LastName:  strings.TrimSpace(payload.LastName),
		DOB:       dob,
		Gender:    gender,
		Email:     strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:     strings.TrimSpace(payload.Phone),
		HireDate:  hireDate,
	}, true
}

func optionalDate(v *shared.Validator, field, raw string) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parsed, ok := v.Date(field, raw)
	if !ok {
		return nil
	}
	return &parsed
}
