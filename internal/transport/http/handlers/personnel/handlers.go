package personnelhandler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/employee"
	"hrportal/internal/domain/personnel"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

type Handler struct {
	Store personnel.StoreAPI
}

func NewHandler(store personnel.StoreAPI) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermRecordsRead)
	write := middleware.RequirePermission(auth.PermRecordsWrite)

	r.Route("/personnel", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.With(read).Get("/qualifications/{employeeID}", h.handleGetQualifications)
		r.With(write).Put("/qualifications/{employeeID}", h.handleUpsertQualifications)
		r.Route("/{id}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDelete)
		})
	})
}

type qualificationsRequest struct {
	Name          string   `json:"name"`
	Qualification []string `json:"qualification"`
	Experience    []string `json:"experience"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var filter personnel.Filter
	if raw := strings.TrimSpace(r.URL.Query().Get("employeeId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "employeeId", Reason: "must be a positive integer"}})
			return
		}
		filter.EmployeeID = &id
	}
	docs, err := h.Store.List(r.Context(), filter)
	if err != nil {
		h.fail(w, reqID, err, "personnel_list_failed", "failed to list personnel")
		return
	}
	api.Success(w, docs, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var doc personnel.Document
	if !shared.DecodeJSON(w, r, &doc, reqID) {
		return
	}
	if !bindDocument(w, reqID, &doc) {
		return
	}
	created, err := h.Store.Create(r.Context(), doc)
	if err != nil {
		h.fail(w, reqID, err, "personnel_create_failed", "failed to create personnel record")
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	doc, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, reqID, err, "personnel_get_failed", "failed to load personnel record")
		return
	}
	api.Success(w, doc, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var doc personnel.Document
	if !shared.DecodeJSON(w, r, &doc, reqID) {
		return
	}
	if !bindDocument(w, reqID, &doc) {
		return
	}
	updated, err := h.Store.Update(r.Context(), chi.URLParam(r, "id"), doc)
	if err != nil {
		h.fail(w, reqID, err, "personnel_update_failed", "failed to update personnel record")
		return
	}
	api.Success(w, updated, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")
	if err := h.Store.Delete(r.Context(), id); err != nil {
		h.fail(w, reqID, err, "personnel_delete_failed", "failed to delete personnel record")
		return
	}
	api.Success(w, map[string]string{"id": id, "status": "deleted"}, reqID)
}

func (h *Handler) handleGetQualifications(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID, ok := pathEmployeeID(w, r)
	if !ok {
		return
	}
	rec, err := h.Store.GetQualifications(r.Context(), employeeID)
	if err != nil {
		h.fail(w, reqID, err, "qualifications_get_failed", "failed to load qualifications")
		return
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handleUpsertQualifications(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID, ok := pathEmployeeID(w, r)
	if !ok {
		return
	}
	var payload qualificationsRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.MaxLength("name", payload.Name, 120)
	if len(personnel.CleanList(payload.Qualification)) == 0 && len(personnel.CleanList(payload.Experience)) == 0 {
		v.Add("qualification", "qualification or experience must have at least one entry")
	}
	if v.Reject(w, reqID) {
		return
	}

	rec, err := h.Store.UpsertQualifications(r.Context(), employeeID, personnel.QualificationRecord{
		Name:          strings.TrimSpace(payload.Name),
		Qualification: payload.Qualification,
		Experience:    payload.Experience,
	})
	if err != nil {
		h.fail(w, reqID, err, "qualifications_upsert_failed", "failed to save qualifications")
		return
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) fail(w http.ResponseWriter, reqID string, err error, code, message string) {
	switch {
	case errors.Is(err, personnel.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, personnel.ErrInvalidID):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "id", Reason: "must be a 24 character hex object id"}})
	default:
		log.WithError(err).WithField("requestId", reqID).Error(message)
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}

func pathEmployeeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := shared.PathID(r, "employeeID")
	if !ok {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "employeeId", Reason: "must be a positive integer"}})
	}
	return id, ok
}

// bindDocument validates doc in place and normalizes the coded fields.
func bindDocument(w http.ResponseWriter, reqID string, doc *personnel.Document) bool {
	v := shared.NewValidator()
	if doc.EmployeeID <= 0 {
		v.Add("employeeId", "must be a positive integer")
	}
	doc.Name = strings.TrimSpace(doc.Name)
	v.Required("name", doc.Name, "is required")
	v.MaxLength("name", doc.Name, 120)

	if doc.Gender != "" {
		canonical, ok := employee.CanonicalGender(doc.Gender)
		if !ok {
			v.Add("gender", "must be one of "+strings.Join(employee.Genders, ", "))
		}
		doc.Gender = canonical
	}
	if doc.DOB != "" {
		v.Date("dob", doc.DOB)
	}
	if doc.BloodGroup != "" {
		doc.BloodGroup = strings.ToUpper(strings.TrimSpace(doc.BloodGroup))
		if !personnel.ValidBloodGroup(doc.BloodGroup) {
			v.Add("bloodGroup", "must be one of "+strings.Join(personnel.BloodGroups, ", "))
		}
	}
	if doc.PAN != "" {
		doc.PAN = strings.ToUpper(strings.TrimSpace(doc.PAN))
		if !personnel.ValidPAN(doc.PAN) {
			v.Add("pan", "must be five letters, four digits and a letter")
		}
	}
	v.Email("contact.email", doc.Contact.Email)

	doc.Qualification = personnel.CleanList(doc.Qualification)
	doc.Qualifications = personnel.CleanList(doc.Qualifications)
	doc.Experience = personnel.CleanList(doc.Experience)
	for i, member := range doc.Family {
		if strings.TrimSpace(member.Name) == "" {
			v.Add("family["+strconv.Itoa(i)+"].name", "is required")
		}
		if member.Age < 0 {
			v.Add("family["+strconv.Itoa(i)+"].age", "must not be negative")
		}
	}
	return !v.Reject(w, reqID)
}
