package audithandler

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"hrportal/internal/domain/audit"
	"hrportal/internal/domain/auth"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

const exportLimit = 10000

type Reader interface {
	Count(ctx context.Context, filter audit.Filter) (int, error)
	List(ctx context.Context, filter audit.Filter, withData bool, limit, offset int) ([]audit.Entry, error)
}

type Handler struct {
	Service Reader
}

func NewHandler(service Reader) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAuditRead)).Get("/events", h.handleListEvents)
		r.With(middleware.RequirePermission(auth.PermAuditRead)).Get("/events/export", h.handleExportEvents)
	})
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, 100, 500)

	total, err := h.Service.Count(r.Context(), filter)
	if err != nil {
		log.WithError(err).WithField("requestId", reqID).Warn("audit count failed")
	}
	entries, err := h.Service.List(r.Context(), filter, shared.QueryBool(r, "includeDetails"), page.Limit, page.Offset)
	if err != nil {
		log.WithError(err).WithField("requestId", reqID).Error("audit list failed")
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", reqID)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, entries, reqID)
}

func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}
	entries, err := h.Service.List(r.Context(), filter, false, exportLimit, 0)
	if err != nil {
		log.WithError(err).WithField("requestId", reqID).Error("audit export failed")
		api.Fail(w, http.StatusInternalServerError, "audit_export_failed", "failed to export audit events", reqID)
		return
	}

	api.Attachment(w, "text/csv", "audit-events.csv", -1)
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "emp_id", "action", "table", "actor", "request_id", "timestamp"}); err != nil {
		log.WithError(err).Warn("audit export header failed")
	}
	for _, e := range entries {
		empID := ""
		if e.EmpID != nil {
			empID = strconv.FormatInt(*e.EmpID, 10)
		}
		row := []string{strconv.FormatInt(e.ID, 10), empID, e.Action, e.Table, e.Actor, e.RequestID, e.Timestamp.UTC().Format(time.RFC3339)}
		if err := writer.Write(row); err != nil {
			log.WithError(err).Warn("audit export row failed")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.WithError(err).Warn("audit export flush failed")
	}
}

func parseFilter(w http.ResponseWriter, r *http.Request) (audit.Filter, bool) {
	q := r.URL.Query()
	filter := audit.Filter{
		Action: strings.ToUpper(strings.TrimSpace(q.Get("action"))),
		Table:  strings.TrimSpace(q.Get("table")),
	}
	if raw := strings.TrimSpace(q.Get("empId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "empId", Reason: "must be a positive integer"}})
			return filter, false
		}
		filter.EmpID = &id
	}
	return filter, true
}
