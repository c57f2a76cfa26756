package analyticshandler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"hrportal/internal/domain/analytics"
	"hrportal/internal/domain/auth"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

type DashboardService interface {
	Dashboard(ctx context.Context, opts analytics.Options) (*analytics.Dashboard, error)
}

type Handler struct {
	Service DashboardService
}

func NewHandler(service DashboardService) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAnalyticsRead, auth.PermRecordsRead)).Get("/dashboard", h.handleDashboard)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	opts, issues := OptionsFromQuery(r)
	if len(issues) > 0 {
		shared.FailValidation(w, reqID, issues)
		return
	}
	dashboard, err := h.Service.Dashboard(r.Context(), opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.WithError(err).WithField("requestId", reqID).Error("analytics dashboard failed")
		api.Fail(w, http.StatusInternalServerError, "analytics_failed", "failed to compute analytics", reqID)
		return
	}
	api.Success(w, dashboard, reqID)
}

// OptionsFromQuery reads the dashboard knobs shared by the analytics and report endpoints.
func OptionsFromQuery(r *http.Request) (analytics.Options, []shared.ValidationIssue) {
	q := r.URL.Query()
	v := shared.NewValidator()
	var opts analytics.Options

	order, ok := analytics.ParseLeadLagOrder(strings.TrimSpace(q.Get("leadLagOrder")))
	if !ok {
		v.Add("leadLagOrder", "must be one of employee, hire_date")
	}
	opts.LeadLagOrder = order
	opts.BloodMembers = shared.QueryBool(r, "bloodMembers")

	if field := strings.TrimSpace(q.Get("missingField")); field != "" {
		if !analytics.ValidFieldName(field) {
			v.Add("missingField", "must be a dotted field name")
		}
		opts.MissingField = field
	}
	if raw := strings.TrimSpace(q.Get("employeeId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			v.Add("employeeId", "must be a positive integer")
		} else {
			opts.EmployeeID = &id
		}
	}
	return opts, v.Issues()
}
