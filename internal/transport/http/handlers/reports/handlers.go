package reportshandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"hrportal/internal/domain/analytics"
	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/reports"
	"hrportal/internal/transport/http/api"
	analyticshandler "hrportal/internal/transport/http/handlers/analytics"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

type Exporter interface {
	Export(ctx context.Context, meta reports.CompanyMeta, opts analytics.Options) (reports.Export, error)
}

type Handler struct {
	Service Exporter
}

func NewHandler(service Exporter) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsExport)).Post("/download", h.handleDownload)
	})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var meta reports.CompanyMeta
	if !shared.DecodeJSON(w, r, &meta, reqID) {
		return
	}
	meta = meta.Normalize()

	v := shared.NewValidator()
	v.Required("companyName", meta.Name, "is required")
	v.MaxLength("companyName", meta.Name, 200)
	v.MaxLength("address", meta.Address, 500)
	v.MaxLength("reportTitle", meta.ReportTitle, 200)
	v.MaxLength("preparedBy", meta.PreparedBy, 200)
	opts, issues := analyticshandler.OptionsFromQuery(r)
	for _, issue := range issues {
		v.Add(issue.Field, issue.Reason)
	}
	if v.Reject(w, reqID) {
		return
	}
	if meta.PreparedBy == "" {
		if user, ok := middleware.GetUser(r.Context()); ok {
			meta.PreparedBy = user.Username
		}
	}

	export, err := h.Service.Export(r.Context(), meta, opts)
	if err != nil {
		if errors.Is(err, reports.ErrRendererMissing) {
			log.WithError(err).WithField("requestId", reqID).Error("pdf renderer unavailable")
			api.Fail(w, http.StatusInternalServerError, "renderer_unavailable", "pdf renderer is not installed", reqID)
			return
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		log.WithError(err).WithField("requestId", reqID).Error("report export failed")
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to generate report", reqID)
		return
	}

	api.Attachment(w, "application/pdf", export.Filename, len(export.PDF))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.PDF); err != nil {
		log.WithError(err).WithField("requestId", reqID).Warn("report write failed")
	}
}
