package analyticshandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal/internal/domain/analytics"
	"hrportal/internal/domain/auth"
	"hrportal/internal/transport/http/middleware"
)

type stubService struct {
	got analytics.Options
	err error
}

func (s *stubService) Dashboard(_ context.Context, opts analytics.Options) (*analytics.Dashboard, error) {
	s.got = opts
	if s.err != nil {
		return nil, s.err
	}
	return &analytics.Dashboard{GeneratedAt: time.Now(), LeadLagOrder: opts.LeadLagOrder}, nil
}

func newRouter(svc DashboardService, role string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if role != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := middleware.WithUser(req.Context(), auth.UserContext{AccountID: 1, Username: role, Role: role})
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func TestDashboardPassesOptions(t *testing.T) {
	svc := &stubService{}
	rec := httptest.NewRecorder()
	newRouter(svc, auth.RoleViewer).ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/analytics/dashboard?leadLagOrder=hire_date&bloodMembers=true&missingField=contact.email&employeeId=12", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, analytics.OrderByHireDate, svc.got.LeadLagOrder)
	assert.True(t, svc.got.BloodMembers)
	assert.Equal(t, "contact.email", svc.got.MissingField)
	require.NotNil(t, svc.got.EmployeeID)
	assert.Equal(t, int64(12), *svc.got.EmployeeID)

	var env struct {
		Data analytics.Dashboard `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, analytics.OrderByHireDate, env.Data.LeadLagOrder)
}

func TestDashboardRejectsBadQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "order", query: "leadLagOrder=salary"},
		{name: "field", query: "missingField=$where"},
		{name: "employee", query: "employeeId=0"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(&stubService{}, auth.RoleEditor).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analytics/dashboard?"+tc.query, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestDashboardFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubService{err: errors.New("boom")}, auth.RoleEditor).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analytics/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDashboardRequiresUser(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubService{}, "").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analytics/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
