package audithandler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal/internal/domain/audit"
	"hrportal/internal/domain/auth"
	"hrportal/internal/transport/http/middleware"
)

type stubReader struct {
	entries  []audit.Entry
	filter   audit.Filter
	withData bool
	limit    int
	offset   int
}

func (s *stubReader) Count(_ context.Context, filter audit.Filter) (int, error) {
	s.filter = filter
	return len(s.entries), nil
}

func (s *stubReader) List(_ context.Context, filter audit.Filter, withData bool, limit, offset int) ([]audit.Entry, error) {
	s.filter, s.withData, s.limit, s.offset = filter, withData, limit, offset
	return s.entries, nil
}

func newRouter(reader Reader, role string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithUser(req.Context(), auth.UserContext{AccountID: 1, Username: "a", Role: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(reader).RegisterRoutes(r)
	return r
}

func sampleEntries() []audit.Entry {
	empID := int64(4)
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []audit.Entry{
		{ID: 2, EmpID: &empID, Action: audit.ActionDelete, Table: "employee", Actor: "alice", Timestamp: ts},
		{ID: 1, Action: audit.ActionInsert, Table: "employee", Actor: "alice", Timestamp: ts.Add(-time.Hour)},
	}
}

func TestListEvents(t *testing.T) {
	reader := &stubReader{entries: sampleEntries()}
	rec := httptest.NewRecorder()
	newRouter(reader, auth.RoleEditor).ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/audit/events?empId=4&action=delete&table=employee&includeDetails=true&limit=1000&offset=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-Total-Count"))
	require.NotNil(t, reader.filter.EmpID)
	assert.Equal(t, int64(4), *reader.filter.EmpID)
	assert.Equal(t, audit.ActionDelete, reader.filter.Action)
	assert.True(t, reader.withData)
	assert.Equal(t, 500, reader.limit)
	assert.Equal(t, 5, reader.offset)

	var env struct {
		Data []audit.Entry `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Len(t, env.Data, 2)
}

func TestListEventsBadEmployee(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubReader{}, auth.RoleEditor).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events?empId=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubReader{entries: sampleEntries()}, auth.RoleEditor).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2", "4", "DELETE", "employee", "alice", "", "2026-03-01T10:00:00Z"}, rows[1])
	assert.Equal(t, "", rows[2][1])
}

func TestViewerCannotReadAudit(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubReader{}, auth.RoleViewer).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
