package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal/internal/domain/auth"
)

func noContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func sendJSON(h http.Handler, method, path, addr, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWindowCounterResetsAfterWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	c := newWindowCounter(2, time.Minute)
	c.now = func() time.Time { return now }

	assert.True(t, c.take("a").allowed)
	v := c.take("a")
	assert.True(t, v.allowed)
	assert.Equal(t, 0, v.remaining)
	assert.False(t, c.take("a").allowed)
	assert.True(t, c.take("b").allowed, "keys are counted independently")

	now = now.Add(time.Minute)
	v = c.take("a")
	assert.True(t, v.allowed)
	assert.Equal(t, 1, v.remaining)
	assert.Equal(t, time.Minute, v.resetIn)
}

func TestWindowCounterDisabled(t *testing.T) {
	c := newWindowCounter(0, time.Minute)
	for i := 0; i < 5; i++ {
		require.True(t, c.take("x").allowed)
	}
}

func TestSensitiveRateLimitIgnoresReads(t *testing.T) {
	h := SensitiveMutationRateLimit(4, time.Minute)(noContent())
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/dashboard", nil)
		req.RemoteAddr = "198.51.100.40:8888"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, "request %d", i+1)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestSensitiveRateLimitCredentialsByAddress(t *testing.T) {
	h := SensitiveMutationRateLimit(4, time.Minute)(noContent())

	first := sendJSON(h, http.MethodPost, "/api/v1/auth/request-otp", "203.0.113.10:4444", `{"email":"a@example.com"}`)
	require.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := sendJSON(h, http.MethodPost, "/api/v1/auth/request-otp", "203.0.113.10:5555", `{"email":"b@example.com"}`)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "rate_limited")
}

func TestSensitiveRateLimitCredentialsByIdentity(t *testing.T) {
	h := SensitiveMutationRateLimit(4, time.Minute)(noContent())

	require.Equal(t, http.StatusNoContent,
		sendJSON(h, http.MethodPost, "/api/v1/auth/signin", "198.51.100.50:1", `{"login":"Asha"}`).Code)
	require.Equal(t, http.StatusTooManyRequests,
		sendJSON(h, http.MethodPost, "/api/v1/auth/signin", "198.51.100.51:1", `{"login":"asha"}`).Code,
		"same login from another address shares a bucket")
}

func TestSensitiveRateLimitKeepsBodyForHandler(t *testing.T) {
	var seen string
	h := SensitiveMutationRateLimit(40, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		seen = buf.String()
		w.WriteHeader(http.StatusNoContent)
	}))

	body := `{"email":"a@example.com","code":"123456"}`
	rec := sendJSON(h, http.MethodPost, "/api/v1/auth/verify-otp", "192.0.2.1:1", body)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, body, seen)
}

func TestSensitiveRateLimitRecordsByAccount(t *testing.T) {
	h := SensitiveMutationRateLimit(4, time.Minute)(noContent())
	ctx := WithUser(context.Background(), auth.UserContext{AccountID: 12, Role: auth.RoleEditor})

	for i, addr := range []string{"198.51.100.41:1", "198.51.100.42:1", "198.51.100.43:1"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/download", nil).WithContext(ctx)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if i < 2 {
			require.Equal(t, http.StatusNoContent, rec.Code, "request %d", i+1)
		} else {
			require.Equal(t, http.StatusTooManyRequests, rec.Code, "account key survives address changes")
		}
	}
}

func TestRouteClassification(t *testing.T) {
	tests := []struct {
		method, path string
		credential   bool
		record       bool
	}{
		{method: http.MethodPost, path: "/auth/verify-otp", credential: true},
		{method: http.MethodGet, path: "/auth/profile"},
		{method: http.MethodDelete, path: "/employees/4", record: true},
		{method: http.MethodDelete, path: "/personnel/65f0c0ffee", record: true},
		{method: http.MethodPut, path: "/employees/4"},
		{method: http.MethodPost, path: "/reports/download", record: true},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.credential, isCredentialRoute(tc.method, tc.path), "%s %s", tc.method, tc.path)
		assert.Equal(t, tc.record, isGuardedRecordRoute(tc.method, tc.path), "%s %s", tc.method, tc.path)
	}
	assert.Equal(t, "/employees/4", apiRelativePath("/api/v1/employees/4"))
	assert.Equal(t, "/", apiRelativePath("/api/v1"))
}

func TestRemoteIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:4000"
	assert.Equal(t, "192.0.2.9", remoteIP(req))

	req.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	assert.Equal(t, "203.0.113.7", remoteIP(req))
}
