package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"hrportal/internal/transport/http/api"
)

const (
	maxTrackedKeys   = 10000
	identityPeekSize = 64 * 1024
)

// keyFunc derives the bucket a request is counted against. An empty key falls back to the client address.
type keyFunc func(r *http.Request) string

type windowState struct {
	hits    int
	resetAt time.Time
}

type verdict struct {
	allowed   bool
	limit     int
	remaining int
	resetIn   time.Duration
}

// windowCounter is a fixed-window counter keyed by caller.
type windowCounter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	state  map[string]*windowState
}

func newWindowCounter(limit int, window time.Duration) *windowCounter {
	return &windowCounter{
		limit:  limit,
		window: window,
		now:    time.Now,
		state:  make(map[string]*windowState),
	}
}

func (c *windowCounter) take(key string) verdict {
	if c.limit <= 0 {
		return verdict{allowed: true}
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.state) >= maxTrackedKeys {
		for k, s := range c.state {
			if !now.Before(s.resetAt) {
				delete(c.state, k)
			}
		}
	}
	s, ok := c.state[key]
	if !ok || !now.Before(s.resetAt) {
		s = &windowState{resetAt: now.Add(c.window)}
		c.state[key] = s
	}
	s.hits++
	return verdict{
		allowed:   s.hits <= c.limit,
		limit:     c.limit,
		remaining: max(c.limit-s.hits, 0),
		resetIn:   s.resetAt.Sub(now),
	}
}

// keyedCounter pairs a counter with the key it buckets on.
type keyedCounter struct {
	counter *windowCounter
	key     keyFunc
}

// routeRule applies its counters, in order, to the requests it matches.
type routeRule struct {
	name     string
	matches  func(method, path string) bool
	counters []keyedCounter
}

// SensitiveMutationRateLimit throttles credential and OTP endpoints per address and per identity,
// and report exports and record deletion per signed-in account. Other requests pass untouched.
func SensitiveMutationRateLimit(perWindow int, window time.Duration) func(http.Handler) http.Handler {
	credentialLimit := max(perWindow/4, 1)
	actorLimit := max(perWindow/2, 1)
	rules := []routeRule{
		{
			name:    "credentials",
			matches: isCredentialRoute,
			counters: []keyedCounter{
				{counter: newWindowCounter(credentialLimit, window), key: remoteIP},
				{counter: newWindowCounter(credentialLimit, window), key: identityKey("email", "login", "username")},
			},
		},
		{
			name:    "records",
			matches: isGuardedRecordRoute,
			counters: []keyedCounter{
				{counter: newWindowCounter(actorLimit, window), key: accountKey},
			},
		},
	}
	return rateLimitRules(rules)
}

func rateLimitRules(rules []routeRule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := strings.ToUpper(r.Method)
			path := apiRelativePath(r.URL.Path)
			for _, rule := range rules {
				if !rule.matches(method, path) {
					continue
				}
				for _, kc := range rule.counters {
					key := kc.key(r)
					if key == "" {
						key = remoteIP(r)
					}
					v := kc.counter.take(key)
					writeRateHeaders(w, v)
					if !v.allowed {
						log.WithFields(log.Fields{
							"rule":   rule.name,
							"key":    key,
							"method": method,
							"path":   r.URL.Path,
							"limit":  v.limit,
						}).Warn("rate limit exceeded")
						w.Header().Set("Retry-After", strconv.Itoa(max(ceilSeconds(v.resetIn), 1)))
						api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
						return
					}
				}
				break
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeRateHeaders(w http.ResponseWriter, v verdict) {
	if v.limit <= 0 {
		return
	}
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(v.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(v.remaining))
	h.Set("X-RateLimit-Reset", strconv.Itoa(ceilSeconds(v.resetIn)))
}

func isCredentialRoute(method, path string) bool {
	if method != http.MethodPost {
		return false
	}
	switch path {
	case "/auth/signin", "/auth/signup", "/auth/request-otp", "/auth/verify-otp", "/auth/reset-password":
		return true
	}
	return false
}

func isGuardedRecordRoute(method, path string) bool {
	if method == http.MethodPost && path == "/reports/download" {
		return true
	}
	if method != http.MethodDelete {
		return false
	}
	return strings.HasPrefix(path, "/employees/") || strings.HasPrefix(path, "/personnel/")
}

func apiRelativePath(p string) string {
	p = strings.TrimPrefix(strings.TrimSpace(p), "/api/v1")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func accountKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.AccountID != 0 {
		return "account:" + strconv.FormatInt(user.AccountID, 10)
	}
	return ""
}

// identityKey buckets on the first non-empty JSON body field, case-folded, so one account
// cannot be guessed at from many addresses. The body is restored for the handler.
func identityKey(fields ...string) keyFunc {
	return func(r *http.Request) string {
		payload := peekJSON(r)
		for _, field := range fields {
			value, _ := payload[field].(string)
			if value = strings.TrimSpace(value); value != "" {
				return "identity:" + strings.ToLower(value)
			}
		}
		return ""
	}
}

func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	return addr
}

func peekJSON(r *http.Request) map[string]any {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, identityPeekSize))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), r.Body))
	if err != nil || len(raw) == 0 {
		return nil
	}
	var payload map[string]any
	if json.Unmarshal(raw, &payload) != nil {
		return nil
	}
	return payload
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
