package middleware

import "net/http"

type headerPair struct{ name, value string }

// apiHeaders suit a JSON and file-download API that is never framed or embedded.
var apiHeaders = []headerPair{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Cross-Origin-Resource-Policy", "same-origin"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
	// Exported PDFs must not be readable by plugin cross-domain policies.
	{"X-Permitted-Cross-Domain-Policies", "none"},
	// Employee records and reports are personal data.
	{"Cache-Control", "no-store"},
}

const hstsValue = "max-age=63072000; includeSubDomains"

func SecureHeaders(isProd bool) func(http.Handler) http.Handler {
	set := apiHeaders
	if isProd {
		set = append(append([]headerPair{}, apiHeaders...), headerPair{"Strict-Transport-Security", hstsValue})
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, p := range set {
				h.Set(p.name, p.value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
