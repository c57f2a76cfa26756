package middleware

import (
	"context"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"hrportal/internal/domain/audit"
	"hrportal/internal/domain/auth"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.UserContext, error)
}

// Auth attaches the caller when the bearer token maps to a live session. Requests without a valid
// token pass through anonymously; RequirePermission rejects them where access matters.
func Auth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				log.WithError(err).WithField("requestId", GetRequestID(r.Context())).Debug("bearer token rejected")
				next.ServeHTTP(w, r)
				return
			}
			user.Role = auth.NormalizeRole(user.Role)

			ctx := WithUser(r.Context(), user)
			ctx = audit.WithActor(ctx, audit.Actor{Name: user.Username, RequestID: GetRequestID(r.Context())})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}
