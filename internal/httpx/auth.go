package httpx

import (
	"context"
	"net/http"
	"strings"
)

// SessionStore resolves an opaque session token to an actor name.
// "" means the token is unknown or expired.
type SessionStore interface {
	Actor(ctx context.Context, token string) (string, error)
}

// SessionCookie carries the admin session token issued by the login flow.
const SessionCookie = "ssp_session"

type ctxKey int

const actorKey ctxKey = iota

// RequireSession rejects requests without a resolvable admin session and
// injects the actor name into the request context. Downstream code receives
// the identity explicitly instead of re-reading cookies.
func RequireSession(sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "authentication required"})
				return
			}
			actor, err := sessions.Actor(r.Context(), token)
			if err != nil || actor == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "invalid session"})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
		})
	}
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// ActorFrom returns the authenticated actor, or "" outside RequireSession.
func ActorFrom(ctx context.Context) string {
	a, _ := ctx.Value(actorKey).(string)
	return a
}
