package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/geoplay/capitalquiz/internal/game"
)

type ctxKey int

const ctxKeySession ctxKey = iota

type sessionCtx struct {
	token string
	sess  *game.Session
}

// sessionToken extracts the bearer token from the Authorization header,
// falling back to the token query parameter (used by EventSource, which
// cannot set headers).
func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if t, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return t
		}
	}
	return r.URL.Query().Get("token")
}

// sessionMiddleware resolves the request's game session from the
// registry and stores it on the context.
func sessionMiddleware(sessions *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "invalid or missing session token")
				return
			}

			sess, ok := sessions.Get(token)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid or missing session token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeySession, sessionCtx{token: token, sess: sess})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFrom(r *http.Request) sessionCtx {
	return r.Context().Value(ctxKeySession).(sessionCtx)
}
