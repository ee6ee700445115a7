package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/ports"
)

// Clé privée pour le contexte (évite les collisions)
type contextKey struct{ name string }

var usernameCtxKey = &contextKey{"username"}

// AuthMiddleware décode le header Authorization et injecte le username.
// Sans header, la requête passe en anonyme (lecture publique du feed).
func AuthMiddleware(verifier ports.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			username, err := verifier.Validate(tokenStr)
			if err != nil {
				slog.Debug("Token rejected", "error", err)
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := WithUsername(r.Context(), username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameCtxKey, username)
}

// UsernameFromContext retourne "" pour un appelant anonyme
func UsernameFromContext(ctx context.Context) string {
	raw, _ := ctx.Value(usernameCtxKey).(string)
	return raw
}
