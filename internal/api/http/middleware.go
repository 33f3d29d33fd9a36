package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"shared-wallet-backend/internal/config"
	"shared-wallet-backend/internal/logger"
	"shared-wallet-backend/internal/security"
)

type contextKey string

const clientIDKey contextKey = "client-id"

// ClientIDFromContext returns the authenticated API client, if any.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(clientIDKey).(string)
	return id, ok
}

// AuthMiddleware requires a bearer token on every non-public path. Websocket
// handshakes may pass the token as ?token= since browsers can't set headers there.
func AuthMiddleware(tm security.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.GetHTTPSecurityLevel(r.URL.Path) == config.SecurityPublic {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "authorization token is not provided")
				return
			}

			claims, err := tm.ValidateToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			if scope := requiredScope(r); !claims.HasScope(scope) {
				writeError(w, http.StatusForbidden, "token lacks scope "+scope)
				return
			}

			ctx := context.WithValue(r.Context(), clientIDKey, claims.ClientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requiredScope(r *http.Request) string {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return security.ScopeWalletsRead
	}
	return security.ScopeWalletsWrite
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if websocketUpgrade(r) {
		return r.URL.Query().Get("token")
	}
	return ""
}

func websocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs one line per request. Websocket upgrades are passed
// through untouched because the upgrader needs the raw ResponseWriter.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if websocketUpgrade(r) {
			logger.Info("Websocket upgrade", "path", r.URL.Path)
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.InfoContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
