package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/userreg/internal/common"
	"github.com/dmitrijs2005/userreg/internal/logging"
	"github.com/dmitrijs2005/userreg/internal/server/models"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const (
	loggerKey ctxKey = "logger"
	userKey   ctxKey = "user"
)

// Messages returned with 401 replies.
const (
	MissingTokenMessage = "Token no proporcionado"
	InvalidTokenMessage = "Token inválido"
	ExpiredTokenMessage = "Token expirado o inválido"
)

// RequestLogger logs each request with its chi request id and stores the
// per-request logger in the context for handlers.
func RequestLogger(logger logging.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := logger.With(
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"remote_ip", r.RemoteAddr,
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx := context.WithValue(r.Context(), loggerKey, reqLogger)

			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			args := []any{"status", status, "duration_ms", time.Since(start).Milliseconds()}
			switch {
			case status >= 500:
				reqLogger.Error(ctx, "request completed", args...)
			case status >= 400:
				reqLogger.Warn(ctx, "request completed", args...)
			default:
				reqLogger.Info(ctx, "request completed", args...)
			}
		})
	}
}

// LoggerFromContext returns the request logger, or a no-op logger outside a
// request.
func LoggerFromContext(ctx context.Context) logging.Logger {
	if l, ok := ctx.Value(loggerKey).(logging.Logger); ok {
		return l
	}
	return logging.Nop{}
}

// UserFromContext returns the user stored by RequireAuth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}

// RequireAuth resolves the bearer token to a user or answers 401.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if header == "" {
			respondError(w, MissingTokenMessage, http.StatusUnauthorized)
			return
		}

		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			respondError(w, InvalidTokenMessage, http.StatusUnauthorized)
			return
		}

		user, err := h.users.Authenticate(r.Context(), strings.TrimSpace(token))
		if err != nil {
			switch {
			case errors.Is(err, common.ErrMalformedToken):
				respondError(w, InvalidTokenMessage, http.StatusUnauthorized)
			case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
				respondError(w, ExpiredTokenMessage, http.StatusUnauthorized)
			default:
				LoggerFromContext(r.Context()).Error(r.Context(), "authentication failed", "error", err)
				respondError(w, common.InternalErrorMessage, http.StatusInternalServerError)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}
