package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/auth"
	"github.com/go-chi/chi/middleware"
)

// RequestLogger logs method, path, status, duration and request id for every request.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			kv := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			}

			switch {
			case status >= http.StatusInternalServerError:
				logger.Error("request", kv...)
			case status >= http.StatusBadRequest:
				logger.Warn("request", kv...)
			default:
				logger.Info("request", kv...)
			}
		})
	}
}

// Authenticate resolves the caller's identity and stores it with [auth.WithUser].
//
// Requests that cannot be resolved never reach next.
func Authenticate(resolver IdentityResolver, logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				authFailure(w, r, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func authFailure(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	var tokenErr *auth.TokenError

	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		respondError(w, r, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
	case errors.As(err, &tokenErr):
		logger.Debug("token rejected", "kind", tokenErr.Kind, "error", tokenErr.Err)
		respondError(w, r, http.StatusBadRequest, fmt.Sprintf("Error %s: %s", tokenErr.Kind, tokenErr.Message()))
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(w, r, http.StatusBadRequest, "Error UserNotFound: "+auth.ErrUserNotFound.Error())
	default:
		logger.Error("failed to resolve identity", "error", err, "request_id", middleware.GetReqID(r.Context()))
		respondError(w, r, http.StatusInternalServerError, internalError)
	}
}
