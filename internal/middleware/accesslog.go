package middleware

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/terraconstructs/sandaran/internal/auth"
)

// AccessLog writes one structured entry per request. Server errors log at
// error level, client errors at warn, everything else at info.
func AccessLog(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			// The principal is attached further down the chain, so capture it
			// through a holder the inner handler can fill.
			holder := &principalHolder{}
			next.ServeHTTP(ww, r.WithContext(withPrincipalHolder(r.Context(), holder)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := logger.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  chimw.GetReqID(r.Context()),
				"remote_addr": r.RemoteAddr,
			})
			if holder.principal != nil {
				entry = entry.WithField("principal", holder.principal.ID)
			}

			switch {
			case status >= http.StatusInternalServerError:
				entry.Error("request completed")
			case status >= http.StatusBadRequest:
				entry.Warn("request completed")
			default:
				entry.Info("request completed")
			}
		})
	}
}

type principalHolder struct {
	principal *auth.Principal
}

type holderContextKey struct{}

func withPrincipalHolder(ctx context.Context, h *principalHolder) context.Context {
	return context.WithValue(ctx, holderContextKey{}, h)
}

// notePrincipal records p for the access log entry of the current request.
func notePrincipal(ctx context.Context, p *auth.Principal) {
	if h, ok := ctx.Value(holderContextKey{}).(*principalHolder); ok {
		h.principal = p
	}
}
