package middleware

import (
	"net/http"
	"time"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/util"
)

// Logging returns a middleware that logs HTTP requests. The route field
// is the name of the route the kernel matched, if any.
func Logging(logger observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := util.ContextWithStartTime(r.Context(), start)
			if util.RouteHolderFromContext(ctx) == nil {
				ctx = util.ContextWithRouteHolder(ctx, &util.RouteHolder{})
			}
			r = r.WithContext(ctx)

			rw := util.NewResponseRecorder(w)
			next.ServeHTTP(rw, r)

			fields := []observability.Field{
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.String("query", r.URL.RawQuery),
				observability.Int("status", rw.Status),
				observability.Int("size", rw.Bytes),
				observability.Duration("duration", util.ElapsedTime(ctx)),
				observability.String("remote_addr", r.RemoteAddr),
				observability.String("user_agent", r.UserAgent()),
			}
			if route := util.RouteFromContext(ctx); route != "" {
				fields = append(fields, observability.String("route", route))
			}

			log := logger.WithContext(ctx)
			if rw.Status >= http.StatusInternalServerError {
				log.Warn("http request", fields...)
				return
			}
			log.Info("http request", fields...)
		})
	}
}
