package authenticate

import (
	"strings"

	"github.com/go-chi/render"

	"invitetracker/lib/api/response"
	"invitetracker/lib/sl"

	"log/slog"
	"net/http"
)

// New guards mutating routes with the shared API secret. The key is accepted
// either as an X-API-Key header or as an Authorization: Bearer token; anything
// else gets a 401.
func New(log *slog.Logger, secretKey string) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.authenticate")
	log.With(mod).Info("authenticate middleware initialized")

	return func(next http.Handler) http.Handler {

		fn := func(w http.ResponseWriter, r *http.Request) {
			logger := log.With(
				mod,
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)

			if secretKey == "" {
				logger.Error("api secret key not configured")
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("API key not configured on server"))
				return
			}

			key := r.Header.Get("X-API-Key")
			if key == "" {
				header := r.Header.Get("Authorization")
				if strings.HasPrefix(header, "Bearer ") {
					key = strings.TrimPrefix(header, "Bearer ")
				}
			}

			if key == "" || key != secretKey {
				logger.With(sl.Secret("key", key)).Warn("invalid api key")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("Unauthorized: Invalid API key"))
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}
