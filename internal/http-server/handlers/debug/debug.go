package debug

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"invitetracker/entity"
	"invitetracker/lib/api/response"
	"invitetracker/lib/sl"
)

type Core interface {
	DebugInfo(guildID string) (*entity.DebugInfo, error)
}

// Get handles GET /api/debug/{guildId}: collection counts and a few sample
// documents. Diagnostic only.
func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.debug"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		guildID := chi.URLParam(r, "guildId")
		info, err := handler.DebugInfo(guildID)
		if err != nil {
			logger.Error("getting debug info", sl.Guild(guildID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get debug info"))
			return
		}

		render.JSON(w, r, response.Ok(info))
	}
}
