package stats

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"invitetracker/entity"
	"invitetracker/lib/api/params"
	"invitetracker/lib/api/response"
	"invitetracker/lib/sl"
)

type Core interface {
	UserStats(guildID, userID string, dateRange *entity.DateRange) (*entity.UserStats, error)
}

// Get handles GET /api/stats/{userId}: whole-history rollups for one user.
func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return serve(log, handler, false)
}

// History handles GET /api/stats/{userId}/history: the same rollups scoped to
// a date window.
func History(log *slog.Logger, handler Core) http.HandlerFunc {
	return serve(log, handler, true)
}

func serve(log *slog.Logger, handler Core, windowed bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.stats"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID := chi.URLParam(r, "userId")
		// Empty guildId aggregates across every guild the user invites in.
		guildID := r.URL.Query().Get("guildId")

		var dateRange *entity.DateRange
		if windowed {
			from, err := params.Date(r.URL.Query().Get("startDate"))
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
				return
			}
			to, err := params.Date(r.URL.Query().Get("endDate"))
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
				return
			}
			dateRange = &entity.DateRange{From: from, To: to}
		}

		userStats, err := handler.UserStats(guildID, userID, dateRange)
		if err != nil {
			logger.Error("getting stats", slog.String("user_id", userID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get stats"))
			return
		}

		render.JSON(w, r, response.Ok(userStats))
	}
}
