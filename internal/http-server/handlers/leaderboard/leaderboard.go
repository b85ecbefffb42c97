package leaderboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"invitetracker/entity"
	"invitetracker/lib/api/params"
	"invitetracker/lib/api/response"
	"invitetracker/lib/sl"
)

type Core interface {
	Leaderboard(guildID string, limit int) ([]*entity.LeaderboardEntry, error)
	LeaderboardForMonth(guildID string, year, month, limit int) ([]*entity.LeaderboardEntry, error)
}

// Get handles GET /api/leaderboard: inviters ranked by distinct invitees,
// whole-history by default or one calendar month when year and month are set.
func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.leaderboard"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		guildID := r.URL.Query().Get("guildId")
		if guildID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("guildId is required"))
			return
		}
		limit := params.Limit(r.URL.Query().Get("limit"), 10)
		year := params.Int(r.URL.Query().Get("year"))
		month := params.Int(r.URL.Query().Get("month"))

		var entries []*entity.LeaderboardEntry
		var err error
		if year > 0 && month >= 1 && month <= 12 {
			entries, err = handler.LeaderboardForMonth(guildID, year, month, limit)
		} else {
			entries, err = handler.Leaderboard(guildID, limit)
		}
		if err != nil {
			logger.Error("getting leaderboard", sl.Guild(guildID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get leaderboard"))
			return
		}
		if entries == nil {
			entries = []*entity.LeaderboardEntry{}
		}

		render.JSON(w, r, response.Ok(entries))
	}
}
