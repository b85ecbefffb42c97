package sheets

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"invitetracker/entity"
	"invitetracker/lib/api/params"
	"invitetracker/lib/api/response"
	"invitetracker/lib/sl"
)

type Core interface {
	Leaderboard(guildID string, limit int) ([]*entity.LeaderboardEntry, error)
}

type row struct {
	Rank           int    `json:"rank"`
	InviterID      string `json:"inviterId"`
	InvitedMembers int64  `json:"invitedMembers"`
	TotalJoins     int64  `json:"totalJoins"`
}

// Get handles GET /api/sheets/{guildId}: the leaderboard shaped for the
// Google Sheets consumer. JSON rows by default, a downloadable CSV when the
// Accept header asks for text/csv.
func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.sheets"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		guildID := chi.URLParam(r, "guildId")
		limit := params.Limit(r.URL.Query().Get("limit"), 100)

		entries, err := handler.Leaderboard(guildID, limit)
		if err != nil {
			logger.Error("getting sheets data", sl.Guild(guildID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get sheets data"))
			return
		}

		rows := make([]row, 0, len(entries))
		for i, entry := range entries {
			rows = append(rows, row{
				Rank:           i + 1,
				InviterID:      entry.InviterID,
				InvitedMembers: entry.InvitedMembers,
				TotalJoins:     entry.TotalJoins,
			})
		}

		if strings.Contains(r.Header.Get("Accept"), "text/csv") {
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="invite-leaderboard.csv"`)
			writer := csv.NewWriter(w)
			_ = writer.Write([]string{"Rank", "User ID", "Invited Members", "Total Joins"})
			for _, item := range rows {
				_ = writer.Write([]string{
					strconv.Itoa(item.Rank),
					item.InviterID,
					strconv.FormatInt(item.InvitedMembers, 10),
					strconv.FormatInt(item.TotalJoins, 10),
				})
			}
			writer.Flush()
			return
		}

		render.JSON(w, r, response.Ok(rows))
	}
}
