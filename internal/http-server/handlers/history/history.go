package history

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
	Joins(f entity.JoinFilter) ([]*entity.JoinRecord, error)
}

// Get handles GET /api/history/{guildId}: guild-wide join history, newest
// first, filterable by inviter, date window and count.
func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.history"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		filter := entity.JoinFilter{
			GuildID:   chi.URLParam(r, "guildId"),
			InviterID: r.URL.Query().Get("inviterId"),
			Limit:     int64(params.Limit(r.URL.Query().Get("limit"), 100)),
		}

		var err error
		if filter.From, err = params.Date(r.URL.Query().Get("startDate")); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		if filter.To, err = params.Date(r.URL.Query().Get("endDate")); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		records, err := handler.Joins(filter)
		if err != nil {
			logger.Error("listing history", sl.Guild(filter.GuildID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get history"))
			return
		}
		if records == nil {
			records = []*entity.JoinRecord{}
		}

		render.JSON(w, r, response.Ok(records))
	}
}
