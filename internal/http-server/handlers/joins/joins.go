package joins

import (
	"context"
	"fmt"
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
	Ping(ctx context.Context) error
	RecordJoin(req *entity.JoinRequest) (*entity.JoinRecord, error)
	Joins(f entity.JoinFilter) ([]*entity.JoinRecord, error)
}

// Create handles POST /api/joins: validates the body, checks storage
// availability and persists the join record.
func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.joins"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req entity.JoinRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(fmt.Sprintf("Missing required fields: %v", err)))
			return
		}

		if err := handler.Ping(r.Context()); err != nil {
			logger.Error("storage unavailable", sl.Err(err))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Database not connected"))
			return
		}

		record, err := handler.RecordJoin(&req)
		if err != nil {
			logger.Error("recording join", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to record join"))
			return
		}
		logger.Debug("join recorded",
			slog.String("user_id", record.UserID),
			slog.String("inviter_id", record.InviterID),
		)

		render.JSON(w, r, response.Ok(record))
	}
}

// ByInviter handles GET /api/joins/{inviterId}: join records attributed to one
// inviter, newest first, optionally date- and count-bounded.
func ByInviter(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.joins"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		filter := entity.JoinFilter{
			InviterID: chi.URLParam(r, "inviterId"),
			GuildID:   r.URL.Query().Get("guildId"),
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
			logger.Error("listing joins", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get joins"))
			return
		}
		if records == nil {
			records = []*entity.JoinRecord{}
		}

		render.JSON(w, r, response.Ok(records))
	}
}
