package invites

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
	UserInvites(guildID, userID string) ([]*entity.Invite, *entity.PersonalInviteInfo, error)
}

type listing struct {
	Invites        []*entity.Invite           `json:"invites"`
	PersonalInvite *entity.PersonalInviteInfo `json:"personalInvite,omitempty"`
}

// Get handles GET /api/invites/{userId}: the user's invite documents newest
// first, with their personal invite registration when one exists.
func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.invites"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID := chi.URLParam(r, "userId")
		// Empty guildId lists the user's invites across all guilds; the
		// personal link is guild-scoped and only included for a guild query.
		guildID := r.URL.Query().Get("guildId")

		userInvites, personal, err := handler.UserInvites(guildID, userID)
		if err != nil {
			logger.Error("getting invites", slog.String("user_id", userID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get invites"))
			return
		}
		if userInvites == nil {
			userInvites = []*entity.Invite{}
		}

		render.JSON(w, r, response.Ok(listing{Invites: userInvites, PersonalInvite: personal}))
	}
}
