package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"invitetracker/lib/api/response"
)

type Core interface {
	Ping(ctx context.Context) error
}

type status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Get handles GET /api/health.
func Get(_ *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		database := "connected"
		if err := handler.Ping(r.Context()); err != nil {
			database = "disconnected"
		}
		render.JSON(w, r, response.Ok(status{Status: "ok", Database: database}))
	}
}
