package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	"invitetracker/internal/config"
	"invitetracker/internal/http-server/handlers/debug"
	"invitetracker/internal/http-server/handlers/errors"
	"invitetracker/internal/http-server/handlers/health"
	"invitetracker/internal/http-server/handlers/history"
	"invitetracker/internal/http-server/handlers/invites"
	"invitetracker/internal/http-server/handlers/joins"
	"invitetracker/internal/http-server/handlers/leaderboard"
	"invitetracker/internal/http-server/handlers/sheets"
	"invitetracker/internal/http-server/handlers/stats"
	"invitetracker/internal/http-server/middleware/authenticate"
	"invitetracker/internal/http-server/middleware/reqlog"
	"invitetracker/internal/http-server/middleware/timeout"
	"invitetracker/lib/sl"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

// Handler is everything the route table needs; implemented by the tracker.
type Handler interface {
	joins.Core
	stats.Core
	leaderboard.Core
	invites.Core
	history.Core
	health.Core
	debug.Core
	sheets.Core
}

type banner struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

func New(conf *config.Config, log *slog.Logger, handler Handler) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(5))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(reqlog.New(log))
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, banner{Name: "Invite Tracker API", Version: "1.0.0", Status: "running"})
	})

	router.Route("/api", func(rootApi chi.Router) {
		rootApi.Use(cors.Handler(cors.Options{
			AllowedOrigins:   conf.Api.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
			AllowCredentials: true,
		}))
		rootApi.Use(httprate.LimitByIP(
			conf.Api.RateLimit,
			time.Duration(conf.Api.RateWindowMin)*time.Minute,
		))

		rootApi.With(authenticate.New(log, conf.Api.SecretKey)).
			Post("/joins", joins.Create(log, handler))

		rootApi.Get("/stats/{userId}", stats.Get(log, handler))
		rootApi.Get("/stats/{userId}/history", stats.History(log, handler))
		rootApi.Get("/leaderboard", leaderboard.Get(log, handler))
		rootApi.Get("/invites/{userId}", invites.Get(log, handler))
		rootApi.Get("/joins/{inviterId}", joins.ByInviter(log, handler))
		rootApi.Get("/history/{guildId}", history.Get(log, handler))
		rootApi.Get("/health", health.Get(log, handler))
		rootApi.Get("/debug/{guildId}", debug.Get(log, handler))
		rootApi.Get("/sheets/{guildId}", sheets.Get(log, handler))
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:      router,
		ErrorLog:     httpLog,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIp, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
