package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"invitetracker/bot"
	"invitetracker/internal/config"
	"invitetracker/internal/database"
	"invitetracker/internal/forward"
	"invitetracker/internal/http-server/api"
	"invitetracker/internal/tracker"
	"invitetracker/lib/sl"
)

const (
	envLocal    = "local"
	envDev      = "dev"
	envProd     = "prod"
	logFileName = "invitetracker.log"
)

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	logger := setupLogger(conf.Env, *logPath)
	logger.Info("starting invite tracker", slog.String("config", *configPath), slog.String("env", conf.Env))

	mongo := database.NewMongoClient(conf)
	if mongo == nil {
		logger.Error("mongo is disabled in config, nothing to serve")
		os.Exit(1)
	}
	waitForDatabase(conf, mongo, logger)

	trk := tracker.New(mongo, nil, logger)
	trk.SetInviteChannel(conf.Discord.InviteChannelID)
	if fwd := forward.New(conf, logger); fwd != nil {
		trk.SetForwarder(fwd)
	}

	dcbot, err := bot.New(conf.Discord, trk, logger)
	if err != nil {
		// API keeps serving persisted data even without a gateway connection.
		logger.Warn("discord bot not configured, starting api only", sl.Err(err))
	} else {
		trk.SetProvider(bot.NewProvider(dcbot.Session()))
		if err = dcbot.Start(); err != nil {
			logger.Error("starting discord bot", sl.Err(err))
			os.Exit(1)
		}
		defer dcbot.Stop()
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		logger.Info("shutdown signal received")
		if dcbot != nil {
			dcbot.Stop()
		}
		os.Exit(0)
	}()

	if err = api.New(conf, logger, trk); err != nil {
		logger.Error("api server stopped", sl.Err(err))
		os.Exit(1)
	}
}

func waitForDatabase(conf *config.Config, mongo *database.MongoDB, logger *slog.Logger) {
	delay := time.Duration(conf.Mongo.ConnectDelaySec) * time.Second
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := mongo.Ping(ctx)
		cancel()
		if err == nil {
			logger.Info("database connection established")
			return
		}
		if attempt >= conf.Mongo.ConnectAttempts {
			logger.Error("database unreachable, giving up", slog.Int("attempts", attempt), sl.Err(err))
			os.Exit(1)
		}
		logger.Warn("database not ready, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			sl.Err(err),
		)
		time.Sleep(delay)
	}
}

func setupLogger(env, path string) *slog.Logger {
	var logger *slog.Logger
	var logFile *os.File
	var err error

	if env != envLocal {
		logPath := filepath.Join(path, logFileName)
		logFile, err = os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("error opening log file: ", err)
		}
		log.Printf("env: %s; log file: %s", env, logPath)
	}

	switch env {
	case envLocal:
		logger = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		logger = slog.New(
			slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		logger = slog.New(
			slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log.Fatal("invalid environment: ", env)
	}

	return logger
}
