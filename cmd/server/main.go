package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"hyperlens/internal/config"
	"hyperlens/internal/httpserver"
	"hyperlens/internal/reaper"
	"hyperlens/internal/security"
	mongostore "hyperlens/internal/store/mongo"
	"hyperlens/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	var log zerolog.Logger
	if cfg.IsDevelopment() {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		log = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := mongostore.NewDB(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	defer db.Client().Disconnect(context.Background())

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	// Repositories
	userRepo := mongostore.NewUserRepo(db)
	bizRepo := mongostore.NewBusinessRepo(db)
	bcRepo := mongostore.NewBroadcastRepo(db)
	chatRepo := mongostore.NewChatRepo(db)
	msgRepo := mongostore.NewMessageRepo(db)

	// Security components
	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	passwordHasher := security.NewPasswordHasher(0)

	hub := ws.NewHub()

	// Background broadcast cleanup
	go reaper.New(bcRepo, cfg.ReaperInterval, log).Run(ctx)

	router := httpserver.NewRouter(cfg, httpserver.Deps{
		Users:      userRepo,
		Businesses: bizRepo,
		Broadcasts: bcRepo,
		Chats:      chatRepo,
		Messages:   msgRepo,
		Hub:        hub,
		Tokens:     tokenSvc,
		Hasher:     passwordHasher,
		Log:        log,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr()).Str("env", cfg.Env).Msg("starting hyperlens server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
