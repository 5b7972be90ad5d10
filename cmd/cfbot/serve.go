package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/cfbot/internal/bot"
	"github.com/tbourn/cfbot/internal/cloudflare"
	"github.com/tbourn/cfbot/internal/config"
	httpapi "github.com/tbourn/cfbot/internal/http"
	"github.com/tbourn/cfbot/internal/observability"
	"github.com/tbourn/cfbot/internal/repo"
	"github.com/tbourn/cfbot/internal/services"
)

const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot and the admin HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServeCmd,
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg)
	return serve(cmd.Context(), cfg)
}

// serve runs until ctx is cancelled or either the poller or the HTTP server
// fails. On the way out polling stops first, then the server drains.
func serve(ctx context.Context, cfg config.Config) error {
	shutdownTracing, err := observability.Setup(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	db, err := repo.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = repo.Close(db) }()
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	tg, err := bot.NewTelegramAPI(cfg.Telegram.BotToken)
	if err != nil {
		return err
	}
	log.Info().Str("bot", tg.Self.UserName).Msg("telegram authorized")

	cf := cloudflare.NewSDKClient(cloudflare.Options{
		APIToken:  cfg.Cloudflare.APIToken,
		AccountID: cfg.Cloudflare.AccountID,
		BaseURL:   cfg.Cloudflare.BaseURL,
		Timeout:   cfg.Cloudflare.Timeout,
	})
	out := &bot.TelegramReplier{API: tg}

	poller := &bot.Poller{
		Source: tg,
		Dispatcher: &bot.Dispatcher{
			Access:        &services.AccessService{DB: db},
			Domains:       &services.DomainService{DB: db, CF: cf},
			Out:           out,
			AllowedChatID: cfg.Telegram.AllowedChatID,
			BotUsername:   tg.Self.UserName,
		},
		Workers:     cfg.Telegram.Workers,
		PollTimeout: cfg.Telegram.PollTimeout,
	}

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, httpapi.Deps{
		Users:    &services.WhitelistService{DB: db, IdempotencyTTL: cfg.IdempotencyTTL},
		Notifier: &bot.ChatNotifier{Out: out, ChatID: cfg.Telegram.AllowedChatID},
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return poller.Run(gctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
