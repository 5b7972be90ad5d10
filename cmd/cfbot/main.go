// Command cfbot runs the Telegram bot that manages Cloudflare zones, together
// with the admin HTTP API for its whitelist.
//
//	cfbot [serve]                  bot + HTTP server (default)
//	cfbot migrate                  create or update the schema and exit
//	cfbot whitelist list|add|remove
//
// @title                       cfbot admin API
// @version                     1.0
// @description                 Whitelist administration and webhook test endpoints of the Cloudflare Telegram bot.
// @BasePath                    /
// @securityDefinitions.apikey  AdminKey
// @in                          header
// @name                        X-Admin-Key
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	_ "github.com/tbourn/cfbot/docs"
	"github.com/tbourn/cfbot/internal/config"
	"github.com/tbourn/cfbot/internal/sysutil"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "cfbot",
	Short:         "Telegram bot control panel for Cloudflare DNS",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServeCmd,
}

func init() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	rootCmd.AddCommand(serveCmd, migrateCmd, whitelistCmd, versionCmd)
}

// setupLogging configures the global logger from cfg.
func setupLogging(cfg config.Config) {
	sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty, "cfbot")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("cfbot failed")
		stop()
		os.Exit(1)
	}
}
