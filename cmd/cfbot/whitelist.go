package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tbourn/cfbot/internal/config"
	"github.com/tbourn/cfbot/internal/domain"
	"github.com/tbourn/cfbot/internal/repo"
	"github.com/tbourn/cfbot/internal/services"
)

var (
	addUsername   string
	addTelegramID int64
)

var whitelistCmd = &cobra.Command{
	Use:   "whitelist",
	Short: "Inspect and edit the bot whitelist",
}

var whitelistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List whitelisted users, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withWhitelist(cmd, func(ctx context.Context, svc *services.WhitelistService) error {
			items, err := svc.List(ctx)
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), items)
		})
	},
}

var whitelistAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Whitelist a user by --username and/or --telegram-id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withWhitelist(cmd, func(ctx context.Context, svc *services.WhitelistService) error {
			in := services.CreateInput{Username: addUsername}
			if addTelegramID != 0 {
				in.TelegramID = &addTelegramID
			}
			e, _, err := svc.Create(ctx, in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), e.ID)
			return err
		})
	},
}

var whitelistRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a whitelist entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWhitelist(cmd, func(ctx context.Context, svc *services.WhitelistService) error {
			return svc.Delete(ctx, args[0])
		})
	},
}

func init() {
	whitelistAddCmd.Flags().StringVar(&addUsername, "username", "", "Telegram username, with or without @")
	whitelistAddCmd.Flags().Int64Var(&addTelegramID, "telegram-id", 0, "numeric Telegram user id")
	whitelistCmd.AddCommand(whitelistListCmd, whitelistAddCmd, whitelistRemoveCmd)
}

// withWhitelist opens the store, makes sure the schema exists and runs fn.
func withWhitelist(cmd *cobra.Command, fn func(context.Context, *services.WhitelistService) error) error {
	cfg, err := config.LoadStore()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	db, err := repo.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = repo.Close(db) }()
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return fn(cmd.Context(), &services.WhitelistService{DB: db, IdempotencyTTL: cfg.IdempotencyTTL})
}

func printEntries(w io.Writer, items []domain.WhitelistEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tTELEGRAM ID\tCREATED")
	for _, e := range items {
		user, tid := "-", "-"
		if e.Username != nil {
			user = "@" + *e.Username
		}
		if e.TelegramID != nil {
			tid = fmt.Sprint(*e.TelegramID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, user, tid, e.CreatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}
