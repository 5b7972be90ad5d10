package bot

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/cfbot/internal/domain"
	"github.com/tbourn/cfbot/internal/services"
)

// Chat types as reported by Telegram.
const (
	ChatPrivate    = "private"
	ChatGroup      = "group"
	ChatSupergroup = "supergroup"
	ChatChannel    = "channel"
)

// Update is the transport-neutral view of an inbound message.
type Update struct {
	ChatID   int64
	ChatType string
	// UserID is 0 when the message has no sender (e.g. channel posts).
	UserID   int64
	Username string
	Text     string
}

// Replier sends a plain text message to a chat.
type Replier interface {
	Reply(ctx context.Context, chatID int64, text string) error
}

// AccessChecker decides whitelist membership.
type AccessChecker interface {
	IsAllowed(ctx context.Context, telegramID int64, username string) (bool, error)
}

// DomainManager is the subset of services.DomainService used by the bot.
type DomainManager interface {
	Register(ctx context.Context, name string, owner *int64) (services.Registration, error)
	AddRecord(ctx context.Context, name, recordType, content string) (services.RecordRef, error)
	UpdateRecord(ctx context.Context, zoneID, recordID, recordType, content string) (services.RecordRef, error)
	DeleteRecord(ctx context.Context, zoneID, recordID string) error
	List(ctx context.Context) ([]domain.DomainRecord, error)
}

// Dispatcher routes parsed commands to their handlers.
type Dispatcher struct {
	Access        AccessChecker
	Domains       DomainManager
	Out           Replier
	AllowedChatID int64
	BotUsername   string
	Logger        *zerolog.Logger
}

// Outcomes recorded in logs and metrics.
const (
	outcomeOK     = "ok"
	outcomeError  = "error"
	outcomeDenied = "denied"
	outcomeUsage  = "usage"
)

func (d *Dispatcher) logger() *zerolog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return &log.Logger
}

// InScope reports whether updates from the chat may be processed: private
// chats always, any other chat only when it is the configured one.
func (d *Dispatcher) InScope(u Update) bool {
	return u.ChatType == ChatPrivate || u.ChatID == d.AllowedChatID
}

// Handle processes one update. Errors never escape; every failure becomes a
// reply or a log line.
func (d *Dispatcher) Handle(ctx context.Context, u Update) {
	if !d.InScope(u) {
		return
	}
	cmd, perr := Parse(u.Text, d.BotUsername)
	if errors.Is(perr, ErrNotCommand) {
		return
	}
	name := commandName(cmd, perr)
	if u.UserID == 0 {
		return
	}

	start := time.Now()
	lg := d.logger().With().
		Str("command", name).
		Int64("chat_id", u.ChatID).
		Int64("user_id", u.UserID).
		Logger()

	outcome := d.run(ctx, u, cmd, perr, &lg)

	commandsTotal.WithLabelValues(name, outcome).Inc()
	level := zerolog.InfoLevel
	if outcome == outcomeError {
		level = zerolog.WarnLevel
	}
	lg.WithLevel(level).Str("outcome", outcome).Dur("latency", time.Since(start)).Msg("bot command")
}

func commandName(cmd Command, perr error) string {
	if cmd != nil {
		return cmd.Name()
	}
	var ue *UsageError
	if errors.As(perr, &ue) {
		return ue.Command
	}
	return "unknown"
}

func (d *Dispatcher) run(ctx context.Context, u Update, cmd Command, perr error, lg *zerolog.Logger) string {
	allowed, err := d.Access.IsAllowed(ctx, u.UserID, u.Username)
	if err != nil {
		lg.Error().Err(err).Msg("access check failed")
	}
	if !allowed {
		d.reply(ctx, u.ChatID, msgDenied, lg)
		return outcomeDenied
	}

	var ue *UsageError
	if errors.As(perr, &ue) {
		d.reply(ctx, u.ChatID, ue.Usage, lg)
		return outcomeUsage
	}

	text, failed := d.execute(ctx, u, cmd)
	d.reply(ctx, u.ChatID, text, lg)
	if failed {
		return outcomeError
	}
	return outcomeOK
}

// execute runs cmd and returns the reply text and whether the command failed.
func (d *Dispatcher) execute(ctx context.Context, u Update, cmd Command) (string, bool) {
	switch c := cmd.(type) {
	case Start:
		return msgStart, false

	case Help:
		return msgHelp, false

	case RegisterDomain:
		owner := u.UserID
		reg, err := d.Domains.Register(ctx, c.Domain, &owner)
		if err != nil {
			return failureText(failRegister, err), true
		}
		if reg.Existing {
			return zoneExistsText(reg.ZoneID), false
		}
		return registeredText(reg), false

	case DNSAdd:
		ref, err := d.Domains.AddRecord(ctx, c.Domain, c.Type, c.Content)
		if errors.Is(err, services.ErrZoneNotFound) {
			return msgZoneNotFound, false
		}
		if err != nil {
			return failureText(failAdd, err), true
		}
		return recordText("создана", ref), false

	case DNSUpdate:
		ref, err := d.Domains.UpdateRecord(ctx, c.ZoneID, c.RecordID, c.Type, c.Content)
		if err != nil {
			return failureText(failUpdate, err), true
		}
		return recordText("обновлена", ref), false

	case DNSDelete:
		if err := d.Domains.DeleteRecord(ctx, c.ZoneID, c.RecordID); err != nil {
			return failureText(failDelete, err), true
		}
		return recordText("удалена", services.RecordRef{ZoneID: c.ZoneID, RecordID: c.RecordID}), false

	case Domains:
		list, err := d.Domains.List(ctx)
		if err != nil {
			return failureText(failDomains, err), true
		}
		return domainsText(list), false

	default:
		return msgUnknownError, true
	}
}

func (d *Dispatcher) reply(ctx context.Context, chatID int64, text string, lg *zerolog.Logger) {
	if err := d.Out.Reply(ctx, chatID, text); err != nil {
		lg.Error().Err(err).Msg("reply failed")
	}
}
