package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// NewTelegramAPI connects to the Bot API and verifies the token.
func NewTelegramAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return api, nil
}

// messageSender is the part of *tgbotapi.BotAPI used for outbound messages.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// updateSource is the part of *tgbotapi.BotAPI used for long polling.
type updateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// TelegramReplier sends plain text replies through the Bot API.
type TelegramReplier struct {
	API messageSender
}

// Reply implements Replier.
func (r *TelegramReplier) Reply(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	_, err := r.API.Send(msg)
	return err
}

// ChatNotifier delivers operational notices to one fixed chat.
type ChatNotifier struct {
	Out    Replier
	ChatID int64
}

// Notify sends text to the configured chat.
func (n *ChatNotifier) Notify(ctx context.Context, text string) error {
	return n.Out.Reply(ctx, n.ChatID, text)
}

// FromTelegram converts a Bot API update. It reports false for updates that
// carry no text message.
func FromTelegram(upd tgbotapi.Update) (Update, bool) {
	m := upd.Message
	if m == nil || m.Chat == nil || m.Text == "" {
		return Update{}, false
	}
	u := Update{
		ChatID:   m.Chat.ID,
		ChatType: m.Chat.Type,
		Text:     m.Text,
	}
	if m.From != nil {
		u.UserID = m.From.ID
		u.Username = m.From.UserName
	}
	return u, true
}

// Poller receives updates by long polling and hands each one to the
// dispatcher in its own goroutine, at most Workers at a time.
type Poller struct {
	Source      updateSource
	Dispatcher  *Dispatcher
	Workers     int
	PollTimeout time.Duration
}

// Run polls until ctx is cancelled or the update channel closes, then waits
// for in-flight handlers.
func (p *Poller) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(p.PollTimeout / time.Second)
	updates := p.Source.GetUpdatesChan(cfg)

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)

	log.Info().Int("workers", workers).Int("poll_timeout_s", cfg.Timeout).Msg("telegram polling started")
	defer log.Info().Msg("telegram polling stopped")

	for {
		select {
		case <-ctx.Done():
			p.Source.StopReceivingUpdates()
			return g.Wait()
		case upd, ok := <-updates:
			if !ok {
				return g.Wait()
			}
			u, ok := FromTelegram(upd)
			if !ok {
				continue
			}
			g.Go(func() error {
				p.Dispatcher.Handle(ctx, u)
				return nil
			})
		}
	}
}
