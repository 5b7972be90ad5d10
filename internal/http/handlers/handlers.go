package handlers

import (
	"context"
	"time"

	"github.com/tbourn/cfbot/internal/domain"
	"github.com/tbourn/cfbot/internal/services"
)

// WhitelistService is the whitelist lifecycle consumed by the users
// endpoints. *services.WhitelistService implements it.
type WhitelistService interface {
	List(ctx context.Context) ([]domain.WhitelistEntry, error)
	// Stats returns the entry count and newest UpdatedAt for ETags.
	Stats(ctx context.Context) (int64, *time.Time, error)
	Create(ctx context.Context, in services.CreateInput) (*domain.WhitelistEntry, bool, error)
	Delete(ctx context.Context, id string) error
}

// Notifier delivers a plain-text message to the configured chat.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	users  WhitelistService
	notify Notifier
}

// New binds handlers to their collaborators.
func New(users WhitelistService, notify Notifier) *Handlers {
	return &Handlers{users: users, notify: notify}
}
