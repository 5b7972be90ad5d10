// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// WhitelistEntry model.
//
// All functions are context-aware and accept a *gorm.DB handle. They follow
// the "thin repository" approach: no business logic, only CRUD persistence
// and query composition. Each call is a single round-trip to the store.
//
// Error semantics:
//   - Lookups that find nothing return ErrNotFound.
//   - Inserts that violate a unique index return ErrDuplicate.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/cfbot/internal/domain"
)

// FindWhitelistEntry returns the first entry whose telegram id equals
// telegramID OR whose username equals username. A nil telegramID or empty
// username is left out of the query, so an actor without a handle never
// matches entries that also lack one. When both are absent, ErrNotFound is
// returned without touching the store.
func FindWhitelistEntry(ctx context.Context, db *gorm.DB, telegramID *int64, username string) (*domain.WhitelistEntry, error) {
	q := db.WithContext(ctx).Model(&domain.WhitelistEntry{})
	switch {
	case telegramID != nil && username != "":
		q = q.Where("telegram_id = ? OR username = ?", *telegramID, username)
	case telegramID != nil:
		q = q.Where("telegram_id = ?", *telegramID)
	case username != "":
		q = q.Where("username = ?", username)
	default:
		return nil, ErrNotFound
	}

	var e domain.WhitelistEntry
	if err := q.Order("created_at asc").First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// GetWhitelistEntry fetches a single entry by id, or ErrNotFound.
func GetWhitelistEntry(ctx context.Context, db *gorm.DB, id string) (*domain.WhitelistEntry, error) {
	var e domain.WhitelistEntry
	if err := db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ListWhitelist returns all entries ordered by creation time descending
// (most recent first). It returns an empty slice when the whitelist is empty.
func ListWhitelist(ctx context.Context, db *gorm.DB) ([]domain.WhitelistEntry, error) {
	out := []domain.WhitelistEntry{}
	err := db.WithContext(ctx).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// CreateWhitelistEntry inserts a new entry with a random UUID and UTC
// timestamps. Empty usernames are stored as NULL so they never collide.
// It returns ErrDuplicate if telegram id or username is already taken.
func CreateWhitelistEntry(ctx context.Context, db *gorm.DB, telegramID *int64, username string) (*domain.WhitelistEntry, error) {
	now := time.Now().UTC()
	e := &domain.WhitelistEntry{
		ID:         uuid.NewString(),
		TelegramID: telegramID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if username != "" {
		u := username
		e.Username = &u
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, mapCreateErr(err)
	}
	return e, nil
}

// DeleteWhitelistEntry removes the entry with the given id. It reports false
// (and no error) when no such entry exists.
func DeleteWhitelistEntry(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.WhitelistEntry{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IsNotFound reports whether err means "no such row".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
