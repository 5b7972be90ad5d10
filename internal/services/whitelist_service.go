// Package services – WhitelistService
//
// This file implements WhitelistService, which owns the lifecycle of
// whitelist entries for the admin HTTP API and the admin CLI. It normalizes
// input, runs an advisory duplicate check and relies on the store's unique
// indexes for the final word. Creation can be made retry-safe with an
// idempotency key.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/cfbot/internal/domain"
	"github.com/tbourn/cfbot/internal/repo"
)

// DefaultIdempotencyTTL is used when WhitelistService.IdempotencyTTL is unset.
const DefaultIdempotencyTTL = 24 * time.Hour

// WhitelistService manages whitelist entries.
type WhitelistService struct {
	DB             *gorm.DB
	IdempotencyTTL time.Duration
}

// CreateInput is the input of Create. Username may carry a leading "@".
type CreateInput struct {
	Username       string
	TelegramID     *int64
	IdempotencyKey string
}

// List returns all entries, newest first.
func (s *WhitelistService) List(ctx context.Context) ([]domain.WhitelistEntry, error) {
	tr := otel.Tracer("services/WhitelistService")
	ctx, span := tr.Start(ctx, "List")
	defer span.End()

	out, err := repo.ListWhitelist(ctx, s.DB)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("whitelist.count", len(out)))
	return out, nil
}

// Stats returns the entry count and the latest UpdatedAt, used for ETags.
func (s *WhitelistService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return repo.WhitelistStats(ctx, s.DB)
}

// Create adds an entry. It returns replayed == true when the idempotency key
// matched an earlier successful creation; the original entry is returned.
func (s *WhitelistService) Create(ctx context.Context, in CreateInput) (entry *domain.WhitelistEntry, replayed bool, err error) {
	tr := otel.Tracer("services/WhitelistService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.Bool("idempotency.key_present", in.IdempotencyKey != "")),
	)
	defer span.End()

	username := domain.NormalizeUsername(in.Username)
	tid := in.TelegramID
	if tid != nil && *tid == 0 {
		tid = nil
	}
	if username == "" && tid == nil {
		return nil, false, ErrIdentityRequired
	}

	if in.IdempotencyKey != "" {
		if prev, ok := s.replay(ctx, in.IdempotencyKey); ok {
			span.SetAttributes(attribute.Bool("idempotency.replay", true))
			return prev, true, nil
		}
	}

	if _, err := repo.FindWhitelistEntry(ctx, s.DB, tid, username); err == nil {
		return nil, false, ErrUserExists
	} else if !repo.IsNotFound(err) {
		span.RecordError(err)
		return nil, false, fmt.Errorf("lookup whitelist entry: %w", err)
	}

	e, err := repo.CreateWhitelistEntry(ctx, s.DB, tid, username)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, false, ErrUserExists
	}
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("create whitelist entry: %w", err)
	}

	if in.IdempotencyKey != "" {
		ttl := s.IdempotencyTTL
		if ttl <= 0 {
			ttl = DefaultIdempotencyTTL
		}
		// A concurrent request may have stored the key first; the entry is
		// already persisted either way.
		if _, ierr := repo.CreateIdempotency(ctx, s.DB, in.IdempotencyKey, e.ID, http.StatusCreated, ttl); ierr != nil {
			span.RecordError(ierr)
		}
	}

	span.SetAttributes(attribute.String("whitelist.id", e.ID))
	return e, false, nil
}

// HasReplay reports whether key refers to a stored, unexpired creation.
func (s *WhitelistService) HasReplay(ctx context.Context, key string, now time.Time) bool {
	rec, err := repo.GetIdempotency(ctx, s.DB, key, now)
	return err == nil && rec != nil
}

func (s *WhitelistService) replay(ctx context.Context, key string) (*domain.WhitelistEntry, bool) {
	rec, err := repo.GetIdempotency(ctx, s.DB, key, time.Now().UTC())
	if err != nil {
		return nil, false
	}
	e, err := repo.GetWhitelistEntry(ctx, s.DB, rec.EntryID)
	if err != nil {
		return nil, false
	}
	return e, true
}

// Delete removes the entry with id, or returns ErrUserNotFound.
func (s *WhitelistService) Delete(ctx context.Context, id string) error {
	tr := otel.Tracer("services/WhitelistService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("whitelist.id", id)),
	)
	defer span.End()

	deleted, err := repo.DeleteWhitelistEntry(ctx, s.DB, id)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}
