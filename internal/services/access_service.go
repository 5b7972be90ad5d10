package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/cfbot/internal/repo"
)

// AccessService decides whether a Telegram actor may run privileged commands.
type AccessService struct {
	DB *gorm.DB
}

// IsAllowed reports whether a whitelist entry matches telegramID or username.
// An empty username never matches. Lookup failures are returned as errors so
// the caller can deny without treating the actor as unknown.
func (s *AccessService) IsAllowed(ctx context.Context, telegramID int64, username string) (bool, error) {
	tr := otel.Tracer("services/AccessService")
	ctx, span := tr.Start(ctx, "IsAllowed",
		trace.WithAttributes(attribute.Int64("telegram.user_id", telegramID)),
	)
	defer span.End()

	var id *int64
	if telegramID != 0 {
		id = &telegramID
	}
	_, err := repo.FindWhitelistEntry(ctx, s.DB, id, username)
	if repo.IsNotFound(err) {
		span.SetAttributes(attribute.Bool("allowed", false))
		return false, nil
	}
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	span.SetAttributes(attribute.Bool("allowed", true))
	return true, nil
}
