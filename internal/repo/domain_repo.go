// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// DomainRecord model (the registry of zones created through the bot).
//
// Domain records are append-only; there is intentionally no update or
// delete function here.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/cfbot/internal/domain"
)

// NewDomain carries the fields of a domain record to be created.
type NewDomain struct {
	Name            string
	ZoneID          string
	NameServers     []string
	OwnerTelegramID *int64
}

// FindDomainByName fetches a domain record by its exact name, or ErrNotFound.
func FindDomainByName(ctx context.Context, db *gorm.DB, name string) (*domain.DomainRecord, error) {
	var d domain.DomainRecord
	if err := db.WithContext(ctx).Where("name = ?", name).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDomains returns all domain records, newest first.
func ListDomains(ctx context.Context, db *gorm.DB) ([]domain.DomainRecord, error) {
	out := []domain.DomainRecord{}
	err := db.WithContext(ctx).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// CreateDomain inserts a domain record. A name already present in the store
// yields ErrDuplicate.
func CreateDomain(ctx context.Context, db *gorm.DB, in NewDomain) (*domain.DomainRecord, error) {
	now := time.Now().UTC()
	ns := in.NameServers
	if ns == nil {
		ns = []string{}
	}
	d := &domain.DomainRecord{
		ID:              uuid.NewString(),
		Name:            in.Name,
		ZoneID:          in.ZoneID,
		NameServers:     ns,
		OwnerTelegramID: in.OwnerTelegramID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, mapCreateErr(err)
	}
	return d, nil
}
