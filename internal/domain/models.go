// Package domain defines the persistence models for the bot's whitelist and
// domain registry. These types are mapped with GORM and form the core data
// layer shared by the repository, services, bot and HTTP packages.
package domain

import (
	"strings"
	"time"
)

// WhitelistEntry identifies an actor allowed to issue privileged bot commands.
// An actor matches either by numeric Telegram id or by username; at least one
// of them is set. Both columns are nullable and carry their own unique index,
// so absent values never collide with each other.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - TelegramID: numeric Telegram user id (optional, unique when present).
//   - Username: Telegram handle without the leading '@' (optional, unique when present).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type WhitelistEntry struct {
	ID         string    `json:"id"                   gorm:"type:char(36);primaryKey"`
	TelegramID *int64    `json:"telegramId,omitempty" gorm:"uniqueIndex:ux_whitelist_telegram_id"`
	Username   *string   `json:"username,omitempty"   gorm:"type:varchar(64);uniqueIndex:ux_whitelist_username"`
	CreatedAt  time.Time `json:"createdAt"            gorm:"index"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName returns the database table name for WhitelistEntry.
func (WhitelistEntry) TableName() string { return "whitelist" }

// DomainRecord is a Cloudflare zone registered through the bot. It links the
// human domain name to the zone id and name servers Cloudflare assigned.
//
// Records are append-only: nothing updates or deletes them once created.
type DomainRecord struct {
	ID              string    `json:"id"                        gorm:"type:char(36);primaryKey"`
	Name            string    `json:"name"                      gorm:"type:varchar(253);not null;uniqueIndex:ux_domains_name"`
	ZoneID          string    `json:"zoneId"                    gorm:"type:varchar(64);not null"`
	NameServers     []string  `json:"nameServers"               gorm:"type:text;serializer:json"`
	OwnerTelegramID *int64    `json:"ownerTelegramId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"                 gorm:"index"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName returns the database table name for DomainRecord.
func (DomainRecord) TableName() string { return "domains" }

// NormalizeUsername strips surrounding whitespace and a single leading '@'.
func NormalizeUsername(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimPrefix(s, "@")
}
