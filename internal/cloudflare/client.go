// Package cloudflare is a thin adapter over the Cloudflare v4 API. It exposes
// only the zone and DNS record operations the bot needs and converts every
// failure into a single *Error shape, so callers never handle SDK or
// transport errors directly.
package cloudflare

import "context"

// Zone is a newly created Cloudflare zone.
type Zone struct {
	ID          string
	NameServers []string
}

// Record is the payload of a DNS record to create.
type Record struct {
	Type    string
	Name    string
	Content string
	TTL     int
	Proxied bool
}

// RecordPatch carries the fields changed by an update. Empty fields are left
// untouched upstream.
type RecordPatch struct {
	Type    string
	Content string
}

// Client abstracts the Cloudflare API for testability. The real
// implementation wraps the cloudflare-go SDK; tests inject fakes.
type Client interface {
	// CreateZone creates a full zone under the configured account.
	CreateZone(ctx context.Context, name string) (Zone, error)

	// FindZoneByName looks a zone up by exact name. A missing zone is
	// reported with found == false and a nil error.
	FindZoneByName(ctx context.Context, name string) (zoneID string, found bool, err error)

	// CreateRecord creates a DNS record and returns its id.
	CreateRecord(ctx context.Context, zoneID string, rec Record) (string, error)

	// UpdateRecord partially updates a DNS record and returns its id.
	UpdateRecord(ctx context.Context, zoneID, recordID string, patch RecordPatch) (string, error)

	// DeleteRecord removes a DNS record.
	DeleteRecord(ctx context.Context, zoneID, recordID string) error
}
