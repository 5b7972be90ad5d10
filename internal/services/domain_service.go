// Package services – DomainService
//
// DomainService registers Cloudflare zones and manages DNS records on behalf
// of the bot. Zone lookups ask Cloudflare first and fall back to the local
// registry; the two sources are never reconciled. Adapter failures are
// returned unchanged as *cloudflare.Error.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/idna"
	"gorm.io/gorm"

	"github.com/tbourn/cfbot/internal/cloudflare"
	"github.com/tbourn/cfbot/internal/domain"
	"github.com/tbourn/cfbot/internal/repo"
)

// Record defaults for records created by the bot: automatic TTL, DNS only.
const (
	recordTTLAuto = 1
	recordProxied = false
)

// DomainService coordinates the Cloudflare adapter and the domain registry.
type DomainService struct {
	DB *gorm.DB
	CF cloudflare.Client
}

// Registration is the outcome of Register.
type Registration struct {
	ZoneID      string
	NameServers []string
	// Existing is true when Cloudflare already had the zone; nothing was
	// created or stored in that case.
	Existing bool
}

// RecordRef identifies a DNS record.
type RecordRef struct {
	ZoneID   string
	RecordID string
}

// NormalizeDomain lowercases name, drops a trailing dot and converts
// internationalized names to their ASCII (punycode) form.
func NormalizeDomain(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")
	if name == "" {
		return "", ErrInvalidDomain
	}
	ascii, err := idna.Lookup.ToASCII(name)
	if err != nil || !strings.Contains(ascii, ".") {
		return "", ErrInvalidDomain
	}
	return ascii, nil
}

// Register creates a Cloudflare zone for name and stores it in the registry,
// unless Cloudflare already has a zone with that name.
func (s *DomainService) Register(ctx context.Context, name string, owner *int64) (Registration, error) {
	tr := otel.Tracer("services/DomainService")
	ctx, span := tr.Start(ctx, "Register")
	defer span.End()

	name, err := NormalizeDomain(name)
	if err != nil {
		return Registration{}, err
	}
	span.SetAttributes(attribute.String("domain.name", name))

	zoneID, found, err := s.CF.FindZoneByName(ctx, name)
	if err != nil {
		span.RecordError(err)
		return Registration{}, err
	}
	if found {
		span.SetAttributes(attribute.Bool("zone.existing", true))
		return Registration{ZoneID: zoneID, Existing: true}, nil
	}

	zone, err := s.CF.CreateZone(ctx, name)
	if err != nil {
		span.RecordError(err)
		return Registration{}, err
	}

	_, err = repo.CreateDomain(ctx, s.DB, repo.NewDomain{
		Name:            name,
		ZoneID:          zone.ID,
		NameServers:     zone.NameServers,
		OwnerTelegramID: owner,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return Registration{}, ErrDomainExists
	}
	if err != nil {
		span.RecordError(err)
		return Registration{}, fmt.Errorf("store domain: %w", err)
	}

	span.SetAttributes(attribute.String("zone.id", zone.ID))
	return Registration{ZoneID: zone.ID, NameServers: zone.NameServers}, nil
}

// ResolveZone returns the zone id for name from Cloudflare, falling back to
// the registry. ErrZoneNotFound is returned when neither knows it.
func (s *DomainService) ResolveZone(ctx context.Context, name string) (string, error) {
	zoneID, found, err := s.CF.FindZoneByName(ctx, name)
	if err != nil {
		return "", err
	}
	if found {
		return zoneID, nil
	}

	d, err := repo.FindDomainByName(ctx, s.DB, name)
	if repo.IsNotFound(err) {
		return "", ErrZoneNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup domain: %w", err)
	}
	return d.ZoneID, nil
}

// lookupName is NormalizeDomain without the validity check. Names IDNA
// rejects ("localhost", "exa_mple.com") are still looked up as typed, so an
// unknown zone is reported as ErrZoneNotFound.
func lookupName(name string) string {
	if ascii, err := NormalizeDomain(name); err == nil {
		return ascii
	}
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
}

// AddRecord creates a record named after the domain itself in the domain's
// zone.
func (s *DomainService) AddRecord(ctx context.Context, name, recordType, content string) (RecordRef, error) {
	tr := otel.Tracer("services/DomainService")
	ctx, span := tr.Start(ctx, "AddRecord",
		trace.WithAttributes(attribute.String("record.type", recordType)),
	)
	defer span.End()

	name = lookupName(name)
	if name == "" {
		return RecordRef{}, ErrZoneNotFound
	}
	span.SetAttributes(attribute.String("domain.name", name))

	zoneID, err := s.ResolveZone(ctx, name)
	if err != nil {
		span.RecordError(err)
		return RecordRef{}, err
	}

	id, err := s.CF.CreateRecord(ctx, zoneID, cloudflare.Record{
		Type:    recordType,
		Name:    name,
		Content: content,
		TTL:     recordTTLAuto,
		Proxied: recordProxied,
	})
	if err != nil {
		span.RecordError(err)
		return RecordRef{}, err
	}
	return RecordRef{ZoneID: zoneID, RecordID: id}, nil
}

// UpdateRecord changes type and content of an existing record.
func (s *DomainService) UpdateRecord(ctx context.Context, zoneID, recordID, recordType, content string) (RecordRef, error) {
	tr := otel.Tracer("services/DomainService")
	ctx, span := tr.Start(ctx, "UpdateRecord",
		trace.WithAttributes(
			attribute.String("zone.id", zoneID),
			attribute.String("record.id", recordID),
		),
	)
	defer span.End()

	id, err := s.CF.UpdateRecord(ctx, zoneID, recordID, cloudflare.RecordPatch{Type: recordType, Content: content})
	if err != nil {
		span.RecordError(err)
		return RecordRef{}, err
	}
	return RecordRef{ZoneID: zoneID, RecordID: id}, nil
}

// DeleteRecord removes a record.
func (s *DomainService) DeleteRecord(ctx context.Context, zoneID, recordID string) error {
	tr := otel.Tracer("services/DomainService")
	ctx, span := tr.Start(ctx, "DeleteRecord",
		trace.WithAttributes(
			attribute.String("zone.id", zoneID),
			attribute.String("record.id", recordID),
		),
	)
	defer span.End()

	if err := s.CF.DeleteRecord(ctx, zoneID, recordID); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// List returns the registered domains, newest first.
func (s *DomainService) List(ctx context.Context) ([]domain.DomainRecord, error) {
	tr := otel.Tracer("services/DomainService")
	ctx, span := tr.Start(ctx, "List")
	defer span.End()

	return repo.ListDomains(ctx, s.DB)
}
