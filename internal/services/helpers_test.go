package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/cfbot/internal/cloudflare"
	"github.com/tbourn/cfbot/internal/repo"
)

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func ptr[T any](v T) *T { return &v }

// fakeCF is an in-memory cloudflare.Client that records calls.
type fakeCF struct {
	mu sync.Mutex

	zones   map[string]string // name -> zone id
	ns      []string
	nextID  int
	calls   []string
	records []cloudflare.Record

	findErr   error
	createErr error
	recordErr error
}

func newFakeCF() *fakeCF {
	return &fakeCF{zones: map[string]string{}, ns: []string{"ada.ns.cloudflare.com", "bob.ns.cloudflare.com"}}
}

func (f *fakeCF) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeCF) CreateZone(_ context.Context, name string) (cloudflare.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "CreateZone")
	if f.createErr != nil {
		return cloudflare.Zone{}, f.createErr
	}
	f.nextID++
	id := fmt.Sprintf("zone-%d", f.nextID)
	f.zones[name] = id
	return cloudflare.Zone{ID: id, NameServers: append([]string(nil), f.ns...)}, nil
}

func (f *fakeCF) FindZoneByName(_ context.Context, name string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "FindZoneByName")
	if f.findErr != nil {
		return "", false, f.findErr
	}
	id, ok := f.zones[name]
	return id, ok, nil
}

func (f *fakeCF) CreateRecord(_ context.Context, zoneID string, rec cloudflare.Record) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "CreateRecord")
	if f.recordErr != nil {
		return "", f.recordErr
	}
	f.records = append(f.records, rec)
	return "rec-" + zoneID, nil
}

func (f *fakeCF) UpdateRecord(_ context.Context, zoneID, recordID string, patch cloudflare.RecordPatch) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "UpdateRecord")
	if f.recordErr != nil {
		return "", f.recordErr
	}
	return recordID, nil
}

func (f *fakeCF) DeleteRecord(_ context.Context, zoneID, recordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "DeleteRecord")
	return f.recordErr
}
