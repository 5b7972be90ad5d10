package services

import (
	"context"
	"testing"

	"github.com/tbourn/cfbot/internal/repo"
)

func TestAccessService_EmptyWhitelistDeniesEveryone(t *testing.T) {
	s := &AccessService{DB: newSvcDB(t)}
	for _, tc := range []struct {
		id   int64
		user string
	}{{1, "alice"}, {0, ""}, {42, ""}} {
		ok, err := s.IsAllowed(context.Background(), tc.id, tc.user)
		if err != nil || ok {
			t.Fatalf("IsAllowed(%d, %q) = %v, %v", tc.id, tc.user, ok, err)
		}
	}
}

func TestAccessService_MatchesIdentityOrHandle(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	if _, err := repo.CreateWhitelistEntry(ctx, db, ptr(int64(100)), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateWhitelistEntry(ctx, db, nil, "bob"); err != nil {
		t.Fatal(err)
	}
	s := &AccessService{DB: db}

	cases := []struct {
		name string
		id   int64
		user string
		want bool
	}{
		{"identity only", 100, "", true},
		{"identity with unknown handle", 100, "mallory", true},
		{"handle only", 7, "bob", true},
		{"neither", 7, "mallory", false},
		{"empty handle never matches", 7, "", false},
		{"handle is case sensitive", 7, "Bob", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.IsAllowed(ctx, tc.id, tc.user)
			if err != nil {
				t.Fatalf("IsAllowed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("IsAllowed(%d, %q) = %v, want %v", tc.id, tc.user, got, tc.want)
			}
		})
	}
}

func TestAccessService_StoreErrorIsReturned(t *testing.T) {
	db := newSvcDB(t)
	sqlDB, _ := db.DB()
	_ = sqlDB.Close()

	s := &AccessService{DB: db}
	ok, err := s.IsAllowed(context.Background(), 1, "alice")
	if err == nil || ok {
		t.Fatalf("expected error and deny, got ok=%v err=%v", ok, err)
	}
}
