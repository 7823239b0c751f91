package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vidgrab/vidgrab-bot/types"
)

func seedUser(t *testing.T, s *JSONUserStore, id string, status types.UserStatus) *types.User {
	t.Helper()
	u, err := s.Create(&types.User{
		ID:       id,
		Status:   status,
		JoinedAt: time.Now(),
		LastSeen: time.Now(),
		Balance:  decimal.Zero,
	})
	if err != nil {
		t.Fatalf("Create(%s): %v", id, err)
	}
	return u
}

func TestUserStoreCreateAndGet(t *testing.T) {
	cols := newTestCollections(t)
	s := NewUserStore(cols, zerolog.Nop())

	seedUser(t, s, "1", types.UserStatusFree)

	if got := s.Get("1"); got == nil || got.ID != "1" {
		t.Fatalf("Get(1) = %+v", got)
	}
	if s.Get("2") != nil {
		t.Fatal("Get of an unknown user is not nil")
	}

	_, err := s.Create(&types.User{ID: "1", Status: types.UserStatusFree})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("duplicate create err = %v, want ErrDuplicateID", err)
	}
}

func TestUserStoreGetReturnsCopy(t *testing.T) {
	cols := newTestCollections(t)
	s := NewUserStore(cols, zerolog.Nop())
	seedUser(t, s, "1", types.UserStatusFree)

	got := s.Get("1")
	got.Status = types.UserStatusAdmin

	if s.Get("1").Status != types.UserStatusFree {
		t.Fatal("mutating a returned user changed the store")
	}
}

func TestUserStoreReload(t *testing.T) {
	cols := newTestCollections(t)
	s := NewUserStore(cols, zerolog.Nop())
	seedUser(t, s, "1", types.UserStatusFree)
	s.SetStatus("1", types.UserStatusTrial)

	reloaded := NewUserStore(cols, zerolog.Nop())
	got := reloaded.Get("1")
	if got == nil {
		t.Fatal("user lost across a reload")
	}
	if got.Status != types.UserStatusTrial {
		t.Fatalf("reloaded status = %q, want trial", got.Status)
	}
}

func TestUserStoreSkipsMalformedRecords(t *testing.T) {
	cols := newTestCollections(t)

	doc := `{
  "1": {"id": "1", "status": "free", "join_date": "2026-01-01T00:00:00Z", "last_seen": "2026-01-01T00:00:00Z", "language": "en", "balance": "0", "first_name": "A"},
  "2": {"id": "2", "status": "platinum", "join_date": "2026-01-01T00:00:00Z", "last_seen": "2026-01-01T00:00:00Z", "language": "en", "balance": "0", "first_name": "B"}
}`
	if err := os.WriteFile(filepath.Join(cols.Dir(), "users.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewUserStore(cols, zerolog.Nop())
	if s.Count() != 1 {
		t.Fatalf("Count = %d, want 1 (bad record skipped)", s.Count())
	}
	if s.Get("1") == nil {
		t.Fatal("valid record was not loaded")
	}
	if s.Get("2") != nil {
		t.Fatal("record with an unknown status was loaded")
	}
}

func TestUserStorePremiumUsers(t *testing.T) {
	cols := newTestCollections(t)
	s := NewUserStore(cols, zerolog.Nop())

	seedUser(t, s, "free", types.UserStatusFree)
	seedUser(t, s, "active", types.UserStatusFree)
	seedUser(t, s, "lapsed", types.UserStatusFree)

	now := time.Now()
	s.SetPremium("active", now.Add(time.Hour))
	s.SetPremium("lapsed", now.Add(-time.Hour))

	premium := s.PremiumUsers(now)
	if len(premium) != 1 || premium[0].ID != "active" {
		t.Fatalf("PremiumUsers = %+v, want just the active one", premium)
	}
}

func TestUserStoreSetPremium(t *testing.T) {
	cols := newTestCollections(t)
	s := NewUserStore(cols, zerolog.Nop())
	seedUser(t, s, "1", types.UserStatusFree)

	until := time.Now().Add(30 * 24 * time.Hour)
	got := s.SetPremium("1", until)
	if got == nil {
		t.Fatal("SetPremium returned nil for a known user")
	}
	if got.Status != types.UserStatusPremium {
		t.Fatalf("status = %q, want premium", got.Status)
	}
	if got.PremiumUntil == nil || !got.PremiumUntil.Equal(until) {
		t.Fatalf("PremiumUntil = %v, want %v", got.PremiumUntil, until)
	}

	if s.SetPremium("missing", until) != nil {
		t.Fatal("SetPremium for an unknown user is not nil")
	}
}

func TestUserStoreAddBalance(t *testing.T) {
	cols := newTestCollections(t)
	s := NewUserStore(cols, zerolog.Nop())
	seedUser(t, s, "1", types.UserStatusFree)

	s.AddBalance("1", decimal.NewFromInt(3))
	got := s.AddBalance("1", decimal.NewFromFloat(1.5))
	if got == nil || !got.Balance.Equal(decimal.NewFromFloat(4.5)) {
		t.Fatalf("balance = %+v, want 4.5", got)
	}
}
