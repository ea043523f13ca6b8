package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/eliswilliam/CINEHOME/internal/models"
)

func TestStoreAppendTrimsWindow(t *testing.T) {
	store := NewStore(10, time.Hour)

	for i := 0; i < 12; i++ {
		store.Append("s1", models.RoleUser, fmt.Sprintf("msg-%d", i))
	}

	history := store.History("s1")
	if len(history) != 10 {
		t.Fatalf("expected 10 retained messages, got %d", len(history))
	}
	if history[0].Content != "msg-2" {
		t.Fatalf("expected oldest retained message msg-2, got %s", history[0].Content)
	}
	if history[9].Content != "msg-11" {
		t.Fatalf("expected newest message msg-11, got %s", history[9].Content)
	}
}

func TestStoreDefaults(t *testing.T) {
	store := NewStore(0, 0)
	if store.maxMessages != DefaultMaxHistoryMessages {
		t.Fatalf("expected default window %d, got %d", DefaultMaxHistoryMessages, store.maxMessages)
	}
	if store.idleTimeout != DefaultSessionTimeout {
		t.Fatalf("expected default timeout %v, got %v", DefaultSessionTimeout, store.idleTimeout)
	}
}

func TestStoreHistoryIsACopy(t *testing.T) {
	store := NewStore(10, time.Hour)
	store.Append("s1", models.RoleUser, "original")

	history := store.History("s1")
	history[0].Content = "mutated"

	if got := store.History("s1")[0].Content; got != "original" {
		t.Fatalf("history copy leaked a mutation: %s", got)
	}
	if store.History("missing") != nil {
		t.Fatalf("expected nil history for unknown session")
	}
}

func TestStoreClear(t *testing.T) {
	store := NewStore(10, time.Hour)
	store.Append("s1", models.RoleUser, "oi")

	if !store.Clear("s1") {
		t.Fatalf("expected Clear to report an existing session")
	}
	if store.Clear("s1") {
		t.Fatalf("expected Clear to report false on second call")
	}
	if store.Describe("s1").Exists {
		t.Fatalf("cleared session still described as existing")
	}
}

func TestStoreDescribe(t *testing.T) {
	store := NewStore(10, time.Hour)

	if store.Describe("nope").Exists {
		t.Fatalf("unknown session should not exist")
	}

	store.Append("s1", models.RoleUser, "oi")
	store.Append("s1", models.RoleAssistant, "olá")
	desc := store.Describe("s1")
	if !desc.Exists || desc.MessageCount != 2 {
		t.Fatalf("unexpected description: %+v", desc)
	}
	if desc.CreatedAt.IsZero() || desc.LastActivity.IsZero() {
		t.Fatalf("expected timestamps to be set: %+v", desc)
	}
}

func TestStoreGetOrCreateRefreshesActivity(t *testing.T) {
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(10, 30*time.Minute)
	store.now = func() time.Time { return current }

	store.GetOrCreate("s1")
	current = current.Add(20 * time.Minute)
	store.GetOrCreate("s1")

	desc := store.Describe("s1")
	if !desc.LastActivity.Equal(current) {
		t.Fatalf("expected activity refresh to %v, got %v", current, desc.LastActivity)
	}
	if !desc.CreatedAt.Equal(current.Add(-20 * time.Minute)) {
		t.Fatalf("creation time should not move: %v", desc.CreatedAt)
	}
}

func TestStoreSweepExpired(t *testing.T) {
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(10, 30*time.Minute)
	store.now = func() time.Time { return current }

	store.Append("stale", models.RoleUser, "oi")
	store.Append("fresh", models.RoleUser, "oi")

	current = current.Add(31 * time.Minute)
	store.Append("fresh", models.RoleUser, "ainda aqui")

	if removed := store.SweepExpired(); removed != 1 {
		t.Fatalf("expected 1 eviction, got %d", removed)
	}
	if store.Describe("stale").Exists {
		t.Fatalf("stale session survived the sweep")
	}
	if !store.Describe("fresh").Exists {
		t.Fatalf("fresh session was evicted")
	}
}

func TestStoreSweepIdleBoundary(t *testing.T) {
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(10, 30*time.Minute)
	store.now = func() time.Time { return current }

	store.Append("s1", models.RoleUser, "oi")

	// exactly at the timeout the session is still considered live
	current = current.Add(30 * time.Minute)
	if removed := store.SweepExpired(); removed != 0 {
		t.Fatalf("session at the boundary should survive, evicted %d", removed)
	}

	current = current.Add(time.Nanosecond)
	if removed := store.SweepExpired(); removed != 1 {
		t.Fatalf("expected eviction past the boundary, got %d", removed)
	}
}
