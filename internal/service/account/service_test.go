package account

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eliswilliam/CINEHOME/internal/config"
	"github.com/eliswilliam/CINEHOME/internal/storage"
)

// fakeKV is an in-memory stand-in for the redis client.
type fakeKV struct {
	mu      sync.Mutex
	entries map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{entries: make(map[string]string)}
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case string:
		f.entries[key] = v
	default:
		return errors.New("unsupported value type")
	}
	return nil
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.entries[key]
	if !ok {
		return "", errors.New("key not found")
	}
	return value, nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{
		Databases: map[string]config.DatabaseConfig{
			"sqlite3": {
				DSN: ":memory:",
			},
		},
	}
	db, err := storage.Open("sqlite3", cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := storage.Migrate(db, "sqlite3"); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewService(db, newFakeKV(), nil, true), db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, db := newTestService(t)
	defer db.Close()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ana@Example.com", "segredo123")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Fatalf("expected lowercased email, got %s", user.Email)
	}
	if user.ID <= 0 {
		t.Fatalf("expected positive user id")
	}

	if _, err := svc.Register(ctx, "ana@example.com", "outra"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	logged, err := svc.Login(ctx, "ana@example.com", "segredo123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("login returned wrong user")
	}

	if _, err := svc.Login(ctx, "ana@example.com", "errada"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "ninguem@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email must look like bad credentials, got %v", err)
	}
}

func TestUsernameFlow(t *testing.T) {
	svc, db := newTestService(t)
	defer db.Close()
	ctx := context.Background()

	ana, err := svc.Register(ctx, "ana@example.com", "segredo")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	available, err := svc.CheckUsername(ctx, "cinefila")
	if err != nil || !available {
		t.Fatalf("expected username available, got %v %v", available, err)
	}

	if err := svc.RegisterUsername(ctx, "ana@example.com", "cinefila"); err != nil {
		t.Fatalf("RegisterUsername: %v", err)
	}

	available, err = svc.CheckUsername(ctx, "cinefila")
	if err != nil || available {
		t.Fatalf("expected username taken, got %v %v", available, err)
	}

	if _, err := svc.Register(ctx, "bia@example.com", "segredo"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.RegisterUsername(ctx, "bia@example.com", "cinefila"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if err := svc.RegisterUsername(ctx, "ninguem@example.com", "livre"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	user, err := svc.GetUser(ctx, ana.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Username != "cinefila" {
		t.Fatalf("expected stored handle, got %q", user.Username)
	}
}

func TestChangePassword(t *testing.T) {
	svc, db := newTestService(t)
	defer db.Close()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ana@example.com", "antiga"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.ChangePassword(ctx, "ana@example.com", "errada", "nova"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(ctx, "ana@example.com", "antiga", "antiga"); err == nil {
		t.Fatalf("expected error for unchanged password")
	}
	if err := svc.ChangePassword(ctx, "ana@example.com", "antiga", "nova"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, err := svc.Login(ctx, "ana@example.com", "nova"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := svc.Login(ctx, "ana@example.com", "antiga"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
}
