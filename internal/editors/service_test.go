package editors

import (
	"context"
	"testing"
	"time"

	"github.com/helperkit/tagstore/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	lastUpsert *models.Editor
	byUsername map[string]*models.Editor
}

func (f *fakeRepo) UpsertByUsername(ctx context.Context, e *models.Editor) (*models.Editor, error) {
	f.lastUpsert = e
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	if f.byUsername == nil {
		f.byUsername = map[string]*models.Editor{}
	}
	ret := *e
	ret.ID = "abcd1234"
	f.byUsername[e.Username] = &ret
	return &ret, nil
}

func (f *fakeRepo) GetByUsername(ctx context.Context, username string) (*models.Editor, error) {
	if f.byUsername == nil {
		return nil, nil
	}
	return f.byUsername[username], nil
}

func TestEnsureBootstrap(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	e, err := svc.EnsureBootstrap(ctx, "admin", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e == nil {
		t.Fatal("expected editor, got nil")
	}
	if e.Role != models.RoleHelper {
		t.Fatalf("unexpected role: %s", e.Role)
	}
	if e.ID == "" {
		t.Fatalf("expected returned editor to have an ID set by repo")
	}
	if repo.lastUpsert == nil {
		t.Fatal("expected repository UpsertByUsername to be called")
	}
	if repo.lastUpsert.CreatedAt.IsZero() || repo.lastUpsert.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set: created=%v updated=%v", repo.lastUpsert.CreatedAt, repo.lastUpsert.UpdatedAt)
	}
	// stored hash must verify against the original password
	if err := bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte("s3cret")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	// empty username => no-op
	e2, err := svc.EnsureBootstrap(ctx, "", "pw")
	if err != nil || e2 != nil {
		t.Fatalf("expected no-op for empty username, got %v %v", e2, err)
	}
}

func TestAuthenticate(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.EnsureBootstrap(ctx, "helper", "hunter2"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	e, err := svc.Authenticate(ctx, "helper", "hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Username != "helper" {
		t.Fatalf("unexpected username: %s", e.Username)
	}

	if _, err := svc.Authenticate(ctx, "helper", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost", "hunter2"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}
