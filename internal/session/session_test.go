package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pssnndl/Recolorization/pkg/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetMissingSession(t *testing.T) {
	db := setupTestDB(t)

	s, err := db.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s != nil {
		t.Errorf("missing session returned %+v, want nil", s)
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	s := models.NewSession("s1")
	s.Append(models.Message{Role: models.RoleUser, Text: "hello", Timestamp: time.Now().UTC()})
	s.Image = models.NewImageAsset([]byte{1, 2, 3}, "png", 16, 16)
	s.Palette = &models.Palette{
		Colors: []models.Color{{R: 10, G: 20, B: 30}},
		Source: models.ProvenanceUser,
	}
	s.RecolorCount = 2
	s.Version = 5

	if err := db.Save(ctx, s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := db.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("saved session not found")
	}
	if got.Version != 5 {
		t.Errorf("version = %d, want 5", got.Version)
	}
	if got.RecolorCount != 2 {
		t.Errorf("recolor count = %d, want 2", got.RecolorCount)
	}
	if len(got.Messages) != 1 || got.Messages[0].Text != "hello" {
		t.Errorf("transcript not preserved: %+v", got.Messages)
	}
	if !got.HasImage() || got.Image.Fingerprint != s.Image.Fingerprint {
		t.Errorf("image asset not preserved")
	}
	if !got.HasPalette() || got.Palette.Colors[0] != (models.Color{R: 10, G: 20, B: 30}) {
		t.Errorf("palette not preserved: %+v", got.Palette)
	}
}

func TestSaveUpserts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	s := models.NewSession("s1")
	s.Version = 1
	if err := db.Save(ctx, s); err != nil {
		t.Fatalf("first save: %v", err)
	}

	s.Version = 2
	s.RecolorCount = 1
	if err := db.Save(ctx, s); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := db.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Version != 2 || got.RecolorCount != 1 {
		t.Errorf("upsert did not overwrite: version=%d count=%d", got.Version, got.RecolorCount)
	}
}

func TestSaveRejectsEmptyID(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Save(context.Background(), &models.Session{}); err == nil {
		t.Error("empty session ID did not error")
	}
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	s := models.NewSession("gone")
	if err := db.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.Delete(ctx, "gone"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := db.Get(ctx, "gone")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("deleted session still present")
	}

	// Deleting a missing session is not an error.
	if err := db.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}

func TestPurgeIdle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	stale := models.NewSession("stale")
	stale.UpdatedAt = time.Now().Add(-2 * time.Hour)
	if err := db.Save(ctx, stale); err != nil {
		t.Fatalf("save stale: %v", err)
	}

	fresh := models.NewSession("fresh")
	fresh.UpdatedAt = time.Now()
	if err := db.Save(ctx, fresh); err != nil {
		t.Fatalf("save fresh: %v", err)
	}

	n, err := db.PurgeIdle(ctx, time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d sessions, want 1", n)
	}

	if got, _ := db.Get(ctx, "stale"); got != nil {
		t.Error("stale session survived purge")
	}
	if got, _ := db.Get(ctx, "fresh"); got == nil {
		t.Error("fresh session was purged")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
