package repository

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/usecase"
)

// setupTestDB は埋め込みマイグレーションを適用したSQLiteデータベースを作成する。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "keys.db")), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	svc := usecase.NewMigrationService(NewMigrationRepository(db), Migrations, "migrations")
	if _, err := svc.ApplyMigrations(context.Background()); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	return db
}

func TestKeyRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewKeyRepository(setupTestDB(t))

	rec := &domain.KeyRecord{Name: "key-1", Type: domain.KeyTypeSymmetric, WrappedData: []byte("wrapped-1")}
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.ID == "" {
		t.Error("expected generated ID")
	}

	found, err := repo.FindByNameAndType(ctx, "key-1", domain.KeyTypeSymmetric)
	if err != nil {
		t.Fatalf("FindByNameAndType failed: %v", err)
	}
	if found == nil || !bytes.Equal(found.WrappedData, []byte("wrapped-1")) {
		t.Errorf("unexpected record: %+v", found)
	}

	// 同じ名前でも種別が異なれば別レコード
	missing, err := repo.FindByNameAndType(ctx, "key-1", domain.KeyTypePrivate)
	if err != nil {
		t.Fatalf("FindByNameAndType failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil, got %+v", missing)
	}
}

func TestKeyRepository_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewKeyRepository(setupTestDB(t))

	if err := repo.Create(ctx, &domain.KeyRecord{Name: "key-1", Type: domain.KeyTypeSymmetric, WrappedData: []byte("a")}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err := repo.Create(ctx, &domain.KeyRecord{Name: "key-1", Type: domain.KeyTypeSymmetric, WrappedData: []byte("b")})
	if !errors.Is(err, domain.ErrKeyAlreadyExists) {
		t.Errorf("expected ErrKeyAlreadyExists, got %v", err)
	}
}

func TestKeyRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewKeyRepository(setupTestDB(t))

	for _, data := range []string{"first", "second"} {
		rec := &domain.KeyRecord{Name: "current", Type: domain.KeyTypePassword, WrappedData: []byte(data)}
		if err := repo.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	found, err := repo.FindByNameAndType(ctx, "current", domain.KeyTypePassword)
	if err != nil {
		t.Fatalf("FindByNameAndType failed: %v", err)
	}
	if found == nil || string(found.WrappedData) != "second" {
		t.Errorf("expected upserted data, got %+v", found)
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 record, got %d", len(all))
	}
}

func TestKeyRepository_ExistsByNameAndType(t *testing.T) {
	ctx := context.Background()
	repo := NewKeyRepository(setupTestDB(t))

	if err := repo.Create(ctx, &domain.KeyRecord{Name: "key-1", Type: domain.KeyTypeSymmetric, WrappedData: []byte("a")}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tests := []struct {
		name    string
		keyName string
		keyType domain.KeyType
		want    bool
	}{
		{name: "存在する", keyName: "key-1", keyType: domain.KeyTypeSymmetric, want: true},
		{name: "種別が異なる", keyName: "key-1", keyType: domain.KeyTypePublic, want: false},
		{name: "存在しない", keyName: "key-2", keyType: domain.KeyTypeSymmetric, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ExistsByNameAndType(ctx, tt.keyName, tt.keyType)
			if err != nil {
				t.Fatalf("ExistsByNameAndType failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestKeyRepository_RotationsAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	repo := NewKeyRepository(setupTestDB(t))

	prev := "key-1"
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, rot := range []*domain.KeyRotation{
		{KeyID: "key-1", RotatedAt: base},
		{KeyID: "key-2", PreviousKeyID: &prev, RotatedAt: base.Add(time.Hour)},
	} {
		if err := repo.RecordRotation(ctx, rot); err != nil {
			t.Fatalf("RecordRotation %d failed: %v", i, err)
		}
	}
	if err := repo.Create(ctx, &domain.KeyRecord{Name: "key-2", Type: domain.KeyTypeSymmetric, WrappedData: []byte("a")}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rotations, err := repo.FindAllRotations(ctx)
	if err != nil {
		t.Fatalf("FindAllRotations failed: %v", err)
	}
	if len(rotations) != 2 || rotations[1].KeyID != "key-2" || rotations[1].PreviousKeyID == nil || *rotations[1].PreviousKeyID != "key-1" {
		t.Errorf("unexpected rotations: %+v", rotations)
	}

	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	rotations, err = repo.FindAllRotations(ctx)
	if err != nil {
		t.Fatalf("FindAllRotations failed: %v", err)
	}
	if len(all) != 0 || len(rotations) != 0 {
		t.Errorf("expected empty store, got %d records and %d rotations", len(all), len(rotations))
	}
}
