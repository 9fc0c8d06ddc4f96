package usecase

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"sealed-mail/internal/domain"
)

// mockMigrationRepository はテスト用のモック。
type mockMigrationRepository struct {
	appliedMigrations map[string]*domain.Migration
	executed          map[string][]string
	applyErr          map[string]error
	ensureCalls       int
}

func newMockMigrationRepository() *mockMigrationRepository {
	return &mockMigrationRepository{
		appliedMigrations: make(map[string]*domain.Migration),
		executed:          make(map[string][]string),
		applyErr:          make(map[string]error),
	}
}

func (m *mockMigrationRepository) EnsureTable(ctx context.Context) error {
	m.ensureCalls++
	return nil
}

func (m *mockMigrationRepository) FindAllApplied(ctx context.Context) ([]*domain.Migration, error) {
	var result []*domain.Migration
	for _, migration := range m.appliedMigrations {
		result = append(result, migration)
	}
	return result, nil
}

func (m *mockMigrationRepository) IsMigrationApplied(ctx context.Context, version string) (bool, error) {
	_, exists := m.appliedMigrations[version]
	return exists, nil
}

func (m *mockMigrationRepository) Apply(ctx context.Context, version string, statements []string) error {
	if err := m.applyErr[version]; err != nil {
		return err
	}
	m.executed[version] = statements
	now := time.Now()
	m.appliedMigrations[version] = &domain.Migration{
		Version:   version,
		AppliedAt: &now,
		Status:    domain.MigrationStatusApplied,
	}
	return nil
}

func testMigrationsFS() fstest.MapFS {
	return fstest.MapFS{
		"migrations/001_create_key_records.sql":   {Data: []byte("CREATE TABLE key_records (id INT);\nCREATE INDEX idx ON key_records (id);")},
		"migrations/002_create_key_rotations.sql": {Data: []byte("CREATE TABLE key_rotations (id INT);")},
		"migrations/003_add_column.sql":           {Data: []byte("ALTER TABLE key_records ADD COLUMN note TEXT;")},
		"migrations/README.md":                    {Data: []byte("ignored")},
	}
}

func TestMigrationService_ApplyMigrations(t *testing.T) {
	repo := newMockMigrationRepository()
	service := NewMigrationService(repo, testMigrationsFS(), "migrations")

	count, err := service.ApplyMigrations(context.Background())
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 migrations applied, got %d", count)
	}
	if repo.ensureCalls != 1 {
		t.Errorf("expected EnsureTable to be called once, got %d", repo.ensureCalls)
	}

	// 複数文のファイルは文単位で実行される
	if got := len(repo.executed["001"]); got != 2 {
		t.Errorf("expected 2 statements for 001, got %d", got)
	}
}

func TestMigrationService_ApplyMigrations_AlreadyApplied(t *testing.T) {
	repo := newMockMigrationRepository()
	now := time.Now()
	repo.appliedMigrations["001"] = &domain.Migration{Version: "001", AppliedAt: &now, Status: domain.MigrationStatusApplied}
	repo.appliedMigrations["002"] = &domain.Migration{Version: "002", AppliedAt: &now, Status: domain.MigrationStatusApplied}

	service := NewMigrationService(repo, testMigrationsFS(), "migrations")

	count, err := service.ApplyMigrations(context.Background())
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 migration applied, got %d", count)
	}
	if _, ok := repo.executed["001"]; ok {
		t.Error("migration 001 should not be executed again")
	}
}

func TestMigrationService_ApplyMigrations_Error(t *testing.T) {
	repo := newMockMigrationRepository()
	repo.applyErr["002"] = errors.New("syntax error")

	service := NewMigrationService(repo, testMigrationsFS(), "migrations")

	count, err := service.ApplyMigrations(context.Background())
	if !errors.Is(err, domain.ErrMigrationFailed) {
		t.Fatalf("want ErrMigrationFailed, got %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 migration applied before failure, got %d", count)
	}
	if _, ok := repo.executed["003"]; ok {
		t.Error("migration 003 should not run after a failure")
	}
}

func TestMigrationService_InvalidFileName(t *testing.T) {
	repo := newMockMigrationRepository()
	fsys := fstest.MapFS{
		"migrations/create.sql": {Data: []byte("CREATE TABLE x (id INT);")},
	}
	service := NewMigrationService(repo, fsys, "migrations")

	_, err := service.ApplyMigrations(context.Background())
	if !errors.Is(err, domain.ErrInvalidMigrationFile) {
		t.Errorf("want ErrInvalidMigrationFile, got %v", err)
	}
}

func TestMigrationService_GetMigrationStatus(t *testing.T) {
	repo := newMockMigrationRepository()
	now := time.Now()
	repo.appliedMigrations["001"] = &domain.Migration{Version: "001", AppliedAt: &now, Status: domain.MigrationStatusApplied}

	service := NewMigrationService(repo, testMigrationsFS(), "migrations")

	migrations, err := service.GetMigrationStatus(context.Background())
	if err != nil {
		t.Fatalf("GetMigrationStatus failed: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}

	expectedStatuses := map[string]domain.MigrationStatus{
		"001": domain.MigrationStatusApplied,
		"002": domain.MigrationStatusPending,
		"003": domain.MigrationStatusPending,
	}
	for _, migration := range migrations {
		if migration.Status != expectedStatuses[migration.Version] {
			t.Errorf("migration %s: expected status %s, got %s", migration.Version, expectedStatuses[migration.Version], migration.Status)
		}
	}
	if migrations[0].AppliedAt == nil {
		t.Error("expected AppliedAt for applied migration")
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (id INT);\n\n CREATE INDEX i ON a (id) ;\n")
	if len(got) != 2 {
		t.Fatalf("want 2 statements, got %d: %q", len(got), got)
	}
	if got[1] != "CREATE INDEX i ON a (id)" {
		t.Errorf("unexpected statement %q", got[1])
	}
}
