package postgres

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/jaxxstorm/landlord/internal/backlog"
	"github.com/jaxxstorm/landlord/internal/domain"
)

func getMigrationsPath() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	parentDir := filepath.Dir(dir)      // internal/backlog
	parentDir = filepath.Dir(parentDir) // internal
	return filepath.Join(parentDir, "database", "migrations")
}

func setupTestRepo(t *testing.T) (*Repository, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %s", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %s", err)
	}

	dsn := "postgres://testuser:testpass@" + host + ":" + port.Port() + "/testdb?sslmode=disable"

	m, err := migrate.New("file://"+getMigrationsPath(), dsn)
	if err != nil {
		t.Fatalf("failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to create pool: %s", err)
	}

	logger, _ := zap.NewDevelopment()
	repo := New(pool, logger)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func newTestStory(projectID uuid.UUID) *domain.Story {
	return &domain.Story{
		ProjectID:   projectID,
		Title:       "Wire up password reset flow",
		Description: "Users can request a reset link and set a new password",
		Status:      domain.StoryDraft,
		Labels:      []string{"auth"},
	}
}

func TestRepository_CreateAndGetStory(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	story := newTestStory(uuid.New())

	if err := repo.CreateStory(ctx, story); err != nil {
		t.Fatalf("CreateStory() error = %v", err)
	}
	if story.ID == uuid.Nil {
		t.Error("CreateStory() did not set ID")
	}
	if story.CreatedAt.IsZero() {
		t.Error("CreateStory() did not set CreatedAt")
	}

	got, err := repo.GetStory(ctx, nil, story.ID)
	if err != nil {
		t.Fatalf("GetStory() error = %v", err)
	}
	if got.Title != story.Title {
		t.Errorf("GetStory() title = %q, want %q", got.Title, story.Title)
	}
}

func TestRepository_ListStoriesByStatus(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	project := uuid.New()

	ready := newTestStory(project)
	ready.Status = domain.StoryReady
	if err := repo.CreateStory(ctx, ready); err != nil {
		t.Fatalf("CreateStory(ready) error = %v", err)
	}

	draft := newTestStory(project)
	draft.Title = "Unrelated draft story"
	if err := repo.CreateStory(ctx, draft); err != nil {
		t.Fatalf("CreateStory(draft) error = %v", err)
	}

	stories, err := repo.ListStories(ctx, nil, backlog.StoryFilters{
		Statuses: []domain.StoryStatus{domain.StoryReady},
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("ListStories() error = %v", err)
	}
	for _, s := range stories {
		if s.Status != domain.StoryReady {
			t.Errorf("ListStories() returned story with status %q, want %q", s.Status, domain.StoryReady)
		}
	}
}

func TestRepository_TakeTaskOwnershipAtomic(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	story := newTestStory(uuid.New())
	if err := repo.CreateStory(ctx, story); err != nil {
		t.Fatalf("CreateStory() error = %v", err)
	}

	task := &domain.Task{
		StoryID: story.ID,
		Title:   "Add password reset endpoint",
		Status:  domain.TaskAvailable,
	}
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	userA := uuid.New()
	userB := uuid.New()
	now := story.CreatedAt

	claimed, err := repo.TakeTaskOwnershipAtomic(ctx, nil, task.ID, userA, now)
	if err != nil {
		t.Fatalf("TakeTaskOwnershipAtomic(userA) error = %v", err)
	}
	if !claimed {
		t.Fatal("TakeTaskOwnershipAtomic(userA) expected to win the race on an available task")
	}

	claimed, err = repo.TakeTaskOwnershipAtomic(ctx, nil, task.ID, userB, now)
	if err != nil {
		t.Fatalf("TakeTaskOwnershipAtomic(userB) error = %v", err)
	}
	if claimed {
		t.Fatal("TakeTaskOwnershipAtomic(userB) expected to lose the race on an already-owned task")
	}

	got, err := repo.GetTask(ctx, nil, task.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.OwnerUserID == nil || *got.OwnerUserID != userA {
		t.Errorf("GetTask() owner = %v, want %v", got.OwnerUserID, userA)
	}
}
