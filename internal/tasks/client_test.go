package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/hymnal/internal/config"
	auditRepo "github.com/mrlokans/hymnal/internal/database/audit"
	"github.com/mrlokans/hymnal/internal/database/dbtest"
	"github.com/mrlokans/hymnal/internal/entities"
)

func newTestClient(t *testing.T) (*Client, string) {
	t.Helper()
	dir := t.TempDir()
	client, err := NewClient(filepath.Join(dir, "hymnal.db"), DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, dir
}

func TestNewClient_CreatesQueueFile(t *testing.T) {
	_, dir := newTestClient(t)

	_, err := os.Stat(filepath.Join(dir, "hymnal-tasks.db"))
	assert.NoError(t, err)
}

func TestTasksDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "hymnal-tasks.db"), TasksDBPath(filepath.Join("data", "hymnal.db")))
	assert.Equal(t, "hymnal-tasks", TasksDBPath("hymnal"))
}

func TestClient_Lifecycle(t *testing.T) {
	client, _ := newTestClient(t)
	assert.True(t, client.Stop(context.Background()), "stopping an idle client is a no-op")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	assert.Eventually(t, client.Running, time.Second, 10*time.Millisecond)
	assert.NoError(t, client.Ping(ctx))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx))
	assert.False(t, client.Running())
}

type echoTask struct {
	Value string `json:"value"`
}

func (echoTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "echo",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestClient_RunsRegisteredQueue(t *testing.T) {
	client, _ := newTestClient(t)

	got := make(chan string, 1)
	client.Register(backlite.NewQueue(func(_ context.Context, task echoTask) error {
		got <- task.Value
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Add(echoTask{Value: "Amazing Grace"}).Save()
	require.NoError(t, err)
	require.Len(t, ids, 1)

	select {
	case v := <-got:
		assert.Equal(t, "Amazing Grace", v)
	case <-time.After(5 * time.Second):
		t.Fatal("echo task never ran")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.Tasks{Workers: 4, ReleaseAfter: time.Minute})

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
}

func TestCleanupAuditLogsTaskConfig(t *testing.T) {
	task := CleanupAuditLogsTask{RetentionDays: 7}
	cfg := task.Config()

	assert.Equal(t, "cleanup_audit_logs", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.NotNil(t, cfg.Retention)
	assert.Equal(t, 7*24*time.Hour, task.Retention())
	assert.Equal(t, DefaultAuditRetentionDays*24*time.Hour, CleanupAuditLogsTask{}.Retention())
}

type failingCleaner struct{}

func (failingCleaner) DeleteOlderThan(time.Duration) (int64, error) {
	return 0, errors.New("database is locked")
}

func TestCleanupAuditLogsProcessor(t *testing.T) {
	t.Run("deletes only logs past retention", func(t *testing.T) {
		db := dbtest.New(t)
		repo := auditRepo.NewRepository(db.DB)
		ctx := context.Background()

		old := &entities.AuditLog{Action: entities.AuditLogin, Timestamp: time.Now().UTC().Add(-10 * 24 * time.Hour)}
		recent := &entities.AuditLog{Action: entities.AuditLogin, Timestamp: time.Now().UTC().Add(-time.Hour)}
		require.NoError(t, repo.Append(ctx, old))
		require.NoError(t, repo.Append(ctx, recent))

		process := CleanupAuditLogsProcessor(repo)
		require.NoError(t, process(ctx, CleanupAuditLogsTask{RetentionDays: 7}))

		logs, total, err := repo.List(ctx, auditRepo.Filter{}, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, logs, 1)
		assert.Equal(t, recent.ID, logs[0].ID)
	})

	t.Run("propagates cleaner errors for retry", func(t *testing.T) {
		process := CleanupAuditLogsProcessor(failingCleaner{})
		err := process(context.Background(), CleanupAuditLogsTask{})
		assert.ErrorContains(t, err, "database is locked")
	})

	t.Run("requires a cleaner", func(t *testing.T) {
		process := CleanupAuditLogsProcessor(nil)
		assert.Error(t, process(context.Background(), CleanupAuditLogsTask{}))
	})
}
