package audit

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	auditRepo "github.com/mrlokans/hymnal/internal/database/audit"
	"github.com/mrlokans/hymnal/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditLog{}, &entities.HymnBook{})
	require.NoError(t, err)

	return NewService(auditRepo.NewRepository(db)), db
}

func TestService_RecordTx(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	actor := &entities.User{ID: 7}

	t.Run("commits with the transaction", func(t *testing.T) {
		err := db.Transaction(func(tx *gorm.DB) error {
			return svc.RecordTx(ctx, tx, Entry{
				ActorID:  ActorID(actor),
				Action:   entities.AuditCreateHymnBook,
				Details:  "Created hymn book Book A",
				Metadata: map[string]any{"hymn_book_id": 1},
			})
		})
		require.NoError(t, err)

		var saved entities.AuditLog
		require.NoError(t, db.Where("action = ?", entities.AuditCreateHymnBook).First(&saved).Error)
		require.NotNil(t, saved.UserID)
		assert.Equal(t, uint(7), *saved.UserID)
		assert.JSONEq(t, `{"hymn_book_id":1}`, string(saved.Metadata))
	})

	t.Run("rolls back with the transaction", func(t *testing.T) {
		boom := errors.New("boom")
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := svc.RecordTx(ctx, tx, Entry{Action: entities.AuditDeleteHymnBook}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var count int64
		db.Model(&entities.AuditLog{}).Where("action = ?", entities.AuditDeleteHymnBook).Count(&count)
		assert.Zero(t, count)
	})
}

func TestService_RecordAsync(t *testing.T) {
	svc, db := setupTestService(t)

	svc.RecordAsync(Entry{Action: entities.AuditLogin, Details: "login alice"})

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&entities.AuditLog{}).Where("action = ?", entities.AuditLogin).Count(&count)
		return count == 1
	}, time.Second, 10*time.Millisecond)
}

func TestActorID(t *testing.T) {
	assert.Nil(t, ActorID(nil))
	id := ActorID(&entities.User{ID: 3})
	require.NotNil(t, id)
	assert.Equal(t, uint(3), *id)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("a", 20)
	got := truncate(long, 10)
	assert.Len(t, got, 10)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestService_Record(t *testing.T) {
	svc, db := setupTestService(t)

	svc.Record(context.Background(), Entry{Action: entities.AuditLogin, Details: "User alice logged in"})

	var count int64
	require.NoError(t, db.Model(&entities.AuditLog{}).Where("action = ?", entities.AuditLogin).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
