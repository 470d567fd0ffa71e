package services_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ideaboard/internal/db"
	"ideaboard/internal/models"
	"ideaboard/internal/services"
)

func TestBackupRunWritesSnapshot(t *testing.T) {
	dir := t.TempDir()

	conn, err := gorm.Open(sqlite.Open(filepath.Join(dir, "backup_test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	idea := models.Idea{
		Title: "Backup me", Description: "snapshot this idea please", Author: "Sam", Status: models.StatusPending,
	}
	require.NoError(t, conn.Create(&idea).Error)
	require.NoError(t, conn.Create(&models.Vote{IdeaID: idea.ID, VoterID: "ip:192.0.2.1"}).Error)

	path := filepath.Join(dir, "snapshot.json")
	task := services.NewBackupTask(conn, path, "@every 4h", zap.NewNop())
	require.NoError(t, task.Run(context.Background()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap struct {
		Ideas []models.Idea `json:"ideas"`
		Votes []models.Vote `json:"votes"`
	}
	require.NoError(t, json.Unmarshal(raw, &snap))
	require.Len(t, snap.Ideas, 1)
	assert.Equal(t, "Backup me", snap.Ideas[0].Title)
	assert.Len(t, snap.Votes, 1)

	// No stray temp file once the rename lands.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
