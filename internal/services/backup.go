package services

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ideaboard/internal/models"
)

// BackupTask periodically serializes the board to a JSON snapshot file, the
// storage-agnostic successor of the old 4-hourly database file copy. It is
// an external collaborator from the ledger's point of view: read-only, no
// business rules.
type BackupTask struct {
	db       *gorm.DB
	path     string
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
}

type backupSnapshot struct {
	TakenAt  time.Time        `json:"taken_at"`
	Ideas    []models.Idea    `json:"ideas"`
	Comments []models.Comment `json:"comments"`
	Votes    []models.Vote    `json:"votes"`
}

func NewBackupTask(db *gorm.DB, path, schedule string, logger *zap.Logger) *BackupTask {
	return &BackupTask{
		db:       db,
		path:     path,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start registers the cron job and launches the scheduler.
func (t *BackupTask) Start() error {
	_, err := t.cron.AddFunc(t.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := t.Run(ctx); err != nil {
			t.logger.Error("backup failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	t.cron.Start()
	t.logger.Info("backup task scheduled",
		zap.String("schedule", t.schedule), zap.String("path", t.path))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (t *BackupTask) Stop() {
	<-t.cron.Stop().Done()
}

// Run takes one snapshot immediately.
func (t *BackupTask) Run(ctx context.Context) error {
	snap := backupSnapshot{TakenAt: time.Now()}

	if err := t.db.WithContext(ctx).Find(&snap.Ideas).Error; err != nil {
		return err
	}
	if err := t.db.WithContext(ctx).Find(&snap.Comments).Error; err != nil {
		return err
	}
	if err := t.db.WithContext(ctx).Find(&snap.Votes).Error; err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	// Write to a temp file then rename, so a crash mid-write never
	// clobbers the previous snapshot.
	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, t.path); err != nil {
		return err
	}

	t.logger.Info("backup written",
		zap.String("path", t.path),
		zap.Int("ideas", len(snap.Ideas)),
		zap.Int("votes", len(snap.Votes)))
	return nil
}
