package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ideaboard/internal/config"
	"ideaboard/internal/models"
	"ideaboard/internal/utils"
)

// Open connects to the configured datastore and runs migrations. The handle
// is returned to the caller and passed down explicitly; nothing in this
// codebase holds a package-level *gorm.DB.
//
// TranslateError is required: the ledger distinguishes duplicate votes from
// other failures via gorm.ErrDuplicatedKey, which only the driver's error
// translator produces.
func Open(cfg config.Config, logger *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var (
		conn *gorm.DB
		err  error
	)
	switch cfg.DBDriver {
	case "sqlite":
		// Embedded single-file profile, the successor of the original
		// file-backed deployment.
		conn, err = gorm.Open(sqlite.Open(cfg.DBDSN), gormCfg)
	case "postgres":
		conn, err = gorm.Open(postgres.Open(cfg.DBDSN), gormCfg)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	logger.Info("database ready", zap.String("driver", cfg.DBDriver))

	if err := SeedAdmin(conn, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate creates or updates the schema, including the (idea_id, voter_id)
// unique index the vote invariant depends on.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.User{},
		&models.InvitationCode{},
		&models.Idea{},
		&models.Comment{},
		&models.Vote{},
	); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// SeedAdmin creates the default administrator account if no user holds that
// email yet. The seeded admin is pre-verified so a fresh deployment can
// moderate immediately.
func SeedAdmin(conn *gorm.DB, email, password string) error {
	var count int64
	if err := conn.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("check admin account: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		Email:         email,
		PasswordHash:  hash,
		Username:      "Administrator",
		Role:          models.RoleAdmin,
		EmailVerified: true,
	}
	if err := conn.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}
	return nil
}
