package config

import (
	"os"
	"strconv"
)

// Config collects every environment knob the process reads, so main gets a
// single Load() instead of os.Getenv calls scattered across packages.
type Config struct {
	Port          string
	Env           string // "development" or "production"
	SessionSecret string

	// Storage. Driver "postgres" (default) or "sqlite" for the embedded
	// single-file deployment profile.
	DBDriver string
	DBDSN    string

	// Seed admin account.
	AdminEmail    string
	AdminPassword string

	// SMTP. Mail is disabled when any of these is empty.
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// School news scraping.
	NewsSourceURL string

	// Periodic JSON snapshot of the board.
	BackupPath     string
	BackupSchedule string

	// Entry bound of the shared TTL cache (ideas listing, news items).
	CacheSize int
}

// Load reads the environment. Call after godotenv.Load().
func Load() Config {
	return Config{
		Port:           getenv("PORT", "8080"),
		Env:            getenv("APP_ENV", "development"),
		SessionSecret:  getenv("SESSION_SECRET", "secret_key_change_me"),
		DBDriver:       getenv("DB_DRIVER", "postgres"),
		DBDSN:          getenv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=ideaboard port=5432 sslmode=disable"),
		AdminEmail:     getenv("ADMIN_EMAIL", "admin@school.local"),
		AdminPassword:  getenv("ADMIN_PASSWORD", "admin123"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       os.Getenv("SMTP_PORT"),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		SMTPFrom:       os.Getenv("SMTP_FROM"),
		NewsSourceURL:  os.Getenv("NEWS_SOURCE_URL"),
		BackupPath:     getenv("BACKUP_PATH", "ideaboard_backup.json"),
		BackupSchedule: getenv("BACKUP_SCHEDULE", "@every 4h"),
		CacheSize:      GetInt("CACHE_SIZE", 500),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt reads an integer env var with a fallback.
func GetInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
