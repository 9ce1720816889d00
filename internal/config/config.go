package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Documents
		Importing
		Ollama
		Tasks
		Retention
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Documents struct {
		Dir string // Directory for persisted upload artifacts
	}
	Importing struct {
		MaxUploadSizeMB int64
	}
	Ollama struct {
		URL            string
		TagModel       string
		EmbeddingModel string
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Retention struct {
		ImportLogDays   int    // Days to keep import logs
		CleanupSchedule string // Cron format
	}
	Auth struct {
		BcryptCost int
	}
)

// DefaultDatabasePath is the default path for the application database.
const DefaultDatabasePath = "./quotesync.db"

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("documents_dir", "./documents")
	v.SetDefault("max_upload_size_mb", 25)

	// Ollama defaults
	v.SetDefault("ollama_url", "http://localhost:11434")
	v.SetDefault("ollama_tag_model", "llama3.2")
	v.SetDefault("ollama_embedding_model", "nomic-embed-text")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Retention defaults
	v.SetDefault("import_log_retention_days", 90)
	v.SetDefault("import_log_cleanup_schedule", "30 3 * * *") // Daily at 03:30

	// Auth defaults
	v.SetDefault("auth_bcrypt_cost", 12)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Documents: Documents{
			Dir: v.GetString("DOCUMENTS_DIR"),
		},
		Importing: Importing{
			MaxUploadSizeMB: v.GetInt64("MAX_UPLOAD_SIZE_MB"),
		},
		Ollama: Ollama{
			URL:            v.GetString("OLLAMA_URL"),
			TagModel:       v.GetString("OLLAMA_TAG_MODEL"),
			EmbeddingModel: v.GetString("OLLAMA_EMBEDDING_MODEL"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Retention: Retention{
			ImportLogDays:   v.GetInt("IMPORT_LOG_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("IMPORT_LOG_CLEANUP_SCHEDULE"),
		},
		Auth: Auth{
			BcryptCost: v.GetInt("AUTH_BCRYPT_COST"),
		},
	}
}
