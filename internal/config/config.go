// Package config loads application settings from an optional YAML file with
// environment variable overrides. Environment always wins, so deployments can
// tweak a single knob without editing the file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig selects the history backend.
type DatabaseConfig struct {
	Type string `yaml:"type"` // "sqlite" or "postgres"
	Path string `yaml:"path"` // SQLite file path
	DSN  string `yaml:"dsn"`  // Postgres connection string
}

// NotificationConfig bounds the reminder hours.
type NotificationConfig struct {
	StartHour int `yaml:"start_hour"`
	EndHour   int `yaml:"end_hour"`
}

// Config is the full application configuration.
type Config struct {
	Mode           string             `yaml:"mode"` // "dev" or "prod"
	UserID         string             `yaml:"user_id"`
	ProfilePath    string             `yaml:"profile_path"`
	CurriculumPath string             `yaml:"curriculum_path"`
	VocabularyPath string             `yaml:"vocabulary_path"`
	Database       DatabaseConfig     `yaml:"database"`
	Notifications  NotificationConfig `yaml:"notifications"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Mode:           "dev",
		UserID:         "learner",
		ProfilePath:    "data/profile.json",
		CurriculumPath: "data/curriculum.json",
		VocabularyPath: "data/vocab_data.json",
		Database: DatabaseConfig{
			Type: "sqlite",
			Path: "data/history.db",
		},
		Notifications: NotificationConfig{
			StartHour: 8,
			EndHour:   22,
		},
	}
}

// Load reads the YAML config file if it exists, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Mode, "APP_MODE")
	setString(&cfg.UserID, "USER_ID")
	setString(&cfg.ProfilePath, "PROFILE_PATH")
	setString(&cfg.CurriculumPath, "CURRICULUM_PATH")
	setString(&cfg.VocabularyPath, "VOCABULARY_PATH")
	setString(&cfg.Database.Type, "DB_TYPE")
	setString(&cfg.Database.Path, "DB_PATH")
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setHour(&cfg.Notifications.StartHour, "NOTIFICATION_START_HOUR")
	setHour(&cfg.Notifications.EndHour, "NOTIFICATION_END_HOUR")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setHour(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			*dst = h
		}
	}
}
