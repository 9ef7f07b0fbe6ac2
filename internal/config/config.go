package config

import (
	"github.com/superawat/Gate-QA/internal/logger"
)

// Default configuration values.
const (
	DefaultConfigPath       = "config.yml"
	defaultExistingFile     = "public/questions-filtered.json"
	defaultIncomingFile     = "scraper/new_questions.json"
	defaultSchemaFile       = "scraper/question_schema.json"
	defaultBackupTimeFormat = "20060102-150405"
)

// Config holds all configuration for the curator commands.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Backup  BackupConfig  `yaml:"backup"`
	Rules   RulesConfig   `yaml:"rules"`
	Logging logger.Config `yaml:"logging"`
}

// PathsConfig locates the datasets and side files of a run.
type PathsConfig struct {
	Existing string `env:"GATEQA_EXISTING_FILE" yaml:"existing"`
	Incoming string `env:"GATEQA_INCOMING_FILE" yaml:"incoming"`
	Schema   string `env:"GATEQA_SCHEMA_FILE"   yaml:"schema"`
	// Metrics is a Prometheus textfile path; empty disables the export.
	Metrics string `env:"GATEQA_METRICS_FILE" yaml:"metrics"`
}

// BackupConfig controls the copy of the canonical file kept before overwrite.
type BackupConfig struct {
	// Disabled turns the backup off; the zero value keeps it on.
	Disabled   bool   `env:"GATEQA_BACKUP_DISABLED" yaml:"disabled"`
	TimeFormat string `yaml:"time_format"`
}

// RulesConfig points at an optional versioned rules file.
type RulesConfig struct {
	File string `env:"GATEQA_RULES_FILE" yaml:"file"`
}

// LoadConfig loads the curator configuration from the specified path.
func LoadConfig(path string) (*Config, error) {
	return LoadWithDefaults[Config](path, setDefaults)
}

func setDefaults(cfg *Config) {
	if cfg.Paths.Existing == "" {
		cfg.Paths.Existing = defaultExistingFile
	}
	if cfg.Paths.Incoming == "" {
		cfg.Paths.Incoming = defaultIncomingFile
	}
	if cfg.Paths.Schema == "" {
		cfg.Paths.Schema = defaultSchemaFile
	}
	if cfg.Backup.TimeFormat == "" {
		cfg.Backup.TimeFormat = defaultBackupTimeFormat
	}
	cfg.Logging.SetDefaults()
}
