// Package common provides shared utilities for command implementations.
package common

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/superawat/Gate-QA/internal/config"
	"github.com/superawat/Gate-QA/internal/logger"
	"github.com/superawat/Gate-QA/internal/merge"
	"github.com/superawat/Gate-QA/internal/rules"
	"github.com/superawat/Gate-QA/internal/schema"
)

// Persistent flag names registered on the root command.
const (
	FlagConfig = "config"
	FlagDebug  = "debug"
)

// CommandDeps holds common dependencies for all commands.
type CommandDeps struct {
	Config *config.Config
	Logger logger.Logger
	Rules  rules.Set
}

// Validate ensures all required dependencies are present.
func (d *CommandDeps) Validate() error {
	if d.Logger == nil {
		return ErrLoggerRequired
	}
	if d.Config == nil {
		return ErrConfigRequired
	}
	return nil
}

// FromCommand builds the dependencies from the root command's persistent flags.
func FromCommand(cmd *cobra.Command) (*CommandDeps, error) {
	cfgPath, _ := cmd.Flags().GetString(FlagConfig)
	debug, _ := cmd.Flags().GetBool(FlagDebug)
	return NewCommandDeps(cfgPath, debug)
}

// NewCommandDeps loads and validates the configuration, builds the logger and
// loads the rule tables. An empty cfgPath falls back to CONFIG_PATH and then
// config.yml; a missing file means defaults plus environment.
func NewCommandDeps(cfgPath string, debug bool) (*CommandDeps, error) {
	if cfgPath == "" {
		cfgPath = config.GetConfigPath(config.DefaultConfigPath)
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	set, err := rules.Load(cfg.Rules.File)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	log.Debug("Dependencies ready",
		logger.String("config", cfgPath),
		logger.String("rules_version", set.Version),
	)

	deps := &CommandDeps{Config: cfg, Logger: log, Rules: set}
	if err = deps.Validate(); err != nil {
		return nil, err
	}
	return deps, nil
}

// LoadSchema loads the configured question schema. A missing schema file is
// not an error: the run continues without the gate and a warning is logged.
func LoadSchema(path string, log logger.Logger) (merge.SchemaOracle, error) {
	v, err := schema.Load(path)
	if errors.Is(err, schema.ErrNotFound) {
		log.Warn("Schema file not found, skipping schema validation", logger.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	log.Debug("Schema loaded", logger.String("path", v.Path()))
	return v, nil
}
