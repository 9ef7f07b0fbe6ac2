// Package merge implements the merge command, which folds a fresh scrape into
// the canonical question file, re-cleans everything and rewrites the file.
package merge

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/superawat/Gate-QA/cmd/common"
	"github.com/superawat/Gate-QA/internal/config"
	"github.com/superawat/Gate-QA/internal/logger"
	internalmerge "github.com/superawat/Gate-QA/internal/merge"
	"github.com/superawat/Gate-QA/internal/metrics"
	"github.com/superawat/Gate-QA/internal/report"
	"github.com/superawat/Gate-QA/internal/rules"
	"github.com/superawat/Gate-QA/internal/storage"
)

// Options are the per-invocation overrides of the merge command.
type Options struct {
	DryRun   bool
	NoBackup bool
}

// Runner executes one merge run.
type Runner struct {
	cfg      *config.Config
	rules    rules.Set
	logger   logger.Logger
	renderer *report.TableRenderer
	opts     Options
	now      func() time.Time
}

// NewRunner creates a runner. Summary tables go to out.
func NewRunner(cfg *config.Config, set rules.Set, log logger.Logger, out io.Writer, opts Options) *Runner {
	return &Runner{
		cfg:      cfg,
		rules:    set,
		logger:   log,
		renderer: report.NewTableRenderer(out),
		opts:     opts,
		now:      time.Now,
	}
}

// Run loads both collections, merges them and replaces the canonical file.
func (r *Runner) Run() (*internalmerge.Result, error) {
	start := r.now()
	log := r.logger.With(logger.String("run_id", uuid.NewString()))

	existingPath := r.cfg.Paths.Existing
	prior, err := storage.Load(existingPath)
	if err != nil {
		return nil, fmt.Errorf("load existing questions: %w", err)
	}

	incomingPath := r.cfg.Paths.Incoming
	incoming, found, err := storage.LoadOptional(incomingPath)
	if err != nil {
		return nil, fmt.Errorf("load incoming questions: %w", err)
	}
	if !found {
		log.Warn("Incoming file not found, cleaning existing questions only",
			logger.String("path", incomingPath))
	}

	log.Info("Starting merge",
		logger.String("existing", existingPath),
		logger.Int("existing_count", len(prior)),
		logger.Int("incoming_count", len(incoming)),
		logger.String("rules_version", r.rules.Version),
	)

	pipelineOpts := []internalmerge.Option{internalmerge.WithLogger(log)}
	oracle, err := common.LoadSchema(r.cfg.Paths.Schema, log)
	if err != nil {
		return nil, err
	}
	if oracle != nil {
		pipelineOpts = append(pipelineOpts, internalmerge.WithSchema(oracle))
	}

	result := internalmerge.New(r.rules, pipelineOpts...).Merge(prior, incoming)

	if r.opts.DryRun {
		log.Info("Dry run, canonical file left untouched")
	} else {
		backupPath, saveErr := storage.Save(existingPath, result.Records, storage.SaveOptions{
			Backup:     !r.cfg.Backup.Disabled && !r.opts.NoBackup,
			TimeFormat: r.cfg.Backup.TimeFormat,
			Now:        start,
		})
		if saveErr != nil {
			return nil, fmt.Errorf("save questions: %w", saveErr)
		}
		if backupPath != "" {
			log.Info("Backup created", logger.String("path", backupPath))
		}
		log.Info("Questions saved",
			logger.String("path", existingPath),
			logger.Int("count", len(result.Records)),
		)
	}

	finished := r.now()
	took := finished.Sub(start)
	log.Info("Merge run finished",
		logger.Bool("dry_run", r.opts.DryRun),
		logger.Int("rejected", len(result.Rejections)),
		logger.Duration("took", took),
	)
	r.writeMetrics(log, result.Stats, finished, took)
	r.renderer.RenderStats(result.Stats)

	return result, nil
}

// writeMetrics exports run counters when a textfile path is configured.
// Failures are logged and do not fail the run.
func (r *Runner) writeMetrics(log logger.Logger, stats internalmerge.Stats, finished time.Time, took time.Duration) {
	path := r.cfg.Paths.Metrics
	if path == "" {
		return
	}

	recorder := metrics.NewRecorder()
	recorder.Observe(stats, finished, took)
	if err := recorder.WriteTextfile(path); err != nil {
		log.Warn("Failed to write metrics", logger.Error(err))
	}
}

// Command creates the merge command.
func Command() *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge newly scraped questions into the canonical file",
		Long: `Merge reads the canonical question file and the latest scrape, re-cleans
every record, drops duplicates, schema failures and foreign-branch questions,
and atomically rewrites the canonical file (keeping a timestamped backup).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.FromCommand(cmd)
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			if existing, _ := cmd.Flags().GetString("existing"); existing != "" {
				deps.Config.Paths.Existing = existing
			}
			if incoming, _ := cmd.Flags().GetString("incoming"); incoming != "" {
				deps.Config.Paths.Incoming = incoming
			}

			_, err = NewRunner(deps.Config, deps.Rules, deps.Logger, cmd.OutOrStdout(), opts).Run()
			return err
		},
	}

	cmd.Flags().String("existing", "", "canonical question file (overrides paths.existing)")
	cmd.Flags().String("incoming", "", "newly scraped question file (overrides paths.incoming)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "run the pipeline without writing the canonical file")
	cmd.Flags().BoolVar(&opts.NoBackup, "no-backup", false, "do not keep a backup of the canonical file")

	return cmd
}
