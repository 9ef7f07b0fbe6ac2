// Package audit implements the audit command, which verifies that the
// canonical question file is already clean.
package audit

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/superawat/Gate-QA/cmd/common"
	internalaudit "github.com/superawat/Gate-QA/internal/audit"
	"github.com/superawat/Gate-QA/internal/logger"
	"github.com/superawat/Gate-QA/internal/merge"
	"github.com/superawat/Gate-QA/internal/report"
	"github.com/superawat/Gate-QA/internal/rules"
	"github.com/superawat/Gate-QA/internal/storage"
)

// ErrAuditFailed is returned when the audit reports any finding.
var ErrAuditFailed = errors.New("audit failed")

// Run audits the collection at path and renders the report to out.
// schemaPath may point at a missing file, in which case the schema check is skipped.
func Run(path, schemaPath string, set rules.Set, log logger.Logger, out io.Writer) (*internalaudit.Report, error) {
	records, err := storage.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	var opts []internalaudit.Option
	oracle, err := common.LoadSchema(schemaPath, log)
	if err != nil {
		return nil, err
	}
	if oracle != nil {
		opts = append(opts, internalaudit.WithSchema(oracle))
	}

	rep := internalaudit.New(merge.New(set), opts...).Check(records)
	report.NewTableRenderer(out).RenderAudit(rep)

	log.Info("Audit complete",
		logger.String("path", path),
		logger.Int("records", rep.Records),
		logger.Int("findings", len(rep.Findings)),
	)

	if !rep.Passed() {
		return rep, fmt.Errorf("%w: %d findings in %s", ErrAuditFailed, len(rep.Findings), path)
	}
	return rep, nil
}

// Command creates the audit command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check that the canonical question file is clean",
		Long: `Audit reports duplicate links, records that would change if merged again,
leftover foreign-branch or blocklisted tags and attribution links in question
bodies. It exits non-zero when anything is found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.FromCommand(cmd)
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			path := deps.Config.Paths.Existing
			if file, _ := cmd.Flags().GetString("file"); file != "" {
				path = file
			}

			_, err = Run(path, deps.Config.Paths.Schema, deps.Rules, deps.Logger, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().String("file", "", "question file to audit (defaults to paths.existing)")

	return cmd
}
