// Package classify implements a diagnostics command that shows how the
// pipeline treats a list of tags.
package classify

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/superawat/Gate-QA/cmd/common"
	"github.com/superawat/Gate-QA/internal/classifier"
	"github.com/superawat/Gate-QA/internal/merge"
	"github.com/superawat/Gate-QA/internal/report"
	"github.com/superawat/Gate-QA/internal/rules"
)

// Run normalizes and classifies tags with the given rules and prints the verdicts.
func Run(tags []string, set rules.Set, out io.Writer) classifier.Result {
	p := merge.New(set)
	normalized := p.Normalizer().Normalize(tags)
	res := p.Classifier().Classify(normalized)

	fmt.Fprintf(out, "Rules version: %s\n", set.Version)
	fmt.Fprintf(out, "Normalized tags: %s\n", strings.Join(normalized, ", "))
	fmt.Fprintf(out, "Retained tags: %s\n", strings.Join(res.Retained, ", "))
	report.NewTableRenderer(out).RenderVerdicts(res)

	return res
}

// Command creates the classify command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "classify TAG [TAG...]",
		Short: "Show branch verdicts and admission for a list of tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.FromCommand(cmd)
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			Run(args, deps.Rules, cmd.OutOrStdout())
			return nil
		},
	}
}
