// Package report renders run summaries as console tables.
package report

import (
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/superawat/Gate-QA/internal/audit"
	"github.com/superawat/Gate-QA/internal/classifier"
	"github.com/superawat/Gate-QA/internal/merge"
)

// TableRenderer writes tables to an output.
type TableRenderer struct {
	out io.Writer
}

// NewTableRenderer creates a renderer writing to out.
func NewTableRenderer(out io.Writer) *TableRenderer {
	return &TableRenderer{out: out}
}

func (r *TableRenderer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	return t
}

// RenderStats prints the counters of a merge run.
func (r *TableRenderer) RenderStats(stats merge.Stats) {
	t := r.newTable()
	t.SetTitle("Merge summary")
	t.AppendHeader(table.Row{"Outcome", "Records"})
	t.AppendRows([]table.Row{
		{"Total processed", stats.Total},
		{"Kept", stats.Kept},
		{"Removed (foreign branch)", stats.RemovedForBranch},
		{"Invalid schema", stats.InvalidSchema},
		{"Duplicates", stats.Duplicates},
	})
	t.Render()
}

// RenderAudit prints the per-check counts followed by every finding.
func (r *TableRenderer) RenderAudit(rep *audit.Report) {
	counts := rep.Counts()
	checks := make([]string, 0, len(counts))
	for check := range counts {
		checks = append(checks, check)
	}
	sort.Strings(checks)

	summary := r.newTable()
	summary.SetTitle("Audit summary")
	summary.AppendHeader(table.Row{"Check", "Findings"})
	for _, check := range checks {
		summary.AppendRow(table.Row{check, counts[check]})
	}
	summary.AppendFooter(table.Row{"Records", rep.Records})
	summary.Render()

	if rep.Passed() {
		return
	}

	details := r.newTable()
	details.AppendHeader(table.Row{"#", "Check", "Link", "Detail"})
	for _, f := range rep.Findings {
		details.AppendRow(table.Row{f.Index, f.Check, f.Link, f.Detail})
	}
	details.Render()
}

// RenderVerdicts prints the classification of each tag and the admission result.
func (r *TableRenderer) RenderVerdicts(res classifier.Result) {
	t := r.newTable()
	t.AppendHeader(table.Row{"Tag", "Gate tag", "Verdict", "Rule"})
	for _, v := range res.Tags {
		t.AppendRow(table.Row{v.Tag, v.GateTag, v.Verdict, v.Rule})
	}
	t.AppendFooter(table.Row{"Admission", "", res.Admission(), ""})
	t.Render()
}
