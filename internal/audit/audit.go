// Package audit checks that a persisted collection is already clean: no
// duplicate links, every record a fixed point of the merge pipeline, and no
// foreign-branch, blocklisted or attribution residue left behind.
package audit

import (
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/superawat/Gate-QA/internal/domain"
	"github.com/superawat/Gate-QA/internal/merge"
)

// Check names.
const (
	CheckDuplicateLink     = "duplicate_link"
	CheckNotFixedPoint     = "not_fixed_point"
	CheckForeignTag        = "foreign_tag"
	CheckBlockedTag        = "blocked_tag"
	CheckAttributionAnchor = "attribution_anchor"
	CheckSchema            = "schema_rejected"
)

// Finding is one problem found in the collection.
type Finding struct {
	Check  string
	Index  int
	Link   string
	Detail string
}

// Report is the outcome of an audit.
type Report struct {
	Records  int
	Findings []Finding
}

// Passed reports whether the audit found nothing.
func (r *Report) Passed() bool {
	return len(r.Findings) == 0
}

// Counts returns the number of findings per check.
func (r *Report) Counts() map[string]int {
	counts := make(map[string]int)
	for _, f := range r.Findings {
		counts[f.Check]++
	}
	return counts
}

func (r *Report) add(check string, index int, link, detail string) {
	r.Findings = append(r.Findings, Finding{Check: check, Index: index, Link: link, Detail: detail})
}

// Auditor runs the checks with the rules of a merge pipeline.
type Auditor struct {
	pipeline *merge.Pipeline
	schema   merge.SchemaOracle
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithSchema also validates every record against the schema oracle.
func WithSchema(oracle merge.SchemaOracle) Option {
	return func(a *Auditor) {
		a.schema = oracle
	}
}

// New creates an auditor that judges records by the pipeline's rules.
func New(p *merge.Pipeline, opts ...Option) *Auditor {
	a := &Auditor{pipeline: p}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Check audits the collection in order.
func (a *Auditor) Check(records []domain.Record) *Report {
	report := &Report{Records: len(records)}
	firstSeen := make(map[string]int, len(records))

	for i, rec := range records {
		link := rec.Identity()

		if link != "" {
			if first, dup := firstSeen[link]; dup {
				report.add(CheckDuplicateLink, i, link, fmt.Sprintf("first seen at index %d", first))
			} else {
				firstSeen[link] = i
			}
		}

		if a.schema != nil && !a.schema.Validate(rec) {
			report.add(CheckSchema, i, link, "record does not match the question schema")
		}

		a.checkFixedPoint(report, i, rec)
		a.checkTags(report, i, rec)
		a.checkAnchors(report, i, rec)
	}

	return report
}

func (a *Auditor) checkFixedPoint(report *Report, i int, rec domain.Record) {
	cleaned, _ := a.pipeline.Clean(rec)
	if cleaned.Question != rec.Question {
		report.add(CheckNotFixedPoint, i, rec.Link, "question body changes when cleaned again")
	}
	if !slices.Equal(cleaned.Tags, rec.Tags) {
		report.add(CheckNotFixedPoint, i, rec.Link,
			fmt.Sprintf("tags change when cleaned again: %v -> %v", rec.Tags, cleaned.Tags))
	}
}

func (a *Auditor) checkTags(report *Report, i int, rec domain.Record) {
	for _, tag := range rec.Tags {
		if a.pipeline.Normalizer().IsBlocked(tag) {
			report.add(CheckBlockedTag, i, rec.Link, tag)
		}
		if a.pipeline.Classifier().ClassifyTag(tag) == domain.ForeignBranch {
			report.add(CheckForeignTag, i, rec.Link, tag)
		}
	}
}

// checkAnchors parses the body as HTML and flags links whose visible text is
// an attribution name. Unlike the sanitizer it ignores surrounding whitespace
// and attribute quoting, so it also catches variants the sanitizer leaves.
func (a *Auditor) checkAnchors(report *Report, i int, rec domain.Record) {
	if !strings.Contains(strings.ToLower(rec.Question), "<a") {
		return
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Question))
	if err != nil {
		return
	}

	names := a.pipeline.Sanitizer().AttributionNames()
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		for _, name := range names {
			if strings.EqualFold(text, name) {
				report.add(CheckAttributionAnchor, i, rec.Link, text)
				return
			}
		}
	})
}
