// Package merge combines the canonical question collection with a fresh scrape,
// re-cleans every record and drops duplicates and foreign-branch records.
package merge

import (
	"github.com/superawat/Gate-QA/internal/classifier"
	"github.com/superawat/Gate-QA/internal/domain"
	"github.com/superawat/Gate-QA/internal/logger"
	"github.com/superawat/Gate-QA/internal/rules"
	"github.com/superawat/Gate-QA/internal/sanitizer"
	"github.com/superawat/Gate-QA/internal/tags"
)

// SchemaOracle validates raw records. A nil oracle admits everything.
type SchemaOracle interface {
	Validate(rec domain.Record) bool
}

// Stats are the run counters reported to the caller.
type Stats struct {
	Total            int `json:"total"`
	Kept             int `json:"kept"`
	RemovedForBranch int `json:"removed_for_branch"`
	InvalidSchema    int `json:"invalid_schema"`
	Duplicates       int `json:"duplicates"`
}

// Rejection records one dropped input record.
type Rejection struct {
	// Index is the position in the concatenated prior+incoming sequence.
	Index  int
	Link   string
	Reason domain.RejectReason
}

// Result is the outcome of one merge run.
type Result struct {
	Records    []domain.Record
	Stats      Stats
	Rejections []Rejection
}

// Pipeline runs sanitizer, schema gate, normalizer, classifier and admission
// over every record. A Pipeline holds no per-run state; each Merge call owns
// its own identity set.
type Pipeline struct {
	sanitizer  *sanitizer.Sanitizer
	normalizer *tags.Normalizer
	classifier *classifier.BranchClassifier
	schema     SchemaOracle
	logger     logger.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSchema enables the schema gate.
func WithSchema(oracle SchemaOracle) Option {
	return func(p *Pipeline) {
		p.schema = oracle
	}
}

// WithLogger sets the logger; the default discards output.
func WithLogger(log logger.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.logger = log
		}
	}
}

// New builds a pipeline from a rule set.
func New(set rules.Set, opts ...Option) *Pipeline {
	p := &Pipeline{
		sanitizer:  sanitizer.New(set.Attribution),
		normalizer: tags.NewNormalizer(set.Tags),
		classifier: classifier.NewBranchClassifier(set.Branches),
		logger:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Sanitizer returns the body sanitizer used by the pipeline.
func (p *Pipeline) Sanitizer() *sanitizer.Sanitizer { return p.sanitizer }

// Normalizer returns the tag normalizer used by the pipeline.
func (p *Pipeline) Normalizer() *tags.Normalizer { return p.normalizer }

// Classifier returns the branch classifier used by the pipeline.
func (p *Pipeline) Classifier() *classifier.BranchClassifier { return p.classifier }

// Clean applies sanitizer, normalizer and classifier to one record and returns
// the cleaned copy with the classification. The input is not modified. The
// copy drops Source, so a schema check re-encodes the cleaned fields.
func (p *Pipeline) Clean(rec domain.Record) (domain.Record, classifier.Result) {
	rec.Source = nil
	rec.Question = p.sanitizer.Clean(rec.Question)
	res := p.classifier.Classify(p.normalizer.Normalize(rec.Tags))
	rec.Tags = res.Retained
	return rec, res
}

// Merge processes prior records first, then incoming ones. The first record
// admitted for a non-empty link wins; later records with that link are skipped
// without being cleaned.
func (p *Pipeline) Merge(prior, incoming []domain.Record) *Result {
	all := make([]domain.Record, 0, len(prior)+len(incoming))
	all = append(all, prior...)
	all = append(all, incoming...)

	res := &Result{
		Records: make([]domain.Record, 0, len(all)),
		Stats:   Stats{Total: len(all)},
	}
	seen := make(map[string]struct{}, len(all))

	for i, rec := range all {
		key := rec.Identity()

		if key != "" {
			if _, dup := seen[key]; dup {
				res.Stats.Duplicates++
				p.reject(res, i, key, domain.ReasonDuplicate)
				continue
			}
		}

		if p.schema != nil && !p.schema.Validate(rec) {
			res.Stats.InvalidSchema++
			p.reject(res, i, key, domain.ReasonSchemaRejected)
			continue
		}

		cleaned, class := p.Clean(rec)
		if class.Admission() == domain.Discard {
			res.Stats.RemovedForBranch++
			p.reject(res, i, key, domain.ReasonForeignBranch, logger.Strings("tags", rec.Tags))
			continue
		}

		res.Records = append(res.Records, cleaned)
		seen[key] = struct{}{}
	}

	res.Stats.Kept = len(res.Records)

	p.logger.Info("Merge complete",
		logger.Int("prior", len(prior)),
		logger.Int("incoming", len(incoming)),
		logger.Int("total", res.Stats.Total),
		logger.Int("kept", res.Stats.Kept),
		logger.Int("removed_for_branch", res.Stats.RemovedForBranch),
		logger.Int("invalid_schema", res.Stats.InvalidSchema),
		logger.Int("duplicates", res.Stats.Duplicates),
	)

	return res
}

func (p *Pipeline) reject(res *Result, index int, link string, reason domain.RejectReason, fields ...logger.Field) {
	res.Rejections = append(res.Rejections, Rejection{Index: index, Link: link, Reason: reason})

	p.logger.Debug("Record dropped", append([]logger.Field{
		logger.Int("index", index),
		logger.String("link", link),
		logger.String("reason", string(reason)),
		logger.Error(reason.Err()),
	}, fields...)...)
}
