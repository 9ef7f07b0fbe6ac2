// Package classifier decides which academic branch a tag names and whether a
// record survives admission.
//
// Branch signals live inside free-form tag strings ("gatecse-2025-set1",
// "gate2018-ce-2", "data-science"), so classification is substring matching
// against curated code tables. Each table is compiled into an Aho-Corasick
// automaton and evaluated as an ordered rule list; the first rule that fires
// decides the verdict and unmatched tags are neutral.
package classifier

import (
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/superawat/Gate-QA/internal/domain"
)

// Rule names reported by Explain.
const (
	RuleForeignCode  = "foreign_code"
	RuleForeignInfix = "foreign_infix"
	RuleTargetInfix  = "target_infix"
	RuleNone         = ""
)

// Tables are the curated substring lists. All entries are matched case-insensitively.
type Tables struct {
	// GateMarker marks exam-session tags; infix rules only apply to those.
	GateMarker string `yaml:"gate_marker"`
	// ForeignCodes name non-target branches anywhere in a tag.
	ForeignCodes []string `yaml:"foreign_codes"`
	// ForeignInfixes are hyphen-delimited branch codes inside gate tags.
	ForeignInfixes []string `yaml:"foreign_infixes"`
	// TargetInfixes name the curated branch inside gate tags.
	TargetInfixes []string `yaml:"target_infixes"`
}

// DefaultTables returns the built-in branch tables.
func DefaultTables() Tables {
	return Tables{
		GateMarker: "gate",
		ForeignCodes: []string{
			"gateme", "gatece", "gateee", "gateec", "gatein",
			"gatech", "gatebt", "gatecivil", "gatemech", "gateelectrical",
		},
		ForeignInfixes: []string{"-me-", "-ce-", "-ee-", "-ec-", "-in-"},
		TargetInfixes:  []string{"cse", "cs", "it", "data", "artificial"},
	}
}

type rule struct {
	name     string
	gateOnly bool
	verdict  domain.BranchVerdict
	matcher  *ahocorasick.Matcher
}

// TagVerdict explains the classification of one tag.
type TagVerdict struct {
	Tag     string
	Verdict domain.BranchVerdict
	Rule    string
	GateTag bool
}

// Result is the classification of a whole tag sequence.
type Result struct {
	// Retained holds every tag that is not foreign-branch, in input order.
	Retained            []string
	HasTargetBranchTag  bool
	HasForeignBranchTag bool
	Tags                []TagVerdict
}

// Admission returns the keep/discard verdict for the classified record.
func (r Result) Admission() domain.AdmissionVerdict {
	return Admit(r.HasTargetBranchTag, r.HasForeignBranchTag)
}

// BranchClassifier classifies tags against compiled tables. It is safe for concurrent use.
type BranchClassifier struct {
	// mu guards the matchers and the caser, neither of which is reentrant.
	mu         sync.Mutex
	fold       cases.Caser
	gateMarker string
	rules      []rule
}

// NewBranchClassifier compiles tables into an ordered rule list.
func NewBranchClassifier(tables Tables) *BranchClassifier {
	fold := cases.Lower(language.Und)

	c := &BranchClassifier{
		fold:       fold,
		gateMarker: fold.String(tables.GateMarker),
	}

	c.addRule(RuleForeignCode, false, domain.ForeignBranch, tables.ForeignCodes)
	c.addRule(RuleForeignInfix, true, domain.ForeignBranch, tables.ForeignInfixes)
	c.addRule(RuleTargetInfix, true, domain.TargetBranch, tables.TargetInfixes)

	return c
}

func (c *BranchClassifier) addRule(name string, gateOnly bool, verdict domain.BranchVerdict, codes []string) {
	patterns := make([]string, 0, len(codes))
	for _, code := range codes {
		if code = c.fold.String(strings.TrimSpace(code)); code != "" {
			patterns = append(patterns, code)
		}
	}
	if len(patterns) == 0 {
		return
	}
	c.rules = append(c.rules, rule{
		name:     name,
		gateOnly: gateOnly,
		verdict:  verdict,
		matcher:  ahocorasick.NewStringMatcher(patterns),
	})
}

// Explain classifies one tag and reports which rule decided it.
func (c *BranchClassifier) Explain(tag string) TagVerdict {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.fold.String(tag)
	isGate := c.gateMarker != "" && strings.Contains(key, c.gateMarker)

	for _, r := range c.rules {
		if r.gateOnly && !isGate {
			continue
		}
		if len(r.matcher.Match([]byte(key))) > 0 {
			return TagVerdict{Tag: tag, Verdict: r.verdict, Rule: r.name, GateTag: isGate}
		}
	}

	return TagVerdict{Tag: tag, Verdict: domain.Neutral, Rule: RuleNone, GateTag: isGate}
}

// ClassifyTag returns the branch verdict for one tag.
func (c *BranchClassifier) ClassifyTag(tag string) domain.BranchVerdict {
	return c.Explain(tag).Verdict
}

// Classify partitions a normalized tag sequence. Foreign-branch tags are
// always dropped from Retained, whatever the admission outcome.
func (c *BranchClassifier) Classify(tags []string) Result {
	res := Result{
		Retained: make([]string, 0, len(tags)),
		Tags:     make([]TagVerdict, 0, len(tags)),
	}

	for _, tag := range tags {
		v := c.Explain(tag)
		res.Tags = append(res.Tags, v)

		switch v.Verdict {
		case domain.ForeignBranch:
			res.HasForeignBranchTag = true
			continue
		case domain.TargetBranch:
			res.HasTargetBranchTag = true
		}
		res.Retained = append(res.Retained, tag)
	}

	return res
}
