package classifier_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/superawat/Gate-QA/internal/classifier"
	"github.com/superawat/Gate-QA/internal/domain"
)

func TestBranchClassifier_Explain(t *testing.T) {
	c := classifier.NewBranchClassifier(classifier.DefaultTables())

	tests := []struct {
		tag      string
		verdict  domain.BranchVerdict
		rule     string
		gateTags bool
	}{
		{"gateme-2022-set1", domain.ForeignBranch, classifier.RuleForeignCode, true},
		{"gatecivil-2021-set1", domain.ForeignBranch, classifier.RuleForeignCode, true},
		{"gateelectrical-2019", domain.ForeignBranch, classifier.RuleForeignCode, true},
		{"gatechemical-2020", domain.ForeignBranch, classifier.RuleForeignCode, true},
		{"gate2018-ce-2", domain.ForeignBranch, classifier.RuleForeignInfix, true},
		{"gate2015-ec-1", domain.ForeignBranch, classifier.RuleForeignInfix, true},
		{"gate-in-cse", domain.ForeignBranch, classifier.RuleForeignInfix, true},
		{"gateec-cse", domain.ForeignBranch, classifier.RuleForeignCode, true},
		{"gatecse-2024-set1", domain.TargetBranch, classifier.RuleTargetInfix, true},
		{"GATECSE-2020", domain.TargetBranch, classifier.RuleTargetInfix, true},
		{"gateit-2007", domain.TargetBranch, classifier.RuleTargetInfix, true},
		{"gate-it-2008", domain.TargetBranch, classifier.RuleTargetInfix, true},
		{"gate-data-science-2024", domain.TargetBranch, classifier.RuleTargetInfix, true},
		{"gateda-artificial-intelligence", domain.TargetBranch, classifier.RuleTargetInfix, true},
		{"gate2024", domain.Neutral, classifier.RuleNone, true},
		{"data-science", domain.Neutral, classifier.RuleNone, false},
		{"cse-topics", domain.Neutral, classifier.RuleNone, false},
		{"time-me-out", domain.Neutral, classifier.RuleNone, false},
		{"algorithms", domain.Neutral, classifier.RuleNone, false},
		{"", domain.Neutral, classifier.RuleNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got := c.Explain(tt.tag)
			assert.Equal(t, tt.tag, got.Tag)
			assert.Equal(t, tt.verdict, got.Verdict)
			assert.Equal(t, tt.rule, got.Rule)
			assert.Equal(t, tt.gateTags, got.GateTag)
			assert.Equal(t, tt.verdict, c.ClassifyTag(tt.tag))
		})
	}
}

func TestBranchClassifier_Classify(t *testing.T) {
	c := classifier.NewBranchClassifier(classifier.DefaultTables())

	tests := []struct {
		name        string
		tags        []string
		retained    []string
		hasTarget   bool
		hasForeign  bool
		wantVerdict domain.AdmissionVerdict
	}{
		{
			name:        "purely foreign",
			tags:        []string{"gateme-2022-set1"},
			retained:    []string{},
			hasForeign:  true,
			wantVerdict: domain.Discard,
		},
		{
			name:        "target and foreign keeps target only",
			tags:        []string{"gatecse-2024-set1", "gateme-2022-set1"},
			retained:    []string{"gatecse-2024-set1"},
			hasTarget:   true,
			hasForeign:  true,
			wantVerdict: domain.Keep,
		},
		{
			name:        "topic only defaults to keep",
			tags:        []string{"data-science"},
			retained:    []string{"data-science"},
			wantVerdict: domain.Keep,
		},
		{
			name:        "foreign with topic is discarded",
			tags:        []string{"algorithms", "gate2018-ce-2"},
			retained:    []string{"algorithms"},
			hasForeign:  true,
			wantVerdict: domain.Discard,
		},
		{
			name:        "generic gate tag stays neutral",
			tags:        []string{"gate2024", "gateme-2021-set2"},
			retained:    []string{"gate2024"},
			hasForeign:  true,
			wantVerdict: domain.Discard,
		},
		{
			name:        "order preserved",
			tags:        []string{"sorting", "gatecse-2019", "gatece-2019", "heap"},
			retained:    []string{"sorting", "gatecse-2019", "heap"},
			hasTarget:   true,
			hasForeign:  true,
			wantVerdict: domain.Keep,
		},
		{
			name:        "no tags",
			tags:        nil,
			retained:    []string{},
			wantVerdict: domain.Keep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.tags)

			assert.Equal(t, tt.retained, res.Retained)
			assert.Equal(t, tt.hasTarget, res.HasTargetBranchTag)
			assert.Equal(t, tt.hasForeign, res.HasForeignBranchTag)
			assert.Equal(t, tt.wantVerdict, res.Admission())
			assert.Len(t, res.Tags, len(tt.tags))

			for _, tag := range res.Retained {
				assert.NotEqual(t, domain.ForeignBranch, c.ClassifyTag(tag))
			}
		})
	}
}

func TestBranchClassifier_CustomTables(t *testing.T) {
	c := classifier.NewBranchClassifier(classifier.Tables{
		GateMarker:    "exam",
		ForeignCodes:  []string{"exambio", " "},
		TargetInfixes: []string{"MATH"},
	})

	assert.Equal(t, domain.ForeignBranch, c.ClassifyTag("exambio-2020"))
	assert.Equal(t, domain.TargetBranch, c.ClassifyTag("exam-math-2021"))
	assert.Equal(t, domain.Neutral, c.ClassifyTag("math-2021"), "infix rules need the gate marker")
	assert.Equal(t, domain.Neutral, c.ClassifyTag("gatecse-2020"))
}

func TestBranchClassifier_EmptyTables(t *testing.T) {
	c := classifier.NewBranchClassifier(classifier.Tables{})

	assert.Equal(t, domain.Neutral, c.ClassifyTag("gateme-2022-set1"))
	assert.False(t, c.Explain("gateme-2022-set1").GateTag)
}

func TestBranchClassifier_ConcurrentUse(t *testing.T) {
	c := classifier.NewBranchClassifier(classifier.DefaultTables())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, domain.ForeignBranch, c.ClassifyTag("gateme-2022-set1"))
				assert.Equal(t, domain.TargetBranch, c.ClassifyTag("gatecse-2022"))
			}
		}()
	}
	wg.Wait()
}

func TestAdmit(t *testing.T) {
	assert.Equal(t, domain.Discard, classifier.Admit(false, true))
	assert.Equal(t, domain.Keep, classifier.Admit(true, true))
	assert.Equal(t, domain.Keep, classifier.Admit(true, false))
	assert.Equal(t, domain.Keep, classifier.Admit(false, false))
}
