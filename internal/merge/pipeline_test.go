package merge_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/superawat/Gate-QA/internal/classifier"
	"github.com/superawat/Gate-QA/internal/domain"
	"github.com/superawat/Gate-QA/internal/merge"
	"github.com/superawat/Gate-QA/internal/rules"
	"github.com/superawat/Gate-QA/internal/schema"
)

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) Validate(rec domain.Record) bool {
	args := m.Called(rec.Link)
	return args.Bool(0)
}

func rec(link, body string, tagList ...string) domain.Record {
	return domain.Record{Link: link, Question: body, Tags: tagList}
}

func newPipeline(t *testing.T, opts ...merge.Option) *merge.Pipeline {
	t.Helper()
	set, err := rules.Load("")
	require.NoError(t, err)
	return merge.New(set, opts...)
}

func TestPipeline_AdmissionScenarios(t *testing.T) {
	p := newPipeline(t)

	tests := []struct {
		name     string
		tags     []string
		kept     bool
		wantTags []string
	}{
		{name: "purely foreign", tags: []string{"gateme-2019"}},
		{name: "blocklisted foreign tag removed before classification", tags: []string{"gateme-2022-set1"}, kept: true, wantTags: []string{}},
		{name: "foreign tag stripped from kept record", tags: []string{"gatecse-2024-set1", "gateme-2019"}, kept: true, wantTags: []string{"gatecse-2024-set1"}},
		{name: "neutral default keep", tags: []string{"data-science"}, kept: true, wantTags: []string{"data-science"}},
		{name: "drifted year renamed", tags: []string{"gatecse2025-set1"}, kept: true, wantTags: []string{"gatecse-2025-set1"}},
		{name: "blocklist before classification", tags: []string{"gateme-2022-set1", "gatecse-2020"}, kept: true, wantTags: []string{"gatecse-2020"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Merge(nil, []domain.Record{rec("https://gateoverflow.in/1", "<p>Q</p>", tt.tags...)})

			if !tt.kept {
				assert.Empty(t, res.Records)
				assert.Equal(t, 1, res.Stats.RemovedForBranch)
				require.Len(t, res.Rejections, 1)
				assert.Equal(t, domain.ReasonForeignBranch, res.Rejections[0].Reason)
				return
			}
			require.Len(t, res.Records, 1)
			assert.Equal(t, tt.wantTags, res.Records[0].Tags)
			assert.Equal(t, 1, res.Stats.Kept)
		})
	}
}

func TestPipeline_SanitizesBody(t *testing.T) {
	p := newPipeline(t)

	res := p.Merge(nil, []domain.Record{rec("L", `<a href="#">Arjun</a> answered. 3 Comments`, "algorithms")})

	require.Len(t, res.Records, 1)
	assert.Equal(t, "answered.", res.Records[0].Question)
	assert.NotContains(t, res.Records[0].Question, "Arjun")
	assert.NotContains(t, res.Records[0].Question, "Comments")
}

func TestPipeline_DedupPriorWins(t *testing.T) {
	p := newPipeline(t)

	prior := []domain.Record{rec("https://gateoverflow.in/7", "old body", "gatecse-2019")}
	incoming := []domain.Record{
		rec("https://gateoverflow.in/7", "new body", "gatecse-2019", "heap"),
		rec("https://gateoverflow.in/8", "other", "graphs"),
	}

	res := p.Merge(prior, incoming)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "old body", res.Records[0].Question)
	assert.Equal(t, []string{"gatecse-2019"}, res.Records[0].Tags)
	assert.Equal(t, "https://gateoverflow.in/8", res.Records[1].Link)
	assert.Equal(t, merge.Stats{Total: 3, Kept: 2, Duplicates: 1}, res.Stats)
	require.Len(t, res.Rejections, 1)
	assert.Equal(t, merge.Rejection{Index: 1, Link: "https://gateoverflow.in/7", Reason: domain.ReasonDuplicate}, res.Rejections[0])
}

func TestPipeline_EmptyLinksNeverDeduplicate(t *testing.T) {
	p := newPipeline(t)

	res := p.Merge([]domain.Record{rec("", "a", "x")}, []domain.Record{rec("", "b", "x")})

	assert.Len(t, res.Records, 2)
	assert.Zero(t, res.Stats.Duplicates)
}

func TestPipeline_DiscardedRecordDoesNotClaimIdentity(t *testing.T) {
	p := newPipeline(t)

	prior := []domain.Record{rec("L", "foreign", "gatece-2019")}
	incoming := []domain.Record{rec("L", "target", "gatecse-2019")}

	res := p.Merge(prior, incoming)

	require.Len(t, res.Records, 1)
	assert.Equal(t, "target", res.Records[0].Question)
	assert.Equal(t, 1, res.Stats.RemovedForBranch)
	assert.Zero(t, res.Stats.Duplicates)
}

func TestPipeline_SchemaGate(t *testing.T) {
	oracle := new(mockOracle)
	oracle.On("Validate", "good").Return(true)
	oracle.On("Validate", "bad").Return(false)

	p := newPipeline(t, merge.WithSchema(oracle))

	res := p.Merge(nil, []domain.Record{
		rec("good", "q", "algorithms"),
		rec("bad", "q", "algorithms"),
		rec("good", "dup", "algorithms"),
	})

	require.Len(t, res.Records, 1)
	assert.Equal(t, "good", res.Records[0].Link)
	assert.Equal(t, merge.Stats{Total: 3, Kept: 1, InvalidSchema: 1, Duplicates: 1}, res.Stats)
	// the duplicate is skipped before the schema gate runs
	oracle.AssertNumberOfCalls(t, "Validate", 2)
	oracle.AssertExpectations(t)
}

func TestPipeline_NoSchemaIsFailOpen(t *testing.T) {
	p := newPipeline(t)

	var malformed domain.Record
	require.NoError(t, json.Unmarshal([]byte(`{"link": 5, "tags": "nope", "question": null}`), &malformed))

	res := p.Merge(nil, []domain.Record{malformed, {}})

	assert.Zero(t, res.Stats.InvalidSchema)
	assert.Len(t, res.Records, 2)
	for _, r := range res.Records {
		assert.Empty(t, r.Tags)
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	p := newPipeline(t)

	prior := []domain.Record{
		rec("1", `  <p>Q1</p><a href="/u">Arjun</a> [()] `, "gatecse2025-set1", "gatecse2025-set1", "gateme-2022-set2"),
		rec("2", "Please [log in] or [register] to add a comment.<p>Q2</p>", "data-science", "gate2018-ce-2", "gateit-2008"),
		rec("3", "<p>Q3</p> 2 Comments", "gateme-2021-set1"),
		rec("", "<p>Q4</p>", "algorithms"),
	}
	incoming := []domain.Record{
		rec("1", "dup", "gatecse-2025-set1"),
		rec("5", "<p>Q5</p>", "gatecivil-2020", "gatecse-2020-set1"),
	}

	first := p.Merge(prior, incoming)
	second := p.Merge(first.Records, nil)

	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, merge.Stats{Total: len(first.Records), Kept: len(first.Records)}, second.Stats)
	assert.Empty(t, second.Rejections)
}

func TestPipeline_KeptRecordsCarryNoForeignTags(t *testing.T) {
	p := newPipeline(t)
	c := classifier.NewBranchClassifier(classifier.DefaultTables())

	res := p.Merge(nil, []domain.Record{
		rec("a", "q", "gatecse-2024-set1", "gateme-2022-set1", "gate2015-ec-1", "gateee-2019"),
		rec("b", "q", "gateit-2006", "gate-in-2010", "trees"),
	})

	require.Len(t, res.Records, 2)
	for _, r := range res.Records {
		for _, tag := range r.Tags {
			assert.NotEqual(t, domain.ForeignBranch, c.ClassifyTag(tag), tag)
		}
	}
}

func TestPipeline_CleanDoesNotModifyInput(t *testing.T) {
	p := newPipeline(t)
	in := rec("x", " body ", "gatecse2025-set1", "gateme-2022-set2")

	out, class := p.Clean(in)

	assert.Equal(t, []string{"gatecse2025-set1", "gateme-2022-set2"}, in.Tags)
	assert.Equal(t, " body ", in.Question)
	assert.Equal(t, "body", out.Question)
	assert.Equal(t, []string{"gatecse-2025-set1"}, out.Tags)
	assert.True(t, class.HasTargetBranchTag)
	assert.False(t, class.HasForeignBranchTag, "blocklisted tags never reach the classifier")
}

func TestPipeline_PreservesPassthroughFields(t *testing.T) {
	p := newPipeline(t)

	var in domain.Record
	require.NoError(t, json.Unmarshal([]byte(`{"title":"T","link":"L","question":"q","tags":["gatecse2025-set2"],"year":"2025"}`), &in))

	res := p.Merge(nil, []domain.Record{in})
	require.Len(t, res.Records, 1)

	out, err := json.Marshal(res.Records[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"T","link":"L","question":"q","tags":["gatecse-2025-set2"],"year":"2025"}`, string(out))
}

func TestPipeline_CleanDropsSource(t *testing.T) {
	p := newPipeline(t)

	var in domain.Record
	require.NoError(t, json.Unmarshal([]byte(`{"link":"L","question":"<p>Q</p> 4 Comments","tags":["gatecse2025-set1"]}`), &in))
	require.NotEmpty(t, in.Source)

	out, _ := p.Clean(in)

	assert.Nil(t, out.Source)
	assert.NotEmpty(t, in.Source)
}

func TestPipeline_RemergeValidatesCleanedRecord(t *testing.T) {
	v, err := schema.New([]byte(`{"type":"object","properties":{"question":{"type":"string","not":{"pattern":"Comments"}}}}`))
	require.NoError(t, err)

	var in domain.Record
	require.NoError(t, json.Unmarshal([]byte(`{"link":"L","question":"<p>Q</p> 4 Comments","tags":["algorithms"]}`), &in))

	first := newPipeline(t).Merge(nil, []domain.Record{in})
	require.Len(t, first.Records, 1)
	assert.Equal(t, "<p>Q</p>", first.Records[0].Question)

	second := newPipeline(t, merge.WithSchema(v)).Merge(first.Records, nil)
	assert.Zero(t, second.Stats.InvalidSchema)
	assert.Len(t, second.Records, 1)
}
