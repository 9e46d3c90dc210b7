package summary

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-chat-agent/internal/decision"
	"github.com/jonathan/resume-chat-agent/internal/types"
)

func TestIsNegative(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{name: "plain positive", answer: "I have 3 years of Go experience", want: false},
		{name: "no with trailing space", answer: "no experience with Java", want: true},
		{name: "not with trailing space", answer: "I am not familiar with Rust", want: true},
		{name: "notable is not negative", answer: "notable achievements in ML", want: false},
		{name: "nothing is not negative", answer: "nothing beats shipping", want: false},
		{name: "contraction", answer: "I don't know Terraform", want: true},
		{name: "haven't", answer: "I haven't used Kafka", want: true},
		{name: "lack", answer: "I lack production exposure", want: true},
		{name: "unfamiliar", answer: "unfamiliar with GraphQL", want: true},
		{name: "case insensitive", answer: "NEVER worked with COBOL", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNegative(tt.answer))
		})
	}
}

func TestBuildBullets(t *testing.T) {
	pairs := []QA{
		{Question: "q0", Answer: "I have 5 years of Go", Index: 0},
		{Question: "q1", Answer: "no experience with Java", Index: 1},
	}
	got := BuildBullets(pairs)
	assert.Equal(t, "+I have 5 years of Go\n-no experience with Java", got)
}

func TestBuildBulletsTruncation(t *testing.T) {
	long := strings.Repeat("x", 150)
	got := BuildBullets([]QA{{Question: "q", Answer: long, Index: 0}})
	require.True(t, strings.HasPrefix(got, "+"))
	assert.Len(t, got, 101, "sign plus 100 truncated characters")
}

func TestAggregateOfflineWholesaleReplacement(t *testing.T) {
	agg := NewAggregator(decision.NewGateway(nil, nil), nil)
	current := map[types.Section]string{
		types.SectionSkills:  "+stale skills point",
		types.SectionEducation: "+untouched",
	}

	questions := []string{"Go?", "Java?", "K8s?"}
	answers := []string{"5 years of Go", "", "never used kubernetes"}

	updated := agg.Aggregate(context.Background(), types.SectionSkills, current, questions, answers)

	assert.Equal(t, "+5 years of Go\n-never used kubernetes", updated[types.SectionSkills])
	assert.Equal(t, "+untouched", updated[types.SectionEducation])
	// Input map is never mutated.
	assert.Equal(t, "+stale skills point", current[types.SectionSkills])
}

func TestAggregateNoAnswersUnchanged(t *testing.T) {
	agg := NewAggregator(decision.NewGateway(nil, nil), nil)
	current := map[types.Section]string{types.SectionSkills: "+existing"}

	updated := agg.Aggregate(context.Background(), types.SectionSkills, current, []string{"q0"}, []string{"  "})
	assert.Equal(t, current, updated)
}

func TestCollectPairsKeepsIndices(t *testing.T) {
	pairs := collectPairs([]string{"q0", "q1", "q2"}, []string{"", "answered", ""})
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].Index)
	assert.Equal(t, "q1", pairs[0].Question)
	assert.Equal(t, "answered", pairs[0].Answer)
}
