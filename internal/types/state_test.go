package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndLastMessages(t *testing.T) {
	state := NewConversationState()
	assert.Equal(t, "", state.LastUserText())
	assert.Equal(t, "", state.LastAssistantText())

	state.AppendMessage(RoleUser, "first question")
	state.AppendMessage(RoleAssistant, "first reply")
	state.AppendMessage(RoleUser, "second question")

	assert.Equal(t, "second question", state.LastUserText())
	assert.Equal(t, "first reply", state.LastAssistantText())

	for _, msg := range state.Context {
		assert.NotEmpty(t, msg.ID)
		assert.False(t, msg.Timestamp.IsZero())
	}
}

func TestTrimContext(t *testing.T) {
	state := NewConversationState()
	for i := 0; i < 10; i++ {
		state.AppendMessage(RoleUser, "msg")
	}

	assert.False(t, state.TrimContext(10), "at the bound nothing should be dropped")
	assert.True(t, state.TrimContext(4))
	assert.Len(t, state.Context, 4)
	assert.False(t, state.TrimContext(0), "zero bound disables trimming")
	assert.Len(t, state.Context, 4)
}

func TestSetCurrentSection(t *testing.T) {
	state := NewConversationState()
	assert.False(t, state.InSection())

	state.SetCurrentSection(SectionSkills)
	require.True(t, state.InSection())
	assert.Equal(t, SectionSkills, *state.CurrentSection)

	state.SetCurrentSection("")
	assert.False(t, state.InSection())
}

func TestCloneIsIndependent(t *testing.T) {
	state := NewConversationState()
	state.JDSummary = "backend role"
	state.SetCurrentSection(SectionSkills)
	state.ResumeSections[SectionSkills] = json.RawMessage(`["Go","SQL"]`)
	state.SectionObjects[SectionSkills] = &SectionAnalysis{
		AlignmentScore:       60,
		RecommendedQuestions: []string{"q1", "q2"},
	}
	state.RecommendedAnswers[SectionSkills] = []string{"a1", ""}
	state.CVSummary[SectionSkills] = "+Go experience"
	state.AppendMessage(RoleUser, "hello")

	clone := state.Clone()
	clone.ResumeSections[SectionSkills] = json.RawMessage(`[]`)
	clone.SectionObjects[SectionSkills].RecommendedQuestions[0] = "changed"
	clone.RecommendedAnswers[SectionSkills][0] = "changed"
	clone.CVSummary[SectionSkills] = "changed"
	clone.SetCurrentSection(SectionEducation)

	assert.Equal(t, json.RawMessage(`["Go","SQL"]`), state.ResumeSections[SectionSkills])
	assert.Equal(t, "q1", state.SectionObjects[SectionSkills].RecommendedQuestions[0])
	assert.Equal(t, "a1", state.RecommendedAnswers[SectionSkills][0])
	assert.Equal(t, "+Go experience", state.CVSummary[SectionSkills])
	assert.Equal(t, SectionSkills, *state.CurrentSection)
}

func TestRenderSectionContent(t *testing.T) {
	state := NewConversationState()
	state.ResumeSections[SectionSummary] = json.RawMessage(`"Seasoned engineer"`)
	state.ResumeSections[SectionSkills] = json.RawMessage(`["Go","SQL"]`)
	state.ResumeSections[SectionContact] = json.RawMessage(`{"name":"Ada","email":"ada@example.com"}`)

	assert.Equal(t, "Seasoned engineer", state.RenderSectionContent(SectionSummary))
	assert.Equal(t, "Go\nSQL", state.RenderSectionContent(SectionSkills))
	assert.Equal(t, "email: ada@example.com\nname: Ada", state.RenderSectionContent(SectionContact))
	assert.Equal(t, "", state.RenderSectionContent(SectionProjects))
}
