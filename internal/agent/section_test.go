package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-chat-agent/internal/types"
)

func TestSectionTurnDirectRoute(t *testing.T) {
	ag, client := newTestAgent()
	state := newSkillsState(t)
	state.AppendMessage(types.RoleUser, "/education")

	require.NoError(t, ag.SectionTurn(context.Background(), state, types.SectionSkills))

	assert.Equal(t, 0, client.calls)
	require.True(t, state.InSection())
	assert.Equal(t, types.SectionEducation, *state.CurrentSection)
	require.NotNil(t, state.SrcSection)
	assert.Equal(t, types.SectionSkills, *state.SrcSection)
}

func TestSectionTurnExitPhrase(t *testing.T) {
	ag, client := newTestAgent()
	state := newSkillsState(t)
	state.AppendMessage(types.RoleUser, "/exit")

	require.NoError(t, ag.SectionTurn(context.Background(), state, types.SectionSkills))

	assert.Equal(t, 0, client.calls)
	assert.False(t, state.InSection())
	assert.Contains(t, state.LastAssistantText(), "Leaving section")
}

func TestSectionTurnStayWithAnswers(t *testing.T) {
	ag, _ := newTestAgent(step{text: `{
		"action": "stay",
		"answer": "Got it. Remaining question: 2. Any PostgreSQL experience?",
		"question_matches": [0],
		"updated_answers": ["2 years running Kubernetes in production", ""]
	}`})
	state := newSkillsState(t)
	state.RoutingAttempts = 3
	state.AppendMessage(types.RoleUser, "I ran Kubernetes in production for 2 years")

	require.NoError(t, ag.SectionTurn(context.Background(), state, types.SectionSkills))

	answers := state.RecommendedAnswers[types.SectionSkills]
	assert.Equal(t, []string{"2 years running Kubernetes in production", ""}, answers)
	assert.Equal(t, 0, state.RoutingAttempts, "a successful decision resets routing attempts")
	assert.Equal(t, types.SectionSkills, *state.CurrentSection)
	assert.Contains(t, state.LastAssistantText(), "PostgreSQL")
}

func TestSectionTurnAnswerIndexPreserved(t *testing.T) {
	ag, _ := newTestAgent(step{text: `{
		"action": "stay",
		"answer": "Noted.",
		"question_matches": [1],
		"updated_answers": ["", "10 years of PostgreSQL"]
	}`})
	state := newSkillsState(t)
	state.RecommendedAnswers[types.SectionSkills] = []string{"existing k8s answer", ""}
	state.AppendMessage(types.RoleUser, "ten years of postgres")

	require.NoError(t, ag.SectionTurn(context.Background(), state, types.SectionSkills))

	answers := state.RecommendedAnswers[types.SectionSkills]
	assert.Equal(t, "existing k8s answer", answers[0], "unnamed slots stay untouched")
	assert.Equal(t, "10 years of PostgreSQL", answers[1])
}

func TestSectionTurnMalformedDecision(t *testing.T) {
	ag, _ := newTestAgent(step{text: `{"no_action_here": true}`})
	state := newSkillsState(t)
	state.AppendMessage(types.RoleUser, "???")
	before := state.RecommendedAnswers[types.SectionSkills]

	require.NoError(t, ag.SectionTurn(context.Background(), state, types.SectionSkills))

	assert.Equal(t, rephraseApology, state.LastAssistantText())
	assert.Equal(t, types.SectionSkills, *state.CurrentSection)
	assert.Equal(t, before, state.RecommendedAnswers[types.SectionSkills])
}

func TestSectionTurnSwitchValid(t *testing.T) {
	ag, _ := newTestAgent(step{text: `{"action":"switch","route":"projects"}`})
	state := newSkillsState(t)
	state.AppendMessage(types.RoleUser, "actually let's improve my projects")

	require.NoError(t, ag.SectionTurn(context.Background(), state, types.SectionSkills))

	require.True(t, state.InSection())
	assert.Equal(t, types.SectionProjects, *state.CurrentSection)
}

func TestSectionTurnSwitchUnknown(t *testing.T) {
	ag, _ := newTestAgent(step{text: `{"action":"switch","route":"hobbies"}`})
	state := newSkillsState(t)
	state.AppendMessage(types.RoleUser, "switch to hobbies")

	require.NoError(t, ag.SectionTurn(context.Background(), state, types.SectionSkills))

	assert.Equal(t, types.SectionSkills, *state.CurrentSection, "unknown switch target keeps the section")
	assert.Contains(t, state.LastAssistantText(), "hobbies")
	assert.Contains(t, state.LastAssistantText(), "education")
}

func TestSectionTurnExitDecision(t *testing.T) {
	ag, _ := newTestAgent(step{text: `{"action":"exit"}`})
	state := newSkillsState(t)
	state.AppendMessage(types.RoleUser, "I'm done here")

	require.NoError(t, ag.SectionTurn(context.Background(), state, types.SectionSkills))

	assert.False(t, state.InSection())
	assert.Equal(t, exitReply, state.LastAssistantText())
}

func TestSectionTurnResizesAnswersToQuestions(t *testing.T) {
	ag, _ := newTestAgent(step{text: `{"action":"stay","answer":"ok"}`})
	state := newSkillsState(t)
	// Stale answer array from an older analysis with three questions.
	state.RecommendedAnswers[types.SectionSkills] = []string{"a", "b", "c"}
	state.AppendMessage(types.RoleUser, "hello")

	require.NoError(t, ag.SectionTurn(context.Background(), state, types.SectionSkills))

	assert.Equal(t, []string{"a", "b"}, state.RecommendedAnswers[types.SectionSkills])
}
