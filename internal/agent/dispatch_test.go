package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-chat-agent/internal/types"
)

func TestTurnGeneralChatAnswer(t *testing.T) {
	ag, client := newTestAgent(step{text: `{"action":"answer","answer":"Focus on skills first."}`})
	dispatcher := NewDispatcher(ag, nil)
	state := types.NewConversationState()

	require.NoError(t, dispatcher.Turn(context.Background(), state, "where should I start?"))

	assert.Equal(t, 1, client.calls)
	assert.Equal(t, "where should I start?", state.LastUserText())
	assert.Equal(t, "Focus on skills first.", state.LastAssistantText())
	assert.False(t, state.InSection())
}

func TestTurnRouteThenSectionHandlesSameMessage(t *testing.T) {
	ag, client := newTestAgent(
		// router hands the turn to skills
		step{text: `{"action":"route","route":"skills"}`},
		// the skills node then processes the same user message
		step{text: `{"action":"stay","answer":"Let's start with Kubernetes. Any experience?"}`},
	)
	dispatcher := NewDispatcher(ag, nil)
	state := types.NewConversationState()
	state.SectionObjects[types.SectionSkills] = &types.SectionAnalysis{
		AlignmentScore:       60,
		RecommendedQuestions: []string{"Any Kubernetes experience?"},
	}

	require.NoError(t, dispatcher.Turn(context.Background(), state, "help me with my skills"))

	assert.Equal(t, 2, client.calls)
	require.True(t, state.InSection())
	assert.Equal(t, types.SectionSkills, *state.CurrentSection)
	assert.Contains(t, state.LastAssistantText(), "Kubernetes")
}

func TestTurnSelfRouteTerminates(t *testing.T) {
	ag, client := newTestAgent(step{text: `{"action":"stay","answer":"still here"}`})
	dispatcher := NewDispatcher(ag, nil)
	state := newSkillsState(t)

	require.NoError(t, dispatcher.Turn(context.Background(), state, "tell me more"))

	// One short-circuit route signal plus one section decision; no loop.
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, "still here", state.LastAssistantText())
	require.NotNil(t, state.SrcSection)
	assert.Equal(t, *state.SrcSection, *state.CurrentSection)
}

func TestTurnSwitchRedispatches(t *testing.T) {
	ag, client := newTestAgent(
		// skills node switches to projects
		step{text: `{"action":"switch","route":"projects"}`},
		// projects node answers the same message
		step{text: `{"action":"stay","answer":"Projects it is."}`},
	)
	dispatcher := NewDispatcher(ag, nil)
	state := newSkillsState(t)

	require.NoError(t, dispatcher.Turn(context.Background(), state, "let's do projects instead"))

	assert.Equal(t, 2, client.calls)
	assert.Equal(t, types.SectionProjects, *state.CurrentSection)
	assert.Equal(t, "Projects it is.", state.LastAssistantText())
}

func TestTurnExitEndsTurn(t *testing.T) {
	ag, client := newTestAgent()
	dispatcher := NewDispatcher(ag, nil)
	state := newSkillsState(t)

	require.NoError(t, dispatcher.Turn(context.Background(), state, "/exit"))

	assert.Equal(t, 0, client.calls, "exit phrase is handled without the model")
	assert.False(t, state.InSection())
	assert.Contains(t, state.LastAssistantText(), "Leaving section")
}

func TestTurnOfflineGreeting(t *testing.T) {
	ag := newOfflineAgent()
	dispatcher := NewDispatcher(ag, nil)
	state := types.NewConversationState()

	require.NoError(t, dispatcher.Turn(context.Background(), state, ""))

	assert.Contains(t, state.LastAssistantText(), "(Offline)")
	assert.Empty(t, state.LastUserText(), "the greeting turn appends no user message")
}
