package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-chat-agent/internal/types"
)

func TestRouteTurnShortCircuitsInSection(t *testing.T) {
	ag, client := newTestAgent()
	state := newSkillsState(t)
	state.AppendMessage(types.RoleUser, "tell me more")

	require.NoError(t, ag.RouteTurn(context.Background(), state))

	assert.Equal(t, 0, client.calls, "an owned turn must not consult the model")
	assert.Equal(t, types.SectionSkills, *state.CurrentSection)
	assert.Contains(t, state.LastAssistantText(), `"route":"skills"`)
}

func TestRouteTurnInitialGreeting(t *testing.T) {
	ag, client := newTestAgent(step{text: `{"action":"answer","answer":"Welcome! Your biggest gap is Kubernetes."}`})
	state := types.NewConversationState()
	state.JDSummary = "Backend role"

	require.NoError(t, ag.RouteTurn(context.Background(), state))

	require.Equal(t, 1, client.calls)
	assert.Contains(t, client.userPrompts[0], initialGreeting)
	assert.Equal(t, "Welcome! Your biggest gap is Kubernetes.", state.LastAssistantText())
	assert.False(t, state.InSection())
}

func TestRouteTurnRoutesToSection(t *testing.T) {
	ag, _ := newTestAgent(step{text: `{"action":"route","route":"education"}`})
	state := types.NewConversationState()
	state.AppendMessage(types.RoleUser, "I want to fix my education section")

	require.NoError(t, ag.RouteTurn(context.Background(), state))

	require.True(t, state.InSection())
	assert.Equal(t, types.SectionEducation, *state.CurrentSection)
	assert.Equal(t, 1, state.RoutingAttempts)
}

func TestRouteTurnUnknownTarget(t *testing.T) {
	ag, _ := newTestAgent(step{text: `{"action":"route","route":"hobbies"}`})
	state := types.NewConversationState()
	state.AppendMessage(types.RoleUser, "let's edit hobbies")

	require.NoError(t, ag.RouteTurn(context.Background(), state))

	assert.False(t, state.InSection(), "unknown targets must not change the active section")
	reply := state.LastAssistantText()
	assert.Contains(t, reply, "hobbies")
	assert.Contains(t, reply, "skills")
	assert.Contains(t, reply, "education")
}

func TestRouteTurnFallbackCompletion(t *testing.T) {
	ag, client := newTestAgent(
		step{text: `{"route":"skills"}`}, // malformed: no action key
		step{text: "Here is a plain fallback answer."},
	)
	state := types.NewConversationState()
	state.AppendMessage(types.RoleUser, "what should I do?")

	require.NoError(t, ag.RouteTurn(context.Background(), state))

	assert.Equal(t, 2, client.calls)
	assert.Equal(t, "Here is a plain fallback answer.", state.LastAssistantText())
	assert.False(t, state.InSection())
}

func TestRouteTurnStaticApologyWhenFallbackFails(t *testing.T) {
	ag, client := newTestAgent(
		step{text: `{"route":"skills"}`}, // malformed decision
		// queue exhausted: the fallback completion fails too
	)
	state := types.NewConversationState()
	state.AppendMessage(types.RoleUser, "help")

	require.NoError(t, ag.RouteTurn(context.Background(), state))

	assert.Equal(t, 2, client.calls)
	assert.Equal(t, staticApology, state.LastAssistantText())
}

func TestCompactRouterSectionsCoversAll(t *testing.T) {
	ag, _ := newTestAgent()
	state := newSkillsState(t)

	compact := ag.compactRouterSections(state)
	require.Len(t, compact, len(types.AllSections))

	byName := make(map[string]types.CompactAnalysis, len(compact))
	for _, c := range compact {
		byName[c.SectionName] = c
	}
	require.NotNil(t, byName["skills"].AlignmentScore)
	assert.Equal(t, 60, *byName["skills"].AlignmentScore)
	assert.Nil(t, byName["projects"].AlignmentScore, "unanalyzed sections report a null score")
}
