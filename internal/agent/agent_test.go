package agent

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-chat-agent/internal/decision"
	"github.com/jonathan/resume-chat-agent/internal/llm"
	"github.com/jonathan/resume-chat-agent/internal/observability"
	"github.com/jonathan/resume-chat-agent/internal/types"
)

// step is one scripted model response (or failure) for the fake client.
type step struct {
	text string
	err  error
}

// fakeClient pops scripted steps in order and records the prompts it saw.
type fakeClient struct {
	steps         []step
	calls         int
	systemPrompts []string
	userPrompts   []string
}

func (f *fakeClient) next(systemPrompt, userPrompt string) (string, *llm.Usage, error) {
	f.calls++
	f.systemPrompts = append(f.systemPrompts, systemPrompt)
	f.userPrompts = append(f.userPrompts, userPrompt)
	if len(f.steps) == 0 {
		return "", nil, io.ErrUnexpectedEOF
	}
	s := f.steps[0]
	f.steps = f.steps[1:]
	return s.text, nil, s.err
}

func (f *fakeClient) Generate(_ context.Context, systemPrompt, userPrompt string, _ llm.ModelTier) (string, *llm.Usage, error) {
	return f.next(systemPrompt, userPrompt)
}

func (f *fakeClient) GenerateJSON(_ context.Context, systemPrompt, userPrompt string, _ llm.ModelTier) (string, *llm.Usage, error) {
	return f.next(systemPrompt, userPrompt)
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake" }
func (f *fakeClient) Close() error                  { return nil }

// newTestAgent builds an Agent over a scripted client. Observability output
// is discarded.
func newTestAgent(steps ...step) (*Agent, *fakeClient) {
	client := &fakeClient{steps: steps}
	gateway := decision.NewGateway(client, nil)
	ag := New(gateway, nil, Options{Printer: observability.NewPrinter(io.Discard)})
	return ag, client
}

// newOfflineAgent builds an Agent with no completion backend.
func newOfflineAgent() *Agent {
	return New(decision.NewGateway(nil, nil), nil, Options{Printer: observability.NewPrinter(io.Discard)})
}

// newSkillsState returns a state with an analyzed skills section owning the
// conversation.
func newSkillsState(t *testing.T) *types.ConversationState {
	t.Helper()
	state := types.NewConversationState()
	state.JDSummary = "Backend engineer role"
	state.ResumeSections[types.SectionSkills] = json.RawMessage(`["Go","SQL"]`)
	state.ResumeSchema[types.SectionSkills] = json.RawMessage(`{"type":"array","item_schema":{"type":"string"}}`)
	state.SectionObjects[types.SectionSkills] = &types.SectionAnalysis{
		AlignmentScore:       60,
		MissingRequirements:  []string{"Kubernetes"},
		RecommendedQuestions: []string{"Any Kubernetes experience?", "Any PostgreSQL experience?"},
	}
	state.RecommendedAnswers[types.SectionSkills] = []string{"", ""}
	state.SetCurrentSection(types.SectionSkills)
	require.True(t, state.InSection())
	return state
}
