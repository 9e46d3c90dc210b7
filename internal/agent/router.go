package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-chat-agent/internal/decision"
	"github.com/jonathan/resume-chat-agent/internal/llm"
	"github.com/jonathan/resume-chat-agent/internal/prompts"
	"github.com/jonathan/resume-chat-agent/internal/types"
)

// initialGreeting is the synthetic first-turn query: it makes the model open
// with a gap summary instead of waiting for the user to speak first.
const initialGreeting = "INITIAL_GREETING"

// staticApology is the last resort when both the decision call and the
// minimal fallback completion fail.
const staticApology = "Sorry - analysis temporarily unavailable. Try again later."

// routeSignal is the observability message the router appends when handing a
// turn to a section node.
type routeSignal struct {
	Route types.Section `json:"route"`
	Note  string        `json:"note,omitempty"`
}

func appendRouteSignal(state *types.ConversationState, sec types.Section, note string) {
	payload, err := json.Marshal(routeSignal{Route: sec, Note: note})
	if err != nil {
		return
	}
	state.AppendMessage(types.RoleAssistant, string(payload))
}

// RouteTurn runs the top-level router over the current turn. When a section
// already owns the conversation it short-circuits with a route signal and no
// model call; otherwise it asks the model whether to answer in place or hand
// the turn to a section. Only CurrentSection and Context are ever mutated.
func (a *Agent) RouteTurn(ctx context.Context, state *types.ConversationState) error {
	state.EnsureMaps()

	if state.InSection() {
		appendRouteSignal(state, *state.CurrentSection, "")
		return nil
	}

	userText := state.LastUserText()
	if strings.TrimSpace(userText) == "" || len(state.Context) == 0 {
		userText = initialGreeting
	}

	compact := a.compactRouterSections(state)
	compactJSON, err := json.Marshal(compact)
	if err != nil {
		return fmt.Errorf("failed to serialize section overview: %w", err)
	}

	systemPrompt := prompts.Format(prompts.MustGet("agent.json", "general-routing"), map[string]string{
		"AvailableSections": strings.Join(types.SectionNames(), ", "),
		"CompactSections":   string(compactJSON),
	})
	payload := TurnPayload{
		UserQuery:           userText,
		ConversationContext: BuildWindow(state.Context, windowSize),
	}

	dec, err := a.gateway.Decide(ctx, systemPrompt, payload, "general_routing")
	if err != nil {
		var malformed *decision.MalformedDecisionError
		if !errors.As(err, &malformed) {
			return err
		}
		a.log.Warn("routing decision malformed, falling back to plain completion", zap.Error(err))
		state.AppendMessage(types.RoleAssistant, a.fallbackAnswer(ctx, state, userText))
		return nil
	}

	switch dec.Action {
	case types.ActionRoute:
		if sec, perr := types.ParseSection(dec.Route); perr == nil {
			state.SetCurrentSection(sec)
			state.RoutingAttempts++
			appendRouteSignal(state, sec, dec.Reason)
			return nil
		}
		a.log.Warn("router chose unknown section", zap.String("route", dec.Route))
		state.AppendMessage(types.RoleAssistant, unknownSectionReply(dec.Route))
		return nil
	case types.ActionAnswer:
		answer := strings.TrimSpace(dec.Answer)
		if answer == "" {
			answer = "I cannot determine an answer - please provide more details or ask to work on a specific section."
		}
		state.AppendMessage(types.RoleAssistant, answer)
		return nil
	default:
		// Section-scoped actions are meaningless in general chat.
		a.log.Warn("router returned section-scoped action", zap.String("action", string(dec.Action)))
		state.AppendMessage(types.RoleAssistant, unknownSectionReply(dec.Route))
		return nil
	}
}

// compactRouterSections builds the per-section overview for the routing
// prompt: every valid section appears, analyzed or not, so the model knows
// the full set of routable targets.
func (a *Agent) compactRouterSections(state *types.ConversationState) []types.CompactAnalysis {
	out := make([]types.CompactAnalysis, 0, len(types.AllSections))
	for _, sec := range types.AllSections {
		if analysis := state.SectionObjects[sec]; analysis != nil {
			out = append(out, analysis.Compact(sec))
			continue
		}
		out = append(out, types.CompactAnalysis{
			SectionName:         string(sec),
			MissingRequirements: []string{},
		})
	}
	return out
}

// fallbackAnswer is the router's two-tier degradation: retry with a minimal
// non-JSON prompt, then give a static apology if that fails too.
func (a *Agent) fallbackAnswer(ctx context.Context, state *types.ConversationState, userText string) string {
	system := prompts.MustGet("agent.json", "fallback-answer")
	user := fmt.Sprintf("Job description summary: %s\n\nUser query: %s", state.JDSummary, userText)
	text, err := a.gateway.Complete(ctx, system, user, llm.TierLite, "routing_fallback")
	if err != nil || strings.TrimSpace(text) == "" {
		a.log.Error("fallback completion failed", zap.Error(err))
		return staticApology
	}
	return strings.TrimSpace(text)
}

func unknownSectionReply(requested string) string {
	requested = strings.TrimSpace(requested)
	names := strings.Join(types.SectionNames(), ", ")
	if requested == "" {
		return fmt.Sprintf("I couldn't decide automatically. You can ask questions or pick a section to work on: %s.", names)
	}
	return fmt.Sprintf("I don't know a %q section. Available sections: %s.", requested, names)
}
