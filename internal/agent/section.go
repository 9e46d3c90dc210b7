package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-chat-agent/internal/decision"
	"github.com/jonathan/resume-chat-agent/internal/prompts"
	"github.com/jonathan/resume-chat-agent/internal/reconcile"
	"github.com/jonathan/resume-chat-agent/internal/types"
)

const (
	rephraseApology = "I'm having trouble understanding your request. Could you please rephrase?"
	exitReply       = "Back to general chat. How can I help you with your resume?"
)

// sectionSnapshot is the per-section view given to the section-node prompt.
// Unlike the router's compact view it carries the open questions.
type sectionSnapshot struct {
	SectionName          string   `json:"section_name"`
	AlignmentScore       int      `json:"alignment_score"`
	MissingRequirements  []string `json:"missing_requirements"`
	RecommendedQuestions []string `json:"recommended_questions"`
}

// SectionTurn runs the editing state machine for the section that owns the
// turn. Deterministic triggers (direct routing, exit phrases) are handled
// before any model call; everything else goes through one decision.
func (a *Agent) SectionTurn(ctx context.Context, state *types.ConversationState, section types.Section) error {
	state.EnsureMaps()
	src := section
	state.SrcSection = &src

	userText := state.LastUserText()

	if target, ok := types.DetectDirectRoute(userText); ok && target != section {
		state.SetCurrentSection(target)
		appendRouteSignal(state, target, "direct switch")
		return nil
	}
	if types.IsExitCommand(userText) {
		state.SetCurrentSection("")
		state.AppendMessage(types.RoleAssistant, "Leaving section. Back to general analysis.")
		return nil
	}

	questions := a.sectionQuestions(state, section)
	state.RecommendedAnswers[section] = reconcile.Resize(state.RecommendedAnswers[section], len(questions))

	dec, err := a.decideSectionMove(ctx, state, section, questions)
	if err != nil {
		var malformed *decision.MalformedDecisionError
		if !errors.As(err, &malformed) {
			return err
		}
		a.log.Warn("section decision malformed",
			zap.String("section", string(section)), zap.Error(err))
		state.AppendMessage(types.RoleAssistant, rephraseApology)
		return nil
	}
	state.RoutingAttempts = 0

	if dec.Action == types.ActionApply {
		return a.handleApply(ctx, state, section, dec)
	}

	if dec.HasAnswerData {
		merged := reconcile.Reconcile(state.RecommendedAnswers[section], questions, dec, userText)
		state.RecommendedAnswers[section] = merged
		if a.printer != nil {
			a.printer.PrintAnswerTable(section, questions, merged)
		}
	}

	switch dec.Action {
	case types.ActionSwitch:
		target, perr := types.ParseSection(dec.Route)
		if perr != nil {
			a.log.Warn("switch to unknown section",
				zap.String("section", string(section)), zap.String("route", dec.Route))
			state.AppendMessage(types.RoleAssistant, unknownSectionReply(dec.Route))
			return nil
		}
		state.SetCurrentSection(target)
		appendRouteSignal(state, target, dec.Reason)
		return nil
	case types.ActionExit:
		state.SetCurrentSection("")
		reply := strings.TrimSpace(dec.Answer)
		if reply == "" {
			reply = exitReply
		}
		state.AppendMessage(types.RoleAssistant, reply)
		return nil
	default:
		// stay, or anything coerced to answer
		if reply := strings.TrimSpace(dec.Answer); reply != "" {
			state.AppendMessage(types.RoleAssistant, reply)
		}
		return nil
	}
}

// decideSectionMove assembles the section prompt and requests one decision.
func (a *Agent) decideSectionMove(ctx context.Context, state *types.ConversationState, section types.Section, questions []string) (*types.Decision, error) {
	snapshot := sectionSnapshot{
		SectionName:          string(section),
		MissingRequirements:  []string{},
		RecommendedQuestions: questions,
	}
	if analysis := state.SectionObjects[section]; analysis != nil {
		snapshot.AlignmentScore = analysis.AlignmentScore
		snapshot.MissingRequirements = analysis.MissingRequirements
	}
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize section snapshot: %w", err)
	}
	answersJSON, err := json.Marshal(state.RecommendedAnswers[section])
	if err != nil {
		return nil, fmt.Errorf("failed to serialize answers: %w", err)
	}

	schemaJSON := "null"
	if raw, ok := state.ResumeSchema[section]; ok && len(raw) > 0 {
		schemaJSON = string(raw)
	}

	systemPrompt := prompts.Format(prompts.MustGet("agent.json", "section-node"), map[string]string{
		"CurrentSection":        string(section),
		"CurrentSectionData":    string(snapshotJSON),
		"CurrentSectionContent": state.RenderSectionContent(section),
		"CurrentSchemaSection":  schemaJSON,
		"CurrentAnswers":        string(answersJSON),
		"TransformationLevel":   fmt.Sprintf("%d", transformationLevel),
	})

	payload := TurnPayload{
		UserQuery:           state.LastUserText(),
		ConversationContext: BuildWindow(state.Context, windowSize),
	}
	return a.gateway.Decide(ctx, systemPrompt, payload, "section_"+string(section))
}

// sectionQuestions returns the open questions for a section, or nil when it
// has not been analyzed yet.
func (a *Agent) sectionQuestions(state *types.ConversationState, section types.Section) []string {
	if analysis := state.SectionObjects[section]; analysis != nil {
		return analysis.RecommendedQuestions
	}
	return nil
}
