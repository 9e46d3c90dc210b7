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
	"github.com/jonathan/resume-chat-agent/internal/schemas"
	"github.com/jonathan/resume-chat-agent/internal/types"
)

// handleApply commits staged section content. The mutation is multi-step
// (content, CV summary, analysis, answer reset); everything is computed on
// locals first and committed together, so a rejected payload leaves the
// state exactly as it was.
func (a *Agent) handleApply(ctx context.Context, state *types.ConversationState, section types.Section, dec *types.Decision) error {
	content := strings.TrimSpace(dec.UpdatedSectionContent)
	if content == "" || content == "null" {
		state.AppendMessage(types.RoleAssistant,
			"There are no staged changes to apply yet. Answer the open questions or ask for a preview first.")
		return nil
	}

	if err := schemas.ValidateSectionContent(string(section), state.ResumeSchema[section], content); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			a.log.Warn("apply rejected by schema",
				zap.String("section", string(section)), zap.Error(err))
			state.AppendMessage(types.RoleAssistant, fmt.Sprintf(
				"I couldn't apply the changes: the proposed %s content doesn't match the section's structure.\n%sNothing was changed.",
				section, validationErr.Error()))
			return nil
		}
		// A broken schema declaration is a configuration problem, not a
		// reason to block the user's edit.
		a.log.Warn("schema unusable, applying without validation",
			zap.String("section", string(section)), zap.Error(err))
	}

	var raw json.RawMessage
	if json.Valid([]byte(content)) {
		raw = json.RawMessage(content)
	} else {
		quoted, err := json.Marshal(content)
		if err != nil {
			return fmt.Errorf("failed to encode section content: %w", err)
		}
		raw = quoted
	}

	questions := a.sectionQuestions(state, section)
	answers := state.RecommendedAnswers[section]

	updatedCV := a.aggregator.Aggregate(ctx, section, state.CVSummary, questions, answers)
	analysis := a.analyzeUpdatedSection(ctx, state, section, content, updatedCV)

	// Commit point: all steps succeeded or degraded to usable values.
	state.ResumeSections[section] = raw
	state.CVSummary = updatedCV
	state.SectionObjects[section] = analysis
	state.RecommendedAnswers[section] = make([]string, len(analysis.RecommendedQuestions))

	if a.verbose && a.printer != nil {
		a.printer.PrintSectionAnalysis(section, analysis)
		a.printer.PrintCVSummary(state.CVSummary)
	}

	state.AppendMessage(types.RoleAssistant, applyConfirmation(section, analysis))
	return nil
}

func applyConfirmation(section types.Section, analysis *types.SectionAnalysis) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Applied changes to %s!\n\n", section))
	sb.WriteString(fmt.Sprintf("New alignment score: %d%%\n", analysis.AlignmentScore))
	if analysis.AnalysisSummary != "" {
		sb.WriteString(analysis.AnalysisSummary)
		sb.WriteString("\n")
	}
	if n := len(analysis.RecommendedQuestions); n > 0 {
		sb.WriteString(fmt.Sprintf("\nLet's continue improving this section with %d more targeted questions.", n))
	} else {
		sb.WriteString("\nThis section looks complete! You can switch to another section or continue refining.")
	}
	return sb.String()
}

// analyzeUpdatedSection re-scores a section after an apply. It never fails:
// offline mode and any model problem both degrade to fixed analyses, because
// by this point the content change itself is committed to happen.
func (a *Agent) analyzeUpdatedSection(ctx context.Context, state *types.ConversationState, section types.Section, content string, cvSummary map[types.Section]string) *types.SectionAnalysis {
	if a.gateway.Offline() {
		return &types.SectionAnalysis{
			AlignmentScore:       75,
			MissingRequirements:  []string{"More specific examples needed"},
			RecommendedQuestions: []string{fmt.Sprintf("Can you add more specific examples to your %s section?", section)},
			AnalysisSummary:      "Offline mode - placeholder analysis.",
			LastUpdated:          "just_now",
		}
	}

	analysis, err := a.requestAnalysis(ctx, state.JDSummary, section, content, cvSummary)
	if err != nil {
		a.log.Error("section re-analysis failed",
			zap.String("section", string(section)), zap.Error(err))
		return &types.SectionAnalysis{
			AlignmentScore:       70,
			MissingRequirements:  []string{"Analysis error - please try again"},
			RecommendedQuestions: []string{fmt.Sprintf("Let's continue improving your %s section. What specific details can you add?", section)},
			AnalysisSummary:      fmt.Sprintf("There was an error analyzing the updated %s section. The changes have been saved.", section),
			LastUpdated:          "just_now",
		}
	}
	return analysis
}

// AnalyzeSection scores a section's current stored content against the job
// description. Used for the first analysis pass before any editing happens.
func (a *Agent) AnalyzeSection(ctx context.Context, state *types.ConversationState, section types.Section) (*types.SectionAnalysis, error) {
	if a.gateway.Offline() {
		return nil, fmt.Errorf("analysis requires a completion backend")
	}
	return a.requestAnalysis(ctx, state.JDSummary, section, state.RenderSectionContent(section), state.CVSummary)
}

func (a *Agent) requestAnalysis(ctx context.Context, jdSummary string, section types.Section, content string, cvSummary map[types.Section]string) (*types.SectionAnalysis, error) {
	cvJSON, err := json.Marshal(cvSummary)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize CV summary: %w", err)
	}

	systemPrompt := prompts.Format(prompts.MustGet("agent.json", "section-improvement"), map[string]string{
		"JDSummary":      jdSummary,
		"SectionName":    string(section),
		"SectionContent": content,
		"CVSummary":      string(cvJSON),
	})

	payload := struct {
		SectionName    string `json:"section_name"`
		SectionContent string `json:"section_content"`
	}{string(section), content}

	rawResponse, err := a.gateway.CompleteJSON(ctx, systemPrompt, payload, llm.TierStandard, "analysis_"+string(section))
	if err != nil {
		return nil, err
	}
	return parseAnalysis(rawResponse)
}

// parseAnalysis decodes a model analysis response, filling contract defaults
// for missing fields and clamping the score into range.
func parseAnalysis(raw string) (*types.SectionAnalysis, error) {
	objText, found := decision.ExtractJSONObject(raw)
	if !found {
		return nil, fmt.Errorf("no JSON object in analysis response")
	}

	var partial struct {
		AlignmentScore       *int     `json:"alignment_score"`
		MissingRequirements  []string `json:"missing_requirements"`
		RecommendedQuestions []string `json:"recommended_questions"`
		AnalysisSummary      string   `json:"analysis_summary"`
	}
	if err := json.Unmarshal([]byte(objText), &partial); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}

	analysis := &types.SectionAnalysis{
		AlignmentScore:       70,
		MissingRequirements:  partial.MissingRequirements,
		RecommendedQuestions: partial.RecommendedQuestions,
		AnalysisSummary:      partial.AnalysisSummary,
		LastUpdated:          "just_now",
	}
	if partial.AlignmentScore != nil {
		analysis.AlignmentScore = *partial.AlignmentScore
	}
	if analysis.MissingRequirements == nil {
		analysis.MissingRequirements = []string{}
	}
	if analysis.RecommendedQuestions == nil {
		analysis.RecommendedQuestions = []string{}
	}
	if analysis.AnalysisSummary == "" {
		analysis.AnalysisSummary = "Section updated successfully"
	}
	analysis.Clamp()
	return analysis, nil
}
