// Package summary folds per-section question/answer pairs into a running
// cross-section ledger of signed candidate-attribute bullets.
package summary

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-chat-agent/internal/decision"
	"github.com/jonathan/resume-chat-agent/internal/llm"
	"github.com/jonathan/resume-chat-agent/internal/prompts"
	"github.com/jonathan/resume-chat-agent/internal/types"
)

// maxBulletLength bounds each recorded answer bullet.
const maxBulletLength = 100

// negationTerms classify an answer as a negative point when any term appears
// as a case-insensitive substring. Trailing spaces on "no " and "not " keep
// words like "notable" or "nothing" from matching.
var negationTerms = []string{
	"no ", "don't", "haven't", "never", "not ", "lack",
	"no experience", "not familiar", "dont have", "do not have",
	"unfamiliar", "missing", "limited experience",
}

// QA is one answered question forwarded to the extraction model.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Index    int    `json:"index"`
}

// Aggregator updates the CV summary from new section answers. It is the sole
// writer of the summary: callers replace their map with the returned one.
type Aggregator struct {
	gateway *decision.Gateway
	log     *zap.Logger
}

// NewAggregator creates an Aggregator. The gateway may be offline; the
// aggregator then always uses the deterministic classification path.
func NewAggregator(gateway *decision.Gateway, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{gateway: gateway, log: log}
}

// Aggregate merges new answers for one section into the summary and returns
// the updated copy. It never fails: the richer LLM extraction path degrades
// to deterministic sentiment bullets on any transport or format problem, and
// an empty answer set returns the summary unchanged.
func (a *Aggregator) Aggregate(ctx context.Context, section types.Section, current map[types.Section]string, questions, answers []string) map[types.Section]string {
	updated := make(map[types.Section]string, len(current)+1)
	for k, v := range current {
		updated[k] = v
	}

	pairs := collectPairs(questions, answers)
	if len(pairs) == 0 {
		return updated
	}

	if a.gateway != nil && !a.gateway.Offline() {
		if points, ok := a.extractPoints(ctx, section, updated, pairs); ok {
			updated[section] = points
			return updated
		}
	}

	updated[section] = BuildBullets(pairs)
	return updated
}

// extractPoints runs the model-driven extraction with conflict resolution.
// The model's full replacement text is trusted; the second return is false
// when the call failed or the output was malformed.
func (a *Aggregator) extractPoints(ctx context.Context, section types.Section, current map[types.Section]string, pairs []QA) (string, bool) {
	currentJSON, err := json.Marshal(current)
	if err != nil {
		return "", false
	}
	pairsJSON, err := json.Marshal(pairs)
	if err != nil {
		return "", false
	}

	systemPrompt := prompts.Format(prompts.MustGet("agent.json", "cv-summary"), map[string]string{
		"SectionName":      string(section),
		"CurrentCVSummary": string(currentJSON),
		"QAPairs":          string(pairsJSON),
	})

	payload := struct {
		Section        types.Section            `json:"section"`
		CurrentSummary map[types.Section]string `json:"current_summary"`
		QAPairs        []QA                     `json:"qa_pairs"`
	}{section, current, pairs}

	raw, err := a.gateway.CompleteJSON(ctx, systemPrompt, payload, llm.TierLite, "cv_summary_"+string(section))
	if err != nil {
		a.log.Error("CV summary extraction failed, using deterministic bullets",
			zap.String("section", string(section)), zap.Error(err))
		return "", false
	}

	objText, found := decision.ExtractJSONObject(raw)
	if !found {
		a.log.Warn("no JSON found in CV summary response", zap.String("section", string(section)))
		return "", false
	}

	var result struct {
		SectionPoints     string   `json:"section_points"`
		ConflictsResolved []string `json:"conflicts_resolved"`
	}
	if err := json.Unmarshal([]byte(objText), &result); err != nil {
		a.log.Warn("JSON decode error in CV summary response",
			zap.String("section", string(section)), zap.Error(err))
		return "", false
	}
	if result.SectionPoints == "" {
		return "", false
	}

	if len(result.ConflictsResolved) > 0 {
		a.log.Debug("CV summary conflicts resolved",
			zap.String("section", string(section)),
			zap.Strings("superseded", result.ConflictsResolved))
	}
	return result.SectionPoints, true
}

// BuildBullets produces the deterministic signed-bullet text for a set of
// answered questions: negation-lexicon classification, bounded length,
// newline-joined.
func BuildBullets(pairs []QA) string {
	points := make([]string, 0, len(pairs))
	for _, qa := range pairs {
		answer := qa.Answer
		if len(answer) > maxBulletLength {
			answer = answer[:maxBulletLength]
		}
		if IsNegative(qa.Answer) {
			points = append(points, "-"+answer)
		} else {
			points = append(points, "+"+answer)
		}
	}
	return strings.Join(points, "\n")
}

// IsNegative classifies an answer as a negative candidate attribute.
func IsNegative(answer string) bool {
	lower := strings.ToLower(answer)
	for _, term := range negationTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// collectPairs keeps only answered questions, preserving their indices.
func collectPairs(questions, answers []string) []QA {
	var pairs []QA
	for i, question := range questions {
		if i >= len(answers) {
			break
		}
		answer := strings.TrimSpace(answers[i])
		if answer == "" {
			continue
		}
		pairs = append(pairs, QA{Question: question, Answer: answer, Index: i})
	}
	return pairs
}
