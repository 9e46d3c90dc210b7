// Package reconcile merges new user-supplied answers into a fixed-size,
// index-addressed answer array without disturbing answers at other indices.
package reconcile

import (
	"sort"
	"strings"

	"github.com/jonathan/resume-chat-agent/internal/types"
)

// minAnswerLength is the minimal-content threshold: an existing answer
// shorter than this may be overwritten by a positional update, a longer one
// is protected from being clobbered by a resubmission.
const minAnswerLength = 5

// Resize returns an answer array of exactly n entries: existing values are
// copied positionally from the front, extra entries are discarded, and new
// slots are padded with empty strings (never null).
func Resize(existing []string, n int) []string {
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	copy(out, existing)
	return out
}

// Reconcile merges a decision's answer data into the answer array for one
// section. The result always has exactly len(questions) entries.
//
// Placement rules, in priority order:
//  1. Explicit index matches write updated_answers[i] into slot i for every
//     valid i; slots not named are left untouched. There is no shifting and
//     no first-empty-slot insertion.
//  2. With answer values but no indices, slot i is overwritten only when the
//     existing answer is empty or below the minimal-content threshold and the
//     supplied value is non-empty.
//  3. If neither rule placed anything, keyword overlap between the user's
//     utterance and each question picks the best slot for the first non-empty
//     supplied value.
func Reconcile(existing, questions []string, dec *types.Decision, userText string) []string {
	answers := Resize(existing, len(questions))
	if dec == nil {
		return answers
	}

	if dec.HasExplicitMatches() {
		applyExplicitMatches(answers, dec.QuestionMatches, dec.UpdatedAnswers)
		return answers
	}

	if len(dec.UpdatedAnswers) == 0 {
		return answers
	}

	if applyPositional(answers, dec.UpdatedAnswers) {
		return answers
	}

	applyBestMatch(answers, questions, dec.UpdatedAnswers, userText)
	return answers
}

// applyExplicitMatches writes values at the exact indices the decision
// names. An index is honored only when it is valid for both the answer array
// and the supplied value list, and the supplied value is non-empty.
func applyExplicitMatches(answers []string, matches []int, values []string) {
	for _, idx := range matches {
		if idx < 0 || idx >= len(answers) || idx >= len(values) {
			continue
		}
		if values[idx] == "" {
			continue
		}
		answers[idx] = values[idx]
	}
}

// applyPositional overwrites only unanswered or below-threshold slots,
// protecting previously captured detailed answers. Returns true if any slot
// was written.
func applyPositional(answers, values []string) bool {
	wrote := false
	for i := range answers {
		if i >= len(values) || values[i] == "" {
			continue
		}
		if answers[i] == "" || len(strings.TrimSpace(answers[i])) < minAnswerLength {
			answers[i] = values[i]
			wrote = true
		}
	}
	return wrote
}

// applyBestMatch scores each question by keyword overlap with the user's
// utterance and writes the first non-empty supplied value into the
// highest-scoring slot.
func applyBestMatch(answers, questions, values []string, userText string) {
	matches := MatchQuestions(userText, questions)
	if len(matches) == 0 {
		return
	}

	var value string
	for _, v := range values {
		if v != "" {
			value = v
			break
		}
	}
	if value == "" {
		return
	}

	best := matches[0].Index
	if best >= 0 && best < len(answers) {
		answers[best] = value
	}
}

// QuestionMatch pairs a question index with its keyword-overlap confidence.
type QuestionMatch struct {
	Index      int
	Question   string
	Confidence float64
}

// MatchQuestions scores which questions a free-form answer might address.
// Confidence is |shared lowercase words| / |question words|; results are
// sorted by confidence descending with ties broken by list order.
func MatchQuestions(userText string, questions []string) []QuestionMatch {
	userWords := wordSet(userText)
	var matches []QuestionMatch
	for idx, question := range questions {
		questionWords := wordSet(question)
		shared := 0
		for w := range questionWords {
			if userWords[w] {
				shared++
			}
		}
		if shared == 0 {
			continue
		}
		denom := len(questionWords)
		if denom < 1 {
			denom = 1
		}
		matches = append(matches, QuestionMatch{
			Index:      idx,
			Question:   question,
			Confidence: float64(shared) / float64(denom),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
	}
	return set
}
