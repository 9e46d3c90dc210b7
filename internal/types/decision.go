package types

import "strings"

// Action is the closed set of moves a model decision can request. It is
// constructed once, at parse time, so downstream logic switches on a verified
// variant instead of re-checking raw strings.
type Action string

// Decision actions.
const (
	// ActionAnswer replies directly without routing.
	ActionAnswer Action = "answer"
	// ActionRoute moves from general chat into a section.
	ActionRoute Action = "route"
	// ActionStay keeps the current section active.
	ActionStay Action = "stay"
	// ActionSwitch moves from one section to another.
	ActionSwitch Action = "switch"
	// ActionExit leaves the current section for general chat.
	ActionExit Action = "exit"
	// ActionApply commits staged section content and triggers re-analysis.
	ActionApply Action = "apply"
)

// ParseAction maps raw action text onto the closed set. The second return
// is false for unknown values; callers coerce those to ActionAnswer.
func ParseAction(raw string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(raw)))
	switch a {
	case ActionAnswer, ActionRoute, ActionStay, ActionSwitch, ActionExit, ActionApply:
		return a, true
	}
	return ActionAnswer, false
}

// Decision is the structured result of interpreting one model response.
type Decision struct {
	Action                Action   `json:"action"`
	Route                 string   `json:"route,omitempty"`
	Answer                string   `json:"answer,omitempty"`
	UpdatedSectionContent string   `json:"updated_section_content,omitempty"`
	QuestionMatches       []int    `json:"question_matches,omitempty"`
	UpdatedAnswers        []string `json:"updated_answers,omitempty"`
	Reason                string   `json:"reason,omitempty"`

	// HasAnswerData marks that the raw response carried question_matches or
	// updated_answers keys, even if empty; the section node only runs
	// reconciliation when the model addressed the answer table at all.
	HasAnswerData bool `json:"-"`
}

// HasExplicitMatches reports whether the decision carries both an index list
// and an answer list, enabling exact-index reconciliation.
func (d *Decision) HasExplicitMatches() bool {
	return len(d.QuestionMatches) > 0 && len(d.UpdatedAnswers) > 0
}
