package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ConversationState is the single mutable record threaded through every turn.
// It is owned exclusively by the in-flight turn; turns for one conversation
// are processed strictly sequentially, so no locking is performed here.
type ConversationState struct {
	// JDSummary is set once at load time and read-only thereafter.
	JDSummary string `json:"jd_summary,omitempty"`

	// ResumeSections holds current section content; either a JSON string
	// (free text) or a structured value shaped by ResumeSchema.
	ResumeSections map[Section]json.RawMessage `json:"resume_sections,omitempty"`

	// ResumeSchema declares the structural shape each section's content must
	// take on apply. Consumed contract; loaded from the initial-state file.
	ResumeSchema map[Section]json.RawMessage `json:"resume_schema,omitempty"`

	// SectionObjects holds per-section analysis; an entry appears only after
	// that section has been analyzed at least once.
	SectionObjects map[Section]*SectionAnalysis `json:"section_objects,omitempty"`

	// CurrentSection is nil in general chat mode; non-nil means that
	// section's editing node owns the turn.
	CurrentSection *Section `json:"current_section,omitempty"`

	// SrcSection records the section active at the start of the current turn;
	// a self-route (SrcSection == CurrentSection) terminates the turn.
	SrcSection *Section `json:"src_section,omitempty"`

	// RecommendedAnswers is index-aligned to the matching section's
	// RecommendedQuestions. Unanswered slots hold "", never null.
	RecommendedAnswers map[Section][]string `json:"recommended_answers,omitempty"`

	// CVSummary maps each analyzed section to newline-delimited signed
	// bullets ("+point" / "-point"). The summary aggregator is its sole writer.
	CVSummary map[Section]string `json:"cv_summary,omitempty"`

	// RoutingAttempts counts routing retries; reset to 0 after any successful
	// section-scoped decision. Monitoring only.
	RoutingAttempts int `json:"routing_attempts,omitempty"`

	// Context is the full turn history, insertion-order preserved.
	Context []Message `json:"context,omitempty"`
}

// NewConversationState returns a state with all maps initialized.
func NewConversationState() *ConversationState {
	return &ConversationState{
		ResumeSections:     make(map[Section]json.RawMessage),
		ResumeSchema:       make(map[Section]json.RawMessage),
		SectionObjects:     make(map[Section]*SectionAnalysis),
		RecommendedAnswers: make(map[Section][]string),
		CVSummary:          make(map[Section]string),
	}
}

// EnsureMaps initializes any nil maps, so states hydrated from partial JSON
// are safe to mutate.
func (s *ConversationState) EnsureMaps() {
	if s.ResumeSections == nil {
		s.ResumeSections = make(map[Section]json.RawMessage)
	}
	if s.ResumeSchema == nil {
		s.ResumeSchema = make(map[Section]json.RawMessage)
	}
	if s.SectionObjects == nil {
		s.SectionObjects = make(map[Section]*SectionAnalysis)
	}
	if s.RecommendedAnswers == nil {
		s.RecommendedAnswers = make(map[Section][]string)
	}
	if s.CVSummary == nil {
		s.CVSummary = make(map[Section]string)
	}
}

// AppendMessage appends a freshly stamped message and returns it.
func (s *ConversationState) AppendMessage(role Role, content string) Message {
	msg := NewMessage(role, content)
	s.Context = append(s.Context, msg)
	return msg
}

// LastUserText returns the content of the most recent user message, or "".
func (s *ConversationState) LastUserText() string {
	for i := len(s.Context) - 1; i >= 0; i-- {
		if s.Context[i].Role == RoleUser {
			return s.Context[i].Content
		}
	}
	return ""
}

// LastAssistantText returns the content of the most recent assistant
// message, or "".
func (s *ConversationState) LastAssistantText() string {
	for i := len(s.Context) - 1; i >= 0; i-- {
		if s.Context[i].Role == RoleAssistant {
			return s.Context[i].Content
		}
	}
	return ""
}

// TrimContext bounds the stored history to the most recent max messages.
// Returns true if anything was dropped.
func (s *ConversationState) TrimContext(max int) bool {
	if max <= 0 || len(s.Context) <= max {
		return false
	}
	s.Context = append([]Message(nil), s.Context[len(s.Context)-max:]...)
	return true
}

// SetCurrentSection updates the active section. Pass "" to clear.
func (s *ConversationState) SetCurrentSection(sec Section) {
	if sec == "" {
		s.CurrentSection = nil
		return
	}
	s.CurrentSection = &sec
}

// InSection reports whether a section currently owns the turn.
func (s *ConversationState) InSection() bool {
	return s.CurrentSection != nil
}

// Clone returns a deep copy carrying forward conversation fields. The
// original turn's state stays untouched if a later step must roll back.
func (s *ConversationState) Clone() *ConversationState {
	clone := NewConversationState()
	clone.JDSummary = s.JDSummary
	clone.RoutingAttempts = s.RoutingAttempts
	if s.CurrentSection != nil {
		cur := *s.CurrentSection
		clone.CurrentSection = &cur
	}
	if s.SrcSection != nil {
		src := *s.SrcSection
		clone.SrcSection = &src
	}
	for k, v := range s.ResumeSections {
		clone.ResumeSections[k] = append(json.RawMessage(nil), v...)
	}
	for k, v := range s.ResumeSchema {
		clone.ResumeSchema[k] = append(json.RawMessage(nil), v...)
	}
	for k, v := range s.SectionObjects {
		if v == nil {
			continue
		}
		cp := *v
		cp.MissingRequirements = append([]string(nil), v.MissingRequirements...)
		cp.RecommendedQuestions = append([]string(nil), v.RecommendedQuestions...)
		clone.SectionObjects[k] = &cp
	}
	for k, v := range s.RecommendedAnswers {
		clone.RecommendedAnswers[k] = append([]string(nil), v...)
	}
	for k, v := range s.CVSummary {
		clone.CVSummary[k] = v
	}
	clone.Context = append([]Message(nil), s.Context...)
	return clone
}

// RenderSectionContent flattens a section's stored content to display text:
// JSON strings are unquoted, arrays are joined line-per-item, objects become
// "key: value" lines sorted by key, anything else is passed through raw.
func (s *ConversationState) RenderSectionContent(sec Section) string {
	raw, ok := s.ResumeSections[sec]
	if !ok || len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asList []any
	if err := json.Unmarshal(raw, &asList); err == nil {
		lines := make([]string, 0, len(asList))
		for _, item := range asList {
			lines = append(lines, renderValue(item))
		}
		return strings.Join(lines, "\n")
	}
	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err == nil {
		keys := make([]string, 0, len(asMap))
		for k := range asMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %s", k, renderValue(asMap[k])))
		}
		return strings.Join(lines, "\n")
	}
	return string(raw)
}

func renderValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}
