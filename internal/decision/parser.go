// Package decision turns untrusted model output into verified decision
// values and wraps the LLM call that produces them.
package decision

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-chat-agent/internal/types"
)

// Parser extracts structured decisions from raw model output. It favors
// graceful degradation: text with no JSON object at all becomes a plain
// answer decision instead of an error.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a Parser. A nil logger is replaced with a no-op logger.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log}
}

// Parse interprets raw model output as a decision.
//
// Failure modes (all *MalformedDecisionError): empty or whitespace-only
// input, a located JSON object that does not decode, or a decoded object
// with no "action" field. Raw text containing no JSON object degrades to
// {action: answer, answer: <raw text>}. Unknown action values are coerced
// to "answer" with a warning.
func (p *Parser) Parse(raw string) (*types.Decision, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &MalformedDecisionError{Message: "empty response from LLM"}
	}

	objText, found := ExtractJSONObject(raw)
	if !found {
		return &types.Decision{
			Action: types.ActionAnswer,
			Answer: strings.TrimSpace(raw),
		}, nil
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(objText), &fields); err != nil {
		return nil, &MalformedDecisionError{Message: "invalid JSON format", Cause: err}
	}

	rawAction, ok := fields["action"].(string)
	if !ok {
		return nil, &MalformedDecisionError{Message: "missing required 'action' key in JSON response"}
	}

	action, known := types.ParseAction(rawAction)
	if !known {
		p.log.Warn("unexpected decision action, treating as answer",
			zap.String("action", rawAction))
	}

	dec := &types.Decision{
		Action: action,
		Route:  stringField(fields, "route"),
		Answer: stringField(fields, "answer"),
		Reason: stringField(fields, "reason"),
	}
	dec.UpdatedSectionContent = contentField(fields, "updated_section_content")

	_, hasMatches := fields["question_matches"]
	_, hasAnswers := fields["updated_answers"]
	dec.HasAnswerData = hasMatches || hasAnswers
	dec.QuestionMatches = intListField(fields, "question_matches")
	dec.UpdatedAnswers = stringListField(fields, "updated_answers")

	return dec, nil
}

// ExtractJSONObject returns the first balanced {...} substring of text,
// respecting string literals and escapes. Shared by every component that
// digs structured output out of free-form model text.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

// contentField reads updated_section_content, which models return either as
// a JSON string or as the schema-shaped value itself. Structured values are
// re-serialized so downstream schema validation sees the exact payload.
func contentField(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func intListField(fields map[string]any, key string) []int {
	list, ok := fields[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(list))
	for _, v := range list {
		if f, ok := v.(float64); ok {
			out = append(out, int(f))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func stringListField(fields map[string]any, key string) []string {
	list, ok := fields[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		switch val := v.(type) {
		case string:
			out = append(out, val)
		case nil:
			out = append(out, "")
		default:
			out = append(out, fmt.Sprintf("%v", val))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
