package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/resume-chat-agent/internal/types"
)

// initialStateDoc mirrors the on-disk initial state document. Keys are raw
// strings so unknown section names fail loading instead of slipping into the
// typed maps.
type initialStateDoc struct {
	JDSummary      string                            `json:"jd_summary"`
	ResumeSections map[string]json.RawMessage        `json:"resume_sections"`
	ResumeSchema   map[string]json.RawMessage        `json:"resume_schema"`
	SectionObjects map[string]*types.SectionAnalysis `json:"section_objects"`
}

// LoadInitialState reads and validates the initial conversation state: the
// job description summary, section contents, and their schemas. Any problem
// is fatal; starting a conversation on a broken document helps nobody.
func LoadInitialState(path string) (*types.ConversationState, error) {
	if path == "" {
		return nil, fmt.Errorf("initial state path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read initial state %s: %w", path, err)
	}

	var doc initialStateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse initial state JSON: %w", err)
	}

	if doc.JDSummary == "" {
		return nil, fmt.Errorf("initial state: 'jd_summary' is required")
	}
	if len(doc.ResumeSections) == 0 {
		return nil, fmt.Errorf("initial state: 'resume_sections' is required")
	}

	state := types.NewConversationState()
	state.JDSummary = doc.JDSummary

	for name, content := range doc.ResumeSections {
		sec, err := types.ParseSection(name)
		if err != nil {
			return nil, fmt.Errorf("initial state: resume_sections: %w", err)
		}
		if !json.Valid(content) {
			return nil, fmt.Errorf("initial state: resume_sections.%s is not valid JSON", name)
		}
		state.ResumeSections[sec] = content
	}
	for name, schema := range doc.ResumeSchema {
		sec, err := types.ParseSection(name)
		if err != nil {
			return nil, fmt.Errorf("initial state: resume_schema: %w", err)
		}
		state.ResumeSchema[sec] = schema
	}
	for name, analysis := range doc.SectionObjects {
		sec, err := types.ParseSection(name)
		if err != nil {
			return nil, fmt.Errorf("initial state: section_objects: %w", err)
		}
		if analysis == nil {
			continue
		}
		if err := analysis.Validate(); err != nil {
			return nil, fmt.Errorf("initial state: section_objects.%s: %w", name, err)
		}
		state.SectionObjects[sec] = analysis
		state.RecommendedAnswers[sec] = make([]string, len(analysis.RecommendedQuestions))
	}

	return state, nil
}
