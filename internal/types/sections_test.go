package types

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Section
		wantErr bool
	}{
		{name: "exact match", input: "skills", want: SectionSkills},
		{name: "case insensitive", input: "SKILLS", want: SectionSkills},
		{name: "surrounding whitespace", input: "  education  ", want: SectionEducation},
		{name: "unknown section", input: "hobbies", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSection(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSectionNamesSorted(t *testing.T) {
	names := SectionNames()
	require.Len(t, names, len(AllSections))
	assert.True(t, sort.StringsAreSorted(names))
	for _, name := range names {
		assert.True(t, IsValidSection(name))
	}
}

func TestDetectDirectRoute(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Section
		found bool
	}{
		{name: "slash command", input: "/skills", want: SectionSkills, found: true},
		{name: "slash command inside sentence", input: "ok let's do /education now", want: SectionEducation, found: true},
		{name: "go to phrasing", input: "go to projects please", want: SectionProjects, found: true},
		{name: "switch phrasing", input: "Switch To Skills", want: SectionSkills, found: true},
		{name: "plain question", input: "what should I improve first?", found: false},
		{name: "section name alone is not a trigger", input: "my skills are strong", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := DetectDirectRoute(tt.input)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestIsExitCommand(t *testing.T) {
	assert.True(t, IsExitCommand("/exit"))
	assert.True(t, IsExitCommand("take me BACK TO CHAT"))
	assert.True(t, IsExitCommand("let's leave section editing"))
	assert.False(t, IsExitCommand("exiting the building was easy"))
	assert.False(t, IsExitCommand("tell me about the summary"))
}
