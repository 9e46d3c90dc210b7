package types

import (
	"fmt"
	"sort"
	"strings"
)

// Section identifies one resume component. The set of valid sections is
// closed; inbound text is rejected at the boundary rather than trusted.
type Section string

// Known resume sections.
const (
	SectionSkills          Section = "skills"
	SectionExperiences     Section = "experiences"
	SectionEducation       Section = "education"
	SectionProjects        Section = "projects"
	SectionSummary         Section = "summary"
	SectionContact         Section = "contact"
	SectionCertificates    Section = "certificates"
	SectionPublications    Section = "publications"
	SectionLanguages       Section = "languages"
	SectionRecommendations Section = "recommendations"
	SectionCustom          Section = "custom"
)

// AllSections lists every valid section in display order.
var AllSections = []Section{
	SectionSkills,
	SectionExperiences,
	SectionEducation,
	SectionProjects,
	SectionSummary,
	SectionContact,
	SectionCertificates,
	SectionPublications,
	SectionLanguages,
	SectionRecommendations,
	SectionCustom,
}

var sectionSet = func() map[Section]bool {
	m := make(map[Section]bool, len(AllSections))
	for _, s := range AllSections {
		m[s] = true
	}
	return m
}()

// ParseSection converts raw text into a Section, rejecting anything outside
// the fixed set.
func ParseSection(raw string) (Section, error) {
	s := Section(strings.ToLower(strings.TrimSpace(raw)))
	if !sectionSet[s] {
		return "", fmt.Errorf("unknown section %q", raw)
	}
	return s, nil
}

// IsValidSection reports whether name is a member of the fixed section set.
func IsValidSection(name string) bool {
	return sectionSet[Section(strings.ToLower(strings.TrimSpace(name)))]
}

// SectionNames returns the valid section names sorted alphabetically,
// for user-facing "available sections" messages.
func SectionNames() []string {
	names := make([]string, 0, len(AllSections))
	for _, s := range AllSections {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return names
}

// routePatterns maps each section to the textual triggers that switch to it
// directly, without consulting the LLM.
var routePatterns = map[Section][]string{
	SectionSkills:          {"/skills", "go to skills", "switch to skills"},
	SectionExperiences:     {"/experiences", "go to experiences", "switch to experiences", "experience section"},
	SectionEducation:       {"/education", "go to education", "education section"},
	SectionProjects:        {"/projects", "go to projects", "project section"},
	SectionSummary:         {"/summary", "go to summary", "summary section"},
	SectionContact:         {"/contact", "go to contact", "contact section"},
	SectionCertificates:    {"/certificates", "go to certificates", "certificates section"},
	SectionPublications:    {"/publications", "go to publications", "publications section"},
	SectionLanguages:       {"/languages", "go to languages", "languages section"},
	SectionRecommendations: {"/recommendations", "go to recommendations", "recommendations section"},
	SectionCustom:          {"/custom", "go to custom", "custom section"},
}

// DetectDirectRoute scans user text for a section routing trigger.
// Returns the matched section and true, or "" and false.
func DetectDirectRoute(text string) (Section, bool) {
	t := strings.ToLower(text)
	for _, sec := range AllSections {
		for _, pattern := range routePatterns[sec] {
			if strings.Contains(t, pattern) {
				return sec, true
			}
		}
	}
	return "", false
}

// exitPhrases end section editing and return to general chat.
var exitPhrases = []string{"/exit", "back to chat", "general chat", "leave section"}

// IsExitCommand reports whether user text asks to leave the current section.
func IsExitCommand(text string) bool {
	t := strings.ToLower(text)
	for _, phrase := range exitPhrases {
		if strings.Contains(t, phrase) {
			return true
		}
	}
	return false
}
