package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKnownPrompts(t *testing.T) {
	keys := []string{
		"general-routing",
		"section-node",
		"cv-summary",
		"section-improvement",
		"fallback-answer",
	}
	for _, key := range keys {
		prompt, err := Get("agent.json", key)
		require.NoError(t, err, "prompt %q must exist", key)
		assert.NotEmpty(t, prompt)
	}
}

func TestGetMissing(t *testing.T) {
	_, err := Get("agent.json", "nope")
	require.Error(t, err)

	_, err = Get("missing.json", "general-routing")
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	out := Format("Section {{.Name}} scored {{.Score}}", map[string]string{
		"Name":  "skills",
		"Score": "70",
	})
	assert.Equal(t, "Section skills scored 70", out)

	// Unknown placeholders are left in place.
	out = Format("keep {{.Unknown}}", map[string]string{"Name": "x"})
	assert.Equal(t, "keep {{.Unknown}}", out)
}

func TestCacheReload(t *testing.T) {
	first, err := Get("agent.json", "fallback-answer")
	require.NoError(t, err)
	ClearCache()
	second, err := Get("agent.json", "fallback-answer")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
