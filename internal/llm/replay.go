package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ReplayClient serves completions from recorded provider-shaped JSON payloads
// instead of the network. It keeps the assistant runnable and testable with
// no credentials: responses are consumed in filename order and the last one
// repeats once the script runs out.
type ReplayClient struct {
	mu        sync.Mutex
	responses []recordedResponse
	next      int
}

type recordedResponse struct {
	text  string
	usage *Usage
}

// NewReplayClient loads every *.json file under dir as one recorded provider
// response. Files may use either the "choices[0].message.content" or the
// "candidates[0].content" shape.
func NewReplayClient(dir string) (*ReplayClient, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan replay dir %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no recorded responses found in %s", dir)
	}
	sort.Strings(paths)

	responses := make([]recordedResponse, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read recorded response %s: %w", path, err)
		}
		var payload any
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("failed to parse recorded response %s: %w", path, err)
		}
		text := ExtractText(payload)
		if text == "" {
			return nil, fmt.Errorf("recorded response %s has no extractable text", path)
		}
		responses = append(responses, recordedResponse{text: text, usage: ExtractUsage(payload)})
	}

	return &ReplayClient{responses: responses}, nil
}

// Generate returns the next recorded response.
func (c *ReplayClient) Generate(_ context.Context, _, _ string, _ ModelTier) (string, *Usage, error) {
	return c.take()
}

// GenerateJSON returns the next recorded response with code fences stripped.
func (c *ReplayClient) GenerateJSON(_ context.Context, _, _ string, _ ModelTier) (string, *Usage, error) {
	text, usage, err := c.take()
	if err != nil {
		return "", nil, err
	}
	return CleanJSONBlock(text), usage, nil
}

// GetModel identifies the replay pseudo-model.
func (c *ReplayClient) GetModel(ModelTier) string {
	return "replay"
}

// Close is a no-op for replay.
func (c *ReplayClient) Close() error {
	return nil
}

func (c *ReplayClient) take() (string, *Usage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.responses) == 0 {
		return "", nil, fmt.Errorf("no recorded responses loaded")
	}
	r := c.responses[c.next]
	if c.next < len(c.responses)-1 {
		c.next++
	}
	return r.text, r.usage, nil
}
