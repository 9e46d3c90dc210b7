// Package llm - extract.go provides tolerant text extraction from
// provider-shaped completion payloads.
package llm

import "strings"

// ExtractText pulls the assistant text out of a decoded provider response.
// It supports the OpenAI-style "choices[0].message.content" shape, the
// Gemini REST "candidates[0].content" shape, and a bare "content"/"text"
// field. Returns "" when no shape matches; it never panics on odd input.
func ExtractText(resp any) string {
	m, ok := resp.(map[string]any)
	if !ok {
		return ""
	}

	if choices, ok := m["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if message, ok := choice["message"].(map[string]any); ok {
				if content, ok := message["content"].(string); ok {
					return content
				}
			}
		}
	}

	if candidates, ok := m["candidates"].([]any); ok && len(candidates) > 0 {
		if candidate, ok := candidates[0].(map[string]any); ok {
			if content, ok := candidate["content"].(string); ok {
				return content
			}
			// Gemini REST nests content.parts[].text
			if content, ok := candidate["content"].(map[string]any); ok {
				if parts, ok := content["parts"].([]any); ok {
					var sb strings.Builder
					for _, p := range parts {
						if part, ok := p.(map[string]any); ok {
							if text, ok := part["text"].(string); ok {
								sb.WriteString(text)
							}
						}
					}
					if sb.Len() > 0 {
						return sb.String()
					}
				}
			}
		}
	}

	if content, ok := m["content"].(string); ok {
		return content
	}
	if text, ok := m["text"].(string); ok {
		return text
	}
	return ""
}

// ExtractUsage pulls token counts out of a decoded provider response,
// tolerating both OpenAI-style and Gemini-style usage keys. Returns nil when
// no usage block is present.
func ExtractUsage(resp any) *Usage {
	m, ok := resp.(map[string]any)
	if !ok {
		return nil
	}
	u, ok := m["usage"].(map[string]any)
	if !ok {
		if u, ok = m["usageMetadata"].(map[string]any); !ok {
			return nil
		}
	}
	usage := &Usage{
		PromptTokens:     intField(u, "prompt_tokens", "promptTokenCount"),
		CompletionTokens: intField(u, "completion_tokens", "candidatesTokenCount"),
		TotalTokens:      intField(u, "total_tokens", "totalTokenCount"),
	}
	if usage.PromptTokens == 0 && usage.CompletionTokens == 0 && usage.TotalTokens == 0 {
		return nil
	}
	return usage
}

func intField(m map[string]any, keys ...string) int32 {
	for _, key := range keys {
		if v, ok := m[key].(float64); ok {
			return int32(v)
		}
	}
	return 0
}

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a language identifier on the first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}
