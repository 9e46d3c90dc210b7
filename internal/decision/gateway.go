package decision

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-chat-agent/internal/llm"
	"github.com/jonathan/resume-chat-agent/internal/types"
)

// Degraded reply texts. A transient LLM outage must never crash the
// conversation; these keep every failure path user-visible but coherent.
const (
	offlineAnswer = "(Offline) I received your query and will help once an API key is configured."
	apologyAnswer = "I encountered an error processing your request. Please try again."
)

// Gateway wraps LLM decision calls with a fixed request/response contract:
// deterministic payload serialization, an offline fallback, usage logging,
// and recovery from transport failures.
//
// Error contract: a transport or service failure is recovered locally into a
// safe default decision and a nil error. A response that arrives but cannot
// be parsed surfaces as *MalformedDecisionError, so callers can distinguish
// "LLM unreachable" from "LLM responded with garbage".
type Gateway struct {
	client llm.Client // nil means offline mode
	parser *Parser
	log    *zap.Logger
}

// NewGateway creates a Gateway. A nil client puts the gateway in offline
// mode: decisions are deterministic placeholders and no network calls occur.
func NewGateway(client llm.Client, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		client: client,
		parser: NewParser(log),
		log:    log,
	}
}

// Offline reports whether the gateway operates without a completion backend.
func (g *Gateway) Offline() bool {
	return g.client == nil
}

// Decide serializes payload, requests one JSON decision from the completion
// service, and parses it. label tags usage logs with the calling component.
func (g *Gateway) Decide(ctx context.Context, systemPrompt string, payload any, label string) (*types.Decision, error) {
	if g.client == nil {
		g.log.Debug("offline mode: deterministic fallback decision", zap.String("label", label))
		return &types.Decision{Action: types.ActionAnswer, Answer: offlineAnswer}, nil
	}

	userText, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize decision payload: %w", err)
	}

	raw, usage, err := g.client.GenerateJSON(ctx, systemPrompt, string(userText), llm.TierStandard)
	if err != nil {
		g.log.Error("LLM decision call failed", zap.String("label", label), zap.Error(err))
		return &types.Decision{Action: types.ActionAnswer, Answer: apologyAnswer}, nil
	}
	g.logUsage(label, usage)

	return g.parser.Parse(raw)
}

// Complete issues a raw completion without decision parsing. Unlike Decide,
// transport errors propagate; the router's two-tier fallback needs to know
// whether its minimal-prompt retry also failed.
func (g *Gateway) Complete(ctx context.Context, systemPrompt, userPrompt string, tier llm.ModelTier, label string) (string, error) {
	if g.client == nil {
		return offlineAnswer, nil
	}

	text, usage, err := g.client.Generate(ctx, systemPrompt, userPrompt, tier)
	if err != nil {
		return "", fmt.Errorf("completion %s failed: %w", label, err)
	}
	g.logUsage(label, usage)
	return text, nil
}

// CompleteJSON issues a raw JSON completion without decision parsing; used
// by callers with their own response schema (summary aggregation,
// section re-analysis). Transport errors propagate.
func (g *Gateway) CompleteJSON(ctx context.Context, systemPrompt string, payload any, tier llm.ModelTier, label string) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("completion %s skipped: offline mode", label)
	}

	userText, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize payload for %s: %w", label, err)
	}

	text, usage, err := g.client.GenerateJSON(ctx, systemPrompt, string(userText), tier)
	if err != nil {
		return "", fmt.Errorf("completion %s failed: %w", label, err)
	}
	g.logUsage(label, usage)
	return text, nil
}

func (g *Gateway) logUsage(label string, usage *llm.Usage) {
	if usage == nil {
		return
	}
	g.log.Debug("token usage",
		zap.String("label", label),
		zap.Int32("prompt", usage.PromptTokens),
		zap.Int32("completion", usage.CompletionTokens),
		zap.Int32("total", usage.TotalTokens))
}
