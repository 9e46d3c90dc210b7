// Package agent implements the conversational core: the top-level router
// that decides who owns a turn, and the per-section editing state machine
// that interprets model decisions against the conversation state.
package agent

import (
	"go.uber.org/zap"

	"github.com/jonathan/resume-chat-agent/internal/decision"
	"github.com/jonathan/resume-chat-agent/internal/observability"
	"github.com/jonathan/resume-chat-agent/internal/summary"
)

// transformationLevel controls how aggressively the model may rewrite
// section content (0-10); see the section-node prompt.
const transformationLevel = 7

// Agent bundles the collaborators every turn needs. One Agent serves one
// conversation; state is owned by the in-flight turn and never mutated
// concurrently.
type Agent struct {
	gateway    *decision.Gateway
	aggregator *summary.Aggregator
	printer    *observability.Printer
	log        *zap.Logger
	verbose    bool
}

// Options configures optional Agent behavior.
type Options struct {
	// Printer receives observability output (answer tables, analyses).
	Printer *observability.Printer
	// Verbose enables extra analysis boxes beyond the always-on answer echo.
	Verbose bool
}

// New creates an Agent around a decision gateway.
func New(gateway *decision.Gateway, log *zap.Logger, opts Options) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	return &Agent{
		gateway:    gateway,
		aggregator: summary.NewAggregator(gateway, log),
		printer:    opts.Printer,
		log:        log,
		verbose:    opts.Verbose,
	}
}
