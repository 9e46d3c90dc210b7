package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/resume-chat-agent/internal/types"
)

// maxTurnHops bounds node re-dispatch within a single turn; a turn that
// keeps switching sections is cut off rather than allowed to loop.
const maxTurnHops = 12

// Dispatcher drives one conversation turn through the router and section
// nodes until the turn settles.
type Dispatcher struct {
	agent *Agent
	log   *zap.Logger
}

// NewDispatcher wraps an Agent in the turn loop.
func NewDispatcher(agent *Agent, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{agent: agent, log: log}
}

// Turn processes one user message. The router always runs first; if a
// section owns the conversation the matching section node then handles the
// message, re-dispatching on switches until a node routes to itself or
// leaves section mode.
//
// An empty userText starts the turn without a new user message; the first
// turn uses this to trigger the initial greeting.
func (d *Dispatcher) Turn(ctx context.Context, state *types.ConversationState, userText string) error {
	state.SrcSection = nil
	if userText != "" {
		state.AppendMessage(types.RoleUser, userText)
	}

	if err := d.agent.RouteTurn(ctx, state); err != nil {
		return err
	}
	if !state.InSection() {
		return nil
	}

	for hop := 0; hop < maxTurnHops; hop++ {
		section := *state.CurrentSection
		if err := d.agent.SectionTurn(ctx, state, section); err != nil {
			return err
		}
		if !state.InSection() {
			// Exited to general chat; the next turn starts at the router.
			return nil
		}
		if state.SrcSection != nil && *state.SrcSection == *state.CurrentSection {
			// Self-route: the owning node finished the turn.
			return nil
		}
		// Switched sections; the new owner processes the same message.
	}

	d.log.Warn("turn exceeded hop limit",
		zap.Int("max_hops", maxTurnHops),
		zap.String("current_section", string(*state.CurrentSection)))
	return nil
}
