package agent

import "github.com/jonathan/resume-chat-agent/internal/types"

// windowSize bounds each side of the conversation window sent to the model.
const windowSize = 5

// Window is the bounded conversation view forwarded to decision prompts:
// the most recent assistant and user messages, oldest first.
type Window struct {
	AIMessages    []string `json:"ai_messages"`
	HumanMessages []string `json:"human_messages"`
}

// BuildWindow extracts up to max messages per role from the turn history,
// preserving chronological order within each role.
func BuildWindow(history []types.Message, max int) Window {
	w := Window{
		AIMessages:    []string{},
		HumanMessages: []string{},
	}
	for _, msg := range history {
		switch msg.Role {
		case types.RoleAssistant:
			w.AIMessages = append(w.AIMessages, msg.Content)
		case types.RoleUser:
			w.HumanMessages = append(w.HumanMessages, msg.Content)
		}
	}
	if len(w.AIMessages) > max {
		w.AIMessages = w.AIMessages[len(w.AIMessages)-max:]
	}
	if len(w.HumanMessages) > max {
		w.HumanMessages = w.HumanMessages[len(w.HumanMessages)-max:]
	}
	return w
}

// TurnPayload is the serialized user-side input for decision calls.
type TurnPayload struct {
	UserQuery           string `json:"user_query"`
	ConversationContext Window `json:"conversation_context"`
}
