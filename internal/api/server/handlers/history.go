package handlers

import (
	"sync"

	"github.com/bz888/deepchat/internal/api/server/client"
)

// History is the conversation held by the relay. The streaming client only
// forwards its most recent turns.
type History struct {
	mu       sync.Mutex
	messages []client.Message
}

func (h *History) Append(msg client.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
}

// Snapshot returns a copy of the conversation.
func (h *History) Snapshot() []client.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]client.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}

// LastAssistant returns the latest assistant message and the messages
// before it.
func (h *History) LastAssistant() (client.Message, []client.Message, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.messages) - 1; i >= 0; i-- {
		if h.messages[i].Role == client.RoleAssistant {
			context := make([]client.Message, i)
			copy(context, h.messages[:i])
			return h.messages[i], context, true
		}
	}
	return client.Message{}, nil, false
}
