package session

import (
	"sync"

	"github.com/mikeboe/research-assistant/pkg/research"
)

// History is the ordered list of turns of one conversation.
type History struct {
	mu    sync.RWMutex
	turns []research.Turn
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Append(turns ...research.Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, turns...)
}

// Turns returns a copy of all turns, oldest first.
func (h *History) Turns() []research.Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]research.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}
