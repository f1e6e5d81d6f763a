package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/research-assistant/pkg/research"
)

func TestHistoryAppendAndClear(t *testing.T) {
	h := NewHistory()
	h.Append(research.UserTurn("a"), research.UserTurn("b"))
	h.Append(research.UserTurn("c"))

	require.Equal(t, 3, h.Len())
	assert.Equal(t, "a", h.Turns()[0].Text)
	assert.Equal(t, "c", h.Turns()[2].Text)

	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Turns())
}

func TestHistoryTurnsIsACopy(t *testing.T) {
	h := NewHistory()
	h.Append(research.UserTurn("a"))

	turns := h.Turns()
	turns[0].Text = "changed"

	assert.Equal(t, "a", h.Turns()[0].Text)
}

func TestStoreGetCreatesOnce(t *testing.T) {
	s := NewStore()
	h1 := s.Get("x")
	h1.Append(research.UserTurn("hi"))

	assert.Same(t, h1, s.Get("x"))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.Get("x").Len())
}

func TestStoreAcquire(t *testing.T) {
	s := NewStore()

	require.True(t, s.Acquire("x"))
	assert.False(t, s.Acquire("x"))
	assert.True(t, s.Acquire("y"))

	s.Release("x")
	assert.True(t, s.Acquire("x"))
}

func TestStoreAcquireConcurrent(t *testing.T) {
	s := NewStore()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Acquire("same") {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, granted)
}

func TestStorePrune(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore()
	s.now = func() time.Time { return now }

	s.Get("old")
	s.Acquire("busy")
	now = now.Add(2 * time.Hour)
	s.Get("fresh")

	assert.Equal(t, 1, s.Prune(time.Hour))
	assert.Equal(t, 2, s.Len())
}
