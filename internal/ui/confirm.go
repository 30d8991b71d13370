package ui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNoProgram is returned by Confirm when no TUI is running
var ErrNoProgram = errors.New("confirmation unavailable: no interactive session")

// Confirmer asks through the running TUI. It implements
// controller.Confirmer and blocks until the user answers or ctx ends.
type Confirmer struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewConfirmer creates a confirmer with no program attached
func NewConfirmer() *Confirmer {
	return &Confirmer{}
}

// Attach routes prompts to send, typically tea.Program.Send. A nil send
// detaches.
func (c *Confirmer) Attach(send func(tea.Msg)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.send = send
}

// Confirm shows prompt and waits for the answer
func (c *Confirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	c.mu.Lock()
	send := c.send
	c.mu.Unlock()

	if send == nil {
		return false, ErrNoProgram
	}

	reply := make(chan bool, 1)
	send(confirmRequestMsg{prompt: prompt, reply: reply})

	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
