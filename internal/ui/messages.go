package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// viewChangedMsg signals that the controller's View changed. The model
// reads a fresh snapshot when handling it.
type viewChangedMsg struct{}

// uploadDoneMsg reports the end of a submission
type uploadDoneMsg struct {
	err error
}

// deleteDoneMsg reports the end of a delete
type deleteDoneMsg struct {
	id  string
	err error
}

// refreshDoneMsg reports the end of a manual history refresh
type refreshDoneMsg struct {
	err error
}

// fileArmedMsg reports the outcome of arming a picked file
type fileArmedMsg struct {
	path string
	err  error
}

// confirmRequestMsg asks the user to approve a delete. The answer goes on reply.
type confirmRequestMsg struct {
	prompt string
	reply  chan<- bool
}

// tickMsg drives the upload spinner
type tickMsg time.Time

// tick schedules the next animation frame
func tick() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
