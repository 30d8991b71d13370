package session

import (
	"errors"
	"fmt"

	"github.com/yildizm/SalesForecaster/internal/api"
)

// ErrInvalidTransition is returned when an event does not apply to the current phase
var ErrInvalidTransition = errors.New("invalid upload session transition")

// Phase identifies the active variant of the upload lifecycle
type Phase int

const (
	Idle Phase = iota
	FileArmed
	InFlight
	Succeeded
	Failed
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case FileArmed:
		return "file_armed"
	case InFlight:
		return "in_flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is a snapshot of the session. Only the fields belonging to Phase are set:
// File for FileArmed and InFlight, Progress for InFlight, Report for Succeeded,
// Message for Failed.
type State struct {
	Phase    Phase
	File     *api.File
	Progress int
	Report   *api.Report
	Message  string
}

// Session is the upload state machine. It is not safe for concurrent use;
// the owner serializes access.
type Session struct {
	state   State
	attempt uint64
}

// New returns a session in Idle
func New() *Session {
	return &Session{}
}

// State returns a copy of the current state
func (s *Session) State() State {
	return s.state
}

// Attempt returns the id of the most recent submission
func (s *Session) Attempt() uint64 {
	return s.attempt
}

// Select arms file. Any prior file, report payload or failure message is
// replaced. Selecting while InFlight is rejected.
func (s *Session) Select(file *api.File) error {
	if file == nil {
		return fmt.Errorf("%w: no file to arm", ErrInvalidTransition)
	}
	if s.state.Phase == InFlight {
		return fmt.Errorf("%w: cannot select a file while %s", ErrInvalidTransition, s.state.Phase)
	}
	s.state = State{Phase: FileArmed, File: file}
	return nil
}

// Begin moves FileArmed to InFlight(0) and returns the new attempt id with
// the armed file.
func (s *Session) Begin() (uint64, *api.File, error) {
	if s.state.Phase != FileArmed {
		return 0, nil, fmt.Errorf("%w: cannot submit while %s", ErrInvalidTransition, s.state.Phase)
	}
	s.attempt++
	s.state = State{Phase: InFlight, File: s.state.File}
	return s.attempt, s.state.File, nil
}

// Reject records a submission that never reached the transport. It is valid
// from every phase except InFlight.
func (s *Session) Reject(message string) error {
	if s.state.Phase == InFlight {
		return fmt.Errorf("%w: cannot reject while %s", ErrInvalidTransition, s.state.Phase)
	}
	s.state = State{Phase: Failed, Message: message}
	return nil
}

// Progress updates the InFlight percentage. Ticks for another attempt, or
// arriving after the attempt settled, are dropped and report false.
func (s *Session) Progress(attempt uint64, percent int) bool {
	if !s.current(attempt) {
		return false
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	s.state.Progress = percent
	return true
}

// Succeed settles attempt with report
func (s *Session) Succeed(attempt uint64, report *api.Report) error {
	if !s.current(attempt) {
		return fmt.Errorf("%w: attempt %d is not in flight", ErrInvalidTransition, attempt)
	}
	s.state = State{Phase: Succeeded, Report: report}
	return nil
}

// Fail settles attempt with message
func (s *Session) Fail(attempt uint64, message string) error {
	if !s.current(attempt) {
		return fmt.Errorf("%w: attempt %d is not in flight", ErrInvalidTransition, attempt)
	}
	s.state = State{Phase: Failed, Message: message}
	return nil
}

func (s *Session) current(attempt uint64) bool {
	return s.state.Phase == InFlight && attempt == s.attempt
}
