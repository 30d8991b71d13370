package session

import (
	"errors"
	"testing"

	"github.com/yildizm/SalesForecaster/internal/api"
)

func TestSession_HappyPath(t *testing.T) {
	s := New()
	if s.State().Phase != Idle {
		t.Fatalf("Expected Idle, got %s", s.State().Phase)
	}

	file := api.FileFromBytes("sales.csv", []byte("a\n1\n"))
	if err := s.Select(file); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if st := s.State(); st.Phase != FileArmed || st.File != file {
		t.Fatalf("Expected FileArmed with file, got %+v", st)
	}

	attempt, armed, err := s.Begin()
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if armed != file {
		t.Error("Begin should return the armed file")
	}
	if st := s.State(); st.Phase != InFlight || st.Progress != 0 {
		t.Fatalf("Expected InFlight(0), got %+v", st)
	}

	if !s.Progress(attempt, 42) {
		t.Error("Expected progress tick to apply")
	}
	if s.State().Progress != 42 {
		t.Errorf("Expected progress 42, got %d", s.State().Progress)
	}

	report := &api.Report{Total: 15000}
	if err := s.Succeed(attempt, report); err != nil {
		t.Fatalf("Succeed failed: %v", err)
	}
	st := s.State()
	if st.Phase != Succeeded || st.Report != report || st.Progress != 0 {
		t.Errorf("Expected Succeeded(report) with progress 0, got %+v", st)
	}
}

func TestSession_ProgressClamped(t *testing.T) {
	s := New()
	_ = s.Select(api.FileFromBytes("x.csv", nil))
	attempt, _, _ := s.Begin()

	s.Progress(attempt, 150)
	if s.State().Progress != 100 {
		t.Errorf("Expected 100, got %d", s.State().Progress)
	}
	s.Progress(attempt, -3)
	if s.State().Progress != 0 {
		t.Errorf("Expected 0, got %d", s.State().Progress)
	}
}

func TestSession_StaleTicksDropped(t *testing.T) {
	s := New()
	_ = s.Select(api.FileFromBytes("x.csv", nil))
	first, _, _ := s.Begin()
	_ = s.Fail(first, "Upload failed")

	if s.Progress(first, 80) {
		t.Error("Tick after settle should be dropped")
	}
	if st := s.State(); st.Phase != Failed || st.Progress != 0 {
		t.Errorf("Stale tick mutated state: %+v", st)
	}

	_ = s.Select(api.FileFromBytes("y.csv", nil))
	second, _, _ := s.Begin()
	if s.Progress(first, 90) {
		t.Error("Tick for previous attempt should be dropped")
	}
	if s.State().Progress != 0 {
		t.Errorf("Expected fresh progress 0, got %d", s.State().Progress)
	}
	if err := s.Succeed(first, &api.Report{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition for old attempt, got %v", err)
	}
	if err := s.Succeed(second, &api.Report{}); err != nil {
		t.Errorf("Succeed for current attempt failed: %v", err)
	}
}

func TestSession_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *Session)
		act   func(s *Session) error
	}{
		{
			name:  "begin from idle",
			setup: func(s *Session) {},
			act: func(s *Session) error {
				_, _, err := s.Begin()
				return err
			},
		},
		{
			name: "begin twice",
			setup: func(s *Session) {
				_ = s.Select(api.FileFromBytes("x.csv", nil))
				_, _, _ = s.Begin()
			},
			act: func(s *Session) error {
				_, _, err := s.Begin()
				return err
			},
		},
		{
			name: "select while in flight",
			setup: func(s *Session) {
				_ = s.Select(api.FileFromBytes("x.csv", nil))
				_, _, _ = s.Begin()
			},
			act: func(s *Session) error {
				return s.Select(api.FileFromBytes("y.csv", nil))
			},
		},
		{
			name:  "select nil",
			setup: func(s *Session) {},
			act: func(s *Session) error {
				return s.Select(nil)
			},
		},
		{
			name: "reject while in flight",
			setup: func(s *Session) {
				_ = s.Select(api.FileFromBytes("x.csv", nil))
				_, _, _ = s.Begin()
			},
			act: func(s *Session) error {
				return s.Reject("Please select a CSV file")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			tt.setup(s)
			before := s.State()
			err := tt.act(s)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("Expected ErrInvalidTransition, got %v", err)
			}
			if s.State() != before {
				t.Errorf("State changed on rejected transition: %+v -> %+v", before, s.State())
			}
		})
	}
}

func TestSession_RearmFromTerminal(t *testing.T) {
	for _, settle := range []string{"succeeded", "failed", "rejected"} {
		t.Run(settle, func(t *testing.T) {
			s := New()
			_ = s.Select(api.FileFromBytes("a.csv", nil))
			attempt, _, _ := s.Begin()
			switch settle {
			case "succeeded":
				_ = s.Succeed(attempt, &api.Report{})
			case "failed":
				_ = s.Fail(attempt, "boom")
			case "rejected":
				_ = s.Fail(attempt, "boom")
				_ = s.Reject("Please select a CSV file")
			}

			next := api.FileFromBytes("b.csv", nil)
			if err := s.Select(next); err != nil {
				t.Fatalf("Re-arm failed: %v", err)
			}
			st := s.State()
			if st.Phase != FileArmed || st.File != next || st.Message != "" || st.Report != nil {
				t.Errorf("Expected clean FileArmed(b.csv), got %+v", st)
			}
		})
	}
}

func TestPhase_String(t *testing.T) {
	if InFlight.String() != "in_flight" {
		t.Errorf("Unexpected name %q", InFlight.String())
	}
	if Phase(99).String() != "phase(99)" {
		t.Errorf("Unexpected name %q", Phase(99).String())
	}
}
