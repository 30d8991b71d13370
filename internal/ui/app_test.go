package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yildizm/SalesForecaster/internal/api"
	"github.com/yildizm/SalesForecaster/internal/controller"
	"github.com/yildizm/SalesForecaster/internal/emoji"
	"github.com/yildizm/SalesForecaster/internal/logger"
	"github.com/yildizm/SalesForecaster/internal/session"
)

type stubTransport struct {
	mu         sync.Mutex
	history    []api.HistoryRecord
	report     *api.Report
	createErr  error
	deletedIDs []string
}

func (s *stubTransport) ListHistory(ctx context.Context) ([]api.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.HistoryRecord(nil), s.history...), nil
}

func (s *stubTransport) CreateAnalysis(ctx context.Context, file *api.File, onProgress api.ProgressFunc) (*api.Report, error) {
	onProgress(50)
	onProgress(100)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.report, nil
}

func (s *stubTransport) DeleteHistoryItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletedIDs = append(s.deletedIDs, id)
	kept := s.history[:0]
	for _, r := range s.history {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.history = kept
	return nil
}

func (s *stubTransport) DownloadURL(id string) string {
	return "http://sales.test/api/download/" + id + "/"
}

func (s *stubTransport) deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deletedIDs...)
}

func total(v float64) *float64 { return &v }

func newTestModel(t *testing.T, transport *stubTransport, opts ...controller.Option) (*Model, *controller.Controller) {
	t.Helper()
	emoji.SetEmojiDisabled(true)
	SetColorDisabled(true)
	t.Cleanup(func() {
		emoji.SetEmojiDisabled(false)
		SetColorDisabled(false)
	})

	opts = append([]controller.Option{controller.WithLogger(logger.Discard())}, opts...)
	ctrl := controller.New(transport, opts...)
	return NewModel(context.Background(), ctrl, Options{ServerURL: "http://sales.test"}), ctrl
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and feeds the resulting command's message back
func press(t *testing.T, m *Model, s string) {
	t.Helper()
	_, cmd := m.Update(keyPress(s))
	if cmd != nil {
		if msg := cmd(); msg != nil {
			m.Update(msg)
		}
	}
}

func TestModel_InitLoadsHistory(t *testing.T) {
	transport := &stubTransport{history: []api.HistoryRecord{
		{ID: "a1", Filename: "march.csv", TotalSales: total(300)},
		{ID: "a2", Filename: "feb.csv", TotalSales: total(200)},
	}}
	m, _ := newTestModel(t, transport)

	assert.Equal(t, 0, m.history.Len())

	m.Update(m.initCmd()())

	assert.Equal(t, 2, m.history.Len())
	assert.Contains(t, m.View(), "march.csv")
}

func TestModel_SubmitFlow(t *testing.T) {
	transport := &stubTransport{
		report:  &api.Report{Total: 15000, Average: 7500, UsedColumn: "Revenue"},
		history: []api.HistoryRecord{{ID: "a1", Filename: "sales.csv", TotalSales: total(15000)}},
	}
	m, ctrl := newTestModel(t, transport)

	require.NoError(t, ctrl.SelectFile(api.FileFromBytes("sales.csv", []byte("Revenue\n1\n"))))
	m.Update(viewChangedMsg{})
	assert.Equal(t, session.FileArmed, m.view.Phase)
	assert.Contains(t, m.View(), "Ready, press u to upload")

	press(t, m, "u")

	require.NotNil(t, m.view.Report)
	assert.Equal(t, 15000.0, m.view.Report.Total)
	assert.False(t, m.view.Loading)
	assert.Equal(t, 0, m.view.Progress)
	assert.Equal(t, 1, m.history.Len())
	assert.False(t, m.statusErr)
	assert.Contains(t, m.View(), "Analysis complete")
}

func TestModel_SubmitWithoutFile(t *testing.T) {
	m, _ := newTestModel(t, &stubTransport{})

	press(t, m, "u")

	assert.Equal(t, controller.MsgSelectFile, m.view.Error)
	assert.Contains(t, m.View(), controller.MsgSelectFile)
}

func TestModel_SubmitShowsServerMessage(t *testing.T) {
	transport := &stubTransport{
		createErr: api.NewServerError("create_analysis", 400, "No numeric column found"),
	}
	m, ctrl := newTestModel(t, transport)
	require.NoError(t, ctrl.SelectFile(api.FileFromBytes("names.csv", []byte("Name\nBob\n"))))

	press(t, m, "u")

	assert.Equal(t, "No numeric column found", m.view.Error)
	assert.Nil(t, m.view.Report)
	assert.Empty(t, m.status)
	assert.Contains(t, m.View(), "No numeric column found")
}

func TestModel_UploadKeyIgnoredWhileLoading(t *testing.T) {
	m, _ := newTestModel(t, &stubTransport{})
	m.view.Loading = true

	_, cmd := m.Update(keyPress("u"))

	assert.Nil(t, cmd)
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "already in progress")
}

func TestModel_DeleteConfirmed(t *testing.T) {
	transport := &stubTransport{history: []api.HistoryRecord{
		{ID: "a1", Filename: "march.csv"},
		{ID: "a2", Filename: "feb.csv"},
	}}
	confirmer := NewConfirmer()
	m, ctrl := newTestModel(t, transport, controller.WithConfirmer(confirmer))
	require.NoError(t, ctrl.Refresh(context.Background()))
	m.Update(viewChangedMsg{})

	sent := make(chan tea.Msg, 1)
	confirmer.Attach(func(msg tea.Msg) { sent <- msg })

	_, cmd := m.Update(keyPress("d"))
	require.NotNil(t, cmd)

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-sent:
		m.Update(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no confirmation request")
	}
	assert.Equal(t, screenConfirm, m.screen)
	assert.Contains(t, m.View(), "Delete analysis a1?")

	m.Update(keyPress("y"))
	assert.Equal(t, screenMain, m.screen)

	select {
	case msg := <-done:
		m.Update(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("delete did not finish")
	}

	assert.Equal(t, []string{"a1"}, transport.deleted())
	assert.Equal(t, 1, m.history.Len())
	assert.Contains(t, m.status, "Deleted a1")
}

func TestModel_DeleteDeclined(t *testing.T) {
	transport := &stubTransport{history: []api.HistoryRecord{{ID: "a1", Filename: "march.csv"}}}
	confirmer := NewConfirmer()
	m, ctrl := newTestModel(t, transport, controller.WithConfirmer(confirmer))
	require.NoError(t, ctrl.Refresh(context.Background()))
	m.Update(viewChangedMsg{})

	sent := make(chan tea.Msg, 1)
	confirmer.Attach(func(msg tea.Msg) { sent <- msg })

	_, cmd := m.Update(keyPress("d"))
	require.NotNil(t, cmd)
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	m.Update(<-sent)
	m.Update(keyPress("n"))
	m.Update(<-done)

	assert.Empty(t, transport.deleted())
	assert.Equal(t, "Delete cancelled", m.status)
	assert.Equal(t, 1, m.history.Len())
}

func TestModel_QuitDeclinesPendingConfirm(t *testing.T) {
	m, _ := newTestModel(t, &stubTransport{})

	reply := make(chan bool, 1)
	m.Update(confirmRequestMsg{prompt: "Delete analysis a1?", reply: reply})
	require.Equal(t, screenConfirm, m.screen)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, <-reply)
	assert.Empty(t, m.View())
}

func TestModel_LinkShowsDownloadURL(t *testing.T) {
	transport := &stubTransport{history: []api.HistoryRecord{{ID: "a1", Filename: "march.csv"}}}
	m, ctrl := newTestModel(t, transport)
	require.NoError(t, ctrl.Refresh(context.Background()))
	m.Update(viewChangedMsg{})

	press(t, m, "l")

	assert.Contains(t, m.status, "http://sales.test/api/download/a1/")
}

func TestModel_ArmFromPath(t *testing.T) {
	m, _ := newTestModel(t, &stubTransport{})

	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Sales\n2024-01-01,10\n"), 0o600))

	m.Update(m.armCmd(path)())
	assert.Equal(t, session.FileArmed, m.view.Phase)
	assert.Equal(t, "sales.csv", m.view.FileName)
	assert.False(t, m.statusErr)

	m.Update(m.armCmd(filepath.Join(t.TempDir(), "missing.csv"))())
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "Cannot use file")
	assert.Equal(t, "sales.csv", m.view.FileName)
}

func TestModel_SearchFiltersHistory(t *testing.T) {
	transport := &stubTransport{history: []api.HistoryRecord{
		{ID: "a1", Filename: "march.csv"},
		{ID: "a2", Filename: "feb.csv"},
	}}
	m, ctrl := newTestModel(t, transport)
	require.NoError(t, ctrl.Refresh(context.Background()))
	m.Update(viewChangedMsg{})

	m.Update(keyPress("/"))
	require.Equal(t, screenSearch, m.screen)
	m.Update(keyPress("feb"))
	m.Update(keyPress("enter"))

	assert.Equal(t, screenMain, m.screen)
	assert.Equal(t, 1, m.history.Len())

	m.Update(keyPress("esc"))
	assert.Equal(t, 2, m.history.Len())
}

func TestModel_HelpScreen(t *testing.T) {
	m, _ := newTestModel(t, &stubTransport{})

	m.Update(keyPress("?"))
	require.Equal(t, screenHelp, m.screen)
	assert.Contains(t, m.View(), "upload")

	m.Update(keyPress("x"))
	assert.Equal(t, screenMain, m.screen)
}

func TestConfirmer_NoProgram(t *testing.T) {
	ok, err := NewConfirmer().Confirm(context.Background(), "Delete?")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoProgram)
}

func TestConfirmer_ContextCancelled(t *testing.T) {
	c := NewConfirmer()
	c.Attach(func(tea.Msg) {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := c.Confirm(ctx, "Delete?")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_UnknownTheme(t *testing.T) {
	ctrl := controller.New(&stubTransport{}, controller.WithLogger(logger.Discard()))
	err := Run(context.Background(), ctrl, nil, Options{Theme: "neon"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown theme"))
}

func TestThemes(t *testing.T) {
	t.Cleanup(func() { SetThemeByName("default") })

	assert.Equal(t, []string{"default", "high-contrast", "minimal"}, GetAvailableThemes())

	require.True(t, SetThemeByName("minimal"))
	assert.Equal(t, "minimal", GetTheme().Name)

	assert.False(t, SetThemeByName("neon"))
	assert.Equal(t, "minimal", GetTheme().Name)
}
