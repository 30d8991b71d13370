package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/yildizm/SalesForecaster/internal/api"
	"github.com/yildizm/SalesForecaster/internal/controller"
	"github.com/yildizm/SalesForecaster/internal/emoji"
	"github.com/yildizm/SalesForecaster/internal/session"
	"github.com/yildizm/SalesForecaster/internal/ui/components"
)

// Controller is the part of the controller the TUI drives
type Controller interface {
	Init(ctx context.Context)
	View() controller.View
	SelectFile(file *api.File) error
	Submit(ctx context.Context) (*api.Report, error)
	Delete(ctx context.Context, id string) error
	Refresh(ctx context.Context) error
	DownloadURL(id string) string
	Subscribe(fn func(controller.View)) func()
}

// Options configures the TUI
type Options struct {
	// StartDir is where the file picker opens
	StartDir string

	// Theme names one of GetAvailableThemes
	Theme string

	// ServerURL is shown in the header
	ServerURL string
}

// screen is the active interaction mode
type screen int

const (
	screenMain screen = iota
	screenPicker
	screenConfirm
	screenSearch
	screenHelp
)

// Model is the bubbletea model over a Controller
type Model struct {
	ctx  context.Context
	ctrl Controller
	opts Options

	view   controller.View
	styles *Styles
	keys   keyMap
	help   help.Model

	screen    screen
	picker    filepicker.Model
	search    textinput.Model
	history   *components.List
	indicator *components.UploadIndicator
	confirm   *confirmRequestMsg

	status    string
	statusErr bool
	width     int
	height    int
	quitting  bool
}

// NewModel creates a model reading ctrl
func NewModel(ctx context.Context, ctrl Controller, opts Options) *Model {
	picker := filepicker.New()
	picker.AllowedTypes = []string{".csv"}
	if opts.StartDir != "" {
		picker.CurrentDirectory = opts.StartDir
	}

	search := textinput.New()
	search.Placeholder = "filename"
	search.Prompt = "/ "

	indicator := components.NewUploadIndicator(30)

	m := &Model{
		ctx:       ctx,
		ctrl:      ctrl,
		opts:      opts,
		styles:    GetStyles(),
		keys:      newKeyMap(),
		help:      help.New(),
		picker:    picker,
		search:    search,
		history:   components.NewHistoryList(nil, 60, 12),
		indicator: indicator,
		width:     80,
		height:    24,
	}
	m.history.SetFocused(true)
	m.sync()
	return m
}

// Init loads history and starts the animation clock
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.initCmd(), tick())
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.history.Width = min(msg.Width-4, 80)
		m.history.Height = max(6, msg.Height-22)
		m.help.Width = msg.Width
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tickMsg:
		if m.view.Loading {
			m.indicator.Tick()
		}
		return m, tick()

	case viewChangedMsg:
		m.sync()
		return m, nil

	case fileArmedMsg:
		m.sync()
		if msg.err != nil {
			m.setError("Cannot use file: " + msg.err.Error())
		} else {
			m.setStatus(emoji.GetEmoji("file") + " Selected " + msg.path)
		}
		return m, nil

	case uploadDoneMsg:
		m.sync()
		return m.handleUploadDone(msg)

	case deleteDoneMsg:
		m.sync()
		return m.handleDeleteDone(msg)

	case refreshDoneMsg:
		m.sync()
		if msg.err != nil {
			m.setError("History refresh failed")
		}
		return m, nil

	case confirmRequestMsg:
		m.confirm = &msg
		m.screen = screenConfirm
		return m, nil
	}

	// Directory listings and other picker internals
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

// sync pulls a fresh View from the controller
func (m *Model) sync() {
	wasLoading := m.view.Loading
	m.view = m.ctrl.View()

	if m.view.Loading && !wasLoading {
		m.indicator.Reset()
		m.indicator.SetMessage(emoji.GetEmoji("upload") + " Uploading " + m.view.FileName)
	}
	m.indicator.SetPercent(m.view.Progress)

	m.history.SetItems(components.HistoryItems(m.view.History))
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(s string) {
	m.status, m.statusErr = s, true
}

// handleKeyPress routes keys by screen
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.handleQuit()
	}

	switch m.screen {
	case screenPicker:
		return m.handlePickerKey(msg)
	case screenConfirm:
		return m.handleConfirmKey(msg)
	case screenSearch:
		return m.handleSearchKey(msg)
	case screenHelp:
		m.screen = screenMain
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.handleQuit()
	case key.Matches(msg, m.keys.Open):
		m.screen = screenPicker
		return m, m.picker.Init()
	case key.Matches(msg, m.keys.Upload):
		return m.handleUpload()
	case key.Matches(msg, m.keys.Refresh):
		m.setStatus(emoji.GetEmoji("hourglass") + " Refreshing history")
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.Up):
		m.history.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.history.MoveDown()
	case key.Matches(msg, m.keys.Delete):
		return m.handleDelete()
	case key.Matches(msg, m.keys.Link):
		if url, ok := m.selectedDownloadURL(); ok {
			m.setStatus(emoji.GetEmoji("link") + " " + url)
		}
	case key.Matches(msg, m.keys.Copy):
		return m.handleCopy()
	case key.Matches(msg, m.keys.Search):
		m.screen = screenSearch
		m.search.SetValue(m.history.SearchQuery())
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Help):
		m.screen = screenHelp
	case key.Matches(msg, m.keys.Back):
		m.status = ""
		m.history.SetSearch("")
	}
	return m, nil
}

func (m *Model) handleQuit() (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		m.confirm.reply <- false
		m.confirm = nil
	}
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) || msg.String() == "q" {
		m.screen = screenMain
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.screen = screenMain
		return m, tea.Batch(cmd, m.armCmd(path))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.setError(path + " is not a CSV file")
	}
	return m, cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm == nil {
		m.screen = screenMain
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Yes):
		m.confirm.reply <- true
	case key.Matches(msg, m.keys.No):
		m.confirm.reply <- false
	default:
		return m, nil
	}
	m.confirm = nil
	m.screen = screenMain
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.search.Blur()
		m.screen = screenMain
		return m, nil
	case tea.KeyEsc:
		m.search.Blur()
		m.search.SetValue("")
		m.history.SetSearch("")
		m.screen = screenMain
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.history.SetSearch(m.search.Value())
	return m, cmd
}

func (m *Model) handleUpload() (tea.Model, tea.Cmd) {
	if m.view.Loading {
		m.setError("An upload is already in progress")
		return m, nil
	}
	m.status = ""
	return m, m.submitCmd()
}

func (m *Model) handleUploadDone(msg uploadDoneMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.err == nil:
		m.setStatus(emoji.GetEmoji("success") + " Analysis complete")
	case errors.Is(msg.err, controller.ErrUploadInFlight):
		m.setError("An upload is already in progress")
	default:
		// The View carries the message shown in the upload panel
		m.status = ""
	}
	return m, nil
}

func (m *Model) handleDelete() (tea.Model, tea.Cmd) {
	item := m.history.GetSelectedItem()
	if item == nil {
		return m, nil
	}
	return m, m.deleteCmd(item.ID)
}

func (m *Model) handleDeleteDone(msg deleteDoneMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.err == nil:
		m.setStatus(emoji.GetEmoji("trash") + " Deleted " + msg.id)
	case errors.Is(msg.err, controller.ErrDeleteDeclined):
		m.setStatus("Delete cancelled")
	default:
		// DeleteError in the View carries the message
		m.status = ""
	}
	return m, nil
}

func (m *Model) handleCopy() (tea.Model, tea.Cmd) {
	url, ok := m.selectedDownloadURL()
	if !ok {
		return m, nil
	}
	if err := clipboard.WriteAll(url); err != nil {
		m.setError("Clipboard unavailable: " + url)
		return m, nil
	}
	m.setStatus(emoji.GetEmoji("link") + " Copied " + url)
	return m, nil
}

func (m *Model) selectedDownloadURL() (string, bool) {
	item := m.history.GetSelectedItem()
	if item == nil {
		return "", false
	}
	return m.ctrl.DownloadURL(item.ID), true
}

func (m *Model) armCmd(path string) tea.Cmd {
	return func() tea.Msg {
		file, err := api.FileFromPath(path)
		if err == nil {
			err = m.ctrl.SelectFile(file)
		}
		return fileArmedMsg{path: path, err: err}
	}
}

func (m *Model) submitCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.ctrl.Submit(m.ctx)
		return uploadDoneMsg{err: err}
	}
}

func (m *Model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return deleteDoneMsg{id: id, err: m.ctrl.Delete(m.ctx, id)}
	}
}

func (m *Model) initCmd() tea.Cmd {
	return func() tea.Msg {
		m.ctrl.Init(m.ctx)
		return viewChangedMsg{}
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: m.ctrl.Refresh(m.ctx)}
	}
}

// View renders the current screen
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenPicker:
		return m.renderPicker()
	case screenHelp:
		return m.renderHelp()
	}

	sections := []string{
		m.renderHeader(),
		m.renderUploadPanel(),
		m.renderReport(),
		m.renderHistory(),
	}

	if m.screen == screenConfirm && m.confirm != nil {
		sections = append(sections, m.renderConfirm())
	}
	if m.screen == screenSearch {
		sections = append(sections, m.search.View())
	}
	if m.status != "" {
		style := m.styles.Info
		if m.statusErr {
			style = m.styles.Error
		}
		sections = append(sections, style.Render(m.status))
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	title := m.styles.Title.Render(emoji.GetEmoji("report") + " Sales Forecaster")
	if m.opts.ServerURL == "" {
		return title
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, title, m.styles.Muted.Render(emoji.GetEmoji("server")+" "+m.opts.ServerURL))
}

func (m *Model) renderUploadPanel() string {
	var lines []string

	switch {
	case m.view.FileName != "":
		lines = append(lines, m.styles.Body.Render(emoji.GetEmoji("file")+" "+m.view.FileName))
	default:
		lines = append(lines, m.styles.Muted.Render("No file selected, press o to choose a CSV"))
	}

	switch m.view.Phase {
	case session.FileArmed:
		lines = append(lines, m.styles.Info.Render("Ready, press u to upload"))
	case session.InFlight:
		lines = append(lines, m.styles.Progress.Render(m.indicator.Render()))
	case session.Succeeded:
		lines = append(lines, m.styles.Success.Render(emoji.GetEmoji("success")+" Uploaded"))
	}

	if m.view.HasError() {
		lines = append(lines, m.styles.Error.Render(emoji.GetEmoji("error")+" "+m.view.Error))
	}

	return m.styles.Panel.Width(min(m.width-4, 80)).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderReport() string {
	if m.view.Report == nil {
		return m.styles.Muted.Render(emoji.GetEmoji("empty") + " No report yet")
	}

	columns := 4
	if m.width < 90 {
		columns = 2
	}
	stats := components.NewReportStats(m.view.Report, columns)
	stats.SetCardSize(18, 3)

	chart := m.styles.Muted.Render(emoji.GetEmoji("chart") + " No chart returned")
	if png, err := m.view.Report.ChartPNG(); err == nil {
		chart = m.styles.Muted.Render(fmt.Sprintf("%s Chart received (%s), save it with: salesfc upload --chart-out",
			emoji.GetEmoji("chart"), humanize.Bytes(uint64(len(png)))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, stats.Render(), chart)
}

func (m *Model) renderHistory() string {
	parts := []string{m.history.Render()}

	if spark := components.NewHistorySparkline(m.view.History, 20).Render(); spark != "" {
		parts = append(parts, m.styles.Muted.Render("Totals ")+spark)
	}
	if m.view.DeleteError != "" {
		parts = append(parts, m.styles.Error.Render(emoji.GetEmoji("error")+" "+m.view.DeleteError))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderConfirm() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Warning.Render(emoji.GetEmoji("trash")+" "+m.confirm.prompt),
		m.styles.Muted.Render("y to confirm, n to cancel"),
	)
	return m.styles.Box.Render(body)
}

func (m *Model) renderPicker() string {
	title := m.styles.Header.Render(emoji.GetEmoji("file") + " Choose a CSV file")
	dir := m.styles.Muted.Render(m.picker.CurrentDirectory)
	hint := m.styles.Muted.Render("enter to select, esc to cancel")

	content := lipgloss.JoinVertical(lipgloss.Left, title, dir, "", m.picker.View(), "", hint)
	if m.status != "" && m.statusErr {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.styles.Error.Render(m.status))
	}
	return m.styles.Box.Render(content)
}

func (m *Model) renderHelp() string {
	box := components.NewSummaryBox(emoji.GetEmoji("help")+" Keys", min(m.width-4, 60))
	for _, group := range m.keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			box.AddKeyValue(h.Key, h.Desc)
		}
	}
	box.AddLine("")
	box.AddLine("Press any key to return")
	return box.Render()
}

// Run starts the TUI and blocks until the user quits or ctx ends. When
// confirmer is non-nil, delete prompts are shown inside the program.
func Run(ctx context.Context, ctrl Controller, confirmer *Confirmer, opts Options) error {
	if opts.Theme != "" && !SetThemeByName(opts.Theme) {
		return fmt.Errorf("unknown theme %q (available: %s)", opts.Theme, strings.Join(GetAvailableThemes(), ", "))
	}

	model := NewModel(ctx, ctrl, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if confirmer != nil {
		confirmer.Attach(p.Send)
		defer confirmer.Attach(nil)
	}

	unsubscribe := ctrl.Subscribe(func(controller.View) {
		p.Send(viewChangedMsg{})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
