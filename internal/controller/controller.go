package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yildizm/SalesForecaster/internal/api"
	"github.com/yildizm/SalesForecaster/internal/history"
	"github.com/yildizm/SalesForecaster/internal/logger"
	"github.com/yildizm/SalesForecaster/internal/session"
)

// User-facing messages
const (
	MsgSelectFile   = "Please select a CSV file"
	MsgUploadFailed = "Upload failed"
	MsgDeleteFailed = "Delete failed"
)

var (
	// ErrUploadInFlight is returned when an action needs the session idle but an upload is running
	ErrUploadInFlight = errors.New("an upload is already in progress")

	// ErrNoFileSelected is returned by Submit when no file is armed
	ErrNoFileSelected = errors.New("no file selected")

	// ErrDeleteDeclined is returned by Delete when the confirmer says no
	ErrDeleteDeclined = errors.New("delete not confirmed")
)

// Transport is the subset of the service client the controller drives
type Transport interface {
	ListHistory(ctx context.Context) ([]api.HistoryRecord, error)
	CreateAnalysis(ctx context.Context, file *api.File, onProgress api.ProgressFunc) (*api.Report, error)
	DeleteHistoryItem(ctx context.Context, id string) error
	DownloadURL(id string) string
}

// Controller reconciles uploads, history refreshes and deletes into one View.
// All methods are safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	transport Transport
	session   *session.Session
	history   *history.Store
	report    *api.Report
	deleteErr string

	confirmer Confirmer
	log       *logger.Logger

	// notifyMu orders deliveries so subscribers never see an older snapshot after a newer one
	notifyMu    sync.Mutex
	subscribers map[int]func(View)
	nextSubID   int
}

// Option customizes a Controller
type Option func(*Controller)

// WithLogger sets the controller's logger
func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l.WithComponent("controller")
		}
	}
}

// WithConfirmer sets the provider consulted before every delete
func WithConfirmer(confirmer Confirmer) Option {
	return func(c *Controller) {
		if confirmer != nil {
			c.confirmer = confirmer
		}
	}
}

// New creates a controller over transport. Without WithConfirmer every
// delete is approved.
func New(transport Transport, opts ...Option) *Controller {
	c := &Controller{
		transport:   transport,
		session:     session.New(),
		history:     history.NewStore(transport),
		confirmer:   AutoConfirm,
		log:         logger.New("controller", nil),
		subscribers: make(map[int]func(View)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init performs the mount-time history load. A failure is logged and
// leaves the history empty.
func (c *Controller) Init(ctx context.Context) {
	c.refreshQuietly(ctx, "init")
}

// View returns the current snapshot
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	st := c.session.State()
	v := View{
		Phase:       st.Phase,
		Report:      c.report.Clone(),
		History:     c.history.Records(),
		DeleteError: c.deleteErr,
	}
	if st.File != nil {
		v.FileName = st.File.Name
	}
	switch st.Phase {
	case session.InFlight:
		v.Loading = true
		v.Progress = st.Progress
	case session.Failed:
		v.Error = st.Message
	}
	return v
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that caused the change and must not call back
// into the controller's mutating methods synchronously.
func (c *Controller) Subscribe(fn func(View)) func() {
	c.notifyMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.notifyMu.Lock()
			delete(c.subscribers, id)
			c.notifyMu.Unlock()
		})
	}
}

func (c *Controller) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if len(c.subscribers) == 0 {
		return
	}
	v := c.View()
	for _, fn := range c.subscribers {
		fn(v)
	}
}

// SelectFile arms file for the next submission. It clears a displayed
// upload error and leaves the current report alone.
func (c *Controller) SelectFile(file *api.File) error {
	c.mu.Lock()
	if c.session.State().Phase == session.InFlight {
		c.mu.Unlock()
		return ErrUploadInFlight
	}
	if err := c.session.Select(file); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	c.log.Debug("armed %s", file.Name)
	c.notify()
	return nil
}

// Submit uploads the armed file and blocks until the service answers. On
// success the report replaces the current one and history is refreshed.
// On failure the View carries the server's message or MsgUploadFailed and
// report and history are untouched. A call while an upload is in flight
// returns ErrUploadInFlight without contacting the transport.
func (c *Controller) Submit(ctx context.Context) (*api.Report, error) {
	c.mu.Lock()
	if c.session.State().Phase == session.InFlight {
		c.mu.Unlock()
		return nil, ErrUploadInFlight
	}
	attempt, file, err := c.session.Begin()
	if err != nil {
		_ = c.session.Reject(MsgSelectFile)
		c.mu.Unlock()
		c.notify()
		return nil, ErrNoFileSelected
	}
	c.mu.Unlock()
	c.notify()

	startTime := time.Now()
	report, err := c.transport.CreateAnalysis(ctx, file, func(percent int) {
		c.onProgress(attempt, percent)
	})
	if err == nil && report == nil {
		err = api.NewError(api.ErrKindDecode, "create_analysis", "empty response")
	}

	if err != nil {
		message := MsgUploadFailed
		if serverMsg, ok := api.ServerMessage(err); ok {
			message = serverMsg
		}

		c.mu.Lock()
		_ = c.session.Fail(attempt, message)
		c.mu.Unlock()
		c.notify()

		c.log.WarnWithFields("upload failed", []logger.Field{
			logger.F("file", file.Name),
			logger.Error(err),
			logger.Duration(time.Since(startTime)),
		})
		return nil, fmt.Errorf("upload %s: %w", file.Name, err)
	}

	c.mu.Lock()
	_ = c.session.Succeed(attempt, report)
	c.report = report
	c.mu.Unlock()
	c.notify()

	c.log.InfoWithFields("upload succeeded", []logger.Field{
		logger.F("file", file.Name),
		logger.F("total", report.Total),
		logger.Duration(time.Since(startTime)),
	})

	c.refreshQuietly(ctx, "upload")
	return report, nil
}

func (c *Controller) onProgress(attempt uint64, percent int) {
	c.mu.Lock()
	before := c.session.State().Progress
	applied := c.session.Progress(attempt, percent)
	changed := applied && c.session.State().Progress != before
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

// Delete asks the confirmer, removes id on the service and refreshes
// history. A declined prompt returns ErrDeleteDeclined without contacting
// the transport. A failed delete leaves history untouched and sets
// View.DeleteError.
func (c *Controller) Delete(ctx context.Context, id string) error {
	ok, err := c.confirmer.Confirm(ctx, fmt.Sprintf("Delete analysis %s?", id))
	if err != nil {
		return fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		c.log.Debug("delete of %s declined", id)
		return ErrDeleteDeclined
	}

	c.mu.Lock()
	hadError := c.deleteErr != ""
	c.deleteErr = ""
	c.mu.Unlock()
	if hadError {
		c.notify()
	}

	if err := c.transport.DeleteHistoryItem(ctx, id); err != nil {
		message := MsgDeleteFailed
		if serverMsg, ok := api.ServerMessage(err); ok {
			message = serverMsg
		}

		c.mu.Lock()
		c.deleteErr = message
		c.mu.Unlock()
		c.notify()

		c.log.WarnWithFields("delete failed", []logger.Field{logger.F("id", id), logger.Error(err)})
		return fmt.Errorf("delete %s: %w", id, err)
	}

	c.log.Debug("deleted %s", id)
	c.refreshQuietly(ctx, "delete")
	return nil
}

// Refresh reloads history and returns the transport error, if any. The
// stored history is kept on failure.
func (c *Controller) Refresh(ctx context.Context) error {
	if err := c.history.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh history: %w", err)
	}
	c.notify()
	return nil
}

func (c *Controller) refreshQuietly(ctx context.Context, reason string) {
	if err := c.Refresh(ctx); err != nil {
		c.log.WarnWithFields("history refresh failed", []logger.Field{
			logger.F("after", reason),
			logger.Error(err),
		})
	}
}

// DownloadURL returns the PDF link for id. No request is made.
func (c *Controller) DownloadURL(id string) string {
	return c.transport.DownloadURL(id)
}
