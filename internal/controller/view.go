package controller

import (
	"github.com/yildizm/SalesForecaster/internal/api"
	"github.com/yildizm/SalesForecaster/internal/session"
)

// View is the state surface the presentation layer reads. It is a snapshot;
// mutating it has no effect on the controller.
type View struct {
	// Phase is the upload session's current variant
	Phase session.Phase

	// FileName is the armed or uploading file, empty otherwise
	FileName string

	// Report is the last successful analysis. A failed upload never clears it.
	Report *api.Report

	// History is the last successfully fetched sequence, in server order
	History []api.HistoryRecord

	// Loading is true iff an upload is in flight
	Loading bool

	// Progress is the in-flight percentage, 0 otherwise
	Progress int

	// Error is the upload failure message, empty when there is none
	Error string

	// DeleteError is the message of the last failed delete. It is cleared
	// when the next delete starts.
	DeleteError string
}

// HasError reports whether an upload error is displayed
func (v View) HasError() bool {
	return v.Error != ""
}

// CanSubmit reports whether a submission would reach the transport
func (v View) CanSubmit() bool {
	return v.Phase == session.FileArmed
}
