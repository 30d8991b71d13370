package devserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Messages the service sends in error bodies
const (
	MsgNoFile   = "No CSV file uploaded"
	MsgNotFound = "Not found"
)

// APIError is an error answered as {"error": message}
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// NewBadRequestError creates a 400 error carrying message
func NewBadRequestError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}

// NewNotFoundError creates a 404 error
func NewNotFoundError() *APIError {
	return &APIError{Status: http.StatusNotFound, Message: MsgNotFound}
}

// ErrorHandler writes every failure in the service's error shape.
// Usage: e.HTTPErrorHandler = ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{Status: httpErr.Code, Message: fmt.Sprintf("%v", httpErr.Message)}
	default:
		apiErr = &APIError{Status: http.StatusInternalServerError, Message: err.Error()}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(apiErr.Status)
		return
	}
	_ = c.JSON(apiErr.Status, apiErr)
}

// responseStatus is the status err will be answered with, or the written status
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Status
	case errors.As(err, &httpErr):
		return httpErr.Code
	default:
		return http.StatusInternalServerError
	}
}
