package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Report is the summary the analysis service returns for one uploaded CSV
type Report struct {
	Total      float64 `json:"total"`
	Average    float64 `json:"average"`
	UsedColumn string  `json:"used_column,omitempty"`
	DateColumn string  `json:"date_column,omitempty"`
	Chart      string  `json:"chart,omitempty"` // base64 PNG
	Message    string  `json:"message,omitempty"`
}

// HasChart reports whether the report carries a chart image
func (r *Report) HasChart() bool {
	return r != nil && r.Chart != ""
}

// Clone returns a copy of r, or nil for a nil report
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// ChartPNG decodes the base64 chart
func (r *Report) ChartPNG() ([]byte, error) {
	if !r.HasChart() {
		return nil, fmt.Errorf("report has no chart")
	}
	data, err := base64.StdEncoding.DecodeString(r.Chart)
	if err != nil {
		return nil, fmt.Errorf("failed to decode chart: %w", err)
	}
	return data, nil
}

// HistoryRecord references one past analysis stored by the service
type HistoryRecord struct {
	ID           string   `json:"id"`
	UploadDate   string   `json:"upload_date"`
	Filename     string   `json:"filename"`
	TotalSales   *float64 `json:"total_sales,omitempty"`
	AverageSales *float64 `json:"average_sales,omitempty"`
	UsedColumn   string   `json:"used_column,omitempty"`
}

// Clone returns a copy that shares no pointers with h
func (h HistoryRecord) Clone() HistoryRecord {
	h.TotalSales = cloneFloat(h.TotalSales)
	h.AverageSales = cloneFloat(h.AverageSales)
	return h
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// UnmarshalJSON accepts the id as a JSON string or number
func (h *HistoryRecord) UnmarshalJSON(data []byte) error {
	type plain HistoryRecord
	aux := struct {
		*plain
		ID recordID `json:"id"`
	}{plain: (*plain)(h)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	h.ID = string(aux.ID)
	return nil
}

// recordID is an opaque id the service may send as a string or a number
type recordID string

func (id *recordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = recordID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number, got %s", data)
	}
	*id = recordID(n.String())
	return nil
}

// Total returns TotalSales or 0 when the service omitted it
func (h HistoryRecord) Total() float64 {
	if h.TotalSales == nil {
		return 0
	}
	return *h.TotalSales
}

// errorResponse is the failure body the service sends
type errorResponse struct {
	Error string `json:"error"`
}

// File is an upload handle. Size is the byte length of the content, or a
// negative value when it is not known up front.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FileFromPath builds a File backed by a path on disk
func FileFromPath(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, NewError(ErrKindValidation, "file", "empty file path")
	}

	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, NewErrorWithCause(ErrKindValidation, "file", "cannot access file", err)
	}
	if info.IsDir() {
		return nil, NewError(ErrKindValidation, "file", "path is a directory: "+cleanPath)
	}

	return &File{
		Name: filepath.Base(cleanPath),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) {
			// #nosec G304 - path is chosen by the user
			return os.Open(cleanPath)
		},
	}, nil
}

// FileFromBytes builds a File over an in-memory buffer
func FileFromBytes(name string, data []byte) *File {
	return &File{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FileFromReader builds a File of unknown size. The reader is consumed once.
func FileFromReader(name string, r io.Reader) *File {
	return &File{
		Name: name,
		Size: -1,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		},
	}
}
