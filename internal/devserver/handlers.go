package devserver

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/yildizm/SalesForecaster/internal/logger"
	"github.com/yildizm/SalesForecaster/internal/monitor"
)

// UploadField is the multipart field carrying the CSV
const UploadField = "csv_file"

// historyDateLayout formats upload_date in history entries
const historyDateLayout = "2006-01-02 15:04"

// AnalyzeResponse is the 201 body for a successful analysis
type AnalyzeResponse struct {
	Message    string  `json:"message"`
	Total      float64 `json:"total"`
	Average    float64 `json:"average"`
	UsedColumn string  `json:"used_column"`
	DateColumn string  `json:"date_column,omitempty"`
	Chart      string  `json:"chart"`
}

// HistoryEntry is one history item; the chart is never included
type HistoryEntry struct {
	ID           string  `json:"id"`
	Filename     string  `json:"filename"`
	UploadDate   string  `json:"upload_date"`
	TotalSales   float64 `json:"total_sales"`
	AverageSales float64 `json:"average_sales"`
	UsedColumn   string  `json:"used_column,omitempty"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// Handler serves the analysis API
type Handler struct {
	store         *Store
	historyLimit  int
	maxUploadSize int64
	metrics       *monitor.Collector
	log           *logger.Logger
}

// NewHandler creates a handler over store
func NewHandler(store *Store, historyLimit int, maxUploadSize int64, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		store:         store,
		historyLimit:  historyLimit,
		maxUploadSize: maxUploadSize,
		log:           log,
	}
}

// HandleAnalyze handles POST /api/analyze/
func (h *Handler) HandleAnalyze(c echo.Context) error {
	req := c.Request()
	if h.maxUploadSize > 0 {
		req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxUploadSize)
	}

	fileHeader, err := c.FormFile(UploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return NewBadRequestError("CSV file too large")
		}
		return NewBadRequestError(MsgNoFile)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return NewBadRequestError(err.Error())
	}
	defer src.Close()

	result, err := Analyze(src)
	if err != nil {
		h.log.WarnWithFields("analysis rejected", []logger.Field{
			logger.F("file", fileHeader.Filename),
			logger.Error(err),
		})
		return NewBadRequestError(err.Error())
	}

	chart, err := RenderChart(result.Points)
	if err != nil {
		return NewBadRequestError(err.Error())
	}

	stored := h.store.Add(Analysis{
		Filename:   fileHeader.Filename,
		Total:      result.Total,
		Average:    result.Average,
		UsedColumn: result.ValueCol,
		DateColumn: result.DateCol,
		Chart:      chart,
	})

	h.metrics.RecordUpload(fileHeader.Size, int64(result.Rows))
	h.log.InfoWithFields("analysis stored", []logger.Field{
		logger.F("id", stored.ID),
		logger.F("file", stored.Filename),
		logger.F("column", stored.UsedColumn),
		logger.Count(result.Rows),
	})

	return c.JSON(http.StatusCreated, &AnalyzeResponse{
		Message:    "Success",
		Total:      result.Total,
		Average:    result.Average,
		UsedColumn: result.ValueCol,
		DateColumn: result.DateCol,
		Chart:      base64.StdEncoding.EncodeToString(chart),
	})
}

// HandleHistory handles GET /api/history/
func (h *Handler) HandleHistory(c echo.Context) error {
	items := h.store.List(h.historyLimit)

	entries := make([]HistoryEntry, 0, len(items))
	for _, a := range items {
		entries = append(entries, HistoryEntry{
			ID:           a.ID,
			Filename:     a.Filename,
			UploadDate:   a.UploadedAt.Format(historyDateLayout),
			TotalSales:   a.Total,
			AverageSales: a.Average,
			UsedColumn:   a.UsedColumn,
		})
	}
	return c.JSON(http.StatusOK, entries)
}

// HandleDelete handles DELETE /api/history/:id/
func (h *Handler) HandleDelete(c echo.Context) error {
	id := c.Param("id")
	if !h.store.Delete(id) {
		return NewNotFoundError()
	}
	h.log.InfoWithFields("analysis deleted", []logger.Field{logger.F("id", id)})
	return c.JSON(http.StatusOK, &MessageResponse{Message: "Deleted"})
}

// HandleDownload handles GET /api/download/:id/
func (h *Handler) HandleDownload(c echo.Context) error {
	a, ok := h.store.Get(c.Param("id"))
	if !ok {
		return NewNotFoundError()
	}

	pdf, err := ReportPDF(a)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="report.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// HandleStats handles GET /api/stats/
func (h *Handler) HandleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.metrics.Snapshot())
}
