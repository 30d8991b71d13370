package devserver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yildizm/SalesForecaster/internal/config"
	"github.com/yildizm/SalesForecaster/internal/monitor"
)

const salesCSV = "date,region,revenue\n2024-01-01,north,100\n2024-01-02,south,250\n"

func newUploadRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func newTestServer() *Server {
	cfg := config.DefaultConfig().DevServer
	return New(cfg, nil)
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHandleAnalyze(t *testing.T) {
	e := echo.New()
	store := NewStore()
	h := NewHandler(store, 5, 0, nil)

	req := newUploadRequest(t, UploadField, "sales.csv", salesCSV)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleAnalyze(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp AnalyzeResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Success", resp.Message)
	assert.Equal(t, 350.0, resp.Total)
	assert.Equal(t, 175.0, resp.Average)
	assert.Equal(t, "revenue", resp.UsedColumn)
	assert.Equal(t, "date", resp.DateColumn)

	chart, err := base64.StdEncoding.DecodeString(resp.Chart)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(chart, []byte("\x89PNG")))

	require.Equal(t, 1, store.Len())
	assert.Equal(t, "sales.csv", store.List(1)[0].Filename)
}

func TestHandleAnalyze_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		request  func(t *testing.T) *http.Request
		expected string
	}{
		{
			name: "missing file",
			request: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/analyze/", strings.NewReader(""))
			},
			expected: MsgNoFile,
		},
		{
			name: "wrong field name",
			request: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "file", "sales.csv", salesCSV)
			},
			expected: MsgNoFile,
		},
		{
			name: "empty csv",
			request: func(t *testing.T) *http.Request {
				return newUploadRequest(t, UploadField, "empty.csv", "")
			},
			expected: "CSV is empty",
		},
		{
			name: "no numeric column",
			request: func(t *testing.T) *http.Request {
				return newUploadRequest(t, UploadField, "words.csv", "name\nfoo\nbar\n")
			},
			expected: "No numeric column found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			store := NewStore()
			h := NewHandler(store, 5, 0, nil)
			c := e.NewContext(tt.request(t), httptest.NewRecorder())

			err := h.HandleAnalyze(c)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Equal(t, tt.expected, apiErr.Message)
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestHandleAnalyze_TooLarge(t *testing.T) {
	s := New(config.DevServerConfig{HistoryLimit: 5, MaxUploadSize: 64}, nil)

	rec := serve(s, newUploadRequest(t, UploadField, "big.csv", "v\n"+strings.Repeat("1\n", 200)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, s.Store().Len())
}

func TestHandleHistory(t *testing.T) {
	s := newTestServer()
	for i := 0; i < 7; i++ {
		rec := serve(s, newUploadRequest(t, UploadField, "sales.csv", salesCSV))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/history/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var entries []map[string]interface{}
	decodeBody(t, rec, &entries)
	require.Len(t, entries, 5)

	first := entries[0]
	assert.Equal(t, "sales.csv", first["filename"])
	assert.Equal(t, 350.0, first["total_sales"])
	assert.Equal(t, 175.0, first["average_sales"])
	assert.Equal(t, "revenue", first["used_column"])
	assert.NotEmpty(t, first["id"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}$`, first["upload_date"])
	assert.NotContains(t, first, "chart")
}

func TestHandleHistory_EmptyIsArray(t *testing.T) {
	rec := serve(newTestServer(), httptest.NewRequest(http.MethodGet, "/api/history/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleDelete(t *testing.T) {
	e := echo.New()
	store := NewStore()
	h := NewHandler(store, 5, 0, nil)
	added := store.Add(Analysis{Filename: "a.csv"})

	req := httptest.NewRequest(http.MethodDelete, "/api/history/"+added.ID+"/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(added.ID)

	err := h.HandleDelete(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Deleted"}`, rec.Body.String())
	assert.Equal(t, 0, store.Len())
}

func TestHandleDelete_NotFound(t *testing.T) {
	rec := serve(newTestServer(), httptest.NewRequest(http.MethodDelete, "/api/history/missing/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}

func TestHandleDownload(t *testing.T) {
	s := newTestServer()
	rec := serve(s, newUploadRequest(t, UploadField, "sales.csv", salesCSV))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := s.Store().List(1)[0].ID

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/download/"+id+"/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `attachment; filename="report.pdf"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
	assert.Contains(t, rec.Body.String(), "(File: sales.csv)")
}

func TestHandleDownload_NotFound(t *testing.T) {
	rec := serve(newTestServer(), httptest.NewRequest(http.MethodGet, "/api/download/missing/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}

func TestServer_AddsTrailingSlash(t *testing.T) {
	rec := serve(newTestServer(), httptest.NewRequest(http.MethodGet, "/api/history", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_UnknownRoute(t *testing.T) {
	rec := serve(newTestServer(), httptest.NewRequest(http.MethodGet, "/api/nothing/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.NotEmpty(t, body["error"])
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "api error",
			err:            NewBadRequestError("CSV is empty"),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"CSV is empty"}`,
		},
		{
			name:           "echo error",
			err:            echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"),
			expectedStatus: http.StatusMethodNotAllowed,
			expectedBody:   `{"error":"Method Not Allowed"}`,
		},
		{
			name:           "plain error",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
		})
	}
}

func TestServer_TracksOperations(t *testing.T) {
	s := newTestServer()

	rec := serve(s, newUploadRequest(t, UploadField, "sales.csv", salesCSV))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = serve(s, newUploadRequest(t, UploadField, "words.csv", "name\nfoo\n"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/history/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = serve(s, httptest.NewRequest(http.MethodDelete, "/api/history/missing/", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/stats/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot monitor.Snapshot
	decodeBody(t, rec, &snapshot)

	byOp := make(map[monitor.OperationType]monitor.OperationMetrics)
	for _, op := range snapshot.Operations {
		byOp[op.Operation] = op
	}

	assert.Equal(t, int64(2), byOp[monitor.OperationAnalyze].Count)
	assert.Equal(t, int64(1), byOp[monitor.OperationAnalyze].Errors)
	assert.Equal(t, int64(1), byOp[monitor.OperationHistory].Count)
	assert.Equal(t, int64(0), byOp[monitor.OperationHistory].Errors)
	assert.Equal(t, int64(1), byOp[monitor.OperationDelete].Errors)
	assert.Equal(t, int64(0), byOp[monitor.OperationDownload].Count)

	assert.Equal(t, int64(1), snapshot.Uploads.Files)
	assert.Equal(t, int64(2), snapshot.Uploads.Rows)
	assert.Equal(t, int64(len(salesCSV)), snapshot.Uploads.Bytes)
}
