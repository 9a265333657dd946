package dream

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/onyria-app/core/internal/middleware"
	"github.com/onyria-app/core/internal/modules/processing/emotion"
	"github.com/onyria-app/core/internal/modules/processing/interpret"
	"github.com/onyria-app/core/internal/modules/processing/transcribe"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	fakeAuth := func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, "user-1")
		c.Next()
	}

	h := NewHandler(NewService(nil, nil, nil, nil, nil), nil)
	h.RegisterRoutes(r.Group("/api/v1"), fakeAuth)
	return r
}

func postMultipart(t *testing.T, r *gin.Engine, field, filename string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(payload); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dreams/analyze", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeFailure(t *testing.T, w *httptest.ResponseRecorder) (bool, string) {
	t.Helper()
	var out struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode failure envelope: %v (body %s)", err, w.Body.String())
	}
	if out.Error == "" {
		t.Error("failure envelope must carry an error message")
	}
	return out.Success, out.Detail
}

func TestAnalyzeRequiresAudio(t *testing.T) {
	r := newTestRouter()

	w := postMultipart(t, r, "", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	success, detail := decodeFailure(t, w)
	if success || detail != "no_audio" {
		t.Errorf("got success=%v detail=%q, want false/no_audio", success, detail)
	}
}

func TestAnalyzeRejectsEmptyAudio(t *testing.T) {
	r := newTestRouter()

	w := postMultipart(t, r, "audio", "reve.wav", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if success, detail := decodeFailure(t, w); success || detail != "empty_audio" {
		t.Errorf("got success=%v detail=%q, want false/empty_audio", success, detail)
	}
}

func TestAnalyzeRejectsUnsupportedFormat(t *testing.T) {
	r := newTestRouter()

	w := postMultipart(t, r, "audio", "notes.txt", []byte("pas de l'audio"))
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", w.Code)
	}
	if success, detail := decodeFailure(t, w); success || detail != "unsupported_format" {
		t.Errorf("got success=%v detail=%q, want false/unsupported_format", success, detail)
	}
}

func TestClassifyAnalysisError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		detail string
	}{
		{transcribe.ErrUnsupportedFormat, http.StatusUnsupportedMediaType, "unsupported_format"},
		{interpret.ErrInvalidInput, http.StatusBadRequest, "empty_narrative"},
		{transcribe.ErrDisabled, http.StatusServiceUnavailable, "transcription_disabled"},
		{transcribe.ErrTranscriptionFailed, http.StatusBadGateway, "transcription_failed"},
		{emotion.ErrClassificationFailed, http.StatusBadGateway, "classification_failed"},
		{interpret.ErrGenerationFailed, http.StatusBadGateway, "interpretation_failed"},
		{errors.New("unexpected"), http.StatusInternalServerError, "server_error"},
	}

	for _, tc := range cases {
		status, message, detail := classifyAnalysisError(tc.err)
		if status != tc.status || detail != tc.detail {
			t.Errorf("classifyAnalysisError(%v) = %d/%q, want %d/%q", tc.err, status, detail, tc.status, tc.detail)
		}
		if message == "" {
			t.Errorf("classifyAnalysisError(%v) returned an empty message", tc.err)
		}
	}

	// Wrapped errors must classify the same way.
	wrapped := errors.Join(errors.New("call failed"), interpret.ErrGenerationFailed)
	if status, _, detail := classifyAnalysisError(wrapped); status != http.StatusBadGateway || detail != "interpretation_failed" {
		t.Errorf("wrapped generation failure classified as %d/%q", status, detail)
	}
}
