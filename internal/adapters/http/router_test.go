package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/askcampus/askcampus/internal/core/domain"
	"github.com/askcampus/askcampus/internal/observability/metrics"
)

type fakeQueryService struct {
	answer *domain.Answer
	err    error
}

func (f *fakeQueryService) Answer(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	return f.answer, f.err
}

type fakeIngestor struct {
	doc *domain.Document
	err error
}

func (f *fakeIngestor) Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	return f.doc, f.err
}

type fakeReader struct {
	doc *domain.Document
	err error
}

func (f *fakeReader) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	return f.doc, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(cfg RouterConfig, query *fakeQueryService, ingest *fakeIngestor, docs *fakeReader) http.Handler {
	if query == nil {
		query = &fakeQueryService{answer: &domain.Answer{Text: "ok", Grounded: true}}
	}
	if ingest == nil {
		ingest = &fakeIngestor{doc: &domain.Document{ID: "doc-1", Status: domain.StatusUploaded}}
	}
	if docs == nil {
		docs = &fakeReader{doc: &domain.Document{ID: "doc-1", Status: domain.StatusReady}}
	}
	rt := NewRouter(cfg, query, ingest, docs, nil, metrics.NewHTTPServerMetrics(serviceName), testLogger())
	return rt.Handler()
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestAnswerQuestionSuccess(t *testing.T) {
	query := &fakeQueryService{answer: &domain.Answer{
		Text:       "The fee is 120000 rupees.",
		SpeechText: "The fee is one lakh twenty thousand rupees.",
		Sources:    []domain.Source{{Source: "fees.pdf", Score: 0.91}},
		Grounded:   true,
	}}
	handler := newTestRouter(RouterConfig{}, query, nil, nil)

	res := postJSON(t, handler, "/v1/qa/query", map[string]any{"question": "What is the fee?"})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var got domain.Answer
	if err := json.Unmarshal(res.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Text != "The fee is 120000 rupees." || !got.Grounded {
		t.Errorf("unexpected answer: %+v", got)
	}
	if got.SpeechText == "" || len(got.Sources) != 1 {
		t.Errorf("speech text and sources must round-trip: %+v", got)
	}
}

func TestAnswerQuestionValidation(t *testing.T) {
	handler := newTestRouter(RouterConfig{}, nil, nil, nil)

	res := postJSON(t, handler, "/v1/qa/query", map[string]any{"question": "  "})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/qa/query", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", rec.Code)
	}
}

func TestAnswerQuestionServiceErrorsHideInternals(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"retrieval down", domain.WrapError(domain.ErrRetrievalUnavailable, "embed query", errors.New("dial tcp: connection refused"))},
		{"generation down", domain.WrapError(domain.ErrGenerationUnavailable, "generate answer", errors.New("status 500 from llm"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestRouter(RouterConfig{}, &fakeQueryService{err: tt.err}, nil, nil)
			res := postJSON(t, handler, "/v1/qa/query", map[string]any{"question": "fee?"})
			if res.Code != http.StatusServiceUnavailable {
				t.Fatalf("expected 503, got %d", res.Code)
			}
			body := res.Body.String()
			for _, leak := range []string{"dial tcp", "status 500", "embed query", "generate answer"} {
				if strings.Contains(body, leak) {
					t.Errorf("internal detail %q leaked: %s", leak, body)
				}
			}
			if !strings.Contains(body, "try again") {
				t.Errorf("expected generic retry message, got %s", body)
			}
		})
	}
}

func TestUploadDocument(t *testing.T) {
	handler := newTestRouter(RouterConfig{}, nil, nil, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "fees.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("fee table"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
}

func TestUploadDocumentMissingFile(t *testing.T) {
	handler := newTestRouter(RouterConfig{}, nil, nil, nil)
	res := postJSON(t, handler, "/v1/documents", map[string]string{"not": "a file"})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGetDocumentByID(t *testing.T) {
	handler := newTestRouter(RouterConfig{}, nil, nil, &fakeReader{doc: &domain.Document{ID: "doc-1", Status: domain.StatusReady}})

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestGetDocumentByIDNotFound(t *testing.T) {
	notFound := domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("id missing"))
	handler := newTestRouter(RouterConfig{}, nil, nil, &fakeReader{err: notFound})

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestHealthz(t *testing.T) {
	health := func() HealthStatus {
		return HealthStatus{IndexedChunks: 42}
	}
	rt := NewRouter(RouterConfig{}, &fakeQueryService{}, &fakeIngestor{}, &fakeReader{},
		health, metrics.NewHTTPServerMetrics(serviceName), testLogger())
	handler := rt.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var body struct {
		Status        string `json:"status"`
		IndexedChunks int    `json:"indexed_chunks"`
		Generator     string `json:"generator"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body.Status != "ok" || body.IndexedChunks != 42 || body.Generator != "ok" {
		t.Fatalf("unexpected health body: %+v", body)
	}
}

func TestHealthzDegraded(t *testing.T) {
	health := func() HealthStatus {
		return HealthStatus{Err: errors.New("db down"), GeneratorUnavailable: true}
	}
	rt := NewRouter(RouterConfig{}, &fakeQueryService{}, &fakeIngestor{}, &fakeReader{},
		health, metrics.NewHTTPServerMetrics(serviceName), testLogger())
	handler := rt.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
	var body struct {
		Status    string `json:"status"`
		Generator string `json:"generator"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body.Status != "degraded" || body.Generator != "unavailable" {
		t.Fatalf("unexpected health body: %+v", body)
	}
}

func TestRateLimitReturns429(t *testing.T) {
	handler := newTestRouter(RouterConfig{RateLimitRPS: 1, RateLimitBurst: 1}, nil, nil, nil)

	req1 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res1 := httptest.NewRecorder()
	handler.ServeHTTP(res1, req1)
	if res1.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", res1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, req2)
	if res2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", res2.Code)
	}
	if res2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header for 429 response")
	}
}

func TestBackpressureReturns503WhenSaturated(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int, 1)

	base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-release
		w.WriteHeader(http.StatusNoContent)
	})
	handler := backpressureMiddleware(base, 1, 20*time.Millisecond)

	go func() {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		done <- res.Code
	}()

	<-started

	req2 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, req2)
	if res2.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for saturated backpressure gate, got %d", res2.Code)
	}

	close(release)

	select {
	case code := <-done:
		if code != http.StatusNoContent {
			t.Fatalf("first request expected 204, got %d", code)
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("timed out waiting for first request completion")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	handler := newTestRouter(RouterConfig{}, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if got := res.Header().Get(requestIDHeader); got != "req-123" {
		t.Errorf("expected request id echoed, got %q", got)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, req2)
	if res2.Header().Get(requestIDHeader) == "" {
		t.Error("expected generated request id")
	}
}
