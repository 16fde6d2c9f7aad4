package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/askcampus/askcampus/internal/core/ports"
	"github.com/askcampus/askcampus/internal/observability/metrics"
)

const serviceName = "api"

type RouterConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
	MaxWait        time.Duration
	MaxUploadBytes int64
}

func (c RouterConfig) normalize() RouterConfig {
	out := c
	if out.MaxWait <= 0 {
		out.MaxWait = 2 * time.Second
	}
	if out.MaxUploadBytes <= 0 {
		out.MaxUploadBytes = 20 << 20
	}
	return out
}

// HealthStatus is what the health probe reports. Err marks the service
// degraded; the generator flag is informational, a tripped model breaker
// still leaves uploads and cached answers working.
type HealthStatus struct {
	Err                  error
	IndexedChunks        int
	GeneratorUnavailable bool
}

type Router struct {
	cfg     RouterConfig
	query   ports.QueryService
	ingest  ports.DocumentIngestor
	docs    ports.DocumentReader
	health  func() HealthStatus
	metrics *metrics.HTTPServerMetrics
	logger  *slog.Logger
}

func NewRouter(
	cfg RouterConfig,
	query ports.QueryService,
	ingest ports.DocumentIngestor,
	docs ports.DocumentReader,
	health func() HealthStatus,
	m *metrics.HTTPServerMetrics,
	logger *slog.Logger,
) *Router {
	return &Router{
		cfg:     cfg.normalize(),
		query:   query,
		ingest:  ingest,
		docs:    docs,
		health:  health,
		metrics: m,
		logger:  logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/metrics", rt.metrics.Handler())
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	mux.HandleFunc("/v1/qa/query", rt.answerQuestion)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.MaxInFlight, rt.cfg.MaxWait)
	handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	handler = rt.metrics.Middleware(serviceName, handler)
	handler = accessLogMiddleware(rt.logger, handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	var st HealthStatus
	if rt.health != nil {
		st = rt.health()
	}
	generator := "ok"
	if st.GeneratorUnavailable {
		generator = "unavailable"
	}
	body := map[string]any{
		"status":         "ok",
		"indexed_chunks": st.IndexedChunks,
		"generator":      generator,
	}
	if st.Err != nil {
		body["status"] = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (rt *Router) answerQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
		TopK     int    `json:"top_k"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	started := time.Now()
	answer, err := rt.query.Answer(r.Context(), req.Question, req.TopK)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	rt.metrics.RecordQA(serviceName, answer.Grounded, len(answer.Sources), time.Since(started))
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		rt.logger.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err)
	}
	writeJSON(w, status, map[string]string{"error": clientMessage(err, status)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
