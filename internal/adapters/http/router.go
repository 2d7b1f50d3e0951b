// Package httpadapter is the guardian's HTTP front door: policy upload and
// retraction for administrators, and the prompt-testing endpoint that runs a
// primary-assistant response through the safety evaluation.
package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/guardianai/guardianai/internal/core/domain"
	"github.com/guardianai/guardianai/internal/core/ports"
	"github.com/guardianai/guardianai/internal/infrastructure/extractor"
	"github.com/guardianai/guardianai/internal/observability/metrics"
)

const serviceName = "guardian-api"

// assistantUnavailableMessage is returned when the primary LLM cannot be
// reached; the guardian still evaluates it for a consistent response shape.
const assistantUnavailableMessage = "I am unable to answer this question at the moment."

type RouterConfig struct {
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxConcurrent    int
	MaxUploadBytes   int64
	BackpressureWait time.Duration
}

type Router struct {
	ingestUC  ports.PolicyIngestor
	retractUC ports.PolicyRetractor
	assistant ports.Assistant
	evalBack  ports.EvaluationBackend
	metrics   *metrics.HTTPServerMetrics
	logger    *slog.Logger
	cfg       RouterConfig
}

func NewRouter(
	ingestUC ports.PolicyIngestor,
	retractUC ports.PolicyRetractor,
	assistant ports.Assistant,
	evalBack ports.EvaluationBackend,
	httpMetrics *metrics.HTTPServerMetrics,
	logger *slog.Logger,
	cfg RouterConfig,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	return &Router{
		ingestUC:  ingestUC,
		retractUC: retractUC,
		assistant: assistant,
		evalBack:  evalBack,
		metrics:   httpMetrics,
		logger:    logger,
		cfg:       cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/upload-policy", rt.uploadPolicy)
	mux.HandleFunc("/delete-policy/", rt.deletePolicy)
	mux.HandleFunc("/prompt-testing", rt.promptTesting)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.cfg.MaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.MaxConcurrent, rt.cfg.BackpressureWait)
	}
	if rt.cfg.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadPolicy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	if fileHeader.Filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no selected file"})
		return
	}
	if !extractor.IsSupported(fileHeader.Filename) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file type not allowed"})
		return
	}

	meta := domain.PolicyMetadata{
		Name:        formValueDefault(r, "name", "Unnamed Policy"),
		Description: r.FormValue("description"),
		Keywords:    r.FormValue("keywords"),
		Severity:    formValueDefault(r, "severity", domain.SeverityMedium),
	}
	if err := meta.Validate(); err != nil {
		writeError(w, err)
		return
	}

	policy, err := rt.ingestUC.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		meta,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "Policy uploaded successfully",
		"id":      policy.ID,
		"status":  string(policy.Status),
	})
}

func (rt *Router) deletePolicy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/delete-policy/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "policy id is required"})
		return
	}

	if err := rt.retractUC.Retract(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Policy deleted successfully"})
}

func (rt *Router) promptTesting(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prompt not provided"})
		return
	}

	llmResponse := assistantUnavailableMessage
	if rt.assistant != nil {
		response, err := rt.assistant.Respond(r.Context(), req.Prompt)
		if err != nil {
			rt.logger.Error("primary assistant failed", "error", err)
		} else {
			llmResponse = response
		}
	}

	start := time.Now()
	report, err := rt.evalBack.Evaluate(r.Context(), llmResponse)
	if err != nil {
		rt.logger.Error("guardian evaluation failed; applying fail-safe verdict", "error", err)
		if rt.metrics != nil {
			rt.metrics.RecordFailSafe(serviceName)
		}
	}
	report = domain.FailSafeReport(report, err)
	if rt.metrics != nil {
		rt.metrics.RecordEvaluation(serviceName, string(report.SafetyLevel), report.ContextCount, report.Degraded, time.Since(start))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"llm_response":        llmResponse,
		"guardian_evaluation": report,
	})
}

func formValueDefault(r *http.Request, key, fallback string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
