// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"siteprompt-go-crawler/internal/analyzer"
	"siteprompt-go-crawler/internal/crawler"
	"siteprompt-go-crawler/internal/imagegen"
	"siteprompt-go-crawler/internal/models"
	"siteprompt-go-crawler/internal/ratelimit"
	"siteprompt-go-crawler/pkg/logger"
)

const (
	DefaultAnalysisTimeout = 90 * time.Second
	defaultHeartbeat       = 15 * time.Second
	maxRequestBody         = 1 << 20
)

// SiteAnalyzer is the pipeline the handlers drive.
type SiteAnalyzer interface {
	AnalyzeSite(ctx context.Context, rawURL string, opts analyzer.Options) (*models.SitePromptResult, error)
	AnalyzeURL(ctx context.Context, rawURL string) (*models.SitePromptResult, error)
}

type Deps struct {
	Analyzer SiteAnalyzer
	// Generator and Limiter are optional.
	Generator imagegen.Generator
	Limiter   *ratelimit.Limiter
	Logger    *logger.Logger
}

type Options struct {
	AnalysisTimeout time.Duration
	Heartbeat       time.Duration
}

// Server routes HTTP requests to the analyzer.
type Server struct {
	analyzer  SiteAnalyzer
	generator imagegen.Generator
	limiter   *ratelimit.Limiter
	log       *logger.Logger
	opts      Options
	mux       *http.ServeMux
	handler   http.Handler
}

func NewServer(d Deps, opts Options) *Server {
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = DefaultAnalysisTimeout
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = defaultHeartbeat
	}
	log := d.Logger
	if log == nil {
		log = logger.NewNop()
	}
	s := &Server{
		analyzer:  d.Analyzer,
		generator: d.Generator,
		limiter:   d.Limiter,
		log:       log,
		opts:      opts,
		mux:       http.NewServeMux(),
	}
	s.routes()
	s.handler = logRequest(log, s.mux)
	return s
}

// ServeHTTP satisfies the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/analyze-site", s.limited(s.handleAnalyzeSite))
	s.mux.HandleFunc("/analyze-site/stream", s.limited(s.handleAnalyzeStream))
	s.mux.HandleFunc("/analyze-url", s.limited(s.handleAnalyzeURL))
	s.mux.HandleFunc("/generate", s.limited(s.handleGenerate))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"generator": s.generator != nil,
		"timestamp": time.Now().UTC(),
	})
}

// limited rejects callers over their request budget before the handler runs.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil {
			if ok, retry := s.limiter.Allow(s.limiter.ClientKey(r)); !ok {
				secs := int(math.Ceil(retry.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeError(w, http.StatusTooManyRequests, CodeRateLimitExceeded, fmt.Sprintf("retry after %d seconds", secs))
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (AnalyzeRequest, bool) {
	var req AnalyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid payload: "+err.Error())
		return req, false
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "url is required")
		return req, false
	}
	if req.MaxPages < 0 {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "max_pages must not be negative")
		return req, false
	}
	return req, true
}

func (s *Server) handleAnalyzeSite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.AnalysisTimeout)
	defer cancel()

	res, err := s.analyzer.AnalyzeSite(ctx, req.URL, analyzer.Options{Detailed: req.Detailed, MaxPages: req.MaxPages})
	if err != nil {
		s.analysisError(w, req.URL, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(res))
}

func (s *Server) handleAnalyzeURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.AnalysisTimeout)
	defer cancel()

	res, err := s.analyzer.AnalyzeURL(ctx, req.URL)
	if err != nil {
		s.analysisError(w, req.URL, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(res))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if s.generator == nil {
		writeError(w, http.StatusServiceUnavailable, CodeGeneratorUnavailable, imagegen.ErrNotConfigured.Error())
		return
	}
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.AnalysisTimeout)
	defer cancel()

	res, err := s.analyzer.AnalyzeSite(ctx, req.URL, analyzer.Options{Detailed: req.Detailed, MaxPages: req.MaxPages})
	if err != nil {
		s.analysisError(w, req.URL, err)
		return
	}
	img, err := s.generator.Generate(ctx, res.PromptText, res.Context())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusGatewayTimeout, CodeTimeout, err.Error())
			return
		}
		s.log.Errorf("image generation for %s failed: %v", req.URL, err)
		writeError(w, http.StatusBadGateway, CodeGenerationFailed, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse{
		AnalyzeResponse: toResponse(res),
		ImageBase64:     base64.StdEncoding.EncodeToString(img.Data),
		MIMEType:        img.MIMEType,
		Cost:            img.Cost,
		RevisedPrompt:   img.RevisedPrompt,
	})
}

// handleAnalyzeStream runs an analysis and reports crawl progress as
// server-sent events, ending with a result or error event.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	q := r.URL.Query()
	target := strings.TrimSpace(q.Get("url"))
	if target == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "url query parameter is required")
		return
	}
	maxPages := 0
	if v := q.Get("max_pages"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, CodeInvalidRequest, "max_pages must be a non-negative integer")
			return
		}
		maxPages = n
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, CodeInternal, "streaming unsupported")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.AnalysisTimeout)
	defer cancel()

	events := make(chan crawler.Event, 16)
	type outcome struct {
		res *models.SitePromptResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := s.analyzer.AnalyzeSite(ctx, target, analyzer.Options{
			Detailed: q.Get("detailed") == "true",
			MaxPages: maxPages,
			Events: func(ev crawler.Event) {
				select {
				case events <- ev:
				case <-ctx.Done():
				}
			},
		})
		done <- outcome{res: res, err: err}
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(s.opts.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case ev := <-events:
			writeEvent(w, "progress", ev)
			flusher.Flush()
		case out := <-done:
			// drain progress emitted before completion
			for drained := false; !drained; {
				select {
				case ev := <-events:
					writeEvent(w, "progress", ev)
				default:
					drained = true
				}
			}
			if out.err != nil {
				status, code := classifyError(out.err)
				s.logAnalysisError(target, status, out.err)
				writeEvent(w, "error", ErrorResponse{Error: code, Details: out.err.Error()})
			} else {
				writeEvent(w, "result", toResponse(out.res))
			}
			flusher.Flush()
			return
		case <-heartbeat.C:
			fmt.Fprint(w, "event: heartbeat\ndata: {}\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\n", name)
	fmt.Fprintf(w, "data: %s\n\n", payload)
}

// classifyError maps pipeline errors to an HTTP status and error code.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, crawler.ErrInvalidSeed):
		return http.StatusBadRequest, CodeInvalidURL
	case errors.Is(err, crawler.ErrAllPagesFailed):
		return http.StatusUnprocessableEntity, CodeAllPagesFailed
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, CodeTimeout
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func (s *Server) analysisError(w http.ResponseWriter, target string, err error) {
	status, code := classifyError(err)
	s.logAnalysisError(target, status, err)
	writeError(w, status, code, err.Error())
}

func (s *Server) logAnalysisError(target string, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Errorf("analysis of %s failed: %v", target, err)
		return
	}
	s.log.Warnf("analysis of %s failed: %v", target, err)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, details string) {
	writeJSON(w, code, ErrorResponse{Success: false, Error: errCode, Details: details})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, r.Method+" not allowed")
}
