package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appai "github.com/bryanwahyu/semantic-guard/internal/application/ai"
	appanalyses "github.com/bryanwahyu/semantic-guard/internal/application/analyses"
	domai "github.com/bryanwahyu/semantic-guard/internal/domain/ai"
	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
	"github.com/bryanwahyu/semantic-guard/internal/middleware"
)

const defaultRecentLimit = 20

// Options configures the router's middleware stack.
type Options struct {
	// APIKeys maps account -> key. Empty falls back to X-Account-ID identity.
	APIKeys map[string]string
	// RateLimitCapacity <= 0 disables rate limiting.
	RateLimitCapacity int
	RateLimitRefill   int
	AllowedOrigins    []string
	// Backend is reported by /v1/status.
	Backend  string
	Checkers map[string]middleware.HealthChecker
	Logger   *zap.Logger
}

type Router struct {
	svc     *appanalyses.Service
	aiSvc   *appai.Service
	backend string
	logger  *zap.Logger
}

func NewRouter(svc *appanalyses.Service, aiSvc *appai.Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{svc: svc, aiSvc: aiSvc, backend: opts.Backend, logger: logger}
	mux := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.AccountHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	mux.Use(middleware.Logging(logger))
	mux.Use(middleware.Metrics)
	if len(opts.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	} else {
		mux.Use(middleware.HeaderIdentity)
	}
	if opts.RateLimitCapacity > 0 {
		mux.Use(middleware.RateLimitMiddleware(opts.RateLimitCapacity, opts.RateLimitRefill))
	}

	checkers := opts.Checkers
	if checkers == nil {
		checkers = map[string]middleware.HealthChecker{}
	}
	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler)
	mux.Handle("/metrics", middleware.MetricsHandler())

	mux.Route("/v1", func(rt chi.Router) {
		rt.Get("/health-check", r.wrap(r.handleHealthCheck))
		rt.Post("/analyses", r.wrap(r.handleSubmit))
		rt.Get("/analyses", r.wrap(r.handleAll))
		rt.Get("/analyses/recent", r.wrap(r.handleRecent))
		rt.Get("/analyses/high-risk", r.wrap(r.handleHighRisk))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Post("/analyses/{id}/explain", r.wrap(r.handleExplain))
		rt.Post("/demo", r.wrap(r.handleSubmitDemo))
		rt.Get("/stats", r.wrap(r.handleStats))
		rt.Get("/stats/total", r.wrap(r.handleTotal))
		rt.Get("/status", r.wrap(r.handleStatus))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks caller errors
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func errBadRequest(format string, args ...any) error {
	return badRequest{msg: fmt.Sprintf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var br badRequest
		switch {
		case errors.As(err, &br):
			http.Error(w, br.msg, http.StatusBadRequest)
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, domai.ErrQuotaExceeded):
			http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
		case errors.Is(err, domai.ErrDisabled):
			http.Error(w, "ai explanations are not configured", http.StatusServiceUnavailable)
		default:
			r.logger.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func decodeBody(req *http.Request, v any) error {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return errBadRequest("invalid JSON body: %v", err)
	}
	return nil
}

// pathID reads {id}. chi matches on the escaped path when one exists, so
// %2F and %20 in demo keys arrive still encoded.
func pathID(req *http.Request) (domain.AnalysisID, error) {
	id := chi.URLParam(req, "id")
	if req.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(id)
		if err != nil {
			return "", errBadRequest("invalid analysis ID escape: %v", err)
		}
		id = unescaped
	}
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return "", errBadRequest("%v", err)
	}
	return domain.AnalysisID(id), nil
}

// GET /v1/health-check
func (r *Router) handleHealthCheck(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, r.svc.HealthCheck())
}

// POST /v1/analyses
// Body: {"query": "...", "results": [...], "semantic_analysis": {...}, "metadata": {...}, "attached_deposit": "0"}
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Query            string                        `json:"query"`
		Results          []domain.SearchResult         `json:"results"`
		SemanticAnalysis domain.SemanticAnalysisResult `json:"semantic_analysis"`
		Metadata         domain.AnalysisMetadata       `json:"metadata"`
		AttachedDeposit  string                        `json:"attached_deposit"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	id, err := r.svc.Submit(req.Context(), appanalyses.SubmitCommand{
		Submitter:       middleware.GetAccountFromContext(req.Context()),
		Query:           body.Query,
		Results:         body.Results,
		Analysis:        body.SemanticAnalysis,
		Metadata:        body.Metadata,
		AttachedDeposit: body.AttachedDeposit,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// GET /v1/analyses
func (r *Router) handleAll(w http.ResponseWriter, req *http.Request) error {
	list, err := r.svc.All(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/analyses/recent?limit=20
func (r *Router) handleRecent(w http.ResponseWriter, req *http.Request) error {
	limit, err := middleware.ParseLimit(req.URL.Query().Get("limit"), defaultRecentLimit)
	if err != nil {
		return errBadRequest("%v", err)
	}
	list, err := r.svc.Recent(req.Context(), limit)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/analyses/high-risk?severity=High
func (r *Router) handleHighRisk(w http.ResponseWriter, req *http.Request) error {
	sev, err := domain.ParseSeverity(req.URL.Query().Get("severity"))
	if err != nil {
		return errBadRequest("%v", err)
	}
	list, err := r.svc.HighRisk(req.Context(), sev)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	rec, err := r.svc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}

// POST /v1/analyses/{id}/explain
func (r *Router) handleExplain(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	exp, err := r.aiSvc.Explain(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, exp)
}

// POST /v1/demo
// Body: {"prefix": "semantic_guard", "identifier": "demo_test", "analysis_data": "{}"}
func (r *Router) handleSubmitDemo(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Prefix       string `json:"prefix"`
		Identifier   string `json:"identifier"`
		AnalysisData string `json:"analysis_data"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}
	key, err := r.svc.SubmitDemo(req.Context(), appanalyses.DemoCommand{
		Submitter: middleware.GetAccountFromContext(req.Context()),
		Prefix:    body.Prefix,
		Seed:      body.Identifier,
		Payload:   body.AnalysisData,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, map[string]any{"storage_key": key})
}

// GET /v1/stats
func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) error {
	meta, err := r.svc.Stats(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, meta)
}

// GET /v1/stats/total
func (r *Router) handleTotal(w http.ResponseWriter, req *http.Request) error {
	total, err := r.svc.Total(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, total)
}

// GET /v1/status
func (r *Router) handleStatus(w http.ResponseWriter, req *http.Request) error {
	meta, err := r.svc.Stats(req.Context())
	if err != nil {
		return err
	}
	size, err := r.svc.Size(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"healthy":        r.svc.HealthCheck(),
		"backend":        r.backend,
		"metadata":       meta,
		"stored_records": size,
		"ai_enabled":     r.aiSvc.Enabled(),
	})
}
