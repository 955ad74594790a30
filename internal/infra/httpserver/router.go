package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/burakseven/returns-ai/internal/application/analysis"
	domain "github.com/burakseven/returns-ai/internal/domain/analysis"
	"github.com/burakseven/returns-ai/internal/middleware"
)

type Router struct {
	svc *appanalysis.Service
}

// Options for the HTTP surface; zero values get sensible defaults.
type Options struct {
	AllowedOrigins   []string
	GeneralPerMinute int
	AnalyzePerMinute int
	HealthCheckers   map[string]middleware.HealthChecker
}

func NewRouter(svc *appanalysis.Service, opts Options) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	if opts.GeneralPerMinute <= 0 {
		opts.GeneralPerMinute = 100
	}
	if opts.AnalyzePerMinute <= 0 {
		opts.AnalyzePerMinute = 10
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.SecurityHeaders)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/api", func(rt chi.Router) {
		rt.Use(middleware.RateLimitMiddleware(opts.GeneralPerMinute))

		rt.With(middleware.RateLimitMiddleware(opts.AnalyzePerMinute)).
			Post("/analyze-shoe", r.wrap(r.handleAnalyze))
		rt.Get("/analysis/{id}", r.wrap(r.handleGet))
		rt.Get("/recent-analyses", r.wrap(r.handleRecent))
		rt.Get("/daily-stats", r.wrap(r.handleDailyStats))
		rt.Post("/approve-analysis/{id}", r.wrap(r.handleApprove))
		rt.Post("/manual-edit/{id}", r.wrap(r.handleManualEdit))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks caller faults so wrap can answer 400 instead of 500.
type badRequest struct{ err error }

func (b badRequest) Error() string { return b.err.Error() }
func (b badRequest) Unwrap() error { return b.err }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var br badRequest
		switch {
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, sql.ErrNoRows):
			writeError(w, http.StatusNotFound, "analysis not found")
		case errors.Is(err, domain.ErrInvalidCategory):
			writeError(w, http.StatusBadRequest, "invalid override value")
		case errors.As(err, &br):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// analyzeResponse mirrors the original API: record id + full result + createdAt.
type analyzeResponse struct {
	ID domain.AnalysisID `json:"id"`
	domain.Result
	CreatedAt time.Time `json:"createdAt"`
}

// POST /api/analyze-shoe
// multipart form: "image" (jpeg/png/webp, max 5MB) + optional "customerNotes"
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, middleware.MaxUploadBytes+1024*1024)
	if err := req.ParseMultipartForm(middleware.MaxUploadBytes); err != nil {
		return badRequest{fmt.Errorf("parsing upload: %w", err)}
	}

	file, header, err := req.FormFile("image")
	if err != nil {
		return badRequest{fmt.Errorf("no image file provided")}
	}
	defer file.Close()

	if err := middleware.ValidateImageUpload(header.Filename, header.Header.Get("Content-Type")); err != nil {
		return badRequest{err}
	}

	data, err := io.ReadAll(io.LimitReader(file, middleware.MaxUploadBytes+1))
	if err != nil {
		return fmt.Errorf("reading upload: %w", err)
	}
	if err := middleware.ValidateImageBytes(data); err != nil {
		return badRequest{err}
	}

	notes := middleware.SanitizeNotes(req.FormValue("customerNotes"))
	if len([]rune(notes)) > middleware.MaxNotesLength {
		return badRequest{fmt.Errorf("customer notes too long, maximum %d characters allowed", middleware.MaxNotesLength)}
	}

	a, err := r.svc.Analyze(req.Context(), appanalysis.AnalyzeCommand{
		Image:            data,
		ContentType:      header.Header.Get("Content-Type"),
		OriginalFilename: header.Filename,
		CustomerNotes:    notes,
	})
	if err != nil {
		return err
	}

	return writeJSON(w, analyzeResponse{ID: a.ID, Result: a.Result, CreatedAt: a.CreatedAt})
}

// GET /api/analysis/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return badRequest{err}
	}

	a, err := r.svc.Get(req.Context(), domain.AnalysisID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, a)
}

// GET /api/recent-analyses?limit=10
func (r *Router) handleRecent(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	list, err := r.svc.Recent(req.Context(), limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Analysis{}
	}
	return writeJSON(w, list)
}

// GET /api/daily-stats?date=YYYY-MM-DD (defaults to today)
func (r *Router) handleDailyStats(w http.ResponseWriter, req *http.Request) error {
	date := r.svc.Clock.Now().UTC()
	if param := req.URL.Query().Get("date"); param != "" {
		if !middleware.ValidDateParam(param) {
			return badRequest{fmt.Errorf("invalid date format, expected YYYY-MM-DD")}
		}
		parsed, err := time.Parse("2006-01-02", param)
		if err != nil {
			return badRequest{fmt.Errorf("invalid date: %w", err)}
		}
		date = parsed
	}

	stats, err := r.svc.DailyStats(req.Context(), date)
	if err != nil {
		return err
	}
	return writeJSON(w, stats)
}

// POST /api/approve-analysis/{id}
// Body: {"manualOverride": "<category>"} (optional)
func (r *Router) handleApprove(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return badRequest{err}
	}

	var body struct {
		ManualOverride string `json:"manualOverride"`
	}
	if req.Body != nil && req.ContentLength != 0 {
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return badRequest{fmt.Errorf("decoding body: %w", err)}
		}
	}

	if err := r.svc.Approve(req.Context(), domain.AnalysisID(id), body.ManualOverride); err != nil {
		return err
	}
	return writeJSON(w, map[string]bool{"success": true})
}

// POST /api/manual-edit/{id}
// Body: {"manualOverride": "<category>", "userNotes": "<text>"}
func (r *Router) handleManualEdit(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return badRequest{err}
	}

	var body struct {
		ManualOverride string `json:"manualOverride"`
		UserNotes      string `json:"userNotes"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{fmt.Errorf("decoding body: %w", err)}
	}

	notes := middleware.SanitizeNotes(body.UserNotes)
	if len([]rune(notes)) > middleware.MaxNotesLength {
		return badRequest{fmt.Errorf("user notes too long, maximum %d characters allowed", middleware.MaxNotesLength)}
	}

	if err := r.svc.ManualEdit(req.Context(), domain.AnalysisID(id), body.ManualOverride, notes); err != nil {
		return err
	}
	return writeJSON(w, map[string]bool{"success": true})
}
