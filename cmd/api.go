package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/queencity-ops/leadgen-cli/internal/dm"
	"github.com/queencity-ops/leadgen-cli/internal/model"
	"github.com/queencity-ops/leadgen-cli/internal/scorer"
	"github.com/queencity-ops/leadgen-cli/internal/store"
)

// scrapeStarter is the slice of the pipeline the API uses.
type scrapeStarter interface {
	Start(ctx context.Context, sourceNames []string) (*model.ScrapeJob, error)
}

// apiServer exposes the pipeline over HTTP for dashboards and cron triggers.
// baseCtx outlives individual requests; background work launched from a
// handler runs on it so a finished request doesn't cancel the scrape.
type apiServer struct {
	store    store.Store
	pipeline scrapeStarter
	gen      *dm.Generator
	rules    scorer.Rules
	baseCtx  context.Context
}

func (a *apiServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", a.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/scrape", a.handleScrape)
		r.Get("/jobs/{id}", a.handleGetJob)
		r.Post("/score", a.handleScore)
		r.Get("/dm-scripts", a.handleDMScripts)
		r.Get("/score-stats", a.handleScoreStats)
	})
	return r
}

func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *apiServer) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sources []string `json:"sources"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	job, err := a.pipeline.Start(a.baseCtx, req.Sources)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (a *apiServer) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := a.store.GetJob(r.Context(), chi.URLParam(r, "id"))
	if eris.Is(err, store.ErrJobNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (a *apiServer) handleScore(w http.ResponseWriter, r *http.Request) {
	// Fire and forget; progress is visible through score-stats.
	go func() {
		if _, err := scorer.ScoreUnscored(a.baseCtx, a.store, a.rules); err != nil {
			zap.L().Error("api-triggered scoring failed", zap.Error(err))
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (a *apiServer) handleDMScripts(w http.ResponseWriter, r *http.Request) {
	minScore := queryInt(r, "min_score", 70)
	limit := queryInt(r, "limit", 25)

	leads, err := a.store.ListByMinScore(r.Context(), minScore, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing leads failed")
		return
	}

	scripts := make([]dm.Script, 0, len(leads))
	for _, lead := range leads {
		scripts = append(scripts, a.gen.Generate(lead))
	}
	writeJSON(w, http.StatusOK, scripts)
}

func (a *apiServer) handleScoreStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.store.ScoreStats(r.Context(), a.rules.HotThreshold, a.rules.WarmThreshold)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stats failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
