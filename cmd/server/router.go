package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/classifier"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/models"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/pipeline"
)

type extractReq struct {
	Location string `json:"location"`
}

type detailReq struct {
	URL string `json:"url"`
}

type extractResp struct {
	RunID    string           `json:"runId"`
	Location string           `json:"location,omitempty"`
	Records  []models.Record  `json:"records"`
	Failures []models.Failure `json:"failures"`
	Labels   map[string]int   `json:"labels"`
}

type detailResp struct {
	RunID   string                `json:"runId"`
	URL     string                `json:"url"`
	Record  models.Record         `json:"record"`
	Class   models.Classification `json:"class"`
	Missing []string              `json:"missing"`
}

// collector is the part of the pipeline the handlers call.
type collector interface {
	Collect(ctx context.Context, location string) (*pipeline.Result, error)
	CollectLinks(ctx context.Context, links []string) (*pipeline.Result, error)
}

func newRouter(p collector, defaultLocation string) http.Handler {
	cl := classifier.New()
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logRequest)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// POST /extract {"location": "unterschleissheim"}
	r.Post("/extract", func(w http.ResponseWriter, r *http.Request) {
		var req extractReq
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
				return
			}
		}
		if req.Location == "" {
			req.Location = defaultLocation
		}

		res, err := p.Collect(r.Context(), req.Location)
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		failures := res.Failures
		if failures == nil {
			failures = []models.Failure{}
		}
		writeJSON(w, http.StatusOK, extractResp{
			RunID:    res.RunID,
			Location: res.Location,
			Records:  res.Records,
			Failures: failures,
			Labels:   res.Labels,
		})
	})

	// POST /extract/detail {"url": "https://..."}
	r.Post("/extract/detail", func(w http.ResponseWriter, r *http.Request) {
		var req detailReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		res, err := p.CollectLinks(ctx, []string{req.URL})
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		if len(res.Records) == 0 {
			status := http.StatusUnprocessableEntity
			msg := "no record extracted"
			if len(res.Failures) > 0 {
				msg = res.Failures[0].Error
				if res.Failures[0].Stage == pipeline.StageDetail {
					status = http.StatusBadGateway
				}
			}
			writeJSON(w, status, map[string]string{"error": msg})
			return
		}
		rec := res.Records[0]
		missing := classifier.MissingFields(rec)
		if missing == nil {
			missing = []string{}
		}
		writeJSON(w, http.StatusOK, detailResp{
			RunID:   res.RunID,
			URL:     req.URL,
			Record:  rec,
			Class:   cl.Classify(rec),
			Missing: missing,
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
