package server

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/prose-humanizer/internal/db"
	"github.com/jonathan/prose-humanizer/internal/ingestion"
	"github.com/jonathan/prose-humanizer/internal/langdata"
	"github.com/jonathan/prose-humanizer/internal/pipeline"
	"github.com/jonathan/prose-humanizer/internal/types"
)

// CacheHeader reports whether a seeded transform was served from storage
const CacheHeader = "X-Cache"

// BatchResponse is the response of POST /transform/batch
type BatchResponse struct {
	Results []types.PipelineResult `json:"results"`
}

// ProfilesResponse is the response of GET /profiles
type ProfilesResponse struct {
	Profiles  []langdata.Profile `json:"profiles"`
	Languages []string           `json:"languages"`
}

// RunsResponse is the response of GET /runs
type RunsResponse struct {
	Runs []db.RunSummary `json:"runs"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"storage": s.store != nil,
	})
}

// handleProfiles lists the style profiles and the deep language packs
func (s *Server) handleProfiles(w http.ResponseWriter, _ *http.Request) {
	registry := s.pipeline.Registry()
	s.jsonResponse(w, http.StatusOK, ProfilesResponse{
		Profiles:  registry.Profiles(),
		Languages: registry.Languages(),
	})
}

// handleTransform runs the pipeline on one document
func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.errorFrom(w, err)
		return
	}

	text, err := s.inputText(r.Context(), req.Text, req.URL, req.UseBrowser)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	cfg := req.pipelineConfig(s.defaults)
	chunkSize := 0
	if req.ChunkSize > 0 && len(text) > req.ChunkSize {
		chunkSize = req.ChunkSize
	}

	if cached := s.cachedResult(r.Context(), text, cfg, chunkSize); cached != nil {
		w.Header().Set(CacheHeader, "hit")
		s.jsonResponse(w, http.StatusOK, cached)
		return
	}

	var result types.PipelineResult
	if chunkSize > 0 {
		result, err = s.runner.TransformChunked(r.Context(), text, chunkSize, cfg)
		if err != nil {
			s.errorFrom(w, err)
			return
		}
	} else {
		result = s.pipeline.Transform(text, cfg)
	}

	s.saveRun(r.Context(), text, cfg, &result)
	w.Header().Set(CacheHeader, "miss")
	s.jsonResponse(w, http.StatusOK, result)
}

// handleTransformBatch runs the pipeline on many documents in parallel
func (s *Server) handleTransformBatch(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.errorFrom(w, err)
		return
	}
	if len(req.Texts) == 0 {
		s.errorFrom(w, &ErrValidation{Field: "texts", Message: "at least one text is required"})
		return
	}

	cfg := req.pipelineConfig(s.defaults)
	results, err := s.runner.TransformBatch(r.Context(), req.Texts, cfg)
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	for i := range results {
		s.saveRun(r.Context(), req.Texts[i], cfg.WithSeed(results[i].Seed), &results[i])
	}
	s.jsonResponse(w, http.StatusOK, BatchResponse{Results: results})
}

// handleTransformStream runs the pipeline and streams state transitions via SSE
func (s *Server) handleTransformStream(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.errorFrom(w, err)
		return
	}
	text, err := s.inputText(r.Context(), req.Text, req.URL, req.UseBrowser)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	cfg := req.pipelineConfig(s.defaults)

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := s.pipeline.TransformWithProgress(text, cfg, func(event pipeline.ProgressEvent) {
		if r.Context().Err() != nil {
			return
		}
		if err := sse.WriteEvent(EventProgress, event); err != nil {
			log.Printf("[server] error writing SSE event: %v", err)
		}
	})
	if r.Context().Err() != nil {
		return
	}

	s.saveRun(r.Context(), text, cfg, &result)
	if err := sse.WriteEvent(EventResult, result); err != nil {
		log.Printf("[server] error writing SSE result: %v", err)
		return
	}
	status := "completed"
	if result.RolledBack {
		status = "rolled_back"
	}
	sse.WriteComplete(result.RunID, status)
}

// handleDetect scores a text for machine-generation markers
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.errorFrom(w, err)
		return
	}
	text, err := s.inputText(r.Context(), req.Text, req.URL, false)
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	detection := s.pipeline.Detect(text, req.Language)
	if s.store != nil {
		if _, err := s.store.SaveDetection(r.Context(), text, detection); err != nil {
			log.Printf("[server] failed to save detection: %v", err)
		}
	}
	s.jsonResponse(w, http.StatusOK, detection)
}

// handleListRuns lists stored runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorFrom(w, &ErrStorageDisabled{})
		return
	}

	filters := db.RunFilters{
		Language: r.URL.Query().Get("language"),
		Profile:  r.URL.Query().Get("profile"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 500 {
			s.errorFrom(w, &ErrValidation{Field: "limit", Message: "must be an integer between 1 and 500"})
			return
		}
		filters.Limit = limit
	}

	runs, err := s.store.ListRuns(r.Context(), filters)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, RunsResponse{Runs: runs})
}

// handleGetRun returns one stored run
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorFrom(w, &ErrStorageDisabled{})
		return
	}

	idStr := r.PathValue("id")
	runID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorFrom(w, &ErrValidation{Field: "id", Message: "invalid run ID format"})
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	if run == nil {
		s.errorFrom(w, &ErrNotFound{Resource: "run", ID: idStr})
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

// inputText returns the inline text, or fetches and extracts the page at urlStr.
func (s *Server) inputText(ctx context.Context, text, urlStr string, useBrowser bool) (string, error) {
	if urlStr != "" {
		if text != "" {
			return "", &ErrValidation{Field: "text", Message: "text and url are mutually exclusive"}
		}
		fetched, _, err := ingestion.IngestFromURL(ctx, urlStr, useBrowser, s.verbose)
		return fetched, err
	}
	if strings.TrimSpace(text) == "" {
		return "", &ErrValidation{Field: "text", Message: "text or url is required"}
	}
	return text, nil
}

// cachedResult returns the stored result of an identical seeded run, if any. chunkSize is 0 for a
// whole-document run.
func (s *Server) cachedResult(ctx context.Context, text string, cfg types.PipelineConfig, chunkSize int) *types.PipelineResult {
	if s.store == nil {
		return nil
	}
	digest, ok := db.Digest(text, cfg, chunkSize)
	if !ok {
		return nil
	}
	run, err := s.store.FindRunByDigest(ctx, digest)
	if err != nil {
		log.Printf("[server] cache lookup failed: %v", err)
		return nil
	}
	if run == nil {
		return nil
	}
	return run.Result
}

// saveRun stores a result when storage is configured. Storage failures never fail the request.
func (s *Server) saveRun(ctx context.Context, text string, cfg types.PipelineConfig, result *types.PipelineResult) {
	if s.store == nil {
		return
	}
	if _, err := s.store.SaveRun(ctx, text, cfg, result); err != nil {
		log.Printf("[server] failed to save run %s: %v", result.RunID, err)
	}
}
