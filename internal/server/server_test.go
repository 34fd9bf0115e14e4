package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prose-humanizer/internal/db"
	"github.com/jonathan/prose-humanizer/internal/server/middleware"
	"github.com/jonathan/prose-humanizer/internal/server/ratelimit"
	"github.com/jonathan/prose-humanizer/internal/types"
)

const sampleText = "Furthermore, it is important to note that the system works. " +
	"Moreover, the results are significant. In conclusion, we are done."

// mockStore implements Store in memory
type mockStore struct {
	mu         sync.Mutex
	runs       map[uuid.UUID]*db.Run
	digests    map[string]uuid.UUID
	detections int
	closed     bool
}

func newMockStore() *mockStore {
	return &mockStore{
		runs:    make(map[uuid.UUID]*db.Run),
		digests: make(map[string]uuid.UUID),
	}
}

func (m *mockStore) SaveRun(_ context.Context, input string, cfg types.PipelineConfig, result *types.PipelineResult) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, err := uuid.Parse(result.RunID)
	if err != nil {
		id = uuid.New()
	}
	stored := *result
	run := &db.Run{ID: id, Language: result.Language, Profile: result.Profile, InputText: input,
		OutputText: result.Text, Result: &stored, CreatedAt: time.Now()}
	if d, ok := db.Digest(input, cfg, result.ChunkSize); ok {
		run.Digest = d
		m.digests[d] = id
	}
	m.runs[id] = run
	return id, nil
}

func (m *mockStore) GetRun(_ context.Context, id uuid.UUID) (*db.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[id], nil
}

func (m *mockStore) ListRuns(_ context.Context, filters db.RunFilters) ([]db.RunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.RunSummary{}
	for _, r := range m.runs {
		if filters.Profile != "" && r.Profile != filters.Profile {
			continue
		}
		out = append(out, db.RunSummary{ID: r.ID, Language: r.Language, Profile: r.Profile, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (m *mockStore) FindRunByDigest(_ context.Context, digest string) (*db.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.digests[digest]
	if !ok {
		return nil, nil
	}
	return m.runs[id], nil
}

func (m *mockStore) SaveDetection(_ context.Context, _ string, _ types.Detection) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detections++
	return uuid.New(), nil
}

func (m *mockStore) Close() { m.closed = true }

// newTestServer creates a server with an optional in-memory store and no rate limiting
func newTestServer(store Store) (*Server, http.Handler) {
	s := newServer(store, Config{Concurrency: 2}, nil)
	return s, s.routes()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), "body: %s", w.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	_, h := newTestServer(nil)

	w := doRequest(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	decodeBody(t, w, &resp)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, false, resp["storage"])
}

func TestRequestIDHeader(t *testing.T) {
	_, h := newTestServer(nil)

	w := doRequest(t, h, http.MethodGet, "/health", "")
	_, err := uuid.Parse(w.Header().Get(middleware.RequestIDHeader))
	assert.NoError(t, err)
}

func TestCORSPreflight(t *testing.T) {
	_, h := newTestServer(nil)

	w := doRequest(t, h, http.MethodOptions, "/transform", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestProfilesEndpoint(t *testing.T) {
	_, h := newTestServer(nil)

	w := doRequest(t, h, http.MethodGet, "/profiles", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ProfilesResponse
	decodeBody(t, w, &resp)
	assert.Contains(t, resp.Languages, "en")
	assert.Contains(t, resp.Languages, "ru")

	names := make([]string, 0, len(resp.Profiles))
	for _, p := range resp.Profiles {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, "web")
	assert.Contains(t, names, "formal")
}

func TestTransformEndpoint(t *testing.T) {
	s, h := newTestServer(nil)

	w := doRequest(t, h, http.MethodPost, "/transform", `{"text": "`+sampleText+`", "seed": 42}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "miss", w.Header().Get(CacheHeader))

	var result types.PipelineResult
	decodeBody(t, w, &result)
	assert.NotEmpty(t, result.Text)
	assert.Equal(t, int64(42), result.Seed)
	assert.Equal(t, "en", result.Language)

	direct := s.pipeline.Transform(sampleText, types.DefaultConfig().WithSeed(42))
	assert.Equal(t, direct.Text, result.Text)
	assert.Equal(t, direct.Changes, result.Changes)
}

func TestTransformEndpoint_Overrides(t *testing.T) {
	_, h := newTestServer(nil)

	body := `{"text": "` + sampleText + `", "seed": 1, "profile": "formal", "intensity": 0, "keywords": ["system"]}`
	w := doRequest(t, h, http.MethodPost, "/transform", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result types.PipelineResult
	decodeBody(t, w, &result)
	assert.Equal(t, "formal", result.Profile)
	assert.Equal(t, 0, result.Intensity)
	assert.Contains(t, result.Text, "system")
}

func TestTransformEndpoint_Validation(t *testing.T) {
	_, h := newTestServer(nil)

	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{"text": `},
		{"missing text", `{}`},
		{"blank text", `{"text": "   "}`},
		{"intensity out of range", `{"text": "Hello.", "intensity": 150}`},
		{"intensity wrong type", `{"text": "Hello.", "intensity": "high"}`},
		{"max change ratio zero", `{"text": "Hello.", "max_change_ratio": 0}`},
		{"bad language", `{"text": "Hello.", "language": "english"}`},
		{"empty keyword", `{"text": "Hello.", "keywords": [""]}`},
		{"text and url", `{"text": "Hello.", "url": "https://example.com"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, h, http.MethodPost, "/transform", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var resp map[string]string
			decodeBody(t, w, &resp)
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestTransformEndpoint_URL(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, "<html><body><article><p>%s</p></article></body></html>", sampleText)
	}))
	defer page.Close()

	_, h := newTestServer(nil)
	w := doRequest(t, h, http.MethodPost, "/transform", `{"url": "`+page.URL+`", "seed": 3}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result types.PipelineResult
	decodeBody(t, w, &result)
	assert.NotEmpty(t, result.Text)
}

func TestTransformEndpoint_URLFailure(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer page.Close()

	_, h := newTestServer(nil)
	w := doRequest(t, h, http.MethodPost, "/transform", `{"url": "`+page.URL+`"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestTransformEndpoint_Chunked(t *testing.T) {
	_, h := newTestServer(nil)

	text := sampleText + "\n\n" + sampleText + "\n\n" + sampleText
	body, err := json.Marshal(map[string]any{"text": text, "seed": 9, "chunk_size": 200})
	require.NoError(t, err)

	w := doRequest(t, h, http.MethodPost, "/transform", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result types.PipelineResult
	decodeBody(t, w, &result)
	assert.Equal(t, 2, strings.Count(result.Text, "\n\n"))
}

func TestTransformEndpoint_Cache(t *testing.T) {
	store := newMockStore()
	_, h := newTestServer(store)

	body := `{"text": "` + sampleText + `", "seed": 7}`
	first := doRequest(t, h, http.MethodPost, "/transform", body)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "miss", first.Header().Get(CacheHeader))

	second := doRequest(t, h, http.MethodPost, "/transform", body)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "hit", second.Header().Get(CacheHeader))

	var r1, r2 types.PipelineResult
	decodeBody(t, first, &r1)
	decodeBody(t, second, &r2)
	assert.Equal(t, r1.RunID, r2.RunID)
	assert.Equal(t, r1.Text, r2.Text)
	assert.Len(t, store.runs, 1)
}

func TestTransformEndpoint_CacheSeparatesChunkedRuns(t *testing.T) {
	store := newMockStore()
	_, h := newTestServer(store)

	text := sampleText + "\n\n" + sampleText + "\n\n" + sampleText
	chunked, err := json.Marshal(map[string]any{"text": text, "seed": 9, "chunk_size": 200})
	require.NoError(t, err)
	whole, err := json.Marshal(map[string]any{"text": text, "seed": 9})
	require.NoError(t, err)

	w := doRequest(t, h, http.MethodPost, "/transform", string(chunked))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "miss", w.Header().Get(CacheHeader))
	var chunkedResult types.PipelineResult
	decodeBody(t, w, &chunkedResult)
	assert.Equal(t, 200, chunkedResult.ChunkSize)

	w = doRequest(t, h, http.MethodPost, "/transform", string(whole))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "miss", w.Header().Get(CacheHeader), "whole-document run must not reuse the chunked result")
	var wholeResult types.PipelineResult
	decodeBody(t, w, &wholeResult)
	assert.Zero(t, wholeResult.ChunkSize)
	assert.NotEqual(t, chunkedResult.RunID, wholeResult.RunID)

	w = doRequest(t, h, http.MethodPost, "/transform", string(chunked))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hit", w.Header().Get(CacheHeader))
	var again types.PipelineResult
	decodeBody(t, w, &again)
	assert.Equal(t, chunkedResult.RunID, again.RunID)

	assert.Len(t, store.runs, 2)
	assert.Len(t, store.digests, 2)
}

func TestTransformEndpoint_UnseededNotCached(t *testing.T) {
	store := newMockStore()
	_, h := newTestServer(store)

	body := `{"text": "` + sampleText + `"}`
	for i := 0; i < 2; i++ {
		w := doRequest(t, h, http.MethodPost, "/transform", body)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "miss", w.Header().Get(CacheHeader))
	}
	assert.Len(t, store.runs, 2)
	assert.Empty(t, store.digests)
}

func TestTransformBatchEndpoint(t *testing.T) {
	s, h := newTestServer(nil)

	texts := []string{sampleText, "Additionally, the plan is solid. It is worth noting that we agree.", "Short text."}
	body, err := json.Marshal(map[string]any{"texts": texts, "seed": 100})
	require.NoError(t, err)

	w := doRequest(t, h, http.MethodPost, "/transform/batch", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp BatchResponse
	decodeBody(t, w, &resp)
	require.Len(t, resp.Results, len(texts))
	for i, r := range resp.Results {
		seed := int64(100 + i)
		assert.Equal(t, seed, r.Seed)
		direct := s.pipeline.Transform(texts[i], types.DefaultConfig().WithSeed(seed))
		assert.Equal(t, direct.Text, r.Text, "document %d", i)
	}
}

func TestTransformBatchEndpoint_Validation(t *testing.T) {
	_, h := newTestServer(nil)

	w := doRequest(t, h, http.MethodPost, "/transform/batch", `{"texts": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	texts := make([]string, MaxBatchSize+1)
	for i := range texts {
		texts[i] = "Hello."
	}
	body, err := json.Marshal(map[string]any{"texts": texts})
	require.NoError(t, err)
	w = doRequest(t, h, http.MethodPost, "/transform/batch", string(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransformBatchEndpoint_SavesEveryRun(t *testing.T) {
	store := newMockStore()
	_, h := newTestServer(store)

	w := doRequest(t, h, http.MethodPost, "/transform/batch", `{"texts": ["One sentence here.", "Another one here."], "seed": 5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, store.runs, 2)
	assert.Len(t, store.digests, 2)
}

func TestTransformStreamEndpoint(t *testing.T) {
	_, h := newTestServer(nil)

	w := doRequest(t, h, http.MethodPost, "/transform/stream", `{"text": "`+sampleText+`", "seed": 42}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, "event: "+EventProgress)
	assert.Contains(t, body, `"state":"start"`)
	assert.Contains(t, body, `"state":"done"`)
	assert.Contains(t, body, "event: "+EventResult)
	assert.Contains(t, body, "event: "+EventComplete)
	assert.Less(t, strings.Index(body, "event: "+EventResult), strings.Index(body, "event: "+EventComplete))
}

func TestTransformStreamEndpoint_Validation(t *testing.T) {
	_, h := newTestServer(nil)

	w := doRequest(t, h, http.MethodPost, "/transform/stream", `{"intensity": 20}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestDetectEndpoint(t *testing.T) {
	store := newMockStore()
	_, h := newTestServer(store)

	w := doRequest(t, h, http.MethodPost, "/detect", `{"text": "`+sampleText+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var d types.Detection
	decodeBody(t, w, &d)
	assert.Equal(t, "en", d.Language)
	assert.Contains(t, []types.Verdict{types.VerdictHuman, types.VerdictMixed, types.VerdictAI}, d.Verdict)
	assert.GreaterOrEqual(t, d.Score, 0.0)
	assert.LessOrEqual(t, d.Score, 100.0)
	assert.Equal(t, 1, store.detections)
}

func TestDetectEndpoint_MissingText(t *testing.T) {
	_, h := newTestServer(nil)

	w := doRequest(t, h, http.MethodPost, "/detect", `{"language": "en"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunsEndpoints_NoStorage(t *testing.T) {
	_, h := newTestServer(nil)

	w := doRequest(t, h, http.MethodGet, "/runs", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doRequest(t, h, http.MethodGet, "/runs/"+uuid.New().String(), "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRunsEndpoints(t *testing.T) {
	store := newMockStore()
	_, h := newTestServer(store)

	w := doRequest(t, h, http.MethodPost, "/transform", `{"text": "`+sampleText+`", "seed": 11, "profile": "chat"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var result types.PipelineResult
	decodeBody(t, w, &result)

	w = doRequest(t, h, http.MethodGet, "/runs?profile=chat&limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list RunsResponse
	decodeBody(t, w, &list)
	require.Len(t, list.Runs, 1)
	assert.Equal(t, result.RunID, list.Runs[0].ID.String())

	w = doRequest(t, h, http.MethodGet, "/runs/"+result.RunID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var run db.Run
	decodeBody(t, w, &run)
	assert.Equal(t, sampleText, run.InputText)
	assert.Equal(t, result.Text, run.OutputText)
}

func TestRunsEndpoints_Errors(t *testing.T) {
	_, h := newTestServer(newMockStore())

	tests := []struct {
		name string
		path string
		want int
	}{
		{"invalid id", "/runs/not-a-uuid", http.StatusBadRequest},
		{"missing run", "/runs/" + uuid.New().String(), http.StatusNotFound},
		{"bad limit", "/runs?limit=abc", http.StatusBadRequest},
		{"limit too large", "/runs?limit=1000", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, h, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})
	s := newServer(nil, Config{}, limiter)
	defer s.Close()
	h := s.routes()

	first := doRequest(t, h, http.MethodGet, "/profiles", "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := doRequest(t, h, http.MethodGet, "/profiles", "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))

	// Health is never limited
	health := doRequest(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestServerClose(t *testing.T) {
	store := newMockStore()
	s := newServer(store, Config{}, ratelimit.NewLimiter(nil))
	s.Close()
	assert.True(t, store.closed)
}
