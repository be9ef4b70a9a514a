package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	alio "github.com/matzehuels/alluvial/pkg/io"
	"github.com/matzehuels/alluvial/pkg/observability"
	"github.com/matzehuels/alluvial/pkg/pipeline"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/override"
	"github.com/matzehuels/alluvial/pkg/store"
)

func sampleInput() *alio.Input {
	return &alio.Input{
		Title:  "Sample",
		Layers: []string{"Sources", "Outcomes"},
		Nodes: []alio.Node{
			{ID: "a", Value: 60, Layer: 0},
			{ID: "b", Value: 40, Layer: 0},
			{ID: "x", Value: 100, Layer: 1},
		},
		Links: []alio.Link{
			{Source: "a", Target: "x", Value: 60},
			{Source: "b", Target: "x", Value: 40},
		},
	}
}

func newTestServer(t *testing.T) (*Server, *pipeline.Runner) {
	t.Helper()
	runner := pipeline.NewRunner(store.NewRepository(store.NewMemoryStore()), nil)
	t.Cleanup(func() { _ = runner.Close() })
	return New(runner), runner
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLayout(t *testing.T) {
	s, runner := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/v1/layout", diagramRequest{Input: sampleInput()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc struct {
		Key   string `json:"key"`
		Title string `json:"title"`
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
		Links []json.RawMessage `json:"links"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Sample", doc.Title)
	assert.Len(t, doc.Nodes, 3)
	assert.Len(t, doc.Links, 2)

	want := runner.Overrides.Keyer().DiagramKey("Sample", []string{"a", "b", "x"})
	assert.Equal(t, want, doc.Key)
	assert.Equal(t, want, rec.Header().Get("X-Diagram-Key"))
	assert.Equal(t, "0", rec.Header().Get("X-Dropped-Items"))
}

func TestLayoutRules(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/layout", diagramRequest{Input: sampleInput(), Rules: "gap = 20\n"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/v1/layout", diagramRequest{Input: sampleInput(), Rules: "fill_factor = 7\n"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_RULES", decodeError(t, rec).Error)
}

func TestLayoutDroppedItems(t *testing.T) {
	s, _ := newTestServer(t)
	in := sampleInput()
	in.Links = append(in.Links, alio.Link{Source: "a", Target: "ghost", Value: 1})

	rec := do(t, s, http.MethodPost, "/v1/layout", diagramRequest{Input: in})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Dropped-Items"))
}

func TestLayoutErrors(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"malformed", "{", http.StatusBadRequest, "INVALID_INPUT"},
		{"no input", `{"options":{}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad size", diagramRequest{Input: sampleInput(), Options: pipeline.Options{Width: -5}}, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad key", diagramRequest{Input: sampleInput(), Options: pipeline.Options{DiagramKey: "../x"}}, http.StatusBadRequest, "INVALID_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/layout", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Error)
		})
	}
}

func TestRender(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/render", diagramRequest{Input: sampleInput()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))

	rec = do(t, s, http.MethodPost, "/v1/render?format=json", diagramRequest{Input: sampleInput()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.True(t, json.Valid(rec.Body.Bytes()))

	rec = do(t, s, http.MethodPost, "/v1/render?format=gif", diagramRequest{Input: sampleInput()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_FORMAT", decodeError(t, rec).Error)
}

func TestOverridesLifecycle(t *testing.T) {
	s, runner := newTestServer(t)
	key := "sample-diagram"

	rec := do(t, s, http.MethodGet, "/v1/diagrams/"+key+"/overrides", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got override.Set
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.IsZero())

	rec = do(t, s, http.MethodPut, "/v1/diagrams/"+key+"/overrides/offsets", `{"b":{"dx":0,"dy":15}}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	rec = do(t, s, http.MethodPut, "/v1/diagrams/"+key+"/overrides/layer-rect-visibility", `{"1":false}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/diagrams/"+key+"/overrides", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, override.Offset{DY: 15}, got.Offsets["b"])
	assert.Equal(t, map[int]bool{1: false}, got.Boxes)

	// The stored edits apply to layouts under the same key.
	base, err := runner.Layout(context.Background(), sampleInput(), pipeline.Options{SkipOverrides: true})
	require.NoError(t, err)
	edited, err := runner.Layout(context.Background(), sampleInput(), pipeline.Options{DiagramKey: key})
	require.NoError(t, err)
	before, _ := base.Diagram.Node("b")
	after, _ := edited.Diagram.Node("b")
	assert.InDelta(t, before.Band.Y0+15, after.Band.Y0, 1e-9)

	rec = do(t, s, http.MethodDelete, "/v1/diagrams/"+key+"/overrides", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, runner.Overrides.Load(context.Background(), key).IsZero())
}

func TestOverridesErrors(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown record", http.MethodPut, "/v1/diagrams/k/overrides/colors", `{}`, http.StatusNotFound, "NOT_FOUND"},
		{"bad record body", http.MethodPut, "/v1/diagrams/k/overrides/offsets", `[1,2]`, http.StatusBadRequest, "INVALID_RECORD"},
		{"bad key", http.MethodGet, "/v1/diagrams/a:b/overrides", nil, http.StatusBadRequest, "INVALID_KEY"},
		{"no route", http.MethodGet, "/v2/nothing", nil, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Error)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor("INVALID_INPUT"))
	assert.Equal(t, http.StatusNotFound, statusFor("FILE_NOT_FOUND"))
	assert.Equal(t, http.StatusInternalServerError, statusFor("STORE_WRITE"))
	assert.Equal(t, http.StatusInternalServerError, statusFor(""))
}

type recordingHTTPHooks struct {
	mu        sync.Mutex
	requests  int
	responses []string
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests++
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, method+" "+route+" "+http.StatusText(status))
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s, _ := newTestServer(t)
	do(t, s, http.MethodGet, "/healthz", nil)
	do(t, s, http.MethodDelete, "/v1/diagrams/k/overrides", nil)

	assert.Equal(t, 2, hooks.requests)
	require.Len(t, hooks.responses, 2)
	assert.Equal(t, "GET /healthz OK", hooks.responses[0])
	assert.True(t, strings.HasPrefix(hooks.responses[1], "DELETE /v1/diagrams/{key}/overrides"), hooks.responses[1])
	assert.True(t, strings.HasSuffix(hooks.responses[1], "No Content"), hooks.responses[1])
}

func TestServeShutdown(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
