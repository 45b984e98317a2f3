package internal

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *Builder) {
	t.Helper()
	b, _, _ := newTestBuilder(t, exampleProject)
	s, err := NewServer(b, nil, 0)
	require.NoError(t, err)
	return s, b
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewServerNeedsBuilder(t *testing.T) {
	_, err := NewServer(nil, nil, 8080)
	assert.Error(t, err)
}

func TestServeGenerated(t *testing.T) {
	s, b := newTestServer(t)
	h := s.Routes()

	assert.Equal(t, http.StatusNotFound, get(t, h, "/fabric.mod.json").Code)

	_, err := b.Generate(context.Background(), All)
	require.NoError(t, err)

	rec := get(t, h, "/fabric.mod.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"id": "examplemod"`)

	rec = get(t, h, "/META-INF/neoforge.mods.toml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `modId = "examplemod"`)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/META-INF/forge.mods.toml").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/META-INF/MANIFEST.MF").Code)
}

func TestSummary(t *testing.T) {
	s, b := newTestServer(t)
	_, err := b.Generate(context.Background(), All)
	require.NoError(t, err)

	rec := get(t, s.Routes(), "/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var sum summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, "examplemod", sum.ID)
	assert.Equal(t, "Example Mod", sum.Name)
	assert.Equal(t, "1.2.0+1.21.3-local", sum.Version)
	assert.Equal(t, map[string]string{
		"fabricloader": ">=0.16.9",
		"minecraft":    "~1.21.3",
	}, sum.Depends)
	assert.Equal(t, "META-INF/neoforge.mods.toml", sum.Nmt)
}

func TestRegenerate(t *testing.T) {
	s, _ := newTestServer(t)
	id, events := s.subscribe()
	defer s.unsubscribe(id)

	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/regenerate", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Files []string `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Files, 2)

	select {
	case ev := <-events:
		reload, ok := ev.(*reloadEvent)
		require.True(t, ok)
		assert.Equal(t, "reload", reload.Type)
		assert.Equal(t, "all", reload.Target)
		assert.Equal(t, body.Files, reload.Files)
	default:
		t.Fatal("no reload event")
	}
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s.Routes(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Example Mod manifests</title>")
	assert.Contains(t, rec.Body.String(), "/META-INF/neoforge.mods.toml")
}

func TestBroadcastDropsWhenFull(t *testing.T) {
	s, _ := newTestServer(t)
	id, events := s.subscribe()
	defer s.unsubscribe(id)

	for i := 0; i < cap(events)+5; i++ {
		s.BuildError("", "boom")
	}
	assert.Len(t, events, cap(events))

	s.unsubscribe(id)
	assert.Empty(t, s.senders)
}

func TestEvents(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	require.Eventually(t, func() bool {
		s.lock.Lock()
		defer s.lock.Unlock()
		return len(s.senders) == 1
	}, time.Second, 10*time.Millisecond)
	s.Reload(Fmj, []string{"fabric.mod.json"})

	line, err := bufio.NewReader(res.Body).ReadString('\n')
	require.NoError(t, err)
	data, ok := strings.CutPrefix(line, "data: ")
	require.True(t, ok)
	assert.JSONEq(t, `{"type":"reload","target":"fmj","files":["fabric.mod.json"]}`, data)
}
