package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textcipher-go/internal/auth"
	"github.com/textcipher-go/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Stream:  config.StreamConfig{ChunkSize: 16, Atomic: true},
		History: config.HistoryConfig{Enable: true, Limit: 20},
		Server:  config.ServerConfig{Address: "127.0.0.1", Port: 0, Gzip: true, MaxBodyMB: 1},
		Auth:    config.AuthConfig{JWTExpire: 1},
		DataDir: t.TempDir(),
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	w := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	var health HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, []string{"rotation", "xor"}, health.Methods)

	w = serve(s, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "op-client1")
	w := serve(s, req)
	assert.Equal(t, "op-client1", w.Header().Get(RequestIDHeader))
}

func TestEncryptRecordsHistory(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	body := `{"method":"rotation","key":"3","text":"Abc123"}`
	w := serve(s, httptest.NewRequest(http.MethodPost, "/api/v1/encrypt", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Def456")

	w = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Count   int `json:"count"`
			Entries []struct {
				Operation      string `json:"operation"`
				Mode           string `json:"mode"`
				Status         string `json:"status"`
				KeyFingerprint string `json:"key_fingerprint"`
			} `json:"entries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Data.Count)
	assert.Equal(t, "encrypt", resp.Data.Entries[0].Operation)
	assert.Equal(t, "text", resp.Data.Entries[0].Mode)
	assert.Equal(t, "completed", resp.Data.Entries[0].Status)
	assert.Len(t, resp.Data.Entries[0].KeyFingerprint, 16)
}

func TestHistoryDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Enable = false
	s := newTestServer(t, cfg)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(s, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.JWTSecret = "test-secret"
	s := newTestServer(t, cfg)

	body := `{"method":"xor","key":"k","text":"hi"}`
	w := serve(s, httptest.NewRequest(http.MethodPost, "/api/v1/encrypt", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := auth.NewJWTAuth("test-secret", time.Hour).GenerateToken("tester")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/encrypt", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(s, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// health stays public
	w = serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGzipSkipsStream(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := serve(s, req)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	req = httptest.NewRequest(http.MethodPost, "/api/v1/stream/encrypt?method=rotation&key=1", strings.NewReader("abc"))
	req.Header.Set("Accept-Encoding", "gzip")
	w = serve(s, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "bcd", w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	w := serve(s, httptest.NewRequest(http.MethodOptions, "/api/v1/encrypt", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
