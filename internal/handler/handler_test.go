package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/textcipher-go/internal/dao"
	"github.com/textcipher-go/internal/engine"
	"github.com/textcipher-go/internal/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeHistory struct {
	entries []*dao.HistoryEntry
}

func (f *fakeHistory) Recent(limit int) ([]*dao.HistoryEntry, error) {
	if limit <= 0 || limit > len(f.entries) {
		limit = len(f.entries)
	}
	return f.entries[:limit], nil
}

func (f *fakeHistory) Get(id string) (*dao.HistoryEntry, bool) {
	for _, e := range f.entries {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

func newTestRouter(maxBody int64) *gin.Engine {
	r := gin.New()
	ch := NewCipherHandler(engine.New(engine.Options{ChunkSize: 4}), maxBody)
	hh := NewHistoryHandler(&fakeHistory{entries: []*dao.HistoryEntry{
		{ID: "b", Time: time.Now(), Operation: "decrypt", Status: dao.StatusCompleted},
		{ID: "a", Time: time.Now(), Operation: "encrypt", Status: dao.StatusFailed},
	}}, 20)

	r.POST("/api/v1/encrypt", ch.Encrypt)
	r.POST("/api/v1/decrypt", ch.Decrypt)
	r.POST("/api/v1/stream/:direction", ch.Stream)
	r.GET("/api/v1/history", hh.List)
	r.GET("/api/v1/history/:id", hh.Get)
	return r
}

func doJSON(t *testing.T, r http.Handler, path string, body interface{}) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
	return w, resp
}

func dataField(t *testing.T, resp APIResponse, key string) interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data is %T, want object", resp.Data)
	}
	return m[key]
}

// TestEncryptDecryptText tests the inline text endpoints
func TestEncryptDecryptText(t *testing.T) {
	r := newTestRouter(1 << 20)

	w, resp := doJSON(t, r, "/api/v1/encrypt", TextRequest{Method: "rotation", Key: "3", Text: "Abc123"})
	if w.Code != http.StatusOK || resp.Code != 0 {
		t.Fatalf("encrypt: status=%d code=%d msg=%q", w.Code, resp.Code, resp.Msg)
	}
	if got := dataField(t, resp, "text"); got != "Def456" {
		t.Errorf("text = %v, want Def456", got)
	}
	if got := dataField(t, resp, "method"); got != "rotation" {
		t.Errorf("method = %v, want rotation", got)
	}

	_, resp = doJSON(t, r, "/api/v1/decrypt", TextRequest{Method: "rotation", Key: "3", Text: "Def456"})
	if got := dataField(t, resp, "text"); got != "Abc123" {
		t.Errorf("decrypt text = %v, want Abc123", got)
	}
}

// TestXORWithHexEncoding tests binary output round-tripping through hex
func TestXORWithHexEncoding(t *testing.T) {
	r := newTestRouter(1 << 20)

	_, resp := doJSON(t, r, "/api/v1/encrypt", TextRequest{Method: "xor", Key: "KEY", Text: "HELLO", Encoding: "hex"})
	if got := dataField(t, resp, "text"); got != "030015070a" {
		t.Fatalf("hex text = %v, want 030015070a", got)
	}

	_, resp = doJSON(t, r, "/api/v1/decrypt", TextRequest{Method: "xor", Key: "KEY", Text: "030015070a", Encoding: "hex"})
	if got := dataField(t, resp, "text"); got != "HELLO" {
		t.Errorf("decrypt = %v, want HELLO", got)
	}
}

// TestTextErrors tests error responses from the text endpoints
func TestTextErrors(t *testing.T) {
	r := newTestRouter(1 << 20)

	tests := []struct {
		name       string
		body       TextRequest
		wantStatus int
		wantCode   int
	}{
		{"not a number", TextRequest{Method: "rotation", Key: "abc", Text: "x"}, http.StatusBadRequest, int(errors.ErrCodeNotANumber)},
		{"empty xor key", TextRequest{Method: "xor", Key: "", Text: "x"}, http.StatusBadRequest, int(errors.ErrCodeEmptyKey)},
		{"bad encoding", TextRequest{Method: "xor", Key: "k", Text: "x", Encoding: "rot13"}, http.StatusBadRequest, int(errors.ErrCodeBadRequest)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doJSON(t, r, "/api/v1/encrypt", tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", resp.Code, tt.wantCode)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/decrypt", strings.NewReader("{"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", w.Code)
	}
}

// TestFallbackWarning tests that unknown methods report a warning
func TestFallbackWarning(t *testing.T) {
	r := newTestRouter(1 << 20)

	_, resp := doJSON(t, r, "/api/v1/encrypt", TextRequest{Method: "enigma", Key: "1", Text: "abc"})
	if got := dataField(t, resp, "text"); got != "bcd" {
		t.Errorf("text = %v, want bcd", got)
	}
	warning, _ := dataField(t, resp, "warning").(string)
	if !strings.Contains(warning, "enigma") {
		t.Errorf("warning = %q, should name the unknown method", warning)
	}
}

// TestStream tests the raw body streaming endpoint
func TestStream(t *testing.T) {
	r := newTestRouter(1 << 20)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stream/encrypt?method=xor&key=KEY", strings.NewReader("HELLO WORLD"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", w.Code, w.Body.String())
	}
	encrypted := w.Body.Bytes()
	if len(encrypted) != 11 {
		t.Fatalf("len = %d, want 11", len(encrypted))
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/stream/decrypt?method=xor&key=KEY", bytes.NewReader(encrypted))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "HELLO WORLD" {
		t.Errorf("round trip = %q", w.Body.String())
	}
}

// TestStreamErrors tests stream failures before any output is written
func TestStreamErrors(t *testing.T) {
	r := newTestRouter(1 << 20)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stream/encrypt?method=rotation&key=x", strings.NewReader("data"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/stream/sideways?method=xor&key=k", strings.NewReader("data"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/stream/encrypt?method=enigma&key=1", strings.NewReader("abc"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(FallbackHeader) != "rotation" || w.Body.String() != "bcd" {
		t.Errorf("fallback stream: header=%q body=%q", w.Header().Get(FallbackHeader), w.Body.String())
	}
}

// TestHistoryEndpoints tests listing and fetching history entries
func TestHistoryEndpoints(t *testing.T) {
	r := newTestRouter(1 << 20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=1", nil))
	var resp APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if got := dataField(t, resp, "count"); got != float64(1) {
		t.Errorf("count = %v, want 1", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=-1", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative limit status = %d, want 400", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history/a", nil))
	if w.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history/zzz", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("missing entry status = %d, want 404", w.Code)
	}
}

// TestRespondError tests the error response helper
func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"bad request", errors.NewBadRequest("invalid input"), http.StatusBadRequest, 400},
		{"not found", errors.NewNotFound("nothing here"), http.StatusNotFound, 404},
		{"sink", errors.NewSinkUnavailable("out", nil), http.StatusInternalServerError, 521},
		{"plain error", http.ErrBodyNotAllowed, http.StatusInternalServerError, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			RespondError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp APIResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", resp.Code, tt.wantCode)
			}
		})
	}
}
