package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/maxvdec/hana/internal/cache"
	"github.com/maxvdec/hana/server/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	store, err := cache.Open(filepath.Join(t.TempDir(), "hana.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	secret := "test-secret"
	return New(store, secret), secret
}

func TestHealth_NoAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCompile_RejectsMissingToken(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(CompileRequest{Source: "@hana latest;", API: "opengl"})
	req := httptest.NewRequest(http.MethodPost, "/v1/compile", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCompile_ValidTokenCompilesSource(t *testing.T) {
	srv, secret := newTestServer(t)
	tok, err := token.Issue(secret)
	require.NoError(t, err)

	source := `
use hana::raytracing;
@vertex func main() -> void { }
`
	reqBody, _ := json.Marshal(CompileRequest{Source: source, API: "opengl"})
	req := httptest.NewRequest(http.MethodPost, "/v1/compile", bytes.NewReader(reqBody))
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp CompileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Stages["vertex"], "void main()")
}

func TestCompile_RejectsUnsupportedAPI(t *testing.T) {
	srv, secret := newTestServer(t)
	tok, _ := token.Issue(secret)

	body, _ := json.Marshal(CompileRequest{Source: "@hana latest;", API: "spirv"})
	req := httptest.NewRequest(http.MethodPost, "/v1/compile", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistory_ListsPastCompiles(t *testing.T) {
	srv, secret := newTestServer(t)
	tok, _ := token.Issue(secret)

	compileBody, _ := json.Marshal(CompileRequest{Source: "@vertex func main() -> void { }", API: "opengl"})
	creq := httptest.NewRequest(http.MethodPost, "/v1/compile", bytes.NewReader(compileBody))
	creq.Header.Set("Authorization", "Bearer "+tok)
	srv.Router().ServeHTTP(httptest.NewRecorder(), creq)

	hreq := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	hreq.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, hreq)

	require.Equal(t, http.StatusOK, w.Code)

	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Entries, 1)
}
