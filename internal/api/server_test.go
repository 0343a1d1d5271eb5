package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/artifact"
	"github.com/dgallion1/docdraft/internal/config"
	"github.com/dgallion1/docdraft/internal/llm"
	"github.com/dgallion1/docdraft/internal/llm/mocks"
	"github.com/dgallion1/docdraft/internal/pipeline"
)

type testEnv struct {
	srv   *Server
	svc   *pipeline.Service
	gen   *mocks.MockGenerator
	cfg   *config.Config
	store *pipeline.SessionStore
}

func newTestEnv(t *testing.T, apiKey string, factory pipeline.GeneratorFactory) *testEnv {
	t.Helper()
	cfg := &config.Config{
		LLM:    config.LLMConfig{Provider: "xai"},
		Output: config.OutputConfig{Dir: t.TempDir()},
		Server: config.ServerConfig{
			APIKey:         apiKey,
			MaxUploadBytes: 10 << 20,
			AllowedOrigins: []string{"*"},
			SessionTTL:     time.Hour,
		},
	}
	gen := mocks.NewMockGenerator(t)
	if factory == nil {
		factory = func(string) (llm.Generator, error) { return gen, nil }
	}
	svc := pipeline.NewService(cfg, zap.NewNop(), pipeline.WithGeneratorFactory(factory))
	store := pipeline.NewSessionStore(cfg.Server.SessionTTL, t.TempDir())
	return &testEnv{
		srv:   NewServer(svc, store, zap.NewNop(), cfg.Server),
		svc:   svc,
		gen:   gen,
		cfg:   cfg,
		store: store,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

type upload struct{ name, content, info string }

func (e *testEnv) createSession(t *testing.T, files ...upload) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		fw, err := mw.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
		require.NoError(t, mw.WriteField("infos", f.info))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("mot ", n))
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t, "secret", nil)
	rec := e.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	e := newTestEnv(t, "secret", nil)

	rec := e.do(t, http.MethodGet, "/api/stats/llm", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing authorization"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestNoAuthWhenKeyUnset(t *testing.T) {
	e := newTestEnv(t, "", nil)
	rec := e.do(t, http.MethodGet, "/api/stats/llm", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t, "", nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/sections", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCreateSession(t *testing.T) {
	e := newTestEnv(t, "", nil)
	out := e.createSession(t,
		upload{name: "notes.txt", content: words(100), info: "notes"},
		upload{name: "tool.exe", content: "MZ"},
		upload{name: "empty.txt", content: " "},
	)

	assert.NotEmpty(t, out["session_id"])
	files := out["files"].([]any)
	require.Len(t, files, 1)
	f := files[0].(map[string]any)
	assert.Equal(t, "notes.txt", f["name"])
	assert.EqualValues(t, 1, f["chunks"])
	assert.EqualValues(t, 1, f["low_priority"])

	errs := out["errors"].([]any)
	require.Len(t, errs, 2)
	assert.Equal(t, "unsupported file type: .exe", errs[0].(map[string]any)["message"])
	assert.Equal(t, "extraction failed for empty.txt: no text extracted", errs[1].(map[string]any)["message"])
}

func TestUnknownSession(t *testing.T) {
	e := newTestEnv(t, "", nil)
	rec := e.do(t, http.MethodPost, "/api/sessions/nope/navigate", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"session not found"}`, rec.Body.String())
}

func TestDeleteSession(t *testing.T) {
	e := newTestEnv(t, "", nil)
	id := e.createSession(t, upload{name: "a.txt", content: "texte"})["session_id"].(string)

	rec := e.do(t, http.MethodDelete, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(t, http.MethodDelete, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNavigateLinear(t *testing.T) {
	e := newTestEnv(t, "", nil)
	id := e.createSession(t,
		upload{name: "long.txt", content: words(1400)},
		upload{name: "short.txt", content: words(20)},
	)["session_id"].(string)

	rec := e.do(t, http.MethodPost, "/api/sessions/"+id+"/navigate", `{"strategy":"linear"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decodeBody(t, rec)
	assert.Len(t, out["selected"].([]any), 3)
	assert.Len(t, out["traces"].([]any), 2)

	data, err := os.ReadFile(e.svc.Store().Path(artifact.RefsFile))
	require.NoError(t, err)
	assert.Equal(t, "long.txt,1\nlong.txt,2\nlong.txt,3\n", string(data))
}

func TestDraftWithChunkList(t *testing.T) {
	e := newTestEnv(t, "", nil)
	e.gen.On("Generate", mock.Anything, mock.MatchedBy(func(r llm.Request) bool { return r.MaxTokens == 60 })).
		Return("digest", nil).Once()
	e.gen.On("Generate", mock.Anything, mock.MatchedBy(func(r llm.Request) bool { return r.MaxTokens == 1000 })).
		Return("Nous avons rédigé.", nil).Once()

	id := e.createSession(t, upload{name: "a.txt", content: words(50)})["session_id"].(string)
	rec := e.do(t, http.MethodPost, "/api/sessions/"+id+"/draft",
		`{"synthesis":"s","chunk_list":"a.txt,1\nbroken line\n"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decodeBody(t, rec)
	assert.Equal(t, "Travaux (source : a.txt, partie 1) : Nous avons rédigé.", out["text"])
	assert.Len(t, out["line_errors"].([]any), 1)
}

func TestDraftNeedsRefs(t *testing.T) {
	e := newTestEnv(t, "", nil)
	id := e.createSession(t, upload{name: "a.txt", content: "x"})["session_id"].(string)
	rec := e.do(t, http.MethodPost, "/api/sessions/"+id+"/draft", `{"synthesis":"s"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSectionErrors(t *testing.T) {
	e := newTestEnv(t, "", nil)

	rec := e.do(t, http.MethodPost, "/api/sections", `{"section":"1.6"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "company_name")

	rec = e.do(t, http.MethodPost, "/api/sections", `{"section":"2.0"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/sections", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSection(t *testing.T) {
	e := newTestEnv(t, "", nil)
	e.gen.On("Generate", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return r.MaxTokens == 1500 && strings.Contains(r.User, "conclusion")
	})).Return("Conclusion rédigée.", nil).Once()

	rec := e.do(t, http.MethodPost, "/api/sections", `{"section":"1.5","content":"innovations"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"section":"1.5","title":"Indicateurs ou conclusion sur l'innovation","text":"Conclusion rédigée."}`, rec.Body.String())
}

func TestMissingKeyIsUnprocessable(t *testing.T) {
	factory := func(p string) (llm.Generator, error) {
		return nil, &llm.MissingKeyError{Provider: p, EnvVar: "XAI_API_KEY"}
	}
	e := newTestEnv(t, "", factory)

	rec := e.do(t, http.MethodPost, "/api/analysis/market", `{"synthesis":"s","solution_name":"X"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"API key for XAI provider is not set (export XAI_API_KEY)"}`, rec.Body.String())
}

func TestSynthesisRequiresDocx(t *testing.T) {
	e := newTestEnv(t, "", nil)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/synthesis", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "report.pdf", sanitizeFilename("../../report.pdf"))
	assert.Equal(t, "report.pdf", sanitizeFilename(`C:\Users\x\report.pdf`))
	assert.Equal(t, "unnamed", sanitizeFilename(""))
}
