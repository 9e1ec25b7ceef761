package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/codecomposer/pkg/archive"
	"github.com/james-see/codecomposer/pkg/composer"
	"github.com/james-see/codecomposer/pkg/render"
	"github.com/james-see/codecomposer/pkg/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, withHistory bool) *gin.Engine {
	t.Helper()
	var opts []Option
	if withHistory {
		store, err := archive.Open(filepath.Join(t.TempDir(), "api.db"))
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		opts = append(opts, WithHistory(store))
	}
	return NewServer(opts...).Router()
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	r := newTestServer(t, false)
	w := doJSON(t, r, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestComposeTokens(t *testing.T) {
	r := newTestServer(t, false)
	req := ComposeRequest{
		Tokens: []token.Token{
			token.New(token.KindKeyword, "if"),
			token.New(token.KindIdentifier, "x"),
			token.New(token.KindOperator, ">"),
			token.New(token.KindLiteral, "0"),
		},
		Options: composer.Options{Key: "C", Scale: "major", Progression: "I_vi_IV_V", Seed: 42},
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/compose", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ComposeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Composition)
	assert.Len(t, resp.Composition.Bars, 4)
	assert.Equal(t, []string{"C", "Am", "F", "G"}, resp.Composition.Metadata.Chords)
	assert.Empty(t, resp.ID)
}

func TestComposeSourceAsMIDI(t *testing.T) {
	r := newTestServer(t, false)
	req := ComposeRequest{
		Source:   "package main\n\nfunc main() { println(1 + 2) }\n",
		Filename: "main.go",
		Options:  composer.Options{Style: "jazz", Seed: 3},
		Format:   "midi",
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/compose", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "audio/midi", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "main.mid")

	summary, err := render.Inspect(w.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, summary.Tracks, 3)
	assert.Positive(t, summary.Notes)
}

func TestComposeErrors(t *testing.T) {
	r := newTestServer(t, false)
	tokens := []token.Token{token.New(token.KindKeyword, "for")}

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"unknown style", ComposeRequest{Tokens: tokens, Options: composer.Options{Style: "polka"}}, http.StatusBadRequest},
		{"bad key", ComposeRequest{Tokens: tokens, Options: composer.Options{Key: "H"}}, http.StatusBadRequest},
		{"bad bars per token", ComposeRequest{Tokens: tokens, Options: composer.Options{BarsPerToken: 3}}, http.StatusBadRequest},
		{"phrase too long", ComposeRequest{Tokens: tokens, Options: composer.Options{BarsPerPhrase: 2000000}}, http.StatusBadRequest},
		{"unknown instrument", ComposeRequest{Tokens: tokens, Options: composer.Options{Instrument: "kazoo"}}, http.StatusBadRequest},
		{"bad format", ComposeRequest{Tokens: tokens, Format: "wav"}, http.StatusBadRequest},
		{"bad voices", ComposeRequest{Tokens: tokens, Voices: "drums"}, http.StatusBadRequest},
		{"unknown language", ComposeRequest{Source: "x = 1", Language: "ruby"}, http.StatusBadRequest},
		{"history disabled", ComposeRequest{Tokens: tokens, Save: true}, http.StatusServiceUnavailable},
		{"malformed body", "not an object", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/v1/compose", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestComposeUpload(t *testing.T) {
	r := newTestServer(t, false)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "script.py")
	require.NoError(t, err)
	_, err = part.Write([]byte("def f(x):\n    return x * 2  # double\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compose/upload?style=waltz&seed=5&format=alda", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "script.alda")
	assert.Contains(t, w.Body.String(), "piano:")
	assert.Contains(t, w.Body.String(), "(tempo 90)")
}

func upload(t *testing.T, r http.Handler, query, filename, source string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(source))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compose/upload?"+query, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestComposeUploadInstrument(t *testing.T) {
	r := newTestServer(t, false)

	w := upload(t, r, "instrument=violin&seed=1", "main.go", "package main\n\nfunc main() {}\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	summary, err := render.Inspect(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, summary.Tracks, 3)
	require.NotNil(t, summary.Tracks[1].Program)
	assert.Equal(t, 40, *summary.Tracks[1].Program)

	w = upload(t, r, "instrument=violin&format=alda", "main.go", "package main\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "violin:")
}

func TestComposeUploadPhraseLimit(t *testing.T) {
	r := newTestServer(t, false)
	w := upload(t, r, "bars_per_phrase=2000000", "main.c", "int x;")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bars_per_phrase")
}

func TestComposeUploadBadQuery(t *testing.T) {
	r := newTestServer(t, false)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "main.c")
	_, _ = part.Write([]byte("int main(void) { return 0; }"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compose/upload?tempo=fast", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "tempo")
}

func TestComposeUploadNoFile(t *testing.T) {
	r := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compose/upload", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokenize(t *testing.T) {
	r := newTestServer(t, false)
	w := doJSON(t, r, http.MethodPost, "/api/v1/tokenize", ComposeRequest{Source: "x := 1", Language: "go"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Tokens []token.Token `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tokens, 3)
	assert.Equal(t, token.KindOperator, resp.Tokens[1].Kind)
	assert.Equal(t, ":=", resp.Tokens[1].Lexeme)
}

func TestInfoEndpoints(t *testing.T) {
	r := newTestServer(t, false)

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/api/v1/styles", http.StatusOK, `"waltz"`},
		{"/api/v1/styles/jazz", http.StatusOK, `"swing_ratio":0.667`},
		{"/api/v1/styles/polka", http.StatusNotFound, "polka"},
		{"/api/v1/scales", http.StatusOK, `"dorian"`},
		{"/api/v1/scales/major/preview?key=G", http.StatusOK, "piano:"},
		{"/api/v1/scales/bebop/preview", http.StatusBadRequest, "bebop"},
		{"/api/v1/progressions?key=D&scale=dorian", http.StatusOK, `"i_IV_i_bVII"`},
		{"/api/v1/progressions?scale=bebop", http.StatusBadRequest, "bebop"},
		{"/api/v1/bass-patterns", http.StatusOK, "alberti"},
		{"/api/v1/instruments", http.StatusOK, `"violin":40`},
		{"/api/v1/formats", http.StatusOK, "midi"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := doJSON(t, r, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestCompositionHistory(t *testing.T) {
	r := newTestServer(t, true)

	req := ComposeRequest{
		Source:   "int main(void) { return 0; }",
		Filename: "main.c",
		Options:  composer.Options{Style: "minuet", Seed: 8},
		Save:     true,
	}
	w := doJSON(t, r, http.MethodPost, "/api/v1/compose", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created ComposeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, created.ID, w.Header().Get("X-Composition-ID"))

	w = doJSON(t, r, http.MethodGet, "/api/v1/compositions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Compositions []archive.Record `json:"compositions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Compositions, 1)
	assert.Equal(t, "main.c", list.Compositions[0].Source)
	assert.Equal(t, "c", list.Compositions[0].Language)

	w = doJSON(t, r, http.MethodGet, "/api/v1/compositions/"+created.ID+"?format=tree", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Composition (minuet)")

	w = doJSON(t, r, http.MethodDelete, "/api/v1/compositions/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/compositions/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryDisabled(t *testing.T) {
	r := newTestServer(t, false)
	w := doJSON(t, r, http.MethodGet, "/api/v1/compositions", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/compose", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
