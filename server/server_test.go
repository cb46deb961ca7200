package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-armonia/algorithms/tonal"
	"github.com/RyanBlaney/sonido-armonia/config"
	"github.com/RyanBlaney/sonido-armonia/logging"
	"github.com/RyanBlaney/sonido-armonia/scalehelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
	os.Exit(m.Run())
}

func newTestServer() *Server {
	return New(&config.Config{
		Port:               "0",
		DefaultRoot:        "C",
		DefaultScale:       "major",
		CORSAllowedOrigins: []string{"*"},
		SessionTTL:         time.Minute,
	}, nil)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["sessions"])
}

func TestScales(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodGet, "/scales", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]tonal.Scale](t, rec), 12)

	rec = do(t, s, http.MethodGet, "/scales/A/minor", "")
	require.Equal(t, http.StatusOK, rec.Code)
	scale := decode[scaleResponse](t, rec)
	assert.Equal(t, "A minor", scale.Key)
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F", "G"}, scale.Notes)
	assert.Len(t, scale.Degrees, 7)
	assert.Len(t, scale.Chords, 14)
}

func TestScaleRejectsBadKeys(t *testing.T) {
	s := newTestServer()

	for _, path := range []string{"/scales/H/major", "/scales/C/bebop"} {
		rec := do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.NotEmpty(t, decode[map[string]string](t, rec)["error"], path)
	}
}

func TestAnalyze(t *testing.T) {
	body := `{"root": "C", "scale": "major", "notes": [
		{"step": 0, "pitch": "C4", "velocity": 80, "duration": 1},
		{"step": 1, "pitch": "Db4", "velocity": 80, "duration": 1},
		{"step": 2, "pitch": "F#4", "velocity": 80, "duration": 1}
	]}`

	rec := do(t, newTestServer(), http.MethodPost, "/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := decode[scalehelper.Report](t, rec)
	assert.Equal(t, 33, report.Harmonic.Tonicity)
	assert.Len(t, report.Harmonic.Tensions, 2)
	assert.NotEmpty(t, report.Musical.Warnings)
}

func TestAnalyzeErrors(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"notes": [`},
		{"bad pitch", `{"notes": [{"step": 0, "pitch": "C", "duration": 1}]}`},
		{"bad scale", `{"scale": "bebop", "notes": []}`},
		{"negative step", `{"notes": [{"step": -1, "pitch": "C4", "duration": 1}]}`},
		{"step past the grid", `{"notes": [{"step": 0, "pitch": "C4", "duration": 1}, {"step": 8388608, "pitch": "E4", "duration": 1}]}`},
		{"zero duration", `{"notes": [{"step": 0, "pitch": "C4", "duration": 0}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/analyze", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[sessionResponse](t, rec)
	assert.Equal(t, "C major", created.Key)
	assert.Empty(t, created.History)
	base := "/sessions/" + created.ID

	rec = do(t, s, http.MethodGet, base+"/suggestions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	opening := decode[map[string][]tonal.RankedChord](t, rec)["suggestions"]
	assert.Len(t, opening, 5)

	rec = do(t, s, http.MethodPost, base+"/chords", `{"name": "G"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[sessionResponse](t, rec)
	require.Len(t, updated.History, 1)
	assert.Equal(t, "G", updated.History[0].Name)

	rec = do(t, s, http.MethodGet, base+"/suggestions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	next := decode[map[string][]tonal.RankedChord](t, rec)["suggestions"]
	require.NotEmpty(t, next)
	assert.Equal(t, "Asus2", next[0].Name)
	assert.Equal(t, 97, next[0].VoiceLeading.Quality)

	rec = do(t, s, http.MethodPost, base+"/chords", `{"name": "F#"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodDelete, base+"/history", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, base+"/suggestions", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSessionWithKey(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodPost, "/sessions", `{"root": "G", "scale": "mixolydian"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "G mixolydian", decode[sessionResponse](t, rec).Key)

	rec = do(t, s, http.MethodPost, "/sessions", `{"root": "H"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/sessions", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")

	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
