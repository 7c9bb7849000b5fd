package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadenzalabs/composer-api/internal/models"
	"github.com/cadenzalabs/composer-api/internal/service"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewComposeHandler(service.NewCompositionService(0))
	router.GET("/health", HealthCheck)
	router.POST("/generate_melody", h.GenerateMelody)
	router.POST("/reharmonize", h.Reharmonize)
	router.POST("/realize_chord", h.RealizeChord)
	router.POST("/export_midi", h.ExportMidi)
	router.POST("/transform_phrase", h.TransformPhrase)
	router.POST("/add_voice", h.AddVoice)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()

	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", path, bytes.NewBuffer(jsonBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope models.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

func TestHealthEndpoint(t *testing.T) {
	router := setupTestRouter()

	req, err := http.NewRequest("GET", "/health", nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestGenerateMelodyEndpoint(t *testing.T) {
	router := setupTestRouter()

	w, envelope := postJSON(t, router, "/generate_melody", map[string]any{
		"key":             "C major",
		"length_measures": 2,
		"seed":            42,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)
	assert.Nil(t, envelope.Error)
	assert.Equal(t, models.APIVersion, envelope.APIVersion)
	require.NotNil(t, envelope.Data)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	require.Contains(t, data, "melody")
	require.Contains(t, data, "metadata")
}

func TestGenerateMelodyInvalidKey(t *testing.T) {
	router := setupTestRouter()

	w, envelope := postJSON(t, router, "/generate_melody", map[string]any{
		"key":             "H sharp",
		"length_measures": 2,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_KEY", envelope.Error.Code)
	assert.NotEmpty(t, envelope.Error.Suggestions)
}

func TestGenerateMelodyNarrowRange(t *testing.T) {
	router := setupTestRouter()

	w, envelope := postJSON(t, router, "/generate_melody", map[string]any{
		"key":             "C major",
		"length_measures": 1,
		"range_low":       "C4",
		"range_high":      "D4",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "UNSATISFIABLE_CONSTRAINTS", envelope.Error.Code)
}

func TestGenerateMelodyStartNoteWarning(t *testing.T) {
	router := setupTestRouter()

	w, envelope := postJSON(t, router, "/generate_melody", map[string]any{
		"key":             "C major",
		"length_measures": 1,
		"start_note":      "C#4",
		"seed":            7,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)
	require.NotEmpty(t, envelope.Warnings)
	assert.Equal(t, "START_NOTE_ADJUSTED", envelope.Warnings[0].Code)
}

func TestReharmonizeEndpoint(t *testing.T) {
	router := setupTestRouter()

	w, envelope := postJSON(t, router, "/reharmonize", map[string]any{
		"melody": "C4 E4 G4 E4 F4 D4 G4 C4",
		"style":  "jazz",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	require.Contains(t, data, "harmonizations")
	assert.Contains(t, data, "detected_key")
}

func TestReharmonizeUnknownStyle(t *testing.T) {
	router := setupTestRouter()

	w, envelope := postJSON(t, router, "/reharmonize", map[string]any{
		"melody": "C4 E4 G4",
		"style":  "baroque",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "style", envelope.Error.Field)
}

func TestRealizeChordEndpoint(t *testing.T) {
	router := setupTestRouter()

	w, envelope := postJSON(t, router, "/realize_chord", map[string]any{
		"chord_symbol":  "Cmaj7",
		"voicing_style": "drop2",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	require.Contains(t, data, "voicing")
	require.Contains(t, data, "analysis")
}

func TestRealizeChordInvalidSymbol(t *testing.T) {
	router := setupTestRouter()

	w, envelope := postJSON(t, router, "/realize_chord", map[string]any{
		"chord_symbol": "Zmaj7",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_CHORD_SYMBOL", envelope.Error.Code)
}

func TestExportMidiEndpoint(t *testing.T) {
	router := setupTestRouter()

	w, envelope := postJSON(t, router, "/export_midi", map[string]any{
		"stream": "C4 D4 E4 F4",
		"tempo":  100,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	require.Contains(t, data, "midi")
}

func TestNotImplementedEndpoints(t *testing.T) {
	router := setupTestRouter()

	for _, path := range []string{"/transform_phrase", "/add_voice"} {
		w, envelope := postJSON(t, router, path, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		require.NotNil(t, envelope.Error, path)
		assert.Equal(t, "NOT_IMPLEMENTED", envelope.Error.Code, path)
	}
}

func TestMalformedJSONBody(t *testing.T) {
	router := setupTestRouter()

	req, err := http.NewRequest("POST", "/generate_melody", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "PARSE_ERROR")
}
