package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hukumchat-backend/models"
)

// stubChatter returns a fixed result and records the message it saw
type stubChatter struct {
	result  *models.ChatResult
	lastMsg string
}

func (s *stubChatter) Chat(_ context.Context, message string) *models.ChatResult {
	s.lastMsg = message
	return s.result
}

func newTestRouter(chatter *stubChatter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewChatHandler(chatter)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/health", h.Health)
	r.POST("/chat", h.Chat)
	return r
}

func TestChatEndpoint(t *testing.T) {
	score := 0.91
	chatter := &stubChatter{result: &models.ChatResult{
		Reply:  "Baik, berikut panduannya",
		Mode:   models.ModeFAQ,
		Intent: "reset_password",
		Score:  &score,
	}}
	router := newTestRouter(chatter)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"lupa password sso"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lupa password sso", chatter.lastMsg)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Baik, berikut panduannya", body["reply"])
	assert.Equal(t, "FAQ", body["mode"])
	assert.Equal(t, "reset_password", body["intent"])
	assert.InDelta(t, 0.91, body["score"], 1e-9)
}

func TestChatEndpointEmptyMessageReachesRouter(t *testing.T) {
	chatter := &stubChatter{result: &models.ChatResult{
		Reply: "Silakan tulis pertanyaan terlebih dahulu.",
		Mode:  models.ModeSystem,
	}}
	router := newTestRouter(chatter)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":""}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SYSTEM", body["mode"])
	_, hasScore := body["score"]
	assert.False(t, hasScore, "nil score is omitted from the payload")
}

func TestChatEndpointMalformedBody(t *testing.T) {
	chatter := &stubChatter{result: &models.ChatResult{}}
	router := newTestRouter(chatter)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&stubChatter{result: &models.ChatResult{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
