package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-backend/internal/handlers"
	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/models"
	"chatbot-backend/internal/services"
)

func newTestRouter(limiter *middleware.RateLimiter) http.Handler {
	engine := services.NewReplyEngine(nil, nil)
	return New(
		handlers.NewChatHandler(engine, nil),
		handlers.NewHealthHandler(engine),
		limiter,
		"",
	)
}

func TestRouter_ChatScenario(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message": "hello", "history": []}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	var resp models.ChatResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, strings.HasPrefix(resp.Reply, "Hi! I'm your 2025 AI chatbot"))
	require.Len(t, resp.History, 2)
	assert.Equal(t, models.ChatTurn{Role: models.RoleUser, Content: "hello"}, resp.History[0])
	assert.Equal(t, models.ChatTurn{Role: models.RoleAssistant, Content: resp.Reply}, resp.History[1])
}

func TestRouter_EmptyMessage(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message": "", "history": []}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error": "Message is required."}`, rr.Body.String())
}

func TestRouter_ChatRequiresPost(t *testing.T) {
	r := newTestRouter(nil)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/chat", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouter_IndexAndAssets(t *testing.T) {
	r := newTestRouter(nil)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `id="chat-window"`)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/api/chat")
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(nil)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"mode":"rule-based"`)
}

func TestRouter_RateLimitsChatOnly(t *testing.T) {
	store := middleware.NewMemoryLimitStore(1, time.Minute)
	defer store.Close()
	r := newTestRouter(middleware.NewRateLimiter(store, nil))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message": "hey"}`))
		req.RemoteAddr = "198.51.100.4:1234"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "198.51.100.4:1234"
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code, "health is not rate limited")
}
