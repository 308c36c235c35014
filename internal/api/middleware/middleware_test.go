package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salemre/backend/internal/auth"
	"salemre/backend/internal/config"
	"salemre/backend/internal/models"
)

const testSecret = "test-secret"

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	args := m.Called(ctx, token, remoteIP)
	return args.Bool(0), args.Error(1)
}

func (m *MockVerifier) GenerateHumanToken(ip string, ttl time.Duration) (string, error) {
	args := m.Called(ip, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockVerifier) ValidateHumanToken(tokenString, ip string) bool {
	return m.Called(tokenString, ip).Bool(0)
}

func token(t *testing.T, id int64, role models.UserRole) string {
	t.Helper()
	tok, err := auth.GenerateJWT(id, role, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func whoami(c *gin.Context) {
	a := ActorFrom(c)
	if a == nil {
		c.JSON(http.StatusOK, gin.H{"anonymous": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": a.UserID, "role": a.Role})
}

func do(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(testSecret), whoami)
	r.GET("/admin", AuthMiddleware(testSecret), AdminMiddleware(), whoami)

	w := do(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"authentication required"}`, w.Body.String())

	w = do(r, http.MethodGet, "/me", map[string]string{"Authorization": "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + token(t, 4, models.RoleAgent)[1:]})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/me", map[string]string{"Authorization": "bearer " + token(t, 4, models.RoleAgent)})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":4,"role":"agent"}`, w.Body.String())

	w = do(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + token(t, 4, models.RoleAgent)})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + token(t, 1, models.RoleAdmin)})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/list", OptionalAuthMiddleware(testSecret), whoami)

	w := do(r, http.MethodGet, "/list", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"anonymous":true}`, w.Body.String())

	w = do(r, http.MethodGet, "/list", map[string]string{"Authorization": "Bearer " + token(t, 2, models.RoleAdmin)})
	assert.JSONEq(t, `{"id":2,"role":"admin"}`, w.Body.String())

	w = do(r, http.MethodGet, "/list", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://salemre.example.com/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/x", map[string]string{"Origin": "https://salemre.example.com"})
	assert.Equal(t, "https://salemre.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/x", map[string]string{"Origin": "https://evil.example.com"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodOptions, "/x", map[string]string{"Origin": "https://salemre.example.com"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	open := gin.New()
	open.Use(CORSMiddleware([]string{"*"}))
	open.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = do(open, http.MethodGet, "/x", map[string]string{"Origin": "https://any.example.com"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiterMiddleware(0.001, 2)
	defer rl.Close()

	r := gin.New()
	r.Use(rl.Limit())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", nil).Code)
	w := do(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	assert.Equal(t, 1, rl.evictIdle(time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", nil).Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiterMiddleware(0, 1)
	defer rl.Close()

	r := gin.New()
	r.Use(rl.Limit())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", nil).Code)
	}
}

func captchaEngine(v *MockVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/inquiries", CaptchaMiddleware(&config.Config{CaptchaTokenTTL: time.Minute}, v), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestCaptchaMiddleware(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		v := new(MockVerifier)
		v.On("Enabled").Return(false)
		w := do(captchaEngine(v), http.MethodPost, "/inquiries", nil)
		assert.Equal(t, http.StatusCreated, w.Code)
		v.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("valid human token", func(t *testing.T) {
		v := new(MockVerifier)
		v.On("Enabled").Return(true)
		v.On("ValidateHumanToken", "human", mock.Anything).Return(true)
		w := do(captchaEngine(v), http.MethodPost, "/inquiries", map[string]string{HeaderHumanToken: "human"})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("challenge passes and issues token", func(t *testing.T) {
		v := new(MockVerifier)
		v.On("Enabled").Return(true)
		v.On("Verify", mock.Anything, "challenge", mock.Anything).Return(true, nil)
		v.On("GenerateHumanToken", mock.Anything, time.Minute).Return("fresh", nil)
		w := do(captchaEngine(v), http.MethodPost, "/inquiries", map[string]string{HeaderChallenge: "challenge"})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "fresh", w.Header().Get(HeaderHumanToken))
	})

	t.Run("challenge fails", func(t *testing.T) {
		v := new(MockVerifier)
		v.On("Enabled").Return(true)
		v.On("Verify", mock.Anything, "", mock.Anything).Return(false, nil)
		w := do(captchaEngine(v), http.MethodPost, "/inquiries", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("verifier error", func(t *testing.T) {
		v := new(MockVerifier)
		v.On("Enabled").Return(true)
		v.On("Verify", mock.Anything, "x", mock.Anything).Return(false, errors.New("timeout"))
		w := do(captchaEngine(v), http.MethodPost, "/inquiries", map[string]string{HeaderChallenge: "x"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("db exploded"))
		c.Status(http.StatusInternalServerError)
	})

	w := do(r, http.MethodGet, "/boom", map[string]string{HeaderRequestID: "req-1"})
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "db exploded", line["error"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.EqualValues(t, 500, line["status"])

	buf.Reset()
	w = do(r, http.MethodGet, "/boom", nil)
	assert.Len(t, w.Header().Get(HeaderRequestID), 10)
}
