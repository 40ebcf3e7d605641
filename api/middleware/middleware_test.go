package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anoixa/bandpress/api/common"
	"github.com/anoixa/bandpress/database/models"
	"github.com/anoixa/bandpress/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	users map[uint]*models.User
	err   error
}

func (r stubResolver) ResolveUser(_ context.Context, id uint) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.users[id], nil
}

func newTestManager() *session.Manager {
	return session.NewManager(session.Options{Secret: []byte("test"), MaxAge: time.Hour})
}

func sessionCookie(t *testing.T, mgr *session.Manager, uid uint) *http.Cookie {
	t.Helper()
	s := mgr.New()
	s.Login(uid)
	w := httptest.NewRecorder()
	require.NoError(t, s.Save(w))
	return w.Result().Cookies()[0]
}

func newRouter(mgr *session.Manager, resolver UserResolver, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session(mgr), CurrentUser(resolver))
	handlers = append(handlers, func(c *gin.Context) {
		user := common.CurrentUser(c)
		if user == nil {
			common.RespondSuccess(c, "anonymous")
			return
		}
		common.RespondSuccess(c, user.Username)
	})
	r.GET("/", handlers...)
	return r
}

func TestCurrentUser(t *testing.T) {
	mgr := newTestManager()
	resolver := stubResolver{users: map[uint]*models.User{1: {ID: 1, Username: "alice"}}}
	r := newRouter(mgr, resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, mgr, 1))
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"data":"alice"`)
	assert.Empty(t, w.Result().Cookies())

	// 用户已删除：视为匿名并清除 Cookie
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, mgr, 2))
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"data":"anonymous"`)
	require.Len(t, w.Result().Cookies(), 1)
	assert.Equal(t, -1, w.Result().Cookies()[0].MaxAge)
}

func TestCurrentUser_ResolverErrorIsAnonymous(t *testing.T) {
	mgr := newTestManager()
	r := newRouter(mgr, stubResolver{err: errors.New("db down")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, mgr, 1))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":"anonymous"`)
}

func TestRequireLoginAndAdmin(t *testing.T) {
	mgr := newTestManager()
	resolver := stubResolver{users: map[uint]*models.User{
		1: {ID: 1, Username: "alice"},
		2: {ID: 2, Username: "root", IsAdmin: true},
	}}

	tests := []struct {
		name     string
		handler  gin.HandlerFunc
		uid      uint
		wantCode int
		wantLoc  string
	}{
		{"login anonymous", RequireLogin(), 0, http.StatusFound, "/login"},
		{"login user", RequireLogin(), 1, http.StatusOK, ""},
		{"admin anonymous", RequireAdmin(), 0, http.StatusFound, "/login"},
		{"admin non-admin", RequireAdmin(), 1, http.StatusFound, "/"},
		{"admin admin", RequireAdmin(), 2, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(mgr, resolver, tt.handler)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.uid != 0 {
				req.AddCookie(sessionCookie(t, mgr, tt.uid))
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, w.Header().Get("Location"))
				// 提示消息写进了会话 Cookie
				require.NotEmpty(t, w.Result().Cookies())
				s, err := mgr.Decode(w.Result().Cookies()[0].Value)
				require.NoError(t, err)
				require.Len(t, s.Flashes, 1)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestIPRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewIPRateLimiter(0.001, 2, time.Minute)
	defer rl.StopCleanup()

	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(remoteAddr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remoteAddr
		r.ServeHTTP(w, req)
		return w.Code
	}

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, send("10.0.0.1:40000"))
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// 其他 IP 不受影响
	assert.Equal(t, http.StatusOK, send("10.0.0.2:40000"))
}

func TestIPRateLimiter_IgnoresSpoofedForwardHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewIPRateLimiter(0.001, 5, time.Minute)
	defer rl.StopCleanup()

	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))
	r.Use(rl.Middleware())
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	limited := 0
	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "127.0.0.1:50000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.1.0.%d", i))
		r.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 15, limited)

	entries := 0
	rl.limiterMap.Range(func(_, _ interface{}) bool {
		entries++
		return true
	})
	assert.Equal(t, 1, entries)
}

func TestConcurrencyLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cl := NewConcurrencyLimiter(1)
	require.True(t, cl.sem.TryAcquire(1))

	r := gin.New()
	r.Use(cl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	cl.sem.Release(1)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ResetMetrics()

	r := gin.New()
	r.Use(Metrics())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/ok", "/missing", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	m := GetMetrics()
	assert.Equal(t, int64(4), m["request_count"])
	assert.Equal(t, int64(1), m["client_errors"])
	assert.Equal(t, int64(1), m["server_errors"])

	r.GET("/metrics/prometheus", PrometheusHandler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics/prometheus", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `bandpress_http_requests_total{method="GET",route="/ok",status="200"} 2`)
	assert.Contains(t, body, `bandpress_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, body, "bandpress_http_request_duration_seconds_bucket")
}
