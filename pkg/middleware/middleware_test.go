package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/optionsdesk/pkg/auth"
	"github.com/wyfcoding/optionsdesk/pkg/config"
	"github.com/wyfcoding/optionsdesk/pkg/ratelimit"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/", handlers...)
	g.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, strconv.FormatUint(uint64(CurrentUserID(c)), 10))
	})
	g.GET("/items/:id", func(c *gin.Context) {
		id, err := ParamID(c, "id")
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusOK, strconv.FormatUint(uint64(id), 10))
	})
	return r
}

func get(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentityMiddleware_Header(t *testing.T) {
	r := newEngine(IdentityMiddleware(nil, ""))

	w := get(r, "/whoami", map[string]string{"X-User-ID": "12"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12", w.Body.String())

	for _, v := range []string{"", "0", "-3", "abc"} {
		w = get(r, "/whoami", map[string]string{"X-User-ID": v})
		assert.Equal(t, http.StatusUnauthorized, w.Code, v)
	}
}

func TestIdentityMiddleware_Bearer(t *testing.T) {
	verifier := &auth.JWT{Secret: []byte("s3cret"), TokenTTL: time.Minute}
	r := newEngine(IdentityMiddleware(verifier, "X-User-ID"))

	token, err := verifier.Sign(9, "")
	require.NoError(t, err)

	w := get(r, "/whoami", map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "9", w.Body.String())

	// 配置密钥后不再信任用户头
	w = get(r, "/whoami", map[string]string{"X-User-ID": "9"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/whoami", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, QPS: 1, Burst: 2}
	r := newEngine(IdentityMiddleware(nil, ""), RateLimitMiddleware(ratelimit.NewLocalRateLimiter(), cfg))
	user := map[string]string{"X-User-ID": "1"}

	assert.Equal(t, http.StatusOK, get(r, "/whoami", user).Code)
	assert.Equal(t, http.StatusOK, get(r, "/whoami", user).Code)

	w := get(r, "/whoami", user)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// 按用户分桶
	assert.Equal(t, http.StatusOK, get(r, "/whoami", map[string]string{"X-User-ID": "2"}).Code)

	cfg.Enabled = false
	open := newEngine(IdentityMiddleware(nil, ""), RateLimitMiddleware(ratelimit.NewLocalRateLimiter(), cfg))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(open, "/whoami", user).Code)
	}
}

func TestParamID(t *testing.T) {
	r := newEngine()

	w := get(r, "/items/15", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "15", w.Body.String())

	for _, p := range []string{"0", "abc", "-1"} {
		w = get(r, "/items/"+p, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, p)
	}
}
