package mw

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestCache(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	hits := 0

	r := gin.New()
	r.Use(Cache(store, time.Minute))
	r.GET("/api/laptops", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"hits": hits})
	})
	r.POST("/api/laptops", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	r.POST("/api/broken", func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	first := do(r, http.MethodGet, "/api/laptops")
	assert.Equal(t, `{"hits":1}`, first.Body.String())

	second := do(r, http.MethodGet, "/api/laptops")
	assert.Equal(t, `{"hits":1}`, second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))

	// A failed write leaves the cache alone.
	do(r, http.MethodPost, "/api/broken")
	assert.Equal(t, `{"hits":1}`, do(r, http.MethodGet, "/api/laptops").Body.String())

	// A successful write invalidates it.
	do(r, http.MethodPost, "/api/laptops")
	assert.Equal(t, `{"hits":2}`, do(r, http.MethodGet, "/api/laptops").Body.String())
}

func TestCache_DropsReadOverlappingWrite(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	var (
		mu      sync.Mutex
		version = 1
	)
	entered := make(chan struct{})
	release := make(chan struct{})

	r := gin.New()
	r.Use(Cache(store, time.Minute))
	r.GET("/api/laptops", func(c *gin.Context) {
		mu.Lock()
		seen := version
		mu.Unlock()
		if c.Query("slow") != "" {
			close(entered)
			<-release
		}
		c.JSON(http.StatusOK, gin.H{"version": seen})
	})
	r.POST("/api/laptops", func(c *gin.Context) {
		mu.Lock()
		version++
		mu.Unlock()
		c.Status(http.StatusCreated)
	})

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- do(r, http.MethodGet, "/api/laptops?slow=1") }()
	<-entered

	// The write lands while the read above still holds version 1.
	do(r, http.MethodPost, "/api/laptops")
	close(release)
	assert.Equal(t, `{"version":1}`, (<-done).Body.String())

	_, found := store.Get("/api/laptops?slow=1")
	assert.False(t, found)
	assert.Equal(t, `{"version":2}`, do(r, http.MethodGet, "/api/laptops").Body.String())
}

func TestCache_SkipsErrors(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	calls := 0

	r := gin.New()
	r.Use(Cache(store, time.Minute))
	r.GET("/missing", func(c *gin.Context) {
		calls++
		c.Status(http.StatusNotFound)
	})

	do(r, http.MethodGet, "/missing")
	do(r, http.MethodGet, "/missing")
	assert.Equal(t, 2, calls)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(1), 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/").Code)
	limited := do(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Contains(t, limited.Body.String(), "RateLimited")
}

func TestIPRateLimiter_PerIP(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 1)
	assert.Same(t, l.GetLimiter("10.0.0.1"), l.GetLimiter("10.0.0.1"))
	assert.NotSame(t, l.GetLimiter("10.0.0.1"), l.GetLimiter("10.0.0.2"))
}
