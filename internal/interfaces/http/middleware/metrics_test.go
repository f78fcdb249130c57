package middleware

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	mu       sync.Mutex
	started  int
	finished []recordedRequest
}

func (f *fakeRecorder) RequestStarted() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
}

func (f *fakeRecorder) RequestFinished(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, recordedRequest{method, route, status})
}

func TestMetrics(t *testing.T) {
	rec := &fakeRecorder{}
	router := gin.New()
	router.Use(Metrics(rec))
	router.GET("/api/v1/chemical/get/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	serve(router, http.MethodGet, "/api/v1/chemical/get/123")
	serve(router, http.MethodGet, "/nope")

	require.Len(t, rec.finished, 2)
	assert.Equal(t, 2, rec.started)
	assert.Equal(t, recordedRequest{"GET", "/api/v1/chemical/get/:id", http.StatusOK}, rec.finished[0])
	assert.Equal(t, recordedRequest{"GET", "unmatched", http.StatusNotFound}, rec.finished[1])
}
