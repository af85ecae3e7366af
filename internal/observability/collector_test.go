package observability

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorSummary(t *testing.T) {
	c := NewCollector()

	c.ObserveRequest("GET", "/tasks", 200, 20*time.Millisecond, false)
	c.ObserveRequest("GET", "/projects", 200, 50*time.Millisecond, true)
	c.ObserveRequest("POST", "/tasks", 500, 10*time.Millisecond, false)
	c.ObserveRequest("GET", "/templates", 0, 5*time.Millisecond, false)

	s := c.Summary()
	assert.Equal(t, 4, s.Requests)
	assert.Equal(t, 2, s.Failures, "network failure and 5xx both count")
	assert.Equal(t, 1, s.CacheHits)
	assert.Equal(t, 85*time.Millisecond, s.TotalTime)
	assert.Equal(t, "GET /projects", s.SlowestTo)
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.ObserveRequest("GET", "/projects/1/tasks", 200, time.Millisecond, false)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, c.Summary().Requests)
}

func TestWriteReport(t *testing.T) {
	c := NewCollector()

	var empty strings.Builder
	c.WriteReport(&empty)
	assert.Contains(t, empty.String(), "no API requests")

	c.ObserveRequest("GET", "/tasks", 200, 12*time.Millisecond, false)
	var b strings.Builder
	c.WriteReport(&b)
	assert.Contains(t, b.String(), "1 request(s)")
	assert.Contains(t, b.String(), "GET /tasks")
}
