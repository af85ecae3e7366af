// Package observability collects per-invocation request statistics.
package observability

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Collector records API request outcomes. It implements the client's
// request observer and is safe for concurrent use, since the progress
// aggregator issues requests from multiple goroutines.
type Collector struct {
	mu sync.Mutex

	requests  int
	failures  int
	cacheHits int
	total     time.Duration
	slowest   time.Duration
	slowestTo string
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// ObserveRequest records one completed request.
func (c *Collector) ObserveRequest(method, url string, status int, elapsed time.Duration, fromCache bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests++
	c.total += elapsed
	if status == 0 || status >= 400 {
		c.failures++
	}
	if fromCache {
		c.cacheHits++
	}
	if elapsed > c.slowest {
		c.slowest = elapsed
		c.slowestTo = method + " " + url
	}
}

// Summary is a snapshot of collected stats.
type Summary struct {
	Requests  int           `json:"requests"`
	Failures  int           `json:"failures"`
	CacheHits int           `json:"cache_hits"`
	TotalTime time.Duration `json:"total_time"`
	Slowest   time.Duration `json:"slowest"`
	SlowestTo string        `json:"slowest_to,omitempty"`
}

// Summary returns the current snapshot.
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Summary{
		Requests:  c.requests,
		Failures:  c.failures,
		CacheHits: c.cacheHits,
		TotalTime: c.total,
		Slowest:   c.slowest,
		SlowestTo: c.slowestTo,
	}
}

// WriteReport prints a human-readable stats report.
func (c *Collector) WriteReport(w io.Writer) {
	s := c.Summary()
	if s.Requests == 0 {
		fmt.Fprintln(w, "no API requests made")
		return
	}

	fmt.Fprintf(w, "%d request(s), %d failed, %d served from cache\n",
		s.Requests, s.Failures, s.CacheHits)
	fmt.Fprintf(w, "total API time %v", s.TotalTime.Round(time.Millisecond))
	if s.SlowestTo != "" {
		fmt.Fprintf(w, ", slowest %v (%s)", s.Slowest.Round(time.Millisecond), s.SlowestTo)
	}
	fmt.Fprintln(w)
}
