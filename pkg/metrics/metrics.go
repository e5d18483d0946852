package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// Metrics holds request counters and route guard outcomes.
// Thread-safe via atomics and mutex.
type Metrics struct {
	TotalRequests     int64
	ActiveRequests    int64
	TotalErrors       int64
	TotalLatencyMs    int64
	MaxLatencyMs      int64
	StartTime         time.Time
	EndpointCounts    map[string]int64
	EndpointLatencies map[string]int64 // total ms per endpoint
	StatusCodes       map[int]int64
	GuardOutcomes     map[string]int64
	mu                sync.Mutex
}

// New creates an empty metrics set
func New() *Metrics {
	return &Metrics{
		StartTime:         time.Now(),
		EndpointCounts:    make(map[string]int64),
		EndpointLatencies: make(map[string]int64),
		StatusCodes:       make(map[int]int64),
		GuardOutcomes:     make(map[string]int64),
	}
}

// RecordGuard counts one route guard decision
func (m *Metrics) RecordGuard(outcome string) {
	m.mu.Lock()
	m.GuardOutcomes[outcome]++
	m.mu.Unlock()
}

// Middleware tracks request count, latency, active connections, and error rates
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&m.ActiveRequests, 1)
			start := time.Now()

			err := next(c)

			latencyMs := time.Since(start).Milliseconds()
			atomic.AddInt64(&m.ActiveRequests, -1)
			atomic.AddInt64(&m.TotalRequests, 1)
			atomic.AddInt64(&m.TotalLatencyMs, latencyMs)

			// Update max latency (lock-free CAS loop)
			for {
				current := atomic.LoadInt64(&m.MaxLatencyMs)
				if latencyMs <= current {
					break
				}
				if atomic.CompareAndSwapInt64(&m.MaxLatencyMs, current, latencyMs) {
					break
				}
			}

			// Let the error handler commit the response so the recorded status
			// is the one the client sees.
			if err != nil {
				c.Error(err)
				err = nil
			}
			statusCode := c.Response().Status
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			endpoint := fmt.Sprintf("%s %s", c.Request().Method, path)

			m.mu.Lock()
			m.EndpointCounts[endpoint]++
			m.EndpointLatencies[endpoint] += latencyMs
			m.StatusCodes[statusCode]++
			if statusCode >= 400 {
				atomic.AddInt64(&m.TotalErrors, 1)
			}
			m.mu.Unlock()

			return err
		}
	}
}

// Snapshot is a point-in-time copy of the counters
type Snapshot struct {
	TotalRequests  int64            `json:"total_requests"`
	ActiveRequests int64            `json:"active_requests"`
	TotalErrors    int64            `json:"total_errors"`
	ErrorRate      float64          `json:"error_rate_pct"`
	AvgLatencyMs   float64          `json:"avg_latency_ms"`
	MaxLatencyMs   int64            `json:"max_latency_ms"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
	EndpointCounts map[string]int64 `json:"endpoint_counts"`
	EndpointAvgMs  map[string]int64 `json:"endpoint_avg_latency_ms"`
	StatusCodes    map[int]int64    `json:"status_codes"`
	GuardOutcomes  map[string]int64 `json:"guard_outcomes"`
}

// Snapshot copies the current counters
func (m *Metrics) Snapshot() Snapshot {
	total := atomic.LoadInt64(&m.TotalRequests)
	errors := atomic.LoadInt64(&m.TotalErrors)
	totalLatency := atomic.LoadInt64(&m.TotalLatencyMs)

	var avgLatency, errorRate float64
	if total > 0 {
		avgLatency = float64(totalLatency) / float64(total)
		errorRate = float64(errors) / float64(total) * 100
	}

	m.mu.Lock()
	endpointCounts := make(map[string]int64, len(m.EndpointCounts))
	endpointAvg := make(map[string]int64, len(m.EndpointLatencies))
	for k, v := range m.EndpointCounts {
		endpointCounts[k] = v
		if v > 0 {
			endpointAvg[k] = m.EndpointLatencies[k] / v
		}
	}
	statusCodes := make(map[int]int64, len(m.StatusCodes))
	for k, v := range m.StatusCodes {
		statusCodes[k] = v
	}
	guardOutcomes := make(map[string]int64, len(m.GuardOutcomes))
	for k, v := range m.GuardOutcomes {
		guardOutcomes[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		TotalRequests:  total,
		ActiveRequests: atomic.LoadInt64(&m.ActiveRequests),
		TotalErrors:    errors,
		ErrorRate:      errorRate,
		AvgLatencyMs:   avgLatency,
		MaxLatencyMs:   atomic.LoadInt64(&m.MaxLatencyMs),
		UptimeSeconds:  time.Since(m.StartTime).Seconds(),
		EndpointCounts: endpointCounts,
		EndpointAvgMs:  endpointAvg,
		StatusCodes:    statusCodes,
		GuardOutcomes:  guardOutcomes,
	}
}

// Handler serves the snapshot as JSON
func (m *Metrics) Handler(c echo.Context) error {
	return c.JSON(http.StatusOK, m.Snapshot())
}
