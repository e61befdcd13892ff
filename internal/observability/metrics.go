package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for outbound API requests.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	totalDuration map[string]time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		totalDuration: make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for a completed request. Transport
// failures are recorded with status 0.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.totalDuration[key] += duration
}

// RequestSample is one aggregated counter row.
type RequestSample struct {
	Key           string
	Count         int64
	TotalDuration time.Duration
}

// Snapshot returns the counters in stable order, for logging at shutdown.
func (m *Metrics) Snapshot() []RequestSample {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	samples := make([]RequestSample, 0, len(m.requestCount))
	for key, count := range m.requestCount {
		samples = append(samples, RequestSample{
			Key:           key,
			Count:         count,
			TotalDuration: m.totalDuration[key],
		})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Key < samples[j].Key })
	return samples
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
