package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// HTTP aggregates request counters for the /health endpoint.
type HTTP struct {
	Requests     Counter
	ClientErrors Counter
	ServerErrors Counter
}

// Observe records one finished request by status code.
func (h *HTTP) Observe(status int) {
	h.Requests.Inc()
	switch {
	case status >= 500:
		h.ServerErrors.Inc()
	case status >= 400:
		h.ClientErrors.Inc()
	}
}

// Snapshot is a point-in-time read of the counters.
type Snapshot struct {
	Requests     uint64 `json:"requests"`
	ClientErrors uint64 `json:"client_errors"`
	ServerErrors uint64 `json:"server_errors"`
}

func (h *HTTP) Snapshot() Snapshot {
	return Snapshot{
		Requests:     h.Requests.Load(),
		ClientErrors: h.ClientErrors.Load(),
		ServerErrors: h.ServerErrors.Load(),
	}
}
