package scheduler

import "sync/atomic"

// Stats holds run counters updated by the control loop and read concurrently
// by the status API while a crawl is active.
type Stats struct {
	dispatched atomic.Int64
	succeeded  atomic.Int64
	failed     atomic.Int64
	retries    atomic.Int64
	inFlight   atomic.Int64
}

// Snapshot is a point-in-time copy of the run counters.
type Snapshot struct {
	Dispatched int64 `json:"dispatched"`
	Succeeded  int64 `json:"succeeded"`
	Failed     int64 `json:"failed"`
	Retries    int64 `json:"retries"`
	InFlight   int64 `json:"in_flight"`
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Dispatched: s.dispatched.Load(),
		Succeeded:  s.succeeded.Load(),
		Failed:     s.failed.Load(),
		Retries:    s.retries.Load(),
		InFlight:   s.inFlight.Load(),
	}
}
