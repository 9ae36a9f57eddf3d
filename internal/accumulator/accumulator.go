// Package accumulator holds the shared cross-test probe map. Readers take
// immutable snapshots; writers merge into a private copy and install it with
// compare-and-swap, retrying on contention. No lock is held while merging.
package accumulator

import (
	"log/slog"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"

	"probecov/internal/probes"
	"probecov/internal/slogutil"
)

// Snapshot is an immutable view of accumulated records.
type Snapshot struct {
	Version uint64
	records probes.ExecMap
}

// Len returns the number of accumulated classes.
func (s *Snapshot) Len() int {
	return len(s.records)
}

// Get returns the accumulated record for a key.
func (s *Snapshot) Get(key int64) (probes.ExecClassData, bool) {
	r, ok := s.records[key]
	return r, ok
}

// Keys returns the record keys in ascending order.
func (s *Snapshot) Keys() []int64 {
	keys := make([]int64, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Records returns the accumulated records ordered by class name.
func (s *Snapshot) Records() []probes.ExecClassData {
	return s.records.Records()
}

// Accumulator is safe for concurrent use.
type Accumulator struct {
	id      string
	current atomic.Pointer[Snapshot]
	logger  *slog.Logger
}

// New creates an empty accumulator. A nil logger discards output.
func New(logger *slog.Logger) *Accumulator {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	a := &Accumulator{id: uuid.NewString()}
	a.logger = logger.With("accumulator", a.id)
	a.current.Store(&Snapshot{records: probes.ExecMap{}})
	return a
}

// ID identifies this accumulator instance.
func (a *Accumulator) ID() string {
	return a.id
}

// Snapshot returns the current consistent view.
func (a *Accumulator) Snapshot() *Snapshot {
	return a.current.Load()
}

// Submit merges records into the shared map and returns the installed version.
// An empty submission leaves the version unchanged.
func (a *Accumulator) Submit(records ...probes.ExecClassData) uint64 {
	if len(records) == 0 {
		return a.current.Load().Version
	}
	for attempt := 0; ; attempt++ {
		base := a.current.Load()
		merged := probes.MergeAll(base.records, records)
		next := &Snapshot{Version: base.Version + 1, records: merged}
		if a.current.CompareAndSwap(base, next) {
			if attempt > 0 {
				a.logger.Debug("Submit installed after retries",
					"retries", attempt,
					"version", next.Version,
				)
			}
			return next.Version
		}
	}
}

// Reset drops all accumulated records.
func (a *Accumulator) Reset() uint64 {
	for {
		base := a.current.Load()
		next := &Snapshot{Version: base.Version + 1, records: probes.ExecMap{}}
		if a.current.CompareAndSwap(base, next) {
			a.logger.Debug("Accumulator reset", "version", next.Version)
			return next.Version
		}
	}
}
