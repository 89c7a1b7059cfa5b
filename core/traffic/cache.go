package traffic

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/evplanner/core/logger"
	coremetrics "github.com/kilianp07/evplanner/core/metrics"
	"github.com/kilianp07/evplanner/core/model"
)

// DefaultTTL is how long a snapshot stays valid.
const DefaultTTL = 2 * time.Minute

type entry struct {
	snapshot model.TrafficSnapshot
	stored   time.Time
}

// Cache is a TTL-bounded map of snapshots keyed by rounded coordinates.
// Concurrent refreshes of the same key are allowed; the last writer wins.
type Cache struct {
	src  Source
	ttl  time.Duration
	now  func() time.Time
	rec  coremetrics.TrafficRecorder
	log  logger.Logger
	mu   sync.Mutex
	data map[string]entry
}

// Option customises a Cache.
type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithRecorder reports hits and misses to rec.
func WithRecorder(rec coremetrics.TrafficRecorder) Option {
	return func(c *Cache) { c.rec = rec }
}

// WithLogger sets the cache logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// NewCache returns a Cache over src. A non-positive ttl selects DefaultTTL.
func NewCache(src Source, ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		src:  src,
		ttl:  ttl,
		now:  time.Now,
		rec:  coremetrics.NopSink{},
		log:  logger.Nop{},
		data: make(map[string]entry),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Key rounds both coordinates to three decimals (about 110 m).
func Key(origin, destination model.LatLng) string {
	return fmt.Sprintf("%.3f,%.3f:%.3f,%.3f", origin.Lat, origin.Lng, destination.Lat, destination.Lng)
}

// Get returns the cached snapshot when younger than the TTL. Otherwise it
// fetches a new one and overwrites the slot. A failed fetch leaves the
// previous entry untouched and is returned to the caller.
func (c *Cache) Get(ctx context.Context, origin, destination model.LatLng) (model.TrafficSnapshot, error) {
	key := Key(origin, destination)
	now := c.now()

	c.mu.Lock()
	e, ok := c.data[key]
	c.mu.Unlock()
	if ok && now.Sub(e.stored) < c.ttl {
		c.record(key, true, e.snapshot)
		return e.snapshot, nil
	}

	snap, err := c.src.Fetch(ctx, origin, destination)
	if err != nil {
		return model.TrafficSnapshot{}, fmt.Errorf("fetch traffic %s: %w", key, err)
	}
	c.mu.Lock()
	c.data[key] = entry{snapshot: snap, stored: c.now()}
	c.mu.Unlock()
	c.log.Debugw("traffic refreshed", map[string]any{"key": key, "congestion": string(snap.CongestionLevel), "delay_min": snap.CurrentDelayMin})
	c.record(key, false, snap)
	return snap, nil
}

// Len reports the number of slots, fresh or stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

func (c *Cache) record(key string, hit bool, s model.TrafficSnapshot) {
	ev := coremetrics.TrafficEvent{Key: key, Hit: hit, Congestion: s.CongestionLevel, DelayMin: s.CurrentDelayMin, Time: c.now()}
	if err := c.rec.RecordTraffic(ev); err != nil {
		c.log.Warnf("record traffic: %v", err)
	}
}
