// Package hilo implements the high/low unique ID allocator.
//
// A Registry hands out IDs per entity name (usually a table name). Each
// entity reserves a block of IDs with one atomic round trip to a Store and
// serves the block from memory until it is exhausted:
//
//	store := hilo.NewSQLStore(drv)
//	reg, err := hilo.NewRegistry(store, hilo.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	id, err := reg.NextID(ctx, "employees")
//
// IDs are unique across every registry sharing the same counter rows. Within
// one registry the IDs of an entity are strictly increasing.
package hilo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/syssam/tablegen"
)

// ErrNoCounter is returned by stores when no counter row exists for an entity.
var ErrNoCounter = errors.New("hilo: no counter row")

// Store is the shared backing store of the counter rows.
//
// Reserve must atomically read the counter and block size of the entity,
// persist counter+1 and return the counter as it was before the increment.
// Concurrent callers for the same entity, in this or any other process,
// must never observe the same counter value.
type Store interface {
	Reserve(ctx context.Context, entity string) (counter, skip int64, err error)
}

// Seeder is implemented by stores that can create counter rows.
type Seeder interface {
	// Seed creates the counter row of entity if it does not exist and
	// reports whether a row was created.
	Seed(ctx context.Context, entity string, counter, skip int64) (bool, error)
}

// Registry owns one counter cache per entity. It is created once at process
// start, populated on demand and never reset.
type Registry struct {
	store   Store
	id      string
	logger  *slog.Logger
	metrics *metrics
	reg     prometheus.Registerer

	// mu guards cache creation only. Lookups of existing caches go
	// through the sync.Map without it.
	mu     sync.Mutex
	caches sync.Map // map[string]*counterCache
}

// counterCache is the in-process state of one entity. The zero value is
// exhausted, so the first NextID call reserves a block.
type counterCache struct {
	mu   sync.Mutex
	high int64
	low  int64
	size int64
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for refill and failure events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics registers the allocator metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Registry) {
		r.reg = reg
	}
}

// NewRegistry returns an empty registry backed by store.
func NewRegistry(store Store, opts ...Option) (*Registry, error) {
	if store == nil {
		return nil, tablegen.NewConfigError("store", nil, "counter store is required")
	}
	r := &Registry{
		store:  store,
		id:     uuid.NewString(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.reg != nil {
		m, err := newMetrics(r.reg)
		if err != nil {
			return nil, fmt.Errorf("hilo: register metrics: %w", err)
		}
		r.metrics = m
	}
	r.logger = r.logger.With("registry", r.id)
	return r, nil
}

// ID returns the instance id of the registry, used to tell processes apart
// in logs.
func (r *Registry) ID() string {
	return r.id
}

// NextID returns an ID for entity that was never returned before by any
// registry sharing the same store. It fails if a block refill is needed and
// the store round trip fails; the cache then stays exhausted and the next
// call retries the refill.
func (r *Registry) NextID(ctx context.Context, entity string) (int64, error) {
	if entity == "" {
		return 0, tablegen.NewConfigError("entity", nil, "entity name must not be empty")
	}
	c := r.cache(entity)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.low >= c.size {
		if err := r.refill(ctx, entity, c); err != nil {
			return 0, err
		}
	}
	id := c.high + c.low
	c.low++
	r.metrics.dispensed(entity)
	return id, nil
}

// cache returns the cache of entity, creating it on first use.
func (r *Registry) cache(entity string) *counterCache {
	if c, ok := r.caches.Load(entity); ok {
		return c.(*counterCache)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.caches.Load(entity); ok {
		return c.(*counterCache)
	}
	c := &counterCache{}
	r.caches.Store(entity, c)
	return c
}

// refill reserves the next block. It must be called with c.mu held and only
// mutates c on success.
func (r *Registry) refill(ctx context.Context, entity string, c *counterCache) error {
	start := time.Now()
	counter, skip, err := r.reserve(ctx, entity)
	r.metrics.observe(entity, time.Since(start))
	if err != nil {
		r.metrics.failed(entity)
		r.logger.WarnContext(ctx, "hilo block refill failed", "entity", entity, "error", err)
		return err
	}
	c.high, c.low, c.size = counter*skip, 0, skip
	r.metrics.refilled(entity)
	r.logger.DebugContext(ctx, "hilo block reserved",
		"entity", entity, "counter", counter, "skip", skip,
		"first", c.high, "last", c.high+skip-1,
	)
	return nil
}

func (r *Registry) reserve(ctx context.Context, entity string) (int64, int64, error) {
	counter, skip, err := r.store.Reserve(ctx, entity)
	switch {
	case errors.Is(err, tablegen.ErrInvalidConfiguration), errors.Is(err, tablegen.ErrBackingStore):
		return 0, 0, err
	case err != nil:
		return 0, 0, tablegen.NewStoreError(entity, "reserve", err)
	case skip <= 0:
		return 0, 0, tablegen.NewConfigError("skip", skip, fmt.Sprintf("block size of entity %q must be positive", entity))
	case counter < 0 || counter > (math.MaxInt64-skip)/skip:
		return 0, 0, tablegen.NewStoreError(entity, "reserve", fmt.Errorf("counter %d with block size %d is out of range", counter, skip))
	}
	return counter, skip, nil
}

// ValidateSkip reports a configuration error for non-positive block sizes.
func ValidateSkip(entity string, skip int64) error {
	if skip <= 0 {
		return tablegen.NewConfigError("skip", skip, fmt.Sprintf("block size of entity %q must be positive", entity))
	}
	return nil
}
