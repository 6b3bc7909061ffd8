package accessor

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
)

// ErrNilType reports a resolution attempt against a nil type.
var ErrNilType = errors.New("accessor: nil type")

type cacheKey struct {
	t        reflect.Type
	property string
}

type cacheEntry struct {
	acc *Accessor
	err error
}

// Resolver memoizes accessor resolution per (concrete type, property)
// pair. Failures are cached too, so an unsupported pair pays the
// reflection cost once. Safe for concurrent use from any number of
// chain activations.
//
// Most callers share Default; tests that need isolation construct their
// own.
type Resolver struct {
	mu       sync.RWMutex
	cache    map[cacheKey]*cacheEntry
	resolved atomic.Int64
}

// Default is the process-wide resolver. Entries are pure functions of
// immutable type metadata, so it is never evicted.
var Default = NewResolver()

func NewResolver() *Resolver {
	return &Resolver{
		cache: map[cacheKey]*cacheEntry{},
	}
}

// Register installs a precompiled accessor for the pair, bypassing the
// reflection fallback.
func (r *Resolver) Register(t reflect.Type, property string, acc *Accessor) {
	r.mu.Lock()
	r.cache[cacheKey{t, property}] = &cacheEntry{acc: acc}
	r.mu.Unlock()
}

// Resolve returns the accessor for property on the concrete type t,
// resolving via reflection on the first call for the pair and from the
// cache on every later one.
func (r *Resolver) Resolve(t reflect.Type, property string) (*Accessor, error) {
	if t == nil {
		return nil, ErrNilType
	}
	key := cacheKey{t, property}

	r.mu.RLock()
	e, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return e.acc, e.err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.cache[key]; ok {
		return e.acc, e.err
	}
	acc, err := resolve(t, property)
	r.resolved.Add(1)
	r.cache[key] = &cacheEntry{acc: acc, err: err}
	return acc, err
}

// Resolutions reports how many reflective resolutions have actually
// run, as opposed to cache hits.
func (r *Resolver) Resolutions() int64 {
	return r.resolved.Load()
}
