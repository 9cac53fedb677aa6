package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/zapan/eventbus/internal/domain/event"
)

// Registry holds the routing-key -> event-type map. It is built once from
// an explicit candidate source (or loaded from the cache) and rebuilt only
// via Regenerate.
type Registry struct {
	mu     sync.RWMutex
	source event.Source
	filter *Filter
	cache  *Cache

	entries map[string]event.Event
}

// New constructs the registry. When a cache is configured and its file
// exists, the map is loaded from it and no build runs; otherwise the map
// is built from the source and written back to the cache. A configured
// cache path whose containing directory does not exist is a configuration
// error, detected before any scan.
func New(source event.Source, filter *Filter, cache *Cache) (*Registry, error) {
	r := &Registry{
		source: source,
		filter: filter,
		cache:  cache,
	}

	if cache != nil && cache.Path() != "" {
		dir := filepath.Dir(cache.Path())
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("%w: cache directory %s: %v", ErrInvalidConfiguration, dir, err)
		}

		table, err := cache.Load()
		switch {
		case err == nil:
			if entries, ok := r.resolve(table); ok {
				r.entries = entries
				return r, nil
			}
			slog.Warn("registry cache is stale, rebuilding", "path", cache.Path())
		case errors.Is(err, ErrCacheMiss):
			// no cache yet, fall through to a build
		default:
			return nil, err
		}
	}

	if err := r.rebuild(); err != nil {
		return nil, err
	}
	if cache != nil && cache.Path() != "" {
		if err := cache.Save(r.table()); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Get resolves a routing key to its event prototype.
func (r *Registry) Get(routingKey string) (event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ev, ok := r.entries[routingKey]
	if !ok {
		return nil, &UnknownRoutingKeyError{Key: routingKey}
	}
	return ev, nil
}

// All returns a copied snapshot of the map.
func (r *Registry) All() map[string]event.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]event.Event, len(r.entries))
	for key, ev := range r.entries {
		out[key] = ev
	}
	return out
}

// Table returns the routing-key -> type-identifier view of the map, the
// same shape the cache file holds.
func (r *Registry) Table() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table()
}

// Regenerate forces a rebuild from the source and rewrites the cache.
func (r *Registry) Regenerate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.rebuild(); err != nil {
		return err
	}
	if r.cache != nil && r.cache.Path() != "" {
		return r.cache.Save(r.table())
	}
	return nil
}

// rebuild assembles the map from the candidate source. Candidates are
// visited in registration order; on a routing key collision the later
// registration wins, which is deterministic because the source is an
// ordered list. Callers hold the write lock or own r exclusively.
func (r *Registry) rebuild() error {
	entries := make(map[string]event.Event)

	for _, c := range r.source.Candidates() {
		typeID := event.TypeID(c.Prototype)
		if typeID == "" {
			return &UnknownTypeError{TypeID: fmt.Sprintf("%T", c.Prototype), SourcePath: c.SourcePath}
		}
		// A typed-nil pointer still satisfies the Event interface through
		// its value methods but cannot be called.
		if isNilPointer(c.Prototype) {
			return &UnknownTypeError{TypeID: typeID, SourcePath: c.SourcePath}
		}
		if !r.filter.Included(typeID) {
			continue
		}

		ev, ok := c.Prototype.(event.Event)
		if !ok {
			continue
		}
		name := ev.EventName()
		if name == "" {
			return &UnknownTypeError{TypeID: typeID, SourcePath: c.SourcePath}
		}
		entries[name] = ev

		if renamed, ok := c.Prototype.(event.Renamed); ok {
			for _, former := range renamed.FormerNames() {
				if former == "" {
					continue
				}
				entries[former] = ev
			}
		}
	}

	if len(entries) == 0 {
		return ErrNoEventsFound
	}

	r.entries = entries
	return nil
}

// resolve maps a cached table back onto the registered candidates. A
// cached entry whose type identifier is no longer registered marks the
// whole cache stale and triggers a rebuild.
func (r *Registry) resolve(table map[string]string) (map[string]event.Event, bool) {
	byType := make(map[string]event.Event)
	for _, c := range r.source.Candidates() {
		ev, ok := c.Prototype.(event.Event)
		if !ok || isNilPointer(c.Prototype) {
			continue
		}
		byType[event.TypeID(c.Prototype)] = ev
	}

	entries := make(map[string]event.Event, len(table))
	for key, typeID := range table {
		ev, ok := byType[typeID]
		if !ok {
			return nil, false
		}
		entries[key] = ev
	}

	if len(entries) == 0 {
		return nil, false
	}
	return entries, true
}

func (r *Registry) table() map[string]string {
	out := make(map[string]string, len(r.entries))
	for key, ev := range r.entries {
		out[key] = event.TypeID(ev)
	}
	return out
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
