package monthcache

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Registry owns one Cache per signed-in user.
type Registry struct {
	sources  Sources
	location *time.Location
	logger   *log.Logger

	mu     sync.Mutex
	caches map[uint]*Cache
}

func NewRegistry(sources Sources, location *time.Location, logger *log.Logger) *Registry {
	return &Registry{
		sources:  sources,
		location: location,
		logger:   logger,
		caches:   make(map[uint]*Cache),
	}
}

func (registry *Registry) ForUser(userID uint) *Cache {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	cache, ok := registry.caches[userID]
	if !ok {
		cache = New(userID, registry.sources, registry.location, registry.logger.With("user_id", userID))
		registry.caches[userID] = cache
	}
	return cache
}

// Drop forgets the user's cache, as on logout.
func (registry *Registry) Drop(userID uint) {
	registry.mu.Lock()
	delete(registry.caches, userID)
	registry.mu.Unlock()
}

// InvalidateUser marks the user's cache stale if one exists.
func (registry *Registry) InvalidateUser(userID uint) {
	registry.mu.Lock()
	cache, ok := registry.caches[userID]
	registry.mu.Unlock()
	if ok {
		cache.Invalidate()
	}
}
