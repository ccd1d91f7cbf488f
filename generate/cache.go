package generate

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// BuildFunc constructs a Generator for one model spec.
type BuildFunc func(spec ModelSpec) (Generator, error)

// Cache owns the live generation clients, keyed by model name. Clients are
// built lazily on first use and torn down together on Close. The cache is
// explicit process state, passed to whoever needs it.
type Cache struct {
	mu      sync.Mutex
	clients map[string]Generator
	build   BuildFunc
	logger  *zap.Logger
}

func NewCache(build BuildFunc, logger *zap.Logger) *Cache {
	return &Cache{
		clients: make(map[string]Generator),
		build:   build,
		logger:  logger,
	}
}

// Get returns the cached client for the spec, building it on first use.
func (c *Cache) Get(spec ModelSpec) (Generator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[spec.Name]; ok {
		return client, nil
	}

	c.logger.Info("initializing model client", zap.String("model", spec.Name))
	client, err := c.build(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to build client for model %s: %w", spec.Name, err)
	}
	c.clients[spec.Name] = client
	return client, nil
}

// Cached lists the names of models with live clients.
func (c *Cache) Cached() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.clients))
	for name := range c.clients {
		names = append(names, name)
	}
	return names
}

// Close tears down every live client. The cache is unusable afterwards.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for name, client := range c.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close client %s: %w", name, err)
		}
		delete(c.clients, name)
	}
	return firstErr
}
