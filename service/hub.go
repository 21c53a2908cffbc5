package service

import (
	"fmt"
	"sync"
)

// Hub owns service instances and runs their lifecycle in dependency
// order, rolling back on partial failure
type Hub struct {
	mu       sync.RWMutex
	services map[string]Service
	order    []string
	started  []string
}

func NewHub() *Hub {
	return &Hub{services: make(map[string]Service)}
}

// Register adds a service. Duplicate names are rejected.
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, dup := h.services[name]; dup {
		return fmt.Errorf("service already registered: %s", name)
	}
	h.services[name] = svc
	h.order = nil
	return nil
}

// Get retrieves a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	svc, ok := h.services[name]
	return svc, ok
}

// MustGet retrieves a service and asserts its concrete type.
// Panics on a missing service or type mismatch.
func MustGet[T any](h *Hub, name string) T {
	h.mu.RLock()
	svc, ok := h.services[name]
	h.mu.RUnlock()

	if !ok {
		panic(fmt.Sprintf("service not found: %s", name))
	}
	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("service %s: type mismatch, got %T", name, svc))
	}
	return typed
}

// InitAll initializes every service in dependency order. A failure stops
// the already-initialized services in reverse order and returns.
func (h *Hub) InitAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.order == nil {
		order, err := h.resolveOrder()
		if err != nil {
			return err
		}
		h.order = order
	}

	var done []string
	for _, name := range h.order {
		if err := h.services[name].Init(); err != nil {
			for i := len(done) - 1; i >= 0; i-- {
				h.services[done[i]].Stop()
			}
			return fmt.Errorf("service %s init failed: %w", name, err)
		}
		done = append(done, name)
	}
	return nil
}

// StartAll starts every service in dependency order with the same
// reverse-order rollback as InitAll
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.started = nil
	for _, name := range h.order {
		if err := h.services[name].Start(); err != nil {
			for i := len(h.started) - 1; i >= 0; i-- {
				h.services[h.started[i]].Stop()
			}
			h.started = nil
			return fmt.Errorf("service %s start failed: %w", name, err)
		}
		h.started = append(h.started, name)
	}
	return nil
}

// StopAll stops started services in reverse order. Stop errors are the
// services' problem to log; shutdown always runs to completion.
func (h *Hub) StopAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := len(h.started) - 1; i >= 0; i-- {
		h.services[h.started[i]].Stop()
	}
	h.started = nil
}

// resolveOrder is Kahn's algorithm over the dependency graph
func (h *Hub) resolveOrder() ([]string, error) {
	pending := make(map[string]int, len(h.services))
	next := make(map[string][]string)

	for name, svc := range h.services {
		pending[name] = 0
		for _, dep := range svc.Dependencies() {
			if _, known := h.services[dep]; !known {
				return nil, fmt.Errorf("service %s depends on unregistered service: %s", name, dep)
			}
		}
	}
	for name, svc := range h.services {
		for _, dep := range svc.Dependencies() {
			pending[name]++
			next[dep] = append(next[dep], name)
		}
	}

	var ready []string
	for name, n := range pending {
		if n == 0 {
			ready = append(ready, name)
		}
	}

	var order []string
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)
		for _, m := range next[name] {
			pending[m]--
			if pending[m] == 0 {
				ready = append(ready, m)
			}
		}
	}
	if len(order) != len(h.services) {
		return nil, fmt.Errorf("circular dependency between services")
	}
	return order, nil
}
