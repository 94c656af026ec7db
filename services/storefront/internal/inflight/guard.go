package inflight

import (
	"errors"
	"sync"
)

var ErrInFlight = errors.New("operation already in flight")

// Guard rejects a call while another call with the same key is still running.
// The zero value is ready to use.
type Guard struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func (g *Guard) Do(key string, fn func() error) error {
	if !g.acquire(key) {
		return ErrInFlight
	}
	defer g.release(key)
	return fn()
}

func (g *Guard) busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.running[key]
	return ok
}

func (g *Guard) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, ok := g.running[key]; ok {
		return false
	}
	g.running[key] = struct{}{}
	return true
}

func (g *Guard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, key)
}
