package stats

import (
	"sync"

	"github.com/rickgorman/dockers/internal/engine"
)

type pollState int

const (
	polling pollState = iota
	// ended means the sample stream closed normally; a running container gets a new poller.
	ended
	// failed means the poller hit a transport error and is not restarted.
	failed
)

type cell struct {
	snap  *engine.Snapshot
	state pollState
}

// Cache holds the latest sample per container. Keys keep their insertion order.
// The lock only ever covers map operations.
type Cache struct {
	mu    sync.Mutex
	cells map[string]*cell
	order []string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{cells: make(map[string]*cell)}
}

// Reconcile folds a container listing into the cache. It returns the ids
// that need a poller: ids seen for the first time, and ids whose stream
// ended but which are running again. Ids whose poller is done and which are
// no longer listed are evicted and returned as well.
func (c *Cache) Reconcile(containers []engine.Container) (start, evicted []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	listed := make(map[string]bool, len(containers))
	for _, ctr := range containers {
		id := ctr.Ref.ID
		listed[id] = true

		cl, ok := c.cells[id]
		switch {
		case !ok:
			c.cells[id] = &cell{state: polling}
			c.order = append(c.order, id)
			start = append(start, id)
		case cl.state == ended && ctr.Running():
			cl.state = polling
			start = append(start, id)
		}
	}

	kept := c.order[:0]
	for _, id := range c.order {
		if c.cells[id].state != polling && !listed[id] {
			delete(c.cells, id)
			evicted = append(evicted, id)
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept

	return start, evicted
}

// Set replaces the sample for id. Samples for evicted ids are dropped.
func (c *Cache) Set(id string, s engine.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cl, ok := c.cells[id]; ok {
		cl.snap = &s
	}
}

func (c *Cache) finish(id string, state pollState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cl, ok := c.cells[id]; ok {
		cl.snap = nil
		cl.state = state
	}
}

// Lookup returns the sample for id, and whether id is tracked at all.
func (c *Cache) Lookup(id string) (*engine.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cl, ok := c.cells[id]
	if !ok || cl.snap == nil {
		return nil, ok
	}
	s := *cl.snap
	return &s, true
}

// Snapshots returns a copy of every populated sample in insertion order.
func (c *Cache) Snapshots() []engine.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snaps := make([]engine.Snapshot, 0, len(c.order))
	for _, id := range c.order {
		if s := c.cells[id].snap; s != nil {
			snaps = append(snaps, *s)
		}
	}
	return snaps
}

// IDs returns every tracked id in insertion order.
func (c *Cache) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}
