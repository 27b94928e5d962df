package server

import (
	"sync"

	"github.com/shiftdl/shiftdl/pkg/logger"
)

// Pool tracks connections that subscribed to schedule change pushes. A
// connection enters the pool via the watch method and leaves when it
// disconnects or a push to it fails.
type Pool struct {
	mu       sync.RWMutex
	watchers map[string]*SyncConn
	log      logger.Logger
}

func NewPool(l logger.Logger) *Pool {
	return &Pool{
		watchers: make(map[string]*SyncConn),
		log:      l,
	}
}

// AddWatcher subscribes the connection to schedule change pushes.
// Subscribing twice is a no-op.
func (p *Pool) AddWatcher(conn *SyncConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.watchers[conn.Id] = conn
}

// RemoveWatcher drops the subscription for the given connection id.
func (p *Pool) RemoveWatcher(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.watchers, id)
}

// Watching reports whether the connection id has a subscription.
func (p *Pool) Watching(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.watchers[id]
	return ok
}

// Count returns the number of subscribed connections.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.watchers)
}

// Broadcast pushes data to every watcher. Watchers whose connection fails
// are dropped from the pool; the broadcast continues to the rest.
func (p *Pool) Broadcast(data []byte) {
	p.mu.RLock()
	conns := make([]*SyncConn, 0, len(p.watchers))
	for _, c := range p.watchers {
		conns = append(conns, c)
	}
	p.mu.RUnlock()

	var failed []string
	for _, c := range conns {
		if err := c.Write(data); err != nil {
			p.log.Warning("Dropping watcher %s: %v", c.Id, err)
			failed = append(failed, c.Id)
		}
	}
	if len(failed) > 0 {
		p.mu.Lock()
		for _, id := range failed {
			delete(p.watchers, id)
		}
		p.mu.Unlock()
	}
}
