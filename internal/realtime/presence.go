package realtime

import "sync"

// Presence tracks which users hold an open connection in this process.
// One entry per user: a second login overwrites the first (last write wins).
// State lives for the process lifetime; a multi-instance deployment would
// fragment it and needs an external shared layer instead.
type Presence struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

func NewPresence() *Presence {
	return &Presence{conns: make(map[string]*Conn)}
}

// Register binds userID to conn and returns the connection it displaced, if any.
func (p *Presence) Register(userID string, conn *Conn) *Conn {
	p.mu.Lock()
	previous := p.conns[userID]
	p.conns[userID] = conn
	p.mu.Unlock()
	if previous == conn {
		return nil
	}
	return previous
}

// Unregister removes the entry for userID, but only while it still maps to
// conn. A stale teardown from a replaced connection is a no-op.
func (p *Presence) Unregister(userID string, conn *Conn) {
	p.mu.Lock()
	if current, ok := p.conns[userID]; ok && current == conn {
		delete(p.conns, userID)
	}
	p.mu.Unlock()
}

func (p *Presence) IsOnline(userID string) bool {
	p.mu.RLock()
	_, ok := p.conns[userID]
	p.mu.RUnlock()
	return ok
}

// Get returns the live connection for userID, or nil.
func (p *Presence) Get(userID string) *Conn {
	p.mu.RLock()
	conn := p.conns[userID]
	p.mu.RUnlock()
	return conn
}

// Snapshot returns the ids of every currently-connected user.
func (p *Presence) Snapshot() []string {
	p.mu.RLock()
	users := make([]string, 0, len(p.conns))
	for id := range p.conns {
		users = append(users, id)
	}
	p.mu.RUnlock()
	return users
}

// BroadcastAll delivers payload to every connected user.
func (p *Presence) BroadcastAll(payload []byte) {
	p.mu.RLock()
	conns := make([]*Conn, 0, len(p.conns))
	for _, conn := range p.conns {
		conns = append(conns, conn)
	}
	p.mu.RUnlock()
	for _, conn := range conns {
		_ = conn.Send(payload)
	}
}
