package chathub

import "sync"

// Presence is the process-wide user -> connection table. Exactly one
// entry per online user; a later connection for the same user silently
// supersedes the earlier mapping. All operations are atomic with respect
// to a single key; the guarded remove keeps a stale disconnect from
// evicting a connection that replaced it.
//
// Presence only mutates the table. Emitting user_status events is the
// caller's job.
type Presence struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewPresence() *Presence {
	return &Presence{clients: make(map[string]Client)}
}

// SetOnline maps the user to the given connection, replacing any
// previous handle.
func (p *Presence) SetOnline(userID string, c Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clients[userID] = c
}

// Get returns the user's current connection handle.
func (p *Presence) Get(userID string) (Client, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.clients[userID]
	return c, ok
}

// RemoveIfCurrent removes the mapping only if the stored handle is still
// the given one. Reports whether an entry was removed.
func (p *Presence) RemoveIfCurrent(userID string, c Client) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clients[userID] != c {
		return false
	}
	delete(p.clients, userID)
	return true
}

// IsOnline reports whether the user has a live connection.
func (p *Presence) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.clients[userID]
	return ok
}

// All returns a snapshot of the current connection handles. Used for
// global user_status broadcasts; the snapshot keeps callers from
// iterating the live map.
func (p *Presence) All() []Client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Client, 0, len(p.clients))
	for _, c := range p.clients {
		out = append(out, c)
	}
	return out
}
