// Package session keeps the server-side sequence state of every peer.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds one Session per peer address.
type Store interface {
	Begin(addr string, seq uint64) (Session, error)
	Get(addr string) (Session, error)
	Advance(addr string, from uint64) (Session, error)
	Len() int
}

// Session is the state the server holds for one peer.
type Session struct {
	ID       uuid.UUID
	Addr     string
	Sequence uint64
	Rounds   uint64
	Created  time.Time
	Updated  time.Time
}

// MemoryStore is a Store kept in process memory. Sessions are never evicted.
type MemoryStore struct {
	sessions map[string]Session
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
	}
}

// Begin creates the session for addr at seq, replacing any existing one.
func (p *MemoryStore) Begin(addr string, seq uint64) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	sess := Session{
		ID:       uuid.New(),
		Addr:     addr,
		Sequence: seq,
		Created:  now,
		Updated:  now,
	}
	p.sessions[addr] = sess
	return sess, nil
}

// Get returns the session for addr.
func (p *MemoryStore) Get(addr string) (Session, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if sess, ok := p.sessions[addr]; ok {
		return sess, nil
	}
	return Session{}, ErrSessionNotFound
}

// Advance moves the session for addr from sequence from to from+1.
func (p *MemoryStore) Advance(addr string, from uint64) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sess, ok := p.sessions[addr]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if sess.Sequence != from {
		return sess, ErrSequenceChanged
	}
	sess.Sequence++
	sess.Rounds++
	sess.Updated = time.Now()
	p.sessions[addr] = sess
	return sess, nil
}

// Len returns the number of known peers.
func (p *MemoryStore) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}
