package services

import (
	"sync"

	"github.com/eqprep/assessment-engine/internal/engine"
	"github.com/eqprep/assessment-engine/internal/models"
)

// liveSession pairs a persisted session row with its in-memory attempt. The
// attempt itself is single-user single-goroutine; the registry mutex only
// guards the map, not the attempt.
type liveSession struct {
	session  *models.Session
	sections []*models.Section
	attempt  *engine.Attempt
}

// sessionRegistry tracks the attempts currently loaded in this process, both
// live ones and reconstructed reviews.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uint]*liveSession
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[uint]*liveSession)}
}

func (r *sessionRegistry) put(id uint, ls *liveSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = ls
}

func (r *sessionRegistry) get(id uint) (*liveSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ls, ok := r.sessions[id]
	return ls, ok
}
