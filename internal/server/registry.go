package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/geoplay/capitalquiz/internal/game"
)

// Registry holds live game sessions keyed by bearer token. Sessions
// idle past the TTL are force-ended so their results still reach the
// archive, then dropped.
type Registry struct {
	ttl    time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

type sessionEntry struct {
	sess     *game.Session
	lang     string
	warning  string
	lastSeen time.Time
}

func NewRegistry(ttl time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		ttl:     ttl,
		logger:  logger,
		entries: make(map[string]*sessionEntry),
	}
}

func (r *Registry) Put(token string, sess *game.Session, lang string) {
	r.mu.Lock()
	r.entries[token] = &sessionEntry{sess: sess, lang: lang, lastSeen: time.Now()}
	r.mu.Unlock()
}

// Lang returns the language chosen when the session was started.
func (r *Registry) Lang(token string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[token]; ok {
		return e.lang
	}
	return ""
}

// Get returns the session for token and refreshes its idle clock.
func (r *Registry) Get(token string) (*game.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[token]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.sess, true
}

func (r *Registry) Remove(token string) {
	r.mu.Lock()
	delete(r.entries, token)
	r.mu.Unlock()
}

// SetWarning attaches a non-fatal warning (e.g. an archive write that
// fell back to the local cache) for the state endpoint to surface.
func (r *Registry) SetWarning(token, msg string) {
	r.mu.Lock()
	if e, ok := r.entries[token]; ok {
		e.warning = msg
	}
	r.mu.Unlock()
}

func (r *Registry) Warning(token string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[token]; ok {
		return e.warning
	}
	return ""
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Run sweeps expired sessions until ctx is done.
func (r *Registry) Run(ctx context.Context) error {
	interval := r.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.ttl)

	r.mu.Lock()
	expired := make(map[string]*sessionEntry)
	for token, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			expired[token] = e
		}
	}
	r.mu.Unlock()

	// Abandoned mid-game: end it so the result is archived. ForceEnd
	// runs the game-over notifier, which may call back into SetWarning,
	// so the entry is dropped only afterwards and the registry lock is
	// not held here.
	for token, e := range expired {
		if err := e.sess.ForceEnd(); err == nil {
			r.logger.Info("expired idle game session")
		}
		r.Remove(token)
	}
}
