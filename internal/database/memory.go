package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jason-s-yu/ranked/internal/models"
)

// MemoryStore is an in-process Store used for local runs and tests. A single
// lock serializes every write, which makes ApplyMatch trivially atomic.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[string]*models.Player
	matches []models.Match
	nextID  int64

	now func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: make(map[string]*models.Player),
		nextID:  1,
		now:     time.Now,
	}
}

func (s *MemoryStore) RegisterPlayer(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.players[username]; exists {
		return false, nil
	}
	s.players[username] = models.NewPlayer(username, s.now().UTC())
	return true, nil
}

func (s *MemoryStore) GetPlayer(_ context.Context, username string) (*models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[username]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", username, ErrPlayerNotFound)
	}
	return p.Clone(), nil
}

func (s *MemoryStore) TopPlayers(_ context.Context, mode string, limit int) ([]*models.Player, error) {
	if !validTarget(mode) {
		return nil, fmt.Errorf("%q: %w", mode, ErrUnknownMode)
	}
	score := func(p *models.Player) int { return p.GlobalScore }
	if mode != models.GlobalTarget {
		score = func(p *models.Player) int { return p.Rating(mode) }
	}

	s.mu.RLock()
	players := make([]*models.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(players, func(i, j int) bool {
		si, sj := score(players[i]), score(players[j])
		if si != sj {
			return si > sj
		}
		return players[i].Username < players[j].Username
	})
	if n := clampLimit(limit); len(players) > n {
		players = players[:n]
	}
	return players, nil
}

// ApplyMatch hands fn copies of both records; they replace the stored ones
// only when fn succeeds.
func (s *MemoryStore) ApplyMatch(_ context.Context, winner, loser string, fn MatchFunc) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.players[winner]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", winner, ErrPlayerNotFound)
	}
	l, ok := s.players[loser]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", loser, ErrPlayerNotFound)
	}

	wc, lc := w.Clone(), l.Clone()
	m, err := fn(wc, lc)
	if err != nil {
		return nil, err
	}

	m.ID = s.nextID
	m.Timestamp = s.now().UTC()
	s.nextID++

	s.players[winner] = wc
	s.players[loser] = lc
	s.matches = append(s.matches, *m)
	return m, nil
}

func (s *MemoryStore) OverrideRating(_ context.Context, username, target string, value int) (*models.Player, error) {
	if !validTarget(target) {
		return nil, fmt.Errorf("%q: %w", target, ErrUnknownMode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[username]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", username, ErrPlayerNotFound)
	}
	updated := p.Clone()
	applyOverride(updated, target, value)
	s.players[username] = updated
	return updated.Clone(), nil
}

func (s *MemoryStore) RecentMatches(_ context.Context, username string, limit int) ([]models.Match, error) {
	limit = clampLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := []models.Match{}
	for i := len(s.matches) - 1; i >= 0 && len(matches) < limit; i-- {
		m := s.matches[i]
		if username == "" || m.Winner == username || m.Loser == username {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func (s *MemoryStore) Close() {}
