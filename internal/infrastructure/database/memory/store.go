// Package memory keeps every repository in process memory. It backs
// STORE_DRIVER=memory for local runs and the service tests.
package memory

import (
	"sort"
	"sync"
	"time"
)

// Store is the shared state behind the repositories of one in-memory database.
type Store struct {
	mu  sync.RWMutex
	seq int64

	cars          map[string]*carRow
	reservations  map[string]*reservationRow
	users         map[string]*userRow
	identities    map[string]*identityRow
	resetTokens   map[string]*resetTokenRow
	refreshTokens map[string]*refreshTokenRow

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		cars:          make(map[string]*carRow),
		reservations:  make(map[string]*reservationRow),
		users:         make(map[string]*userRow),
		identities:    make(map[string]*identityRow),
		resetTokens:   make(map[string]*resetTokenRow),
		refreshTokens: make(map[string]*refreshTokenRow),
		now:           time.Now,
	}
}

// SetClock replaces the time source used for timestamps and expiry checks.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// next returns an increasing insertion number; callers hold s.mu.
func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

type sequenced interface {
	order() int64
}

// newestFirst sorts rows the way the SQL repositories order by created_at DESC.
func newestFirst[T sequenced](rows []T) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].order() > rows[j].order()
	})
}

func cloneStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
