package session

import (
	"sync"

	"github.com/agrodose/fertilizer-bot/internal/domain"
)

// User is one user's mutable conversation state: the wizard in progress and
// a single-slot cache of the last computed result (kept so the report can be
// exported later; overwritten by the next calculation).
type User struct {
	Wizard *Wizard

	lastResult    domain.DosageResult
	hasLastResult bool
}

// SetLastResult overwrites the single-slot result cache.
func (u *User) SetLastResult(r domain.DosageResult) {
	u.lastResult = r
	u.hasLastResult = true
}

// LastResult returns the cached result of the most recent calculation.
func (u *User) LastResult() (domain.DosageResult, bool) {
	return u.lastResult, u.hasLastResult
}

// Store keeps per-user conversation state in memory, keyed by Telegram user
// id. State is lost on restart, which matches the product's expectations.
//
// Access for the same user is serialized through a per-user mutex so a
// double-submitting user cannot interleave wizard updates; different users
// never contend beyond the map lookup.
type Store struct {
	catalog *domain.Catalog

	mu    sync.Mutex
	slots map[int64]*userSlot
}

type userSlot struct {
	mu   sync.Mutex
	user *User
}

// NewStore creates an empty store whose wizards run against the given catalog.
func NewStore(catalog *domain.Catalog) *Store {
	return &Store{
		catalog: catalog,
		slots:   make(map[int64]*userSlot),
	}
}

// WithUser runs fn with exclusive access to the user's state, creating the
// state on first contact.
func (s *Store) WithUser(id int64, fn func(*User)) {
	s.mu.Lock()
	slot, ok := s.slots[id]
	if !ok {
		slot = &userSlot{user: &User{Wizard: NewWizard(s.catalog)}}
		s.slots[id] = slot
	}
	s.mu.Unlock()

	slot.mu.Lock()
	defer slot.mu.Unlock()
	fn(slot.user)
}

// Len returns the number of users with state, for metrics.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
