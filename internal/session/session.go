// Package session scopes all mutable client state to one operational
// context. A Session is created when a dropzone is selected and torn down on
// logout or context switch; it owns the load snapshot the services validate
// against and reconciles it from authoritative remote payloads.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/Amnesthesia/dz-app/internal/domain"
	"github.com/Amnesthesia/dz-app/internal/permission"
)

// Session holds the current dropzone, the acting user and the load snapshot.
// The snapshot is advisory: it is refreshed by polling and replaced by every
// authoritative mutation response, never predicted locally.
type Session struct {
	mu          sync.RWMutex
	dropzone    domain.Dropzone
	currentUser domain.DropzoneUser
	grants      permission.Set
	loads       map[string]domain.Load
	closed      bool
}

// New creates a session for the given dropzone and acting user. Capability
// grants are resolved from the user's current role.
func New(dropzone domain.Dropzone, user domain.DropzoneUser) *Session {
	return &Session{
		dropzone:    dropzone,
		currentUser: user,
		grants:      permission.ForRole(user.Role),
		loads:       make(map[string]domain.Load),
	}
}

// Close tears the session down. A closed session holds no snapshot and
// grants nothing.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.loads = make(map[string]domain.Load)
	s.grants = permission.Set{}
}

// Dropzone returns the operational context this session is scoped to.
func (s *Session) Dropzone() domain.Dropzone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropzone
}

// CurrentUser returns the acting participant.
func (s *Session) CurrentUser() domain.DropzoneUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUser
}

// SetCurrentUser replaces the acting participant snapshot, re-resolving
// grants from the (possibly changed) role.
func (s *Session) SetCurrentUser(user domain.DropzoneUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.currentUser = user
	s.grants = permission.ForRole(user.Role)
}

// Grants returns the capability set for the acting user's current role.
func (s *Session) Grants() permission.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grants
}

// Load returns the snapshot of one load.
func (s *Session) Load(id string) (domain.Load, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.loads[id]
	return l, ok
}

// Loads returns the snapshot of all loads ordered by load number.
func (s *Session) Loads() []domain.Load {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Load, 0, len(s.loads))
	for _, l := range s.loads {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LoadNumber < out[j].LoadNumber
	})
	return out
}

// ReplaceLoads swaps the whole snapshot, used by the poller after a full
// refresh.
func (s *Session) ReplaceLoads(loads []domain.Load) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	next := make(map[string]domain.Load, len(loads))
	for _, l := range loads {
		next[l.ID] = l
	}
	s.loads = next
}

// ApplyLoad reconciles one load from an authoritative response payload.
func (s *Session) ApplyLoad(l domain.Load) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.loads[l.ID] = l
}

// RemoveLoad drops a load from the snapshot.
func (s *Session) RemoveLoad(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.loads, id)
}

// LoadView is the derived, read-only shape of a load for list rendering.
type LoadView struct {
	ID                 string
	Name               string
	LoadNumber         int
	State              domain.LoadState
	SlotCount          int
	MaxSlots           int
	IsFull             bool
	IsOpen             bool
	HasLanded          bool
	CountdownRemaining time.Duration
	PlaneName          string
}

// Views derives the render view of every load at the given instant, ordered
// by load number.
func (s *Session) Views(now time.Time) []LoadView {
	loads := s.Loads()
	views := make([]LoadView, len(loads))
	for i, l := range loads {
		views[i] = NewLoadView(l, now)
	}
	return views
}

// NewLoadView derives the render view of one load.
func NewLoadView(l domain.Load, now time.Time) LoadView {
	v := LoadView{
		ID:                 l.ID,
		Name:               l.Name,
		LoadNumber:         l.LoadNumber,
		State:              l.State(now),
		SlotCount:          l.SlotCount(),
		MaxSlots:           l.MaxSlots,
		IsFull:             l.IsFull(),
		IsOpen:             l.IsOpen,
		HasLanded:          l.HasLanded,
		CountdownRemaining: l.CountdownRemaining(now),
	}
	if l.Plane != nil {
		v.PlaneName = l.Plane.Name
	}
	return v
}
