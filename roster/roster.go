package roster

import (
	"fmt"
	"sync"
)

// DefaultRoles are the stock role descriptions assigned when a roster is
// reset. Rosters larger than this list fall back to generated defaults for
// the remaining slots.
var DefaultRoles = []string{
	"Primary agent responding directly to the user's query with detailed information.",
	"Critical analyst reviewing the first agent's response, adding additional context or corrections.",
	"Synthesizer combining insights from previous agents and suggesting next steps or actionable items.",
	"Expert consultant providing specialized domain knowledge on the topic at hand.",
	"Summarizer distilling the key points from all agents into a concise final response.",
	"Creative thinker exploring unusual angles and innovative solutions to the problem.",
}

// FallbackRole returns the generated default role for an agent that has no
// configured description.
func FallbackRole(index int) string {
	return fmt.Sprintf("Agent %d analyzing and responding to previous content.", index+1)
}

// Roster maps zero-based agent indices to role-description strings. The
// mapping may be sparse; lookups for missing indices fall back to a
// generated default so a run never fails on an unconfigured slot.
type Roster struct {
	mu    sync.RWMutex
	count int
	roles map[int]string
}

// New creates a roster for count agents with no configured roles.
func New(count int) *Roster {
	return &Roster{
		count: count,
		roles: make(map[int]string),
	}
}

// FromRoles creates a roster for count agents seeded with the given sparse
// index-to-role mapping.
func FromRoles(count int, roles map[int]string) *Roster {
	r := New(count)
	for i, role := range roles {
		r.roles[i] = role
	}
	return r
}

// Count returns the configured number of agents.
func (r *Roster) Count() int {
	return r.count
}

// Role returns the role description for the given agent, falling back to
// the generated default when the slot is empty.
func (r *Roster) Role(index int) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if role, ok := r.roles[index]; ok && role != "" {
		return role
	}
	return FallbackRole(index)
}

// SetRole sets the role description for an agent slot.
func (r *Roster) SetRole(index int, role string) error {
	if index < 0 || index >= r.count {
		return fmt.Errorf("roster: index %d out of range [0,%d)", index, r.count)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[index] = role
	return nil
}

// Move relocates the role at from to position to, shifting the roles in
// between. It replaces the drag-and-drop reordering of the desktop UI with
// an explicit operation.
func (r *Roster) Move(from, to int) error {
	if from < 0 || from >= r.count {
		return fmt.Errorf("roster: source index %d out of range [0,%d)", from, r.count)
	}
	if to < 0 || to >= r.count {
		return fmt.Errorf("roster: target index %d out of range [0,%d)", to, r.count)
	}
	if from == to {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[int]string, len(r.roles))
	for i, role := range r.roles {
		snapshot[i] = role
	}

	if from < to {
		for i := from; i < to; i++ {
			r.roles[i] = snapshot[i+1]
		}
	} else {
		for i := from; i > to; i-- {
			r.roles[i] = snapshot[i-1]
		}
	}
	r.roles[to] = snapshot[from]
	return nil
}

// Reset restores the stock role descriptions for the configured count.
func (r *Roster) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles = make(map[int]string)
	for i := 0; i < r.count && i < len(DefaultRoles); i++ {
		r.roles[i] = DefaultRoles[i]
	}
}

// Roles returns a copy of the configured role mapping. Unset slots are
// absent from the result.
func (r *Roster) Roles() map[int]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roles := make(map[int]string, len(r.roles))
	for i, role := range r.roles {
		roles[i] = role
	}
	return roles
}

// Clone creates an independent copy of the roster.
func (r *Roster) Clone() *Roster {
	return FromRoles(r.count, r.Roles())
}
