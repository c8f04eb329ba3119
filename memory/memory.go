// Package memory keeps short, bounded per-agent recollections that survive
// across turns within a session. Each agent slot holds at most a fixed
// number of items; older items are discarded first.
package memory

import (
	"fmt"
	"strings"
	"sync"
)

// DefaultMaxItems is the per-agent retention bound.
const DefaultMaxItems = 10

// AgentMemory stores bounded memory lists keyed by agent index.
// All operations are safe for concurrent use.
type AgentMemory struct {
	mu       sync.RWMutex
	items    map[int][]string
	maxItems int
}

// New creates an AgentMemory retaining up to maxItems entries per agent.
// Non-positive maxItems falls back to DefaultMaxItems.
func New(maxItems int) *AgentMemory {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &AgentMemory{
		items:    make(map[int][]string),
		maxItems: maxItems,
	}
}

// Add appends a memory item for an agent, trimming the oldest entries once
// the retention bound is exceeded.
func (m *AgentMemory) Add(agentIndex int, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := append(m.items[agentIndex], content)
	if len(items) > m.maxItems {
		items = items[len(items)-m.maxItems:]
	}
	m.items[agentIndex] = items
}

// Items returns a copy of an agent's memory, oldest first.
func (m *AgentMemory) Items(agentIndex int) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.items[agentIndex]...)
}

// Clear removes all memory for one agent.
func (m *AgentMemory) Clear(agentIndex int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, agentIndex)
}

// ClearAll removes memory for every agent.
func (m *AgentMemory) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[int][]string)
}

// Summarize condenses an agent's memory for prompt inclusion. Short
// histories are returned verbatim; longer ones keep the first item as a
// stand-in for the older exchanges plus the two most recent entries.
func (m *AgentMemory) Summarize(agentIndex int) string {
	items := m.Items(agentIndex)
	if len(items) == 0 {
		return ""
	}
	if len(items) <= 3 {
		return strings.Join(items, "\n")
	}

	recent := items[len(items)-2:]
	summary := fmt.Sprintf("From %d earlier exchanges, you learned: %s", len(items)-2, items[0])
	return fmt.Sprintf("%s\n\nMost recent exchanges:\n%s", summary, strings.Join(recent, "\n"))
}
