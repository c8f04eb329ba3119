package transcript

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// SpeakerUser tags the initiating user entry of a dialog run.
const SpeakerUser = "user"

// AgentSpeaker returns the speaker tag for a zero-based agent index.
// Agents are presented one-based, matching the roster numbering.
func AgentSpeaker(index int) string {
	return fmt.Sprintf("Agent %d", index+1)
}

// Entry is a single turn in a dialog transcript. Entries are immutable
// once appended; insertion order is chronological order.
type Entry struct {
	Speaker   string    `json:"speaker"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEntry creates an entry stamped with the current time.
func NewEntry(speaker, content string) Entry {
	return Entry{
		Speaker:   speaker,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// Transcript is an append-only ordered record of dialog turns. A transcript
// is owned by a single dialog run; the run loop is the only writer, readers
// receive copies.
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
}

// New creates an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

// Append adds an entry to the end of the transcript.
func (t *Transcript) Append(entry Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry)
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Entries returns a copy of all entries in chronological order.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Entry(nil), t.entries...)
}

// Window returns a copy of the last n entries in chronological order.
// If n <= 0 or n exceeds the transcript length, all entries are returned.
func (t *Transcript) Window(n int) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n <= 0 || n >= len(t.entries) {
		return append([]Entry(nil), t.entries...)
	}
	return append([]Entry(nil), t.entries[len(t.entries)-n:]...)
}

// Render formats entries as "speaker: content" blocks separated by blank
// lines, the form fed back into agent prompts.
func Render(entries []Entry) string {
	var b strings.Builder
	for _, entry := range entries {
		b.WriteString(entry.Speaker)
		b.WriteString(": ")
		b.WriteString(entry.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// Clone creates an independent copy of the transcript.
func (t *Transcript) Clone() *Transcript {
	return &Transcript{entries: t.Entries()}
}
