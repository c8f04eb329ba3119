package transcript

import (
	"strings"
	"testing"
)

func TestAgentSpeaker(t *testing.T) {
	if got := AgentSpeaker(0); got != "Agent 1" {
		t.Errorf("Expected Agent 1, got %s", got)
	}
	if got := AgentSpeaker(4); got != "Agent 5" {
		t.Errorf("Expected Agent 5, got %s", got)
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	tr := New()
	tr.Append(NewEntry(SpeakerUser, "question"))
	tr.Append(NewEntry(AgentSpeaker(0), "first answer"))
	tr.Append(NewEntry(AgentSpeaker(1), "second answer"))

	entries := tr.Entries()
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Speaker != SpeakerUser {
		t.Errorf("Expected first speaker %q, got %q", SpeakerUser, entries[0].Speaker)
	}
	if entries[2].Content != "second answer" {
		t.Errorf("Expected last content 'second answer', got %q", entries[2].Content)
	}
}

func TestWindow(t *testing.T) {
	tr := New()
	contents := []string{"a", "b", "c", "d", "e"}
	for _, c := range contents {
		tr.Append(NewEntry(SpeakerUser, c))
	}

	window := tr.Window(3)
	if len(window) != 3 {
		t.Fatalf("Expected window of 3, got %d", len(window))
	}
	// Chronological order within the window.
	for i, want := range []string{"c", "d", "e"} {
		if window[i].Content != want {
			t.Errorf("Window entry %d: expected %q, got %q", i, want, window[i].Content)
		}
	}

	if got := tr.Window(0); len(got) != 5 {
		t.Errorf("Window(0) should return all entries, got %d", len(got))
	}
	if got := tr.Window(10); len(got) != 5 {
		t.Errorf("Window larger than transcript should return all entries, got %d", len(got))
	}
}

func TestRender(t *testing.T) {
	tr := New()
	tr.Append(NewEntry(SpeakerUser, "hello"))
	tr.Append(NewEntry(AgentSpeaker(0), "hi there"))

	rendered := Render(tr.Entries())
	if !strings.Contains(rendered, "user: hello") {
		t.Errorf("Rendered transcript missing user entry: %q", rendered)
	}
	if !strings.Contains(rendered, "Agent 1: hi there") {
		t.Errorf("Rendered transcript missing agent entry: %q", rendered)
	}
	if strings.Index(rendered, "user:") > strings.Index(rendered, "Agent 1:") {
		t.Error("Rendered entries out of chronological order")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tr := New()
	tr.Append(NewEntry(SpeakerUser, "original"))

	clone := tr.Clone()
	clone.Append(NewEntry(AgentSpeaker(0), "extra"))

	if tr.Len() != 1 {
		t.Errorf("Appending to clone mutated the original: len=%d", tr.Len())
	}
	if clone.Len() != 2 {
		t.Errorf("Expected clone len 2, got %d", clone.Len())
	}
}
