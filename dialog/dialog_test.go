package dialog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/sweetpotato0/colloquy/generator"
	"github.com/sweetpotato0/colloquy/roster"
	"github.com/sweetpotato0/colloquy/tokenizer"
)

// fakeGenerator records every prompt it receives and replies from a script.
type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   func(call int, prompt string) (string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, cfg generator.Config) (string, error) {
	f.mu.Lock()
	call := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.reply != nil {
		return f.reply(call, prompt)
	}
	return fmt.Sprintf("response %d", call), nil
}

func (f *fakeGenerator) prompt(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[i]
}

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	return got
}

func TestConstructionValidation(t *testing.T) {
	gen := &fakeGenerator{}

	if _, err := New("", roster.New(2), gen); err == nil {
		t.Error("Expected error for empty prompt")
	}
	if _, err := New("q", nil, gen); err == nil {
		t.Error("Expected error for nil roster")
	}
	if _, err := New("q", roster.New(0), gen); err == nil {
		t.Error("Expected error for zero agents")
	}
	if _, err := New("q", roster.New(1), gen); err == nil {
		t.Error("Expected error for a single agent")
	}
	if _, err := New("q", roster.New(2), nil); err == nil {
		t.Error("Expected error for nil generator")
	}
	if _, err := New("q", roster.New(2), gen, WithGenerationConfig(generator.Config{Temperature: 9})); err == nil {
		t.Error("Expected error for invalid generation config")
	}
	if _, err := New("q", roster.New(2), gen); err != nil {
		t.Errorf("Expected valid construction, got %v", err)
	}
}

func TestSinglePassEmitsOneTurnPerAgent(t *testing.T) {
	const agents = 4
	gen := &fakeGenerator{}
	o, err := New("question", roster.New(agents), gen, WithTurnDelay(0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	events, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := collect(t, events)

	if len(got) != agents+1 {
		t.Fatalf("Expected %d events, got %d", agents+1, len(got))
	}
	for i := 0; i < agents; i++ {
		if got[i].Type != EventAgentTurn {
			t.Errorf("Event %d: expected agent_turn, got %s", i, got[i].Type)
		}
		if got[i].AgentIndex != i {
			t.Errorf("Event %d: expected agent index %d, got %d", i, i, got[i].AgentIndex)
		}
	}
	if got[agents].Type != EventDialogComplete {
		t.Errorf("Expected terminal dialog_complete, got %s", got[agents].Type)
	}
	if o.State() != StateCompleted {
		t.Errorf("Expected state completed, got %s", o.State())
	}
}

func TestContinuousTurnCapCountsRotations(t *testing.T) {
	const agents, turnCap = 3, 2
	gen := &fakeGenerator{}
	o, err := New("question", roster.New(agents), gen,
		WithContinuous(true), WithMaxTurns(turnCap), WithTurnDelay(0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	events, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := collect(t, events)

	wantTurns := agents * turnCap
	if len(got) != wantTurns+1 {
		t.Fatalf("Expected %d events, got %d", wantTurns+1, len(got))
	}
	for i := 0; i < wantTurns; i++ {
		if got[i].AgentIndex != i%agents {
			t.Errorf("Event %d: expected agent %d, got %d", i, i%agents, got[i].AgentIndex)
		}
	}
	if got[wantTurns].Type != EventDialogComplete {
		t.Errorf("Expected terminal dialog_complete, got %s", got[wantTurns].Type)
	}
}

func TestRequestStopHonoredAtLoopBoundary(t *testing.T) {
	const stopAfter = 4
	var o *Orchestrator
	gen := &fakeGenerator{}
	gen.reply = func(call int, prompt string) (string, error) {
		if call == stopAfter-1 {
			// Stop lands while this turn is in flight; the turn still
			// completes and emits before the loop exits.
			o.RequestStop()
		}
		return "reply", nil
	}

	var err error
	o, err = New("question", roster.New(3), gen,
		WithContinuous(true), WithTurnDelay(0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	events, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := collect(t, events)

	turns := 0
	for _, ev := range got {
		if ev.Type == EventAgentTurn {
			turns++
		}
	}
	if turns > stopAfter {
		t.Errorf("Expected no more than one in-flight turn after stop, got %d turns", turns)
	}
	if got[len(got)-1].Type != EventDialogComplete {
		t.Errorf("Expected terminal dialog_complete, got %s", got[len(got)-1].Type)
	}
	if o.State() != StateStopped {
		t.Errorf("Expected state stopped, got %s", o.State())
	}
}

func TestRequestStopIsIdempotent(t *testing.T) {
	gen := &fakeGenerator{}
	o, err := New("question", roster.New(2), gen, WithContinuous(true), WithTurnDelay(0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	o.RequestStop()
	o.RequestStop()

	events, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := collect(t, events)
	if len(got) != 1 || got[0].Type != EventDialogComplete {
		t.Errorf("Expected immediate dialog_complete, got %v", got)
	}
}

func TestContinuousHistoryWindowKeepsLastTenChronological(t *testing.T) {
	gen := &fakeGenerator{}
	gen.reply = func(call int, prompt string) (string, error) {
		return fmt.Sprintf("reply-%02d", call), nil
	}
	o, err := New("question", roster.New(3), gen,
		WithContinuous(true), WithMaxTurns(5), WithTurnDelay(0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	events, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	collect(t, events)

	// By the 15th call the transcript holds 15 entries (user + 14 replies);
	// the prompt must contain only the 10 most recent.
	last := gen.prompt(14)
	if strings.Contains(last, "reply-03") {
		t.Error("Prompt contains an entry outside the 10-entry window")
	}
	for i := 4; i <= 13; i++ {
		if !strings.Contains(last, fmt.Sprintf("reply-%02d", i)) {
			t.Errorf("Prompt missing windowed entry reply-%02d", i)
		}
	}
	// Chronological order inside the window.
	if strings.Index(last, "reply-04") > strings.Index(last, "reply-13") {
		t.Error("Windowed entries out of chronological order")
	}
}

func TestSinglePassPromptContainsFullTranscript(t *testing.T) {
	gen := &fakeGenerator{}
	gen.reply = func(call int, prompt string) (string, error) {
		return fmt.Sprintf("reply-%d", call), nil
	}
	o, err := New("question", roster.New(3), gen, WithTurnDelay(0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	events, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	collect(t, events)

	last := gen.prompt(2)
	for _, want := range []string{"user: question", "Agent 1: reply-0", "Agent 2: reply-1"} {
		if !strings.Contains(last, want) {
			t.Errorf("Single-pass prompt missing %q", want)
		}
	}
}

func TestMissingRoleFallbackAppearsInPrompt(t *testing.T) {
	gen := &fakeGenerator{}
	r := roster.FromRoles(4, map[int]string{
		0: "moderator",
		1: "skeptic",
		3: "closer",
	})
	o, err := New("question", r, gen, WithTurnDelay(0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	events, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	collect(t, events)

	want := "Agent 3 analyzing and responding to previous content."
	if !strings.Contains(gen.prompt(2), want) {
		t.Errorf("Agent 3 prompt missing fallback role %q:\n%s", want, gen.prompt(2))
	}
	if !strings.Contains(gen.prompt(1), "skeptic") {
		t.Error("Agent 2 prompt missing configured role")
	}
}

func TestEmptyResponseSubstitutesSentinel(t *testing.T) {
	gen := &fakeGenerator{}
	gen.reply = func(call int, prompt string) (string, error) {
		if call == 1 {
			return "", nil
		}
		return "ok", nil
	}
	o, err := New("question", roster.New(3), gen, WithTurnDelay(0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	events, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := collect(t, events)

	if len(got) != 4 {
		t.Fatalf("Empty response must not abort the run; got %d events", len(got))
	}
	want := "Agent 2 could not generate a response."
	if got[1].Text != want {
		t.Errorf("Expected sentinel %q, got %q", want, got[1].Text)
	}
	if got[3].Type != EventDialogComplete {
		t.Errorf("Expected terminal dialog_complete, got %s", got[3].Type)
	}
}

func TestGeneratorErrorIsFatal(t *testing.T) {
	gen := &fakeGenerator{}
	gen.reply = func(call int, prompt string) (string, error) {
		if call == 1 {
			return "", generator.NewGenerationError("upstream rejected the request", nil)
		}
		return "ok", nil
	}
	o, err := New("question", roster.New(3), gen, WithTurnDelay(0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	events, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := collect(t, events)

	if len(got) != 2 {
		t.Fatalf("Expected one turn plus one error event, got %d events", len(got))
	}
	if got[0].Type != EventAgentTurn || got[0].AgentIndex != 0 {
		t.Errorf("Expected first event to be agent 0's turn, got %+v", got[0])
	}
	if got[1].Type != EventDialogError {
		t.Fatalf("Expected dialog_error, got %s", got[1].Type)
	}
	if !strings.Contains(got[1].Message, "upstream rejected the request") {
		t.Errorf("Error event missing cause: %q", got[1].Message)
	}
	if o.State() != StateFailed {
		t.Errorf("Expected state failed, got %s", o.State())
	}
	// The turn emitted before the failure stays visible.
	if len(o.Transcript()) != 2 {
		t.Errorf("Expected transcript to keep user entry and first turn, got %d entries", len(o.Transcript()))
	}
}

func TestRunIsSingleUse(t *testing.T) {
	gen := &fakeGenerator{}
	o, err := New("question", roster.New(2), gen, WithTurnDelay(0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	events, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	collect(t, events)

	if _, err := o.Run(context.Background()); err == nil {
		t.Error("Expected error on second Run")
	}
}

func TestContextCancellationStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &fakeGenerator{}
	gen.reply = func(call int, prompt string) (string, error) {
		if call == 2 {
			cancel()
		}
		return "reply", nil
	}
	o, err := New("question", roster.New(2), gen, WithContinuous(true), WithTurnDelay(0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	events, err := o.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := collect(t, events)

	if got[len(got)-1].Type != EventDialogComplete {
		t.Errorf("Expected terminal dialog_complete after cancellation, got %s", got[len(got)-1].Type)
	}
	if o.State() != StateStopped {
		t.Errorf("Expected state stopped, got %s", o.State())
	}
}

func TestTranscriptTagsSpeakers(t *testing.T) {
	gen := &fakeGenerator{}
	o, err := New("question", roster.New(2), gen, WithTurnDelay(0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	events, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	collect(t, events)

	entries := o.Transcript()
	if len(entries) != 3 {
		t.Fatalf("Expected 3 transcript entries, got %d", len(entries))
	}
	if entries[0].Speaker != "user" {
		t.Errorf("Expected first speaker user, got %q", entries[0].Speaker)
	}
	if entries[1].Speaker != "Agent 1" || entries[2].Speaker != "Agent 2" {
		t.Errorf("Unexpected agent speakers: %q, %q", entries[1].Speaker, entries[2].Speaker)
	}
}

func TestTokenizerSeesEveryTurnPrompt(t *testing.T) {
	gen := &fakeGenerator{}
	var counted int
	tok := tokenizer.CountFunc(func(text string) int {
		counted++
		return len(strings.Fields(text))
	})

	o, err := New("question", roster.New(3), gen, WithTurnDelay(0), WithTokenizer(tok))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	events, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	collect(t, events)

	if counted != 3 {
		t.Errorf("Expected tokenizer called once per turn (3), got %d", counted)
	}
}
