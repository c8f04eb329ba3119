// Package dialog drives turn-based conversations between a roster of agent
// personas and a text generation backend. A single orchestrator owns one
// run: it rotates through the roster, feeds each agent a growing transcript,
// and emits one event per completed turn plus a terminal completion or
// error event.
package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sweetpotato0/colloquy/config"
	colloquyerrors "github.com/sweetpotato0/colloquy/errors"
	"github.com/sweetpotato0/colloquy/generator"
	"github.com/sweetpotato0/colloquy/pkg/logging"
	"github.com/sweetpotato0/colloquy/pkg/telemetry"
	"github.com/sweetpotato0/colloquy/roster"
	"github.com/sweetpotato0/colloquy/tokenizer"
	"github.com/sweetpotato0/colloquy/transcript"
)

// State represents the lifecycle state of an orchestrator.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateStopped   State = "stopped"
	StateFailed    State = "failed"
)

const (
	// defaultHistoryWindow bounds prompt growth in continuous mode.
	defaultHistoryWindow = 10

	// defaultTurnDelay is the cosmetic pause between turns that lets a
	// concurrent caller service stop requests or progress indicators.
	defaultTurnDelay = 500 * time.Millisecond

	defaultEventBuffer = 16
)

// Orchestrator runs one multi-agent dialog. Instances are single-use: one
// Run per orchestrator, with a fresh transcript per instance.
type Orchestrator struct {
	prompt        string
	roster        *roster.Roster
	gen           generator.TextGenerator
	genCfg        generator.Config
	model         string
	continuous    bool
	maxTurns      int
	historyWindow int
	turnDelay     time.Duration
	eventBuffer   int
	tok           tokenizer.Tokenizer
	logger        *slog.Logger
	tracer        trace.Tracer

	transcript *transcript.Transcript

	started       atomic.Bool
	stopRequested atomic.Bool

	mu    sync.RWMutex
	state State
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithModel records the model identifier for the run. The value is opaque
// to the orchestrator; it is attached to logs and spans and surfaced to
// generators that inspect it.
func WithModel(model string) Option {
	return func(o *Orchestrator) {
		o.model = model
	}
}

// WithContinuous switches the run from a single round-robin pass to
// continuous rotation until stopped or the turn cap is reached.
func WithContinuous(continuous bool) Option {
	return func(o *Orchestrator) {
		o.continuous = continuous
	}
}

// WithMaxTurns caps continuous runs at n completed rotations through the
// roster. Zero means unlimited.
func WithMaxTurns(n int) Option {
	return func(o *Orchestrator) {
		o.maxTurns = n
	}
}

// WithGenerationConfig overrides the sampling parameters for every turn.
func WithGenerationConfig(cfg generator.Config) Option {
	return func(o *Orchestrator) {
		o.genCfg = cfg
	}
}

// WithHistoryWindow overrides the number of transcript entries included in
// continuous-mode prompts.
func WithHistoryWindow(n int) Option {
	return func(o *Orchestrator) {
		o.historyWindow = n
	}
}

// WithTurnDelay overrides the pause between turns. Zero disables it.
func WithTurnDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.turnDelay = d
	}
}

// WithEventBuffer sets the capacity of the event channel returned by Run.
func WithEventBuffer(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.eventBuffer = n
		}
	}
}

// WithTokenizer attaches a tokenizer used to report per-turn prompt token
// counts in logs and spans.
func WithTokenizer(tok tokenizer.Tokenizer) Option {
	return func(o *Orchestrator) {
		o.tok = tok
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an orchestrator for one dialog run. The initial prompt must be
// non-empty and the roster must hold at least two agents; missing role
// descriptions fall back to generated defaults.
func New(prompt string, r *roster.Roster, gen generator.TextGenerator, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		prompt:        prompt,
		roster:        r,
		gen:           gen,
		genCfg:        generator.DefaultConfig(),
		historyWindow: defaultHistoryWindow,
		turnDelay:     defaultTurnDelay,
		eventBuffer:   defaultEventBuffer,
		transcript:    transcript.New(),
		state:         StateIdle,
		logger:        logging.WithComponent("dialog"),
		tracer:        telemetry.Tracer("colloquy/dialog"),
	}
	for _, opt := range opts {
		opt(o)
	}

	v := config.NewValidator()
	v.RequireNonEmpty("prompt", prompt)
	v.RequireNonNegative("max_turns", o.maxTurns)
	v.RequirePositive("history_window", o.historyWindow)
	if r == nil {
		return nil, fmt.Errorf("dialog: roster cannot be nil: %w", colloquyerrors.ErrInvalidInput)
	}
	if r.Count() < 2 {
		return nil, fmt.Errorf("dialog: at least 2 agents are required, got %d: %w", r.Count(), colloquyerrors.ErrInvalidInput)
	}
	if gen == nil {
		return nil, fmt.Errorf("dialog: generator cannot be nil: %w", colloquyerrors.ErrInvalidInput)
	}
	if err := config.ValidateGenerationConfig(o.genCfg.Temperature, o.genCfg.TopP, o.genCfg.TopK, o.genCfg.MaxOutputTokens); err != nil {
		return nil, err
	}
	if err := v.Error(); err != nil {
		return nil, err
	}

	return o, nil
}

// Run starts the dialog loop on its own goroutine and returns the event
// channel. The channel is closed after the terminal event. Calling Run a
// second time returns ErrAlreadyRan.
func (o *Orchestrator) Run(ctx context.Context) (<-chan Event, error) {
	if !o.started.CompareAndSwap(false, true) {
		return nil, colloquyerrors.ErrAlreadyRan
	}
	o.setState(StateRunning)

	events := make(chan Event, o.eventBuffer)
	go o.loop(ctx, events)
	return events, nil
}

// RequestStop asks the run to stop after the current turn completes. It is
// idempotent and safe to call from any goroutine; the loop honors it only
// at iteration boundaries, so an in-flight generation call always finishes.
func (o *Orchestrator) RequestStop() {
	o.stopRequested.Store(true)
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Transcript returns a copy of the transcript accumulated so far.
func (o *Orchestrator) Transcript() []transcript.Entry {
	return o.transcript.Entries()
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) loop(ctx context.Context, events chan<- Event) {
	defer close(events)

	runCtx, span := o.tracer.Start(ctx, "dialog.run",
		trace.WithAttributes(
			attribute.Int("dialog.agent_count", o.roster.Count()),
			attribute.Bool("dialog.continuous", o.continuous),
			attribute.Int("dialog.max_turns", o.maxTurns),
			attribute.String("dialog.model", o.model),
		))
	var runErr error
	defer func() { telemetry.End(span, runErr) }()

	o.transcript.Append(transcript.NewEntry(transcript.SpeakerUser, o.prompt))
	o.logger.Info("dialog started",
		"agents", o.roster.Count(),
		"continuous", o.continuous,
		"max_turns", o.maxTurns,
		"model", o.model)

	agentIdx := 0
	rotations := 0

	for {
		if o.stopRequested.Load() || runCtx.Err() != nil {
			o.setState(StateStopped)
			o.logger.Info("dialog stopped", "rotations", rotations, "entries", o.transcript.Len())
			events <- Event{Type: EventDialogComplete}
			return
		}
		if o.continuous && o.maxTurns > 0 && rotations >= o.maxTurns {
			break
		}

		text, err := o.runTurn(runCtx, agentIdx)
		if err != nil {
			runErr = err
			o.setState(StateFailed)
			o.logger.Error("dialog failed", "agent", agentIdx, "error", err)
			events <- Event{Type: EventDialogError, Message: err.Error()}
			return
		}

		o.transcript.Append(transcript.NewEntry(transcript.AgentSpeaker(agentIdx), text))
		events <- Event{Type: EventAgentTurn, AgentIndex: agentIdx, Text: text}

		// Single-pass runs end once every agent has spoken.
		if !o.continuous && agentIdx == o.roster.Count()-1 {
			break
		}

		agentIdx = (agentIdx + 1) % o.roster.Count()
		if agentIdx == 0 {
			rotations++
		}

		o.pause(runCtx)
	}

	o.setState(StateCompleted)
	o.logger.Info("dialog completed", "rotations", rotations, "entries", o.transcript.Len())
	events <- Event{Type: EventDialogComplete}
}

func (o *Orchestrator) runTurn(ctx context.Context, agentIdx int) (string, error) {
	prompt := o.buildTurnPrompt(agentIdx)

	turnCtx, span := o.tracer.Start(ctx, "dialog.turn",
		trace.WithAttributes(attribute.Int("dialog.agent_index", agentIdx)))
	if o.tok != nil {
		tokens := o.tok.CountTokens(prompt)
		span.SetAttributes(attribute.Int("dialog.prompt_tokens", tokens))
		o.logger.Debug("turn prompt built", "agent", agentIdx, "prompt_tokens", tokens)
	}

	text, err := o.gen.Generate(turnCtx, prompt, o.genCfg)
	telemetry.End(span, err)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		// One agent failing to produce text should not abort an otherwise
		// useful session.
		text = fmt.Sprintf("Agent %d could not generate a response.", agentIdx+1)
	}
	return text, nil
}

// buildTurnPrompt assembles the deterministic per-turn prompt from the
// agent's identity and role, the original user query, and a history window:
// the full transcript in single-pass mode, the most recent entries (in
// chronological order) in continuous mode.
func (o *Orchestrator) buildTurnPrompt(agentIdx int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are Agent %d. %s\n\n", agentIdx+1, o.roster.Role(agentIdx))
	b.WriteString("User Query: ")
	b.WriteString(o.prompt)
	b.WriteString("\n\n")

	window := 0
	if o.continuous {
		window = o.historyWindow
	}
	if entries := o.transcript.Window(window); len(entries) > 0 {
		b.WriteString("Previous responses:\n")
		b.WriteString(transcript.Render(entries))
	}

	if o.continuous {
		fmt.Fprintf(&b, "\nAs Agent %d, continue the conversation by responding to the previous messages. Keep your response concise and focused. Address the most recent points made by other agents.", agentIdx+1)
	} else {
		fmt.Fprintf(&b, "\nNow, as Agent %d, provide your response:", agentIdx+1)
	}
	return b.String()
}

// pause yields between turns so a concurrent caller can service the stop
// flag or update progress. Pacing only; correctness does not depend on it.
func (o *Orchestrator) pause(ctx context.Context) {
	if o.turnDelay <= 0 {
		return
	}
	select {
	case <-time.After(o.turnDelay):
	case <-ctx.Done():
	}
}
