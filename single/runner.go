// Package single runs one named agent persona against a text generation
// backend, optionally folding the agent's accumulated memory into the
// prompt and recording each exchange back into memory.
package single

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sweetpotato0/colloquy/config"
	"github.com/sweetpotato0/colloquy/generator"
	"github.com/sweetpotato0/colloquy/memory"
	"github.com/sweetpotato0/colloquy/pkg/logging"
)

// Runner executes single-agent turns. Unlike a dialog orchestrator it is
// reusable: each Run is an independent exchange.
type Runner struct {
	name         string
	instructions string
	genCfg       generator.Config
	gen          generator.TextGenerator
	mem          *memory.AgentMemory
	memIndex     int
	logger       *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithInstructions sets the agent's behavioral instructions.
func WithInstructions(instructions string) Option {
	return func(r *Runner) {
		r.instructions = instructions
	}
}

// WithGenerationConfig overrides the sampling parameters.
func WithGenerationConfig(cfg generator.Config) Option {
	return func(r *Runner) {
		r.genCfg = cfg
	}
}

// WithMemory attaches an agent memory; exchanges are summarized into
// prompts and recorded after each run. memIndex selects the agent's slot.
func WithMemory(mem *memory.AgentMemory, memIndex int) Option {
	return func(r *Runner) {
		r.mem = mem
		r.memIndex = memIndex
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Runner for the named agent persona.
func New(name string, gen generator.TextGenerator, opts ...Option) (*Runner, error) {
	r := &Runner{
		name:   name,
		genCfg: generator.DefaultConfig(),
		gen:    gen,
		logger: logging.WithComponent("single"),
	}
	for _, opt := range opts {
		opt(r)
	}

	v := config.NewValidator()
	v.RequireNonEmpty("name", name)
	if gen == nil {
		return nil, fmt.Errorf("single: generator cannot be nil")
	}
	if err := config.ValidateGenerationConfig(r.genCfg.Temperature, r.genCfg.TopP, r.genCfg.TopK, r.genCfg.MaxOutputTokens); err != nil {
		return nil, err
	}
	if err := v.Error(); err != nil {
		return nil, err
	}
	return r, nil
}

// Run executes one exchange and returns the agent's response.
func (r *Runner) Run(ctx context.Context, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("single: input cannot be empty")
	}

	prompt := r.buildPrompt(input)

	start := time.Now()
	response, err := r.gen.Generate(ctx, prompt, r.genCfg)
	if err != nil {
		r.logger.Error("single agent run failed", "agent", r.name, "error", err)
		return "", err
	}
	r.logger.Info("single agent run completed",
		"agent", r.name,
		"duration_ms", time.Since(start).Milliseconds())

	if r.mem != nil {
		r.mem.Add(r.memIndex, fmt.Sprintf("User: %s\nYou: %s", input, response))
	}
	return response, nil
}

func (r *Runner) buildPrompt(input string) string {
	memoryBlock := ""
	if r.mem != nil {
		if summary := r.mem.Summarize(r.memIndex); summary != "" {
			memoryBlock = fmt.Sprintf("\nYour memory contains the following information:\n%s", summary)
		}
	}
	return fmt.Sprintf("You are %s. %s%s\n\nUser query: %s\n\nResponse:",
		r.name, r.instructions, memoryBlock, input)
}
