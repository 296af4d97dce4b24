package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Nithin218/MindMate-AI/config"
	"github.com/Nithin218/MindMate-AI/internal/agent/telemetry"
	appcache "github.com/Nithin218/MindMate-AI/internal/cache"
	"github.com/Nithin218/MindMate-AI/internal/resources"
	"github.com/Nithin218/MindMate-AI/tools/webfetch"
	"github.com/Nithin218/MindMate-AI/tools/websearch"
)

// Orchestrator threads a fresh SessionState through the six pipeline steps
// in fixed order and decides whether to short-circuit on an ethics failure.
type Orchestrator struct {
	config    *config.Config
	logger    *log.Logger
	telemetry *telemetry.Telemetry
	llm       LLMProvider
	cache     appcache.Cache

	rewrite   Step
	emotion   Step
	cbt       Step
	resources Step
	ethics    Step
	writer    Step
}

// NewOrchestrator creates a new orchestrator instance with all dependencies
// built from configuration.
func NewOrchestrator(cfg *config.Config, logger *log.Logger, tele *telemetry.Telemetry) (*Orchestrator, error) {
	llm, err := NewLLMProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	library, err := resources.NewLibrary()
	if err != nil {
		return nil, fmt.Errorf("failed to build resource library: %w", err)
	}

	lookupCache, err := appcache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	var searcher websearch.WebSearcher
	if cfg.Tools.WebSearch.Provider != "" {
		apiKey := cfg.Tools.WebSearch.SerperAPIKey
		if cfg.Tools.WebSearch.Provider == "brave" {
			apiKey = cfg.Tools.WebSearch.BraveAPIKey
		}
		searcher, err = websearch.NewWebSearcher(websearch.Provider(cfg.Tools.WebSearch.Provider), apiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create web searcher: %w", err)
		}
	}

	var fetcher *webfetch.Fetch
	if cfg.Tools.WebFetch.Enabled {
		fetcher = &webfetch.Fetch{
			Timeout:  cfg.Tools.WebFetch.Timeout,
			MaxChars: cfg.Tools.WebFetch.MaxChars,
		}
	}

	return newOrchestrator(cfg, logger, tele, llm, library, searcher, fetcher, lookupCache), nil
}

// newOrchestrator wires the steps from explicit dependencies; tests use it
// to inject a deterministic provider.
func newOrchestrator(cfg *config.Config, logger *log.Logger, tele *telemetry.Telemetry,
	llm LLMProvider, library *resources.Library, searcher websearch.WebSearcher,
	fetcher *webfetch.Fetch, lookupCache appcache.Cache) *Orchestrator {
	routing := cfg.LLM.Routing
	return &Orchestrator{
		config:    cfg,
		logger:    logger,
		telemetry: tele,
		llm:       llm,
		cache:     lookupCache,
		rewrite:   NewRewriteStep(llm, routing.Resolve("rewrite")),
		emotion:   NewEmotionStep(llm, routing.Resolve("analysis")),
		cbt:       NewCBTStep(llm, routing.Resolve("therapy")),
		resources: NewResourcesStep(llm, routing.Resolve("resources"),
			library, cfg.Resources.MaxLibraryHits,
			searcher, cfg.Tools.WebSearch.MaxResults,
			fetcher, lookupCache, cfg.Cache.TTL),
		ethics: NewEthicsStep(llm, routing.Resolve("safety")),
		writer: NewWriterStep(llm, routing.Resolve("writing")),
	}
}

// LLM exposes the orchestrator's underlying LLM provider.
func (o *Orchestrator) LLM() LLMProvider {
	return o.llm
}

// Close releases the lookup cache.
func (o *Orchestrator) Close() error {
	if o.cache != nil {
		return o.cache.Close()
	}
	return nil
}

// Run processes a user query through the full pipeline and returns the final
// answer. The only error it returns is ErrEmptyQuery for blank input; every
// other failure is folded into the apology result so callers always have
// text to show.
func (o *Orchestrator) Run(ctx context.Context, query string) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, ErrEmptyQuery
	}

	state := &SessionState{
		ID:            uuid.New().String(),
		StartedAt:     time.Now(),
		Phase:         PhaseStarted,
		OriginalQuery: query,
	}

	ctx, cancel := context.WithTimeout(ctx, o.config.General.MaxProcessingTime)
	defer cancel()

	o.logger.Printf("run %s started", state.ID)

	for _, step := range []Step{o.rewrite, o.emotion, o.cbt, o.resources, o.ethics} {
		if err := o.runStep(ctx, step, state); err != nil {
			return o.failResult(ctx, state), nil
		}
	}

	// ethics retry loop: re-draft and re-review up to the configured budget
	attempts := 0
	for !state.Ethics.Safe && attempts < o.config.Pipeline.MaxEthicsRetries {
		attempts++
		o.logger.Printf("run %s: ethics verdict unsafe, retry %d/%d", state.ID, attempts, o.config.Pipeline.MaxEthicsRetries)
		for _, step := range []Step{o.cbt, o.resources, o.ethics} {
			if err := o.runStep(ctx, step, state); err != nil {
				return o.failResult(ctx, state), nil
			}
		}
	}

	if !state.Ethics.Safe {
		state.Phase = PhaseBlocked
		o.logger.Printf("run %s blocked by ethics review: %s", state.ID, state.Ethics.Feedback)
		return o.finish(ctx, state, o.config.Pipeline.SafeFallbackMessage), nil
	}

	if err := o.runStep(ctx, o.writer, state); err != nil {
		return o.failResult(ctx, state), nil
	}

	return o.finish(ctx, state, state.FinalResponse), nil
}

func (o *Orchestrator) runStep(ctx context.Context, step Step, state *SessionState) error {
	start := time.Now()
	tokensBefore, costBefore := state.TokensUsed, state.Cost

	err := step.Execute(ctx, state)

	event := telemetry.StepEvent{
		Step:     step.Name(),
		Duration: time.Since(start),
		Success:  err == nil,
		TokensIn: state.TokensUsed - tokensBefore,
		Cost:     state.Cost - costBefore,
	}
	if len(state.Trace) > 0 {
		event.Model = state.Trace[len(state.Trace)-1].Model
	}
	o.telemetry.RecordStepEvent(ctx, event)

	if err != nil {
		o.logger.Printf("run %s: step %s failed: %v", state.ID, step.Name(), err)
		return err
	}
	return nil
}

func (o *Orchestrator) failResult(ctx context.Context, state *SessionState) Result {
	state.Phase = PhaseFailed
	return o.finish(ctx, state, o.config.Pipeline.ApologyMessage)
}

func (o *Orchestrator) finish(ctx context.Context, state *SessionState, answer string) Result {
	elapsed := time.Since(state.StartedAt)

	o.telemetry.RecordRunEvent(ctx, telemetry.RunEvent{
		ID:             state.ID,
		Outcome:        string(state.Phase),
		ProcessingTime: elapsed,
		Cost:           state.Cost,
		TokensUsed:     state.TokensUsed,
		Emotion:        state.DetectedEmotion,
	})

	result := Result{
		RunID:          state.ID,
		Answer:         answer,
		Phase:          state.Phase,
		Emotion:        state.DetectedEmotion,
		ProcessingTime: elapsed,
		TokensUsed:     state.TokensUsed,
		Cost:           state.Cost,
	}
	if o.config.Pipeline.IncludeTrace {
		result.Trace = state.Trace
	}
	return result
}
