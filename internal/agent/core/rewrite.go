package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// RewriteStep normalizes the user query into a form suitable for analysis.
type RewriteStep struct {
	llm    LLMProvider
	model  string
	logger *log.Logger
}

// NewRewriteStep creates the query rewriting step
func NewRewriteStep(llm LLMProvider, model string) *RewriteStep {
	return &RewriteStep{
		llm:    llm,
		model:  model,
		logger: log.New(log.Writer(), "[REWRITE-STEP] ", log.LstdFlags),
	}
}

func (s *RewriteStep) Name() string { return "rewrite" }

func (s *RewriteStep) Execute(ctx context.Context, state *SessionState) error {
	start := time.Now()
	s.logger.Printf("rewriting user query (run %s)", state.ID)

	prompt := fmt.Sprintf(rewritePrompt, state.OriginalQuery)
	resp, in, out, err := s.llm.GenerateWithTokens(ctx, prompt, s.model, nil)
	if err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}

	state.RewrittenQuery = strings.TrimSpace(resp)
	state.TokensUsed += in + out
	state.Cost += s.llm.CalculateCost(in, out, s.model)
	state.Phase = PhaseRewritten
	state.addTrace("rewrite", state.RewrittenQuery, s.model, time.Since(start))
	return nil
}
