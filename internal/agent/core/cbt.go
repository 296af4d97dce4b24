package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// CBTStep drafts the therapeutic response from the query and emotion.
type CBTStep struct {
	llm    LLMProvider
	model  string
	logger *log.Logger
}

// NewCBTStep creates the CBT response step
func NewCBTStep(llm LLMProvider, model string) *CBTStep {
	return &CBTStep{
		llm:    llm,
		model:  model,
		logger: log.New(log.Writer(), "[CBT-STEP] ", log.LstdFlags),
	}
}

func (s *CBTStep) Name() string { return "cbt" }

func (s *CBTStep) Execute(ctx context.Context, state *SessionState) error {
	start := time.Now()

	prompt := fmt.Sprintf(cbtPrompt, state.QueryText(), state.DetectedEmotion)
	resp, in, out, err := s.llm.GenerateWithTokens(ctx, prompt, s.model, nil)
	if err != nil {
		return fmt.Errorf("cbt: %w", err)
	}

	state.TherapeuticResponse = strings.TrimSpace(resp)
	state.TokensUsed += in + out
	state.Cost += s.llm.CalculateCost(in, out, s.model)
	state.Phase = PhaseCBTDrafted
	state.addTrace("cbt_agent", state.TherapeuticResponse, s.model, time.Since(start))
	return nil
}
