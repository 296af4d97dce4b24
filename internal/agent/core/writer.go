package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// WriterStep composes the final formatted answer. Only reached when the
// ethics verdict passed.
type WriterStep struct {
	llm    LLMProvider
	model  string
	logger *log.Logger
}

// NewWriterStep creates the final composition step
func NewWriterStep(llm LLMProvider, model string) *WriterStep {
	return &WriterStep{
		llm:    llm,
		model:  model,
		logger: log.New(log.Writer(), "[WRITER-STEP] ", log.LstdFlags),
	}
}

func (s *WriterStep) Name() string { return "writer" }

func (s *WriterStep) Execute(ctx context.Context, state *SessionState) error {
	start := time.Now()

	prompt := fmt.Sprintf(writerPrompt,
		state.TherapeuticResponse,
		state.ScheduleRecommendation,
		formatResources(state.SuggestedResources),
		state.DetectedEmotion)
	resp, in, out, err := s.llm.GenerateWithTokens(ctx, prompt, s.model, nil)
	if err != nil {
		return fmt.Errorf("writer: %w", err)
	}

	state.FinalResponse = strings.TrimSpace(resp)
	state.TokensUsed += in + out
	state.Cost += s.llm.CalculateCost(in, out, s.model)
	state.Phase = PhaseFinalized
	state.addTrace("writer", state.FinalResponse, s.model, time.Since(start))
	return nil
}

func formatResources(rs []Resource) string {
	var b strings.Builder
	for _, r := range rs {
		b.WriteString("- ")
		b.WriteString(r.Title)
		if r.URL != "" {
			fmt.Fprintf(&b, " (%s)", r.URL)
		}
		if r.Note != "" {
			fmt.Fprintf(&b, ": %s", r.Note)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
