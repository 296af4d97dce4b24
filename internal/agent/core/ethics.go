package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

// unsafeIndicators is the keyword fallback when the ethics reply cannot be
// parsed as JSON.
var unsafeIndicators = []string{"harmful", "inappropriate", "unethical", "dangerous"}

// EthicsStep reviews the drafted response and resources for safety.
type EthicsStep struct {
	llm    LLMProvider
	model  string
	logger *log.Logger
}

// NewEthicsStep creates the ethics review step
func NewEthicsStep(llm LLMProvider, model string) *EthicsStep {
	return &EthicsStep{
		llm:    llm,
		model:  model,
		logger: log.New(log.Writer(), "[ETHICS-STEP] ", log.LstdFlags),
	}
}

func (s *EthicsStep) Name() string { return "ethics" }

func (s *EthicsStep) Execute(ctx context.Context, state *SessionState) error {
	start := time.Now()

	prompt := fmt.Sprintf(ethicsPrompt, state.TherapeuticResponse, state.ScheduleRecommendation, resourceTitles(state.SuggestedResources))
	resp, in, out, err := s.llm.GenerateWithTokens(ctx, prompt, s.model, nil)
	if err != nil {
		return fmt.Errorf("ethics: %w", err)
	}
	state.TokensUsed += in + out
	state.Cost += s.llm.CalculateCost(in, out, s.model)

	var parsed struct {
		Ethical  bool     `json:"ethical"`
		Feedback string   `json:"feedback"`
		Concerns []string `json:"concerns"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp)), &parsed); err == nil {
		state.Ethics = EthicsVerdict{Safe: parsed.Ethical, Feedback: parsed.Feedback, Concerns: parsed.Concerns}
	} else {
		// assume safe unless the reviewer's prose names an explicit concern
		verdict := EthicsVerdict{Safe: true, Feedback: "Ethical review completed"}
		lower := strings.ToLower(resp)
		for _, indicator := range unsafeIndicators {
			if strings.Contains(lower, indicator) {
				verdict = EthicsVerdict{
					Safe:     false,
					Feedback: "Ethical concerns identified in response",
					Concerns: []string{indicator},
				}
				break
			}
		}
		s.logger.Printf("ethics reply not parseable, keyword fallback verdict safe=%t", verdict.Safe)
		state.Ethics = verdict
	}

	state.Phase = PhaseEthicsChecked
	state.addTrace("ethical_guardian", resp, s.model, time.Since(start))
	return nil
}

func resourceTitles(rs []Resource) string {
	titles := make([]string, 0, len(rs))
	for _, r := range rs {
		titles = append(titles, r.Title)
	}
	return strings.Join(titles, "; ")
}
