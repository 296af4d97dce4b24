package core

import (
	"context"
	"errors"
	"time"
)

// Phase tracks how far a pipeline run has progressed.
type Phase string

const (
	PhaseStarted           Phase = "started"
	PhaseRewritten         Phase = "rewritten"
	PhaseEmotionTagged     Phase = "emotion_tagged"
	PhaseCBTDrafted        Phase = "cbt_drafted"
	PhaseResourcesAttached Phase = "resources_attached"
	PhaseEthicsChecked     Phase = "ethics_checked"
	PhaseFinalized         Phase = "finalized"
	PhaseBlocked           Phase = "blocked"
	PhaseFailed            Phase = "failed"
)

// ErrEmptyQuery is returned when the input is empty or whitespace-only.
// It is the only error Run surfaces to callers; every other failure is
// folded into the apology result.
var ErrEmptyQuery = errors.New("query is empty")

// Resource is a single suggested resource entry.
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
	Kind  string `json:"kind,omitempty"` // hotline, app, book, worksheet, web, suggestion
	Note  string `json:"note,omitempty"`
}

// EthicsVerdict is the pass/fail judgment produced by the ethics step.
type EthicsVerdict struct {
	Safe     bool     `json:"safe"`
	Feedback string   `json:"feedback,omitempty"`
	Concerns []string `json:"concerns,omitempty"`
}

// TraceEntry records one step's contribution for debugging.
type TraceEntry struct {
	Role     string        `json:"role"`
	Content  string        `json:"content"`
	Model    string        `json:"model,omitempty"`
	Duration time.Duration `json:"duration"`
}

// SessionState is the record threaded through all steps for one request.
// Each step writes only its own designated fields and never mutates an
// earlier field; the state lives for the duration of the request only.
type SessionState struct {
	ID        string
	StartedAt time.Time
	Phase     Phase

	OriginalQuery          string
	RewrittenQuery         string
	DetectedEmotion        string
	TherapeuticResponse    string
	SuggestedResources     []Resource
	ScheduleRecommendation string
	Ethics                 EthicsVerdict
	FinalResponse          string

	Trace []TraceEntry

	// accounting, accumulated by steps
	TokensUsed int64
	Cost       float64
}

// QueryText returns the text downstream steps should analyse: the rewritten
// query when the rewrite produced one, the original otherwise.
func (s *SessionState) QueryText() string {
	if s.RewrittenQuery != "" {
		return s.RewrittenQuery
	}
	return s.OriginalQuery
}

func (s *SessionState) addTrace(role, content, model string, d time.Duration) {
	s.Trace = append(s.Trace, TraceEntry{Role: role, Content: content, Model: model, Duration: d})
}

// Result is the final outcome of one pipeline run.
type Result struct {
	RunID          string        `json:"run_id"`
	Answer         string        `json:"answer"`
	Phase          Phase         `json:"phase"`
	Emotion        string        `json:"emotion,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	TokensUsed     int64         `json:"tokens_used"`
	Cost           float64       `json:"cost"`
	Trace          []TraceEntry  `json:"trace,omitempty"`
}

// Step is one stage of the fixed pipeline.
type Step interface {
	Name() string
	Execute(ctx context.Context, state *SessionState) error
}

// ModelInfo describes a configured model
type ModelInfo struct {
	Name            string
	Provider        string
	MaxTokens       int
	CostPer1KInput  float64
	CostPer1KOutput float64
	Description     string
}

// LLMProvider is the interface to the hosted language model
type LLMProvider interface {
	Generate(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, error)
	GenerateWithTokens(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, int64, int64, error)
	GetAvailableModels() []string
	GetModelInfo(model string) (ModelInfo, error)
	CalculateCost(inputTokens, outputTokens int64, model string) float64
}
