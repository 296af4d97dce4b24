package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Nithin218/MindMate-AI/config"
	"github.com/Nithin218/MindMate-AI/internal/agent/telemetry"
	"github.com/Nithin218/MindMate-AI/internal/resources"
)

// stubProvider scripts the reply for each pipeline step, keyed off the
// prompt's instruction block. Replies for a step are consumed in order so a
// test can make a retry behave differently from the first attempt.
type stubProvider struct {
	mu       sync.Mutex
	calls    []string
	replies  map[string][]string
	failStep string
}

func stepKind(prompt string) string {
	switch {
	case strings.Contains(prompt, "query rewrite assistant"):
		return "rewrite"
	case strings.Contains(prompt, "emotion analysis assistant"):
		return "emotion"
	case strings.Contains(prompt, "CBT (Cognitive"):
		return "cbt"
	case strings.Contains(prompt, "resource and schedule assistant"):
		return "resources"
	case strings.Contains(prompt, "ethics reviewer"):
		return "ethics"
	case strings.Contains(prompt, "writer assistant"):
		return "writer"
	default:
		return "unknown"
	}
}

func (p *stubProvider) GenerateWithTokens(ctx context.Context, prompt, model string, options map[string]interface{}) (string, int64, int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kind := stepKind(prompt)
	p.calls = append(p.calls, kind)
	if kind == p.failStep {
		return "", 0, 0, fmt.Errorf("%s: provider unavailable", kind)
	}
	queue := p.replies[kind]
	if len(queue) == 0 {
		return "", 0, 0, fmt.Errorf("no scripted reply for %s", kind)
	}
	reply := queue[0]
	if len(queue) > 1 {
		p.replies[kind] = queue[1:]
	}
	return reply, 10, 20, nil
}

func (p *stubProvider) Generate(ctx context.Context, prompt, model string, options map[string]interface{}) (string, error) {
	resp, _, _, err := p.GenerateWithTokens(ctx, prompt, model, options)
	return resp, err
}

func (p *stubProvider) GetAvailableModels() []string { return []string{"stub"} }

func (p *stubProvider) GetModelInfo(string) (ModelInfo, error) {
	return ModelInfo{Name: "stub"}, nil
}
func (p *stubProvider) CalculateCost(in, out int64, model string) float64 {
	return float64(in+out) / 1000
}

func (p *stubProvider) callsFor(kind string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c == kind {
			n++
		}
	}
	return n
}

func happyReplies() map[string][]string {
	return map[string][]string{
		"rewrite":   {"I am feeling hopeless and need support today."},
		"emotion":   {`{"emotion": "sadness", "confidence": "high", "secondary_emotions": []}`},
		"cbt":       {"When hopelessness takes over, a thought record can help you examine the evidence for and against that thought."},
		"resources": {`{"schedule": {"daily_activities": ["10 minute walk"], "weekly_goals": ["one social contact"], "timing_recommendations": "mornings work best"}, "resources": ["Mood journaling"]}`},
		"ethics":    {`{"ethical": true, "feedback": "Response is supportive and appropriate", "concerns": []}`},
		"writer":    {"I hear how heavy things feel right now. A thought record can help you examine the evidence for that hopeless thought. Try a 10 minute walk each morning."},
	}
}

func testConfig(retries int) *config.Config {
	return &config.Config{
		General: config.GeneralConfig{MaxProcessingTime: 30 * time.Second},
		LLM: config.LLMConfig{
			Routing: config.LLMRoutingConfig{Fallback: "stub"},
		},
		Pipeline: config.PipelineConfig{
			MaxEthicsRetries:    retries,
			SafeFallbackMessage: config.DefaultSafeFallbackMessage,
			ApologyMessage:      config.DefaultApologyMessage,
			IncludeTrace:        true,
		},
		Resources: config.ResourcesConfig{MaxLibraryHits: 3},
	}
}

func testOrchestrator(t *testing.T, cfg *config.Config, stub *stubProvider) *Orchestrator {
	t.Helper()
	library, err := resources.NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	logger := log.New(log.Writer(), "[ORCH-TEST] ", log.LstdFlags)
	tele := telemetry.NewTelemetry(config.TelemetryConfig{})
	return newOrchestrator(cfg, logger, tele, stub, library, nil, nil, nil)
}

func TestRunHappyPath(t *testing.T) {
	stub := &stubProvider{replies: happyReplies()}
	orch := testOrchestrator(t, testConfig(0), stub)

	result, err := orch.Run(context.Background(), "I feel hopeless today")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Phase != PhaseFinalized {
		t.Fatalf("expected phase %s, got %s", PhaseFinalized, result.Phase)
	}
	if result.Emotion != "sadness" {
		t.Fatalf("expected emotion sadness, got %q", result.Emotion)
	}
	if !strings.Contains(result.Answer, "thought record") {
		t.Fatalf("final answer missing therapeutic content: %q", result.Answer)
	}
	if result.RunID == "" {
		t.Fatalf("expected a run id")
	}
	if result.TokensUsed != 6*30 {
		t.Fatalf("expected 180 tokens accumulated, got %d", result.TokensUsed)
	}

	want := []string{"rewrite", "emotion", "cbt", "resources", "ethics", "writer"}
	if len(stub.calls) != len(want) {
		t.Fatalf("expected %d provider calls, got %d: %v", len(want), len(stub.calls), stub.calls)
	}
	for i, kind := range want {
		if stub.calls[i] != kind {
			t.Fatalf("call %d: expected %s, got %s", i, kind, stub.calls[i])
		}
	}
}

func TestRunBlockedByEthics(t *testing.T) {
	replies := happyReplies()
	replies["ethics"] = []string{`{"ethical": false, "feedback": "advice exceeds professional boundaries", "concerns": ["boundaries"]}`}
	stub := &stubProvider{replies: replies}
	orch := testOrchestrator(t, testConfig(0), stub)

	result, err := orch.Run(context.Background(), "I feel hopeless today")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Phase != PhaseBlocked {
		t.Fatalf("expected phase %s, got %s", PhaseBlocked, result.Phase)
	}
	if result.Answer != config.DefaultSafeFallbackMessage {
		t.Fatalf("expected safe fallback message, got %q", result.Answer)
	}
	if n := stub.callsFor("writer"); n != 0 {
		t.Fatalf("writer must not run after a failed ethics review, got %d calls", n)
	}
}

func TestRunEthicsRetrySucceeds(t *testing.T) {
	replies := happyReplies()
	replies["ethics"] = []string{
		`{"ethical": false, "feedback": "first draft too prescriptive", "concerns": ["prescriptive"]}`,
		`{"ethical": true, "feedback": "revised draft is appropriate", "concerns": []}`,
	}
	stub := &stubProvider{replies: replies}
	orch := testOrchestrator(t, testConfig(2), stub)

	result, err := orch.Run(context.Background(), "I feel hopeless today")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Phase != PhaseFinalized {
		t.Fatalf("expected phase %s after retry, got %s", PhaseFinalized, result.Phase)
	}
	if n := stub.callsFor("cbt"); n != 2 {
		t.Fatalf("expected cbt to run twice, got %d", n)
	}
	if n := stub.callsFor("ethics"); n != 2 {
		t.Fatalf("expected ethics to run twice, got %d", n)
	}
	if n := stub.callsFor("writer"); n != 1 {
		t.Fatalf("expected writer to run once, got %d", n)
	}
}

func TestRunRetriesExhausted(t *testing.T) {
	replies := happyReplies()
	replies["ethics"] = []string{`{"ethical": false, "feedback": "still unsafe", "concerns": ["unsafe"]}`}
	stub := &stubProvider{replies: replies}
	orch := testOrchestrator(t, testConfig(2), stub)

	result, err := orch.Run(context.Background(), "I feel hopeless today")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Phase != PhaseBlocked {
		t.Fatalf("expected phase %s, got %s", PhaseBlocked, result.Phase)
	}
	if result.Answer != config.DefaultSafeFallbackMessage {
		t.Fatalf("expected safe fallback message, got %q", result.Answer)
	}
	if n := stub.callsFor("ethics"); n != 3 {
		t.Fatalf("expected 3 ethics reviews (initial + 2 retries), got %d", n)
	}
}

func TestRunStepFailureReturnsApology(t *testing.T) {
	stub := &stubProvider{replies: happyReplies(), failStep: "cbt"}
	orch := testOrchestrator(t, testConfig(0), stub)

	result, err := orch.Run(context.Background(), "I feel hopeless today")
	if err != nil {
		t.Fatalf("Run must fold step failures into the result, got error: %v", err)
	}
	if result.Phase != PhaseFailed {
		t.Fatalf("expected phase %s, got %s", PhaseFailed, result.Phase)
	}
	if result.Answer != config.DefaultApologyMessage {
		t.Fatalf("expected apology message, got %q", result.Answer)
	}
	for _, kind := range []string{"resources", "ethics", "writer"} {
		if n := stub.callsFor(kind); n != 0 {
			t.Fatalf("%s must not run after an earlier step failed, got %d calls", kind, n)
		}
	}
}

func TestRunEmptyQuery(t *testing.T) {
	stub := &stubProvider{replies: happyReplies()}
	orch := testOrchestrator(t, testConfig(0), stub)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := orch.Run(context.Background(), q)
		if !errors.Is(err, ErrEmptyQuery) {
			t.Fatalf("query %q: expected ErrEmptyQuery, got %v", q, err)
		}
	}
	if len(stub.calls) != 0 {
		t.Fatalf("empty input must not reach the provider, got calls: %v", stub.calls)
	}
}

func TestRunDeterministicAnswer(t *testing.T) {
	run := func() string {
		stub := &stubProvider{replies: happyReplies()}
		orch := testOrchestrator(t, testConfig(0), stub)
		result, err := orch.Run(context.Background(), "I feel hopeless today")
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return result.Answer
	}
	first, second := run(), run()
	if first != second {
		t.Fatalf("same input and replies must produce the same answer:\n%q\n%q", first, second)
	}
}
