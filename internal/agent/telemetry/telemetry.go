package telemetry

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Nithin218/MindMate-AI/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level collectors, registered once on the default registerer and
// served via /metrics.
var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mindmate",
		Name:      "pipeline_runs_total",
		Help:      "Pipeline runs by terminal phase.",
	}, []string{"outcome"})

	stepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mindmate",
		Name:      "step_duration_seconds",
		Help:      "Duration of pipeline steps.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"step"})

	stepErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mindmate",
		Name:      "step_errors_total",
		Help:      "Step executions that returned an error.",
	}, []string{"step"})

	llmTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mindmate",
		Name:      "llm_tokens_total",
		Help:      "Tokens consumed per model.",
	}, []string{"model", "direction"})
)

// Telemetry provides monitoring and cost tracking for the pipeline
type Telemetry struct {
	config      config.TelemetryConfig
	logger      *log.Logger
	metrics     *Metrics
	costTracker *CostTracker
	mu          sync.RWMutex
}

// Metrics holds in-process performance counters
type Metrics struct {
	TotalRuns             int64
	FinalizedRuns         int64
	BlockedRuns           int64
	FailedRuns            int64
	AverageProcessingTime time.Duration

	StepExecutions   map[string]int64
	StepAverageTimes map[string]time.Duration

	LLMRequests   map[string]int64
	LLMTokensUsed map[string]int64
}

// CostTracker tracks spend across models and steps
type CostTracker struct {
	ModelCosts  map[string]float64
	StepCosts   map[string]float64
	TotalCost   float64
	TotalTokens int64
}

// RunEvent represents a completed pipeline run
type RunEvent struct {
	ID             string
	Outcome        string // finalized, blocked, failed
	ProcessingTime time.Duration
	Cost           float64
	TokensUsed     int64
	Emotion        string
}

// StepEvent represents a single step execution
type StepEvent struct {
	Step      string
	Duration  time.Duration
	Success   bool
	Model     string
	TokensIn  int64
	TokensOut int64
	Cost      float64
}

// NewTelemetry creates a new telemetry instance
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	t := &Telemetry{
		config: cfg,
		logger: log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		metrics: &Metrics{
			StepExecutions:   make(map[string]int64),
			StepAverageTimes: make(map[string]time.Duration),
			LLMRequests:      make(map[string]int64),
			LLMTokensUsed:    make(map[string]int64),
		},
		costTracker: &CostTracker{
			ModelCosts: make(map[string]float64),
			StepCosts:  make(map[string]float64),
		},
	}

	if cfg.Enabled && cfg.PeriodicLogs {
		go t.startPeriodicLogs()
	}

	return t
}

// RecordRunEvent records a completed pipeline run
func (t *Telemetry) RecordRunEvent(ctx context.Context, event RunEvent) {
	runsTotal.WithLabelValues(event.Outcome).Inc()

	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.TotalRuns++
	switch event.Outcome {
	case "finalized":
		t.metrics.FinalizedRuns++
	case "blocked":
		t.metrics.BlockedRuns++
	case "failed":
		t.metrics.FailedRuns++
	}

	if t.metrics.TotalRuns == 1 {
		t.metrics.AverageProcessingTime = event.ProcessingTime
	} else {
		total := t.metrics.AverageProcessingTime * time.Duration(t.metrics.TotalRuns-1)
		t.metrics.AverageProcessingTime = (total + event.ProcessingTime) / time.Duration(t.metrics.TotalRuns)
	}

	if t.config.CostTracking {
		t.costTracker.TotalCost += event.Cost
		t.costTracker.TotalTokens += event.TokensUsed
	}

	t.logger.Printf("Run Event: ID=%s, Outcome=%s, Emotion=%s, Duration=%v, Cost=$%.4f, Tokens=%d",
		event.ID, event.Outcome, event.Emotion, event.ProcessingTime, event.Cost, event.TokensUsed)
}

// RecordStepEvent records a step execution
func (t *Telemetry) RecordStepEvent(ctx context.Context, event StepEvent) {
	stepDuration.WithLabelValues(event.Step).Observe(event.Duration.Seconds())
	if !event.Success {
		stepErrors.WithLabelValues(event.Step).Inc()
	}
	if event.Model != "" {
		llmTokens.WithLabelValues(event.Model, "input").Add(float64(event.TokensIn))
		llmTokens.WithLabelValues(event.Model, "output").Add(float64(event.TokensOut))
	}

	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.StepExecutions[event.Step]++
	executions := t.metrics.StepExecutions[event.Step]
	if executions == 1 {
		t.metrics.StepAverageTimes[event.Step] = event.Duration
	} else {
		total := t.metrics.StepAverageTimes[event.Step] * time.Duration(executions-1)
		t.metrics.StepAverageTimes[event.Step] = (total + event.Duration) / time.Duration(executions)
	}

	if event.Model != "" {
		t.metrics.LLMRequests[event.Model]++
		t.metrics.LLMTokensUsed[event.Model] += event.TokensIn + event.TokensOut
	}

	if t.config.CostTracking {
		t.costTracker.ModelCosts[event.Model] += event.Cost
		t.costTracker.StepCosts[event.Step] += event.Cost
	}
}

// Snapshot returns a copy of the current in-process metrics
func (t *Telemetry) Snapshot() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := Metrics{
		TotalRuns:             t.metrics.TotalRuns,
		FinalizedRuns:         t.metrics.FinalizedRuns,
		BlockedRuns:           t.metrics.BlockedRuns,
		FailedRuns:            t.metrics.FailedRuns,
		AverageProcessingTime: t.metrics.AverageProcessingTime,
		StepExecutions:        make(map[string]int64, len(t.metrics.StepExecutions)),
		StepAverageTimes:      make(map[string]time.Duration, len(t.metrics.StepAverageTimes)),
		LLMRequests:           make(map[string]int64, len(t.metrics.LLMRequests)),
		LLMTokensUsed:         make(map[string]int64, len(t.metrics.LLMTokensUsed)),
	}
	for k, v := range t.metrics.StepExecutions {
		snap.StepExecutions[k] = v
	}
	for k, v := range t.metrics.StepAverageTimes {
		snap.StepAverageTimes[k] = v
	}
	for k, v := range t.metrics.LLMRequests {
		snap.LLMRequests[k] = v
	}
	for k, v := range t.metrics.LLMTokensUsed {
		snap.LLMTokensUsed[k] = v
	}
	return snap
}

// TotalCost returns the tracked spend so far
func (t *Telemetry) TotalCost() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.costTracker.TotalCost
}

func (t *Telemetry) startPeriodicLogs() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		snap := t.Snapshot()
		t.logger.Printf("Runs: total=%d finalized=%d blocked=%d failed=%d avg=%v cost=$%.4f",
			snap.TotalRuns, snap.FinalizedRuns, snap.BlockedRuns, snap.FailedRuns,
			snap.AverageProcessingTime, t.TotalCost())
	}
}
