package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	appcache "github.com/Nithin218/MindMate-AI/internal/cache"
	"github.com/Nithin218/MindMate-AI/internal/resources"
	"github.com/Nithin218/MindMate-AI/tools/webfetch"
	"github.com/Nithin218/MindMate-AI/tools/websearch"
	searchmodels "github.com/Nithin218/MindMate-AI/tools/websearch/models"
	"github.com/Nithin218/MindMate-AI/utils"
)

// highUrgencyIndicators and mediumUrgencyIndicators flag queries that need
// crisis resources pinned ahead of everything else.
var highUrgencyIndicators = []string{
	"crisis", "emergency", "suicide", "self-harm", "can't cope",
	"breaking down", "desperate", "can't go on",
}

var mediumUrgencyIndicators = []string{
	"panic attack", "severe anxiety", "can't sleep", "not eating",
	"isolated", "hopeless", "overwhelmed",
}

// ResourcesStep attaches resource suggestions and a schedule recommendation.
// Library hits come from the curated index; the optional web searcher
// enriches them, with lookups memoized in the cache. Enrichment failures
// never fail the step.
type ResourcesStep struct {
	llm         LLMProvider
	model       string
	library     *resources.Library
	libraryHits int
	searcher    websearch.WebSearcher
	maxResults  int
	fetcher     *webfetch.Fetch
	cache       appcache.Cache
	cacheTTL    time.Duration
	logger      *log.Logger
}

// NewResourcesStep creates the resource suggestion step. searcher, fetcher
// and cache may be nil; the step degrades to library and LLM suggestions.
func NewResourcesStep(llm LLMProvider, model string, library *resources.Library, libraryHits int,
	searcher websearch.WebSearcher, maxResults int, fetcher *webfetch.Fetch,
	c appcache.Cache, cacheTTL time.Duration) *ResourcesStep {
	return &ResourcesStep{
		llm:         llm,
		model:       model,
		library:     library,
		libraryHits: libraryHits,
		searcher:    searcher,
		maxResults:  maxResults,
		fetcher:     fetcher,
		cache:       c,
		cacheTTL:    cacheTTL,
		logger:      log.New(log.Writer(), "[RESOURCES-STEP] ", log.LstdFlags),
	}
}

func (s *ResourcesStep) Name() string { return "resources" }

func (s *ResourcesStep) Execute(ctx context.Context, state *SessionState) error {
	start := time.Now()

	prompt := fmt.Sprintf(resourcesPrompt, state.TherapeuticResponse, state.DetectedEmotion)
	resp, in, out, err := s.llm.GenerateWithTokens(ctx, prompt, s.model, nil)
	if err != nil {
		return fmt.Errorf("resources: %w", err)
	}
	state.TokensUsed += in + out
	state.Cost += s.llm.CalculateCost(in, out, s.model)

	var parsed struct {
		Schedule struct {
			DailyActivities []string `json:"daily_activities"`
			WeeklyGoals     []string `json:"weekly_goals"`
			Timing          string   `json:"timing_recommendations"`
		} `json:"schedule"`
		Resources []string `json:"resources"`
	}
	var list []Resource
	if err := json.Unmarshal([]byte(extractJSON(resp)), &parsed); err == nil {
		state.ScheduleRecommendation = formatSchedule(parsed.Schedule.DailyActivities, parsed.Schedule.WeeklyGoals, parsed.Schedule.Timing)
		for _, r := range parsed.Resources {
			if r = strings.TrimSpace(r); r != "" {
				list = append(list, Resource{Title: r, Kind: "suggestion"})
			}
		}
	} else {
		// model ignored the JSON instruction; keep its text as the schedule
		s.logger.Printf("resources reply not parseable, using raw text as schedule")
		state.ScheduleRecommendation = strings.TrimSpace(resp)
	}

	list = append(list, s.libraryResources(state)...)
	list = append(list, s.webResources(ctx, state)...)

	// crisis-grade queries always lead with the hotline entries
	if level := urgencyLevel(state.OriginalQuery); level == "crisis" || level == "high" {
		var pinned []Resource
		for _, e := range s.library.Crisis() {
			pinned = append(pinned, Resource{Title: e.Title, URL: e.URL, Kind: e.Kind, Note: e.Note})
		}
		list = append(pinned, list...)
	}

	state.SuggestedResources = dedupeResources(list)
	state.Phase = PhaseResourcesAttached
	state.addTrace("resource_schedule", resp, s.model, time.Since(start))
	return nil
}

func (s *ResourcesStep) libraryResources(state *SessionState) []Resource {
	if s.library == nil {
		return nil
	}
	hits, err := s.library.Search(state.DetectedEmotion, state.QueryText(), s.libraryHits)
	if err != nil {
		s.logger.Printf("library search failed: %v", err)
		return nil
	}
	var out []Resource
	for _, e := range hits {
		out = append(out, Resource{Title: e.Title, URL: e.URL, Kind: e.Kind, Note: e.Note})
	}
	return out
}

// webResources looks up external resources for the detected emotion. Any
// failure here degrades to an empty slice; the pipeline must not abort on
// enrichment problems.
func (s *ResourcesStep) webResources(ctx context.Context, state *SessionState) []Resource {
	if s.searcher == nil {
		return nil
	}

	query := fmt.Sprintf("%s coping resources self help", state.DetectedEmotion)
	results, ok := s.cachedResults(ctx, query)
	if !ok {
		var err error
		results, err = s.searcher.Discover(ctx, query, s.maxResults)
		if err != nil {
			s.logger.Printf("web search failed, skipping enrichment: %v", err)
			return nil
		}
		s.storeResults(ctx, query, results)
	}

	var out []Resource
	for i, r := range results {
		res := Resource{Title: r.Title, URL: r.URL, Kind: "web", Note: r.Snippet}
		if s.fetcher != nil && i == 0 {
			if page, err := s.fetcher.Extract(ctx, r.URL); err == nil && page.Excerpt != "" {
				res.Note = page.Excerpt
			}
		}
		out = append(out, res)
	}
	return out
}

func (s *ResourcesStep) cachedResults(ctx context.Context, query string) ([]searchmodels.Result, bool) {
	if s.cache == nil {
		return nil, false
	}
	b, ok := s.cache.Get(ctx, "websearch:"+utils.SHA1Hex(query))
	if !ok {
		return nil, false
	}
	var results []searchmodels.Result
	if err := json.Unmarshal(b, &results); err != nil {
		return nil, false
	}
	return results, true
}

func (s *ResourcesStep) storeResults(ctx context.Context, query string, results []searchmodels.Result) {
	if s.cache == nil || len(results) == 0 {
		return
	}
	b, err := json.Marshal(results)
	if err != nil {
		return
	}
	s.cache.Set(ctx, "websearch:"+utils.SHA1Hex(query), b, s.cacheTTL)
}

// urgencyLevel scores the query against crisis indicators.
func urgencyLevel(text string) string {
	t := strings.ToLower(text)
	score := 0
	for _, indicator := range highUrgencyIndicators {
		if strings.Contains(t, indicator) {
			score += 3
		}
	}
	for _, indicator := range mediumUrgencyIndicators {
		if strings.Contains(t, indicator) {
			score++
		}
	}
	switch {
	case score >= 3:
		return "crisis"
	case score >= 2:
		return "high"
	case score >= 1:
		return "standard"
	default:
		return "low"
	}
}

func formatSchedule(daily, weekly []string, timing string) string {
	var b strings.Builder
	if len(daily) > 0 {
		b.WriteString("Daily practices:\n")
		for _, d := range daily {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	if len(weekly) > 0 {
		b.WriteString("Weekly goals:\n")
		for _, w := range weekly {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	if timing != "" {
		fmt.Fprintf(&b, "Timing: %s\n", timing)
	}
	return strings.TrimSpace(b.String())
}

func dedupeResources(in []Resource) []Resource {
	seen := make(map[string]struct{}, len(in))
	var out []Resource
	for _, r := range in {
		key := strings.ToLower(r.Title)
		if r.URL != "" {
			key = r.URL
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
