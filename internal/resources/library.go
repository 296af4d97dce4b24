// Package resources holds the curated mental-health resource library. The
// entries are indexed in an in-memory bleve index so the resource step can
// retrieve them by detected emotion and query terms.
package resources

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve"
)

// Entry is one curated library resource.
type Entry struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	URL      string   `json:"url,omitempty"`
	Kind     string   `json:"kind"` // hotline, app, book, worksheet, group, website
	Note     string   `json:"note"`
	Emotions []string `json:"emotions"`
	Crisis   bool     `json:"crisis"`
}

// Library is a searchable collection of curated resources.
type Library struct {
	index   bleve.Index
	entries map[string]Entry
}

// NewLibrary builds the default library with an in-memory index.
func NewLibrary() (*Library, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	l := &Library{index: index, entries: make(map[string]Entry)}
	for _, e := range defaultEntries() {
		if err := l.add(e); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Library) add(e Entry) error {
	l.entries[e.ID] = e
	if err := l.index.Index(e.ID, e); err != nil {
		return fmt.Errorf("index %s: %w", e.ID, err)
	}
	return nil
}

// Search returns up to k entries matching the emotion and query terms,
// best match first.
func (l *Library) Search(emotion, query string, k int) ([]Entry, error) {
	if k <= 0 {
		k = 3
	}
	terms := strings.TrimSpace(emotion + " " + query)
	if terms == "" {
		return nil, nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(terms), k, 0, false)
	res, err := l.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	var out []Entry
	for _, hit := range res.Hits {
		if e, ok := l.entries[hit.ID]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// Crisis returns entries flagged for crisis situations.
func (l *Library) Crisis() []Entry {
	var out []Entry
	for _, e := range defaultEntries() {
		if e.Crisis {
			out = append(out, e)
		}
	}
	return out
}

func defaultEntries() []Entry {
	return []Entry{
		{
			ID: "crisis-lifeline", Title: "988 Suicide & Crisis Lifeline",
			URL: "https://988lifeline.org", Kind: "hotline",
			Note:     "Call or text 988, available 24/7 for immediate support.",
			Emotions: []string{"sadness", "grief", "fear", "stress"}, Crisis: true,
		},
		{
			ID: "crisis-text-line", Title: "Crisis Text Line",
			URL: "https://www.crisistextline.org", Kind: "hotline",
			Note:     "Text HOME to 741741 to reach a trained crisis counselor.",
			Emotions: []string{"sadness", "fear", "anxiety"}, Crisis: true,
		},
		{
			ID: "anxiety-workbook", Title: "The Anxiety and Worry Workbook",
			Kind:     "book",
			Note:     "CBT self-help workbook for anxiety and persistent worry.",
			Emotions: []string{"anxiety", "fear", "stress"},
		},
		{
			ID: "mind-over-mood", Title: "Mind Over Mood",
			Kind:     "book",
			Note:     "Greenberger & Padesky's CBT workbook for mood change.",
			Emotions: []string{"sadness", "anxiety", "anger"},
		},
		{
			ID: "mindfulness-apps", Title: "Headspace / Calm",
			URL: "https://www.headspace.com", Kind: "app",
			Note:     "Guided mindfulness and breathing exercises for daily practice.",
			Emotions: []string{"anxiety", "stress", "neutral"},
		},
		{
			ID: "mood-tracker", Title: "Mood tracking app",
			Kind:     "app",
			Note:     "Track daily mood, energy and sleep to spot patterns.",
			Emotions: []string{"sadness", "neutral", "stress"},
		},
		{
			ID: "thought-record", Title: "Thought Record Worksheet",
			Kind:     "worksheet",
			Note:     "Capture and challenge negative thoughts when strong emotions hit.",
			Emotions: []string{"anxiety", "sadness", "anger"},
		},
		{
			ID: "activity-scheduling", Title: "Activity Scheduling Worksheet",
			Kind:     "worksheet",
			Note:     "Plan pleasant and meaningful activities for the week ahead.",
			Emotions: []string{"sadness", "loneliness"},
		},
		{
			ID: "support-groups", Title: "Local support groups",
			Kind:     "group",
			Note:     "Peer groups for anxiety, grief and loneliness; many meet weekly.",
			Emotions: []string{"loneliness", "grief", "anxiety"},
		},
		{
			ID: "grief-resources", Title: "Grief support communities",
			Kind:     "group",
			Note:     "Spaces to process loss with others who understand the experience.",
			Emotions: []string{"grief", "sadness"},
		},
		{
			ID: "stress-management", Title: "Stress management workshop",
			Kind:     "group",
			Note:     "Structured sessions on priority setting and relaxation techniques.",
			Emotions: []string{"stress", "anger"},
		},
		{
			ID: "cbt-website", Title: "MindTools CBT resources",
			URL: "https://www.mindtools.com", Kind: "website",
			Note:     "Additional CBT techniques and exercises for self-guided work.",
			Emotions: []string{"neutral", "anxiety", "stress"},
		},
	}
}
