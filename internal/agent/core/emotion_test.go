package core

import (
	"context"
	"testing"
)

func TestNormalizeEmotion(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"sadness", "sadness"},
		{"Anxiety", "anxiety"},
		{"  GRIEF  ", "grief"},
		{"depressed", "sadness"},
		{"worried", "anxiety"},
		{"overwhelmed", "stress"},
		{"melancholy", "neutral"},
		{"", "neutral"},
	}
	for _, c := range cases {
		if got := NormalizeEmotion(c.in); got != c.want {
			t.Fatalf("NormalizeEmotion(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestKeywordEmotion(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"I am so anxious about tomorrow", "anxiety"},
		{"everything feels hopeless", "sadness"},
		{"I am furious at my coworker", "anger"},
		{"I'm scared of going outside", "fear"},
		{"coping with the loss of my father", "grief"},
		{"I feel so isolated and lonely", "loneliness"},
		{"work has me completely overwhelmed", "stress"},
		{"today was a happy day", "joy"},
		{"tell me about appointment times", "neutral"},
	}
	for _, c := range cases {
		if got := keywordEmotion(c.in); got != c.want {
			t.Fatalf("keywordEmotion(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEmotionStepParsesJSON(t *testing.T) {
	stub := &stubProvider{replies: map[string][]string{
		"emotion": {"```json\n{\"emotion\": \"Worried\", \"confidence\": \"medium\", \"secondary_emotions\": [\"fear\"]}\n```"},
	}}
	step := NewEmotionStep(stub, "stub")
	state := &SessionState{OriginalQuery: "I can't stop thinking about my exam"}

	if err := step.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if state.DetectedEmotion != "anxiety" {
		t.Fatalf("expected anxiety (normalized from worried), got %q", state.DetectedEmotion)
	}
	if state.Phase != PhaseEmotionTagged {
		t.Fatalf("expected phase %s, got %s", PhaseEmotionTagged, state.Phase)
	}
}

func TestEmotionStepKeywordFallback(t *testing.T) {
	stub := &stubProvider{replies: map[string][]string{
		"emotion": {"The user sounds quite sad and hopeless about their situation."},
	}}
	step := NewEmotionStep(stub, "stub")
	state := &SessionState{OriginalQuery: "nothing matters anymore"}

	if err := step.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if state.DetectedEmotion != "sadness" {
		t.Fatalf("expected sadness via keyword fallback, got %q", state.DetectedEmotion)
	}
}
