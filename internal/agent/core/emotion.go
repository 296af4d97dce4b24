package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

// Emotions is the fixed vocabulary the emotion step classifies into.
var Emotions = []string{
	"anxiety", "sadness", "anger", "fear", "joy",
	"stress", "grief", "loneliness", "neutral",
}

// emotionSynonyms maps labels the model may return onto the fixed vocabulary.
var emotionSynonyms = map[string]string{
	"depression":  "sadness",
	"depressed":   "sadness",
	"sad":         "sadness",
	"worry":       "anxiety",
	"worried":     "anxiety",
	"anxious":     "anxiety",
	"angry":       "anger",
	"scared":      "fear",
	"afraid":      "fear",
	"happy":       "joy",
	"lonely":      "loneliness",
	"overwhelmed": "stress",
	"stressed":    "stress",
	"grieving":    "grief",
}

// EmotionStep classifies the query into the fixed emotion vocabulary.
type EmotionStep struct {
	llm    LLMProvider
	model  string
	logger *log.Logger
}

// NewEmotionStep creates the emotion analysis step
func NewEmotionStep(llm LLMProvider, model string) *EmotionStep {
	return &EmotionStep{
		llm:    llm,
		model:  model,
		logger: log.New(log.Writer(), "[EMOTION-STEP] ", log.LstdFlags),
	}
}

func (s *EmotionStep) Name() string { return "emotion" }

func (s *EmotionStep) Execute(ctx context.Context, state *SessionState) error {
	start := time.Now()

	prompt := fmt.Sprintf(emotionPrompt, state.QueryText())
	resp, in, out, err := s.llm.GenerateWithTokens(ctx, prompt, s.model, nil)
	if err != nil {
		return fmt.Errorf("emotion: %w", err)
	}

	var analysis struct {
		Emotion    string   `json:"emotion"`
		Confidence string   `json:"confidence"`
		Secondary  []string `json:"secondary_emotions"`
	}
	emotion := "neutral"
	if err := json.Unmarshal([]byte(extractJSON(resp)), &analysis); err == nil && analysis.Emotion != "" {
		emotion = NormalizeEmotion(analysis.Emotion)
	} else {
		// model ignored the JSON instruction; recover from the plain text
		emotion = keywordEmotion(resp)
		s.logger.Printf("emotion reply not parseable, keyword fallback chose %q", emotion)
	}

	state.DetectedEmotion = emotion
	state.TokensUsed += in + out
	state.Cost += s.llm.CalculateCost(in, out, s.model)
	state.Phase = PhaseEmotionTagged
	state.addTrace("emotion_analyst", resp, s.model, time.Since(start))
	return nil
}

// NormalizeEmotion folds a free-form label into the fixed vocabulary,
// defaulting to neutral for anything unrecognized.
func NormalizeEmotion(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	for _, e := range Emotions {
		if label == e {
			return e
		}
	}
	if mapped, ok := emotionSynonyms[label]; ok {
		return mapped
	}
	return keywordEmotion(label)
}

// keywordEmotion scans text for emotional indicators and returns the
// dominant vocabulary label, or neutral when none match.
func keywordEmotion(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "anxiety") || strings.Contains(t, "anxious") || strings.Contains(t, "worried"):
		return "anxiety"
	case strings.Contains(t, "depress") || strings.Contains(t, "sad") || strings.Contains(t, "hopeless"):
		return "sadness"
	case strings.Contains(t, "anger") || strings.Contains(t, "angry") || strings.Contains(t, "furious"):
		return "anger"
	case strings.Contains(t, "fear") || strings.Contains(t, "scared") || strings.Contains(t, "afraid"):
		return "fear"
	case strings.Contains(t, "grief") || strings.Contains(t, "grieving") || strings.Contains(t, "loss of"):
		return "grief"
	case strings.Contains(t, "lonely") || strings.Contains(t, "loneliness") || strings.Contains(t, "isolated"):
		return "loneliness"
	case strings.Contains(t, "stress") || strings.Contains(t, "overwhelmed"):
		return "stress"
	case strings.Contains(t, "joy") || strings.Contains(t, "happy"):
		return "joy"
	default:
		return "neutral"
	}
}
