package core

import (
	"context"
	"testing"
)

func runEthics(t *testing.T, reply string) EthicsVerdict {
	t.Helper()
	stub := &stubProvider{replies: map[string][]string{"ethics": {reply}}}
	step := NewEthicsStep(stub, "stub")
	state := &SessionState{
		TherapeuticResponse: "Consider keeping a thought record this week.",
	}
	if err := step.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return state.Ethics
}

func TestEthicsStepParsesVerdict(t *testing.T) {
	verdict := runEthics(t, `{"ethical": false, "feedback": "suggests medication changes", "concerns": ["medical advice"]}`)
	if verdict.Safe {
		t.Fatalf("expected unsafe verdict")
	}
	if verdict.Feedback != "suggests medication changes" {
		t.Fatalf("unexpected feedback: %q", verdict.Feedback)
	}
	if len(verdict.Concerns) != 1 || verdict.Concerns[0] != "medical advice" {
		t.Fatalf("unexpected concerns: %v", verdict.Concerns)
	}
}

func TestEthicsStepFallbackAssumesSafe(t *testing.T) {
	verdict := runEthics(t, "The response looks supportive and well within boundaries.")
	if !verdict.Safe {
		t.Fatalf("unparseable reply without indicators must default to safe")
	}
}

func TestEthicsStepFallbackFlagsIndicators(t *testing.T) {
	for _, indicator := range unsafeIndicators {
		verdict := runEthics(t, "I believe this advice is "+indicator+" for a vulnerable person.")
		if verdict.Safe {
			t.Fatalf("indicator %q must produce an unsafe verdict", indicator)
		}
	}
}
