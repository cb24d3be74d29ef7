package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestResponseTextJoinsTextParts(t *testing.T) {
	t.Parallel()

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Hola "), genai.Text("equipo")}},
		}},
	}

	got, err := responseText(resp)
	if err != nil {
		t.Fatalf("responseText returned error: %v", err)
	}
	if got != "Hola equipo" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestResponseTextRejectsEmptyResponses(t *testing.T) {
	t.Parallel()

	tests := map[string]*genai.GenerateContentResponse{
		"nil":           nil,
		"no candidates": {},
		"no content":    {Candidates: []*genai.Candidate{{}}},
		"no parts":      {Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
	}

	for name, resp := range tests {
		if _, err := responseText(resp); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestNewGeminiCompleterRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewGeminiCompleter(context.Background(), "", ""); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
