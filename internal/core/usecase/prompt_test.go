package usecase

import (
	"strings"
	"testing"

	"github.com/askcampus/askcampus/internal/core/domain"
)

func TestBuildPromptContainsContextAndRules(t *testing.T) {
	spec := PromptSpec{InstitutionName: "Crescent College", MaxSentences: 3}
	retrieved := []domain.Candidate{
		{Chunk: domain.Chunk{ID: "fees:0", Source: "fees.pdf", Text: "BTech tuition is 120000 rupees per year."}},
		{Chunk: domain.Chunk{ID: "hostel:2", Source: "hostel.txt", Text: "Hostel fee is 48000 rupees."}},
	}

	prompt := buildPrompt(spec, "What is the BTech fee?", retrieved)

	for _, want := range []string{
		"Crescent College",
		contextOpen,
		contextClose,
		"[1] (source: fees.pdf)",
		"[2] (source: hostel.txt)",
		"BTech tuition is 120000 rupees per year.",
		"Question: What is the BTech fee?",
		DefaultFallbackPhrase("Crescent College"),
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if !strings.HasSuffix(prompt, "Answer:") {
		t.Errorf("prompt must end with the answer cue, got tail %q", prompt[len(prompt)-20:])
	}
}

func TestBuildPromptPreservesRetrievalOrder(t *testing.T) {
	retrieved := []domain.Candidate{
		{Chunk: domain.Chunk{ID: "b", Source: "second.txt", Text: "second"}},
		{Chunk: domain.Chunk{ID: "a", Source: "first.txt", Text: "first"}},
	}
	prompt := buildPrompt(PromptSpec{}, "q", retrieved)

	iSecond := strings.Index(prompt, "[1] (source: second.txt)")
	iFirst := strings.Index(prompt, "[2] (source: first.txt)")
	if iSecond < 0 || iFirst < 0 || iSecond > iFirst {
		t.Errorf("context entries not in retrieval order")
	}
}

func TestPromptSpecDefaults(t *testing.T) {
	spec := PromptSpec{}.normalize()
	if spec.InstitutionName != "the institution" {
		t.Errorf("unexpected default institution %q", spec.InstitutionName)
	}
	if spec.FallbackPhrase == "" {
		t.Error("fallback phrase must default to non-empty")
	}
	if spec.MaxSentences != 3 {
		t.Errorf("unexpected default sentence limit %d", spec.MaxSentences)
	}
}

func TestBuildPromptEmbedsExactFallbackPhrase(t *testing.T) {
	spec := PromptSpec{FallbackPhrase: "Sorry, ask the office."}
	prompt := buildPrompt(spec, "q", nil)
	if !strings.Contains(prompt, `"Sorry, ask the office."`) {
		t.Error("custom fallback phrase not quoted verbatim in rules")
	}
}
