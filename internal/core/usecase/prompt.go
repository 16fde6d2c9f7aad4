package usecase

import (
	"fmt"
	"strings"

	"github.com/askcampus/askcampus/internal/core/domain"
)

const (
	contextOpen  = "=== CONTEXT START ==="
	contextClose = "=== CONTEXT END ==="
)

// PromptSpec carries the named slots of the generation prompt. The grounding
// and no-markup instructions are the anti-hallucination contract; weakening
// them is a policy change, not a refactor.
type PromptSpec struct {
	InstitutionName string
	FallbackPhrase  string
	MaxSentences    int
}

func (p PromptSpec) normalize() PromptSpec {
	out := p
	if out.InstitutionName == "" {
		out.InstitutionName = "the institution"
	}
	if out.FallbackPhrase == "" {
		out.FallbackPhrase = DefaultFallbackPhrase(out.InstitutionName)
	}
	if out.MaxSentences <= 0 {
		out.MaxSentences = 3
	}
	return out
}

// DefaultFallbackPhrase is the designated in-context "I don't know" answer.
func DefaultFallbackPhrase(institution string) string {
	return fmt.Sprintf("I don't have that information right now. Please contact the %s admissions office for the latest details.", institution)
}

// buildPrompt assembles the instruction block for the generator. The context
// section lists exactly the retrieved candidates in retrieval order; no
// re-filtering or re-ranking happens here.
func buildPrompt(spec PromptSpec, question string, retrieved []domain.Candidate) string {
	spec = spec.normalize()

	var b strings.Builder
	fmt.Fprintf(&b, "You are an admissions counselor for %s, answering questions from prospective students and parents.\n\n", spec.InstitutionName)

	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "1. Answer ONLY from the context between %s and %s.\n", contextOpen, contextClose)
	fmt.Fprintf(&b, "2. If the context does not contain the answer, reply exactly: %q\n", spec.FallbackPhrase)
	b.WriteString("3. Never invent facts, fees, dates, or names, and never use knowledge from outside the context.\n")
	b.WriteString("4. Plain spoken prose only: no markdown symbols, no bullet points, no lists, no tables. The answer is read aloud.\n")
	fmt.Fprintf(&b, "5. Keep the answer under %d sentences.\n\n", spec.MaxSentences)

	b.WriteString(contextOpen + "\n")
	for i, c := range retrieved {
		fmt.Fprintf(&b, "[%d] (source: %s)\n%s\n\n", i+1, c.Chunk.Source, strings.TrimSpace(c.Chunk.Text))
	}
	b.WriteString(contextClose + "\n\n")

	fmt.Fprintf(&b, "Question: %s\nAnswer:", strings.TrimSpace(question))
	return b.String()
}
