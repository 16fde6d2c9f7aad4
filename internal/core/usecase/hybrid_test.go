package usecase

import (
	"math"
	"testing"

	"github.com/askcampus/askcampus/internal/core/domain"
)

func semCand(id string, score float64, rank int) domain.Candidate {
	return domain.Candidate{
		Chunk:         domain.Chunk{ID: id, Source: id + ".txt"},
		SemanticScore: score,
		SemanticRank:  rank,
	}
}

func lexCand(id string, score float64, rank int) domain.Candidate {
	return domain.Candidate{
		Chunk:        domain.Chunk{ID: id, Source: id + ".txt"},
		LexicalScore: score,
		LexicalRank:  rank,
	}
}

func TestBlendHybridUnionsBothSignals(t *testing.T) {
	semantic := []domain.Candidate{
		semCand("a", 0.9, 1),
		semCand("b", 0.5, 2),
	}
	lexical := []domain.Candidate{
		lexCand("b", 7.0, 1),
		lexCand("c", 3.0, 2),
	}

	got := blendHybrid(semantic, lexical, 0.6, 0.4, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 unioned candidates, got %d", len(got))
	}

	scores := map[string]float64{}
	for _, c := range got {
		scores[c.Chunk.ID] = c.HybridScore
	}
	// a: semantic max (1.0) and no lexical signal.
	if math.Abs(scores["a"]-0.6) > 1e-9 {
		t.Errorf("a: want 0.6, got %f", scores["a"])
	}
	// b: semantic min (0.0) and lexical max (1.0).
	if math.Abs(scores["b"]-0.4) > 1e-9 {
		t.Errorf("b: want 0.4, got %f", scores["b"])
	}
	// c: lexical min (0.0) and no semantic signal.
	if scores["c"] != 0 {
		t.Errorf("c: want 0, got %f", scores["c"])
	}
}

func TestBlendHybridAbsentSignalScoresZero(t *testing.T) {
	semantic := []domain.Candidate{
		semCand("a", 0.8, 1),
		semCand("b", 0.2, 2),
	}
	got := blendHybrid(semantic, nil, 0.6, 0.4, 10)

	for _, c := range got {
		if c.LexicalRank != 0 {
			t.Fatalf("%s: unexpected lexical rank %d", c.Chunk.ID, c.LexicalRank)
		}
		if c.HybridScore > 0.6+1e-9 {
			t.Errorf("%s: score %f exceeds semantic weight with no lexical signal", c.Chunk.ID, c.HybridScore)
		}
	}
}

func TestBlendHybridSingleCandidatePerSignal(t *testing.T) {
	// A flat range maps the present score to 1; two single-signal candidates
	// rank by weight.
	got := blendHybrid(
		[]domain.Candidate{semCand("sem", 0.3, 1)},
		[]domain.Candidate{lexCand("lex", 9.9, 1)},
		0.6, 0.4, 10,
	)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Chunk.ID != "sem" {
		t.Errorf("expected semantic-only candidate first, got %s", got[0].Chunk.ID)
	}
	if math.Abs(got[0].HybridScore-0.6) > 1e-9 || math.Abs(got[1].HybridScore-0.4) > 1e-9 {
		t.Errorf("unexpected scores: %f, %f", got[0].HybridScore, got[1].HybridScore)
	}
}

func TestBlendHybridTruncatesToTopK(t *testing.T) {
	semantic := []domain.Candidate{
		semCand("a", 0.9, 1),
		semCand("b", 0.8, 2),
		semCand("c", 0.7, 3),
		semCand("d", 0.6, 4),
	}
	got := blendHybrid(semantic, nil, 0.6, 0.4, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Chunk.ID != "a" || got[1].Chunk.ID != "b" {
		t.Errorf("unexpected order: %s, %s", got[0].Chunk.ID, got[1].Chunk.ID)
	}
}

func TestBlendHybridDeterministicTieBreak(t *testing.T) {
	// Identical scores in both signals: ties break on chunk ID.
	semantic := []domain.Candidate{
		semCand("z", 0.5, 1),
		semCand("a", 0.5, 1),
	}
	first := blendHybrid(semantic, nil, 0.6, 0.4, 10)
	for i := 0; i < 10; i++ {
		again := blendHybrid(semantic, nil, 0.6, 0.4, 10)
		for j := range first {
			if first[j].Chunk.ID != again[j].Chunk.ID {
				t.Fatalf("run %d: order changed at %d: %s vs %s", i, j, first[j].Chunk.ID, again[j].Chunk.ID)
			}
		}
	}
	if first[0].Chunk.ID != "a" {
		t.Errorf("expected lowest chunk ID first on full tie, got %s", first[0].Chunk.ID)
	}
}

func TestBlendHybridEmptyInputs(t *testing.T) {
	if got := blendHybrid(nil, nil, 0.6, 0.4, 5); len(got) != 0 {
		t.Fatalf("expected no candidates, got %d", len(got))
	}
}
