package usecase

import (
	"sort"

	"github.com/askcampus/askcampus/internal/core/domain"
)

const unrankedSentinel = 1 << 30

// blendHybrid unions the semantic and lexical candidate lists by chunk
// identity, min-max normalizes each signal over the union, and blends with
// the configured weights. A chunk found by only one signal gets a zero for
// the missing one. Ordering is fully deterministic: blended score
// descending, then semantic rank, then lexical rank, then chunk ID.
func blendHybrid(semantic, lexical []domain.Candidate, semanticWeight, lexicalWeight float64, topK int) []domain.Candidate {
	if semanticWeight <= 0 && lexicalWeight <= 0 {
		semanticWeight, lexicalWeight = 0.6, 0.4
	}

	merged := make(map[string]*domain.Candidate, len(semantic)+len(lexical))
	order := make([]string, 0, len(semantic)+len(lexical))

	for _, c := range semantic {
		candidate := c
		merged[c.Chunk.ID] = &candidate
		order = append(order, c.Chunk.ID)
	}
	for _, c := range lexical {
		if existing, ok := merged[c.Chunk.ID]; ok {
			existing.LexicalScore = c.LexicalScore
			existing.LexicalRank = c.LexicalRank
			continue
		}
		candidate := c
		merged[c.Chunk.ID] = &candidate
		order = append(order, c.Chunk.ID)
	}

	semNorm := normalizer(merged, order, func(c *domain.Candidate) (float64, bool) {
		return c.SemanticScore, c.SemanticRank > 0
	})
	lexNorm := normalizer(merged, order, func(c *domain.Candidate) (float64, bool) {
		return c.LexicalScore, c.LexicalRank > 0
	})

	out := make([]domain.Candidate, 0, len(order))
	for _, id := range order {
		c := merged[id]
		sem, semPresent := c.SemanticScore, c.SemanticRank > 0
		lex, lexPresent := c.LexicalScore, c.LexicalRank > 0
		c.HybridScore = semanticWeight*semNorm(sem, semPresent) + lexicalWeight*lexNorm(lex, lexPresent)
		out = append(out, *c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HybridScore != out[j].HybridScore {
			return out[i].HybridScore > out[j].HybridScore
		}
		if ri, rj := rankOrSentinel(out[i].SemanticRank), rankOrSentinel(out[j].SemanticRank); ri != rj {
			return ri < rj
		}
		if ri, rj := rankOrSentinel(out[i].LexicalRank), rankOrSentinel(out[j].LexicalRank); ri != rj {
			return ri < rj
		}
		return out[i].Chunk.ID < out[j].Chunk.ID
	})

	if topK > 0 && topK < len(out) {
		out = out[:topK]
	}
	return out
}

// normalizer returns a min-max normalization function computed over the
// candidates that actually carry the signal. Absent signals normalize to 0.
// A flat range maps present scores to 1, the same convention as a single
// candidate carrying the signal.
func normalizer(merged map[string]*domain.Candidate, order []string, extract func(*domain.Candidate) (float64, bool)) func(float64, bool) float64 {
	first := true
	var minScore, maxScore float64
	for _, id := range order {
		v, present := extract(merged[id])
		if !present {
			continue
		}
		if first {
			minScore, maxScore = v, v
			first = false
			continue
		}
		if v < minScore {
			minScore = v
		}
		if v > maxScore {
			maxScore = v
		}
	}

	scoreRange := maxScore - minScore
	return func(v float64, present bool) float64 {
		if !present {
			return 0
		}
		if scoreRange <= 0 {
			return 1
		}
		return (v - minScore) / scoreRange
	}
}

func rankOrSentinel(rank int) int {
	if rank <= 0 {
		return unrankedSentinel
	}
	return rank
}
