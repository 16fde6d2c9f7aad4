package memory

import (
	"fmt"
	"math"
	"sort"

	"github.com/askcampus/askcampus/internal/core/domain"
)

const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

type posting struct {
	doc int
	tf  int
}

// Snapshot is an immutable pair of indexes over one chunk set: an embedding
// matrix searched by cosine similarity and a BM25 inverted index. A rebuild
// constructs a fresh Snapshot and swaps it in; nothing here is ever mutated
// after Build returns.
type Snapshot struct {
	chunks []domain.Chunk

	dim   int
	model string

	postings  map[string][]posting
	docLength []int
	avgLength float64
}

// Build indexes the given chunks. The embedding model identity is recorded
// so query-time vectors from a different model are rejected instead of
// silently producing garbage rankings.
func Build(chunks []domain.Chunk, embedModel string) *Snapshot {
	s := &Snapshot{
		chunks:    chunks,
		model:     embedModel,
		postings:  make(map[string][]posting),
		docLength: make([]int, len(chunks)),
	}

	total := 0
	for i, chunk := range chunks {
		if s.dim == 0 && len(chunk.Embedding) > 0 {
			s.dim = len(chunk.Embedding)
		}
		tokens := Tokenize(chunk.Text)
		s.docLength[i] = len(tokens)
		total += len(tokens)

		counts := make(map[string]int, len(tokens))
		for _, token := range tokens {
			counts[token]++
		}
		for term, count := range counts {
			s.postings[term] = append(s.postings[term], posting{doc: i, tf: count})
		}
	}
	if len(chunks) > 0 {
		s.avgLength = float64(total) / float64(len(chunks))
	}
	return s
}

func (s *Snapshot) Size() int {
	return len(s.chunks)
}

// SearchSemantic returns up to k chunks by descending cosine similarity.
// An empty snapshot yields an empty result; a model or dimension mismatch
// is a retrieval-unavailable error, not a quality degradation.
func (s *Snapshot) SearchSemantic(queryVector []float32, model string, k int) ([]domain.Candidate, error) {
	if len(s.chunks) == 0 {
		return nil, nil
	}
	if s.model != "" && model != "" && model != s.model {
		return nil, domain.WrapError(
			domain.ErrRetrievalUnavailable,
			"semantic search",
			fmt.Errorf("embedding model mismatch: index=%q query=%q", s.model, model),
		)
	}
	if s.dim > 0 && len(queryVector) != s.dim {
		return nil, domain.WrapError(
			domain.ErrRetrievalUnavailable,
			"semantic search",
			fmt.Errorf("embedding dimension mismatch: index=%d query=%d", s.dim, len(queryVector)),
		)
	}

	type scored struct {
		idx   int
		score float64
	}
	results := make([]scored, 0, len(s.chunks))
	for i := range s.chunks {
		results = append(results, scored{
			idx:   i,
			score: cosineSimilarity(queryVector, s.chunks[i].Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].idx < results[j].idx
	})
	if k > 0 && k < len(results) {
		results = results[:k]
	}

	out := make([]domain.Candidate, 0, len(results))
	for rank, r := range results {
		out = append(out, domain.Candidate{
			Chunk:         s.chunks[r.idx],
			SemanticScore: r.score,
			SemanticRank:  rank + 1,
		})
	}
	return out, nil
}

// SearchLexical scores chunks with BM25 over the query's tokens and returns
// up to k matches by descending score. Chunks with no matching term are
// omitted. An empty snapshot or an all-unknown query yields an empty result.
func (s *Snapshot) SearchLexical(query string, k int) []domain.Candidate {
	if len(s.chunks) == 0 {
		return nil
	}
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	n := float64(len(s.chunks))
	scores := make(map[int]float64)
	for _, term := range tokens {
		plist, ok := s.postings[term]
		if !ok {
			continue
		}
		df := float64(len(plist))
		idf := math.Log((n-df+0.5)/(df+0.5) + 1)
		for _, p := range plist {
			tf := float64(p.tf)
			norm := 1 - bm25B + bm25B*(float64(s.docLength[p.doc])/s.avgLength)
			scores[p.doc] += idf * (tf * (bm25K1 + 1)) / (tf + bm25K1*norm)
		}
	}
	if len(scores) == 0 {
		return nil
	}

	type scored struct {
		idx   int
		score float64
	}
	results := make([]scored, 0, len(scores))
	for idx, score := range scores {
		results = append(results, scored{idx: idx, score: score})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].idx < results[j].idx
	})
	if k > 0 && k < len(results) {
		results = results[:k]
	}

	out := make([]domain.Candidate, 0, len(results))
	for rank, r := range results {
		out = append(out, domain.Candidate{
			Chunk:        s.chunks[r.idx],
			LexicalScore: r.score,
			LexicalRank:  rank + 1,
		})
	}
	return out
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
