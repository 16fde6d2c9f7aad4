package domain

// Chunk is the retrieval unit: a bounded segment of a source document with
// its embedding. Chunks are immutable once ingested; a reindex replaces the
// whole set for a document.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Source     string    `json:"source"`
	ChunkIndex int       `json:"chunk_index"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding,omitempty"`
	EmbedModel string    `json:"embed_model,omitempty"`
}

// Candidate is an ephemeral per-query scoring record. SemanticScore and
// LexicalScore are raw signal values; normalized and blended scores are
// filled in by hybrid ranking. SemanticRank/LexicalRank are 1-based ranks in
// the per-signal result lists, 0 when the signal did not return the chunk.
type Candidate struct {
	Chunk Chunk

	SemanticScore float64
	LexicalScore  float64
	SemanticRank  int
	LexicalRank   int

	HybridScore float64
}

// Source is one citation entry in the response payload.
type Source struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Answer is the final per-query result: the generated text, the
// speech-normalized variant handed to the TTS collaborator, and ordered
// citations.
type Answer struct {
	Text       string   `json:"answer"`
	SpeechText string   `json:"speech_text"`
	Sources    []Source `json:"sources"`
	Grounded   bool     `json:"grounded"`
}
