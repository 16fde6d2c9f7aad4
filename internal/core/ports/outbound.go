package ports

import (
	"context"
	"io"

	"github.com/askcampus/askcampus/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
}

// ChunkRepository is the durable Document Store: chunks with embeddings.
type ChunkRepository interface {
	ReplaceForDocument(ctx context.Context, documentID string, chunks []domain.Chunk) error
	ListAll(ctx context.Context) ([]domain.Chunk, error)
	Count(ctx context.Context) (int, error)
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue carries ingestion and index-refresh events between processes.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
	PublishIndexRefresh(ctx context.Context) error
	SubscribeIndexRefresh(ctx context.Context, handler func(context.Context) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// Chunker splits text into retrieval units.
type Chunker interface {
	Split(text string) []string
}

// Embedder builds dense vectors for chunks and query text. Model identifies
// the embedding model; indexes record it so a model swap between ingestion
// and query time is caught instead of silently degrading ranking.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// IndexSnapshot is an immutable view of both retrieval indexes. Queries hold
// one snapshot for their whole lifetime; a rebuild installs a new snapshot
// without touching snapshots already in use.
type IndexSnapshot interface {
	SearchSemantic(queryVector []float32, model string, k int) ([]domain.Candidate, error)
	SearchLexical(query string, k int) []domain.Candidate
	Size() int
}

// IndexProvider hands out the current snapshot.
type IndexProvider interface {
	Snapshot() IndexSnapshot
}

// QueryExpander rewrites a short query into a richer one for recall.
// Implementations must degrade, not fail: on any trouble the caller falls
// back to the original query.
type QueryExpander interface {
	Expand(ctx context.Context, query string) (string, error)
}

// AnswerGenerator invokes the language model with a fully built prompt.
type AnswerGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
