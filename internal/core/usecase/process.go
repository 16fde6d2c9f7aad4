package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/askcampus/askcampus/internal/core/domain"
	"github.com/askcampus/askcampus/internal/core/ports"
)

// ProcessorUseCase turns an uploaded document into indexed chunks. It runs in
// the worker process; the API learns about new chunks through the
// index-refresh event published at the end.
type ProcessorUseCase struct {
	docs      ports.DocumentRepository
	chunks    ports.ChunkRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	queue     ports.MessageQueue
	logger    *slog.Logger

	// OnProcessed, when set, observes the chunk count of each successfully
	// processed document.
	OnProcessed func(chunkCount int)
}

func NewProcessorUseCase(
	docs ports.DocumentRepository,
	chunks ports.ChunkRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	queue ports.MessageQueue,
	logger *slog.Logger,
) *ProcessorUseCase {
	return &ProcessorUseCase{
		docs:      docs,
		chunks:    chunks,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		queue:     queue,
		logger:    logger,
	}
}

func (uc *ProcessorUseCase) ProcessByID(ctx context.Context, documentID string) error {
	const operation = "process document"
	started := time.Now()

	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return domain.WrapError(domain.ErrDocumentNotFound, operation, err)
	}

	if err := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusProcessing, ""); err != nil {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}

	chunkCount, err := uc.process(ctx, doc)
	if err != nil {
		if stErr := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusFailed, err.Error()); stErr != nil {
			uc.logger.Error("document_status_update_failed",
				slog.String("document_id", doc.ID), slog.Any("error", stErr))
		}
		return err
	}

	if err := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusReady, ""); err != nil {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}

	if err := uc.queue.PublishIndexRefresh(ctx); err != nil {
		// Chunks are durable; the API catches up on its next rebuild.
		uc.logger.Error("index_refresh_publish_failed",
			slog.String("document_id", doc.ID), slog.Any("error", err))
	}

	uc.logger.Info("document_processed",
		slog.String("document_id", doc.ID),
		slog.Int("chunks", chunkCount),
		slog.Duration("took", time.Since(started)))
	if uc.OnProcessed != nil {
		uc.OnProcessed(chunkCount)
	}
	return nil
}

func (uc *ProcessorUseCase) process(ctx context.Context, doc *domain.Document) (int, error) {
	const operation = "process document"

	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return 0, domain.WrapError(domain.ErrInvalidInput, operation, err)
	}

	parts := uc.chunker.Split(text)
	if len(parts) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, operation,
			fmt.Errorf("no text extracted from %s", doc.Filename))
	}

	vectors, err := uc.embedder.Embed(ctx, parts)
	if err != nil {
		return 0, domain.WrapError(domain.ErrTemporary, operation, err)
	}
	if len(vectors) != len(parts) {
		return 0, domain.WrapError(domain.ErrTemporary, operation,
			fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(parts)))
	}

	model := uc.embedder.Model()
	chunks := make([]domain.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = domain.Chunk{
			ID:         fmt.Sprintf("%s:%d", doc.ID, i),
			DocumentID: doc.ID,
			Source:     doc.Filename,
			ChunkIndex: i,
			Text:       part,
			Embedding:  vectors[i],
			EmbedModel: model,
		}
	}

	if err := uc.chunks.ReplaceForDocument(ctx, doc.ID, chunks); err != nil {
		return 0, domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return len(chunks), nil
}
