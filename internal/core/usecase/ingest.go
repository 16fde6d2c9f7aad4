package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/askcampus/askcampus/internal/core/domain"
	"github.com/askcampus/askcampus/internal/core/ports"
)

var allowedExtensions = map[string]struct{}{
	".txt":  {},
	".md":   {},
	".pdf":  {},
	".xlsx": {},
}

// DocumentUseCase accepts uploads and records them for asynchronous
// processing. The upload path stays cheap: store bytes, write a row, publish
// an event. All heavy work happens in the worker.
type DocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	logger  *slog.Logger
}

func NewDocumentUseCase(repo ports.DocumentRepository, storage ports.ObjectStorage, queue ports.MessageQueue, logger *slog.Logger) *DocumentUseCase {
	return &DocumentUseCase{repo: repo, storage: storage, queue: queue, logger: logger}
}

func (uc *DocumentUseCase) Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	const operation = "upload document"

	filename = sanitizeFilename(filename)
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, operation,
			fmt.Errorf("unsupported file type %q", ext))
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          uuid.NewString(),
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: "",
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	doc.StoragePath = doc.ID + ext

	if err := uc.storage.Save(ctx, doc.StoragePath, body); err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, operation, err)
	}
	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, operation, err)
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		// The document is durable; processing can be re-triggered later.
		uc.logger.Error("document_ingested_publish_failed",
			slog.String("document_id", doc.ID), slog.Any("error", err))
	}

	uc.logger.Info("document_uploaded",
		slog.String("document_id", doc.ID),
		slog.String("filename", doc.Filename))
	return doc, nil
}

func (uc *DocumentUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get document", errors.New("empty id"))
	}
	return uc.repo.GetByID(ctx, id)
}

// sanitizeFilename keeps the base name only and strips characters that are
// unsafe in storage keys.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
