// Package extractor routes stored documents to the extractor that
// understands their format.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/askcampus/askcampus/internal/core/domain"
	"github.com/askcampus/askcampus/internal/core/ports"
	"github.com/askcampus/askcampus/internal/infrastructure/extractor/pdfdoc"
	"github.com/askcampus/askcampus/internal/infrastructure/extractor/plaintext"
	"github.com/askcampus/askcampus/internal/infrastructure/extractor/spreadsheet"
)

type Dispatcher struct {
	byExtension map[string]ports.TextExtractor
}

// NewDispatcher wires the default format handlers over one storage backend.
func NewDispatcher(storage ports.ObjectStorage) *Dispatcher {
	text := plaintext.NewExtractor(storage)
	return &Dispatcher{
		byExtension: map[string]ports.TextExtractor{
			".txt":  text,
			".md":   text,
			".pdf":  pdfdoc.NewExtractor(storage),
			".xlsx": spreadsheet.NewExtractor(storage),
		},
	}
}

func (d *Dispatcher) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	ext := strings.ToLower(filepath.Ext(doc.StoragePath))
	handler, ok := d.byExtension[ext]
	if !ok {
		return "", fmt.Errorf("no extractor for %q (%s)", ext, doc.Filename)
	}
	return handler.Extract(ctx, doc)
}
