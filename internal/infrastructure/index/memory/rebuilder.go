package memory

import (
	"context"
	"log/slog"
	"time"

	"github.com/askcampus/askcampus/internal/core/ports"
)

// Rebuilder loads all chunks from the durable store, builds a fresh
// snapshot, and swaps it in. Runs at api startup and on every index-refresh
// event; queries in flight keep the snapshot they started with.
type Rebuilder struct {
	store  *Store
	chunks ports.ChunkRepository
	model  string
	logger *slog.Logger

	// OnRebuilt, when set, observes each successful rebuild.
	OnRebuilt func(chunkCount int, took time.Duration)
}

func NewRebuilder(store *Store, chunks ports.ChunkRepository, embedModel string, logger *slog.Logger) *Rebuilder {
	return &Rebuilder{
		store:  store,
		chunks: chunks,
		model:  embedModel,
		logger: logger,
	}
}

func (r *Rebuilder) Rebuild(ctx context.Context) error {
	started := time.Now()

	all, err := r.chunks.ListAll(ctx)
	if err != nil {
		return err
	}

	// Chunks embedded with another model cannot be compared against query
	// vectors; they stay out of the snapshot until reingested.
	kept := all[:0]
	for _, c := range all {
		if c.EmbedModel != r.model {
			r.logger.Warn("chunk_model_mismatch",
				slog.String("chunk_id", c.ID),
				slog.String("chunk_model", c.EmbedModel),
				slog.String("index_model", r.model))
			continue
		}
		kept = append(kept, c)
	}

	snapshot := Build(kept, r.model)
	r.store.Swap(snapshot)

	took := time.Since(started)
	r.logger.Info("index_rebuilt",
		slog.Int("chunks", snapshot.Size()),
		slog.Duration("took", took))
	if r.OnRebuilt != nil {
		r.OnRebuilt(snapshot.Size(), took)
	}
	return nil
}
