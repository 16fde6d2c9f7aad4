// Package bootstrap builds the api and worker object graphs from config.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	httpadapter "github.com/askcampus/askcampus/internal/adapters/http"
	"github.com/askcampus/askcampus/internal/config"
	"github.com/askcampus/askcampus/internal/core/ports"
	"github.com/askcampus/askcampus/internal/core/usecase"
	"github.com/askcampus/askcampus/internal/infrastructure/chunking"
	"github.com/askcampus/askcampus/internal/infrastructure/extractor"
	"github.com/askcampus/askcampus/internal/infrastructure/index/memory"
	"github.com/askcampus/askcampus/internal/infrastructure/llm/openaicompat"
	natsqueue "github.com/askcampus/askcampus/internal/infrastructure/queue/nats"
	"github.com/askcampus/askcampus/internal/infrastructure/repository/postgres"
	"github.com/askcampus/askcampus/internal/infrastructure/resilience"
	"github.com/askcampus/askcampus/internal/infrastructure/storage/localfs"
	"github.com/askcampus/askcampus/internal/observability/metrics"
	"github.com/askcampus/askcampus/internal/speech"
)

// API carries everything the api process serves requests with.
type API struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.HTTPServerMetrics

	QueryUC    ports.QueryService
	DocumentUC *usecase.DocumentUseCase
	Queue      ports.MessageQueue
	Rebuilder  *memory.Rebuilder
	Health     func() httpadapter.HealthStatus

	closeFn func()
}

func NewAPI(ctx context.Context, cfg config.Config, logger *slog.Logger) (*API, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	docRepo := postgres.NewDocumentRepository(db)
	if err := docRepo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	chunkRepo := postgres.NewChunkRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := natsqueue.New(cfg.NATSURL, natsqueue.Options{
		IngestSubject:      cfg.NATSIngestSubject,
		RefreshSubject:     cfg.NATSRefreshSubject,
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	llm, err := openaicompat.NewClient(openaicompat.Config{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		ChatModel:   cfg.LLMChatModel,
		EmbedModel:  cfg.LLMEmbedModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: float32(cfg.LLMTemperature),
	}, executor)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init llm client: %w", err)
	}

	acronyms, err := config.LoadAcronymRules(cfg.AcronymRulesPath)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, err
	}
	normalizer, err := speech.NewNormalizer(acronyms)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, err
	}

	transcriptRules, err := config.LoadTranscriptRules(cfg.TranscriptRulesPath)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, err
	}

	m := metrics.NewHTTPServerMetrics("api")
	store := memory.NewStore()
	rebuilder := memory.NewRebuilder(store, chunkRepo, cfg.LLMEmbedModel, logger)
	rebuilder.OnRebuilt = func(chunkCount int, took time.Duration) {
		m.SetSnapshotSize(chunkCount)
		m.RecordIndexRebuild("api", took, nil)
	}

	queryUC, err := usecase.NewQueryUseCase(
		usecase.QueryConfig{
			Prompt: usecase.PromptSpec{
				InstitutionName: cfg.InstitutionName,
				FallbackPhrase:  cfg.FallbackPhrase,
				MaxSentences:    cfg.MaxSentences,
			},
			TopK:            cfg.QATopK,
			CandidatePool:   cfg.QACandidatePool,
			SemanticWeight:  cfg.QASemanticWeight,
			LexicalWeight:   cfg.QALexicalWeight,
			ExpandTimeout:   time.Duration(cfg.QAExpandTimeoutMS) * time.Millisecond,
			TranscriptRules: transcriptRules,
		},
		llm,
		llm,
		store,
		llm,
		normalizer,
	)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init query pipeline: %w", err)
	}
	queryUC.OnExpansionDegraded = func() { m.RecordExpansionDegraded("api") }

	documentUC := usecase.NewDocumentUseCase(docRepo, storage, queue, logger)

	return &API{
		Config:     cfg,
		Logger:     logger,
		Metrics:    m,
		QueryUC:    queryUC,
		DocumentUC: documentUC,
		Queue:      queue,
		Rebuilder:  rebuilder,
		Health: func() httpadapter.HealthStatus {
			return httpadapter.HealthStatus{
				Err:                  db.PingContext(context.Background()),
				IndexedChunks:        store.Snapshot().Size(),
				GeneratorUnavailable: executor.CircuitOpen(openaicompat.OperationGenerate),
			}
		},
		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *API) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// Worker carries the document processing graph.
type Worker struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.WorkerMetrics

	ProcessUC *usecase.ProcessorUseCase
	Queue     ports.MessageQueue

	closeFn func()
}

func NewWorker(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Worker, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	docRepo := postgres.NewDocumentRepository(db)
	if err := docRepo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	chunkRepo := postgres.NewChunkRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := natsqueue.New(cfg.NATSURL, natsqueue.Options{
		IngestSubject:      cfg.NATSIngestSubject,
		RefreshSubject:     cfg.NATSRefreshSubject,
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	llm, err := openaicompat.NewClient(openaicompat.Config{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		ChatModel:   cfg.LLMChatModel,
		EmbedModel:  cfg.LLMEmbedModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: float32(cfg.LLMTemperature),
	}, executor)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init llm client: %w", err)
	}

	processUC := usecase.NewProcessorUseCase(
		docRepo,
		chunkRepo,
		extractor.NewDispatcher(storage),
		chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		llm,
		queue,
		logger,
	)

	return &Worker{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics.NewWorkerMetrics("worker"),
		ProcessUC: processUC,
		Queue:     queue,
		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (w *Worker) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}
