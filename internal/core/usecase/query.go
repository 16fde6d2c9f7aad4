package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/askcampus/askcampus/internal/core/domain"
	"github.com/askcampus/askcampus/internal/core/ports"
)

// SpeechNormalizer converts a generated answer into text that reads
// naturally aloud.
type SpeechNormalizer interface {
	Normalize(text string) string
}

// QueryConfig is the externally overridable surface of the pipeline.
type QueryConfig struct {
	Prompt          PromptSpec
	TopK            int
	CandidatePool   int
	SemanticWeight  float64
	LexicalWeight   float64
	ExpandTimeout   time.Duration
	TranscriptRules []TranscriptRule
}

func (c QueryConfig) normalize() QueryConfig {
	out := c
	out.Prompt = out.Prompt.normalize()
	if out.TopK <= 0 {
		out.TopK = 5
	}
	if out.CandidatePool < out.TopK {
		out.CandidatePool = out.TopK * 2
	}
	// The blend weights must form a convex combination. Any pair that does
	// not sum to 1 is rescaled so an override of one weight cannot skew the
	// hybrid score range.
	if out.SemanticWeight < 0 {
		out.SemanticWeight = 0
	}
	if out.LexicalWeight < 0 {
		out.LexicalWeight = 0
	}
	if sum := out.SemanticWeight + out.LexicalWeight; sum <= 0 {
		out.SemanticWeight, out.LexicalWeight = 0.6, 0.4
	} else if sum != 1 {
		out.SemanticWeight /= sum
		out.LexicalWeight /= sum
	}
	if out.TranscriptRules == nil {
		out.TranscriptRules = DefaultTranscriptRules()
	}
	return out
}

// QueryUseCase runs one question through the full pipeline: transcript
// cleanup, expansion, hybrid retrieval against the current index snapshot,
// prompt construction, generation, sanitization, speech normalization.
// Every stage is a pure function of the question and the snapshot; nothing
// survives between requests.
type QueryUseCase struct {
	cfg        QueryConfig
	fixer      *transcriptFixer
	expander   ports.QueryExpander
	embedder   ports.Embedder
	index      ports.IndexProvider
	generator  ports.AnswerGenerator
	normalizer SpeechNormalizer

	// OnExpansionDegraded, when set, observes each query whose expansion
	// fell back to the original text.
	OnExpansionDegraded func()
}

func NewQueryUseCase(
	cfg QueryConfig,
	expander ports.QueryExpander,
	embedder ports.Embedder,
	index ports.IndexProvider,
	generator ports.AnswerGenerator,
	normalizer SpeechNormalizer,
) (*QueryUseCase, error) {
	cfg = cfg.normalize()
	fixer, err := newTranscriptFixer(cfg.TranscriptRules)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "compile transcript rules", err)
	}
	return &QueryUseCase{
		cfg:        cfg,
		fixer:      fixer,
		expander:   expander,
		embedder:   embedder,
		index:      index,
		generator:  generator,
		normalizer: normalizer,
	}, nil
}

func (uc *QueryUseCase) Answer(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("empty question"))
	}
	if topK <= 0 {
		topK = uc.cfg.TopK
	}

	cleaned := uc.fixer.clean(question)
	expanded, degraded := expandQuery(ctx, uc.expander, cleaned, uc.cfg.ExpandTimeout)
	if degraded && uc.OnExpansionDegraded != nil {
		uc.OnExpansionDegraded()
	}

	// The snapshot is grabbed once; a concurrent rebuild cannot change what
	// this request sees.
	snapshot := uc.index.Snapshot()
	if snapshot.Size() == 0 {
		return uc.fallbackAnswer(nil), nil
	}

	candidates, err := uc.retrieve(ctx, snapshot, expanded, topK)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return uc.fallbackAnswer(nil), nil
	}

	prompt := buildPrompt(uc.cfg.Prompt, question, candidates)
	raw, err := uc.generator.Generate(ctx, prompt)
	if err != nil {
		if domain.IsKind(err, domain.ErrGenerationUnavailable) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrGenerationUnavailable, "generate answer", err)
	}

	text := strings.TrimSpace(stripMarkdown(raw))
	if text == "" {
		return uc.fallbackAnswer(candidates), nil
	}

	answer := &domain.Answer{
		Text:     text,
		Sources:  sourcesOf(candidates),
		Grounded: !strings.Contains(text, uc.cfg.Prompt.FallbackPhrase),
	}
	answer.SpeechText = uc.normalize(answer.Text)
	return answer, nil
}

func (uc *QueryUseCase) retrieve(ctx context.Context, snapshot ports.IndexSnapshot, query string, topK int) ([]domain.Candidate, error) {
	pool := uc.cfg.CandidatePool
	if pool < topK {
		pool = topK * 2
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrievalUnavailable, "embed query", err)
	}

	semantic, err := snapshot.SearchSemantic(queryVector, uc.embedder.Model(), pool)
	if err != nil {
		return nil, err
	}
	lexical := snapshot.SearchLexical(query, pool)

	return blendHybrid(semantic, lexical, uc.cfg.SemanticWeight, uc.cfg.LexicalWeight, topK), nil
}

func (uc *QueryUseCase) fallbackAnswer(candidates []domain.Candidate) *domain.Answer {
	text := uc.cfg.Prompt.FallbackPhrase
	return &domain.Answer{
		Text:       text,
		SpeechText: uc.normalize(text),
		Sources:    sourcesOf(candidates),
		Grounded:   false,
	}
}

func (uc *QueryUseCase) normalize(text string) string {
	if uc.normalizer == nil {
		return text
	}
	return uc.normalizer.Normalize(text)
}

func sourcesOf(candidates []domain.Candidate) []domain.Source {
	out := make([]domain.Source, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, domain.Source{Source: c.Chunk.Source, Score: c.HybridScore})
	}
	return out
}
