package app

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"kpbu-assistant/internal/ai"
	"kpbu-assistant/internal/logging"
	"kpbu-assistant/internal/metrics"
	"kpbu-assistant/internal/model"
)

const defaultTopK = 5

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is a nearest-neighbour store. A nil filter searches everything.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, topK int, filter *model.ScopeFilter) ([]model.RetrievedChunk, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string, cfg ai.GenerationConfig) (string, error)
}

// AnswerConfig makes the provider-facing knobs explicit.
// EmbeddingDimension 0 disables the dimensionality check.
type AnswerConfig struct {
	TopK               int
	EmbeddingDimension int
	Generation         ai.GenerationConfig
}

type AnswerService struct {
	embedder  Embedder
	index     VectorIndex
	generator Generator
	cfg       AnswerConfig
	now       func() time.Time
}

func NewAnswerService(embedder Embedder, index VectorIndex, generator Generator, cfg AnswerConfig) *AnswerService {
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	return &AnswerService{
		embedder:  embedder,
		index:     index,
		generator: generator,
		cfg:       cfg,
		now:       time.Now,
	}
}

type AnswerInput struct {
	Question string
	ScopeIDs []string
}

// Answer runs embed, retrieve, prompt and generate for one question.
// Zero retrieved chunks is a successful answer with NoContextAnswer and no
// generation call. Any stage failure aborts with one of the Err*Failed errors.
func (s *AnswerService) Answer(ctx context.Context, input AnswerInput) (*model.AnswerResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		metrics.AnswerRequests.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	scopeIDs := cleanScope(input.ScopeIDs)
	log := logging.Component("answer")

	vector, err := s.embed(ctx, question)
	if err != nil {
		metrics.AnswerRequests.WithLabelValues("embedding_failed").Inc()
		log.Error().Err(err).Str("stage", "embed").Msg("answer pipeline failed")
		return nil, err
	}

	chunks, err := s.retrieve(ctx, vector, scopeIDs)
	if err != nil {
		metrics.AnswerRequests.WithLabelValues("retrieval_failed").Inc()
		log.Error().Err(err).Str("stage", "retrieve").Strs("scope_ids", scopeIDs).Msg("answer pipeline failed")
		return nil, err
	}
	metrics.ChunksRetrieved.Observe(float64(len(chunks)))

	if len(chunks) == 0 {
		metrics.AnswerRequests.WithLabelValues("no_context").Inc()
		log.Info().Strs("scope_ids", scopeIDs).Msg("no relevant chunks, skipping generation")
		return &model.AnswerResult{
			Success: true,
			Answer:  NoContextAnswer,
			Metadata: model.AnswerMetadata{
				ChunksFound: 0,
				ScopeIDs:    scopeIDs,
				Timestamp:   s.now(),
			},
		}, nil
	}

	answer, err := s.generate(ctx, BuildPrompt(question, chunks))
	if err != nil {
		metrics.AnswerRequests.WithLabelValues("generation_failed").Inc()
		log.Error().Err(err).Str("stage", "generate").Int("chunks", len(chunks)).Msg("answer pipeline failed")
		return nil, err
	}

	metrics.AnswerRequests.WithLabelValues("answered").Inc()
	return &model.AnswerResult{
		Success: true,
		Answer:  answer,
		Metadata: model.AnswerMetadata{
			ChunksFound: len(chunks),
			ScopeIDs:    scopeIDs,
			Sources:     sourcesOf(chunks),
			Timestamp:   s.now(),
		},
	}, nil
}

func (s *AnswerService) embed(ctx context.Context, question string) ([]float32, error) {
	defer observeStage("embed", time.Now())

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty vector", ErrEmbeddingFailed)
	}
	if s.cfg.EmbeddingDimension > 0 && len(vector) != s.cfg.EmbeddingDimension {
		return nil, fmt.Errorf("%w: got %d dimensions, want %d", ErrEmbeddingFailed, len(vector), s.cfg.EmbeddingDimension)
	}
	for i, v := range vector {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: non-finite value at %d", ErrEmbeddingFailed, i)
		}
	}
	return vector, nil
}

func (s *AnswerService) retrieve(ctx context.Context, vector []float32, scopeIDs []string) ([]model.RetrievedChunk, error) {
	defer observeStage("retrieve", time.Now())

	var filter *model.ScopeFilter
	if len(scopeIDs) > 0 {
		filter = &model.ScopeFilter{ProjectIDs: scopeIDs}
	}
	chunks, err := s.index.Query(ctx, vector, s.cfg.TopK, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}
	sortByScore(chunks)
	return chunks, nil
}

func (s *AnswerService) generate(ctx context.Context, prompt string) (string, error) {
	defer observeStage("generate", time.Now())

	text, err := s.generator.Generate(ctx, prompt, s.cfg.Generation)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrGenerationFailed)
	}
	return text, nil
}

// sortByScore orders chunks by descending score; chunks without a score go last.
// The sort is stable so index order survives among equals.
func sortByScore(chunks []model.RetrievedChunk) {
	slices.SortStableFunc(chunks, func(a, b model.RetrievedChunk) int {
		switch {
		case a.Score == nil && b.Score == nil:
			return 0
		case a.Score == nil:
			return 1
		case b.Score == nil:
			return -1
		}
		return cmp.Compare(*b.Score, *a.Score)
	})
}

func sourcesOf(chunks []model.RetrievedChunk) []model.Source {
	sources := make([]model.Source, len(chunks))
	for i, c := range chunks {
		sources[i] = model.Source{
			Document:  orUnknown(c.Metadata.DocumentName),
			ProjectID: orUnknown(c.Metadata.ProjectID),
			Score:     formatScore(c.Score),
		}
	}
	return sources
}

func cleanScope(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if s := strings.TrimSpace(id); s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func observeStage(stage string, start time.Time) {
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
