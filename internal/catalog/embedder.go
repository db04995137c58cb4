package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/routinegen/internal/errors"
	"github.com/myrjola/routinegen/internal/vecindex"
	"github.com/openai/openai-go/v3"
)

// Embedder turns texts into vectors. Implementations must return one vector
// per input text, in input order, L2-normalized.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

const embeddingTimeout = 10 * time.Second

// OpenAIEmbedder embeds through the OpenAI embeddings endpoint with a fixed
// model. One call embeds a whole batch.
type OpenAIEmbedder struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIEmbedder creates an embedder bound to one model identifier. The
// model must match the one the vector index was built with.
func NewOpenAIEmbedder(client openai.Client, model string, logger *slog.Logger) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: client, model: model, logger: logger}
}

// Embed implements Embedder. Failures are tagged KindEmbeddingUnavailable so
// callers can degrade instead of failing the whole request.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, embeddingTimeout)
	defer cancel()

	start := time.Now()
	response, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, errors.WithKind(errors.Wrap(err, "embeddings call",
			slog.String("model", e.model),
			slog.Int("batch_size", len(texts))), errors.KindEmbeddingUnavailable)
	}
	e.logger.LogAttrs(ctx, slog.LevelDebug, "embedded batch",
		slog.Int("batch_size", len(texts)),
		slog.Duration("duration", time.Since(start)))

	vectors := make([][]float32, len(texts))
	for _, item := range response.Data {
		index := int(item.Index)
		if index < 0 || index >= len(texts) {
			continue
		}
		vector := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vector[i] = float32(v)
		}
		vectors[index] = vecindex.Normalize(vector)
	}
	for i, vector := range vectors {
		if vector == nil {
			return nil, errors.WithKind(errors.New("embedding response missing input",
				slog.Int("input", i)), errors.KindEmbeddingUnavailable)
		}
	}
	return vectors, nil
}
