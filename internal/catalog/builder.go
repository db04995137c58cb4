package catalog

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/routinegen/internal/errors"
	"github.com/myrjola/routinegen/internal/vecindex"
	"golang.org/x/sync/errgroup"
)

// buildWorkers bounds how many embedding batches are in flight at once.
const buildWorkers = 4

// BuildVectors embeds every exercise's composite text in batches and returns
// one unit vector per exercise, in input order. Batches run concurrently but
// bounded, so a large catalog does not open hundreds of connections.
func BuildVectors(ctx context.Context, embedder Embedder, exercises []Exercise, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		return nil, errors.New("batch size must be positive", slog.Int("batch_size", batchSize))
	}
	vectors := make([][]float32, len(exercises))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(buildWorkers)
	for start := 0; start < len(exercises); start += batchSize {
		end := min(start+batchSize, len(exercises))
		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, exercise := range exercises[start:end] {
				texts = append(texts, exercise.EmbeddingText())
			}
			batch, err := embedder.Embed(ctx, texts)
			if err != nil {
				return errors.Wrap(err, "embed batch", slog.Int("start", start))
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// WriteArtifacts writes the binary index and its metadata sidecar, both
// atomically, and re-reads the index to verify the pair is loadable and
// co-versioned before declaring success.
func WriteArtifacts(indexPath, metadataPath string, vectors [][]float32, sidecar Sidecar, logger *slog.Logger) error {
	if len(vectors) != len(sidecar.Exercises) {
		return errors.WithKind(errors.New("vector and metadata row counts differ",
			slog.Int("vectors", len(vectors)),
			slog.Int("exercises", len(sidecar.Exercises))), errors.KindCatalogInconsistent)
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := vecindex.Write(&buf, vectors); err != nil {
		return errors.Wrap(err, "serialize index")
	}
	if err := atomicWrite(indexPath, buf.Bytes()); err != nil {
		return errors.Wrap(err, "write index file")
	}
	if err := WriteSidecar(metadataPath, sidecar); err != nil {
		return errors.Wrap(err, "write sidecar file")
	}
	if _, err := Load(indexPath, metadataPath); err != nil {
		return errors.Wrap(err, "verify written artifacts")
	}
	logger.Info("wrote catalog artifacts",
		slog.String("index_path", indexPath),
		slog.String("metadata_path", metadataPath),
		slog.Int("rows", len(vectors)),
		slog.Duration("duration", time.Since(start)))
	return nil
}
