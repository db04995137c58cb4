package catalog

import (
	"context"
	"log/slog"
	"slices"

	"github.com/myrjola/routinegen/internal/errors"
	"github.com/myrjola/routinegen/internal/metrics"
)

// ErrSearchUnavailable marks a retrieval round that produced nothing because
// the embedding service failed. Callers continue with their fallbacks.
var ErrSearchUnavailable = errors.NewSentinel("search unavailable")

// Candidate is one retrieval hit: a catalog exercise with its similarity
// score against the query.
type Candidate struct {
	Exercise Exercise
	Score    float64
}

// Filters narrow a search before results are returned. Empty slices place no
// restriction.
type Filters struct {
	// TargetGroupAllowed keeps only exercises whose target group is in the
	// set. Exercises without a target group count as common.
	TargetGroupAllowed []metrics.TargetGroup
	// FitnessFactorExcluded rejects exercises whose fitness factor is in the
	// set.
	FitnessFactorExcluded []string
	// ExcludeIDs rejects specific exercises, used by back-fill searches to
	// skip everything already placed on a day.
	ExcludeIDs []int
}

// oversampleFactor widens the index query so metadata filtering can reject
// candidates without starving the caller.
const oversampleFactor = 3

// Gateway composes embedding, index search, and metadata filtering into one
// retrieval round.
type Gateway struct {
	catalog  *Catalog
	embedder Embedder
	defaultK int
	logger   *slog.Logger
}

// NewGateway creates a search gateway over the loaded catalog. defaultK is
// used when a caller passes a non-positive k.
func NewGateway(catalog *Catalog, embedder Embedder, defaultK int, logger *slog.Logger) *Gateway {
	return &Gateway{catalog: catalog, embedder: embedder, defaultK: defaultK, logger: logger}
}

// Search embeds the query, asks the index for an oversampled top-k, and
// returns the survivors of metadata filtering in descending score order, at
// most k of them. Embedding failures surface as ErrSearchUnavailable.
func (g *Gateway) Search(ctx context.Context, query string, k int, filters Filters) ([]Candidate, error) {
	if k <= 0 {
		k = g.defaultK
	}
	if k <= 0 {
		return nil, nil
	}
	vectors, err := g.embedder.Embed(ctx, []string{query})
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "query embedding failed",
			slog.String("query", query), errors.SlogError(err))
		return nil, errors.WithKind(errors.Wrap(ErrSearchUnavailable, "embed query"),
			errors.KindEmbeddingUnavailable)
	}
	hits, err := g.catalog.index.Search(vectors[0], k*oversampleFactor)
	if err != nil {
		return nil, errors.Wrap(err, "index search", slog.String("query", query))
	}

	candidates := make([]Candidate, 0, k)
	for _, hit := range hits {
		exercise, ok := g.catalog.at(hit.Row)
		if !ok {
			continue
		}
		if !filters.allows(exercise) {
			continue
		}
		candidates = append(candidates, Candidate{Exercise: exercise, Score: hit.Score})
		if len(candidates) == k {
			break
		}
	}
	g.logger.LogAttrs(ctx, slog.LevelDebug, "catalog search",
		slog.String("query", query),
		slog.Int("k", k),
		slog.Int("hits", len(hits)),
		slog.Int("survivors", len(candidates)))
	return candidates, nil
}

func (f Filters) allows(exercise Exercise) bool {
	if slices.Contains(f.ExcludeIDs, exercise.ID) {
		return false
	}
	if len(f.TargetGroupAllowed) > 0 {
		group := exercise.TargetGroup
		if group == "" {
			group = metrics.TargetGroupCommon
		}
		if !slices.Contains(f.TargetGroupAllowed, group) {
			return false
		}
	}
	if exercise.FitnessFactor != "" && slices.Contains(f.FitnessFactorExcluded, exercise.FitnessFactor) {
		return false
	}
	return true
}
