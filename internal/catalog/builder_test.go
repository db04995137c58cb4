package catalog

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/myrjola/routinegen/internal/errors"
)

// echoEmbedder derives each vector from the text itself so tests can verify
// batch results land at the right ordinals.
type echoEmbedder struct {
	calls atomic.Int32
}

func (e *echoEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		id, _ := strconv.Atoi(strings.Fields(text)[0])
		vectors[i] = []float32{float32(id), 1}
	}
	return vectors, nil
}

func TestBuildVectors(t *testing.T) {
	exercises := make([]Exercise, 10)
	for i := range exercises {
		exercises[i] = Exercise{ID: i + 1, Title: strconv.Itoa(i+1) + " exercise"}
	}
	embedder := &echoEmbedder{}

	vectors, err := BuildVectors(context.Background(), embedder, exercises, 3)
	if err != nil {
		t.Fatalf("BuildVectors returned error: %v", err)
	}
	if len(vectors) != len(exercises) {
		t.Fatalf("got %d vectors, want %d", len(vectors), len(exercises))
	}
	// Each vector must sit at the ordinal of the exercise it embeds, no
	// matter which batch produced it.
	for i, vector := range vectors {
		if int(vector[0]) != i+1 {
			t.Errorf("vector %d embeds exercise %d, want %d", i, int(vector[0]), i+1)
		}
	}
	if got := embedder.calls.Load(); got != 4 {
		t.Errorf("embedder called %d times, want 4 batches of size 3", got)
	}
}

func TestBuildVectorsRejectsBadBatchSize(t *testing.T) {
	if _, err := BuildVectors(context.Background(), &echoEmbedder{}, []Exercise{{ID: 1}}, 0); err == nil {
		t.Error("BuildVectors accepted a zero batch size")
	}
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.WithKind(errors.New("service down"), errors.KindEmbeddingUnavailable)
}

func TestBuildVectorsPropagatesEmbedderFailure(t *testing.T) {
	_, err := BuildVectors(context.Background(), failingEmbedder{}, []Exercise{{ID: 1}}, 8)
	if err == nil {
		t.Fatal("BuildVectors succeeded, want error")
	}
	if kind := errors.KindOf(err); kind != errors.KindEmbeddingUnavailable {
		t.Errorf("error kind = %q, want %q", kind, errors.KindEmbeddingUnavailable)
	}
}
