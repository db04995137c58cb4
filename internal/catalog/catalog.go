package catalog

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/myrjola/routinegen/internal/errors"
	"github.com/myrjola/routinegen/internal/vecindex"
)

// Sidecar is the JSON metadata file written next to the binary vector index.
// Row ordinals in the index address entries in Exercises.
type Sidecar struct {
	// EmbeddingModel records which model produced the vectors so the server
	// can refuse to search them with a different one.
	EmbeddingModel string     `json:"embedding_model"`
	Exercises      []Exercise `json:"exercises"`
}

// ReadSidecar parses the metadata sidecar at path.
func ReadSidecar(path string) (Sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sidecar{}, errors.Wrap(err, "read sidecar", slog.String("path", path))
	}
	var sidecar Sidecar
	if err = json.Unmarshal(data, &sidecar); err != nil {
		return Sidecar{}, errors.Wrap(err, "parse sidecar", slog.String("path", path))
	}
	return sidecar, nil
}

// WriteSidecar writes the metadata sidecar atomically: to a temp file in the
// target directory first, then renamed into place.
func WriteSidecar(path string, sidecar Sidecar) error {
	data, err := json.MarshalIndent(sidecar, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal sidecar")
	}
	return atomicWrite(path, data)
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp file", slog.String("path", path))
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "write temp file", slog.String("path", tmpName))
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "close temp file", slog.String("path", tmpName))
	}
	if err = os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "rename temp file", slog.String("path", path))
	}
	return nil
}

// Catalog is the serve-time view: the vector index and its metadata mirror,
// loaded once at startup and read-only afterwards. Safe for concurrent use.
type Catalog struct {
	index     *vecindex.Index
	exercises []Exercise
	byID      map[int]Exercise
	model     string
}

// Load reads the index and sidecar pair. The two files are co-versioned: a
// row-count mismatch means one was rebuilt without the other and is fatal.
func Load(indexPath, metadataPath string) (*Catalog, error) {
	index, err := vecindex.ReadFile(indexPath)
	if err != nil {
		return nil, errors.Wrap(err, "load vector index")
	}
	sidecar, err := ReadSidecar(metadataPath)
	if err != nil {
		return nil, errors.Wrap(err, "load metadata sidecar")
	}
	if index.Rows() != len(sidecar.Exercises) {
		return nil, errors.WithKind(errors.New("index and sidecar row counts differ",
			slog.Int("index_rows", index.Rows()),
			slog.Int("sidecar_rows", len(sidecar.Exercises))), errors.KindCatalogInconsistent)
	}
	return New(index, sidecar), nil
}

// New builds a catalog from an already-loaded index and sidecar. The caller
// is responsible for row-count agreement; Load enforces it.
func New(index *vecindex.Index, sidecar Sidecar) *Catalog {
	byID := make(map[int]Exercise, len(sidecar.Exercises))
	for _, exercise := range sidecar.Exercises {
		byID[exercise.ID] = exercise
	}
	return &Catalog{
		index:     index,
		exercises: sidecar.Exercises,
		byID:      byID,
		model:     sidecar.EmbeddingModel,
	}
}

// Len returns the number of catalog rows.
func (c *Catalog) Len() int {
	return len(c.exercises)
}

// EmbeddingModel returns the model identifier the index was built with.
func (c *Catalog) EmbeddingModel() string {
	return c.model
}

// ByID looks up an exercise by its stable identifier.
func (c *Catalog) ByID(id int) (Exercise, bool) {
	exercise, ok := c.byID[id]
	return exercise, ok
}

// at returns the exercise at a row ordinal and whether the ordinal is valid.
func (c *Catalog) at(row int) (Exercise, bool) {
	if row < 0 || row >= len(c.exercises) {
		return Exercise{}, false
	}
	return c.exercises[row], true
}
