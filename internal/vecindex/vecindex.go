// Package vecindex implements the on-disk unit-vector index the exercise
// catalog is searched through. The file layout is a fixed little-endian
// header (magic, version, row count, dimension) followed by row-major float32
// vectors. Rows are addressed by ordinal; the catalog metadata sidecar shares
// the same ordinals.
package vecindex

import (
	"bufio"
	"encoding/binary"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"

	"github.com/myrjola/routinegen/internal/errors"
)

const (
	// indexMagic spells "VIDX" when the header is written little-endian.
	indexMagic   uint32 = 0x58444956
	indexVersion uint32 = 1

	// maxRows and maxDim bound header values so a corrupt file cannot make
	// Read allocate absurd amounts of memory.
	maxRows = 1 << 24
	maxDim  = 1 << 16
)

// Index is a read-only set of unit vectors. It is safe for concurrent use
// once constructed.
type Index struct {
	dim     int
	rows    int
	vectors []float32
}

// Hit is one search result: the row ordinal and its inner-product score
// against the query.
type Hit struct {
	Row   int
	Score float64
}

type header struct {
	Magic   uint32
	Version uint32
	Rows    uint32
	Dim     uint32
}

// Read parses an index from r.
func Read(r io.Reader) (*Index, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "read index header")
	}
	if h.Magic != indexMagic {
		return nil, errors.New("unrecognized index magic",
			slog.Any("got", h.Magic),
			slog.Any("want", indexMagic))
	}
	if h.Version != indexVersion {
		return nil, errors.New("unsupported index version",
			slog.Any("got", h.Version),
			slog.Any("want", indexVersion))
	}
	if h.Dim == 0 || h.Dim > maxDim || h.Rows > maxRows {
		return nil, errors.New("implausible index dimensions",
			slog.Any("rows", h.Rows),
			slog.Any("dim", h.Dim))
	}
	vectors := make([]float32, int(h.Rows)*int(h.Dim))
	if err := binary.Read(r, binary.LittleEndian, vectors); err != nil {
		return nil, errors.Wrap(err, "read index vectors",
			slog.Any("rows", h.Rows),
			slog.Any("dim", h.Dim))
	}
	return &Index{
		dim:     int(h.Dim),
		rows:    int(h.Rows),
		vectors: vectors,
	}, nil
}

// ReadFile parses the index stored at path.
func ReadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open index file", slog.String("path", path))
	}
	defer f.Close()
	index, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrap(err, "parse index file", slog.String("path", path))
	}
	return index, nil
}

// Write serializes vectors to w. Every vector must share the same non-zero
// dimension.
func Write(w io.Writer, vectors [][]float32) error {
	if len(vectors) == 0 {
		return errors.New("refusing to write an empty index")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return errors.New("refusing to write zero-dimensional vectors")
	}
	for i, vector := range vectors {
		if len(vector) != dim {
			return errors.New("ragged vector dimensions",
				slog.Int("row", i),
				slog.Int("got", len(vector)),
				slog.Int("want", dim))
		}
	}
	bw := bufio.NewWriter(w)
	h := header{
		Magic:   indexMagic,
		Version: indexVersion,
		Rows:    uint32(len(vectors)),
		Dim:     uint32(dim),
	}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return errors.Wrap(err, "write index header")
	}
	for i, vector := range vectors {
		if err := binary.Write(bw, binary.LittleEndian, vector); err != nil {
			return errors.Wrap(err, "write index vector", slog.Int("row", i))
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "flush index")
	}
	return nil
}

// Normalize scales v to unit length in place and returns it. The zero vector
// has no direction and is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

// Rows returns the number of vectors in the index.
func (ix *Index) Rows() int {
	return ix.rows
}

// Dim returns the vector dimension.
func (ix *Index) Dim() int {
	return ix.dim
}

// Row returns a copy of the vector at the given ordinal.
func (ix *Index) Row(row int) ([]float32, error) {
	if row < 0 || row >= ix.rows {
		return nil, errors.New("row out of range",
			slog.Int("row", row),
			slog.Int("rows", ix.rows))
	}
	out := make([]float32, ix.dim)
	copy(out, ix.vectors[row*ix.dim:(row+1)*ix.dim])
	return out, nil
}

// Search scores every row against the query by inner product and returns the
// top k hits in descending score order. Ties break toward the lower row
// ordinal so results are deterministic. The query must match the index
// dimension and is assumed to be L2-normalized, as the stored rows are.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, errors.New("query dimension mismatch",
			slog.Int("got", len(query)),
			slog.Int("want", ix.dim))
	}
	if k <= 0 || ix.rows == 0 {
		return nil, nil
	}
	hits := make([]Hit, 0, ix.rows)
	for row := 0; row < ix.rows; row++ {
		offset := row * ix.dim
		var score float64
		for i, q := range query {
			score += float64(q) * float64(ix.vectors[offset+i])
		}
		hits = append(hits, Hit{Row: row, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Row < hits[j].Row
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}
