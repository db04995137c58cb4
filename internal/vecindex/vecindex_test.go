package vecindex

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustIndex(t *testing.T, vectors [][]float32) *Index {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, vectors); err != nil {
		t.Fatalf("Write: %v", err)
	}
	index, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return index
}

func TestWriteReadRoundTrip(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0.6, 0.8},
	}
	index := mustIndex(t, vectors)

	if got, want := index.Rows(), 3; got != want {
		t.Errorf("Rows() = %d, want %d", got, want)
	}
	if got, want := index.Dim(), 3; got != want {
		t.Errorf("Dim() = %d, want %d", got, want)
	}
	for i, want := range vectors {
		got, err := index.Row(i)
		if err != nil {
			t.Fatalf("Row(%d): %v", i, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Row(%d) mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestRowOutOfRange(t *testing.T) {
	index := mustIndex(t, [][]float32{{1, 0}})
	for _, row := range []int{-1, 1, 42} {
		if _, err := index.Row(row); err == nil {
			t.Errorf("Row(%d) succeeded, want error", row)
		}
	}
}

func TestSearchOrdersByDescendingScore(t *testing.T) {
	index := mustIndex(t, [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{0, 0.6, 0.8},
	})
	// Nearly aligned with row 1, with row 3 second via its Y component.
	norm := float32(math.Sqrt(0.1*0.1 + 1))
	query := []float32{0.1 / norm, 1 / norm, 0}

	hits, err := index.Search(query, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	gotRows := make([]int, len(hits))
	for i, hit := range hits {
		gotRows[i] = hit.Row
	}
	if diff := cmp.Diff([]int{1, 3, 0}, gotRows); diff != "" {
		t.Errorf("Search rows mismatch (-want +got):\n%s", diff)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("scores not descending: %v", hits)
		}
	}
}

func TestSearchBreaksTiesByRow(t *testing.T) {
	index := mustIndex(t, [][]float32{
		{0, 1},
		{1, 0},
		{1, 0},
	})
	hits, err := index.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	gotRows := make([]int, len(hits))
	for i, hit := range hits {
		gotRows[i] = hit.Row
	}
	if diff := cmp.Diff([]int{1, 2, 0}, gotRows); diff != "" {
		t.Errorf("tie-break mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchClampsK(t *testing.T) {
	index := mustIndex(t, [][]float32{{1, 0}, {0, 1}})

	hits, err := index.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got, want := len(hits), 2; got != want {
		t.Errorf("len(hits) = %d, want %d", got, want)
	}

	hits, err = index.Search([]float32{1, 0}, 0)
	if err != nil {
		t.Fatalf("Search with k=0: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Search with k=0 returned %d hits, want none", len(hits))
	}
}

func TestSearchRejectsDimensionMismatch(t *testing.T) {
	index := mustIndex(t, [][]float32{{1, 0, 0}})
	if _, err := index.Search([]float32{1, 0}, 1); err == nil {
		t.Error("Search with short query succeeded, want error")
	}
}

func TestWriteRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float32
	}{
		{"empty", nil},
		{"zero dimension", [][]float32{{}}},
		{"ragged rows", [][]float32{{1, 0}, {1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Write(&bytes.Buffer{}, tt.vectors); err == nil {
				t.Error("Write succeeded, want error")
			}
		})
	}
}

func TestReadRejectsCorruptFiles(t *testing.T) {
	valid := func() []byte {
		var buf bytes.Buffer
		if err := Write(&buf, [][]float32{{1, 0}, {0, 1}}); err != nil {
			t.Fatalf("Write: %v", err)
		}
		return buf.Bytes()
	}

	t.Run("bad magic", func(t *testing.T) {
		raw := valid()
		binary.LittleEndian.PutUint32(raw[0:], 0xdeadbeef)
		if _, err := Read(bytes.NewReader(raw)); err == nil {
			t.Error("Read accepted a bad magic number")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		raw := valid()
		binary.LittleEndian.PutUint32(raw[4:], 99)
		if _, err := Read(bytes.NewReader(raw)); err == nil {
			t.Error("Read accepted an unsupported version")
		}
	})

	t.Run("truncated vectors", func(t *testing.T) {
		raw := valid()
		if _, err := Read(bytes.NewReader(raw[:len(raw)-4])); err == nil {
			t.Error("Read accepted a truncated payload")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if _, err := Read(bytes.NewReader(nil)); err == nil {
			t.Error("Read accepted empty input")
		}
	})
}
