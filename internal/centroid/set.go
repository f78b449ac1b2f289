// Package centroid persists and mutates the model's centroid matrix.
//
// A Set is an ordered dense matrix of float32 rows; the row index is the
// cluster's identity for the lifetime of the set. The on-disk form is a
// plain JSON 2D array so operators can inspect and hand-edit it.
package centroid

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// Set holds centroid vectors, all of the same dimension.
type Set struct {
	rows [][]float32
	dim  int
}

// New creates a Set from existing rows. Rows must be non-ragged.
func New(rows [][]float32) (*Set, error) {
	s := &Set{}
	for i, row := range rows {
		if i == 0 {
			s.dim = len(row)
		} else if len(row) != s.dim {
			return nil, fmt.Errorf("centroid: ragged rows: row %d has %d columns, want %d",
				i, len(row), s.dim)
		}
	}
	s.rows = rows
	return s, nil
}

// Load reads a centroid file and returns the set together with the file's
// modification time, which ingestion uses as its time-gate cutoff. A file
// whose declared shape is inconsistent (ragged rows, empty matrix) is a
// fatal parse error.
func Load(path string) (*Set, time.Time, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("centroid: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("centroid: %w", err)
	}

	var rows [][]float32
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, time.Time{}, fmt.Errorf("centroid: malformed file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, time.Time{}, fmt.Errorf("centroid: file %s holds no centroids", path)
	}
	s, err := New(rows)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("centroid: malformed file %s: %w", path, err)
	}
	return s, info.ModTime(), nil
}

// Save writes the set atomically: a temp file in the target directory,
// fsync'd and renamed over the destination. Callers invoke this exactly
// once, at the end of a run — a crash mid-run leaves the previous file
// intact.
func (s *Set) Save(path string) error {
	data, err := json.Marshal(s.rows)
	if err != nil {
		return fmt.Errorf("centroid: marshal: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("centroid: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("centroid: write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("centroid: sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("centroid: close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("centroid: rename: %w", err)
	}
	return nil
}

// Len returns the number of centroids.
func (s *Set) Len() int {
	return len(s.rows)
}

// Dim returns the vector dimension, or 0 for an empty set.
func (s *Set) Dim() int {
	return s.dim
}

// Row returns the i-th centroid. The slice aliases internal storage.
func (s *Set) Row(i int) []float32 {
	return s.rows[i]
}

// Append adds vectors verbatim as new rows. Dimension mismatches against an
// existing non-empty set are fatal.
func (s *Set) Append(vecs ...[]float32) error {
	for _, v := range vecs {
		if s.dim == 0 {
			s.dim = len(v)
		} else if len(v) != s.dim {
			return fmt.Errorf("centroid: cannot append %d-dim vector to %d-dim set",
				len(v), s.dim)
		}
		s.rows = append(s.rows, v)
	}
	return nil
}

// Nudge moves row i toward vec by an exponential-moving-average step:
//
//	c ← c + rate·(v − c)
//
// with rate in (0, 1]. The row is mutated in place.
func (s *Set) Nudge(i int, vec []float32, rate float64) error {
	if len(vec) != s.dim {
		return fmt.Errorf("centroid: %d-dim update against %d-dim set", len(vec), s.dim)
	}
	row := s.rows[i]
	r := float32(rate)
	for d := range row {
		row[d] += r * (vec[d] - row[d])
	}
	return nil
}

// Distance returns the Euclidean distance between vec and row i.
func (s *Set) Distance(i int, vec []float32) float64 {
	var sum float64
	row := s.rows[i]
	for d := range row {
		diff := float64(row[d]) - float64(vec[d])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
