package centroid

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRejectsRaggedRows(t *testing.T) {
	_, err := New([][]float32{{1, 2}, {3}})
	if err == nil {
		t.Fatal("expected error for ragged rows, got nil")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "centroids.json")
	rows := [][]float32{{1, 0, 0}, {0, 1, 0}, {0.5, 0.5, 0}}

	s, err := New(rows)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, mtime, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if mtime.IsZero() {
		t.Error("expected a non-zero modification time")
	}
	if loaded.Len() != 3 || loaded.Dim() != 3 {
		t.Fatalf("loaded %dx%d, want 3x3", loaded.Len(), loaded.Dim())
	}
	for i := range rows {
		for d := range rows[i] {
			if loaded.Row(i)[d] != rows[i][d] {
				t.Errorf("row %d dim %d: got %f, want %f", i, d, loaded.Row(i)[d], rows[i][d])
			}
		}
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "centroids.json")

	s, err := New([][]float32{{1, 2}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "centroids.json" {
		t.Errorf("expected only centroids.json in %s, got %v", dir, entries)
	}
}

func TestSaveOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "centroids.json")

	first, _ := New([][]float32{{1}})
	if err := first.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second, _ := New([][]float32{{2}, {3}})
	if err := second.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("expected 2 centroids after overwrite, got %d", loaded.Len())
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "absent.json")},
		{"malformed json", write("garbage.json", "{not json")},
		{"wrong shape", write("object.json", `{"rows": []}`)},
		{"empty matrix", write("empty.json", "[]")},
		{"ragged rows", write("ragged.json", "[[1,2],[3]]")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Load(tt.path); err == nil {
				t.Errorf("Load(%s): expected error, got nil", tt.path)
			}
		})
	}
}

func TestAppend(t *testing.T) {
	s, _ := New([][]float32{{1, 0}})
	if err := s.Append([]float32{0, 1}, []float32{1, 1}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("expected 3 rows, got %d", s.Len())
	}
	if s.Row(2)[0] != 1 || s.Row(2)[1] != 1 {
		t.Errorf("row 2 = %v, want [1 1]", s.Row(2))
	}
}

func TestAppendDimensionMismatch(t *testing.T) {
	s, _ := New([][]float32{{1, 0}})
	if err := s.Append([]float32{1, 2, 3}); err == nil {
		t.Fatal("expected error for dimension mismatch, got nil")
	}
}

func TestAppendToEmptySetAdoptsDimension(t *testing.T) {
	s, _ := New(nil)
	if err := s.Append([]float32{1, 2, 3}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if s.Dim() != 3 {
		t.Errorf("expected dim 3, got %d", s.Dim())
	}
}

func TestNudge(t *testing.T) {
	// c ← c + r·(v − c): [0, 0] toward [1, 1] at rate 0.5 lands at [0.5, 0.5].
	s, _ := New([][]float32{{0, 0}})
	if err := s.Nudge(0, []float32{1, 1}, 0.5); err != nil {
		t.Fatalf("Nudge failed: %v", err)
	}
	if s.Row(0)[0] != 0.5 || s.Row(0)[1] != 0.5 {
		t.Errorf("row 0 = %v, want [0.5 0.5]", s.Row(0))
	}

	// A second step covers half the remaining distance.
	if err := s.Nudge(0, []float32{1, 1}, 0.5); err != nil {
		t.Fatalf("Nudge failed: %v", err)
	}
	if s.Row(0)[0] != 0.75 || s.Row(0)[1] != 0.75 {
		t.Errorf("row 0 = %v, want [0.75 0.75]", s.Row(0))
	}
}

func TestNudgeRateOneReplacesRow(t *testing.T) {
	s, _ := New([][]float32{{0.25, -3}})
	if err := s.Nudge(0, []float32{1, 2}, 1.0); err != nil {
		t.Fatalf("Nudge failed: %v", err)
	}
	if s.Row(0)[0] != 1 || s.Row(0)[1] != 2 {
		t.Errorf("row 0 = %v, want [1 2]", s.Row(0))
	}
}

func TestNudgeDimensionMismatch(t *testing.T) {
	s, _ := New([][]float32{{0, 0}})
	if err := s.Nudge(0, []float32{1}, 0.1); err == nil {
		t.Fatal("expected error for dimension mismatch, got nil")
	}
}

func TestDistance(t *testing.T) {
	s, _ := New([][]float32{{0, 0}})
	got := s.Distance(0, []float32{3, 4})
	if math.Abs(got-5) > 1e-9 {
		t.Errorf("Distance = %f, want 5", got)
	}
}
