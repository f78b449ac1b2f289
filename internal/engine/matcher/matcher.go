// Package matcher classifies embedding vectors against a centroid set by
// nearest-centroid search.
package matcher

import (
	"fmt"
	"math"

	"github.com/crimson-sun/logsift/internal/centroid"
)

// Decision is the outcome of matching one vector against a centroid set.
type Decision struct {
	Matched  bool
	Index    int     // index of the nearest centroid
	Distance float64 // Euclidean distance to that centroid
}

// Matcher scores embeddings against centroids with a distance threshold.
type Matcher struct {
	Threshold float64
}

// New creates a Matcher with the given distance threshold.
func New(threshold float64) *Matcher {
	return &Matcher{Threshold: threshold}
}

// Match scans every centroid row in order and returns the decision for the
// nearest one. The first index achieving the minimum distance wins, so
// results are stable across runs. A match is a distance strictly below the
// threshold. A dimension mismatch is fatal.
func (m *Matcher) Match(vec []float32, set *centroid.Set) (Decision, error) {
	if set.Len() == 0 {
		return Decision{}, fmt.Errorf("matcher: empty centroid set")
	}
	if len(vec) != set.Dim() {
		return Decision{}, fmt.Errorf("matcher: %d-dim vector against %d-dim set",
			len(vec), set.Dim())
	}

	best := Decision{Index: 0, Distance: math.Inf(1)}
	for i := 0; i < set.Len(); i++ {
		dist := set.Distance(i, vec)
		if dist < best.Distance {
			best.Index = i
			best.Distance = dist
		}
	}
	best.Matched = best.Distance < m.Threshold
	return best, nil
}
