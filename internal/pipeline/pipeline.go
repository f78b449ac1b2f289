// Package pipeline wires the preprocessor, embedder, clusterer, matcher,
// and centroid store into the four batch operations: train, ingest,
// retrain, and pattern testing.
package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/crimson-sun/logsift/internal/engine/embedder"
	"github.com/crimson-sun/logsift/internal/preprocess"
)

// DefaultBatchSize bounds peak memory when embedding large corpora: each
// batch is embedded separately and the vector blocks are concatenated.
const DefaultBatchSize = 1024

// Pipeline bundles the collaborators shared by every operation. The
// embedder is loaded once per process and injected, so tests can
// substitute a deterministic stub.
type Pipeline struct {
	pre *preprocess.Preprocessor
	emb embedder.Embedder
}

// New creates a Pipeline from the given collaborators.
func New(pre *preprocess.Preprocessor, emb embedder.Embedder) *Pipeline {
	return &Pipeline{pre: pre, emb: emb}
}

// TestPatterns prints the original and normalized form of every line in
// the input file. A debugging utility for refining substitution rules.
func (p *Pipeline) TestPatterns(inputFile string, w io.Writer) error {
	f, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintf(w, "Original:  '%s'\n", line)
		fmt.Fprintf(w, "Processed: '%s'\n\n", p.pre.Normalize(line))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("pipeline: read %s: %w", inputFile, err)
	}
	return nil
}
