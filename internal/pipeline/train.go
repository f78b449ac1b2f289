package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/crimson-sun/logsift/internal/centroid"
	"github.com/crimson-sun/logsift/internal/engine/cluster"
)

// TrainOptions configures one training run.
type TrainOptions struct {
	InputFile  string
	OutputFile string
	Epsilon    float64 // DBSCAN neighborhood radius, > 0
	MinPoints  int     // DBSCAN density threshold, >= 1
	BatchSize  int     // lines per embedding batch; 0 = DefaultBatchSize
}

// TrainSummary reports the outcome of a training run.
type TrainSummary struct {
	Vectors  int // messages embedded; 0 means the input was empty
	Clusters int
	Noise    int
}

// Train reads the corpus in batches, embeds each batch of normalized
// messages, clusters the full vector set, and persists the resulting
// centroids. An empty input is a no-op that writes nothing — distinct from
// clustering that finds nothing, which is cluster.ErrNoClusters.
func (p *Pipeline) Train(opts TrainOptions) (TrainSummary, error) {
	f, err := os.Open(opts.InputFile)
	if err != nil {
		return TrainSummary{}, fmt.Errorf("pipeline train: %w", err)
	}
	defer f.Close()

	slog.Info("reading and embedding corpus", "file", opts.InputFile)
	var vectors [][]float32
	b := NewLineBatcher(f, opts.BatchSize)
	for b.Next() {
		lines := b.Batch()
		canon := make([]string, len(lines))
		for i, line := range lines {
			canon[i] = p.pre.Normalize(line)
		}
		slog.Debug("embedding batch", "size", len(canon))
		vecs, err := p.emb.EmbedBatch(canon)
		if err != nil {
			return TrainSummary{}, fmt.Errorf("pipeline train: %w", err)
		}
		if len(vectors) > 0 && len(vecs) > 0 && len(vecs[0]) != len(vectors[0]) {
			return TrainSummary{}, fmt.Errorf("pipeline train: embedding dim changed from %d to %d between batches",
				len(vectors[0]), len(vecs[0]))
		}
		vectors = append(vectors, vecs...)
	}
	if err := b.Err(); err != nil {
		return TrainSummary{}, fmt.Errorf("pipeline train: read %s: %w", opts.InputFile, err)
	}

	if len(vectors) == 0 {
		return TrainSummary{}, nil
	}

	slog.Info("clustering", "vectors", len(vectors),
		"epsilon", opts.Epsilon, "min_points", opts.MinPoints)
	classes := cluster.Run(vectors, opts.Epsilon, opts.MinPoints)
	p.logAssignments(opts.InputFile, classes)

	centroids, noise, err := cluster.Reduce(vectors, classes)
	if err != nil {
		return TrainSummary{}, fmt.Errorf("pipeline train: %w", err)
	}

	set, err := centroid.New(centroids)
	if err != nil {
		return TrainSummary{}, fmt.Errorf("pipeline train: %w", err)
	}
	if err := set.Save(opts.OutputFile); err != nil {
		return TrainSummary{}, fmt.Errorf("pipeline train: %w", err)
	}

	return TrainSummary{Vectors: len(vectors), Clusters: set.Len(), Noise: noise}, nil
}

// logAssignments emits the per-line cluster assignment at debug level by
// re-reading the input file, so the full corpus is never held in memory.
func (p *Pipeline) logAssignments(path string, classes []cluster.Classification) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for i := 0; scanner.Scan() && i < len(classes); i++ {
		c := classes[i]
		if c.Kind == cluster.Noise {
			slog.Debug("cluster assignment", "line", scanner.Text(), "assignment", "noise")
		} else {
			slog.Debug("cluster assignment", "line", scanner.Text(),
				"assignment", c.Cluster, "kind", c.Kind.String())
		}
	}
}
