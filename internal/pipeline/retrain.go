package pipeline

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/crimson-sun/logsift/internal/centroid"
)

// RetrainOptions configures one retraining run.
type RetrainOptions struct {
	InputFile     string // backlog of canonical messages, one per line
	CentroidsFile string
	BatchSize     int // lines per embedding batch; 0 = DefaultBatchSize
}

// RetrainSummary reports the outcome of a retraining run.
type RetrainSummary struct {
	Added int // new centroids appended
	Total int // centroids after the run
}

// Retrain embeds every line of the backlog and appends each vector verbatim
// as a new centroid — no clustering, averaging, or deduplication. This is
// how operator-curated unmatched messages become known patterns. An empty
// backlog is a no-op and leaves the centroids file untouched.
func (p *Pipeline) Retrain(opts RetrainOptions) (RetrainSummary, error) {
	set, _, err := centroid.Load(opts.CentroidsFile)
	if err != nil {
		return RetrainSummary{}, fmt.Errorf("pipeline retrain: %w", err)
	}
	slog.Info("loaded centroids", "file", opts.CentroidsFile, "count", set.Len())

	f, err := os.Open(opts.InputFile)
	if err != nil {
		return RetrainSummary{}, fmt.Errorf("pipeline retrain: %w", err)
	}
	defer f.Close()

	added := 0
	b := NewLineBatcher(f, opts.BatchSize)
	for b.Next() {
		lines := b.Batch()
		canon := make([]string, len(lines))
		for i, line := range lines {
			canon[i] = p.pre.Normalize(line)
			slog.Debug("adding centroid", "message", canon[i])
		}
		vecs, err := p.emb.EmbedBatch(canon)
		if err != nil {
			return RetrainSummary{}, fmt.Errorf("pipeline retrain: %w", err)
		}
		if err := set.Append(vecs...); err != nil {
			return RetrainSummary{}, fmt.Errorf("pipeline retrain: %w", err)
		}
		added += len(vecs)
	}
	if err := b.Err(); err != nil {
		return RetrainSummary{}, fmt.Errorf("pipeline retrain: read %s: %w", opts.InputFile, err)
	}

	if added == 0 {
		return RetrainSummary{Added: 0, Total: set.Len()}, nil
	}

	if err := set.Save(opts.CentroidsFile); err != nil {
		return RetrainSummary{}, fmt.Errorf("pipeline retrain: %w", err)
	}
	return RetrainSummary{Added: added, Total: set.Len()}, nil
}
