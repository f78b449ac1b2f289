package pipeline

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/crimson-sun/logsift/internal/centroid"
	"github.com/crimson-sun/logsift/internal/engine/matcher"
	"github.com/crimson-sun/logsift/internal/model"
	"github.com/crimson-sun/logsift/internal/output"
)

// IngestOptions configures one ingestion run.
type IngestOptions struct {
	InputFile     string
	CentroidsFile string
	UnmatchedFile string
	Threshold     float64 // distance below which a message matches
	LearningRate  float64 // EMA step size, in (0, 1]
}

// IngestSummary reports the outcome of an ingestion run.
// Matched + Unmatched = Total, counting only records that passed the time
// gate and were not duplicates.
type IngestSummary struct {
	Matched   int
	Unmatched int
	Total     int
}

// Ingest classifies each record of the input file against the centroid set.
// Records older than the centroid file's modification time are skipped (they
// predate the current model state); canonical messages already seen in this
// run are skipped (first occurrence wins). Matches nudge their centroid by
// an EMA step; non-matches are appended to the overflow log. The updated
// set is persisted exactly once, after the whole run — a failure mid-run
// leaves the previous centroids file intact.
func (p *Pipeline) Ingest(opts IngestOptions) (IngestSummary, error) {
	set, cutoff, err := centroid.Load(opts.CentroidsFile)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("pipeline ingest: %w", err)
	}
	slog.Info("loaded centroids", "file", opts.CentroidsFile,
		"count", set.Len(), "cutoff", cutoff)

	ovf, err := output.OpenOverflow(opts.UnmatchedFile)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("pipeline ingest: %w", err)
	}
	defer ovf.Close()

	f, err := os.Open(opts.InputFile)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("pipeline ingest: %w", err)
	}
	defer f.Close()

	m := matcher.New(opts.Threshold)
	seen := make(map[string]struct{})
	now := time.Now()
	var sum IngestSummary

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		rec := model.LogRecord{
			Timestamp: model.ParseTimestamp(line, now),
			Raw:       line,
			Canonical: p.pre.Normalize(line),
		}

		// Records from before the current model state are assumed already
		// incorporated.
		if rec.Timestamp.Before(cutoff) {
			continue
		}
		if _, dup := seen[rec.Canonical]; dup {
			continue
		}
		seen[rec.Canonical] = struct{}{}
		sum.Total++

		vecs, err := p.emb.EmbedBatch([]string{rec.Canonical})
		if err != nil {
			return sum, fmt.Errorf("pipeline ingest: %w", err)
		}
		dec, err := m.Match(vecs[0], set)
		if err != nil {
			return sum, fmt.Errorf("pipeline ingest: %w", err)
		}

		if dec.Matched {
			sum.Matched++
			slog.Debug("match", "message", rec.Canonical,
				"cluster", dec.Index, "distance", dec.Distance)
			if err := set.Nudge(dec.Index, vecs[0], opts.LearningRate); err != nil {
				return sum, fmt.Errorf("pipeline ingest: %w", err)
			}
		} else {
			sum.Unmatched++
			slog.Debug("no match", "message", rec.Canonical, "distance", dec.Distance)
			if err := ovf.Append(rec.Canonical); err != nil {
				return sum, fmt.Errorf("pipeline ingest: %w", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("pipeline ingest: read %s: %w", opts.InputFile, err)
	}

	if err := ovf.Close(); err != nil {
		return sum, fmt.Errorf("pipeline ingest: %w", err)
	}
	if err := set.Save(opts.CentroidsFile); err != nil {
		return sum, fmt.Errorf("pipeline ingest: %w", err)
	}
	return sum, nil
}
