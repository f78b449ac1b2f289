package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/logsift/internal/config"
	"github.com/crimson-sun/logsift/internal/engine/embedder"
	"github.com/crimson-sun/logsift/internal/logging"
	"github.com/crimson-sun/logsift/internal/pipeline"
	"github.com/crimson-sun/logsift/internal/preprocess"
)

var (
	patternsFile string
	verbose      bool
)

func main() {
	root := &cobra.Command{
		Use:           "logsift",
		Short:         "Semi-supervised log anomaly detection",
		Long:          "logsift clusters embedded log messages into centroids and flags incoming messages that match no known pattern.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&patternsFile, "patterns-file", "patterns.txt", "substitution rules for normalizing messages")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(trainCmd(), ingestCmd(), retrainCmd(), testPatternsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "logsift: %v\n", err)
		os.Exit(1)
	}
}

func trainCmd() *cobra.Command {
	var opts pipeline.TrainOptions
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Cluster a log corpus into pattern centroids",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, cfg, cleanup, err := buildPipeline()
			if err != nil {
				return err
			}
			defer cleanup()

			opts.BatchSize = cfg.BatchSize
			sum, err := p.Train(opts)
			if err != nil {
				return err
			}
			if sum.Vectors == 0 {
				fmt.Println("Input file is empty; nothing to train on.")
				return nil
			}
			fmt.Printf("Trained %d centroids from %d messages (%d noise).\n",
				sum.Clusters, sum.Vectors, sum.Noise)
			fmt.Printf("Centroids written to %s.\n", opts.OutputFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.InputFile, "input-file", "", "log corpus to cluster")
	cmd.Flags().StringVar(&opts.OutputFile, "output-file", "centroids.json", "where to write the centroids")
	cmd.Flags().Float64Var(&opts.Epsilon, "epsilon", 0.5, "DBSCAN neighborhood radius")
	cmd.Flags().IntVar(&opts.MinPoints, "min-points", 3, "DBSCAN density threshold")
	cmd.MarkFlagRequired("input-file")
	return cmd
}

func ingestCmd() *cobra.Command {
	var opts pipeline.IngestOptions
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Classify new log records against the trained centroids",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, cleanup, err := buildPipeline()
			if err != nil {
				return err
			}
			defer cleanup()

			sum, err := p.Ingest(opts)
			if err != nil {
				return err
			}
			fmt.Printf("Processed %d messages: %d matched, %d unmatched.\n",
				sum.Total, sum.Matched, sum.Unmatched)
			if sum.Unmatched > 0 {
				fmt.Printf("Unmatched messages appended to %s.\n", opts.UnmatchedFile)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.InputFile, "input-file", "", "log records to classify")
	cmd.Flags().StringVar(&opts.CentroidsFile, "centroids-file", "centroids.json", "trained centroids")
	cmd.Flags().StringVar(&opts.UnmatchedFile, "unmatched-file", "unmatched.log", "overflow log for unmatched messages")
	cmd.Flags().Float64Var(&opts.Threshold, "threshold", 0.5, "distance below which a message matches a centroid")
	cmd.Flags().Float64Var(&opts.LearningRate, "learning-rate", 0.1, "EMA step size for centroid updates")
	cmd.MarkFlagRequired("input-file")
	return cmd
}

func retrainCmd() *cobra.Command {
	var opts pipeline.RetrainOptions
	cmd := &cobra.Command{
		Use:   "retrain",
		Short: "Append curated unmatched messages as new centroids",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, cfg, cleanup, err := buildPipeline()
			if err != nil {
				return err
			}
			defer cleanup()

			opts.BatchSize = cfg.BatchSize
			sum, err := p.Retrain(opts)
			if err != nil {
				return err
			}
			if sum.Added == 0 {
				fmt.Println("Backlog is empty; centroids unchanged.")
				return nil
			}
			fmt.Printf("Added %d centroids; %d total.\n", sum.Added, sum.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.InputFile, "input-file", "unmatched.log", "backlog of unmatched messages")
	cmd.Flags().StringVar(&opts.CentroidsFile, "centroids-file", "centroids.json", "trained centroids")
	return cmd
}

func testPatternsCmd() *cobra.Command {
	var inputFile string
	cmd := &cobra.Command{
		Use:   "test-patterns",
		Short: "Show how substitution rules rewrite each input line",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			pre, err := preprocess.New(patternsFile)
			if err != nil {
				return err
			}
			p := pipeline.New(pre, nil)
			return p.TestPatterns(inputFile, os.Stdout)
		},
	}
	cmd.Flags().StringVar(&inputFile, "input-file", "", "sample log lines to normalize")
	cmd.MarkFlagRequired("input-file")
	return cmd
}

// buildPipeline assembles the preprocessor and ONNX embedder from the
// resolved config. The returned cleanup releases the inference session.
func buildPipeline() (*pipeline.Pipeline, config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, config.Config{}, nil, err
	}

	pre, err := preprocess.New(patternsFile)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	slog.Info("loaded substitution rules", "file", patternsFile, "count", pre.Len())

	emb, err := embedder.New(cfg.ModelPath, cfg.VocabPath, cfg.ProjectionPath, cfg.ORTLibPath)
	if err != nil {
		return nil, config.Config{}, nil, err
	}

	cleanup := func() {
		if err := emb.Close(); err != nil {
			slog.Warn("embedder close", "error", err)
		}
	}
	return pipeline.New(pre, emb), cfg, cleanup, nil
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	level := logging.ParseLevel(cfg.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}
	logging.Init(level)
	return cfg, nil
}
