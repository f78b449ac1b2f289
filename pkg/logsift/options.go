package logsift

import (
	"path/filepath"

	"github.com/crimson-sun/logsift/internal/engine/embedder"
)

type options struct {
	modelDir     string
	modelPath    string
	vocabPath    string
	projPath     string
	ortLibPath   string
	patternsFile string
	threshold    float64
	learningRate float64
	emb          embedder.Embedder
}

// Option configures a Sifter.
type Option func(*options)

// WithModelDir sets the directory containing model files.
// Expects: model_quantized.onnx, vocab.txt, 2_Dense/model.safetensors.
func WithModelDir(dir string) Option {
	return func(o *options) {
		o.modelDir = dir
	}
}

// WithModelPaths sets explicit paths for each model file. Use this when
// model files aren't in the default directory layout. An empty projection
// path means the model has no dense layer.
func WithModelPaths(model, vocab, projection string) Option {
	return func(o *options) {
		o.modelPath = model
		o.vocabPath = vocab
		o.projPath = projection
	}
}

// WithORTLibPath sets an explicit path to the onnxruntime shared library.
// Without it the library is resolved next to the model file.
func WithORTLibPath(path string) Option {
	return func(o *options) {
		o.ortLibPath = path
	}
}

// WithPatternsFile sets the substitution rules applied to every message
// before embedding. Without it messages are embedded as-is.
func WithPatternsFile(path string) Option {
	return func(o *options) {
		o.patternsFile = path
	}
}

// WithThreshold sets the distance below which a message matches a
// centroid. Default: 0.5.
func WithThreshold(t float64) Option {
	return func(o *options) {
		o.threshold = t
	}
}

// WithLearningRate sets the EMA step size applied to a centroid on every
// match. Default: 0.1.
func WithLearningRate(r float64) Option {
	return func(o *options) {
		o.learningRate = r
	}
}

// WithEmbedder injects a pre-built embedder, bypassing model loading.
// The Sifter takes ownership and closes it.
func WithEmbedder(emb embedder.Embedder) Option {
	return func(o *options) {
		o.emb = emb
	}
}

func defaultOptions() options {
	return options{
		threshold:    0.5,
		learningRate: 0.1,
	}
}

// resolvePaths determines the model, vocab, and projection file paths
// from the configured options. Explicit paths take precedence over modelDir.
func resolvePaths(o options) (model, vocab, projection string) {
	if o.modelPath != "" {
		return o.modelPath, o.vocabPath, o.projPath
	}
	dir := o.modelDir
	if dir == "" {
		dir = "models"
	}
	return filepath.Join(dir, "model_quantized.onnx"),
		filepath.Join(dir, "vocab.txt"),
		filepath.Join(dir, "2_Dense", "model.safetensors")
}
