package logsift

import (
	"fmt"
	"sync"

	"github.com/crimson-sun/logsift/internal/centroid"
	"github.com/crimson-sun/logsift/internal/engine/embedder"
	"github.com/crimson-sun/logsift/internal/engine/matcher"
	"github.com/crimson-sun/logsift/internal/preprocess"
)

// Decision is the outcome of matching one message against the centroids.
type Decision struct {
	Matched  bool
	Index    int     // nearest centroid; valid even when Matched is false
	Distance float64 // Euclidean distance to that centroid
}

// Sifter matches log messages against a trained centroid set.
// Safe for concurrent use.
type Sifter struct {
	mu   sync.Mutex
	pre  *preprocess.Preprocessor
	emb  embedder.Embedder
	set  *centroid.Set
	m    *matcher.Matcher
	rate float64
	path string
}

// New creates a Sifter from a trained centroids file. Model loading is an
// expensive operation (~100-300ms) — create once, reuse across requests.
func New(centroidsFile string, opts ...Option) (*Sifter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	set, _, err := centroid.Load(centroidsFile)
	if err != nil {
		return nil, fmt.Errorf("logsift: %w", err)
	}

	var pre *preprocess.Preprocessor
	if o.patternsFile != "" {
		pre, err = preprocess.New(o.patternsFile)
		if err != nil {
			return nil, fmt.Errorf("logsift: %w", err)
		}
	}

	emb := o.emb
	if emb == nil {
		modelPath, vocabPath, projPath := resolvePaths(o)
		emb, err = embedder.New(modelPath, vocabPath, projPath, o.ortLibPath)
		if err != nil {
			return nil, fmt.Errorf("logsift: %w", err)
		}
	}

	return &Sifter{
		pre:  pre,
		emb:  emb,
		set:  set,
		m:    matcher.New(o.threshold),
		rate: o.learningRate,
		path: centroidsFile,
	}, nil
}

// Match classifies a message without updating any centroid.
func (s *Sifter) Match(text string) (Decision, error) {
	return s.classify(text, false)
}

// Observe classifies a message and, on a match, nudges the matched
// centroid toward it by the learning rate. Call Save to persist.
func (s *Sifter) Observe(text string) (Decision, error) {
	return s.classify(text, true)
}

func (s *Sifter) classify(text string, update bool) (Decision, error) {
	canon := text
	if s.pre != nil {
		canon = s.pre.Normalize(text)
	}
	vecs, err := s.emb.EmbedBatch([]string{canon})
	if err != nil {
		return Decision{}, fmt.Errorf("logsift: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	dec, err := s.m.Match(vecs[0], s.set)
	if err != nil {
		return Decision{}, fmt.Errorf("logsift: %w", err)
	}
	if update && dec.Matched {
		if err := s.set.Nudge(dec.Index, vecs[0], s.rate); err != nil {
			return Decision{}, fmt.Errorf("logsift: %w", err)
		}
	}
	return Decision(dec), nil
}

// Save atomically writes the current centroid set back to the file the
// Sifter was created from.
func (s *Sifter) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.set.Save(s.path); err != nil {
		return fmt.Errorf("logsift: %w", err)
	}
	return nil
}

// Centroids returns the number of centroids currently held.
func (s *Sifter) Centroids() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Len()
}

// Close releases the underlying inference session.
func (s *Sifter) Close() error {
	return s.emb.Close()
}
