// Package embedder turns canonical log messages into fixed-dimension,
// unit-normalized embedding vectors via local ONNX inference.
package embedder

import "fmt"

// Embedder produces vector embeddings from text. It is an injected
// dependency of every pipeline operation; tests substitute deterministic
// stubs.
type Embedder interface {
	// EmbedBatch embeds texts in order. Every returned vector has the same
	// dimension and unit L2 norm.
	EmbedBatch(texts []string) ([][]float32, error)
	// Dim returns the embedding dimension for this model instance.
	Dim() int
	Close() error
}

// ONNXEmbedder wraps the ONNX runtime, WordPiece tokenizer, and an optional
// dense projection layer. The pipeline is:
// tokenize → ONNX inference → mean pool → (projection) → L2 normalize.
type ONNXEmbedder struct {
	session *onnxSession
	tok     *tokenizer
	proj    *projection // nil when the model has no dense layer
}

// New creates an ONNXEmbedder from a model file, a vocab.txt, and an
// optional safetensors projection file (empty path = no projection).
// ortLibPath locates the ONNX Runtime shared library; when empty it is
// resolved next to the model file.
func New(modelPath, vocabPath, projectionPath, ortLibPath string) (*ONNXEmbedder, error) {
	sess, err := newONNXSession(modelPath, ortLibPath)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	tok, err := newTokenizer(vocabPath)
	if err != nil {
		sess.close()
		return nil, fmt.Errorf("embedder: %w", err)
	}

	var proj *projection
	if projectionPath != "" {
		proj, err = loadProjection(projectionPath)
		if err != nil {
			sess.close()
			return nil, fmt.Errorf("embedder: %w", err)
		}
		if int(sess.embedDim) != proj.inDim {
			sess.close()
			return nil, fmt.Errorf("embedder: ONNX output dim %d != projection input dim %d",
				sess.embedDim, proj.inDim)
		}
	}

	return &ONNXEmbedder{session: sess, tok: tok, proj: proj}, nil
}

// Dim returns the final embedding dimension (after projection, if any).
func (e *ONNXEmbedder) Dim() int {
	if e.proj != nil {
		return e.proj.outDim
	}
	return int(e.session.embedDim)
}

// EmbedBatch embeds texts in a single inference call.
func (e *ONNXEmbedder) EmbedBatch(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batch := e.tok.tokenizeBatch(texts)

	hidden, err := e.session.infer(
		batch.inputIDs, batch.attentionMask, batch.tokenTypeIDs,
		batch.batchSize, batch.seqLen,
	)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	pooled := meanPool(hidden, batch.attentionMask, batch.batchSize, batch.seqLen, e.session.embedDim)

	dim := e.session.embedDim
	results := make([][]float32, batch.batchSize)
	for i := int64(0); i < batch.batchSize; i++ {
		vec := pooled[i*dim : (i+1)*dim]
		if e.proj != nil {
			vec = e.proj.apply(vec)
		} else {
			cp := make([]float32, len(vec))
			copy(cp, vec)
			vec = cp
		}
		l2Normalize(vec)
		results[i] = vec
	}
	return results, nil
}

// Close releases ONNX Runtime resources.
func (e *ONNXEmbedder) Close() error {
	if e.session != nil {
		return e.session.close()
	}
	return nil
}
