package pipeline

import (
	"bufio"
	"io"
)

// LineBatcher reads lines from a source and yields them in groups of at
// most size, in source order. It is a forward-only iterator: restarting
// means re-reading the source from the beginning.
type LineBatcher struct {
	scanner *bufio.Scanner
	size    int
	batch   []string
}

// NewLineBatcher creates a batcher over r. A size of 0 or less falls back
// to DefaultBatchSize.
func NewLineBatcher(r io.Reader, size int) *LineBatcher {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &LineBatcher{scanner: bufio.NewScanner(r), size: size}
}

// Next reads the next batch and reports whether one is available. The last
// batch may be shorter than size.
func (b *LineBatcher) Next() bool {
	b.batch = b.batch[:0]
	for len(b.batch) < b.size && b.scanner.Scan() {
		b.batch = append(b.batch, b.scanner.Text())
	}
	return len(b.batch) > 0
}

// Batch returns the lines read by the last call to Next. The slice is
// reused between calls.
func (b *LineBatcher) Batch() []string {
	return b.batch
}

// Err returns the first error encountered while reading, if any.
func (b *LineBatcher) Err() error {
	return b.scanner.Err()
}
