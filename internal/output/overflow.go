// Package output persists canonical messages that matched no centroid.
package output

import (
	"bufio"
	"fmt"
	"os"
)

const defaultBufSize = 64 * 1024 // 64KB

// OverflowLog appends unmatched canonical messages, one per line, to a
// file. The file is opened in append mode so earlier runs' output is never
// truncated; operators review it and feed it back through retrain.
type OverflowLog struct {
	f    *os.File
	w    *bufio.Writer
	path string
}

// OpenOverflow opens (or creates) the overflow log at path.
func OpenOverflow(path string) (*OverflowLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("overflow: open %s: %w", path, err)
	}
	return &OverflowLog{
		f:    f,
		w:    bufio.NewWriterSize(f, defaultBufSize),
		path: path,
	}, nil
}

// Append writes one canonical message as a single line.
func (o *OverflowLog) Append(message string) error {
	if _, err := o.w.WriteString(message + "\n"); err != nil {
		return fmt.Errorf("overflow: write %s: %w", o.path, err)
	}
	return nil
}

// Close flushes the buffer and closes the file. Safe to call twice.
func (o *OverflowLog) Close() error {
	if o.f == nil {
		return nil
	}
	f := o.f
	o.f = nil
	if err := o.w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("overflow: flush %s: %w", o.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("overflow: close %s: %w", o.path, err)
	}
	return nil
}
