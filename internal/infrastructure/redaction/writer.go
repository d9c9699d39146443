package redaction

import (
	"io"
	"sync"
)

// Writer wraps an io.Writer and redacts all data before writing.
// Thread-safe: can be used concurrently by multiple goroutines.
type Writer struct {
	underlying io.Writer
	redactor   *Redactor
	mu         sync.Mutex
}

// NewWriter creates a redacting writer, e.g. for log output.
func NewWriter(w io.Writer, r *Redactor) *Writer {
	return &Writer{
		underlying: w,
		redactor:   r,
	}
}

// Write implements io.Writer, redacting p before passing it on.
func (w *Writer) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.redactor == nil {
		return w.underlying.Write(p)
	}

	n, err = w.underlying.Write([]byte(w.redactor.ScrubString(string(p))))
	// io.Writer callers expect len(p) even when the redacted length differs
	if err == nil {
		n = len(p)
	}
	return n, err
}
