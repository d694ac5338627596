package logging

import (
	"strings"
	"sync"
)

// LogCaptureWriter is a thread-safe writer that keeps the last written line
// and counts the lines written since creation.
type LogCaptureWriter struct {
	mu       sync.RWMutex
	lastLine string
	count    int
}

// GlobalAnnouncementCapture holds the summary of the most recent turn announcement.
var GlobalAnnouncementCapture = &LogCaptureWriter{}

// Write implements io.Writer. Each call is one line; a trailing newline is dropped.
func (w *LogCaptureWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastLine = strings.TrimRight(string(p), "\n")
	w.count++
	return len(p), nil
}

// GetLastLine returns the most recent line.
func (w *LogCaptureWriter) GetLastLine() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastLine
}

// Count returns the number of lines written.
func (w *LogCaptureWriter) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.count
}
