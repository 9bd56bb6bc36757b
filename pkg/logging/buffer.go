package logging

import (
	"strings"
	"sync"
)

// tailDepth is how many recent log lines the capture ring retains.
const tailDepth = 32

// Capture receives a copy of every line the package logger emits. Status
// surfaces read it back instead of tailing the log output.
var Capture = NewTailWriter(tailDepth)

// TailWriter is an io.Writer that retains the most recent lines written
// to it. Writes never fail.
type TailWriter struct {
	mu    sync.RWMutex
	ring  []string
	next  int
	count int
}

// NewTailWriter returns a writer retaining up to depth lines.
func NewTailWriter(depth int) *TailWriter {
	if depth < 1 {
		depth = 1
	}
	return &TailWriter{ring: make([]string, depth)}
}

func (w *TailWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	w.mu.Lock()
	w.ring[w.next] = line
	w.next = (w.next + 1) % len(w.ring)
	if w.count < len(w.ring) {
		w.count++
	}
	w.mu.Unlock()
	return len(p), nil
}

// Last returns the most recently written line, or "" before any write.
func (w *TailWriter) Last() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.count == 0 {
		return ""
	}
	return w.ring[(w.next-1+len(w.ring))%len(w.ring)]
}

// Lines returns the retained lines, oldest first.
func (w *TailWriter) Lines() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, w.count)
	for i := 0; i < w.count; i++ {
		out = append(out, w.ring[(w.next-w.count+i+len(w.ring))%len(w.ring)])
	}
	return out
}
