package commands

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerLifecycle_StopWithSuccess(t *testing.T) {
	var out syncBuffer
	s := newSpinner("Connecting")
	s.out = &out
	s.start()
	time.Sleep(200 * time.Millisecond)
	s.setMessage("Waiting for reply")
	s.stopWithSuccess("done")

	if !strings.Contains(out.String(), "done") {
		t.Errorf("output = %q, want success message", out.String())
	}
}

func TestSpinnerLifecycle_StopWithError(t *testing.T) {
	var out syncBuffer
	s := newSpinner("Connecting")
	s.out = &out
	s.start()
	time.Sleep(30 * time.Millisecond)
	s.stopWithError()
	// a second stop must not panic
	s.stopOnce()
}
