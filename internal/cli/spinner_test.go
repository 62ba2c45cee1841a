package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer shared with the spinner goroutine.
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

func TestSpinnerRendersMessage(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "Working...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.SetMessage("Allocating points...")
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !bytes.Contains([]byte(got), []byte("Working...")) || !bytes.Contains([]byte(got), []byte("Allocating points...")) {
		t.Errorf("output = %q", got)
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	s := newSpinnerTo(ctx, &out, "Testing...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancellation of its parent")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "Testing...")
	s.Start()
	s.Stop()
	s.Stop()

	// Never started.
	newSpinnerTo(context.Background(), &out, "idle").Stop()
}

func TestSpinnerHooks(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "Generating...")
	h := spinnerHooks{spinner: s}

	h.OnStageStart(context.Background(), "validate")
	if s.message != stageLabels["validate"] {
		t.Errorf("message = %q", s.message)
	}
	h.OnStageStart(context.Background(), "unknown")
	if s.message != stageLabels["validate"] {
		t.Errorf("unknown stage changed message to %q", s.message)
	}
}
