package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crimson-sun/sift/internal/model"
)

type slowOutput struct {
	mu     sync.Mutex
	names  []string
	closed bool
	err    error
	delay  time.Duration
}

func (s *slowOutput) Write(_ context.Context, rec model.PreprocessedData) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	s.names = append(s.names, rec.Filename)
	s.mu.Unlock()
	return s.err
}

func (s *slowOutput) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *slowOutput) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.names)
}

func rec(name string) model.PreprocessedData {
	return model.PreprocessedData{Filename: name}
}

func TestRecordsFlowThroughInOrder(t *testing.T) {
	inner := &slowOutput{}
	a := New(inner, WithBufferSize(4))

	for i := 0; i < 10; i++ {
		if err := a.Write(context.Background(), rec(fmt.Sprintf("f%d", i))); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	if inner.count() != 10 {
		t.Fatalf("got %d records, want 10", inner.count())
	}
	for i, name := range inner.names {
		if name != fmt.Sprintf("f%d", i) {
			t.Fatalf("record %d out of order: %s", i, name)
		}
	}
	if !inner.closed {
		t.Fatal("inner output not closed")
	}
}

func TestBackpressureHonorsContext(t *testing.T) {
	inner := &slowOutput{delay: 200 * time.Millisecond}
	a := New(inner, WithBufferSize(1))
	defer a.Close()

	a.Write(context.Background(), rec("first"))  // taken by drain
	a.Write(context.Background(), rec("second")) // fills buffer

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := a.Write(ctx, rec("third")); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded while buffer is full, got %v", err)
	}
}

func TestDropOnFull(t *testing.T) {
	inner := &slowOutput{delay: 50 * time.Millisecond}
	a := New(inner, WithBufferSize(1), WithDropOnFull())

	for i := 0; i < 20; i++ {
		a.Write(context.Background(), rec("burst"))
	}
	a.Close()

	if n := inner.count(); n == 20 || n == 0 {
		t.Errorf("expected some but not all records delivered, got %d", n)
	}
}

func TestErrorCallbackInvoked(t *testing.T) {
	inner := &slowOutput{err: errors.New("write failed")}
	var errorCount atomic.Int64
	a := New(inner, WithBufferSize(16), WithOnError(func(error) { errorCount.Add(1) }))

	for i := 0; i < 5; i++ {
		a.Write(context.Background(), rec("failing"))
	}
	a.Close()

	if errorCount.Load() != 5 {
		t.Errorf("error callback called %d times, want 5", errorCount.Load())
	}
}

func TestCloseIdempotentAndDrainExits(t *testing.T) {
	a := New(&slowOutput{}, WithBufferSize(16))
	a.Write(context.Background(), rec("x"))

	if err := a.Close(); err != nil {
		t.Fatalf("first Close error: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
	select {
	case <-a.done:
	case <-time.After(time.Second):
		t.Fatal("drain goroutine did not exit after Close")
	}
}
