package pipeline

import (
	"context"
	"sync"

	"github.com/crimson-sun/sift/internal/model"
	"github.com/crimson-sun/sift/internal/output"
)

// orderBuffer holds records finished out of order and writes them to out
// in sequence order.
type orderBuffer struct {
	out output.Output

	mu      sync.Mutex
	next    int
	pending map[int]model.PreprocessedData
	stats   Stats
	err     error
}

func newOrderBuffer(out output.Output) *orderBuffer {
	return &orderBuffer{
		out:     out,
		pending: map[int]model.PreprocessedData{},
		stats:   Stats{ByType: map[model.DataType]int{}},
	}
}

// put stores the record for seq and flushes every record now in order.
// Writes happen under the lock, so out sees a single writer. After a failed
// write nothing more is written.
func (b *orderBuffer) put(ctx context.Context, seq int, rec model.PreprocessedData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err != nil {
		return b.err
	}
	b.pending[seq] = rec
	for {
		r, ok := b.pending[b.next]
		if !ok {
			return nil
		}
		delete(b.pending, b.next)
		b.next++
		if err := b.out.Write(ctx, r); err != nil {
			b.err = err
			return err
		}
		b.stats.add(r)
	}
}

// buffered reports how many records wait on an earlier sequence number.
func (b *orderBuffer) buffered() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *orderBuffer) snapshot() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.stats
	s.ByType = make(map[model.DataType]int, len(b.stats.ByType))
	for k, v := range b.stats.ByType {
		s.ByType[k] = v
	}
	return s
}
