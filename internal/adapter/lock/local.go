package lock

import (
	"context"
	"sync"

	"github.com/srgjo27/seathold/internal/core/ports"
)

// Table is a process-wide keyed lock table. A slot is created on first use of a
// key and is never removed, so a key always maps to the same section.
type Table struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewTable() *Table {
	return &Table{slots: make(map[string]chan struct{})}
}

func (t *Table) slot(key string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		t.slots[key] = ch
	}
	return ch
}

func (t *Table) Lock(ctx context.Context, key string) (ports.UnlockFunc, error) {
	ch := t.slot(key)

	// An expired ctx must not win a free slot.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func(context.Context) error {
			once.Do(func() { <-ch })
			return nil
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports how many keys have a slot.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.slots)
}
