package queue

import (
	"testing"

	"marketsim/pkg/types"
)

func TestTimedQueueEmptyPeek(t *testing.T) {
	t.Parallel()

	q := NewTimedQueue()
	if !q.Empty() {
		t.Fatalf("new queue should be empty")
	}
	if got := q.Peek(); got != InfTS {
		t.Fatalf("Peek() on empty queue = %d, want InfTS", got)
	}
}

func TestTimedQueuePushPopOrder(t *testing.T) {
	t.Parallel()

	q := NewTimedQueue()
	q.Push(200, types.MdUpdate{ExchangeTS: 200})
	q.Push(100, types.MdUpdate{ExchangeTS: 100})
	q.Push(150, types.MdUpdate{ExchangeTS: 150})

	if got := q.Peek(); got != 100 {
		t.Fatalf("Peek() = %d, want 100", got)
	}

	ts, batch := q.Pop()
	if ts != 100 || len(batch) != 1 {
		t.Fatalf("Pop() = (%d, %v), want (100, 1 item)", ts, batch)
	}

	if got := q.Peek(); got != 150 {
		t.Fatalf("Peek() after pop = %d, want 150", got)
	}
}

func TestTimedQueuePreservesInsertionOrderWithinBucket(t *testing.T) {
	t.Parallel()

	q := NewTimedQueue()
	q.Push(100, types.MdUpdate{ExchangeTS: 100})
	q.Push(100, types.OwnTrade{TradeID: 1})
	q.Push(100, types.MdUpdate{ExchangeTS: 100, Trade: &types.AnonTrade{}})

	_, batch := q.Pop()
	if len(batch) != 3 {
		t.Fatalf("batch len = %d, want 3", len(batch))
	}
	if _, ok := batch[0].(types.MdUpdate); !ok {
		t.Errorf("batch[0] is not MdUpdate")
	}
	if _, ok := batch[1].(types.OwnTrade); !ok {
		t.Errorf("batch[1] is not OwnTrade")
	}
	if _, ok := batch[2].(types.MdUpdate); !ok {
		t.Errorf("batch[2] is not MdUpdate")
	}
}

func TestTimedQueueEmptyAfterDrain(t *testing.T) {
	t.Parallel()

	q := NewTimedQueue()
	q.Push(1, types.MdUpdate{})
	q.Pop()

	if !q.Empty() {
		t.Fatalf("queue should be empty after draining its only bucket")
	}
	if got := q.Peek(); got != InfTS {
		t.Fatalf("Peek() on drained queue = %d, want InfTS", got)
	}
}
