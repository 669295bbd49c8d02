package queue

import (
	"testing"

	"marketsim/pkg/types"
)

func TestMdQueuePeekPop(t *testing.T) {
	t.Parallel()

	stream := []types.MdUpdate{
		{ExchangeTS: 10},
		{ExchangeTS: 20},
	}
	q := NewMdQueue(stream)

	if got := q.Peek(); got != 10 {
		t.Fatalf("Peek() = %d, want 10", got)
	}
	if u := q.Pop(); u.ExchangeTS != 10 {
		t.Fatalf("Pop().ExchangeTS = %d, want 10", u.ExchangeTS)
	}
	if got := q.Peek(); got != 20 {
		t.Fatalf("Peek() = %d, want 20", got)
	}
	q.Pop()
	if got := q.Peek(); got != InfTS {
		t.Fatalf("Peek() after drain = %d, want InfTS", got)
	}
}

func TestActionQueueOrderAndCancel(t *testing.T) {
	t.Parallel()

	q := NewActionQueue()
	if got := q.Peek(); got != InfTS {
		t.Fatalf("Peek() on empty queue = %d, want InfTS", got)
	}

	order := types.Order{ID: 1, ExchangeTS: 50}
	cancel := types.CancelOrder{OrderID: 1, ExchangeTS: 60}
	q.Push(NewOrderAction(order))
	q.Push(NewCancelAction(cancel))

	if got := q.Peek(); got != 50 {
		t.Fatalf("Peek() = %d, want 50", got)
	}

	a := q.Pop()
	o, ok := AsOrder(a)
	if !ok || o.ID != 1 {
		t.Fatalf("AsOrder(first action) = (%v, %v), want order id 1", o, ok)
	}
	if _, ok := AsCancel(a); ok {
		t.Fatalf("AsCancel(order action) = true, want false")
	}

	a = q.Pop()
	c, ok := AsCancel(a)
	if !ok || c.OrderID != 1 {
		t.Fatalf("AsCancel(second action) = (%v, %v), want cancel for order 1", c, ok)
	}

	if got := q.Peek(); got != InfTS {
		t.Fatalf("Peek() after drain = %d, want InfTS", got)
	}
}

func TestActionQueuePushDuringIteration(t *testing.T) {
	t.Parallel()

	q := NewActionQueue()
	q.Push(NewOrderAction(types.Order{ID: 1, ExchangeTS: 1}))

	a := q.Pop()
	o, _ := AsOrder(a)
	// Simulate a strategy reacting to the first action by placing
	// another one mid-drain.
	q.Push(NewOrderAction(types.Order{ID: o.ID + 1, ExchangeTS: 2}))

	if got := q.Peek(); got != 2 {
		t.Fatalf("Peek() after push-during-iteration = %d, want 2", got)
	}
}
