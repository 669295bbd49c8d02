// Package queue implements the timestamped priority queue used as the
// strategy-update queue, plus the plain FIFO index-cursor deques used
// for the market-data stream and the action queue.
package queue

import (
	"math"
	"sort"

	"marketsim/pkg/types"
)

// InfTS is the sentinel "no event pending" timestamp: +∞, represented
// as the maximum usable int64 range via math.MaxInt64. Using the
// largest finite value (rather than a floating sentinel) keeps every
// queue's peek type a plain int64 and the "every queue empty" check a
// simple integer comparison.
const InfTS int64 = math.MaxInt64

// TimedQueue is a map from receive timestamp to an ordered batch of
// pending updates, with the minimum key cached so Peek is O(log n) and
// Pop is O(1) amortized. Insertion order within a bucket is preserved.
type TimedQueue struct {
	buckets map[int64][]types.BatchItem
	keys    []int64 // sorted ascending
}

// NewTimedQueue creates an empty strategy-update queue.
func NewTimedQueue() *TimedQueue {
	return &TimedQueue{buckets: make(map[int64][]types.BatchItem)}
}

// Push appends item to the batch pending at ts, creating the bucket if
// this is the first item at that timestamp.
func (q *TimedQueue) Push(ts int64, item types.BatchItem) {
	if _, ok := q.buckets[ts]; !ok {
		i := sort.Search(len(q.keys), func(i int) bool { return q.keys[i] >= ts })
		q.keys = append(q.keys, 0)
		copy(q.keys[i+1:], q.keys[i:])
		q.keys[i] = ts
	}
	q.buckets[ts] = append(q.buckets[ts], item)
}

// Peek returns the minimum pending timestamp, or InfTS if the queue is
// empty.
func (q *TimedQueue) Peek() int64 {
	if len(q.keys) == 0 {
		return InfTS
	}
	return q.keys[0]
}

// Empty reports whether the queue holds no pending batches.
func (q *TimedQueue) Empty() bool {
	return len(q.keys) == 0
}

// Pop removes and returns the batch at the current minimum key. Panics
// if the queue is empty — callers must check Empty/Peek first, exactly
// as the simulator's tick() does.
func (q *TimedQueue) Pop() (int64, []types.BatchItem) {
	ts := q.keys[0]
	q.keys = q.keys[1:]
	batch := q.buckets[ts]
	delete(q.buckets, ts)
	return ts, batch
}
