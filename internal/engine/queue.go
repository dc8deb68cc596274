package engine

import "container/heap"

// timerEntry is a callback due at a simulated instant.
// seq breaks ties so entries due at the same instant fire in FIFO order.
type timerEntry struct {
	at   Time
	seq  uint64
	fire func()
}

// timerQueue is a min-heap of timed callbacks ordered by (at, seq).
//
// It is not safe for concurrent use. Only the goroutine currently holding
// the scheduler baton touches it.
type timerQueue struct {
	entries []timerEntry
	seq     uint64
}

func (q *timerQueue) Len() int { return len(q.entries) }

func (q *timerQueue) Less(i, j int) bool {
	a, b := q.entries[i], q.entries[j]
	if a.at != b.at {
		return a.at < b.at
	}
	return a.seq < b.seq
}

func (q *timerQueue) Swap(i, j int) { q.entries[i], q.entries[j] = q.entries[j], q.entries[i] }

func (q *timerQueue) Push(x any) { q.entries = append(q.entries, x.(timerEntry)) }

func (q *timerQueue) Pop() any {
	n := len(q.entries)
	e := q.entries[n-1]
	// Release the closure so finished waits can be collected.
	q.entries[n-1] = timerEntry{}
	q.entries = q.entries[:n-1]
	return e
}

// schedule adds fire to run at the given instant.
func (q *timerQueue) schedule(at Time, fire func()) {
	q.seq++
	heap.Push(q, timerEntry{at: at, seq: q.seq, fire: fire})
}

// peek returns the instant of the earliest entry.
func (q *timerQueue) peek() (Time, bool) {
	if len(q.entries) == 0 {
		return 0, false
	}
	return q.entries[0].at, true
}

// popDue removes and returns the earliest entry if it is due at or before now.
func (q *timerQueue) popDue(now Time) (timerEntry, bool) {
	if len(q.entries) == 0 || q.entries[0].at > now {
		return timerEntry{}, false
	}
	return heap.Pop(q).(timerEntry), true
}
