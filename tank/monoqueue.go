package tank

import "sort"

type qentry struct {
	idx uint64 // absolute insertion index
	val float64
}

// levelView caches, for one window level, the deque position of the entry
// that answers best() for that level. -1 means the cache is invalid and the
// next best() call will binary-search the deque to restore it.
type levelView struct {
	window uint64
	best   int
}

// monoQueue is a monotonic deque of (index, value) entries, shared by all
// window levels of one aggregator. Values are monotonic from front to back
// in the direction given by better, so the front answers the extremum for
// the largest window in O(1). Smaller windows answer from their cached
// position, or re-binary-search the deque after invalidation, making best()
// O(1) amortised and O(log n) worst case.
//
// Positions held in the views are logical: 0 is the current front. Front
// evictions shift them, back evictions past them invalidate them.
//
// A new value evicts older entries it is equal to, so ties keep the newer
// index and equal values are never stored twice.
type monoQueue struct {
	entries []qentry
	head    int // entries[:head] are evicted, awaiting compaction
	views   []levelView
	better  func(new, existing float64) bool
}

func newMinQueue(windows []uint64) *monoQueue {
	return newMonoQueue(windows, func(new, existing float64) bool { return new <= existing })
}

func newMaxQueue(windows []uint64) *monoQueue {
	return newMonoQueue(windows, func(new, existing float64) bool { return new >= existing })
}

func newMonoQueue(windows []uint64, better func(new, existing float64) bool) *monoQueue {
	q := monoQueue{
		views:  make([]levelView, len(windows)),
		better: better,
	}
	for i, w := range windows {
		q.views[i] = levelView{window: w, best: -1}
	}
	return &q
}

func (q *monoQueue) len() int {
	return len(q.entries) - q.head
}

// push appends (idx, val), first removing entries from the back that val
// dominates. idx must be larger than any index pushed before.
func (q *monoQueue) push(idx uint64, val float64) {
	popped := false
	for len(q.entries) > q.head && q.better(val, q.entries[len(q.entries)-1].val) {
		q.entries = q.entries[:len(q.entries)-1]
		popped = true
	}
	if popped {
		// the top level always reads the front, no view to fix there
		n := q.len()
		for i := range q.views[:len(q.views)-1] {
			if q.views[i].best >= n {
				q.views[i].best = -1
			}
		}
	}
	q.entries = append(q.entries, qentry{idx, val})
}

// evictOlderThan drops entries with idx < oldestKept from the front.
// Cached positions shift along; those that fall off are invalidated.
func (q *monoQueue) evictOlderThan(oldestKept uint64) {
	evicted := 0
	for q.head < len(q.entries) && q.entries[q.head].idx < oldestKept {
		q.head++
		evicted++
	}
	if evicted == 0 {
		return
	}
	for i := range q.views[:len(q.views)-1] {
		if v := &q.views[i]; v.best >= 0 {
			v.best -= evicted
			if v.best < 0 {
				v.best = -1
			}
		}
	}
	// reclaim the dead prefix once it outgrows the live part
	if q.head > len(q.entries)-q.head {
		n := copy(q.entries, q.entries[q.head:])
		q.entries = q.entries[:n]
		q.head = 0
	}
}

// front returns the oldest retained entry index. Only meaningful when the
// queue is non-empty; used to check the pruning bound.
func (q *monoQueue) front() uint64 {
	return q.entries[q.head].idx
}

// best returns the extremum over the last views[level].window entries, where
// curIdx is the next absolute index to be assigned (so the window covers
// [curIdx-window, curIdx)). The last level is the whole queue: its answer is
// the front. Other levels consult their cached position first; a position is
// still valid as long as its entry is inside the window, because the first
// in-window entry can only move forward as the window slides.
func (q *monoQueue) best(level int, curIdx uint64) (float64, bool) {
	n := q.len()
	if n == 0 {
		return 0, false
	}
	if level == len(q.views)-1 {
		return q.entries[q.head].val, true
	}

	v := &q.views[level]
	var minIdx uint64
	if curIdx > v.window {
		minIdx = curIdx - v.window
	}

	if v.best >= 0 && v.best < n && q.entries[q.head+v.best].idx >= minIdx {
		return q.entries[q.head+v.best].val, true
	}

	pos := sort.Search(n, func(i int) bool { return q.entries[q.head+i].idx >= minIdx })
	if pos == n {
		// cannot happen on a non-empty queue: the newest entry has idx curIdx-1 >= minIdx
		return 0, false
	}
	v.best = pos
	return q.entries[q.head+pos].val, true
}
