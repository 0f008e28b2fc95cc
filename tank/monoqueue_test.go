package tank

import (
	"math/rand"
	"testing"
)

// bruteExtremum computes the min or max over the last min(window, len(seq))
// values of seq.
func bruteExtremum(seq []float64, window uint64, max bool) float64 {
	start := 0
	if uint64(len(seq)) > window {
		start = len(seq) - int(window)
	}
	best := seq[start]
	for _, v := range seq[start+1:] {
		if (max && v > best) || (!max && v < best) {
			best = v
		}
	}
	return best
}

// checkQueues pushes seq value by value into a min and a max queue with the
// given windows and verifies every level against the brute force after every
// push.
func checkQueues(t *testing.T, seq []float64, windows []uint64) {
	t.Helper()
	minq := newMinQueue(windows)
	maxq := newMaxQueue(windows)
	maxWindow := windows[len(windows)-1]

	for i, v := range seq {
		idx := uint64(i)
		minq.push(idx, v)
		maxq.push(idx, v)
		cur := idx + 1

		n := cur
		if n > maxWindow {
			n = maxWindow
		}
		minq.evictOlderThan(cur - n)
		maxq.evictOlderThan(cur - n)

		for level, w := range windows {
			wantMin := bruteExtremum(seq[:i+1], w, false)
			wantMax := bruteExtremum(seq[:i+1], w, true)
			gotMin, ok := minq.best(level, cur)
			if !ok || gotMin != wantMin {
				t.Fatalf("after %d pushes, level %d (window %d): min = %v (ok=%v), want %v", i+1, level, w, gotMin, ok, wantMin)
			}
			gotMax, ok := maxq.best(level, cur)
			if !ok || gotMax != wantMax {
				t.Fatalf("after %d pushes, level %d (window %d): max = %v (ok=%v), want %v", i+1, level, w, gotMax, ok, wantMax)
			}
		}
	}
}

func TestMonoQueueSmallSequence(t *testing.T) {
	checkQueues(t, []float64{5, 3, 4, 2, 6, 1}, []uint64{1, 2, 5, 10})
	checkQueues(t, []float64{5, 3, 4, 2, 6, 1, 7}, []uint64{1, 2, 5, 10})
}

func TestMonoQueueTies(t *testing.T) {
	// duplicates straddling window boundaries: ties must keep the newer index
	checkQueues(t, []float64{3, 3, 1, 3, 3, 1, 1, 2, 2}, []uint64{1, 2, 4, 8})
}

func TestMonoQueueRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seq := make([]float64, 300)
	for i := range seq {
		// small value set to force plenty of ties
		seq[i] = float64(rng.Intn(4))
	}
	checkQueues(t, seq, []uint64{2, 4, 16, 64})
}

func TestMonoQueueRepeatedBestIsStable(t *testing.T) {
	q := newMaxQueue([]uint64{2, 4, 8})
	for i, v := range []float64{1, 5, 3, 2, 4} {
		q.push(uint64(i), v)
	}
	first, ok := q.best(0, 5)
	if !ok {
		t.Fatal("expected a value")
	}
	for i := 0; i < 5; i++ {
		got, ok := q.best(0, 5)
		if !ok || got != first {
			t.Fatalf("repeated read %d: got %v (ok=%v), want %v", i, got, ok, first)
		}
	}
}

func TestMonoQueuePruneBound(t *testing.T) {
	windows := []uint64{2, 4, 16}
	maxWindow := windows[len(windows)-1]
	q := newMinQueue(windows)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		q.push(uint64(i), rng.Float64())
		cur := uint64(i + 1)
		n := cur
		if n > maxWindow {
			n = maxWindow
		}
		oldest := cur - n
		q.evictOlderThan(oldest)
		if q.len() == 0 {
			t.Fatalf("queue drained at push %d", i)
		}
		if q.front() < oldest {
			t.Fatalf("front %d older than %d after push %d", q.front(), oldest, i)
		}
	}
}
