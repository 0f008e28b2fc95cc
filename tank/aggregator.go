package tank

import (
	"math"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultLevels and DefaultRadix give the production window sizes
	// 10^1 .. 10^8. Tests construct smaller aggregators so that eviction is
	// reachable without 10^8 inserts.
	DefaultLevels = 8
	DefaultRadix  = 10

	// values with a larger magnitude are skipped on ingest, which bounds the
	// squared term in the variance accumulator away from +Inf
	maxAbs = 1e153
)

var (
	valuesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stattank",
		Name:      "values_ingested_total",
		Help:      "The total number of values accepted into an aggregator.",
	})
	valuesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stattank",
		Name:      "values_skipped_total",
		Help:      "The total number of values dropped on ingest because they are NaN, infinite or too large.",
	})
)

// levelStats is the per-level accumulator block: how many of the last
// window values are retained, and their compensated sum and sum of squares.
type levelStats struct {
	window uint64
	count  uint64
	sum    KahanSum
	sumsq  KahanSum
}

// Stats is the result of a windowed query.
type Stats struct {
	Count uint64
	Min   float64
	Max   float64
	Last  float64
	Avg   float64
	Var   float64
	Sum   float64
}

// Aggregator holds the recent values of one symbol: a ring of the last
// 10^maxLevel accepted values, one levelStats block per window level, and a
// min and a max monotonic queue shared by all levels.
//
// All operations serialise on the embedded mutex; AddBatch and Stats both
// take it for their whole duration, so a read observes either all or none of
// a batch. The ring and the queues are owned exclusively by the aggregator,
// nothing else ever holds a reference to them.
type Aggregator struct {
	mtx      sync.Mutex
	buf      []float64 // grows by append until it reaches capacity, then wraps
	capacity int
	index    uint64 // next absolute index == number of values ever accepted
	levels   []levelStats
	minq     *monoQueue
	maxq     *monoQueue
}

// NewAggregator returns an aggregator with the production windows
// 10^1 .. 10^8.
func NewAggregator() *Aggregator {
	return NewAggregatorSized(DefaultLevels, DefaultRadix)
}

// NewAggregatorSized returns an aggregator with windows radix^1 .. radix^levels.
// The top window is also the ring capacity.
func NewAggregatorSized(levels, radix int) *Aggregator {
	windows := make([]uint64, levels)
	w := uint64(1)
	for i := 0; i < levels; i++ {
		w *= uint64(radix)
		windows[i] = w
	}

	a := Aggregator{
		capacity: int(windows[levels-1]),
		levels:   make([]levelStats, levels),
		minq:     newMinQueue(windows),
		maxq:     newMaxQueue(windows),
	}
	for i, w := range windows {
		a.levels[i].window = w
	}
	return &a
}

// Levels returns how many window levels the aggregator answers.
func (a *Aggregator) Levels() int {
	return len(a.levels)
}

// at returns the value at absolute index i. i must be within the retained
// range [index-len(buf), index).
func (a *Aggregator) at(i uint64) float64 {
	return a.buf[int(i%uint64(a.capacity))]
}

// AddBatch feeds values into the aggregator, in order, under the lock.
// Values that are NaN, infinite or have magnitude > 1e153 are skipped: they
// get no absolute index and leave every structure untouched. AddBatch never
// fails on value content.
func (a *Aggregator) AddBatch(values []float64) {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	accepted := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxAbs {
			valuesSkipped.Inc()
			continue
		}
		a.insert(v)
		accepted++
	}
	valuesIngested.Add(float64(accepted))

	// entries older than the top window can never be an answer again
	oldest := a.index - uint64(len(a.buf))
	a.minq.evictOlderThan(oldest)
	a.maxq.evictOlderThan(oldest)
}

func (a *Aggregator) insert(v float64) {
	i := a.index
	if i == math.MaxUint64 {
		log.Fatal("tank: absolute index overflow")
	}

	// evict from full levels before the ring slot is overwritten: for the top
	// level the evicted value lives in the very slot v is about to take
	for l := range a.levels {
		lv := &a.levels[l]
		if lv.count == lv.window {
			old := a.at(i - lv.window)
			lv.sum.Sub(old)
			lv.sumsq.Sub(old * old)
			lv.count--
		}
	}

	if len(a.buf) < a.capacity {
		a.buf = append(a.buf, v)
	} else {
		a.buf[int(i%uint64(a.capacity))] = v
	}
	a.index = i + 1

	for l := range a.levels {
		lv := &a.levels[l]
		lv.sum.Add(v)
		lv.sumsq.Add(v * v)
		lv.count++
	}

	a.minq.push(i, v)
	a.maxq.push(i, v)
}

// Stats answers the windowed query for level k in [1, Levels()]. ok is false
// when k is out of range or no values are retained yet.
//
// Two aggregators fed the same batches return bit-identical results: the
// accumulators and queues evolve deterministically, and reads do not disturb
// them beyond the queues' position caches, which never change an answer.
func (a *Aggregator) Stats(k int) (Stats, bool) {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	if k < 1 || k > len(a.levels) {
		return Stats{}, false
	}
	lv := &a.levels[k-1]
	if lv.count == 0 {
		return Stats{}, false
	}

	n := float64(lv.count)
	sum := lv.sum.Total()
	avg := sum / n
	variance := lv.sumsq.Total()/n - avg*avg
	if variance < 0 {
		// tiny negative round-off from the compensated sums
		variance = 0
	}

	min, okMin := a.minq.best(k-1, a.index)
	max, okMax := a.maxq.best(k-1, a.index)
	if !okMin || !okMax {
		// the queues always retain at least the newest accepted value
		log.Fatal("tank: extremum queue empty while values are retained")
	}

	return Stats{
		Count: lv.count,
		Min:   min,
		Max:   max,
		Last:  a.at(a.index - 1),
		Avg:   avg,
		Var:   variance,
		Sum:   sum,
	}, true
}
