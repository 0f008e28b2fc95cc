// Package tank implements the in-memory sliding-window statistics store:
// per-symbol aggregators holding a ring of recent values, compensated
// per-level accumulators and monotonic min/max queues, behind a sharded
// symbol directory.
package tank

import (
	"sync"

	"github.com/cespare/xxhash"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const shardCount = 32

var symbolsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "stattank",
	Name:      "symbols_active",
	Help:      "The number of symbols with an aggregator in memory.",
})

// Tank is the process-wide directory from symbol to aggregator. Lookups for
// different symbols only contend on their shard, and creating a symbol that
// two requests race on yields exactly one surviving aggregator. Aggregators
// live until process shutdown.
type Tank struct {
	shards [shardCount]shard
}

type shard struct {
	sync.RWMutex
	symbols map[string]*Aggregator
}

func New() *Tank {
	t := Tank{}
	for i := range t.shards {
		t.shards[i].symbols = make(map[string]*Aggregator)
	}
	return &t
}

func (t *Tank) shard(symbol string) *shard {
	return &t.shards[xxhash.Sum64String(symbol)%shardCount]
}

// Get returns the aggregator for symbol, if one exists. It never creates.
func (t *Tank) Get(symbol string) (*Aggregator, bool) {
	sh := t.shard(symbol)
	sh.RLock()
	agg, ok := sh.symbols[symbol]
	sh.RUnlock()
	return agg, ok
}

// GetOrCreate returns the aggregator for symbol, creating it on first
// reference.
func (t *Tank) GetOrCreate(symbol string) *Aggregator {
	sh := t.shard(symbol)
	sh.RLock()
	agg, ok := sh.symbols[symbol]
	sh.RUnlock()
	if ok {
		return agg
	}

	sh.Lock()
	agg, ok = sh.symbols[symbol]
	if !ok {
		agg = NewAggregator()
		sh.symbols[symbol] = agg
		symbolsActive.Inc()
	}
	sh.Unlock()
	return agg
}

// Len returns how many symbols currently have an aggregator.
func (t *Tank) Len() int {
	total := 0
	for i := range t.shards {
		sh := &t.shards[i]
		sh.RLock()
		total += len(sh.symbols)
		sh.RUnlock()
	}
	return total
}
