package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/jpillora/backoff"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stattank/stattank/api/models"
	"github.com/stattank/stattank/logger"
)

var (
	addr          string
	symbols       int
	batchSize     int
	interval      time.Duration
	queryInterval time.Duration
	queryK        int
	seed          int64
	logLevel      string

	client = &http.Client{Timeout: 10 * time.Second}
)

func init() {
	loadgenCmd.Flags().StringVar(&addr, "addr", "http://localhost:3000", "stattank address")
	loadgenCmd.Flags().IntVar(&symbols, "symbols", 10, "number of distinct symbols to publish")
	loadgenCmd.Flags().IntVar(&batchSize, "batch-size", 100, "values per add_batch request")
	loadgenCmd.Flags().DurationVar(&interval, "interval", 100*time.Millisecond, "time between batches")
	loadgenCmd.Flags().DurationVar(&queryInterval, "query-interval", time.Second, "time between stats queries. 0 to disable querying")
	loadgenCmd.Flags().IntVar(&queryK, "query-k", 2, "window level to query")
	loadgenCmd.Flags().Int64Var(&seed, "seed", 1, "random seed for the value walk")
	loadgenCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level. panic|fatal|error|warning|info|debug")

	formatter := &logger.TextFormatter{}
	formatter.TimestampFormat = "2006-01-02 15:04:05.000"
	formatter.ModuleName = "loadgen"
	log.SetFormatter(formatter)
}

func main() {
	if err := loadgenCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

var loadgenCmd = &cobra.Command{
	Use:   "st-loadgen",
	Short: "publish random-walk batches to a stattank server and query it back",
	Run: func(cmd *cobra.Command, args []string) {
		lvl, err := log.ParseLevel(logLevel)
		if err != nil {
			log.Fatalf("failed to parse log-level, %s", err.Error())
		}
		log.SetLevel(lvl)

		rng := rand.New(rand.NewSource(seed))
		walk := make([]float64, symbols)
		for i := range walk {
			walk[i] = 100 * rng.Float64()
		}

		if queryInterval > 0 {
			go queryLoop()
		}

		tick := time.NewTicker(interval)
		for range tick.C {
			for i := 0; i < symbols; i++ {
				values := make([]float64, batchSize)
				for j := range values {
					walk[i] += rng.NormFloat64()
					values[j] = walk[i]
				}
				postBatch(symbolName(i), values)
			}
		}
	},
}

func symbolName(i int) string {
	return fmt.Sprintf("SYM%d", i)
}

// postBatch sends one batch, retrying with backoff until the server takes it.
// a 4xx is our own fault and not worth retrying.
func postBatch(symbol string, values []float64) {
	body, err := json.Marshal(models.AddBatch{Symbol: symbol, Values: values})
	if err != nil {
		log.Fatalf("marshal batch: %s", err.Error())
	}

	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    10 * time.Second,
		Factor: 2,
		Jitter: true,
	}
	for {
		resp, err := client.Post(addr+"/add_batch/", "application/json", bytes.NewReader(body))
		if err != nil {
			d := b.Duration()
			log.Warnf("add_batch: %s. retrying in %s", err.Error(), d)
			time.Sleep(d)
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode >= 500 {
			d := b.Duration()
			log.Warnf("add_batch: status %d. retrying in %s", resp.StatusCode, d)
			time.Sleep(d)
			continue
		}
		if resp.StatusCode >= 400 {
			log.Fatalf("add_batch: status %d. check flags", resp.StatusCode)
		}
		return
	}
}

func queryLoop() {
	tick := time.NewTicker(queryInterval)
	for range tick.C {
		symbol := symbolName(rand.Intn(symbols))
		u := fmt.Sprintf("%s/stats/?symbol=%s&k=%d", addr, url.QueryEscape(symbol), queryK)
		resp, err := client.Get(u)
		if err != nil {
			log.Warnf("stats: %s", err.Error())
			continue
		}
		var stats models.StatsResp
		err = json.NewDecoder(resp.Body).Decode(&stats)
		resp.Body.Close()
		if err != nil || resp.StatusCode != 200 {
			log.Warnf("stats: status %d err %v", resp.StatusCode, err)
			continue
		}
		log.Infof("%s k=%d size=%d min=%f max=%f avg=%f var=%f last=%f",
			symbol, queryK, stats.Size, stats.Min, stats.Max, stats.Avg, stats.Var, stats.Last)
	}
}
