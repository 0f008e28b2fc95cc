package middleware

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gopkg.in/macaron.v1"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "stattank",
	Name:      "request_duration_seconds",
	Help:      "Time (in seconds) spent serving HTTP requests.",
	Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
}, []string{"method", "path", "status_code"})

// RequestStats observes the duration of each request, labelled by method,
// path and status code.
func RequestStats() macaron.Handler {
	return func(ctx *macaron.Context) {
		start := time.Now()
		ctx.Next()
		requestDuration.WithLabelValues(
			ctx.Req.Method,
			ctx.Req.URL.Path,
			strconv.Itoa(ctx.Resp.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
