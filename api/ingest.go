package api

import (
	"fmt"
	"strings"

	"github.com/go-macaron/binding"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stattank/stattank/api/middleware"
	"github.com/stattank/stattank/api/models"
	"github.com/stattank/stattank/tracing"
)

var batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "stattank",
	Name:      "batch_size",
	Help:      "The number of values per add_batch request.",
	Buckets:   prometheus.ExponentialBuckets(1, 10, 5),
})

func (s *Server) addBatch(ctx *middleware.Context, req models.AddBatch, errs binding.Errors) {
	if len(errs) > 0 {
		respondErr(ctx, 400, bindingError(errs))
		return
	}
	if strings.TrimSpace(req.Symbol) == "" {
		respondErr(ctx, 400, "symbol is empty")
		return
	}
	// nil means the field was absent (or null); an empty array is a valid,
	// if pointless, batch
	if req.Values == nil {
		respondErr(ctx, 400, "values is missing")
		return
	}
	if maxBatchSize > 0 && len(req.Values) > maxBatchSize {
		respondErr(ctx, 400, fmt.Sprintf("too many values in batch (max is %d)", maxBatchSize))
		return
	}
	batchSize.Observe(float64(len(req.Values)))

	_, span := tracing.NewSpan(ctx.Req.Context(), s.Tracer, "tank.AddBatch")
	span.SetTag("symbol", req.Symbol)
	span.SetTag("values", len(req.Values))
	s.Tank.GetOrCreate(req.Symbol).AddBatch(req.Values)
	span.Finish()

	ctx.JSON(200, models.AddBatchResp{Status: "ok"})
}

func respondErr(ctx *middleware.Context, code int, msg string) {
	ctx.JSON(code, models.ErrorResp{Error: msg})
}

// bindingError reduces binding errors to a short diagnostic. Deserialization
// errors carry unhelpfully verbose messages, so those get a fixed text.
func bindingError(errs binding.Errors) string {
	err := errs[0]
	if err.Classification == binding.ERR_DESERIALIZATION {
		return "malformed request body"
	}
	if len(err.FieldNames) > 0 {
		return fmt.Sprintf("%s: %s", strings.Join(err.FieldNames, ","), err.Message)
	}
	return err.Message
}
