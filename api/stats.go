package api

import (
	"fmt"

	"github.com/go-macaron/binding"
	"github.com/stattank/stattank/api/middleware"
	"github.com/stattank/stattank/api/models"
	"github.com/stattank/stattank/tank"
	"github.com/stattank/stattank/tracing"
)

// getStats answers GET /stats/?symbol=<id>&k=<1..8>. A symbol that was never
// posted to, or whose window is still empty, is a 404: reads never create
// aggregators.
func (s *Server) getStats(ctx *middleware.Context, req models.StatsQuery, errs binding.Errors) {
	if len(errs) > 0 {
		respondErr(ctx, 400, bindingError(errs))
		return
	}
	if req.K < 1 || req.K > tank.DefaultLevels {
		respondErr(ctx, 400, fmt.Sprintf("k must be in [1,%d]", tank.DefaultLevels))
		return
	}

	agg, ok := s.Tank.Get(req.Symbol)
	if !ok {
		respondErr(ctx, 404, fmt.Sprintf("symbol not found: %s", req.Symbol))
		return
	}

	_, span := tracing.NewSpan(ctx.Req.Context(), s.Tracer, "tank.Stats")
	span.SetTag("symbol", req.Symbol)
	span.SetTag("k", req.K)
	st, ok := agg.Stats(req.K)
	span.Finish()
	if !ok {
		respondErr(ctx, 404, fmt.Sprintf("symbol not found: %s", req.Symbol))
		return
	}

	ctx.JSON(200, models.StatsResp{
		Min:  st.Min,
		Max:  st.Max,
		Last: st.Last,
		Avg:  st.Avg,
		Var:  st.Var,
		Size: st.Count,
	})
}

func (s *Server) appStatus(ctx *middleware.Context) {
	ctx.JSON(200, map[string]interface{}{
		"status":  "ok",
		"symbols": s.Tank.Len(),
	})
}
