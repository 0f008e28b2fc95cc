package api

import (
	"github.com/go-macaron/binding"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raintank/gziper"
	"github.com/stattank/stattank/api/middleware"
	"github.com/stattank/stattank/api/models"
	"gopkg.in/macaron.v1"
)

func (s *Server) RegisterRoutes() {
	r := s.Macaron
	if useGzip {
		r.Use(gziper.Gziper())
	}
	r.Use(middleware.RequestStats())
	r.Use(middleware.Tracer(s.Tracer))
	r.Use(macaron.Renderer())
	r.Use(middleware.RequestContext())
	r.Use(middleware.CorsHandler())
	r.Use(middleware.Logger(logRequests))

	bind := binding.BindIgnErr

	r.Get("/", s.appStatus)
	r.Get("/metrics", promhttpHandler())

	r.Post("/add_batch/", bind(models.AddBatch{}), s.addBatch)
	r.Get("/stats/", bind(models.StatsQuery{}), s.getStats)
}

func promhttpHandler() macaron.Handler {
	h := promhttp.Handler()
	return func(ctx *macaron.Context) {
		h.ServeHTTP(ctx.Resp, ctx.Req.Request)
	}
}
