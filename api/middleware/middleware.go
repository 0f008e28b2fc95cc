package middleware

import (
	"github.com/rs/cors"
	"gopkg.in/macaron.v1"
)

type Context struct {
	*macaron.Context
}

// RequestContext wraps the macaron context so handlers can take a
// *middleware.Context argument.
func RequestContext() macaron.Handler {
	return func(c *macaron.Context) {
		ctx := &Context{
			Context: c,
		}
		c.Map(ctx)
	}
}

func CorsHandler() macaron.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Origin", "Accept", "Content-Type"},
		AllowCredentials: true,
	})
	return c.HandlerFunc
}
