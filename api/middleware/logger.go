package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/macaron.v1"
)

type LoggingResponseWriter struct {
	macaron.ResponseWriter
	errBody []byte // the body in case it is an error
}

func (rw *LoggingResponseWriter) Write(b []byte) (int, error) {
	if rw.ResponseWriter.Status() >= 400 {
		rw.errBody = make([]byte, len(b))
		copy(rw.errBody, b)
	}
	return rw.ResponseWriter.Write(b)
}

// Logger logs requests that resulted in errors. With all set, it logs every
// request.
func Logger(all bool) macaron.Handler {
	return func(ctx *macaron.Context) {
		start := time.Now()
		ctx.Resp = &LoggingResponseWriter{
			ResponseWriter: ctx.Resp,
		}
		rw := ctx.Resp.(*LoggingResponseWriter)
		ctx.MapTo(ctx.Resp, (*http.ResponseWriter)(nil))
		ctx.Next()

		status := rw.Status()
		if status < 400 && !all {
			return
		}

		entry := log.WithFields(log.Fields{
			"method": ctx.Req.Method,
			"path":   ctx.Req.URL.RequestURI(),
			"status": status,
			"took":   time.Since(start).String(),
		})
		if status >= 400 {
			entry.WithField("response", string(rw.errBody)).Info("request failed")
		} else {
			entry.Info("request served")
		}
	}
}
