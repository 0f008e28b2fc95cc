// Package jaeger configures the jaeger tracer for the stattank server.
package jaeger

import (
	"flag"
	"io"
	"strings"
	"time"

	"github.com/grafana/globalconf"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerlog "github.com/uber/jaeger-client-go/log"
)

var (
	Enabled               bool
	addTagsRaw            string
	addTagsParsed         map[string]string
	samplerType           string
	samplerParam          float64
	reporterMaxQueueSize  int
	reporterFlushInterval time.Duration
	reporterLogSpans      bool
	collectorAddr         string
	agentAddr             string
)

func ConfigSetup() {
	jaegerConf := flag.NewFlagSet("jaeger", flag.ExitOnError)
	jaegerConf.BoolVar(&Enabled, "enabled", false, "Whether the tracer is enabled or not")
	jaegerConf.StringVar(&addTagsRaw, "add-tags", "", "A comma separated list of name=value tracer level tags, which get added to all reported spans")
	jaegerConf.StringVar(&samplerType, "sampler-type", "const", "the type of the sampler: const, probabilistic, rateLimiting, or remote")
	jaegerConf.Float64Var(&samplerParam, "sampler-param", 1, "the sampler parameter (number)")
	jaegerConf.IntVar(&reporterMaxQueueSize, "reporter-max-queue-size", 0, "The reporter's maximum queue size")
	jaegerConf.DurationVar(&reporterFlushInterval, "reporter-flush-interval", time.Second*10, "The reporter's flush interval")
	jaegerConf.BoolVar(&reporterLogSpans, "reporter-log-spans", false, "Whether the reporter should also log the spans")
	jaegerConf.StringVar(&collectorAddr, "collector-addr", "", "HTTP endpoint for sending spans directly to a collector, i.e. http://jaeger-collector:14268/api/traces")
	jaegerConf.StringVar(&agentAddr, "agent-addr", "localhost:6831", "UDP address of the agent to send spans to. (only used if collector-addr is empty)")
	globalconf.Register("jaeger", jaegerConf, flag.ExitOnError)
}

func ConfigProcess() {
	addTagsParsed = make(map[string]string)
	addTagsRaw = strings.TrimSpace(addTagsRaw)
	if len(addTagsRaw) == 0 {
		return
	}
	for _, tagSpec := range strings.Split(addTagsRaw, ",") {
		split := strings.Split(tagSpec, "=")
		if len(split) != 2 {
			log.Fatalf("cannot parse add-tags value %q", tagSpec)
		}
		addTagsParsed[split[0]] = split[1]
	}
}

// Get returns a jaeger tracer and sets it as the opentracing global tracer.
func Get() (opentracing.Tracer, io.Closer, error) {
	cfg := jaegercfg.Configuration{
		Disabled: !Enabled,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  samplerType,
			Param: samplerParam,
		},
		Reporter: &jaegercfg.ReporterConfig{
			QueueSize:           reporterMaxQueueSize,
			BufferFlushInterval: reporterFlushInterval,
			LogSpans:            reporterLogSpans,
			LocalAgentHostPort:  agentAddr,
			CollectorEndpoint:   collectorAddr,
		},
	}

	options := []jaegercfg.Option{
		jaegercfg.Logger(jaegerlog.StdLogger),
	}
	for k, v := range addTagsParsed {
		options = append(options, jaegercfg.Tag(k, v))
	}

	tracer, closer, err := cfg.New("stattank", options...)
	if err != nil {
		return nil, nil, err
	}
	opentracing.InitGlobalTracer(tracer)
	return tracer, closer, nil
}
