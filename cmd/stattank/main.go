package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Dieterbe/profiletrigger/heap"
	"github.com/grafana/globalconf"
	log "github.com/sirupsen/logrus"
	"github.com/stattank/stattank/api"
	"github.com/stattank/stattank/jaeger"
	"github.com/stattank/stattank/logger"
	"github.com/stattank/stattank/tank"
)

var (
	version = "(none)"

	showVersion = flag.Bool("version", false, "print version string")
	confFile    = flag.String("config", "/etc/stattank/stattank.ini", "configuration file path")

	logLevel = flag.String("log-level", "info", "log level. panic|fatal|error|warning|info|debug")

	blockProfileRate = flag.Int("block-profile-rate", 0, "see https://golang.org/pkg/runtime/#SetBlockProfileRate")
	memProfileRate   = flag.Int("mem-profile-rate", 512*1024, "0 to disable. 1 for max precision (expensive!) see https://golang.org/pkg/runtime/#pkg-variables")

	proftrigPath       = flag.String("proftrigger-path", "/tmp", "path to store triggered profiles")
	proftrigFreq       = flag.Duration("proftrigger-freq", time.Minute, "inspect status frequency. set to 0 to disable")
	proftrigMinDiff    = flag.Duration("proftrigger-min-diff", time.Hour, "minimum time between triggered profiles")
	proftrigHeapThresh = flag.Int("proftrigger-heap-thresh", 25000000000, "if this many bytes allocated, trigger a profile")
)

func main() {
	flag.Parse()

	// if the user just wants the version, give it and exit
	if *showVersion {
		fmt.Printf("stattank (version: %s - runtime: %s)\n", version, runtime.Version())
		return
	}

	// Only try and parse the conf file if it exists
	path := ""
	if _, err := os.Stat(*confFile); err == nil {
		path = *confFile
	}
	config, err := globalconf.NewWithOptions(&globalconf.Options{
		Filename:  path,
		EnvPrefix: "ST_",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: configuration file error: %s", err)
		os.Exit(1)
	}

	api.ConfigSetup()
	jaeger.ConfigSetup()
	config.ParseAll()

	formatter := &logger.TextFormatter{}
	formatter.TimestampFormat = "2006-01-02 15:04:05.000"
	log.SetFormatter(formatter)
	lvl, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("failed to parse log-level, %s", err.Error())
	}
	log.SetLevel(lvl)
	log.Infof("logging level set to '%s'", *logLevel)

	api.ConfigProcess()
	jaeger.ConfigProcess()

	if *proftrigFreq > 0 {
		errs := make(chan error)
		trigger, _ := heap.New(heap.Config{
			Path:        *proftrigPath,
			ThreshHeap:  *proftrigHeapThresh,
			MinTimeDiff: *proftrigMinDiff,
			CheckEvery:  *proftrigFreq,
		}, errs)
		go func() {
			for e := range errs {
				log.Errorf("profiletrigger heap: %s", e)
			}
		}()
		go trigger.Run()
	}

	runtime.SetBlockProfileRate(*blockProfileRate)
	runtime.MemProfileRate = *memProfileRate

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Infof("stattank starting. version: %s - runtime: %s", version, runtime.Version())

	tracer, traceCloser, err := jaeger.Get()
	if err != nil {
		log.Fatalf("Could not initialize jaeger tracer: %s", err.Error())
	}
	defer traceCloser.Close()

	apiServer, err := api.NewServer()
	if err != nil {
		log.Fatalf("Failed to start API. %s", err.Error())
	}
	apiServer.BindTank(tank.New())
	apiServer.BindTracer(tracer)
	go apiServer.Run()

	sig := <-sigChan
	log.Infof("Received signal %q. Shutting down", sig)
	apiServer.Stop()
}
