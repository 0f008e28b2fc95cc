package api

import (
	"flag"
	"net"

	"github.com/grafana/globalconf"
	log "github.com/sirupsen/logrus"
)

var (
	Addr     string
	UseSSL   bool
	certFile string
	keyFile  string

	useGzip      bool
	maxBatchSize int
	logRequests  bool
)

func ConfigSetup() {
	apiCfg := flag.NewFlagSet("http", flag.ExitOnError)
	apiCfg.StringVar(&Addr, "listen", ":3000", "http listener address.")
	apiCfg.BoolVar(&UseSSL, "ssl", false, "use HTTPS")
	apiCfg.StringVar(&certFile, "cert-file", "", "SSL certificate file")
	apiCfg.StringVar(&keyFile, "key-file", "", "SSL key file")
	apiCfg.BoolVar(&useGzip, "gzip", true, "gzip responses")
	apiCfg.IntVar(&maxBatchSize, "max-batch-size", 10000, "max number of values in one add_batch request. (0 disables limit)")
	apiCfg.BoolVar(&logRequests, "log-requests", false, "log all requests, not just errored ones")
	globalconf.Register("http", apiCfg, flag.ExitOnError)
}

func ConfigProcess() {
	// validate the addr
	_, err := net.ResolveTCPAddr("tcp", Addr)
	if err != nil {
		log.Fatal("API listen address is not a valid TCP address.")
	}
}
