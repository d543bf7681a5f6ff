// Command demoserver serves versioned fixture pages for trying out scans.
//
//	go run ./cmd/demoserver [-addr :9999] [-vertex http://localhost:8080]
package main

import (
	"flag"
	"os"

	"github.com/raysh454/vertex/internal/demoserver"
	"github.com/raysh454/vertex/internal/logging"
)

func main() {
	cfg := demoserver.DefaultConfig()
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flag.StringVar(&cfg.VertexURL, "vertex", cfg.VertexURL, "Vertex API the control panel scans through")
	flag.IntVar(&cfg.InitialVersion, "version", cfg.InitialVersion, "version every page starts at (1 broken, 2 fixed)")
	flag.Parse()

	logger := logging.NewStdoutLogger("demoserver")
	server := demoserver.NewDemoServer(cfg, logger)
	for _, p := range server.States() {
		logger.Info("fixture",
			logging.Field{Key: "path", Value: p.Path},
			logging.Field{Key: "categories", Value: p.Categories},
			logging.Field{Key: "description", Value: p.Description})
	}
	if err := server.Start(); err != nil {
		logger.Error("demo server stopped", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
}
