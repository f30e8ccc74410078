// Package main is the entry point for the smfplay API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/james-see/smfplay/pkg/api"
	"github.com/james-see/smfplay/pkg/player"
)

func main() {
	port := flag.Int("port", 8080, "Server port")
	maxMeta := flag.Int("max-meta", 0, "Meta event payload bytes kept per event (0 = default)")
	skipUnknown := flag.Bool("skip-unknown", false, "Skip chunks that are not MTrk")
	level := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "smfplay-server"})
	lvl, err := log.ParseLevel(*level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(2)
	}
	logger.SetLevel(lvl)

	cfg := player.DefaultConfig()
	if *maxMeta > 0 {
		cfg.MaxMetaCapture = *maxMeta
	}
	cfg.SkipUnknownChunks = *skipUnknown

	fmt.Printf("Starting smfplay API server on port %d...\n", *port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", *port)

	if err := api.NewServer(cfg, logger).Run(*port); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
