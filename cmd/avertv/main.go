// Command avertv brings up an AVerTV USB2.0 with the saved state, keeps the
// loopback streamer running and saves the state again on SIGINT or SIGTERM.
// SIGUSR1 cycles the video source.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	avertv "github.com/kevmo314/go-avertv"
	"github.com/kevmo314/go-avertv/pkg/app"
	"github.com/kevmo314/go-avertv/pkg/config"
	"github.com/kevmo314/go-avertv/pkg/logging"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "avertv.yaml", "path to the config file")
	source := flag.String("source", "", "video source to start on (TV, Composite, S-Video); default is the saved one")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New(cfg.Logging, version)

	a, err := app.FromConfig(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Start(); err != nil {
		logger.Error("bring-up failed", "err", err)
		a.Shutdown()
		a.Close()
		os.Exit(1)
	}
	if *source != "" {
		src, err := avertv.ParseVideoSource(*source)
		if err != nil {
			logger.Error("bad -source", "err", err)
		} else if err := a.SelectSource(src); err != nil {
			logger.Error("source switch failed", "err", err)
		}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	for sig := range sigs {
		if sig == syscall.SIGUSR1 {
			if err := a.CycleSource(); err != nil {
				logger.Error("source switch failed", "err", err)
			}
			continue
		}
		logger.Info("shutting down", "signal", sig)
		break
	}

	if err := a.Shutdown(); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
