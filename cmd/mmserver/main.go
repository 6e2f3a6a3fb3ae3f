package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	mmcheck "mmcheck/pkg"
	clog "mmcheck/pkg/log"
)

var port = flag.Int("port", 9000, "port to listen on")
var host = flag.String("host", "0.0.0.0", "host to listen on")
var dataFile = flag.String("data-file", "mmcheck.data", "data file")
var watchDir = flag.String("watch", "", "directory to watch for .mmb proof files")
var logLevel = flag.String("log-level", "", "log level (debug, info, warn, error)")

func main() {
	// get cmdline flags
	flag.Parse()

	clog.Configure(clog.Config{Level: *logLevel, Service: "mmserver"})

	server, err := mmcheck.NewServer(*dataFile, *host, *port)
	if err != nil {
		clog.Base().Fatal().Err(err).Msg("failed to start")
	}

	ctx, cancel := context.WithCancel(context.Background())

	if *watchDir != "" {
		go func() {
			err := mmcheck.WatchDirectory(ctx, server.DB(), *watchDir)
			if err != nil && err != context.Canceled {
				clog.Base().Error().Err(err).Msg("directory watcher exited")
			}
		}()
	}

	// graceful shutdown on Ctrl-C
	ctrlCChan := make(chan os.Signal, 1)
	signal.Notify(ctrlCChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlCChan
		cancel()
		if err := server.Close(); err != nil {
			clog.Base().Error().Err(err).Msg("error closing")
		}
		os.Exit(0)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		clog.Base().Fatal().Err(err).Msg("error listening")
	}
}
