package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/peereval/internal/evalctl"
	"github.com/okian/peereval/pkg/logger"
)

const (
	defaultBaseURL = "http://localhost:9080"
	defaultTimeout = 30 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		baseURL = flag.String("url", defaultBaseURL, "Base URL of the service")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		jsonOut = flag.Bool("json", false, "Print raw JSON instead of tables")
		verbose = flag.Bool("verbose", false, "Log each request")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		evalctl.ShowHelp(os.Stdout)
		return 0
	}

	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &evalctl.Config{
		BaseURL: *baseURL,
		Timeout: *timeout,
		JSON:    *jsonOut,
		Verbose: *verbose,
	}
	if err := evalctl.Run(ctx, cfg, flag.Args(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "evalctl: %v\n", err)
		if errors.Is(err, evalctl.ErrUsage) {
			fmt.Fprintln(os.Stderr, "run 'evalctl -help' for usage")
			return 2
		}
		return 1
	}
	return 0
}
