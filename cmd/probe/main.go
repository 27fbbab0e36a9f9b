package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/affinity/internal/probe"
	"github.com/okian/affinity/pkg/logger"
)

// Default configuration constants.
const (
	defaultUsers          = 200
	defaultServersPerUser = 25
	defaultTopN           = 10
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 30 * time.Second
	defaultWait           = 30 * time.Second
	defaultRunTimeout     = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		users   = flag.Int("users", defaultUsers, "Number of synthetic users")
		servers = flag.Int("servers", defaultServersPerUser, "Servers scored per user")
		topN    = flag.Int("top", defaultTopN, "Board entries fetched per user")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait    = flag.Duration("wait", defaultWait, "Upper bound on waiting for jobs to be processed")
		seed    = flag.Uint64("seed", 0, "Generator seed, 0 picks one")
		output  = flag.String("output", "", "Output file for generated jobs")
		logFile = flag.String("log", "", "Log file in addition to stdout")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	closer, err := probe.SetupLogging(*logFile, *verbose)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	config := &probe.Config{
		BaseURL:        *baseURL,
		Users:          *users,
		ServersPerUser: *servers,
		TopN:           *topN,
		Workers:        max(*workers, 1),
		Timeout:        *timeout,
		Wait:           *wait,
		Seed:           *seed,
		OutputFile:     *output,
		Verbose:        *verbose,
	}

	stats, err := probe.Run(ctx, config)
	probe.Summary(ctx, stats)
	if err != nil {
		logger.Get().Error(ctx, "probe failed", logger.Error(err))
		if errors.Is(err, probe.ErrMismatch) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
