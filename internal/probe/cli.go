package probe

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/affinity/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging sends log output to stdout and, when logFile is non-empty, to
// that file as well. The returned closer releases the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	level := "info"
	if verbose {
		level = "debug"
	}
	if logFile == "" {
		if err := logger.Init(logger.WithOutput(os.Stdout), logger.WithLevel(level)); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return io.NopCloser(nil), nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file)), logger.WithLevel(level)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file, nil
}

// DefaultJobsFile names a timestamped file for generated jobs.
func DefaultJobsFile(now time.Time) string {
	return "probe_jobs_" + now.Format("20060102_150405") + ".json"
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Affinity Probe
==============

Submits synthetic recommendation jobs to a running affinity service, waits
for the pipeline to file them and checks every board against synchronous
scoring.

Usage:
  go run ./cmd/probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -users int
        Number of synthetic users (default 200)
  -servers int
        Servers scored per user (default 25)
  -top int
        Board entries fetched per user (default 10)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -wait duration
        Upper bound on waiting for jobs to be processed (default 30s)
  -seed uint
        Generator seed, 0 picks one (default 0)
  -output string
        Output file for generated jobs (default: none)
  -log string
        Log file in addition to stdout (default: none)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/probe -users 1000 -servers 50 -workers 16
`)
}
