package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/smoke"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/logger"
)

// Default configuration constants.
const (
	defaultRequests = 200
	defaultWorkers  = 2 // multiplier for runtime.NumCPU()
	defaultTimeout  = 10 * time.Second
	defaultRunLimit = 5 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8080", "Base URL of the service")
		requests   = flag.Int("requests", defaultRequests, "Number of predictions to submit")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", smoke.DefaultSettle, "How long to wait for predictions to be recorded")
		outputFile = flag.String("output", "", "Write the generated forms and answers to this JSON file")
		verbose    = flag.Bool("verbose", false, "Log every rejected or failed request")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunLimit)
	defer cancel()

	config := &smoke.Config{
		BaseURL:    *baseURL,
		Requests:   *requests,
		Workers:    *workers,
		Timeout:    *timeout,
		Settle:     *settle,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}

	if _, err := smoke.Run(ctx, config); err != nil {
		_, _ = os.Stderr.WriteString("smoke run failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
