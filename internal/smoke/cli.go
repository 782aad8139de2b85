package smoke

import "os"

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Flight Prediction Smoke Tool
============================

Submits random valid satisfaction and price forms to a running service,
then checks that every accepted prediction was recorded in history.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -requests int
        Number of predictions to submit (default 200)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -settle duration
        How long to wait for predictions to be recorded (default 2s)
  -output string
        Write the generated forms and answers to this JSON file
  -verbose
        Log every rejected or failed request
  -help
        Show this help message

Examples:
  go run ./cmd/smoke -requests 1000 -workers 16
  go run ./cmd/smoke -url http://localhost:9090 -output smoke.json
`)
}
