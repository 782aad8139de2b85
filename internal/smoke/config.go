// Package smoke drives a running prediction service with random valid form
// submissions and checks that every accepted prediction is recorded.
package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Requests   int           // Number of predictions to submit
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Settle     time.Duration // How long to wait for predictions to be recorded
	OutputFile string        // Optional JSON file for the submitted forms
	Verbose    bool          // Log every failure
}

// Submission is one generated form and what the service answered.
type Submission struct {
	Task    string         `json:"task"`
	Payload map[string]any `json:"payload"`
	Status  int            `json:"status"`
	ID      string         `json:"id,omitempty"`
	Result  string         `json:"result,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	Generated   int
	Succeeded   int
	Rejected    int // 4xx answers
	Failed      int // transport errors and 5xx answers
	Recorded    int
	NotRecorded int
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
