package smoke

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/features"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// ErrNotRecorded is returned when accepted predictions never show up in history.
var ErrNotRecorded = errors.New("predictions missing from history")

// Run executes the complete smoke run.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("smoke")

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.Requests),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Fetch form descriptions and generate submissions
	forms, err := fetchForms(ctx, client)
	if err != nil {
		return stats, fmt.Errorf("form retrieval failed: %w", err)
	}
	subs, err := generateSubmissions(ctx, forms, config.Requests, stats)
	if err != nil {
		return stats, fmt.Errorf("submission generation failed: %w", err)
	}

	// Step 3: Submit concurrently
	submitAll(ctx, client, config, subs, stats)
	if stats.Succeeded == 0 {
		return stats, fmt.Errorf("no prediction succeeded out of %d", stats.Generated)
	}

	// Step 4: Confirm every accepted prediction was recorded
	verifyRecorded(ctx, client, config, subs, stats)

	if config.OutputFile != "" {
		if err := saveSubmissions(config.OutputFile, subs); err != nil {
			log.Warn(ctx, "failed to save submissions", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.NotRecorded > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrNotRecorded, stats.NotRecorded, stats.Succeeded)
	}
	log.Info(ctx, "smoke run completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	status, _, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("health check returned status %d", status)
	}
	return nil
}

func fetchForms(ctx context.Context, client *HTTPClient) ([]features.Form, error) {
	forms := make([]features.Form, 0, len(tasks))
	for _, task := range tasks {
		var f features.Form
		if err := client.getJSON(ctx, "/forms/"+task, &f); err != nil {
			return nil, err
		}
		if f.Task == "" {
			f.Task = task
		}
		forms = append(forms, f)
	}
	return forms, nil
}

// predictionAnswer covers both prediction bodies; only one of Label and
// Display is set.
type predictionAnswer struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Display string `json:"display"`
}

// submitAll posts every submission using a worker pool and fills in the
// answers in place.
func submitAll(ctx context.Context, client *HTTPClient, config *Config, subs []Submission, stats *Stats) {
	log := logger.Get().Named("smoke")
	workers := max(1, config.Workers)
	log.Info(ctx, "submitting predictions", logger.Int("count", len(subs)), logger.Int("workers", workers))

	var succeeded, rejected, failed int64
	jobs := make(chan int, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				sub := &subs[i]
				status, body, err := client.Post(ctx, "/predict/"+sub.Task, sub.Payload)
				sub.Status = status
				switch {
				case err != nil || status >= http.StatusInternalServerError:
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Warn(ctx, "prediction failed", logger.String("task", sub.Task), logger.Int("status", status), logger.Error(err))
					}
				case status != http.StatusOK:
					atomic.AddInt64(&rejected, 1)
					if config.Verbose {
						log.Warn(ctx, "prediction rejected", logger.String("task", sub.Task), logger.Int("status", status), logger.String("body", string(body)))
					}
				default:
					var ans predictionAnswer
					if err := json.Unmarshal(body, &ans); err != nil {
						atomic.AddInt64(&failed, 1)
						continue
					}
					sub.ID = ans.ID
					sub.Result = ans.Label + ans.Display
					atomic.AddInt64(&succeeded, 1)
				}
			}
		}()
	}

feed:
	for i := range subs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	stats.Succeeded = int(succeeded)
	stats.Rejected = int(rejected)
	stats.Failed = int(failed)
}

// verifyRecorded polls GET /predictions/{id} for each accepted prediction
// until it appears or the settle window closes.
func verifyRecorded(ctx context.Context, client *HTTPClient, config *Config, subs []Submission, stats *Stats) {
	settle := config.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	deadline := time.Now().Add(settle)

	for i := range subs {
		id := subs[i].ID
		if id == "" {
			continue
		}
		if waitRecorded(ctx, client, id, deadline) {
			stats.Recorded++
		} else {
			stats.NotRecorded++
		}
	}

	var recent struct {
		Count int `json:"count"`
	}
	if err := client.getJSON(ctx, "/predictions", &recent); err == nil {
		logger.Get().Named("smoke").Info(ctx, "history sample", logger.Int("count", recent.Count))
	}
}

func waitRecorded(ctx context.Context, client *HTTPClient, id string, deadline time.Time) bool {
	for {
		status, _, err := client.Get(ctx, "/predictions/"+id)
		if err == nil && status == http.StatusOK {
			return true
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			return false
		}
		time.Sleep(pollInterval)
	}
}

// saveSubmissions writes the generated forms and answers as a JSON array.
func saveSubmissions(filename string, subs []Submission) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal submissions: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, perSecond float64
	if stats.Generated > 0 {
		successRate = float64(stats.Succeeded) / float64(stats.Generated) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Generated) / stats.Duration.Seconds()
	}

	logger.Get().Named("smoke").Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("recorded", stats.Recorded),
		logger.Int("notRecorded", stats.NotRecorded),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", perSecond))
}
