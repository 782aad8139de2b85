package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/metrics"
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics. Error
// responses are counted under the API error code the handler wrote, so
// out_of_range and model_unavailable show up as separate series.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		durationMs := float64(time.Since(start).Milliseconds())
		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, durationMs)

		if rec.status < http.StatusBadRequest {
			return
		}
		errorType := rec.code
		if errorType == "" {
			errorType = getErrorType(rec.status)
		}
		metrics.RecordErrorByEndpoint(endpoint, r.Method, errorType)
		metrics.RecordErrorByType(errorType, getErrorSeverity(rec.status))
		metrics.RecordErrorLatency("http", errorType, durationMs)
	}
}

// getErrorType maps a status without an API error body to an error type.
func getErrorType(status int) string {
	switch {
	case status == http.StatusServiceUnavailable:
		return codeUnavailable
	case status >= http.StatusInternalServerError:
		return codeInternal
	case status == http.StatusNotFound:
		return codeNotFound
	case status >= http.StatusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

func getErrorSeverity(status int) string {
	if status >= http.StatusInternalServerError {
		return "high"
	}
	return "medium"
}

// codeRecorder is implemented by writers that remember the API error code.
type codeRecorder interface {
	recordCode(code string)
}

// statusRecorder captures the status and API error code of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	code   string
}

func (rw *statusRecorder) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *statusRecorder) recordCode(code string) { rw.code = code }
