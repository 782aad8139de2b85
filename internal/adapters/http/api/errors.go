package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/dataset"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/registry"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/repository"
	service "github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/app"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/features"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/types"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
)

// Error codes returned in the JSON error body.
const (
	codeBadRequest       = "bad_request"
	codeOutOfRange       = "out_of_range"
	codeInvalidCategory  = "invalid_category"
	codeModelUnavailable = "model_unavailable"
	codeNotFound         = "not_found"
	codeUnavailable      = "service_unavailable"
	codeInternal         = "internal_error"
)

// kindError tags an error with the operation that failed and its kind.
type kindError struct {
	op   string
	kind error
	err  error
}

func (e *kindError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	}
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *kindError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &kindError{op: op, kind: kind}
}

// WrapKind tags err with op and kind; both stay reachable via errors.Is.
func WrapKind(op string, kind, err error) error {
	return &kindError{op: op, kind: kind, err: err}
}

// classify maps an error from the service layer to a status and code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, features.ErrOutOfRange):
		return http.StatusBadRequest, codeOutOfRange
	case errors.Is(err, features.ErrInvalidCategory):
		return http.StatusBadRequest, codeInvalidCategory
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, types.ErrUnknownTask),
		errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, dataset.ErrInvalidBins):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, registry.ErrUnavailable),
		errors.Is(err, features.ErrSchemaMismatch):
		return http.StatusServiceUnavailable, codeModelUnavailable
	case errors.Is(err, ErrNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrNotConfigured):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, codeUnavailable
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
