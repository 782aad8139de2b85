// Package repository stores the history of served predictions.
package repository

import (
	"context"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/model"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/types"
)

// Store provides read/write access to recorded predictions.
type Store interface {
	// Save records a prediction. Saving an id twice keeps the first record.
	Save(ctx context.Context, p model.Prediction) error

	// Get returns the prediction with id, or ErrNotFound.
	Get(ctx context.Context, id string) (model.Prediction, error)

	// Recent returns up to limit predictions, newest first. An empty task
	// matches every task.
	Recent(ctx context.Context, task types.Task, limit int) ([]model.Prediction, error)

	// Count returns the number of predictions held.
	Count(ctx context.Context) (int, error)

	Close() error
}
