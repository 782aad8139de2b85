// Package model contains domain models passed between layers.
package model

import (
	"math"
	"time"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/features"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/types"
)

// Probabilities is the classifier's probability pair.
type Probabilities struct {
	Dissatisfied float64 `json:"dissatisfied"`
	Satisfied    float64 `json:"satisfied"`
}

// SatisfactionPrediction is the response of the satisfaction form.
type SatisfactionPrediction struct {
	ID            string                `json:"id"`
	Label         string                `json:"label"`
	Class         int                   `json:"class"`
	Confidence    float64               `json:"confidence"` // percent, two decimals
	Probabilities Probabilities         `json:"probabilities"`
	Features      []features.NamedValue `json:"features"`
	ModelURI      string                `json:"model_uri"`
	Cached        bool                  `json:"cached"`
	CreatedAt     time.Time             `json:"created_at"`
}

// PricePrediction is the response of the price form. Features echoes the
// encoded record, so a dropped journey year is visible to the caller.
type PricePrediction struct {
	ID        string                `json:"id"`
	Amount    float64               `json:"amount"`
	Currency  string                `json:"currency"`
	Display   string                `json:"display"`
	Features  []features.NamedValue `json:"features"`
	ModelURI  string                `json:"model_uri"`
	Cached    bool                  `json:"cached"`
	CreatedAt time.Time             `json:"created_at"`
}

// Prediction is the task-neutral record kept in history.
type Prediction struct {
	ID         string                `json:"id"`
	Task       types.Task            `json:"task"`
	ModelURI   string                `json:"model_uri"`
	Label      string                `json:"label,omitempty"`
	Confidence float64               `json:"confidence,omitempty"`
	Amount     float64               `json:"amount,omitempty"`
	Currency   string                `json:"currency,omitempty"`
	Features   []features.NamedValue `json:"features"`
	CreatedAt  time.Time             `json:"created_at"`
}

// Record converts the response to its history form.
func (p *SatisfactionPrediction) Record() Prediction {
	return Prediction{
		ID:         p.ID,
		Task:       types.TaskSatisfaction,
		ModelURI:   p.ModelURI,
		Label:      p.Label,
		Confidence: p.Confidence,
		Features:   p.Features,
		CreatedAt:  p.CreatedAt,
	}
}

// Record converts the response to its history form.
func (p *PricePrediction) Record() Prediction {
	return Prediction{
		ID:        p.ID,
		Task:      types.TaskPrice,
		ModelURI:  p.ModelURI,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Features:  p.Features,
		CreatedAt: p.CreatedAt,
	}
}

// Event carries a finished prediction to the recording pipeline.
type Event struct {
	EventID    string // same as Prediction.ID
	Prediction Prediction
	TS         time.Time // enqueue time
}

// NewEvent wraps a prediction for the queue.
func NewEvent(p Prediction) Event {
	return Event{EventID: p.ID, Prediction: p, TS: time.Now()}
}

// ConfidencePercent returns the probability of the predicted class as a
// percentage rounded to two decimals.
func ConfidencePercent(class int, proba [2]float64) float64 {
	p := proba[0]
	if class == 1 {
		p = proba[1]
	}
	return math.Round(p*10000) / 100
}
