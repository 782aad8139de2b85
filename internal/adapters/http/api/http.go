// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/features"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/model"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/logger"
)

const (
	maxBodyBytes = 1 << 20
	dateLayout   = "2006-01-02"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PredictDependencies
	FormDependencies
	HistoryDependencies
	ChartDependencies
}

// Server wires HTTP routes for the prediction API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler
	formsHandler   *FormsHandler
	historyHandler *HistoryHandler
	chartsHandler  *ChartsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		predictHandler: NewPredictHandler(deps),
		formsHandler:   NewFormsHandler(deps),
		historyHandler: NewHistoryHandler(deps),
		chartsHandler:  NewChartsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict/satisfaction", MetricsMiddleware(s.predictHandler.HandleSatisfaction, "predict_satisfaction"))
	mux.HandleFunc("/predict/price", MetricsMiddleware(s.predictHandler.HandlePrice, "predict_price"))
	mux.HandleFunc("/forms/", MetricsMiddleware(s.formsHandler.HandleGetForm, "forms"))
	mux.HandleFunc("/predictions", MetricsMiddleware(s.historyHandler.HandleList, "predictions"))
	mux.HandleFunc("/predictions/", MetricsMiddleware(s.historyHandler.HandleGet, "prediction"))
	mux.HandleFunc("/charts/price-distribution", MetricsMiddleware(s.chartsHandler.HandlePriceDistribution, "price_distribution"))
}

// priceRequest mirrors the OpenAPI schema for POST /predict/price. The
// journey date travels as YYYY-MM-DD.
type priceRequest struct {
	Duration      int    `json:"duration"`
	TotalStops    int    `json:"total_stops"`
	DateOfJourney string `json:"date_of_journey"`
	DepHour       int    `json:"dep_hour"`
	DepMinute     int    `json:"dep_minute"`
	ArrivalHour   int    `json:"arrival_hour"`
	ArrivalMinute int    `json:"arrival_minute"`
	Airline       string `json:"airline"`
	Source        string `json:"source"`
	Destination   string `json:"destination"`
}

func (p priceRequest) input() (features.PriceInput, error) {
	if strings.TrimSpace(p.DateOfJourney) == "" {
		return features.PriceInput{}, errors.New("missing date_of_journey")
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(p.DateOfJourney))
	if err != nil {
		return features.PriceInput{}, fmt.Errorf("invalid date_of_journey %q; must be YYYY-MM-DD", p.DateOfJourney)
	}
	return features.PriceInput{
		DurationMinutes: p.Duration,
		TotalStops:      p.TotalStops,
		DateOfJourney:   date,
		DepHour:         p.DepHour,
		DepMinute:       p.DepMinute,
		ArrivalHour:     p.ArrivalHour,
		ArrivalMinute:   p.ArrivalMinute,
		Airline:         p.Airline,
		Source:          p.Source,
		Destination:     p.Destination,
	}, nil
}

// historyResponse is the body of GET /predictions.
type historyResponse struct {
	Task        string             `json:"task,omitempty"`
	Count       int                `json:"count"`
	Predictions []model.Prediction `json:"predictions"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	if rec, ok := w.(codeRecorder); ok {
		rec.recordCode(code)
	}
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes it. Server-side failures are
// logged; client errors are not.
func writeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}

// decodeJSON reads a single JSON object from the request body. Unknown
// fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}
