package api

import (
	"context"
	"net/http"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/features"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/model"
)

// PredictDependencies defines the prediction operations the handlers call.
type PredictDependencies interface {
	PredictSatisfaction(ctx context.Context, in features.SatisfactionInput) (model.SatisfactionPrediction, error)
	PredictPrice(ctx context.Context, in features.PriceInput) (model.PricePrediction, error)
}

// PredictHandler handles form submissions.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new prediction handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandleSatisfaction handles POST /predict/satisfaction requests.
func (h *PredictHandler) HandleSatisfaction(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_satisfaction"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	// Fields missing from the body keep the form defaults.
	in := features.DefaultSatisfactionInput()
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.PredictSatisfaction(r.Context(), in)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandlePrice handles POST /predict/price requests.
func (h *PredictHandler) HandlePrice(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_price"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req priceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.PredictPrice(r.Context(), in)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
