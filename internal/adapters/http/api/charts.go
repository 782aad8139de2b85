package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/dataset"
)

// ChartDependencies serves chart data.
type ChartDependencies interface {
	PriceDistribution(ctx context.Context, bins int) (dataset.Histogram, error)
}

// ChartsHandler serves chart data for the demo page.
type ChartsHandler struct {
	deps ChartDependencies
}

// NewChartsHandler creates a new charts handler.
func NewChartsHandler(deps ChartDependencies) *ChartsHandler {
	return &ChartsHandler{deps: deps}
}

// HandlePriceDistribution handles GET /charts/price-distribution?bins=.
func (h *ChartsHandler) HandlePriceDistribution(w http.ResponseWriter, r *http.Request) {
	const op = "api.price_distribution"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	bins := 0
	if raw := r.URL.Query().Get("bins"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, codeBadRequest,
				WrapKind(op, ErrBadRequest, fmt.Errorf("invalid bins %q", raw)))
			return
		}
		bins = n
	}
	hist, err := h.deps.PriceDistribution(r.Context(), bins)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}
