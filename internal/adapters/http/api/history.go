package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/model"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/types"
)

// HistoryDependencies defines the read operations over recorded predictions.
type HistoryDependencies interface {
	History(ctx context.Context, task types.Task, limit int) ([]model.Prediction, error)
	Prediction(ctx context.Context, id string) (model.Prediction, error)
}

// HistoryHandler serves recorded predictions.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleList handles GET /predictions?task=&limit= requests. Without a
// task both forms are listed.
func (h *HistoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_predictions"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	var task types.Task
	if raw := q.Get("task"); raw != "" {
		t, err := types.ParseTask(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
			return
		}
		task = t
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, codeBadRequest,
				WrapKind(op, ErrBadRequest, fmt.Errorf("invalid limit %q", raw)))
			return
		}
		limit = n
	}

	preds, err := h.deps.History(r.Context(), task, limit)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Task: string(task), Count: len(preds), Predictions: preds})
}

// HandleGet handles GET /predictions/{id} requests.
func (h *HistoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_prediction"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/predictions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, codeBadRequest, NewKind(op, ErrBadRequest))
		return
	}
	p, err := h.deps.Prediction(r.Context(), id)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
