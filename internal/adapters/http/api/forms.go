package api

import (
	"net/http"
	"strings"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/features"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/types"
)

// FormDependencies describes the prediction forms.
type FormDependencies interface {
	Form(task types.Task) (features.Form, error)
}

// FormsHandler serves form descriptors.
type FormsHandler struct {
	deps FormDependencies
}

// NewFormsHandler creates a new forms handler.
func NewFormsHandler(deps FormDependencies) *FormsHandler {
	return &FormsHandler{deps: deps}
}

// HandleGetForm handles GET /forms/{task} requests.
func (h *FormsHandler) HandleGetForm(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_form"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/forms/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, codeBadRequest, NewKind(op, ErrBadRequest))
		return
	}
	task, err := types.ParseTask(name)
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, WrapKind(op, ErrNotFound, err))
		return
	}
	form, err := h.deps.Form(task)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}
