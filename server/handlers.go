package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jeffreire/creditrisk-api/pkg/errors"
	"github.com/jeffreire/creditrisk-api/pkg/log"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// PredictionRequest is the payload of POST /predict.
//
// LearningRate and Reconfigure are accepted for compatibility with older
// clients, but in-place reconfiguration through the predict endpoint is no
// longer performed: it silently discarded the trained model and made the
// prediction degenerate. Requests that set Reconfigure are rejected and
// directed to /configure.
type PredictionRequest struct {
	Features     []float64 `json:"features"`
	LearningRate *float64  `json:"learning_rate,omitempty"`
	Reconfigure  *bool     `json:"reconfigure,omitempty"`
}

// PredictionResponse is the payload returned by POST /predict.
type PredictionResponse struct {
	Predicted  int     `json:"predicted"`
	Confidence float64 `json:"confidence"`
}

// ModelConfigRequest is the payload of POST /configure.
type ModelConfigRequest struct {
	NumFeatures  int     `json:"num_features"`
	LearningRate float64 `json:"learning_rate"`
}

// TrainingRequest is the payload of POST /train.
type TrainingRequest struct {
	Features [][]float64 `json:"features"`
	Targets  []float64   `json:"targets"`
	Epochs   int         `json:"epochs"`
}

// TrainingResponse reports a completed training run.
type TrainingResponse struct {
	Status     string  `json:"status"`
	Samples    int     `json:"samples"`
	Epochs     int     `json:"epochs"`
	Accuracy   float64 `json:"accuracy"`
	DurationMs int64   `json:"duration_ms"`
}

// SnapshotRequest is the payload of POST /save-model and POST /load-model.
type SnapshotRequest struct {
	Filepath string `json:"filepath"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// Handlers routes HTTP requests to a ModelService.
type Handlers struct {
	service *ModelService
	cfg     Config
}

// NewHandlers creates the handler set for a service.
func NewHandlers(service *ModelService, cfg Config) *Handlers {
	return &Handlers{service: service, cfg: cfg}
}

// Register installs all routes on mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /predict", h.handlePredict)
	mux.HandleFunc("POST /configure", h.handleConfigure)
	mux.HandleFunc("POST /train", h.handleTrain)
	mux.HandleFunc("POST /save-model", h.handleSaveModel)
	mux.HandleFunc("POST /load-model", h.handleLoadModel)
	mux.HandleFunc("GET /health", h.handleHealth)
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Reconfigure != nil && *req.Reconfigure {
		writeDomainError(w, errors.NewValidationError("reconfigure",
			"in-place reconfiguration is not supported on /predict; use /configure", true))
		return
	}

	predicted, confidence, err := h.service.Predict(req.Features)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PredictionResponse{
		Predicted:  predicted,
		Confidence: confidence,
	})
}

func (h *Handlers) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var req ModelConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.NumFeatures < 0 {
		writeDomainError(w, errors.NewValidationError("num_features", "must be non-negative", req.NumFeatures))
		return
	}
	if req.LearningRate <= 0 {
		writeDomainError(w, errors.NewValidationError("learning_rate", "must be positive", req.LearningRate))
		return
	}

	h.service.Configure(req.NumFeatures, req.LearningRate)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req TrainingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Training holds the model lock until it finishes; bound the work a
	// single request can demand.
	if max := h.cfg.MaxTrainSamples; max > 0 && len(req.Features) > max {
		writeDomainError(w, errors.NewValidationError("features",
			"too many samples for a single training request", len(req.Features)))
		return
	}
	if max := h.cfg.MaxTrainEpochs; max > 0 && req.Epochs > max {
		writeDomainError(w, errors.NewValidationError("epochs",
			"too many epochs for a single training request", req.Epochs))
		return
	}

	result, err := h.service.Train(req.Features, req.Targets, req.Epochs)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TrainingResponse{
		Status:     "ok",
		Samples:    result.Samples,
		Epochs:     result.Epochs,
		Accuracy:   result.Accuracy,
		DurationMs: result.Duration.Milliseconds(),
	})
}

func (h *Handlers) handleSaveModel(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Filepath == "" {
		writeDomainError(w, errors.NewValidationError("filepath", "must not be empty", req.Filepath))
		return
	}

	if err := h.service.Save(req.Filepath); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleLoadModel(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Filepath == "" {
		writeDomainError(w, errors.NewValidationError("filepath", "must not be empty", req.Filepath))
		return
	}

	if err := h.service.Load(req.Filepath); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// decodeJSON decodes the request body into v, answering 400 on malformed
// input. Returns false when the request was already answered.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// writeDomainError maps the error taxonomy to HTTP statuses. Everything in
// the taxonomy is a client-input error and maps to 400; anything
// unrecognized is a server fault.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		notFitted  *errors.NotFittedError
		dimension  *errors.DimensionError
		validation *errors.ValidationError
		value      *errors.ValueError
		modelErr   *errors.ModelError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFitted),
		errors.As(err, &dimension),
		errors.As(err, &validation),
		errors.As(err, &value),
		errors.As(err, &modelErr):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", log.ErrAttr(err))
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", log.ErrAttr(err))
	}
}
