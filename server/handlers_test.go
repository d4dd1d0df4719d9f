package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func newTestHandler(t *testing.T) (*ModelService, http.Handler) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Model.NumFeatures = 3
	cfg.Model.LearningRate = 0.1
	svc := NewModelService(cfg.Model.NumFeatures, cfg.Model.LearningRate)

	mux := http.NewServeMux()
	NewHandlers(svc, cfg).Register(mux)
	return svc, mux
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// Four linearly separable samples over three features; the first feature
// alone decides the class.
var (
	trainFeatures = [][]float64{
		{2.0, 0.5, 0.5},
		{1.5, 1.0, 0.0},
		{-2.0, 0.5, 0.5},
		{-1.5, 1.0, 0.0},
	}
	trainTargets = []float64{1, 1, 0, 0}
)

func trainModel(t *testing.T, h http.Handler) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/train", TrainingRequest{
		Features: trainFeatures,
		Targets:  trainTargets,
		Epochs:   500,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("train: status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestPredict_BeforeTraining(t *testing.T) {
	_, h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/predict", PredictionRequest{Features: []float64{1, 2, 3}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if !strings.Contains(resp.Error, "not fitted") {
		t.Errorf("error = %q, want mention of not fitted", resp.Error)
	}
}

func TestPredict_FeatureCountMismatch(t *testing.T) {
	_, h := newTestHandler(t)
	trainModel(t, h)

	rec := doJSON(t, h, http.MethodPost, "/predict", PredictionRequest{Features: []float64{1, 2}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if !strings.Contains(resp.Error, "Expected 3") || !strings.Contains(resp.Error, "got 2") {
		t.Errorf("error = %q, want expected/got counts", resp.Error)
	}
}

func TestPredict_AfterTraining(t *testing.T) {
	_, h := newTestHandler(t)
	trainModel(t, h)

	rec := doJSON(t, h, http.MethodPost, "/predict", PredictionRequest{Features: []float64{2.0, 0.5, 0.5}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp PredictionResponse
	decodeBody(t, rec, &resp)
	if resp.Predicted != 1 {
		t.Errorf("predicted = %d, want 1", resp.Predicted)
	}
	if resp.Confidence <= 0.5 || resp.Confidence > 1.0 {
		t.Errorf("confidence = %v, want in (0.5, 1.0]", resp.Confidence)
	}

	rec = doJSON(t, h, http.MethodPost, "/predict", PredictionRequest{Features: []float64{-2.0, 0.5, 0.5}})
	var neg PredictionResponse
	decodeBody(t, rec, &neg)
	if neg.Predicted != 0 {
		t.Errorf("predicted = %d, want 0", neg.Predicted)
	}
}

func TestPredict_ReconfigureRejected(t *testing.T) {
	_, h := newTestHandler(t)
	trainModel(t, h)

	reconfigure := true
	lr := 0.5
	rec := doJSON(t, h, http.MethodPost, "/predict", PredictionRequest{
		Features:     []float64{1, 2, 3},
		LearningRate: &lr,
		Reconfigure:  &reconfigure,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if !strings.Contains(resp.Error, "/configure") {
		t.Errorf("error = %q, want pointer to /configure", resp.Error)
	}

	// The trained model must be untouched.
	rec = doJSON(t, h, http.MethodPost, "/predict", PredictionRequest{Features: []float64{2.0, 0.5, 0.5}})
	if rec.Code != http.StatusOK {
		t.Errorf("model lost after rejected reconfigure: %d %s", rec.Code, rec.Body.String())
	}
}

func TestPredict_ReconfigureFalseAccepted(t *testing.T) {
	_, h := newTestHandler(t)
	trainModel(t, h)

	reconfigure := false
	rec := doJSON(t, h, http.MethodPost, "/predict", PredictionRequest{
		Features:    []float64{2.0, 0.5, 0.5},
		Reconfigure: &reconfigure,
	})
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestTrain_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  TrainingRequest
		want string
	}{
		{
			name: "empty training set",
			req:  TrainingRequest{Features: nil, Targets: nil, Epochs: 10},
			want: "must not be empty",
		},
		{
			name: "sample count mismatch",
			req: TrainingRequest{
				Features: [][]float64{{1, 2, 3}, {4, 5, 6}},
				Targets:  []float64{1},
				Epochs:   10,
			},
			want: "2 features vs 1 targets",
		},
		{
			name: "sample feature count mismatch",
			req: TrainingRequest{
				Features: [][]float64{{1, 2, 3}, {4, 5}},
				Targets:  []float64{1, 0},
				Epochs:   10,
			},
			want: "sample 1 has 2 features, expected 3",
		},
		{
			name: "negative epochs",
			req: TrainingRequest{
				Features: [][]float64{{1, 2, 3}},
				Targets:  []float64{1},
				Epochs:   -1,
			},
			want: "must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestHandler(t)
			rec := doJSON(t, h, http.MethodPost, "/train", tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			var resp errorResponse
			decodeBody(t, rec, &resp)
			if !strings.Contains(resp.Error, tt.want) {
				t.Errorf("error = %q, want substring %q", resp.Error, tt.want)
			}
		})
	}
}

func TestTrain_ReportsMetrics(t *testing.T) {
	_, h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/train", TrainingRequest{
		Features: trainFeatures,
		Targets:  trainTargets,
		Epochs:   500,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp TrainingResponse
	decodeBody(t, rec, &resp)
	if resp.Samples != 4 || resp.Epochs != 500 {
		t.Errorf("samples/epochs = %d/%d, want 4/500", resp.Samples, resp.Epochs)
	}
	if resp.Accuracy != 1.0 {
		t.Errorf("accuracy = %v, want 1.0 on a separable set", resp.Accuracy)
	}
}

func TestTrain_RequestBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.NumFeatures = 1
	cfg.MaxTrainSamples = 2
	cfg.MaxTrainEpochs = 10
	svc := NewModelService(cfg.Model.NumFeatures, cfg.Model.LearningRate)
	mux := http.NewServeMux()
	NewHandlers(svc, cfg).Register(mux)

	rec := doJSON(t, mux, http.MethodPost, "/train", TrainingRequest{
		Features: [][]float64{{1}, {2}, {3}},
		Targets:  []float64{1, 0, 1},
		Epochs:   5,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("oversized sample count: status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodPost, "/train", TrainingRequest{
		Features: [][]float64{{1}},
		Targets:  []float64{1},
		Epochs:   11,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("oversized epochs: status = %d, want 400", rec.Code)
	}
}

func TestConfigure_ReplacesModel(t *testing.T) {
	svc, h := newTestHandler(t)
	trainModel(t, h)

	rec := doJSON(t, h, http.MethodPost, "/configure", ModelConfigRequest{NumFeatures: 5, LearningRate: 0.2})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.NumFeatures() != 5 {
		t.Errorf("num features = %d, want 5", svc.NumFeatures())
	}
	if svc.IsFitted() {
		t.Error("configure must discard the trained state")
	}
}

func TestConfigure_Validation(t *testing.T) {
	_, h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/configure", ModelConfigRequest{NumFeatures: -1, LearningRate: 0.1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative num_features: status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/configure", ModelConfigRequest{NumFeatures: 3, LearningRate: 0})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero learning_rate: status = %d, want 400", rec.Code)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	_, h := newTestHandler(t)
	trainModel(t, h)

	want := doJSON(t, h, http.MethodPost, "/predict", PredictionRequest{Features: []float64{2.0, 0.5, 0.5}})
	var wantResp PredictionResponse
	decodeBody(t, want, &wantResp)

	path := filepath.Join(t.TempDir(), "model.json")
	rec := doJSON(t, h, http.MethodPost, "/save-model", SnapshotRequest{Filepath: path})
	if rec.Code != http.StatusOK {
		t.Fatalf("save: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// A fresh instance restored from the snapshot must answer identically.
	_, fresh := newTestHandler(t)
	rec = doJSON(t, fresh, http.MethodPost, "/load-model", SnapshotRequest{Filepath: path})
	if rec.Code != http.StatusOK {
		t.Fatalf("load: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	got := doJSON(t, fresh, http.MethodPost, "/predict", PredictionRequest{Features: []float64{2.0, 0.5, 0.5}})
	if got.Code != http.StatusOK {
		t.Fatalf("predict after load: status = %d, body = %s", got.Code, got.Body.String())
	}
	var gotResp PredictionResponse
	decodeBody(t, got, &gotResp)
	if gotResp != wantResp {
		t.Errorf("restored prediction = %+v, want %+v", gotResp, wantResp)
	}
}

func TestLoadModel_MissingFile(t *testing.T) {
	_, h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/load-model", SnapshotRequest{
		Filepath: filepath.Join(t.TempDir(), "missing.json"),
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSnapshot_EmptyFilepath(t *testing.T) {
	_, h := newTestHandler(t)

	for _, path := range []string{"/save-model", "/load-model"} {
		rec := doJSON(t, h, http.MethodPost, path, SnapshotRequest{})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
	}
}

func TestMalformedJSON(t *testing.T) {
	_, h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	_, h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp healthResponse
	decodeBody(t, rec, &resp)
	if resp.Status != "ok" || resp.Version != Version {
		t.Errorf("health = %+v", resp)
	}
}
