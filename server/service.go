// Package server exposes the logistic regression classifier over HTTP:
// configure, train, predict, and snapshot persistence.
package server

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/jeffreire/creditrisk-api/core/model"
	"github.com/jeffreire/creditrisk-api/linear"
	"github.com/jeffreire/creditrisk-api/pkg/errors"
	"github.com/jeffreire/creditrisk-api/pkg/log"
)

// ModelService owns the single shared classifier instance. The model itself
// is a plain value with no internal locking; every read and write goes
// through one exclusive mutex here, so a concurrent predict can never
// observe a partially updated weight vector. Train holds the lock for its
// whole duration; large epochs x samples products block other requests until
// done, which is why the handlers bound request sizes before calling in.
type ModelService struct {
	mu    sync.Mutex
	model *linear.LogisticRegression
}

// NewModelService creates a service around a fresh zero-weight model.
func NewModelService(numFeatures int, learningRate float64) *ModelService {
	return &ModelService{
		model: linear.NewLogisticRegression(numFeatures, learningRate),
	}
}

// TrainResult reports what a completed training run did.
type TrainResult struct {
	Samples  int
	Epochs   int
	Accuracy float64
	Duration time.Duration
}

// Predict returns the class label and raw probability for one feature
// vector. It fails with a NotFittedError before any training or restore has
// happened, and with a DimensionError when the vector length does not match
// the model's feature count.
func (s *ModelService) Predict(features []float64) (int, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.model.IsFitted() {
		return 0, 0, errors.NewNotFittedError("LogisticRegression", "Predict")
	}
	if len(features) != s.model.NumFeatures() {
		return 0, 0, errors.NewDimensionError("Predict", s.model.NumFeatures(), len(features), 1)
	}

	return s.model.Predict(features), s.model.PredictRaw(features), nil
}

// Configure replaces the instance wholesale with a fresh zero-weight model.
// The previous state, including the fitted flag, is discarded.
func (s *ModelService) Configure(numFeatures int, learningRate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.model = linear.NewLogisticRegression(numFeatures, learningRate)

	slog.Info("model configured",
		slog.String(log.ModelNameKey, "LogisticRegression"),
		slog.String(log.OperationKey, "configure"),
		slog.Int(log.FeaturesKey, numFeatures),
		slog.Float64("learning_rate", learningRate),
	)
}

// Train validates the request and runs the training sweep under the lock.
// Returned validation errors name the offending parameter; a per-sample
// length mismatch reports the sample index.
func (s *ModelService) Train(features [][]float64, targets []float64, epochs int) (result TrainResult, err error) {
	// The core trusts its preconditions; a slipped validation would panic
	// instead of corrupting state silently, and is surfaced as an error.
	defer errors.Recover(&err, "ModelService.Train")

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(features) == 0 || len(targets) == 0 {
		return TrainResult{}, errors.NewValidationError("features", "training sets must not be empty", len(features))
	}
	if len(features) != len(targets) {
		return TrainResult{}, errors.NewValidationError("targets",
			fmt.Sprintf("sample count mismatch: %d features vs %d targets", len(features), len(targets)),
			len(targets))
	}
	expected := s.model.NumFeatures()
	for i, sample := range features {
		if len(sample) != expected {
			return TrainResult{}, errors.NewValidationError("features",
				fmt.Sprintf("sample %d has %d features, expected %d", i, len(sample), expected),
				i)
		}
	}
	if epochs < 0 {
		return TrainResult{}, errors.NewValidationError("epochs", "must be non-negative", epochs)
	}

	start := time.Now()
	s.model.Train(features, targets, epochs)
	elapsed := time.Since(start)

	result = TrainResult{
		Samples:  len(features),
		Epochs:   epochs,
		Accuracy: s.trainingAccuracy(features, targets),
		Duration: elapsed,
	}

	slog.Info("model trained",
		slog.String(log.ModelNameKey, "LogisticRegression"),
		slog.String(log.OperationKey, "fit"),
		slog.Int(log.SamplesKey, result.Samples),
		slog.Int(log.FeaturesKey, expected),
		slog.Int(log.EpochsKey, result.Epochs),
		slog.Int64(log.DurationMsKey, elapsed.Milliseconds()),
		slog.Float64(log.AccuracyKey, result.Accuracy),
	)

	return result, nil
}

// Save writes the current model snapshot to path. I/O and encoding faults
// are reported with the cause attached and do not mutate the model.
func (s *ModelService) Save(path string) error {
	s.mu.Lock()
	snap := s.model.Export()
	s.mu.Unlock()

	if err := model.SaveSnapshot(snap, path); err != nil {
		return err
	}

	slog.Info("model saved",
		slog.String(log.ModelNameKey, "LogisticRegression"),
		slog.String(log.OperationKey, "save"),
		slog.String("path", path),
	)
	return nil
}

// Load replaces the instance with the snapshot at path. The snapshot is
// parsed into a fresh model first; on any failure the current instance is
// left untouched. A successfully loaded model is forced to initialized
// regardless of the stored flag: callers are trusted to only load
// genuinely trained snapshots.
func (s *ModelService) Load(path string) error {
	snap, err := model.LoadSnapshot(path)
	if err != nil {
		return err
	}

	loaded := linear.FromSnapshot(snap)
	loaded.SetFitted()

	s.mu.Lock()
	s.model = loaded
	s.mu.Unlock()

	slog.Info("model loaded",
		slog.String(log.ModelNameKey, "LogisticRegression"),
		slog.String(log.OperationKey, "load"),
		slog.String("path", path),
		slog.Int(log.FeaturesKey, loaded.NumFeatures()),
	)
	return nil
}

// NumFeatures reports the current model's feature count.
func (s *ModelService) NumFeatures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.NumFeatures()
}

// IsFitted reports whether the current model is ready for prediction.
func (s *ModelService) IsFitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.IsFitted()
}

// trainingAccuracy scores the model on its own training set. Caller holds
// the lock.
func (s *ModelService) trainingAccuracy(features [][]float64, targets []float64) float64 {
	n := len(features)
	cols := s.model.NumFeatures()
	if cols == 0 {
		// Constant-bias model: score by direct prediction.
		correct := 0
		for i := range features {
			if float64(s.model.Predict(features[i])) == targets[i] {
				correct++
			}
		}
		return float64(correct) / float64(n)
	}

	X := mat.NewDense(n, cols, nil)
	y := mat.NewDense(n, 1, nil)
	for i := range features {
		X.SetRow(i, features[i])
		y.Set(i, 0, targets[i])
	}
	return s.model.Score(X, y)
}
