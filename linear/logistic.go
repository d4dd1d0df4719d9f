// Package linear provides the logistic regression classifier served by the
// creditrisk API.
package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jeffreire/creditrisk-api/core/model"
	"github.com/jeffreire/creditrisk-api/metrics"
	"github.com/jeffreire/creditrisk-api/pkg/errors"
)

var _ model.Classifier = (*LogisticRegression)(nil)

// LogisticRegression implements a binary classifier trained by per-sample
// gradient descent.
//
// The feature count is fixed at construction: Weights is never resized for
// the lifetime of an instance. Reconfiguration means whole-instance
// replacement by the owner.
//
// The value itself carries no synchronization. A shared instance accessed by
// concurrent callers must be serialized behind a single exclusive lock for
// the full duration of any Train or Predict call, since Train applies many
// small in-place updates that a concurrent read must not observe partially.
type LogisticRegression struct {
	model.BaseEstimator

	Weights      []float64 // per-feature coefficients, zero-initialized
	Bias         float64   // scalar offset added to the weighted sum
	LearningRate float64   // gradient step size

	epochs int // full passes used by Fit
}

// NewLogisticRegression creates a classifier for numFeatures inputs with all
// weights and the bias at zero. numFeatures == 0 is legal and yields a
// constant-bias model.
func NewLogisticRegression(numFeatures int, learningRate float64, opts ...Option) *LogisticRegression {
	lr := &LogisticRegression{
		Weights:      make([]float64, numFeatures),
		Bias:         0.0,
		LearningRate: learningRate,
		epochs:       100,
	}

	for _, opt := range opts {
		opt(lr)
	}

	return lr
}

// NumFeatures returns the fixed feature count of this instance.
func (lr *LogisticRegression) NumFeatures() int {
	return len(lr.Weights)
}

// Train runs epochs full passes of per-sample gradient updates over X and y
// in their given order. Each step uses the current weights, not the
// epoch-start weights, so sample order affects the trajectory.
//
// Precondition (not checked here, the boundary validates before calling):
// len(X) == len(y), and every sample has exactly NumFeatures() values.
//
// The fitted flag is set unconditionally once all epochs complete; epochs == 0
// performs no updates but still marks the model fitted.
func (lr *LogisticRegression) Train(X [][]float64, y []float64, epochs int) {
	for epoch := 0; epoch < epochs; epoch++ {
		for i, features := range X {
			prediction := sigmoid(lr.WeightedSum(features))
			err := prediction - y[i]

			for j := range lr.Weights {
				lr.Weights[j] -= lr.LearningRate * err * features[j]
			}
			lr.Bias -= lr.LearningRate * err
		}
	}
	lr.SetFitted()
}

// WeightedSum returns dot(Weights, features) + Bias.
//
// Precondition: len(features) >= NumFeatures(); shorter inputs panic. The
// service boundary converts length mismatches into a DimensionError before
// this is reached.
func (lr *LogisticRegression) WeightedSum(features []float64) float64 {
	sum := lr.Bias
	for j := range lr.Weights {
		sum += lr.Weights[j] * features[j]
	}
	return sum
}

// PredictRaw returns sigmoid(WeightedSum(features)), the probability of the
// positive class. It does not check the fitted flag; gating prediction on
// readiness is a boundary policy.
func (lr *LogisticRegression) PredictRaw(features []float64) float64 {
	return sigmoid(lr.WeightedSum(features))
}

// Predict returns 1 if PredictRaw(features) > 0.5, else 0. The inequality is
// strict: a raw score of exactly 0.5 classifies as 0.
func (lr *LogisticRegression) Predict(features []float64) int {
	if lr.PredictRaw(features) > 0.5 {
		return 1
	}
	return 0
}

// Fit is the validated batch-training surface over gonum matrices. It checks
// shapes, runs Train for the configured number of epochs, and emits a
// ConvergenceWarning when the trained model does no better than chance on
// its own training set.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if yRows != nSamples {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("LogisticRegression.Fit", "y must be a column vector")
	}
	if nFeatures != len(lr.Weights) {
		return errors.NewDimensionError("LogisticRegression.Fit", len(lr.Weights), nFeatures, 1)
	}

	samples := make([][]float64, nSamples)
	targets := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		row := make([]float64, nFeatures)
		for j := 0; j < nFeatures; j++ {
			row[j] = X.At(i, j)
		}
		samples[i] = row
		targets[i] = y.At(i, 0)
	}

	lr.Train(samples, targets, lr.epochs)

	if acc := lr.Score(X, y); acc <= 0.5 {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.epochs,
			"training accuracy did not exceed 0.5; the data may not be linearly separable"))
	}

	return nil
}

// PredictBatch returns one class label per row of X.
func (lr *LogisticRegression) PredictBatch(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "PredictBatch")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != len(lr.Weights) {
		return nil, errors.NewDimensionError("LogisticRegression.PredictBatch", len(lr.Weights), nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	row := make([]float64, nFeatures)
	for i := 0; i < nSamples; i++ {
		mat.Row(row, i, X)
		predictions.Set(i, 0, float64(lr.Predict(row)))
	}
	return predictions, nil
}

// PredictProba returns a two-column matrix of class probabilities, P(y=0)
// and P(y=1), for each row of X.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "PredictProba")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != len(lr.Weights) {
		return nil, errors.NewDimensionError("LogisticRegression.PredictProba", len(lr.Weights), nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, 2, nil)
	row := make([]float64, nFeatures)
	for i := 0; i < nSamples; i++ {
		mat.Row(row, i, X)
		p := lr.PredictRaw(row)
		probas.Set(i, 0, 1.0-p)
		probas.Set(i, 1, p)
	}
	return probas, nil
}

// Score returns the mean accuracy of the model on X against labels y, or 0
// when prediction fails.
func (lr *LogisticRegression) Score(X, y mat.Matrix) float64 {
	predictions, err := lr.PredictBatch(X)
	if err != nil {
		return 0.0
	}

	nSamples, _ := X.Dims()
	yTrue := mat.NewVecDense(nSamples, nil)
	yPred := mat.NewVecDense(nSamples, nil)
	for i := 0; i < nSamples; i++ {
		yTrue.SetVec(i, y.At(i, 0))
		yPred.SetVec(i, predictions.At(i, 0))
	}

	acc, err := metrics.Accuracy(yTrue, yPred)
	if err != nil {
		return 0.0
	}
	return acc
}

// Export captures the full model state for serialization. All four fields
// round-trip losslessly through the snapshot schema.
func (lr *LogisticRegression) Export() *model.Snapshot {
	weights := make([]float64, len(lr.Weights))
	copy(weights, lr.Weights)

	return &model.Snapshot{
		Weights:      weights,
		Bias:         lr.Bias,
		LearningRate: lr.LearningRate,
		Initialized:  lr.IsFitted(),
	}
}

// FromSnapshot reconstructs a classifier from a snapshot. The snapshot's
// initialized flag is honored as-is; forcing restored models to be treated
// as trained is the restore caller's policy, not this function's.
func FromSnapshot(s *model.Snapshot) *LogisticRegression {
	lr := NewLogisticRegression(len(s.Weights), s.LearningRate)
	copy(lr.Weights, s.Weights)
	lr.Bias = s.Bias
	if s.Initialized {
		lr.SetFitted()
	}
	return lr
}

// sigmoid computes the logistic function 1 / (1 + exp(-z)). No clamping is
// applied; very large-magnitude z saturates in float64 arithmetic.
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
