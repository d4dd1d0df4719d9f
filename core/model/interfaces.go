// Package model provides the estimator state machine, the shared model
// interfaces and the snapshot serialization used by the classifiers in this
// repository.
package model

import "gonum.org/v1/gonum/mat"

// Fitter is the interface for models trainable on gonum matrices.
type Fitter interface {
	// Fit trains the model on X (samples x features) and y (samples x 1).
	Fit(X, y mat.Matrix) error
}

// BatchPredictor is the interface for models that predict over a matrix of
// samples.
type BatchPredictor interface {
	// PredictBatch returns one predicted label per row of X.
	PredictBatch(X mat.Matrix) (mat.Matrix, error)
}

// VectorPredictor is the interface for models that score a single feature
// vector. Implementations document their preconditions; length mismatches
// are the caller's responsibility.
type VectorPredictor interface {
	// PredictRaw returns the raw probability for one feature vector.
	PredictRaw(features []float64) float64

	// Predict returns the class label (0 or 1) for one feature vector.
	Predict(features []float64) int
}

// Persistable is the interface for models that round-trip through a Snapshot.
type Persistable interface {
	// Export captures the full model state.
	Export() *Snapshot
}

// Classifier combines the interfaces a served binary classifier implements.
type Classifier interface {
	Fitter
	BatchPredictor
	VectorPredictor
	Persistable
	IsFitted() bool
}
