// Package log defines standard attribute keys for model operations.
//
// Using these keys consistently across the classifier, the persistence layer
// and the HTTP handlers keeps the JSON logs filterable by operation and by
// data shape.
package log

// Model and operation context.
const (
	// ModelNameKey identifies the type of model.
	// Example: "LogisticRegression"
	ModelNameKey = "model.name"

	// OperationKey specifies the model operation being performed.
	// Standard values: "fit", "predict", "save", "load", "configure"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "linear", "server", "metrics"
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	// Important for debugging shape mismatches.
	FeaturesKey = "data.features"

	// EpochsKey indicates the number of full training passes requested.
	EpochsKey = "train.epochs"
)

// Performance.
const (
	// DurationMsKey records the wall-clock duration of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records a classification accuracy in [0, 1].
	AccuracyKey = "metric.accuracy"
)
