// Package creditrisk provides a logistic regression credit-risk classifier
// with an HTTP serving layer.
//
// The classifier learns by online gradient descent: each epoch sweeps the
// training samples in order and updates the weight vector after every
// sample. Trained models serialize to a stable JSON snapshot that can be
// saved, shipped, and restored into a fresh process.
//
// # Quick Start
//
// Train a model and predict directly from Go:
//
//	package main
//
//	import (
//	    "fmt"
//
//	    "github.com/jeffreire/creditrisk-api/linear"
//	)
//
//	func main() {
//	    X := [][]float64{{0.2, 0.9}, {0.8, 0.1}}
//	    y := []float64{1, 0}
//
//	    model := linear.NewLogisticRegression(2, 0.1)
//	    model.Train(X, y, 1000)
//
//	    fmt.Println(model.Predict([]float64{0.3, 0.8}))
//	}
//
// Or run the HTTP service:
//
//	go run ./cmd/creditrisk --config config.yaml
//
// # Packages
//
//   - linear: the LogisticRegression estimator
//   - core/model: estimator state machine and snapshot persistence
//   - metrics: classification metrics (accuracy, log-loss, AUC)
//   - server: HTTP handlers, model service, and configuration
//   - pkg/errors: structured error taxonomy and warnings
//   - pkg/log: slog setup with stacktrace-aware formatting
package creditrisk
