package linear

// Option is a function that configures LogisticRegression
type Option func(*LogisticRegression)

// WithEpochs sets the number of full training passes used by Fit.
// Train takes its epoch count explicitly and ignores this setting.
func WithEpochs(epochs int) Option {
	return func(lr *LogisticRegression) {
		lr.epochs = epochs
	}
}
