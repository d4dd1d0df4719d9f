package server

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/jeffreire/creditrisk-api/pkg/errors"
)

// Config holds the service configuration, loadable from a YAML file.
type Config struct {
	Addr string `yaml:"addr"`

	Model struct {
		NumFeatures  int     `yaml:"num_features"`
		LearningRate float64 `yaml:"learning_rate"`
		// SnapshotPath, when set, is restored at startup instead of
		// starting from a fresh zero-weight model.
		SnapshotPath string `yaml:"snapshot_path"`
	} `yaml:"model"`

	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`

	// MaxTrainSamples and MaxTrainEpochs bound a single training request.
	// Training runs to completion under the model lock, so unbounded
	// requests would stall every other caller.
	MaxTrainSamples int `yaml:"max_train_samples"`
	MaxTrainEpochs  int `yaml:"max_train_epochs"`

	ReadHeaderTimeoutSeconds int `yaml:"read_header_timeout_seconds"`

	// RequestTimeoutSeconds caps the wall-clock time of one request; 0
	// disables the cap.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// ReadHeaderTimeout returns the header read timeout as a duration.
func (c Config) ReadHeaderTimeout() time.Duration {
	return time.Duration(c.ReadHeaderTimeoutSeconds) * time.Second
}

// RequestTimeout returns the per-request timeout as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// DefaultConfig mirrors the defaults the service started with historically:
// three features, learning rate 0.01, listening on port 3000.
func DefaultConfig() Config {
	var cfg Config
	cfg.Addr = "127.0.0.1:3000"
	cfg.Model.NumFeatures = 3
	cfg.Model.LearningRate = 0.01
	cfg.Log.Level = "info"
	cfg.Log.MaxSizeMB = 50
	cfg.Log.MaxBackups = 3
	cfg.MaxTrainSamples = 100000
	cfg.MaxTrainEpochs = 100000
	cfg.ReadHeaderTimeoutSeconds = 10
	cfg.RequestTimeoutSeconds = 60
	return cfg
}

// LoadConfig reads a YAML config file over the defaults. A missing file is
// not an error; the defaults are returned unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.NewModelError("LoadConfig", "failed to open config file", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return cfg, errors.NewModelError("LoadConfig", "failed to parse config file", err)
	}
	return cfg, nil
}
