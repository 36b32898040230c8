package datasets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the options the loader reads.
type Config struct {
	// DataRoot is the directory holding one sub-directory per dataset.
	// Default: "data".
	DataRoot string `json:"data_root"`

	// Dataset selects the archive directory under DataRoot.
	Dataset string `json:"dataset"`

	// DatasetPercent is the fraction of samples kept from each archive, in (0, 1].
	DatasetPercent float64 `json:"dataset_percent"`

	// BatchSize is the number of samples per batch.
	BatchSize int `json:"batch_size"`

	// NumSteps is the number of batches a resampling (training) pass yields.
	NumSteps int `json:"num_steps"`

	// Seed controls subsampling and shuffling. If zero, time-based seed is used.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns a Config with the defaults used when a field is not
// set in a config file.
func DefaultConfig() Config {
	return Config{
		DataRoot:       "data",
		DatasetPercent: 1.0,
		BatchSize:      32,
		NumSteps:       1000,
	}
}

// LoadConfig reads a JSON config file on top of DefaultConfig. Fields
// missing from the file keep their default.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first option the loader cannot work with.
func (c Config) Validate() error {
	if c.Dataset == "" {
		return fmt.Errorf("%w: dataset is empty", ErrInvalidConfiguration)
	}
	if !(c.DatasetPercent > 0 && c.DatasetPercent <= 1) {
		return fmt.Errorf("%w: dataset_percent must be in (0, 1], got %v", ErrInvalidConfiguration, c.DatasetPercent)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch_size must be > 0, got %d", ErrInvalidConfiguration, c.BatchSize)
	}
	if c.NumSteps <= 0 {
		return fmt.Errorf("%w: num_steps must be > 0, got %d", ErrInvalidConfiguration, c.NumSteps)
	}
	return nil
}

// ArchivePath returns the archive location for split.
func (c Config) ArchivePath(split Split) string {
	root := c.DataRoot
	if root == "" {
		root = "data"
	}
	return filepath.Join(root, c.Dataset, string(split)+".npz")
}
