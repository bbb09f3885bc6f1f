// Package config loads config.yaml for the server and the console.
//
// A missing file is not an error: every field has a default, so a bare
// checkout downloads the model into ./models and serves on :8080.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Brownie44l1/soil-api/internal/model"
)

const DefaultPath = "config.yaml"

// DefaultModelURL is where an ONNX export of the soil model is expected to be
// published. The upstream release ships only the Keras .h5 file, so deployments
// normally override this with the location of their own converted export.
const DefaultModelURL = "https://github.com/netrialarahmi/TanamTepat/releases/download/agriculture/Model_Fix.onnx"

type ServerConfig struct {
	Port           string `yaml:"port"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

type ModelConfig struct {
	Strategy string `yaml:"strategy"`

	URL      string `yaml:"url"`
	CacheDir string `yaml:"cache_dir"`
	FileName string `yaml:"file_name"`
	// DownloadTimeoutMs of 0 leaves the HTTP client without a timeout.
	DownloadTimeoutMs int `yaml:"download_timeout_ms"`

	StructurePath string `yaml:"structure_path"`
	WeightsPath   string `yaml:"weights_path"`

	InputName  string `yaml:"input_name"`
	OutputName string `yaml:"output_name"`
	ImageSize  int    `yaml:"image_size"`
	Layout     string `yaml:"layout"`
}

type ONNXConfig struct {
	LibraryPath string `yaml:"library_path"`
}

type HistoryConfig struct {
	// DatabaseURL selects the Postgres recorder; empty keeps history in memory.
	DatabaseURL string `yaml:"database_url"`
	Capacity    int    `yaml:"capacity"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Model   ModelConfig   `yaml:"model"`
	ONNX    ONNXConfig    `yaml:"onnx"`
	History HistoryConfig `yaml:"history"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           "8080",
			MaxUploadBytes: 10 << 20,
		},
		Model: ModelConfig{
			Strategy:      string(model.StrategyRemote),
			URL:           DefaultModelURL,
			CacheDir:      "models",
			FileName:      "Model_Fix.onnx",
			StructurePath: filepath.Join("models", "model.json"),
			WeightsPath:   filepath.Join("models", "weights.onnx"),
			InputName:     model.DefaultInputName,
			OutputName:    model.DefaultOutputName,
			ImageSize:     model.DefaultImageSize,
			Layout:        string(model.LayoutNHWC),
		},
		History: HistoryConfig{
			Capacity: 100,
		},
	}
}

// Load reads path over the defaults and applies the PORT override.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch model.Strategy(c.Model.Strategy) {
	case model.StrategyRemote:
		if c.Model.URL == "" {
			return errors.New("model.url is required for the remote strategy")
		}
		if c.Model.FileName == "" {
			return errors.New("model.file_name is required for the remote strategy")
		}
	case model.StrategyLocal:
		if c.Model.StructurePath == "" || c.Model.WeightsPath == "" {
			return errors.New("model.structure_path and model.weights_path are required for the local strategy")
		}
	default:
		return fmt.Errorf("unknown model.strategy %q (want remote or local)", c.Model.Strategy)
	}
	switch model.Layout(c.Model.Layout) {
	case model.LayoutNHWC, model.LayoutNCHW:
	default:
		return fmt.Errorf("unknown model.layout %q (want nhwc or nchw)", c.Model.Layout)
	}
	if c.Model.ImageSize <= 0 {
		return fmt.Errorf("model.image_size must be positive, got %d", c.Model.ImageSize)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.History.Capacity <= 0 {
		return fmt.Errorf("history.capacity must be positive, got %d", c.History.Capacity)
	}
	return nil
}

// Provider builds the model provider settings.
func (c *Config) Provider() model.ProviderConfig {
	return model.ProviderConfig{
		Strategy:      model.Strategy(c.Model.Strategy),
		URL:           c.Model.URL,
		CacheDir:      c.Model.CacheDir,
		FileName:      c.Model.FileName,
		StructurePath: c.Model.StructurePath,
		WeightsPath:   c.Model.WeightsPath,
		Metadata: model.NewMetadata(
			c.Model.InputName,
			c.Model.OutputName,
			c.Model.ImageSize,
			model.Layout(c.Model.Layout),
		),
	}
}

func (c *Config) DownloadTimeout() time.Duration {
	if c.Model.DownloadTimeoutMs <= 0 {
		return 0
	}
	return time.Duration(c.Model.DownloadTimeoutMs) * time.Millisecond
}
