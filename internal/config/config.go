package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kozaktomas/face-gate/internal/constants"
	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

type Config struct {
	Recognizer RecognizerConfig
	Store      StoreConfig
	Web        WebConfig
	Models     ModelsConfig
}

type RecognizerConfig struct {
	URL       string  // base URL of the external face recognition service
	Model     string  // model preset name, see models.yaml (defaults to vgg-face)
	Threshold float64 // max cosine distance for a match; 0 means use the model preset
}

type StoreConfig struct {
	Path      string // root directory of the identity store
	IndexPath string // path of the cached index artifact (defaults to <Path>/index.bin)
}

type WebConfig struct {
	Host string
	Port int
}

type ModelsConfig struct {
	Models map[string]ModelPreset `yaml:"models"`
}

type ModelPreset struct {
	Dim       int     `yaml:"dim"`
	Threshold float64 `yaml:"threshold"`
	Metric    string  `yaml:"metric"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// dataDir resolves the identity store root. RENDER_DISK_PATH is honored for
// deployments where the persistent disk mount point is injected by the platform.
func dataDir() string {
	if p := os.Getenv("FACE_DB_PATH"); p != "" {
		return p
	}
	if p := os.Getenv("RENDER_DISK_PATH"); p != "" {
		return p
	}
	return constants.DefaultDataDir
}

func Load() *Config {
	var models ModelsConfig
	if err := yaml.Unmarshal(modelsYAML, &models); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded models.yaml: " + err.Error())
	}

	root := dataDir()
	indexPath := os.Getenv("INDEX_PATH")
	if indexPath == "" {
		indexPath = filepath.Join(root, constants.IndexFileName)
	}

	return &Config{
		Recognizer: RecognizerConfig{
			URL:       os.Getenv("RECOGNIZER_URL"),
			Model:     os.Getenv("RECOGNIZER_MODEL"),
			Threshold: envFloat("MATCH_THRESHOLD", 0),
		},
		Store: StoreConfig{
			Path:      root,
			IndexPath: indexPath,
		},
		Web: WebConfig{
			Host: os.Getenv("WEB_HOST"),
			Port: envInt("WEB_PORT", 8080),
		},
		Models: models,
	}
}

// ModelName returns the configured recognizer model, falling back to vgg-face.
func (c *Config) ModelName() string {
	if c.Recognizer.Model != "" {
		return c.Recognizer.Model
	}
	return "vgg-face"
}

// MatchThreshold resolves the distance threshold for identification:
// explicit env override first, then the model preset, then the global default.
func (c *Config) MatchThreshold() float64 {
	if c.Recognizer.Threshold > 0 {
		return c.Recognizer.Threshold
	}
	if preset, ok := c.Models.Models[c.ModelName()]; ok && preset.Threshold > 0 {
		return preset.Threshold
	}
	return constants.DefaultDistanceThreshold
}
