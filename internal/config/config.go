package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DataDirEnv overrides AppConfig.DataDir when set.
const DataDirEnv = "TOPICVIZ_DATA_DIR"

// ModelRule maps a file name token to the model name it denotes.
type ModelRule struct {
	Token string `yaml:"token"`
	Name  string `yaml:"name"`
}

// IndexConfig controls how data files are discovered and classified.
type IndexConfig struct {
	DocumentMarker string      `yaml:"document_marker"`
	LabelMarker    string      `yaml:"label_marker"`
	Models         []ModelRule `yaml:"models"`
}

// LabelConfig controls how topic representations become display labels.
type LabelConfig struct {
	MaxWords int    `yaml:"max_words"`
	Unknown  string `yaml:"unknown"`
}

// ChartConfig configures the terminal chart.
type ChartConfig struct {
	Width int `yaml:"width"`
}

// LoggingConfig configures the slog logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	DataDir string        `yaml:"data_dir"`
	Index   IndexConfig   `yaml:"index"`
	Labels  LabelConfig   `yaml:"labels"`
	Chart   ChartConfig   `yaml:"chart"`
	Logging LoggingConfig `yaml:"logging"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/topicviz/config.yaml.
// If neither exists, it writes defaults to ~/.config/topicviz/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnv(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "topicviz", "config.yaml"), nil
}

// DefaultModelRules returns the built-in model token table.
func DefaultModelRules() []ModelRule {
	return []ModelRule{
		{Token: "UHC", Name: "UHC"},
		{Token: "LM", Name: "LM"},
		{Token: "Brian", Name: "BT"},
	}
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		DataDir: "data",
		Index: IndexConfig{
			DocumentMarker: "document_info",
			LabelMarker:    "topic_representation",
			Models:         DefaultModelRules(),
		},
		Labels:  LabelConfig{MaxWords: 5, Unknown: "Unknown"},
		Chart:   ChartConfig{Width: 60},
		Logging: LoggingConfig{Level: "info"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.Index.DocumentMarker == "" {
		cfg.Index.DocumentMarker = def.Index.DocumentMarker
	}
	if cfg.Index.LabelMarker == "" {
		cfg.Index.LabelMarker = def.Index.LabelMarker
	}
	if len(cfg.Index.Models) == 0 {
		cfg.Index.Models = def.Index.Models
	}
	if cfg.Labels.MaxWords <= 0 {
		cfg.Labels.MaxWords = def.Labels.MaxWords
	}
	if cfg.Labels.Unknown == "" {
		cfg.Labels.Unknown = def.Labels.Unknown
	}
	if cfg.Chart.Width <= 0 {
		cfg.Chart.Width = def.Chart.Width
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}

func applyEnv(cfg *AppConfig) {
	if v, ok := os.LookupEnv(DataDirEnv); ok && v != "" {
		cfg.DataDir = v
	}
}
