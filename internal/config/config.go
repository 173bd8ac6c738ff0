// Package config provides configuration management for ragtex.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"ragtex/internal/logger"
	"ragtex/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "ragtex-config.json"
	// EnvOpenAIAPIKey is the environment variable name for OpenAI API key
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvOpenAIBaseURL is the environment variable name for OpenAI base URL
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	// EnvOpenAIModel is the environment variable name for the chat model
	EnvOpenAIModel = "OPENAI_MODEL"
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the default OpenAI model to use
	DefaultModel = "gpt-4o-mini"

	DefaultCollection   = "docs"
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 120
	DefaultTopK         = 5
	DefaultEmbedDim     = 384
	DefaultLogLevel     = "info"

	// DefaultMaxAnswerBytes bounds the text handed to the math normalizer (1 MiB)
	DefaultMaxAnswerBytes = 1 << 20
)

// ConfigManager manages application configuration
type ConfigManager struct {
	configPath string
	config     *types.Config
}

// NewConfigManager creates a new ConfigManager with the specified config path.
// If configPath is empty, it uses the default path in user's home directory.
// A .yaml or .yml extension selects YAML; anything else is JSON.
func NewConfigManager(configPath string) (*ConfigManager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "ragtex", DefaultConfigFileName)
	}

	logger.Debug("ConfigManager initialized", logger.String("configPath", configPath))
	return &ConfigManager{
		configPath: configPath,
		config:     DefaultConfig(),
	}, nil
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *types.Config {
	return &types.Config{
		OpenAIBaseURL:  DefaultBaseURL,
		OpenAIModel:    DefaultModel,
		Collection:     DefaultCollection,
		ChunkSize:      DefaultChunkSize,
		ChunkOverlap:   DefaultChunkOverlap,
		TopK:           DefaultTopK,
		EmbedDim:       DefaultEmbedDim,
		LogLevel:       DefaultLogLevel,
		MaxAnswerBytes: DefaultMaxAnswerBytes,
		Normalizer: types.NormalizerConfig{
			BareCommandMode:              "blanket",
			WrapProseIndices:             true,
			ProseMaxWords:                8,
			ProseMaxWordChars:            30,
			FormulaMinCommands:           2,
			FormulaMinSymbolsWithCommand: 4,
			FormulaMinScriptGroups:       2,
			DenseMinSymbols:              4,
			DenseMaxWords:                1,
		},
	}
}

func (m *ConfigManager) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(m.configPath))
	return ext == ".yaml" || ext == ".yml"
}

// Load loads configuration from the config file.
// If the file doesn't exist, it uses default values.
// Environment variables fill the LLM settings the file leaves empty.
func (m *ConfigManager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	// fields absent from the file keep their defaults, except the LLM
	// settings, which go to the environment first
	config := DefaultConfig()
	config.OpenAIBaseURL = ""
	config.OpenAIModel = ""

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
		logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
	} else if err := m.unmarshal(data, config); err != nil {
		logger.Warn("invalid config file format, using defaults", logger.String("path", m.configPath), logger.Err(err))
		config = DefaultConfig()
		config.OpenAIBaseURL = ""
		config.OpenAIModel = ""
	} else {
		logger.Info("configuration loaded successfully",
			logger.String("path", m.configPath),
			logger.Int("apiKeyLength", len(config.OpenAIAPIKey)),
			logger.String("baseURL", config.OpenAIBaseURL),
			logger.String("model", config.OpenAIModel))
	}

	applyEnv(config)
	applyDefaults(config)
	m.config = config
	return nil
}

func (m *ConfigManager) unmarshal(data []byte, config *types.Config) error {
	if m.isYAML() {
		return yaml.Unmarshal(data, config)
	}
	return json.Unmarshal(data, config)
}

func (m *ConfigManager) marshal(config *types.Config) ([]byte, error) {
	if m.isYAML() {
		return yaml.Marshal(config)
	}
	return json.MarshalIndent(config, "", "  ")
}

func applyEnv(config *types.Config) {
	if config.OpenAIAPIKey == "" {
		config.OpenAIAPIKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if config.OpenAIBaseURL == "" {
		config.OpenAIBaseURL = os.Getenv(EnvOpenAIBaseURL)
	}
	if config.OpenAIModel == "" {
		config.OpenAIModel = os.Getenv(EnvOpenAIModel)
	}
}

// applyDefaults fills empty strings and non-positive sizes.
func applyDefaults(config *types.Config) {
	defaults := DefaultConfig()
	if config.OpenAIBaseURL == "" {
		config.OpenAIBaseURL = defaults.OpenAIBaseURL
	}
	if config.OpenAIModel == "" {
		config.OpenAIModel = defaults.OpenAIModel
	}
	if config.Collection == "" {
		config.Collection = defaults.Collection
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = defaults.ChunkSize
	}
	if config.ChunkOverlap < 0 {
		config.ChunkOverlap = defaults.ChunkOverlap
	}
	if config.TopK <= 0 {
		config.TopK = defaults.TopK
	}
	if config.EmbedDim <= 0 {
		config.EmbedDim = defaults.EmbedDim
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.MaxAnswerBytes <= 0 {
		config.MaxAnswerBytes = defaults.MaxAnswerBytes
	}
	if config.Normalizer.BareCommandMode == "" {
		config.Normalizer.BareCommandMode = defaults.Normalizer.BareCommandMode
	}
}

// Validate checks the invariants the rest of the application relies on.
func Validate(config *types.Config) error {
	switch {
	case config == nil:
		return types.NewAppError(types.ErrConfig, "config is nil", nil)
	case config.ChunkSize <= 0:
		return types.NewAppErrorWithDetails(types.ErrConfig, "chunk_size must be positive", strconv.Itoa(config.ChunkSize), nil)
	case config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize:
		return types.NewAppErrorWithDetails(types.ErrConfig, "chunk_overlap must be in [0, chunk_size)", strconv.Itoa(config.ChunkOverlap), nil)
	case config.TopK <= 0:
		return types.NewAppErrorWithDetails(types.ErrConfig, "top_k must be positive", strconv.Itoa(config.TopK), nil)
	case config.EmbedDim <= 0:
		return types.NewAppErrorWithDetails(types.ErrConfig, "embed_dim must be positive", strconv.Itoa(config.EmbedDim), nil)
	case config.MaxAnswerBytes <= 0:
		return types.NewAppErrorWithDetails(types.ErrConfig, "max_answer_bytes must be positive", strconv.Itoa(config.MaxAnswerBytes), nil)
	}

	if _, ok := logger.ParseLevel(config.LogLevel); config.LogLevel != "" && !ok {
		return types.NewAppErrorWithDetails(types.ErrConfig, "invalid log_level", config.LogLevel, nil)
	}
	switch config.Normalizer.BareCommandMode {
	case "", "blanket", "whitelist", "off":
	default:
		return types.NewAppErrorWithDetails(types.ErrConfig, "invalid bare_command_mode", config.Normalizer.BareCommandMode, nil)
	}
	return nil
}

// Save saves the current configuration to the config file.
func (m *ConfigManager) Save() error {
	logger.Debug("saving configuration", logger.String("path", m.configPath))

	// Ensure the directory exists
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := m.marshal(m.GetConfig())
	if err != nil {
		logger.Error("failed to marshal config", err)
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	// the file may hold an API key
	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		logger.Error("failed to write config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved successfully", logger.String("path", m.configPath))
	return nil
}

// GetAPIKey returns the OpenAI API key.
// It first checks the config file value, then falls back to the environment variable.
func (m *ConfigManager) GetAPIKey() string {
	if m.config != nil && m.config.OpenAIAPIKey != "" {
		return m.config.OpenAIAPIKey
	}
	return os.Getenv(EnvOpenAIAPIKey)
}

// GetBaseURL returns the OpenAI API base URL.
// It first checks the config file value, then falls back to the environment variable.
func (m *ConfigManager) GetBaseURL() string {
	if m.config != nil && m.config.OpenAIBaseURL != "" {
		return m.config.OpenAIBaseURL
	}
	if envURL := os.Getenv(EnvOpenAIBaseURL); envURL != "" {
		return envURL
	}
	return DefaultBaseURL
}

// GetModel returns the OpenAI model to use.
func (m *ConfigManager) GetModel() string {
	if m.config != nil && m.config.OpenAIModel != "" {
		return m.config.OpenAIModel
	}
	return DefaultModel
}

// GetConfig returns the current configuration.
func (m *ConfigManager) GetConfig() *types.Config {
	if m.config == nil {
		return DefaultConfig()
	}
	return m.config
}

// SetConfig sets the entire configuration.
func (m *ConfigManager) SetConfig(config *types.Config) {
	m.config = config
}

// GetConfigPath returns the path to the config file.
func (m *ConfigManager) GetConfigPath() string {
	return m.configPath
}

// Update applies fn to a copy of the current configuration, validates the
// result and saves it. The stored configuration is left unchanged on error.
func (m *ConfigManager) Update(fn func(*types.Config)) error {
	logger.Info("updating configuration")
	updated := *m.GetConfig()
	fn(&updated)
	if err := Validate(&updated); err != nil {
		logger.Warn("rejected configuration update", logger.Err(err))
		return err
	}

	previous := m.config
	m.config = &updated
	if err := m.Save(); err != nil {
		m.config = previous
		return err
	}
	return nil
}
