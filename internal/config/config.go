// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pii-analyzer/internal/enhancer"
	"pii-analyzer/internal/recognizers/builtin"
	"pii-analyzer/internal/recognizers/pattern"
)

// Environment variables read by ApplyEnv and FindConfigFile
const (
	EnvConfig = "PII_ANALYZER_CONFIG"
	EnvAddr   = "PII_ANALYZER_ADDR"
	EnvNERURL = "PII_ANALYZER_NER_URL"
	EnvDebug  = "PII_ANALYZER_DEBUG"
)

// Defaults used when the configuration file does not set a value
const (
	DefaultLanguage       = "fr"
	DefaultScoreThreshold = 0.35
	DefaultAddress        = ":3000"
)

// Config represents the analyzer configuration
type Config struct {
	SupportedLanguages    []string `yaml:"supported_languages"`
	DefaultLanguage       string   `yaml:"default_language"`
	DefaultScoreThreshold float64  `yaml:"default_score_threshold"`

	// NLP engine (NER sidecar) configuration
	NLPEngine NLPEngineConfig `yaml:"nlp_engine_configuration"`

	// Context enhancement settings
	Context enhancer.Config `yaml:"context"`

	// Names of the predefined recognizers to enable, in registration order
	PredefinedRecognizers []string `yaml:"predefined_recognizers"`

	// Custom pattern recognizers, registered after the predefined ones
	Recognizers []pattern.Definition `yaml:"recognizers"`

	// Allow lists
	AllowList           []string            `yaml:"allow_list"`
	AllowListByLanguage map[string][]string `yaml:"allow_list_by_language"`
	AllowListFile       string              `yaml:"allow_list_file"`

	// HTTP server settings
	Server ServerConfig `yaml:"server"`
}

// NLPEngineConfig describes the NER sidecar. An empty endpoint disables NER.
type NLPEngineConfig struct {
	EngineName     string        `yaml:"nlp_engine_name"`
	Models         []ModelConfig `yaml:"models"`
	Endpoint       string        `yaml:"endpoint"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxConcurrency int           `yaml:"max_concurrency"`
	Languages      []string      `yaml:"languages"`

	// MaxRetries bounds retries of transient sidecar failures (0 disables)
	MaxRetries int `yaml:"max_retries"`
}

// ModelConfig names the model loaded by the sidecar for one language
type ModelConfig struct {
	LangCode  string `yaml:"lang_code"`
	ModelName string `yaml:"model_name"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Address string `yaml:"address"`
	Debug   bool   `yaml:"debug"`
}

// Enabled reports whether a NER sidecar is configured
func (n NLPEngineConfig) Enabled() bool {
	return strings.TrimSpace(n.Endpoint) != ""
}

// EffectiveLanguages returns the languages the sidecar serves: the explicit
// list, else the model languages, else fallback
func (n NLPEngineConfig) EffectiveLanguages(fallback []string) []string {
	if len(n.Languages) > 0 {
		return slices.Clone(n.Languages)
	}
	if len(n.Models) > 0 {
		langs := make([]string, 0, len(n.Models))
		for _, m := range n.Models {
			if m.LangCode != "" && !slices.Contains(langs, m.LangCode) {
				langs = append(langs, m.LangCode)
			}
		}
		return langs
	}
	return slices.Clone(fallback)
}

// Default returns the configuration used when no file is given
func Default() *Config {
	config := &Config{
		SupportedLanguages:    []string{DefaultLanguage},
		DefaultLanguage:       DefaultLanguage,
		DefaultScoreThreshold: DefaultScoreThreshold,
		Context:               enhancer.DefaultConfig(),
		PredefinedRecognizers: builtin.Names(),
		AllowListByLanguage:   make(map[string][]string),
	}

	config.NLPEngine.EngineName = "spacy"
	config.NLPEngine.Timeout = 10 * time.Second
	config.NLPEngine.MaxConcurrency = 4
	config.NLPEngine.MaxRetries = 2

	config.Server.Address = DefaultAddress
	return config
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	// An empty file keeps the defaults; anything else must be a mapping
	if len(doc.Content) > 0 && doc.Content[0].Tag != "!!null" {
		if root := doc.Content[0]; root.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("error parsing config file: line %d: expected a mapping of settings", root.Line)
		}
		if err := doc.Decode(config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// A file that lists supported languages without a default picks the first one
	if !containsField(data, "default_language") && !slices.Contains(config.SupportedLanguages, config.DefaultLanguage) &&
		len(config.SupportedLanguages) > 0 {
		config.DefaultLanguage = config.SupportedLanguages[0]
	}

	// Relative allow-list files are resolved against the config file
	if config.AllowListFile != "" && !filepath.IsAbs(config.AllowListFile) {
		config.AllowListFile = filepath.Join(filepath.Dir(cleanPath), config.AllowListFile)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads configuration from configFile, or searches
// standard locations when configFile is empty. The defaults apply only when
// the search finds nothing; a named file that is missing or invalid is an error.
func LoadConfigOrDefault(configFile string) (*Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}
	return LoadConfig(configPath)
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	if fromEnv := os.Getenv(EnvConfig); fromEnv != "" {
		return fromEnv
	}

	for _, name := range []string{"config.yaml", "pii-analyzer.yaml", "pii-analyzer.yml", ".pii-analyzer.yaml", ".pii-analyzer.yml"} {
		if fileExists(name) {
			return name
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		candidate := filepath.Join(xdgConfig, "pii-analyzer", name)
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if fileExists(f) {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("error loading env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides configuration values from environment variables
func ApplyEnv(config *Config) error {
	if addr := os.Getenv(EnvAddr); addr != "" {
		config.Server.Address = addr
	}
	if url := os.Getenv(EnvNERURL); url != "" {
		config.NLPEngine.Endpoint = url
	}
	if debug := os.Getenv(EnvDebug); debug != "" {
		v, err := strconv.ParseBool(debug)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvDebug, debug, err)
		}
		config.Server.Debug = v
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	err := yaml.Unmarshal(data, &yamlData)
	if err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			_, exists := current[key]
			return exists
		}
		if next, ok := current[key].(map[string]interface{}); ok {
			current = next
		} else {
			return false
		}
	}
	return false
}

// ValidateConfig checks the configuration for values the engine cannot use.
// Every problem is reported, not just the first.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	var errs []error
	if len(config.SupportedLanguages) == 0 {
		errs = append(errs, errors.New("supported_languages must list at least one language"))
	}
	for _, lang := range config.SupportedLanguages {
		if strings.TrimSpace(lang) == "" {
			errs = append(errs, errors.New("supported_languages contains an empty entry"))
		}
	}
	if !slices.Contains(config.SupportedLanguages, config.DefaultLanguage) {
		errs = append(errs, fmt.Errorf("default_language %q is not in supported_languages %v",
			config.DefaultLanguage, config.SupportedLanguages))
	}
	if config.DefaultScoreThreshold < 0 || config.DefaultScoreThreshold > 1 {
		errs = append(errs, fmt.Errorf("default_score_threshold %.2f is outside [0,1]", config.DefaultScoreThreshold))
	}
	if err := config.Context.Validate(); err != nil {
		errs = append(errs, err)
	}

	for _, name := range config.PredefinedRecognizers {
		if !builtin.Known(name) {
			errs = append(errs, fmt.Errorf("unknown predefined recognizer %q (known: %v)", name, builtin.Names()))
		}
	}
	for i, def := range config.Recognizers {
		if err := def.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("recognizers[%d] (%s): %w", i, def.ID(), err))
			continue
		}
		if !slices.Contains(config.SupportedLanguages, def.Language) {
			errs = append(errs, fmt.Errorf("recognizers[%d] (%s): supported_language %q is not in supported_languages",
				i, def.ID(), def.Language))
		}
	}
	for lang := range config.AllowListByLanguage {
		if !slices.Contains(config.SupportedLanguages, lang) {
			errs = append(errs, fmt.Errorf("allow_list_by_language: language %q is not in supported_languages", lang))
		}
	}

	if config.NLPEngine.Enabled() {
		if config.NLPEngine.Timeout < 0 {
			errs = append(errs, fmt.Errorf("nlp_engine_configuration.timeout must not be negative"))
		}
		if config.NLPEngine.MaxConcurrency < 0 {
			errs = append(errs, fmt.Errorf("nlp_engine_configuration.max_concurrency must not be negative"))
		}
		if config.NLPEngine.MaxRetries < 0 {
			errs = append(errs, fmt.Errorf("nlp_engine_configuration.max_retries must not be negative"))
		}
		for _, lang := range config.NLPEngine.EffectiveLanguages(config.SupportedLanguages) {
			if !slices.Contains(config.SupportedLanguages, lang) {
				errs = append(errs, fmt.Errorf("nlp_engine_configuration: language %q is not in supported_languages", lang))
			}
		}
	}

	return errors.Join(errs...)
}
