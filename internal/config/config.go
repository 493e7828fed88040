package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// WebConfig holds web UI server settings.
type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RetentionConfig controls the scheduled cleanup of the output directories.
// MaxAge of zero disables the sweep.
type RetentionConfig struct {
	Schedule string        `yaml:"schedule"`
	MaxAge   time.Duration `yaml:"maxAge"`
}

// Defaults holds option values applied when a request leaves them empty.
type Defaults struct {
	AspectRatio string `yaml:"aspectRatio"`
	MagicPrompt string `yaml:"magicPrompt"`
	Style       string `yaml:"style"`
}

// Config holds all configuration for the application.
type Config struct {
	RecraftAPIToken   string `yaml:"-"`
	OpenAIAPIKey      string `yaml:"-"`
	ReplicateAPIToken string `yaml:"-"`
	FalKey            string `yaml:"-"`

	OutputDir  string `yaml:"outputDir"`
	UploadsDir string `yaml:"-"`
	VectorsDir string `yaml:"-"`

	HTTPTimeout       time.Duration   `yaml:"httpTimeout"`
	PollInterval      time.Duration   `yaml:"pollInterval"`
	PollMaxAttempts   int             `yaml:"pollMaxAttempts"`
	MaxUploadSizeMB   int             `yaml:"maxUploadSizeMB"`
	Web               WebConfig       `yaml:"web"`
	Retention         RetentionConfig `yaml:"retention"`
	DefaultGeneration Defaults        `yaml:"defaults"`
}

// defaultConfigFile is looked up in the working directory unless
// IMG2SVG_CONFIG points elsewhere.
const defaultConfigFile = "img2svg.yaml"

// Load loads the configuration from the .env file, environment variables and
// the optional YAML defaults file.
func Load() (*Config, error) {
	// A missing .env file is fine; environment variables may be set directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{
		OutputDir:       "output",
		HTTPTimeout:     30 * time.Second,
		PollInterval:    2 * time.Second,
		PollMaxAttempts: 60,
		MaxUploadSizeMB: 10,
		Web: WebConfig{
			Host: "127.0.0.1",
			Port: 7860,
		},
		Retention: RetentionConfig{
			Schedule: "0 */6 * * *",
		},
		DefaultGeneration: Defaults{
			AspectRatio: "1:1",
			MagicPrompt: "Auto",
			Style:       "auto",
		},
	}

	if err := loadYAMLDefaults(config); err != nil {
		return nil, err
	}

	config.RecraftAPIToken = os.Getenv("RECRAFT_API_TOKEN")
	config.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	config.ReplicateAPIToken = os.Getenv("REPLICATE_API_TOKEN")
	config.FalKey = os.Getenv("FAL_KEY")

	if dir := os.Getenv("IMG2SVG_OUTPUT_DIR"); dir != "" {
		config.OutputDir = dir
	}

	if timeout, err := strconv.Atoi(os.Getenv("IMG2SVG_HTTP_TIMEOUT")); err == nil {
		config.HTTPTimeout = time.Duration(timeout) * time.Second
	}

	if interval, err := strconv.Atoi(os.Getenv("IMG2SVG_POLL_INTERVAL")); err == nil {
		config.PollInterval = time.Duration(interval) * time.Second
	}

	if attempts, err := strconv.Atoi(os.Getenv("IMG2SVG_POLL_MAX_ATTEMPTS")); err == nil {
		config.PollMaxAttempts = attempts
	}

	if host := os.Getenv("IMG2SVG_WEB_HOST"); host != "" {
		config.Web.Host = host
	}

	if port, err := strconv.Atoi(os.Getenv("IMG2SVG_WEB_PORT")); err == nil {
		config.Web.Port = port
	}

	if maxAge, err := strconv.Atoi(os.Getenv("IMG2SVG_RETENTION_HOURS")); err == nil {
		config.Retention.MaxAge = time.Duration(maxAge) * time.Hour
	}

	config.UploadsDir = filepath.Join(config.OutputDir, "uploads")
	config.VectorsDir = filepath.Join(config.OutputDir, "vectors")

	return config, nil
}

// loadYAMLDefaults overlays the optional defaults file onto config.
func loadYAMLDefaults(config *Config) error {
	path := os.Getenv("IMG2SVG_CONFIG")
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	return nil
}

// Validate checks the fields required for vectorization. Generation
// credentials are checked by the provider selector at call time.
func (c *Config) Validate() error {
	if c.RecraftAPIToken == "" {
		return fmt.Errorf("RECRAFT_API_TOKEN is required")
	}
	return nil
}

// HasGenerationCredential reports whether at least one image generation
// backend is configured.
func (c *Config) HasGenerationCredential() bool {
	return c.OpenAIAPIKey != "" || c.ReplicateAPIToken != "" || c.FalKey != ""
}

// WebAddr returns the listen address for the web UI.
func (c *Config) WebAddr() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}
