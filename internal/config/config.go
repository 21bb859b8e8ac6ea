package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the launcher configuration
type Config struct {
	Repository    Repository   `yaml:"repository"`
	Launch        LaunchConfig `yaml:"launch"`
	Sync          SyncConfig   `yaml:"sync,omitempty"`
	RequiredTools []string     `yaml:"required_tools"`
}

// Repository identifies the remote the application root is synced against
type Repository struct {
	URL    string      `yaml:"url"`
	Branch string      `yaml:"branch,omitempty"`
	Remote string      `yaml:"remote,omitempty"`
	Auth   *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Type     string `yaml:"type"` // "ssh", "token", "basic"
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`
}

// LaunchConfig describes what gets started after a successful sync.
// Binary and Script are relative to the application root.
type LaunchConfig struct {
	Binary      string `yaml:"binary,omitempty"`
	Script      string `yaml:"script,omitempty"`
	Interpreter string `yaml:"interpreter,omitempty"`
	Delay       string `yaml:"delay,omitempty"`
}

// SyncConfig tunes retry behavior for transient sync failures
type SyncConfig struct {
	MaxRetries        int              `yaml:"max_retries,omitempty"`
	RetryBackoff      RetryBackoffMode `yaml:"retry_backoff,omitempty"`
	RetryInitialDelay string           `yaml:"retry_initial_delay,omitempty"`
	RetryMaxDelay     string           `yaml:"retry_max_delay,omitempty"`
}

// RetryBackoffMode selects the backoff curve for sync retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists; existing process env wins.
	if err := loadEnvFile(filepath.Dir(configPath)); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills unset fields with their documented defaults.
func (c *Config) applyDefaults() {
	if c.Repository.Branch == "" {
		c.Repository.Branch = "main"
	}
	if c.Repository.Remote == "" {
		c.Repository.Remote = "origin"
	}
	if c.Launch.Binary == "" {
		c.Launch.Binary = filepath.Join("dist", "app")
	}
	if c.Launch.Script == "" {
		c.Launch.Script = "app.py"
	}
	if c.Launch.Interpreter == "" {
		c.Launch.Interpreter = "python3"
	}
	if c.Launch.Delay == "" {
		c.Launch.Delay = "1s"
	}
	if c.RequiredTools == nil {
		c.RequiredTools = []string{"git"}
	}
}

// Validate checks invariants that sync and launch depend on.
func (c *Config) Validate() error {
	if c.Repository.URL == "" {
		return fmt.Errorf("repository.url is required")
	}
	if c.Launch.Script == "" && c.Launch.Binary == "" {
		return fmt.Errorf("launch requires at least one of binary or script")
	}
	if c.Launch.Script != "" && c.Launch.Interpreter == "" {
		return fmt.Errorf("launch.interpreter is required when launch.script is set")
	}
	if c.Repository.Auth != nil {
		switch c.Repository.Auth.Type {
		case "", "none", "ssh", "token", "basic":
		default:
			return fmt.Errorf("unsupported auth type: %s", c.Repository.Auth.Type)
		}
	}
	return nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Repository: Repository{
			URL:    "https://github.com/example/app.git",
			Branch: "main",
		},
		Launch: LaunchConfig{
			Binary:      "dist/app",
			Script:      "app.py",
			Interpreter: "python3",
			Delay:       "1s",
		},
		Sync: SyncConfig{
			MaxRetries:        2,
			RetryBackoff:      RetryBackoffLinear,
			RetryInitialDelay: "500ms",
			RetryMaxDelay:     "10s",
		},
		RequiredTools: []string{"git"},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// loadEnvFile loads environment variables from .env/.env.local next to the
// config file. It stops at the first file that parses; variables already set
// in the process environment are not overwritten.
func loadEnvFile(dir string) error {
	for _, name := range []string{".env", ".env.local"} {
		envPath := filepath.Join(dir, name)
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envPath)
			return nil
		}
	}
	return fmt.Errorf("no .env file found")
}
