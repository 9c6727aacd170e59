package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spiffcs/ghactivity/internal/constants"
	"github.com/spiffcs/ghactivity/internal/daterange"
	"gopkg.in/yaml.v3"
)

// Environment variables read by the application.
const (
	EnvToken      = "GITHUB_TOKEN"
	EnvGraphQLURL = "GITHUB_GRAPHQL_URL"
)

// DefaultEnvFile is loaded, if present, before the environment is read.
const DefaultEnvFile = ".env"

// Config represents the application configuration
type Config struct {
	DefaultFormat string `yaml:"default_format,omitempty" json:"default_format,omitempty"`
	DefaultPeriod string `yaml:"default_period,omitempty" json:"default_period,omitempty"`
	GraphQLURL    string `yaml:"graphql_url,omitempty" json:"graphql_url,omitempty"`
	APIURL        string `yaml:"api_url,omitempty" json:"api_url,omitempty"`
	PageSize      *int   `yaml:"page_size,omitempty" json:"page_size,omitempty"`
	Repo          string `yaml:"repo,omitempty" json:"repo,omitempty"`
	Org           string `yaml:"org,omitempty" json:"org,omitempty"`
}

var validFormats = map[string]bool{"text": true, "markdown": true, "json": true}

// Keys lists the settable configuration keys in sorted order.
func Keys() []string {
	keys := []string{"default_format", "default_period", "graphql_url", "api_url", "page_size", "repo", "org"}
	sort.Strings(keys)
	return keys
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".ghactivity"
	}
	return filepath.Join(configDir, "ghactivity")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".ghactivity.yaml"
}

// Load loads the configuration from disk.
// It first loads the global config from XDG config directory, then merges
// any local .ghactivity.yaml config on top (local values take precedence).
func Load() (*Config, error) {
	return LoadFrom(ConfigPath(), LocalConfigPath())
}

// LoadFrom loads and merges the config files at globalPath and localPath.
// Missing files are skipped.
func LoadFrom(globalPath, localPath string) (*Config, error) {
	cfg := &Config{}

	global, err := readFile(globalPath)
	if err != nil {
		return nil, fmt.Errorf("global config: %w", err)
	}
	if global != nil {
		cfg = global
	}

	local, err := readFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("local config: %w", err)
	}
	if local != nil {
		cfg = mergeConfig(cfg, local)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a single config file. A missing file yields an empty
// config.
func LoadFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &Config{}
	}
	return cfg, nil
}

// DefaultConfig returns a config with every defaulted key filled in.
func DefaultConfig() *Config {
	pageSize := constants.DefaultPageSize
	return &Config{
		DefaultFormat: "text",
		DefaultPeriod: constants.DefaultPeriod,
		GraphQLURL:    constants.DefaultGraphQLURL,
		PageSize:      &pageSize,
	}
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := *global

	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	}
	if local.DefaultPeriod != "" {
		result.DefaultPeriod = local.DefaultPeriod
	}
	if local.GraphQLURL != "" {
		result.GraphQLURL = local.GraphQLURL
	}
	if local.APIURL != "" {
		result.APIURL = local.APIURL
	}
	if local.PageSize != nil {
		result.PageSize = local.PageSize
	}
	if local.Repo != "" {
		result.Repo = local.Repo
	}
	if local.Org != "" {
		result.Org = local.Org
	}

	return &result
}

// Validate checks values that would otherwise fail later with a less
// helpful message.
func (c *Config) Validate() error {
	if c.DefaultFormat != "" && !validFormats[c.DefaultFormat] {
		return fmt.Errorf("invalid default_format %q (valid: text, markdown, json)", c.DefaultFormat)
	}
	if c.DefaultPeriod != "" {
		if _, err := daterange.ParsePeriod(c.DefaultPeriod); err != nil {
			return fmt.Errorf("invalid default_period %q: %w", c.DefaultPeriod, err)
		}
	}
	if c.PageSize != nil && (*c.PageSize < 1 || *c.PageSize > constants.MaxPageSize) {
		return fmt.Errorf("invalid page_size %d (must be between 1 and %d)", *c.PageSize, constants.MaxPageSize)
	}
	if c.Repo != "" && strings.Count(c.Repo, "/") != 1 {
		return fmt.Errorf("invalid repo %q (use owner/name)", c.Repo)
	}
	return nil
}

// Set assigns value to the named key after validating it.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "default_format":
		next.DefaultFormat = value
	case "default_period":
		next.DefaultPeriod = value
	case "graphql_url":
		next.GraphQLURL = value
	case "api_url":
		next.APIURL = value
	case "page_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("page_size must be a number: %w", err)
		}
		next.PageSize = &n
	case "repo":
		next.Repo = value
	case "org":
		next.Org = value
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// GetFormat returns the configured output format, defaulting to text.
func (c *Config) GetFormat() string {
	if c.DefaultFormat == "" {
		return "text"
	}
	return c.DefaultFormat
}

// GetPeriod returns the configured period, defaulting to a week.
func (c *Config) GetPeriod() string {
	if c.DefaultPeriod == "" {
		return constants.DefaultPeriod
	}
	return c.DefaultPeriod
}

// GetPageSize returns the configured page size or the default.
func (c *Config) GetPageSize() int {
	if c.PageSize == nil {
		return constants.DefaultPageSize
	}
	return *c.PageSize
}

// GetGraphQLURL returns the endpoint to query. GITHUB_GRAPHQL_URL wins over
// graphql_url, which wins over the public API.
func (c *Config) GetGraphQLURL() string {
	if u := os.Getenv(EnvGraphQLURL); u != "" {
		return u
	}
	if c.GraphQLURL != "" {
		return c.GraphQLURL
	}
	return constants.DefaultGraphQLURL
}

// GetGitHubToken returns the GitHub token from the GITHUB_TOKEN environment variable.
// Tokens are never read from or written to config files.
func (c *Config) GetGitHubToken() string {
	return os.Getenv(EnvToken)
}

// LoadEnvFile loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Save saves the configuration to path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return SaveTo(path, string(data))
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# ghactivity configuration file
# The GitHub token is read from GITHUB_TOKEN (or a .env file), never from here.

# Output format: text, markdown or json
default_format: text

# Reporting window when --period/--from are not given: day, week, month, 30d, ...
default_period: week

# Nodes requested per page for issues, pull requests and reviews (1-100)
# page_size: 10

# GitHub Enterprise Server endpoints (optional)
# graphql_url: https://github.example.com/api/graphql
# api_url: https://github.example.com/api/v3/

# Restrict repository commit counts (optional)
# repo: owner/name
# org: my-org
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
