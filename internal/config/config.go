package config

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Profile Profile `yaml:"profile"`
	Fetch   Fetch   `yaml:"fetch"`
	Output  Output  `yaml:"output"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

type Profile struct {
	UserID    string `yaml:"user_id"`
	BaseURL   string `yaml:"base_url"`
	Language  string `yaml:"language"`
	UserAgent string `yaml:"user_agent"`
}

type Fetch struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type Output struct {
	Dir      string `yaml:"dir"`
	File     string `yaml:"file"`
	DebugDir string `yaml:"debug_dir"`
	DataDir  string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for scholarfetch.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "scholarfetch")
}

// DataDir returns the XDG data directory for scholarfetch.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "scholarfetch")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/scholarfetch/config.yaml > ./config.yaml.
// An empty path with a nil error means no file exists and the embedded
// defaults apply.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded default config is invalid: %v", err))
	}
	return cfg
}

// Load reads and parses a config YAML file. When a sibling
// <name>.local.yaml exists, its non-zero values override the base file;
// zero values there (0, "") leave the base value in place.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}

	localPath := LocalPath(path)
	localData, err := os.ReadFile(localPath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading local config: %w", err)
	}

	var override Config
	if err := yaml.Unmarshal(localData, &override); err != nil {
		return nil, fmt.Errorf("parsing local config: %w", err)
	}
	if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging local config: %w", err)
	}
	log.Printf("Merged local config overrides from %s", localPath)
	return cfg, nil
}

// LocalPath returns the override file path for a config file,
// e.g. config.yaml -> config.local.yaml.
func LocalPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Profile: Profile{
			UserID:    "me17ScoAAAAJ",
			BaseURL:   "https://scholar.google.com",
			Language:  "en",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; WOW64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/104.0.0.0 Safari/537.36",
		},
		Fetch: Fetch{TimeoutSeconds: 30},
		Output: Output{
			Dir:      "public",
			File:     "scholar.json",
			DebugDir: "debug",
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// ProfileURL returns the profile page URL for the configured user.
func (c *Config) ProfileURL() string {
	return fmt.Sprintf("%s/citations?hl=%s&user=%s",
		strings.TrimRight(c.Profile.BaseURL, "/"), c.Profile.Language, c.Profile.UserID)
}

// Timeout returns the HTTP timeout; zero means none.
func (c *Config) Timeout() time.Duration {
	if c.Fetch.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// OutputPath returns the path of the primary JSON artifact.
func (c *Config) OutputPath() string {
	return filepath.Join(c.Output.Dir, c.Output.File)
}

// DebugPath returns the path of the raw HTML snapshot.
func (c *Config) DebugPath() string {
	return filepath.Join(c.Output.DebugDir, "debug_page.html")
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
