package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Relay      Relay      `yaml:"relay"`
	Generation Generation `yaml:"generation"`
	Client     Client     `yaml:"client"`
	Output     Output     `yaml:"output"`
	Logging    Logging    `yaml:"logging"`
}

type Relay struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

type Generation struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	OllamaURL   string `yaml:"ollama_url"`
	OllamaModel string `yaml:"ollama_model"`
}

type Client struct {
	ServerURL      string `yaml:"server_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type Output struct {
	DataDir     string `yaml:"data_dir"`
	SaveHistory bool   `yaml:"save_history"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for buildboard.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "buildboard")
}

// DataDir returns the XDG data directory for buildboard.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "buildboard")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/buildboard/config.yaml > ./config.yaml.
// An empty path with a nil error means no file was found and the embedded
// defaults should be used.
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

// Load reads and parses a config YAML file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(DefaultConfigYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// LoadDotEnv loads KEY=value pairs from the given .env files (default ./.env)
// into the process environment. Missing files are ignored and variables that
// are already set are left alone.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Relay: Relay{
			Host:          "127.0.0.1",
			Port:          3000,
			AllowedOrigin: "*",
		},
		Generation: Generation{
			Provider:    "gemini",
			Model:       "gemini-2.5-flash",
			BaseURL:     "https://generativelanguage.googleapis.com/v1",
			APIKeyEnv:   "GEMINI_API_KEY",
			OllamaURL:   "http://localhost:11434",
			OllamaModel: "llama3.2",
		},
		Client: Client{
			ServerURL: "http://localhost:3000/generate",
		},
		Output:  Output{SaveHistory: true},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// Addr returns the host:port the server listens on.
func (r Relay) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// APIKeySet reports whether the configured API key variable is non-empty.
func (c *Config) APIKeySet() bool {
	return os.Getenv(c.Generation.APIKeyEnv) != ""
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
