package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	xdgAppName = "tickbox"
	configFile = "config.json"
	envPrefix  = "TICKBOX"
)

type Config struct {
	TasksFile  string `json:"tasks_file" mapstructure:"tasks_file"`
	TaskList   string `json:"task_list" mapstructure:"task_list"`
	LogLevel   string `json:"log_level" mapstructure:"log_level"`
	LogJSON    bool   `json:"log_json" mapstructure:"log_json"`
	ListenAddr string `json:"listen_addr" mapstructure:"listen_addr"`
}

// Keys lists the settings accepted by Set.
var Keys = []string{"tasks_file", "task_list", "log_level", "log_json", "listen_addr"}

func Default() *Config {
	return &Config{
		TasksFile:  "tasks.json",
		TaskList:   "tickbox",
		LogLevel:   "info",
		ListenAddr: "127.0.0.1:8765",
	}
}

// GetXdgHome returns the directory holding config, credentials and sync state.
func GetXdgHome() (string, error) {
	xdgHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgHome, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := GetXdgHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config file (missing is fine) and applies TICKBOX_* overrides,
// including any found in a .env file in the working directory.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	def := Default()
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("tasks_file", def.TasksFile)
	v.SetDefault("task_list", def.TaskList)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_json", def.LogJSON)
	v.SetDefault("listen_addr", def.ListenAddr)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// ReadFile decodes path over the defaults, ignoring the environment. A missing
// file gives the defaults.
func ReadFile(path string) (*Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

func SaveFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

// Set assigns a single key by name.
func (c *Config) Set(key, value string) error {
	switch key {
	case "tasks_file":
		c.TasksFile = value
	case "task_list":
		c.TaskList = value
	case "log_level":
		switch value {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("invalid log level %q", value)
		}
		c.LogLevel = value
	case "log_json":
		switch value {
		case "true":
			c.LogJSON = true
		case "false":
			c.LogJSON = false
		default:
			return fmt.Errorf("log_json must be true or false, got %q", value)
		}
	case "listen_addr":
		c.ListenAddr = value
	default:
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}
