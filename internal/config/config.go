package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultLogLevel    = "INFO"
	defaultLogFilePath = "logs/meetspot.log"

	envAPIKey         = "AMAP_API_KEY"
	envSecurityJSCode = "AMAP_SECURITY_JS_CODE"
)

// conventionalConfigFile is the config location relative to the project root.
var conventionalConfigFile = filepath.Join("config", "config.toml")

var (
	// ErrMissingCredential is returned when the config file is present but does
	// not supply a non-empty AMap API key.
	ErrMissingCredential = errors.New("amap api key is not configured")
	// ErrConfigNotFound is returned when no config file exists at the
	// conventional location.
	ErrConfigNotFound = errors.New("config file not found")
)

// AMapSettings holds credentials for the AMap (高德地图) REST and JavaScript APIs.
type AMapSettings struct {
	APIKey         string
	SecurityJSCode string
}

// LogSettings controls log verbosity and the optional log file destination.
type LogSettings struct {
	Level    string
	FilePath string
}

// AppSettings is one immutable configuration snapshot. It is never mutated
// after construction; Reload swaps in a fresh instance.
type AppSettings struct {
	AMap AMapSettings
	Log  LogSettings
}

// DefaultLogSettings returns the log settings used when no source supplies any.
func DefaultLogSettings() LogSettings {
	return LogSettings{
		Level:    defaultLogLevel,
		FilePath: defaultLogFilePath,
	}
}

// tomlConfig represents the TOML configuration file structure.
type tomlConfig struct {
	AMap tomlAMap `toml:"amap"`
	Log  tomlLog  `toml:"log"`
}

type tomlAMap struct {
	APIKey         string `toml:"api_key"`
	SecurityJSCode string `toml:"security_js_code"`
}

type tomlLog struct {
	Level    string `toml:"level"`
	FilePath string `toml:"file_path"`
}

// Resolve builds an AppSettings snapshot with precedence: environment
// variables > TOML config file. An empty configFile means the conventional
// <project_root>/config/config.toml location.
//
// Unlike the Manager, Resolve surfaces resolution errors to the caller; the
// Manager converts them into the environment fallback.
func Resolve(configFile string) (AppSettings, error) {
	if key := strings.TrimSpace(os.Getenv(envAPIKey)); key != "" {
		return fromEnvironment(), nil
	}

	path := configFile
	if path == "" {
		located, err := locateConfigFile()
		if err != nil {
			return AppSettings{}, err
		}
		path = located
	}

	return loadFromFile(path)
}

// fromEnvironment builds settings purely from environment variables. The API
// key may be empty; log settings are left at their defaults.
func fromEnvironment() AppSettings {
	return AppSettings{
		AMap: AMapSettings{
			APIKey:         strings.TrimSpace(os.Getenv(envAPIKey)),
			SecurityJSCode: os.Getenv(envSecurityJSCode),
		},
		Log: DefaultLogSettings(),
	}
}

// loadFromFile parses a TOML config file into an AppSettings snapshot.
func loadFromFile(path string) (AppSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return AppSettings{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return AppSettings{}, fmt.Errorf("read config file: %w", err)
	}

	var fileCfg tomlConfig
	if err := toml.Unmarshal(data, &fileCfg); err != nil {
		return AppSettings{}, fmt.Errorf("parse TOML config: %w", err)
	}

	if strings.TrimSpace(fileCfg.AMap.APIKey) == "" {
		return AppSettings{}, fmt.Errorf("%w (set [amap] api_key in %s)", ErrMissingCredential, path)
	}

	settings := AppSettings{
		AMap: AMapSettings{
			APIKey:         strings.TrimSpace(fileCfg.AMap.APIKey),
			SecurityJSCode: fileCfg.AMap.SecurityJSCode,
		},
		Log: DefaultLogSettings(),
	}

	if fileCfg.Log.Level != "" {
		settings.Log.Level = fileCfg.Log.Level
	}
	if fileCfg.Log.FilePath != "" {
		settings.Log.FilePath = fileCfg.Log.FilePath
	}

	return settings, nil
}

// locateConfigFile walks up from the working directory looking for the
// conventional config/config.toml path, so resolution works regardless of the
// subdirectory the process was started from.
func locateConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, conventionalConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w: %s not found under any parent of the working directory", ErrConfigNotFound, conventionalConfigFile)
}
