// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Browse   BrowseConfig
	Settings SettingsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name          string
	Port          string        // Server port (default: 8080)
	ReadTimeout   time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout  time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout   time.Duration // HTTP idle timeout (default: 60s)
	AdvertiseMDNS bool          // Advertise the server via mDNS (default: true)
}

// BrowseConfig holds directory browsing configuration.
type BrowseConfig struct {
	// RootPath is the directory opened at startup. Empty means the
	// process working directory.
	RootPath string
	// CoalesceDelay is how long change notifications for the same entry
	// are held before a flush.
	CoalesceDelay time.Duration
	// RenamePairWindow is how long an unpaired rename notification waits
	// for its new-name half before being treated as a removal.
	RenamePairWindow time.Duration
	// IgnoreHidden drops change notifications for dotfiles.
	IgnoreHidden bool
	// InsertSorted places new items at their sorted position instead of
	// appending.
	InsertSorted bool
}

// SettingsConfig holds persistent folder-settings storage configuration.
type SettingsConfig struct {
	// DataPath is the directory for the settings database.
	DataPath string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	serverName := flag.String("server-name", "", "Name for the server")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	advertiseMDNS := flag.String("mdns", "", "Advertise the server via mDNS (default: true)")

	rootPath := flag.String("root", "", "Directory to open at startup")
	coalesceDelay := flag.String("coalesce-delay", "", "Change coalescing delay (default: 200ms)")
	renameWindow := flag.String("rename-window", "", "Rename pairing window (default: 100ms)")
	ignoreHidden := flag.String("ignore-hidden", "", "Drop change notifications for dotfiles (default: false)")
	insertSorted := flag.String("insert-sorted", "", "Insert new items at their sorted position (default: true)")

	dataPath := flag.String("data-path", "", "Base path for the settings database")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Name:          getConfigValue(*serverName, "SERVER_NAME", "Pane Server"),
			Port:          getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AdvertiseMDNS: getBoolConfigValue(*advertiseMDNS, "SERVER_MDNS", true),
		},
		Browse: BrowseConfig{
			RootPath:     getConfigValue(*rootPath, "BROWSE_ROOT", ""),
			IgnoreHidden: getBoolConfigValue(*ignoreHidden, "BROWSE_IGNORE_HIDDEN", false),
			InsertSorted: getBoolConfigValue(*insertSorted, "BROWSE_INSERT_SORTED", true),
		},
		Settings: SettingsConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
	}

	// Parse durations.
	var err error
	if cfg.Browse.CoalesceDelay, err = parseDurationValue(*coalesceDelay, "BROWSE_COALESCE_DELAY", "200ms"); err != nil {
		return nil, fmt.Errorf("invalid coalesce delay: %w", err)
	}
	if cfg.Browse.RenamePairWindow, err = parseDurationValue(*renameWindow, "BROWSE_RENAME_WINDOW", "100ms"); err != nil {
		return nil, fmt.Errorf("invalid rename window: %w", err)
	}
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}

	if err := cfg.expandRootPath(); err != nil {
		return nil, fmt.Errorf("invalid root path: %w", err)
	}
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Browse.CoalesceDelay <= 0 {
		return errors.New("coalesce delay must be positive")
	}
	if c.Browse.RenamePairWindow <= 0 {
		return errors.New("rename window must be positive")
	}
	if c.Settings.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandRootPath expands ~ and makes the path absolute. Defaults to the
// process working directory.
func (c *Config) expandRootPath() error {
	if c.Browse.RootPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		c.Browse.RootPath = wd
		return nil
	}

	expanded, err := expandPath(c.Browse.RootPath, "")
	if err != nil {
		return err
	}
	c.Browse.RootPath = expanded
	return nil
}

// expandDataPath expands ~ and makes the path absolute. Defaults to
// ~/.pane.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, ".pane")

	expanded, err := expandPath(c.Settings.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Settings.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Real env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
