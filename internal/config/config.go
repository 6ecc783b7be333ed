package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultListenAddr       = "127.0.0.1:5001"
	DefaultDBFileName       = ".filebox.db"
	DefaultBlobDirName      = "filebox-blobs"
	DefaultSessionDirName   = "filebox-sessions"
	DefaultThumbnailWorkers = 2
	DefaultSessionTTLHours  = 24
	DefaultLogLevel         = "info"

	DefaultMaxUploadBytes int64 = 32 * 1024 * 1024

	configDirEnvKey = "FILEBOX_CONFIG_DIR"
	configFileName  = ".filebox.toml"
)

// Config defines runtime configuration for filebox.
type Config struct {
	ListenAddr       string `toml:"listen_addr"`
	DBPath           string `toml:"db_path"`
	BlobRoot         string `toml:"blob_root"`
	SessionDir       string `toml:"session_dir"`
	MaxUploadBytes   int64  `toml:"max_upload_bytes"`
	ThumbnailWorkers int    `toml:"thumbnail_workers"`
	SessionTTLHours  int    `toml:"session_ttl_hours"`
	LogLevel         string `toml:"log_level"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		ListenAddr:       DefaultListenAddr,
		DBPath:           "",
		BlobRoot:         "",
		SessionDir:       "",
		MaxUploadBytes:   DefaultMaxUploadBytes,
		ThumbnailWorkers: DefaultThumbnailWorkers,
		SessionTTLHours:  DefaultSessionTTLHours,
		LogLevel:         "",
	}
}

func loadFile(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// Load reads config from the global file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := GlobalPath()
	if err == nil {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if addr := strings.TrimSpace(os.Getenv("FILEBOX_LISTEN_ADDR")); addr != "" {
		cfg.ListenAddr = addr
	}
	if dbPath := strings.TrimSpace(os.Getenv("FILEBOX_DB")); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if blobRoot := strings.TrimSpace(os.Getenv("FILEBOX_BLOB_ROOT")); blobRoot != "" {
		cfg.BlobRoot = blobRoot
	}
	if sessionDir := strings.TrimSpace(os.Getenv("FILEBOX_SESSION_DIR")); sessionDir != "" {
		cfg.SessionDir = sessionDir
	}
	if raw := strings.TrimSpace(os.Getenv("FILEBOX_MAX_UPLOAD_BYTES")); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			cfg.MaxUploadBytes = parsed
		}
	}
	if raw := strings.TrimSpace(os.Getenv("FILEBOX_THUMBNAIL_WORKERS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			cfg.ThumbnailWorkers = parsed
		}
	}
	if raw := strings.TrimSpace(os.Getenv("FILEBOX_SESSION_TTL_HOURS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			cfg.SessionTTLHours = parsed
		}
	}
	if level := strings.TrimSpace(os.Getenv("FILEBOX_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	cfg.normalizeDefaults()

	return &cfg, nil
}

var allowedKeys = []string{
	"listen_addr",
	"db_path",
	"blob_root",
	"session_dir",
	"max_upload_bytes",
	"thumbnail_workers",
	"session_ttl_hours",
	"log_level",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "listen_addr":
		return c.ListenAddr, nil
	case "db_path":
		return c.DBPath, nil
	case "blob_root":
		return c.BlobRoot, nil
	case "session_dir":
		return c.SessionDir, nil
	case "max_upload_bytes":
		return strconv.FormatInt(c.MaxUploadBytes, 10), nil
	case "thumbnail_workers":
		return strconv.Itoa(c.ThumbnailWorkers), nil
	case "session_ttl_hours":
		return strconv.Itoa(c.SessionTTLHours), nil
	case "log_level":
		return c.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	data[key] = parsedValue

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "max_upload_bytes":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "thumbnail_workers", "session_ttl_hours":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	default:
		return value, nil
	}
}

func (c *Config) normalizeDefaults() {
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.ThumbnailWorkers <= 0 {
		c.ThumbnailWorkers = DefaultThumbnailWorkers
	}
	if c.SessionTTLHours <= 0 {
		c.SessionTTLHours = DefaultSessionTTLHours
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(cwd, DefaultDBFileName)
	}
	if c.BlobRoot == "" {
		c.BlobRoot = filepath.Join(cwd, DefaultBlobDirName)
	}
	if c.SessionDir == "" {
		c.SessionDir = filepath.Join(cwd, DefaultSessionDirName)
	}
}
