// Package config loads the application configuration from YAML.
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pbooth01/cli2ansible/assets"
	"github.com/pbooth01/cli2ansible/internal/domain"
	"github.com/pbooth01/cli2ansible/internal/infrastructure/capture"
	"github.com/pbooth01/cli2ansible/internal/ports"
)

// FileLoader loads YAML configuration from ~/.cli2ansible/config.yaml
// (overridable via CLI2ANSIBLE_CONFIG). A missing file is seeded from the
// embedded defaults on first load.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := os.WriteFile(path, assets.DefaultConfigYAML, 0o600); err != nil {
				return domain.Config{}, err
			}
			data = assets.DefaultConfigYAML
		} else {
			return domain.Config{}, err
		}
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(cfg), nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := os.Getenv("CLI2ANSIBLE_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(userHomeDir(), ".cli2ansible", "config.yaml")
}

// hydrateDefaults fills any settings the file omits.
func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Parser.Strategy == "" {
		cfg.Parser.Strategy = capture.StrategyTitles
	}
	if cfg.Parser.MaxEvents == 0 {
		cfg.Parser.MaxEvents = capture.DefaultMaxEvents
	}
	if cfg.Parser.MaxUploadBytes == 0 {
		cfg.Parser.MaxUploadBytes = capture.DefaultMaxFileSize
	}
	if len(cfg.Parser.PromptDenylist) == 0 {
		cfg.Parser.PromptDenylist = append([]string{}, capture.DefaultPromptDenylist...)
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = filepath.Join(userHomeDir(), ".cli2ansible", "sessions.db")
	}
	if cfg.Storage.ArtifactDir == "" {
		cfg.Storage.ArtifactDir = filepath.Join(userHomeDir(), ".cli2ansible", "artifacts")
	}
	if cfg.Storage.URLTTLSeconds == 0 {
		cfg.Storage.URLTTLSeconds = 3600
	}
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath)
	cfg.Storage.ArtifactDir = expandPath(cfg.Storage.ArtifactDir)
	if cfg.Cleaner.MaxCommands == 0 {
		cfg.Cleaner.MaxCommands = 500
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return cfg
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return path
}

func userHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
