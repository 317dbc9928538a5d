package config

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/diffdrive/teleop/logging"
)

// Read reads a config from the given file, expanding ${VAR} references first. Files ending in
// .yaml or .yml are YAML; anything else is JSON.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", filePath)
	}
	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader. originalPath only picks the format and is
// recorded on the result. Fields the input leaves out keep their defaults, and TELEOP_*
// environment variables override both.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	cfg := Default()
	cfg.ConfigFilePath = originalPath

	switch strings.ToLower(filepath.Ext(originalPath)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrap(err, "cannot parse yaml config")
		}
	default:
		if err := json.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrap(err, "cannot parse json config")
		}
	}
	return finish(cfg, logger)
}

// FromEnv returns the default config with TELEOP_* environment overrides applied.
func FromEnv(logger logging.Logger) (*Config, error) {
	return finish(Default(), logger)
}

// Load reads the config at filePath, or falls back to FromEnv when filePath is empty.
func Load(filePath string, logger logging.Logger) (*Config, error) {
	if filePath == "" {
		return FromEnv(logger)
	}
	return Read(filePath, logger)
}

func finish(cfg *Config, logger logging.Logger) (*Config, error) {
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "reading environment overrides")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debugw("config loaded",
		"path", cfg.ConfigFilePath,
		"board", cfg.Board.Driver,
		"controller", cfg.Controller.Driver,
		"speed_limit", cfg.Drive.SpeedLimit,
		"loop_hz", cfg.LoopHz)
	return cfg, nil
}
