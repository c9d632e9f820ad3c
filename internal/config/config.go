// Package config loads the optional .deltaflow/config.toml the way the
// teacher's internal/config loads .ckb/config.json: a typed struct, a
// DefaultConfig, and a LoadResult reporting whether defaults were used.
// Here the file format is TOML (github.com/pelletier/go-toml/v2, decoded
// strictly so an unrecognized key fails loudly instead of being silently
// ignored), and github.com/spf13/viper supplies the environment-variable
// override layer on top of the decoded file, mirroring the teacher's
// env-override pass over its JSON config.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// HashConfig controls digest selection. Only one algorithm is currently
// implemented (internal/hash), but the knob is named so a future digest
// swap does not require a schema change.
type HashConfig struct {
	Algorithm string `toml:"algorithm" mapstructure:"algorithm"`
}

// CodecConfig controls AxisBlock zstd compression.
type CodecConfig struct {
	CompressionLevel int `toml:"compressionLevel" mapstructure:"compressionLevel"`
}

// LoggingConfig controls the structured logger's output.
type LoggingConfig struct {
	Format string `toml:"format" mapstructure:"format"`
	Level  string `toml:"level" mapstructure:"level"`
}

// Config is the complete deltaflow field configuration.
type Config struct {
	Hash    HashConfig    `toml:"hash" mapstructure:"hash"`
	Codec   CodecConfig   `toml:"codec" mapstructure:"codec"`
	Logging LoggingConfig `toml:"logging" mapstructure:"logging"`
}

// LoadResult reports the config plus how it was obtained.
type LoadResult struct {
	Config       *Config
	ConfigPath   string
	UsedDefaults bool
}

// DefaultConfig returns the configuration used when no config.toml exists.
func DefaultConfig() *Config {
	return &Config{
		Hash:    HashConfig{Algorithm: "blake2b-256"},
		Codec:   CodecConfig{CompressionLevel: 3},
		Logging: LoggingConfig{Format: "human", Level: "info"},
	}
}

const configFileName = "config.toml"

// Load reads fieldRoot/.deltaflow/config.toml if present, falling back to
// DefaultConfig, then applies DELTAFLOW_* environment overrides.
func Load(fieldRoot string) (*LoadResult, error) {
	path := filepath.Join(fieldRoot, ".deltaflow", configFileName)

	result := &LoadResult{}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		result.Config = DefaultConfig()
		result.UsedDefaults = true
	} else {
		cfg, err := decodeStrict(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		result.Config = cfg
		result.ConfigPath = path
	}

	applyEnvOverrides(result.Config)
	return result, nil
}

// decodeStrict unmarshals raw TOML with unknown-key rejection, so a field
// directory written against a newer config schema fails instead of
// silently dropping knobs this build doesn't know about.
func decodeStrict(raw []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides layers DELTAFLOW_* environment variables over the
// decoded config using viper's env binding, mirroring the teacher's
// config.applyEnvOverrides but over this module's much smaller schema.
func applyEnvOverrides(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("DELTAFLOW")
	v.AutomaticEnv()

	if val := v.GetString("hash_algorithm"); val != "" {
		cfg.Hash.Algorithm = val
	}
	if v.IsSet("codec_compressionlevel") {
		if n := v.GetInt("codec_compressionlevel"); n != 0 {
			cfg.Codec.CompressionLevel = n
		}
	}
	if val := v.GetString("logging_format"); val != "" {
		cfg.Logging.Format = val
	}
	if val := v.GetString("logging_level"); val != "" {
		cfg.Logging.Level = val
	}
}
