// Package config holds the settings shared by the isis tools: logging, the
// default scaling policy for conversions and how raw data files are read and
// written.
//
// Settings are read from YAML with ${VAR} environment substitution:
//
//	log:
//	  level: info
//	conversion:
//	  scaling: autoscale
//	raw:
//	  compression: ${ISIS_RAW_COMPRESSION}
//	  byte_order: big
//
//	cfg, err := config.LoadFile("isis.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"encoding/binary"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/isis-group/isis-sub000/pkg/compression"
	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/logger"
	"github.com/isis-group/isis-sub000/pkg/numeric"
)

// Config is the root configuration document.
type Config struct {
	Log        logger.Config    `yaml:"log" json:"log" mapstructure:"log"`
	Conversion ConversionConfig `yaml:"conversion" json:"conversion" mapstructure:"conversion"`
	Raw        RawConfig        `yaml:"raw" json:"raw" mapstructure:"raw"`
}

// ConversionConfig controls array conversions started by the tools.
type ConversionConfig struct {
	// Scaling is the policy name: noscale, autoscale, noupscale or upscale
	Scaling string `yaml:"scaling" json:"scaling" mapstructure:"scaling"`
	// Metrics dumps the conversion counters after a command finishes
	Metrics bool `yaml:"metrics" json:"metrics" mapstructure:"metrics"`
}

// RawConfig controls raw data file I/O.
type RawConfig struct {
	// Compression names the codec; empty picks it from the file extension
	Compression string `yaml:"compression" json:"compression" mapstructure:"compression"`
	// Level is one of fastest, default, better, best
	Level string `yaml:"level" json:"level" mapstructure:"level"`
	// ByteOrder of the stored elements: little, big or native
	ByteOrder string `yaml:"byte_order" json:"byte_order" mapstructure:"byte_order"`
	// UseMmap maps uncompressed files instead of reading them
	UseMmap bool `yaml:"use_mmap" json:"use_mmap" mapstructure:"use_mmap"`
	// MaxDecompressedMB bounds decompressed payloads, 0 = unbounded
	MaxDecompressedMB int `yaml:"max_decompressed_mb" json:"max_decompressed_mb" mapstructure:"max_decompressed_mb"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: logger.DefaultConfig(),
		Conversion: ConversionConfig{
			Scaling: numeric.AutoScale.String(),
		},
		Raw: RawConfig{
			Level:             compression.Default.String(),
			ByteOrder:         "native",
			UseMmap:           true,
			MaxDecompressedMB: 4096,
		},
	}
}

// Validate checks every enumerated setting.
func (c *Config) Validate() error {
	if c.Log.Level != "" {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "log.level")
		}
	}
	if _, err := c.Conversion.Policy(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "conversion.scaling")
	}
	if _, err := compression.ParseAlgorithm(c.Raw.Compression); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "raw.compression")
	}
	if _, err := c.Raw.Order(); err != nil {
		return err
	}
	if c.Raw.MaxDecompressedMB < 0 {
		return errors.New(errors.ErrorTypeConfig, "raw.max_decompressed_mb cannot be negative")
	}
	return nil
}

// Policy resolves the scaling policy, AutoScale when unset.
func (c ConversionConfig) Policy() (numeric.Policy, error) {
	if c.Scaling == "" {
		return numeric.AutoScale, nil
	}
	return numeric.ParsePolicy(c.Scaling)
}

// Order resolves the byte order name.
func (r RawConfig) Order() (binary.ByteOrder, error) {
	switch strings.ToLower(r.ByteOrder) {
	case "", "native":
		return binary.NativeEndian, nil
	case "little", "le":
		return binary.LittleEndian, nil
	case "big", "be":
		return binary.BigEndian, nil
	}
	return nil, errors.Newf(errors.ErrorTypeConfig, "raw.byte_order: unknown byte order %q", r.ByteOrder)
}

// CompressionConfig builds the codec settings for a file; an empty
// Compression defers to the file extension.
func (r RawConfig) CompressionConfig(path string) (*compression.Config, error) {
	alg, err := compression.ParseAlgorithm(r.Compression)
	if err != nil {
		return nil, err
	}
	if r.Compression == "" {
		alg, _ = compression.FromPath(path)
	}
	return &compression.Config{
		Algorithm:           alg,
		Level:               compression.ParseLevel(r.Level),
		MaxDecompressedSize: int64(r.MaxDecompressedMB) << 20,
	}, nil
}

// LoadFile reads a configuration file on top of Default and validates it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := Load(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load loads a configuration from a YAML file into config.
func Load(filePath string, config interface{}) error {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: File path is controlled by caller
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to read config file")
	}

	content := substituteEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(content), config); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML")
	}
	return nil
}

// Save saves a configuration to a YAML file
func Save(filePath string, config interface{}) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to marshal YAML")
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil { //nolint:gosec
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write config file")
	}
	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		content = content[:start] + os.Getenv(varName) + content[end+1:]
	}
	return content
}
