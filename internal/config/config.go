// Package config handles m3gtool configuration loading and management.
package config

import (
	"compress/zlib"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/m3g/pkg/m3g"
)

// Config holds all m3gtool settings.
type Config struct {
	Decode  DecodeConfig  `yaml:"decode"`
	Encode  EncodeConfig  `yaml:"encode"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// DecodeConfig controls how files are read.
type DecodeConfig struct {
	Mode     string `yaml:"mode"`     // "strict" or "lenient"
	Parallel int    `yaml:"parallel"` // concurrent section inflaters and linkers
}

// EncodeConfig controls how files are written back.
type EncodeConfig struct {
	Compress bool `yaml:"compress"`
	Level    int  `yaml:"level"` // zlib level, -1 to 9
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// OutputConfig holds terminal output settings.
type OutputConfig struct {
	Color bool `yaml:"color"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Decode: DecodeConfig{
			Mode:     m3g.Strict.String(),
			Parallel: 1,
		},
		Encode: EncodeConfig{
			Compress: true,
			Level:    zlib.DefaultCompression,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Output: OutputConfig{
			Color: true,
		},
	}
}

// Validate reports settings that cannot be turned into options.
func (c *Config) Validate() error {
	if _, err := m3g.ParseMode(c.Decode.Mode); err != nil {
		return fmt.Errorf("decode.mode: %w", err)
	}
	if c.Decode.Parallel < 1 {
		return fmt.Errorf("decode.parallel must be at least 1, got %d", c.Decode.Parallel)
	}
	if c.Encode.Level < zlib.HuffmanOnly || c.Encode.Level > zlib.BestCompression {
		return fmt.Errorf("encode.level %d is not a zlib level", c.Encode.Level)
	}
	return nil
}

// DecodeOptions converts the decode settings into m3g options. log
// receives diagnostics; nil discards them.
func (c *Config) DecodeOptions(log *zap.Logger) ([]m3g.Option, error) {
	mode, err := m3g.ParseMode(c.Decode.Mode)
	if err != nil {
		return nil, err
	}
	return []m3g.Option{
		m3g.WithMode(mode),
		m3g.WithParallel(c.Decode.Parallel),
		m3g.WithLogger(log),
	}, nil
}

// EncodeOptions converts the encode settings into m3g options.
func (c *Config) EncodeOptions() []m3g.Option {
	if !c.Encode.Compress {
		return nil
	}
	return []m3g.Option{m3g.WithCompression(c.Encode.Level)}
}
