package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/m3g/pkg/m3g"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Decode.Mode != "strict" {
		t.Errorf("expected decode mode 'strict', got %s", cfg.Decode.Mode)
	}
	if cfg.Decode.Parallel != 1 {
		t.Errorf("expected parallel 1, got %d", cfg.Decode.Parallel)
	}
	if !cfg.Encode.Compress {
		t.Error("expected compression to be enabled by default")
	}
	if cfg.Encode.Level != -1 {
		t.Errorf("expected default zlib level -1, got %d", cfg.Encode.Level)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if !cfg.Output.Color {
		t.Error("expected color output by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
decode:
  mode: lenient
  parallel: 4

encode:
  compress: false
  level: 9

logging:
  level: "debug"
  log_file: "m3gtool.log"

output:
  color: false
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Decode.Mode != "lenient" {
		t.Errorf("expected mode 'lenient', got %s", cfg.Decode.Mode)
	}
	if cfg.Decode.Parallel != 4 {
		t.Errorf("expected parallel 4, got %d", cfg.Decode.Parallel)
	}
	if cfg.Encode.Compress {
		t.Error("expected compress to be false")
	}
	if cfg.Encode.Level != 9 {
		t.Errorf("expected level 9, got %d", cfg.Encode.Level)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "m3gtool.log" {
		t.Errorf("expected log file 'm3gtool.log', got %s", cfg.Logging.LogFile)
	}
	if cfg.Output.Color {
		t.Error("expected color to be false")
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(configPath, []byte("decode:\n  mode: lenient\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Decode.Mode != "lenient" {
		t.Errorf("expected mode 'lenient', got %s", cfg.Decode.Mode)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Decode.Parallel != 1 {
		t.Errorf("expected parallel 1 to survive, got %d", cfg.Decode.Parallel)
	}
	if !cfg.Encode.Compress {
		t.Error("expected compress default to survive")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
decode:
  parallel: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/m3gtool.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"lenient", func(c *Config) { c.Decode.Mode = "Lenient" }, false},
		{"unknown mode", func(c *Config) { c.Decode.Mode = "relaxed" }, true},
		{"zero parallel", func(c *Config) { c.Decode.Parallel = 0 }, true},
		{"level too high", func(c *Config) { c.Encode.Level = 10 }, true},
		{"huffman only", func(c *Config) { c.Encode.Level = -2 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Decode.Mode = "lenient"

	opts, err := cfg.DecodeOptions(nil)
	if err != nil {
		t.Fatalf("DecodeOptions() error: %v", err)
	}
	if len(opts) != 3 {
		t.Errorf("expected 3 decode options, got %d", len(opts))
	}

	cfg.Decode.Mode = "bogus"
	if _, err := cfg.DecodeOptions(nil); err == nil {
		t.Error("expected error for bogus mode")
	}

	if got := len(cfg.EncodeOptions()); got != 1 {
		t.Errorf("expected 1 encode option with compression, got %d", got)
	}
	cfg.Encode.Compress = false
	if got := len(cfg.EncodeOptions()); got != 0 {
		t.Errorf("expected no encode options without compression, got %d", got)
	}

	mode, _ := m3g.ParseMode(Default().Decode.Mode)
	if mode != m3g.Strict {
		t.Errorf("expected default mode to parse as strict, got %v", mode)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(FileName, []byte("decode:\n  mode: strict\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Errorf("expected to find %s in current directory", FileName)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "lenient flag",
			setup: func() { *flagLenient = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Decode.Mode != "lenient" {
					t.Errorf("expected mode 'lenient', got %s", cfg.Decode.Mode)
				}
			},
			teardown: func() { *flagLenient = false },
		},
		{
			name:  "parallel flag",
			setup: func() { *flagParallel = 8 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Decode.Parallel != 8 {
					t.Errorf("expected parallel 8, got %d", cfg.Decode.Parallel)
				}
			},
			teardown: func() { *flagParallel = 0 },
		},
		{
			name:  "no-color flag",
			setup: func() { *flagNoColor = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Output.Color {
					t.Error("expected color to be disabled")
				}
			},
			teardown: func() { *flagNoColor = false },
		},
		{
			name:  "log-file flag",
			setup: func() { *flagLogFile = "/tmp/m3g.log" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.LogFile != "/tmp/m3g.log" {
					t.Errorf("expected log file /tmp/m3g.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() { *flagLogFile = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)

	yamlContent := `
decode:
  mode: lenient
  parallel: 2
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagStrict = true
	defer func() {
		*flagConfig = ""
		*flagStrict = false
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Mode comes from the flag, parallel from the file.
	if cfg.Decode.Mode != "strict" {
		t.Errorf("expected mode 'strict' from flag, got %s", cfg.Decode.Mode)
	}
	if cfg.Decode.Parallel != 2 {
		t.Errorf("expected parallel 2 from file, got %d", cfg.Decode.Parallel)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(configPath, []byte("decode:\n  mode: sloppy\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject an unknown decode mode")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Decode.Mode = "lenient"
	cfg.Encode.Level = 6
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("reloaded config = %+v, want %+v", loaded, cfg)
	}
}
