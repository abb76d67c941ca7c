package config

import "flag"

// Global flags. They come before the subcommand:
//
//	m3gtool -lenient dump scene.m3g
var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagLenient  = flag.Bool("lenient", false, "Skip bad records and null dangling references")
	flagStrict   = flag.Bool("strict", false, "Abort on the first decode error")
	flagParallel = flag.Int("parallel", 0, "Sections inflated concurrently (0 = config value)")
	flagNoColor  = flag.Bool("no-color", false, "Disable styled output")
	flagLogFile  = flag.String("log-file", "", "Also write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after the global flags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLenient {
		cfg.Decode.Mode = "lenient"
	}
	if *flagStrict {
		cfg.Decode.Mode = "strict"
	}
	if *flagParallel > 0 {
		cfg.Decode.Parallel = *flagParallel
	}
	if *flagNoColor {
		cfg.Output.Color = false
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
