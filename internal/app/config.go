package app

// Config holds the process-level configuration parsed from the command line.
type Config struct {
	// ConfigPaths are the --cfg paths, merged in order before overrides.
	ConfigPaths []string
	// Overrides are the dotted CLI key/value overrides, including
	// seed_everything.
	Overrides map[string]string

	LogFormat string
	LogLevel  string
}

// NewConfig validates and defaults a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Overrides == nil {
		cfg.Overrides = map[string]string{}
	}
	return &cfg, nil
}
