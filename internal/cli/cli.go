package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/metrictraingo/internal/app"
	"github.com/vk/metrictraingo/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	// Dotted keys address nested configuration namespaces and cannot be
	// pre-registered with the flag package, so they are collected in a
	// scan pass first. The seed flag rides along as a plain override.
	overrides := map[string]string{}
	var rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "--") {
			name := strings.TrimPrefix(arg, "--")
			key, val, hasValue := strings.Cut(name, "=")
			if strings.Contains(key, ".") || key == config.KeySeed {
				if !hasValue {
					if i+1 >= len(args) {
						return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("flag --%s requires a value", key)}
					}
					i++
					val = args[i]
				}
				overrides[key] = val
				continue
			}
		}
		rest = append(rest, arg)
	}
	slog.Debug("Override scan complete.", "count", len(overrides))

	flagSet := flag.NewFlagSet("metric-train", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
metric-train - Launches a training job for one configured metric model.

Usage:
  metric-train [options] [overrides]

Overrides:
  --seed_everything <int>
    Training seed (default 12).
  --<namespace>.init_args.<key> <value>
    Dotted override for a nested configuration value, e.g.
    --ranking_metric.init_args.margin 0.5. Values are parsed as YAML
    scalars.

Options:
`)
		flagSet.PrintDefaults()
	}

	var cfgPaths multiFlag
	flagSet.Var(&cfgPaths, "cfg", "Path to a configuration file (YAML or HCL) or a directory of them. Repeatable.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(rest); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument %q", flagSet.Arg(0))}
	}
	slog.Debug("Arguments parsed successfully.")

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	appConfig, err := app.NewConfig(app.Config{
		ConfigPaths: cfgPaths,
		Overrides:   overrides,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return appConfig, false, nil
}
