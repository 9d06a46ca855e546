package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "granita --scenarios FILE [flags]",
		Short:         "Run load-test scenarios sequentially",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

func configureFlags(flags *pflag.FlagSet) {
	flags.StringP("scenarios", "s", "", "Path to scenario file (YAML or JSON)")
	flags.Duration("timeout", 30*time.Second, "Per-request transport timeout")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")
	flags.StringToString("var", nil, "Scenario variable as key=value (repeatable)")
	flags.StringArray("threshold", nil, "Metric assertion, e.g. 'req_duration:p99 < 500' (repeatable)")
	flags.String("data", "", "CSV or JSON file; each scenario run takes the next record as variables")

	// Output flags
	flags.StringP("output", "o", string(OutputText), "Report format: text, json, yaml or html")
	flags.String("report", "", "Also write the report to this file")
	flags.Bool("log-errors", false, "Log each failed request to stderr")
	flags.Bool("no-color", false, "Disable colored text output")

	// WebSocket flags
	flags.Duration("ws-handshake-timeout", 30*time.Second, "WebSocket handshake timeout")
	flags.Duration("ws-receive-timeout", 10*time.Second, "WebSocket receive timeout")

	// SSE flags
	flags.Duration("sse-read-timeout", 30*time.Second, "SSE read timeout")

	// gRPC flags
	flags.Bool("grpc-tls", false, "Use TLS for gRPC connections")
	flags.Bool("grpc-insecure", false, "Skip TLS verification for gRPC")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (e.g. localhost:4317)")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.String("tracing-service-name", "", "Service name reported to the collector")
	flags.Float64("tracing-sample-rate", 1.0, "Trace sample rate between 0.0 and 1.0")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Bool("tracing-propagate", false, "Inject W3C trace context into outgoing requests")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\n%s\n\nFlags:\n", cmd.UseLine(), cmd.Short)
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("scenarios") {
		val, err := fs.GetString("scenarios")
		if err != nil {
			return err
		}
		cfg.ScenarioFile = strings.TrimSpace(val)
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("output") {
		val, err := fs.GetString("output")
		if err != nil {
			return err
		}
		cfg.Output = OutputFormat(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("report") {
		val, err := fs.GetString("report")
		if err != nil {
			return err
		}
		cfg.ReportFile = strings.TrimSpace(val)
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	if fs.Changed("no-color") {
		val, err := fs.GetBool("no-color")
		if err != nil {
			return err
		}
		cfg.NoColor = val
	}
	if fs.Changed("var") {
		val, err := fs.GetStringToString("var")
		if err != nil {
			return err
		}
		if cfg.Variables == nil {
			cfg.Variables = make(map[string]string, len(val))
		}
		for k, v := range val {
			cfg.Variables[strings.TrimSpace(k)] = v
		}
	}
	if fs.Changed("data") {
		val, err := fs.GetString("data")
		if err != nil {
			return err
		}
		cfg.DataFile = strings.TrimSpace(val)
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringArray("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = append(cfg.Thresholds, val...)
	}
	if fs.Changed("ws-handshake-timeout") {
		val, err := fs.GetDuration("ws-handshake-timeout")
		if err != nil {
			return err
		}
		cfg.WebSocket.HandshakeTimeout = val
	}
	if fs.Changed("ws-receive-timeout") {
		val, err := fs.GetDuration("ws-receive-timeout")
		if err != nil {
			return err
		}
		cfg.WebSocket.ReceiveTimeout = val
	}
	if fs.Changed("sse-read-timeout") {
		val, err := fs.GetDuration("sse-read-timeout")
		if err != nil {
			return err
		}
		cfg.SSE.ReadTimeout = val
	}
	if fs.Changed("grpc-tls") {
		val, err := fs.GetBool("grpc-tls")
		if err != nil {
			return err
		}
		cfg.GRPC.TLS = val
	}
	if fs.Changed("grpc-insecure") {
		val, err := fs.GetBool("grpc-insecure")
		if err != nil {
			return err
		}
		cfg.GRPC.Insecure = val
	}
	return applyTracingFlags(&cfg.Tracing, fs)
}

func applyTracingFlags(t *TracingConfig, fs *pflag.FlagSet) error {
	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		t.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		t.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("tracing-service-name") {
		val, err := fs.GetString("tracing-service-name")
		if err != nil {
			return err
		}
		t.ServiceName = val
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		t.SampleRate = val
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		t.Insecure = val
	}
	if fs.Changed("tracing-propagate") {
		val, err := fs.GetBool("tracing-propagate")
		if err != nil {
			return err
		}
		t.Propagate = &val
	}
	return nil
}
