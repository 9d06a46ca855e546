package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a Config.
// Flags override values read from the file given by --config.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Timeout:    30 * time.Second,
		Output:     OutputText,
		ConfigFile: configPath,
		WebSocket: WebSocketConfig{
			HandshakeTimeout: 30 * time.Second,
			ReceiveTimeout:   10 * time.Second,
		},
		SSE: SSEConfig{ReadTimeout: 30 * time.Second},
		Tracing: TracingConfig{
			Protocol:   "grpc",
			SampleRate: 1.0,
		},
	}

	if err := applyConfigSettings(cfg, cfgViper.AllSettings()); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.ScenarioFile = strings.TrimSpace(cfg.ScenarioFile)
	cfg.Output = OutputFormat(strings.ToLower(string(cfg.Output)))

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]any) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "scenarios", "scenario_file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("scenarios: %w", err)
		}
		cfg.ScenarioFile = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}
	if raw, ok := lookupSetting(settings, "output"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("output: %w", err)
		}
		if val != "" {
			cfg.Output = OutputFormat(strings.TrimSpace(val))
		}
	}
	if raw, ok := lookupSetting(settings, "report", "report_file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}
		cfg.ReportFile = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "data", "data_file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("data: %w", err)
		}
		cfg.DataFile = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "logerrors", "log_errors"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("log_errors: %w", err)
		}
		cfg.LogErrors = val
	}
	if raw, ok := lookupSetting(settings, "nocolor", "no_color"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("no_color: %w", err)
		}
		cfg.NoColor = val
	}
	if raw, ok := lookupSetting(settings, "variables", "vars"); ok {
		if err := parseSection(raw, func(s map[string]any) error {
			return applyVariableSettings(cfg, s)
		}); err != nil {
			return fmt.Errorf("variables: %w", err)
		}
	}
	if raw, ok := lookupSetting(settings, "thresholds"); ok {
		list, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
		cfg.Thresholds = list
	}
	if raw, ok := lookupSetting(settings, "websocket"); ok {
		if err := parseSection(raw, func(s map[string]any) error {
			return applyWebSocketSettings(&cfg.WebSocket, s)
		}); err != nil {
			return fmt.Errorf("websocket: %w", err)
		}
	}
	if raw, ok := lookupSetting(settings, "sse"); ok {
		if err := parseSection(raw, func(s map[string]any) error {
			return applySSESettings(&cfg.SSE, s)
		}); err != nil {
			return fmt.Errorf("sse: %w", err)
		}
	}
	if raw, ok := lookupSetting(settings, "grpc"); ok {
		if err := parseSection(raw, func(s map[string]any) error {
			return applyGRPCSettings(&cfg.GRPC, s)
		}); err != nil {
			return fmt.Errorf("grpc: %w", err)
		}
	}
	if raw, ok := lookupSetting(settings, "tracing"); ok {
		if err := parseSection(raw, func(s map[string]any) error {
			return applyTracingSettings(&cfg.Tracing, s)
		}); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}

	return nil
}

func parseSection(value any, apply func(map[string]any) error) error {
	if value == nil {
		return nil
	}
	entry, err := toStringKeyMap(value)
	if err != nil {
		return err
	}
	return apply(entry)
}

func applyVariableSettings(cfg *Config, settings map[string]any) error {
	if cfg.Variables == nil {
		cfg.Variables = make(map[string]string, len(settings))
	}
	for key, raw := range settings {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		cfg.Variables[key] = val
	}
	return nil
}

func applyWebSocketSettings(ws *WebSocketConfig, settings map[string]any) error {
	if raw, ok := lookupSetting(settings, "handshaketimeout", "handshake_timeout", "handshake-timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("handshake_timeout: %w", err)
		}
		ws.HandshakeTimeout = dur
	}
	if raw, ok := lookupSetting(settings, "receivetimeout", "receive_timeout", "receive-timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("receive_timeout: %w", err)
		}
		ws.ReceiveTimeout = dur
	}
	return nil
}

func applySSESettings(sse *SSEConfig, settings map[string]any) error {
	if raw, ok := lookupSetting(settings, "readtimeout", "read_timeout", "read-timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("read_timeout: %w", err)
		}
		sse.ReadTimeout = dur
	}
	return nil
}

func applyGRPCSettings(g *GRPCConfig, settings map[string]any) error {
	if raw, ok := lookupSetting(settings, "tls"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("tls: %w", err)
		}
		g.TLS = val
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("insecure: %w", err)
		}
		g.Insecure = val
	}
	return nil
}

func applyTracingSettings(t *TracingConfig, settings map[string]any) error {
	if raw, ok := lookupSetting(settings, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("endpoint: %w", err)
		}
		t.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("protocol: %w", err)
		}
		t.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(settings, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("service_name: %w", err)
		}
		t.ServiceName = val
	}
	if raw, ok := lookupSetting(settings, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("sample_rate: %w", err)
		}
		t.SampleRate = val
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("insecure: %w", err)
		}
		t.Insecure = val
	}
	if raw, ok := lookupSetting(settings, "propagate"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("propagate: %w", err)
		}
		t.Propagate = &val
	}
	return nil
}
