package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// OutputFormat selects how the run report is rendered.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
	OutputHTML OutputFormat = "html"
)

type Config struct {
	ScenarioFile string            `mapstructure:"scenarios"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	Output       OutputFormat      `mapstructure:"output"`
	ReportFile   string            `mapstructure:"report"`
	LogErrors    bool              `mapstructure:"log_errors"`
	NoColor      bool              `mapstructure:"no_color"`
	Variables    map[string]string `mapstructure:"variables"`  // Seeds every scenario's variable store
	Thresholds   []string          `mapstructure:"thresholds"` // Parsed by the threshold package
	DataFile     string            `mapstructure:"data"`       // CSV or JSON records, one per scenario run
	ConfigFile   string            `mapstructure:"-"`
	WebSocket    WebSocketConfig   `mapstructure:"websocket"`
	SSE          SSEConfig         `mapstructure:"sse"`
	GRPC         GRPCConfig        `mapstructure:"grpc"`
	Tracing      TracingConfig     `mapstructure:"tracing"`
}

type WebSocketConfig struct {
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"` // WebSocket handshake timeout
	ReceiveTimeout   time.Duration `mapstructure:"receive_timeout"`   // Per-reply read timeout
}

type SSEConfig struct {
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

type GRPCConfig struct {
	TLS      bool `mapstructure:"tls"`
	Insecure bool `mapstructure:"insecure"` // Skip TLS verification
}

// TracingConfig configures OpenTelemetry export. Tracing is enabled when an endpoint is
// set or propagation is explicitly requested.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // grpc or http
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   *bool   `mapstructure:"propagate"`
}

func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || (t.Propagate != nil && *t.Propagate)
}

// ShouldPropagate reports whether W3C trace context is injected into outgoing requests.
// It defaults to Enabled.
func (t TracingConfig) ShouldPropagate() bool {
	if t.Propagate != nil {
		return *t.Propagate
	}
	return t.Enabled()
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.ScenarioFile) == "" {
		issues = append(issues, "scenarios is required (use --help for usage information)")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}

	switch c.Output {
	case "", OutputText, OutputJSON, OutputYAML, OutputHTML:
	default:
		issues = append(issues, fmt.Sprintf("output: must be one of text, json, yaml, html; got %q", c.Output))
	}

	if c.WebSocket.HandshakeTimeout < 0 {
		issues = append(issues, "websocket: handshake_timeout must be >= 0")
	}
	if c.WebSocket.ReceiveTimeout < 0 {
		issues = append(issues, "websocket: receive_timeout must be >= 0")
	}
	if c.SSE.ReadTimeout < 0 {
		issues = append(issues, "sse: read_timeout must be >= 0")
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if c.GRPC.TLS && c.GRPC.Insecure {
		fmt.Fprintln(os.Stderr, "WARNING: gRPC TLS verification is DISABLED (insecure: true). This should ONLY be used in development/testing environments.")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}

	return nil
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	return issues
}
