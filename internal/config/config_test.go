package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/torosent/granita/internal/config"
)

func TestLoadWithoutArgsRequestsHelp(t *testing.T) {
	_, err := config.NewLoader().Load([]string{})
	if !errors.Is(err, config.ErrHelpRequested) {
		t.Fatalf("Load() error = %v, want ErrHelpRequested", err)
	}
}

func TestLoadHelpFlag(t *testing.T) {
	_, err := config.NewLoader().Load([]string{"--help"})
	if !errors.Is(err, config.ErrHelpRequested) {
		t.Fatalf("Load() error = %v, want ErrHelpRequested", err)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "granita.yaml")
	content := `
scenarios: checkout.yaml
timeout: 12s
output: json
report: out/report.json
tracing:
  endpoint: collector:4318
  protocol: http
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path, "--output", "yaml"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ScenarioFile != "checkout.yaml" {
		t.Errorf("ScenarioFile = %q, want checkout.yaml", cfg.ScenarioFile)
	}
	if cfg.Timeout != 12*time.Second {
		t.Errorf("Timeout = %s, want 12s", cfg.Timeout)
	}
	if cfg.Output != config.OutputYAML {
		t.Errorf("Output = %q, want flag override yaml", cfg.Output)
	}
	if cfg.ReportFile != "out/report.json" {
		t.Errorf("ReportFile = %q", cfg.ReportFile)
	}
	if cfg.Tracing.Protocol != "http" || !cfg.Tracing.Enabled() {
		t.Errorf("Tracing = %+v, want enabled http exporter", cfg.Tracing)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "granita.json")
	if err := os.WriteFile(path, []byte(`{"scenarios": "smoke.json", "log_errors": true}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ScenarioFile != "smoke.json" || !cfg.LogErrors {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := config.NewLoader().Load([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := config.Config{ScenarioFile: "smoke.yaml", Timeout: time.Second, Output: config.OutputText}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "missing scenarios", mutate: func(c *config.Config) { c.ScenarioFile = " " }, want: "scenarios is required"},
		{name: "negative timeout", mutate: func(c *config.Config) { c.Timeout = -time.Second }, want: "timeout must be >= 0"},
		{name: "unknown output", mutate: func(c *config.Config) { c.Output = "xml" }, want: "output"},
		{name: "bad tracing protocol", mutate: func(c *config.Config) { c.Tracing.Protocol = "thrift" }, want: "tracing: protocol"},
		{name: "bad sample rate", mutate: func(c *config.Config) { c.Tracing.SampleRate = 1.5 }, want: "sample_rate"},
		{name: "negative sse timeout", mutate: func(c *config.Config) { c.SSE.ReadTimeout = -1 }, want: "sse: read_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			var verr config.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if !strings.Contains(strings.Join(verr.Issues(), "; "), tt.want) {
				t.Fatalf("issues %v do not mention %q", verr.Issues(), tt.want)
			}
		})
	}
}

func TestValidationErrorAggregatesIssues(t *testing.T) {
	cfg := config.Config{Timeout: -1, Output: "xml"}
	err := cfg.Validate()
	var verr config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(verr.Issues()) != 3 {
		t.Fatalf("expected 3 issues, got %v", verr.Issues())
	}
	if !strings.HasPrefix(err.Error(), "validation failed: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
