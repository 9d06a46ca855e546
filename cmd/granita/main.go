package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/torosent/granita"
	"github.com/torosent/granita/internal/config"
	"github.com/torosent/granita/internal/feeder"
	"github.com/torosent/granita/internal/grpcclient"
	"github.com/torosent/granita/internal/httpclient"
	"github.com/torosent/granita/internal/metrics"
	"github.com/torosent/granita/internal/output"
	"github.com/torosent/granita/internal/scenariofile"
	"github.com/torosent/granita/internal/sse"
	"github.com/torosent/granita/internal/threshold"
	"github.com/torosent/granita/internal/tracing"
	"github.com/torosent/granita/internal/variables"
	"github.com/torosent/granita/internal/websocket"
	"github.com/torosent/granita/transport"
)

const tracingShutdownTimeout = 5 * time.Second

type stderrFailureLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}
	if cfg.NoColor {
		color.NoColor = true
	}

	file, err := scenariofile.Load(cfg.ScenarioFile)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	invoker := &grpcclient.Invoker{
		Timeout:  cfg.Timeout,
		UseTLS:   cfg.GRPC.TLS,
		Insecure: cfg.GRPC.Insecure,
	}
	defer invoker.Close()

	names := make([]string, 0, len(file.Scenarios))
	for _, sc := range file.Scenarios {
		names = append(names, sc.Name)
	}

	collector := metrics.NewCollector()
	recorder := output.NewRecorder(names)
	reporters := output.Reporters{recorder}
	if cfg.Output == config.OutputText || cfg.Output == "" {
		reporters = append(output.Reporters{output.NewProgressReporter(stdout, len(names))}, reporters...)
	}

	opts := []granita.Option{
		granita.WithTransports(buildTransports(cfg, invoker)),
		granita.WithRecorder(collector),
		granita.WithReporter(reporters),
	}
	if cfg.LogErrors {
		opts = append(opts, granita.WithFailureLogger(&stderrFailureLogger{w: stderr}))
	}
	if cfg.Tracing.Enabled() {
		opts = append(opts, granita.WithTracer(provider.Tracer()))
	}

	var registerOpts []scenariofile.Option
	if cfg.DataFile != "" {
		data, err := feeder.Open(cfg.DataFile)
		if err != nil {
			return err
		}
		defer data.Close()
		registerOpts = append(registerOpts, scenariofile.WithData(data))
	}

	g := scenariofile.Register(granita.New(opts...), file, registerOpts...)

	if len(cfg.Variables) > 0 {
		seed := variables.NewStore()
		for k, v := range cfg.Variables {
			seed.Set(k, v)
		}
		ctx = variables.NewContext(ctx, seed)
	}

	start := time.Now()
	runErr := g.Run(ctx)
	stats := collector.Stats(time.Since(start))

	rep := recorder.Report(stats, runErr)
	if len(thresholds) > 0 {
		rep.ApplyThresholds(threshold.NewEvaluator(thresholds).Evaluate(stats))
	}
	if err := output.Write(stdout, string(cfg.Output), rep); err != nil {
		return err
	}
	if cfg.ReportFile != "" {
		if err := output.WriteFile(cfg.ReportFile, reportFormat(cfg.ReportFile, cfg.Output), rep); err != nil {
			return err
		}
	}

	if runErr != nil {
		return fmt.Errorf("run %s failed after %d of %d scenarios: %w", rep.RunID, rep.Executed, len(names), runErr)
	}
	if failed := threshold.Failed(rep.Thresholds); failed > 0 {
		return fmt.Errorf("run %s: %d of %d thresholds failed", rep.RunID, failed, len(rep.Thresholds))
	}
	return nil
}

func buildTransports(cfg *config.Config, invoker *grpcclient.Invoker) transport.Set {
	wsHandshake := cfg.WebSocket.HandshakeTimeout
	if wsHandshake == 0 {
		wsHandshake = cfg.Timeout
	}
	sseTimeout := cfg.SSE.ReadTimeout
	if sseTimeout == 0 {
		sseTimeout = cfg.Timeout
	}
	return transport.Set{
		HTTP: httpclient.NewFetcher(cfg.Timeout),
		WebSocket: &websocket.Exchanger{
			HandshakeTimeout: wsHandshake,
			ReadTimeout:      cfg.WebSocket.ReceiveTimeout,
		},
		SSE:  &sse.Streamer{Timeout: sseTimeout},
		GRPC: invoker,
	}
}

// reportFormat picks the report file format from its extension, falling back to the
// console format.
func reportFormat(path string, fallback config.OutputFormat) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return string(config.OutputJSON)
	case ".yaml", ".yml":
		return string(config.OutputYAML)
	case ".html", ".htm":
		return string(config.OutputHTML)
	case ".txt":
		return string(config.OutputText)
	}
	return string(fallback)
}

func (l *stderrFailureLogger) LogFailure(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "[granita] request failed: %v\n", err)
}
