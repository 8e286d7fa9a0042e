// Package app wires configuration, observers and the scenarios of the
// shared-demo driver.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/NetPo4ki/go-shared/internal/config"
	"github.com/NetPo4ki/go-shared/interop/errgroup"
	otelobs "github.com/NetPo4ki/go-shared/observe/otel"
	"github.com/NetPo4ki/go-shared/observe/prom"
	"github.com/NetPo4ki/go-shared/observe/zlog"
	"github.com/NetPo4ki/go-shared/scope"
	"github.com/NetPo4ki/go-shared/shared"
)

// Exit codes returned by Run.
const (
	ExitSuccess       = 0
	ExitErrorGeneric  = 1
	ExitErrorMismatch = 3
	ExitErrorConfig   = 4
)

const tracerName = "github.com/NetPo4ki/go-shared/internal/app"

// Application is one configured run of the driver.
//
// The driver installs no tracing SDK. Spans and task events are recorded
// only when the embedding program provides a TracerProvider, either in
// TracerProvider or globally through otel.SetTracerProvider.
type Application struct {
	Config         config.Config
	ErrWriter      io.Writer
	TracerProvider trace.TracerProvider
}

// New parses args (program name first) into an Application.
func New(args []string, errWriter io.Writer) (*Application, error) {
	programName := "shared-demo"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}
	cfg, err := config.Parse(programName, cmdArgs, errWriter)
	if err != nil {
		if !IsHelpError(err) {
			fmt.Fprintf(errWriter, "Error: %v\n", err)
		}
		return nil, err
	}
	return &Application{Config: cfg, ErrWriter: errWriter}, nil
}

// IsHelpError reports whether err comes from -h / -help.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// ExitCode maps an error from New to a process exit code.
func ExitCode(err error) int {
	var ce config.ConfigError
	switch {
	case err == nil, IsHelpError(err):
		return ExitSuccess
	case errors.As(err, &ce):
		return ExitErrorConfig
	default:
		return ExitErrorGeneric
	}
}

// NewLogger builds the driver logger writing to w.
func NewLogger(w io.Writer, cfg config.Config) zerolog.Logger {
	if cfg.LogFormat == config.FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(cfg.Level()).With().Timestamp().Str("component", "shared-demo").Logger()
}

// Run executes the configured scenario, writes its report to out and returns
// an exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	cfg := a.Config
	zerolog.SetGlobalLevel(cfg.Level())
	logger := NewLogger(a.ErrWriter, cfg)

	metrics := prom.New()
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics)
	logObs := zlog.New(logger)

	tp := a.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	ctx, span := tp.Tracer(tracerName).Start(ctx, "shared-demo."+cfg.Scenario)
	defer span.End()

	var runner *errgroup.Runner
	opts := []scope.Option{scope.WithObserver(scope.Observers(metrics, logObs, otelobs.New()))}
	if cfg.Runner == config.RunnerErrgroup {
		runner = errgroup.NewRunner()
		opts = append(opts, scope.WithRunner(runner))
	}
	s := scope.New(ctx, opts...)
	copts := []shared.Option{
		shared.WithName(cfg.Scenario),
		shared.WithObserver(shared.Observers(metrics, logObs)),
	}

	logger.Info().Str("scenario", cfg.Scenario).Int("workers", cfg.Workers).Str("runner", cfg.Runner).Msg("starting")
	var rep Report
	var err error
	switch cfg.Scenario {
	case config.ScenarioAppend:
		rep, err = RunAppend(s, cfg.Seed, cfg.Workers, copts...)
	default:
		rep, err = RunCounter(s, cfg.Workers, copts...)
	}
	if runner != nil {
		runner.Drain()
	}

	code := ExitSuccess
	switch {
	case err != nil:
		logger.Error().Err(err).Msg("scenario failed")
		code = ExitErrorGeneric
	case !rep.Consistent:
		logger.Error().Str("result", rep.Result).Msg("result mismatch")
		code = ExitErrorMismatch
	default:
		logger.Info().Str("result", rep.Result).Dur("duration", rep.Duration).Msg("done")
	}
	if err == nil {
		rep.Write(out)
	}

	if cfg.Metrics {
		if err := writeMetrics(out, reg); err != nil {
			logger.Error().Err(err).Msg("write metrics")
			return ExitErrorGeneric
		}
	}
	return code
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
