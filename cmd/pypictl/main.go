package main

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/danmuck/pypictl/internal/config"
	"github.com/danmuck/pypictl/internal/logging"
	"github.com/danmuck/pypictl/internal/mirror"
	"github.com/danmuck/pypictl/internal/observability"
	"github.com/danmuck/pypictl/internal/tools"
	"github.com/rs/zerolog"
)

const (
	exitFailure    = 1
	exitConfig        = 2
	exitNotExecutable = 126
	exitNotFound      = 127
)

func main() {
	logger := logging.ConfigureRuntime()
	os.Exit(run(logger, os.LookupEnv, nil))
}

// run returns the process exit status. A nil dispatcher is picked from
// PYPICTL_DISPATCH.
func run(logger zerolog.Logger, lookup config.Lookup, dispatcher tools.Dispatcher) int {
	if path, ok := lookup(config.EnvEnvFile); ok && strings.TrimSpace(path) != "" {
		withFile, err := config.WithEnvFile(lookup, strings.TrimSpace(path))
		if err != nil {
			logger.Error().Err(err).Msg("env file load failed")
			return exitCode(err)
		}
		lookup = withFile
	}

	params, err := config.Load(lookup)
	if err != nil {
		logger.Error().Err(err).Msg("invalid parameters")
		return exitCode(err)
	}
	if dispatcher == nil {
		dispatcher = dispatcherFor(params.Dispatch)
	}

	pipeline := mirror.NewPipeline(dispatcher, logger)
	prep, err := pipeline.Prepare(params)
	if err != nil {
		logger.Error().Err(err).Msg("prepare failed")
		return exitCode(err)
	}

	if params.MetricsTextfile != "" {
		stats := observability.RunStats{
			GeneratedAt:  time.Now(),
			ExcludeRules: len(prep.Document.Options.Exclude),
			Init:         prep.Params.Init,
			MirrorAlias:  prep.Document.Options.ShadowmireUpstream != "",
		}
		if err := observability.WriteRunMetrics(params.MetricsTextfile, stats); err != nil {
			logger.Warn().Err(err).Msg("run metrics not written")
		}
	}

	if err := pipeline.Dispatch(prep); err != nil {
		var exitErr *tools.ExitError
		if errors.As(err, &exitErr) {
			logger.Warn().Int("status", exitErr.Code).Msg("shadowmire exited with failure")
		} else {
			logger.Error().Err(err).Msg("dispatch failed")
		}
		return exitCode(err)
	}
	return 0
}

func dispatcherFor(mode string) tools.Dispatcher {
	if mode == config.DispatchChild {
		return tools.ChildDispatcher{}
	}
	return tools.ExecDispatcher{}
}

func exitCode(err error) int {
	var exitErr *tools.ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, tools.ErrToolNotFound):
		return exitNotFound
	case errors.Is(err, tools.ErrToolNotExecutable):
		return exitNotExecutable
	case errors.Is(err, config.ErrInvalid), errors.Is(err, mirror.ErrInvalidDocument):
		return exitConfig
	default:
		return exitFailure
	}
}
