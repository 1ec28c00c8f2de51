package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/pypictl/internal/config"
	"github.com/danmuck/pypictl/internal/mirror"
	"github.com/danmuck/pypictl/internal/testutil/testlog"
	"github.com/danmuck/pypictl/internal/tools"
)

type recordingDispatcher struct {
	calls []tools.Invocation
	err   error
}

func (d *recordingDispatcher) Dispatch(inv tools.Invocation) error {
	d.calls = append(d.calls, inv)
	return d.err
}

func baseEnv(t *testing.T) map[string]string {
	t.Helper()
	root := t.TempDir()
	return map[string]string{
		config.EnvWorkingDir: filepath.Join(root, "pypi"),
		config.EnvConfigPath: filepath.Join(root, "shadowmire.toml"),
		config.EnvShadowmire: "/opt/shadowmire.py",
	}
}

func TestRunSuccess(t *testing.T) {
	env := baseEnv(t)
	env[config.EnvMetricsTextfile] = filepath.Join(filepath.Dir(env[config.EnvConfigPath]), "pypictl.prom")
	dispatcher := &recordingDispatcher{}

	if code := run(testlog.Start(t), config.MapLookup(env), dispatcher); code != 0 {
		t.Fatalf("unexpected exit code: %d", code)
	}
	if len(dispatcher.calls) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(dispatcher.calls))
	}
	if _, err := os.Stat(env[config.EnvMetricsTextfile]); err != nil {
		t.Fatalf("expected metrics file: %v", err)
	}
}

func TestRunMissingWorkingDir(t *testing.T) {
	env := baseEnv(t)
	delete(env, config.EnvWorkingDir)
	dispatcher := &recordingDispatcher{}

	if code := run(testlog.Start(t), config.MapLookup(env), dispatcher); code != exitConfig {
		t.Fatalf("unexpected exit code: %d", code)
	}
	if len(dispatcher.calls) != 0 {
		t.Fatalf("expected no dispatch")
	}
	if _, err := os.Stat(env[config.EnvConfigPath]); !os.IsNotExist(err) {
		t.Fatalf("expected no config file, got %v", err)
	}
}

func TestRunForwardsToolStatus(t *testing.T) {
	dispatcher := &recordingDispatcher{err: &tools.ExitError{Code: 4, Err: errors.New("exit status 4")}}
	if code := run(testlog.Start(t), config.MapLookup(baseEnv(t)), dispatcher); code != 4 {
		t.Fatalf("unexpected exit code: %d", code)
	}
}

func TestRunMissingToolWithRealDispatcher(t *testing.T) {
	env := baseEnv(t)
	env[config.EnvShadowmire] = filepath.Join(t.TempDir(), "absent.py")
	env[config.EnvDispatch] = config.DispatchChild

	if code := run(testlog.Start(t), config.MapLookup(env), nil); code != exitNotFound {
		t.Fatalf("unexpected exit code: %d", code)
	}
}

func TestRunEnvFile(t *testing.T) {
	env := baseEnv(t)
	workDir := env[config.EnvWorkingDir]
	delete(env, config.EnvWorkingDir)

	envFile := filepath.Join(t.TempDir(), "pypictl.env")
	content := fmt.Sprintf("TUNASYNC_WORKING_DIR=%s\nPYPI_EXCLUDE=from-file\n", workDir)
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	env[config.EnvEnvFile] = envFile
	dispatcher := &recordingDispatcher{}

	if code := run(testlog.Start(t), config.MapLookup(env), dispatcher); code != 0 {
		t.Fatalf("unexpected exit code: %d", code)
	}
	data, err := os.ReadFile(env[config.EnvConfigPath])
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), `"from-file",`) {
		t.Fatalf("expected env file pattern in config:\n%s", data)
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{fmt.Errorf("wrap: %w", config.ErrInvalid), exitConfig},
		{mirror.ErrInvalidDocument, exitConfig},
		{fmt.Errorf("wrap: %w", mirror.ErrFilesystem), exitFailure},
		{tools.ErrToolNotFound, exitNotFound},
		{fmt.Errorf("wrap: %w", tools.ErrToolNotExecutable), exitNotExecutable},
		{tools.ErrDispatch, exitFailure},
		{&tools.ExitError{Code: 9}, 9},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
