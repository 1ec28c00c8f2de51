package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	EnvUpstreamURL        = "TUNASYNC_UPSTREAM_URL"
	EnvWorkingDir         = "TUNASYNC_WORKING_DIR"
	EnvExclude            = "PYPI_EXCLUDE"
	EnvInit               = "INIT"
	EnvShadowmireUpstream = "SHADOWMIRE_UPSTREAM"
	EnvShadowmire         = "SHADOWMIRE"
	EnvConfigPath         = "PYPICTL_CONFIG_PATH"
	EnvMetricsTextfile    = "PYPICTL_METRICS_TEXTFILE"
	EnvEnvFile            = "PYPICTL_ENV_FILE"
	EnvDispatch           = "PYPICTL_DISPATCH"
)

const (
	DefaultUpstreamURL = "https://pypi.org"
	DefaultShadowmire  = "/shadowmire.py"
	DefaultConfigPath  = "/tmp/shadowmire.toml"

	DispatchExec  = "exec"
	DispatchChild = "child"

	dataDirName = "web"
)

// ErrInvalid marks a missing or malformed parameter.
var ErrInvalid = errors.New("config: invalid parameters")

// Lookup resolves an environment key. os.LookupEnv satisfies it.
type Lookup func(key string) (string, bool)

// Params holds the operational parameters of one pipeline run, read once at
// startup and never mutated by the pipeline afterwards.
type Params struct {
	UpstreamURL string
	WorkingDir  string
	Exclude     []string
	Init        bool
	Shadowmire  string
	ConfigPath  string

	// ShadowmireUpstream is accepted for compatibility with existing job
	// definitions. Nothing reads it.
	ShadowmireUpstream string

	MetricsTextfile string
	// Dispatch is DispatchExec (replace this process) or DispatchChild.
	Dispatch string
}

// DataDir is the directory shadowmire mirrors into.
func (p Params) DataDir() string {
	return filepath.Join(p.WorkingDir, dataDirName)
}

// UsesMirrorAlias reports whether the upstream differs from the canonical index.
func (p Params) UsesMirrorAlias() bool {
	return p.UpstreamURL != DefaultUpstreamURL
}

func Load(lookup Lookup) (Params, error) {
	p := Params{
		UpstreamURL:        NormalizeUpstream(valueOr(lookup, EnvUpstreamURL, DefaultUpstreamURL)),
		WorkingDir:         value(lookup, EnvWorkingDir),
		Exclude:            SplitPatterns(value(lookup, EnvExclude)),
		Shadowmire:         valueOr(lookup, EnvShadowmire, DefaultShadowmire),
		ConfigPath:         valueOr(lookup, EnvConfigPath, DefaultConfigPath),
		ShadowmireUpstream: value(lookup, EnvShadowmireUpstream),
		MetricsTextfile:    value(lookup, EnvMetricsTextfile),
		Dispatch:           strings.ToLower(valueOr(lookup, EnvDispatch, DispatchExec)),
	}

	initFlag, err := parseFlag(EnvInit, value(lookup, EnvInit))
	if err != nil {
		return Params{}, err
	}
	p.Init = initFlag

	if err := Validate(p); err != nil {
		return Params{}, err
	}
	return p, nil
}

func Validate(p Params) error {
	if strings.TrimSpace(p.WorkingDir) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, EnvWorkingDir)
	}
	if strings.TrimSpace(p.UpstreamURL) == "" {
		return fmt.Errorf("%w: upstream url is empty", ErrInvalid)
	}
	if strings.TrimSpace(p.Shadowmire) == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalid, EnvShadowmire)
	}
	if strings.TrimSpace(p.ConfigPath) == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalid, EnvConfigPath)
	}
	switch p.Dispatch {
	case "", DispatchExec, DispatchChild:
	default:
		return fmt.Errorf("%w: %s=%q, want %s or %s", ErrInvalid, EnvDispatch, p.Dispatch, DispatchExec, DispatchChild)
	}
	return nil
}

// NormalizeUpstream strips exactly one trailing slash.
func NormalizeUpstream(raw string) string {
	return strings.TrimSuffix(raw, "/")
}

// SplitPatterns splits a whitespace-separated pattern list, keeping order
// and duplicates.
func SplitPatterns(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return []string{}
	}
	return fields
}

func parseFlag(key, raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a boolean flag", ErrInvalid, key, raw)
	}
	return v, nil
}

func value(lookup Lookup, key string) string {
	if lookup == nil {
		return ""
	}
	v, ok := lookup(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func valueOr(lookup Lookup, key, fallback string) string {
	if v := value(lookup, key); v != "" {
		return v
	}
	return fallback
}
