package mirror

import (
	"github.com/danmuck/pypictl/internal/config"
	"github.com/danmuck/pypictl/internal/tools"
	"github.com/rs/zerolog"
)

const (
	SubcommandSync   = "sync"
	SubcommandVerify = "verify"
)

// Prepared is everything the pipeline produced before handing off.
type Prepared struct {
	Params     config.Params
	Document   Document
	Rendered   []byte
	Invocation tools.Invocation
}

type Pipeline struct {
	Dispatcher tools.Dispatcher
	Logger     zerolog.Logger
}

func NewPipeline(dispatcher tools.Dispatcher, logger zerolog.Logger) *Pipeline {
	return &Pipeline{Dispatcher: dispatcher, Logger: logger}
}

// Prepare initializes the data directory and writes the config document.
// p must come from config.Load, which already normalized the upstream.
// p.Init is forced true when the data directory had to be created.
func (pl *Pipeline) Prepare(p config.Params) (Prepared, error) {
	if err := config.Validate(p); err != nil {
		return Prepared{}, err
	}

	dataDir := p.DataDir()
	created, err := PrepareDataDir(dataDir)
	if err != nil {
		return Prepared{}, err
	}
	if created {
		p.Init = true
		pl.Logger.Info().Str("dir", dataDir).Msg("created data directory, running initial sync")
	}
	if p.ShadowmireUpstream != "" {
		pl.Logger.Debug().
			Str("env", config.EnvShadowmireUpstream).
			Str("value", p.ShadowmireUpstream).
			Msg("reserved variable set, ignoring")
	}

	doc := Build(p)
	rendered, err := RenderChecked(doc)
	if err != nil {
		return Prepared{}, err
	}
	if err := WriteDocument(p.ConfigPath, rendered); err != nil {
		return Prepared{}, err
	}

	pl.Logger.Info().
		Str("path", p.ConfigPath).
		Str("upstream", p.UpstreamURL).
		Bool("mirror_alias", doc.Options.ShadowmireUpstream != "").
		Int("exclude_rules", len(doc.Options.Exclude)).
		Bool("init", p.Init).
		Msgf("wrote shadowmire config\n%s", rendered)

	return Prepared{
		Params:     p,
		Document:   doc,
		Rendered:   rendered,
		Invocation: invocationFor(p),
	}, nil
}

// Dispatch hands off to shadowmire. With a process-replacing dispatcher it
// only returns on failure.
func (pl *Pipeline) Dispatch(prep Prepared) error {
	pl.Logger.Info().
		Str("tool", prep.Invocation.Path).
		Strs("args", prep.Invocation.Args).
		Str("dir", prep.Invocation.Dir).
		Msg("dispatching shadowmire")
	return pl.Dispatcher.Dispatch(prep.Invocation)
}

func (pl *Pipeline) Run(p config.Params) error {
	prep, err := pl.Prepare(p)
	if err != nil {
		return err
	}
	return pl.Dispatch(prep)
}

func invocationFor(p config.Params) tools.Invocation {
	subcommand := SubcommandSync
	if p.Init {
		subcommand = SubcommandVerify
	}
	return tools.Invocation{
		Path: p.Shadowmire,
		Args: []string{"--config", p.ConfigPath, subcommand},
		Dir:  p.DataDir(),
	}
}
