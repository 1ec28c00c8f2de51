package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/pypictl/internal/config"
	"github.com/danmuck/pypictl/internal/logging"
	"github.com/danmuck/pypictl/internal/mirror"
	"github.com/rs/zerolog/log"
)

func main() {
	output := flag.String("output", "", "output path for the rendered config (stdout when empty)")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", config.DefaultConfigPath, "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	logging.ConfigureRuntime()

	if *validate {
		data, err := os.ReadFile(*input)
		if err != nil {
			log.Fatal().Err(err).Str("path", *input).Msg("read config")
		}
		doc, err := mirror.Validate(data)
		if err != nil {
			log.Fatal().Err(err).Str("path", *input).Msg("invalid config")
		}
		log.Info().
			Str("path", *input).
			Int("exclude_rules", len(doc.Options.Exclude)).
			Int("prerelease_exclude", len(doc.Options.PrereleaseExclude)).
			Str("shadowmire_upstream", doc.Options.ShadowmireUpstream).
			Msg("validated config")
		return
	}

	params, err := config.Load(os.LookupEnv)
	if err != nil {
		log.Fatal().Err(err).Msg("load parameters")
	}
	rendered, err := mirror.RenderChecked(mirror.Build(params))
	if err != nil {
		log.Fatal().Err(err).Msg("render config")
	}

	if err := emit(*output, rendered, *force, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("write config")
	}
	if *output != "" {
		log.Info().Str("path", *output).Msg("wrote config")
	}
}

// emit writes rendered to path, or to stdout when path is empty. It never
// touches the data directory.
func emit(path string, rendered []byte, overwrite bool, stdout io.Writer) error {
	if path == "" {
		_, err := stdout.Write(rendered)
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return mirror.WriteDocument(path, rendered)
}
