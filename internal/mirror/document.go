package mirror

import "github.com/danmuck/pypictl/internal/config"

// NightlyPattern suppresses nightly-tagged package names and versions.
const NightlyPattern = ".+-nightly(-|$)"

// prereleaseExclude lists packages whose prereleases are unreliable or
// oversized. Only stable versions of these are synced.
var prereleaseExclude = [...]string{
	"^duckdb$",
	"^graphscope$",
	"^graphscope-client$",
	"^gs-apps$",
	"^gs-engine$",
	"^gs-include$",
}

type Document struct {
	Options Options `toml:"options"`
}

type Options struct {
	SyncPackages       bool     `toml:"sync_packages"`
	ShadowmireUpstream string   `toml:"shadowmire_upstream,omitempty"`
	Exclude            []string `toml:"exclude"`
	PrereleaseExclude  []string `toml:"prerelease_exclude"`
}

// PrereleaseExcludes returns a copy of the fixed prerelease exclusion set.
func PrereleaseExcludes() []string {
	out := make([]string, len(prereleaseExclude))
	copy(out, prereleaseExclude[:])
	return out
}

// ExcludeRules returns the nightly rule followed by patterns in input order.
func ExcludeRules(patterns []string) []string {
	out := make([]string, 0, len(patterns)+1)
	out = append(out, NightlyPattern)
	return append(out, patterns...)
}

func Build(p config.Params) Document {
	opts := Options{
		SyncPackages:      true,
		Exclude:           ExcludeRules(p.Exclude),
		PrereleaseExclude: PrereleaseExcludes(),
	}
	if p.UsesMirrorAlias() {
		opts.ShadowmireUpstream = p.UpstreamURL
	}
	return Document{Options: opts}
}
