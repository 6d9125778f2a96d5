// Package config loads the optional .docdex.toml profile file: named root
// sets, include/exclude globs, and default thresholds. It is read only by
// the CLI layer — core packages always take explicit parameters and never
// read config or the environment directly.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the config file name. FindUpward looks it up in a
// starting directory and then each parent (the CLI starts at --root); Load
// with an empty path reads it from the working directory only.
const DefaultFileName = ".docdex.toml"

// Profile is one named indexing target with its own root, filters, and
// default thresholds.
type Profile struct {
	Root       string   `toml:"root"`
	Extensions []string `toml:"extensions"`
	Exclude    []string `toml:"exclude"`

	DuplicateThreshold        float64 `toml:"duplicate_threshold"`
	SectionClusterThreshold   float64 `toml:"section_cluster_threshold"`
	SectionClusterMinFiles    int     `toml:"section_cluster_min_files"`
	CanonicalOrphanThreshold  float64 `toml:"canonical_orphan_threshold"`
	DefaultTokenBudget        int     `toml:"default_token_budget"`
	DefaultAssembleSections   int     `toml:"default_assemble_sections"`
	DefaultAssembleDepth      int     `toml:"default_assemble_depth"`
}

// Config is the parsed .docdex.toml: an optional default profile name and
// a set of named profiles.
type Config struct {
	Default  string             `toml:"default"`
	Profiles map[string]Profile `toml:"profiles"`
}

// defaultProfile is what every profile is implicitly merged against, so a
// sparse .docdex.toml (or no file at all) still yields usable thresholds.
func defaultProfile() Profile {
	return Profile{
		Extensions:               []string{"md", "txt", "rst"},
		DuplicateThreshold:        0.5,
		SectionClusterThreshold:   0.7,
		SectionClusterMinFiles:    2,
		CanonicalOrphanThreshold:  0.6,
		DefaultTokenBudget:        8000,
		DefaultAssembleSections:   20,
		DefaultAssembleDepth:      1,
	}
}

// Load reads path (or DefaultFileName if path is empty). A missing file is
// not an error: Load returns a Config with no profiles, so callers fall
// back to defaultProfile() unchanged.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Profiles: map[string]Profile{}}, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return &cfg, nil
}

// Resolve returns the named profile merged over defaultProfile(), or just
// defaultProfile() if name is empty and no default is configured. An
// explicit name that does not exist is an error.
func (c *Config) Resolve(name string) (Profile, error) {
	base := defaultProfile()

	if name == "" {
		name = c.Default
	}
	if name == "" {
		return base, nil
	}

	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("config: no such profile %q", name)
	}

	if p.Root == "" {
		p.Root = base.Root
	}
	if len(p.Extensions) == 0 {
		p.Extensions = base.Extensions
	}
	if p.DuplicateThreshold == 0 {
		p.DuplicateThreshold = base.DuplicateThreshold
	}
	if p.SectionClusterThreshold == 0 {
		p.SectionClusterThreshold = base.SectionClusterThreshold
	}
	if p.SectionClusterMinFiles == 0 {
		p.SectionClusterMinFiles = base.SectionClusterMinFiles
	}
	if p.CanonicalOrphanThreshold == 0 {
		p.CanonicalOrphanThreshold = base.CanonicalOrphanThreshold
	}
	if p.DefaultTokenBudget == 0 {
		p.DefaultTokenBudget = base.DefaultTokenBudget
	}
	if p.DefaultAssembleSections == 0 {
		p.DefaultAssembleSections = base.DefaultAssembleSections
	}
	if p.DefaultAssembleDepth == 0 {
		p.DefaultAssembleDepth = base.DefaultAssembleDepth
	}
	return p, nil
}

// FindUpward searches dir and its ancestors for fileName, returning the
// first match. Mirrors the lookup a .gitignore-aware tool performs.
func FindUpward(dir, fileName string) (string, bool) {
	for {
		candidate := filepath.Join(dir, fileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
