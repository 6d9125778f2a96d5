package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(filepath.Join(tmpDir, "nope.toml"))

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.Profiles)
}

func TestLoad_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ".docdex.toml")
	require.NoError(t, os.WriteFile(path, []byte("not valid toml [[["), 0o600))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestLoad_ProfilesAndDefault(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ".docdex.toml")
	content := `
default = "docs"

[profiles.docs]
root = "./docs"
extensions = ["md"]
duplicate_threshold = 0.6

[profiles.wiki]
root = "./wiki"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "docs", cfg.Default)
	assert.Len(t, cfg.Profiles, 2)
	assert.Equal(t, "./docs", cfg.Profiles["docs"].Root)
}

func TestResolve_NoNameUsesDefault(t *testing.T) {
	cfg := &Config{
		Default: "docs",
		Profiles: map[string]Profile{
			"docs": {Root: "./docs", DuplicateThreshold: 0.6},
		},
	}

	p, err := cfg.Resolve("")

	require.NoError(t, err)
	assert.Equal(t, "./docs", p.Root)
	assert.Equal(t, 0.6, p.DuplicateThreshold)
}

func TestResolve_EmptyConfigReturnsDefaults(t *testing.T) {
	cfg := &Config{Profiles: map[string]Profile{}}

	p, err := cfg.Resolve("")

	require.NoError(t, err)
	assert.Equal(t, defaultProfile().Extensions, p.Extensions)
	assert.Equal(t, 0.7, p.SectionClusterThreshold)
}

func TestResolve_UnknownProfile(t *testing.T) {
	cfg := &Config{Profiles: map[string]Profile{}}

	_, err := cfg.Resolve("nonexistent")

	assert.Error(t, err)
}

func TestResolve_MergesMissingFieldsFromDefaults(t *testing.T) {
	cfg := &Config{
		Profiles: map[string]Profile{
			"partial": {Root: "./x"},
		},
	}

	p, err := cfg.Resolve("partial")

	require.NoError(t, err)
	assert.Equal(t, "./x", p.Root)
	assert.Equal(t, defaultProfile().Extensions, p.Extensions)
	assert.Equal(t, defaultProfile().DefaultTokenBudget, p.DefaultTokenBudget)
}

func TestFindUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultFileName), []byte(""), 0o600))

	found, ok := FindUpward(nested, DefaultFileName)

	assert.True(t, ok)
	assert.Equal(t, filepath.Join(root, DefaultFileName), found)
}

func TestFindUpward_NotFound(t *testing.T) {
	root := t.TempDir()

	_, ok := FindUpward(root, DefaultFileName)

	assert.False(t, ok)
}
