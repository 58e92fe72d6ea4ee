package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/slotarena/internal/catalog"
	"github.com/calvinalkan/slotarena/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func Test_Load_Returns_Defaults_When_No_Files_Exist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir, Env: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, catalog.Hop, cfg.Engine)
	assert.Equal(t, catalog.Default, cfg.Version)
	assert.Equal(t, 100_000, cfg.BenchCount)
	assert.Equal(t, dir, cfg.EffectiveCwd)
	assert.Equal(t, filepath.Join(dir, ".arenactl_history"), cfg.HistoryPath)
	assert.Empty(t, cfg.Sources.Global)
	assert.Empty(t, cfg.Sources.Project)
}

func Test_Load_Applies_Precedence_When_All_Layers_Present(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xdg := t.TempDir()

	writeFile(t, filepath.Join(xdg, "arenactl", "config.json"), `{
		// global layer
		"engine": "dense",
		"version": "tiny",
		"check_ops": 50,
	}`)
	writeFile(t, filepath.Join(dir, config.FileName), `{"engine": "sparse", "history_file": "hist"}`)

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: dir,
		Version:         catalog.Unversioned,
		Env:             map[string]string{"XDG_CONFIG_HOME": xdg},
	})
	require.NoError(t, err)

	assert.Equal(t, catalog.Sparse, cfg.Engine, "project overrides global")
	assert.Equal(t, catalog.Unversioned, cfg.Version, "flag overrides files")
	assert.Equal(t, 50, cfg.CheckOps, "global survives when project is silent")
	assert.Equal(t, filepath.Join(dir, "hist"), cfg.HistoryPath)
	assert.Equal(t, filepath.Join(xdg, "arenactl", "config.json"), cfg.Sources.Global)
	assert.Equal(t, filepath.Join(dir, config.FileName), cfg.Sources.Project)
}

func Test_Load_Returns_ErrConfigFileNotFound_When_Explicit_Path_Missing(t *testing.T) {
	t.Parallel()

	_, err := config.Load(config.LoadInput{
		WorkDirOverride: t.TempDir(),
		ConfigPath:      "nope.json",
		Env:             map[string]string{},
	})
	require.ErrorIs(t, err, config.ErrConfigFileNotFound)
}

func Test_Load_Returns_ErrConfigInvalid_When_File_Is_Bad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "syntax", content: `{"engine": `, want: config.ErrConfigInvalid},
		{name: "empty engine", content: `{"engine": ""}`, want: config.ErrFieldEmpty},
		{name: "unknown engine", content: `{"engine": "btree"}`, want: catalog.ErrUnknownEngine},
		{name: "unknown version", content: `{"version": "u128"}`, want: catalog.ErrUnknownVersion},
		{name: "negative count", content: `{"bench_count": -1}`, want: config.ErrCountInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "cfg.json"), tt.content)

			_, err := config.Load(config.LoadInput{WorkDirOverride: dir, ConfigPath: "cfg.json", Env: map[string]string{}})
			require.ErrorIs(t, err, config.ErrConfigInvalid)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func Test_Load_Rejects_Unknown_Engine_Flag(t *testing.T) {
	t.Parallel()

	_, err := config.Load(config.LoadInput{WorkDirOverride: t.TempDir(), Engine: "list", Env: map[string]string{}})
	require.ErrorIs(t, err, catalog.ErrUnknownEngine)
}

func Test_Load_Uses_Home_For_History_When_Set(t *testing.T) {
	t.Parallel()

	home := t.TempDir()

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: t.TempDir(), Env: map[string]string{"HOME": home}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".arenactl_history"), cfg.HistoryPath)
}
