package devtools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFmjTaskIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	task := &FmjTask{Manifest: exampleFmj(t), OutputDir: dir}
	assert.Equal(t, TaskNotRun, task.State())

	out, err := task.Run()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fabric.mod.json"), out)
	assert.Equal(t, TaskRun, task.State())
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	_, err = task.Run()
	require.NoError(t, err)
	second, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFmjTaskReplacesContent(t *testing.T) {
	dir := t.TempDir()
	f := exampleFmj(t).WithDescription("old description").WithRecommend("modmenu")
	_, err := GenerateFmj(f, dir)
	require.NoError(t, err)

	bumped, err := NewFmj("examplemod", "Example Mod", "1.2.4")
	require.NoError(t, err)
	out, err := GenerateFmj(bumped, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "1.2.4"`)
	assert.NotContains(t, string(data), "1.2.3")
	assert.NotContains(t, string(data), "old description")
	assert.NotContains(t, string(data), "modmenu")
}

func TestNmtTaskCreatesMetaInf(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build", "generated")
	n := Derive(exampleFmj(t), NmtFromIdentity).WithLoaderVersion("[2,)")

	out, err := GenerateNmt(n, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "META-INF", "neoforge.mods.toml"), out)

	task := &NmtTask{Manifest: n, OutputDir: dir, Loader: "forge"}
	out, err = task.Run()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "META-INF", "forge.mods.toml"), out)

	first, err := os.ReadFile(filepath.Join(dir, "META-INF", "neoforge.mods.toml"))
	require.NoError(t, err)
	second, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTaskRefusesDirectoryAtTarget(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "fabric.mod.json"), 0o755))

	task := &FmjTask{Manifest: exampleFmj(t), OutputDir: dir}
	_, err := task.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRegular)

	var ge *GenerateError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "generateFmj", ge.Task)
	assert.Equal(t, TaskNotRun, task.State())
}

func TestNmtPath(t *testing.T) {
	assert.Equal(t, "META-INF/neoforge.mods.toml", NmtPath(""))
	assert.Equal(t, "META-INF/forge.mods.toml", NmtPath("forge"))
}
