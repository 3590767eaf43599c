package bundler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	logger := zerolog.Nop()
	return WithLogger(context.Background(), &logger)
}

func writeScript(t *testing.T, dir, contents string) string {
	t.Helper()

	path := filepath.Join(dir, "bundle.star")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o660))
	return path
}

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, `
info("configuring")
module("billing")
module("reports")
mode = option("mode", default="fast", help="compile mode")
`)

	result, err := RunScript(testContext(), script, dir, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"billing", "reports"}, result.Modules)
	assert.Equal(t, "fast", result.Values["mode"])
	assert.Equal(t, "compile mode", result.Options["mode"].Help)
}

func TestRunScriptOptionOverride(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, `mode = option("mode", default="fast")`)

	result, err := RunScript(testContext(), script, dir, map[string]string{"mode": "checked"})
	require.NoError(t, err)
	assert.Equal(t, "checked", result.Values["mode"])
}

func TestRunScriptReadYaml(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "modules.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("extra:\n  - billing\n  - reports\n"), 0o660))

	script := writeScript(t, dir, `
data = read_yaml("modules.yaml")
[module(name) for name in data["extra"]]
`)

	result, err := RunScript(testContext(), script, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"billing", "reports"}, result.Modules)
}

func TestRunScriptError(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, `error("boom")`)

	_, err := RunScript(testContext(), script, dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRunScriptRejectsBadModuleNames(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"", "a/b", ".."} {
		script := writeScript(t, dir, `module("`+name+`")`)
		_, err := RunScript(testContext(), script, dir, nil)
		assert.Error(t, err, name)
	}
}

func TestRunScriptMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := RunScript(testContext(), filepath.Join(dir, "bundle.star"), dir, nil)
	assert.Error(t, err)
}
