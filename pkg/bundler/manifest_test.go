package bundler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestFixture = `{
	"name": "acme-sdk",
	"version": "1.4.0",
	"exports": {
		".": {
			"import": "./dist/index.js"
		},
		"./package.json": "./package.json"
	},
	"license": "MIT"
}
`

func writeManifest(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "package.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o660))
	return path
}

func TestLoadManifest(t *testing.T) {
	manifest, err := LoadManifest(writeManifest(t, manifestFixture))
	require.NoError(t, err)

	name, ok := manifest.Field("name")
	require.True(t, ok)
	assert.Equal(t, `"acme-sdk"`, strings.TrimSpace(string(name)))

	exports, err := manifest.Exports()
	require.NoError(t, err)
	assert.Equal(t, []string{".", "./package.json"}, exports.Paths())
}

func TestLoadManifestWithoutExports(t *testing.T) {
	manifest, err := LoadManifest(writeManifest(t, `{"name": "bare"}`))
	require.NoError(t, err)

	exports, err := manifest.Exports()
	require.NoError(t, err)
	assert.Equal(t, 0, exports.Len())
}

func TestLoadManifestRejectsNonObjects(t *testing.T) {
	_, err := LoadManifest(writeManifest(t, `[1, 2, 3]`))
	assert.Error(t, err)
}

func TestWithExportsKeepsFieldOrder(t *testing.T) {
	manifest, err := LoadManifest(writeManifest(t, manifestFixture))
	require.NoError(t, err)

	base, err := manifest.Exports()
	require.NoError(t, err)

	updated, err := manifest.WithExports(BuildExportMap(Planner{}, []string{"billing"}, base))
	require.NoError(t, err)

	data, err := updated.Encode()
	require.NoError(t, err)

	encoded := string(data)
	namePos := strings.Index(encoded, `"name"`)
	versionPos := strings.Index(encoded, `"version"`)
	exportsPos := strings.Index(encoded, `"exports"`)
	licensePos := strings.Index(encoded, `"license"`)
	assert.True(t, namePos < versionPos && versionPos < exportsPos && exportsPos < licensePos)

	assert.Contains(t, encoded, `"./billing"`)
	assert.Contains(t, encoded, `"./package.json"`)

	// the source manifest stays untouched
	original, ok := manifest.Field("exports")
	require.True(t, ok)
	assert.NotContains(t, string(original), "billing")
}

func TestEncodeFormatting(t *testing.T) {
	manifest, err := LoadManifest(writeManifest(t, manifestFixture))
	require.NoError(t, err)

	data, err := manifest.Encode()
	require.NoError(t, err)

	encoded := string(data)
	assert.True(t, strings.HasPrefix(encoded, "{\n\t\"name\": \"acme-sdk\",\n"))
	assert.True(t, strings.HasSuffix(encoded, "}\n"))
	assert.True(t, json.Valid(data))

	// encoding is deterministic
	again, err := manifest.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestEncodeRoundTripStable(t *testing.T) {
	path := writeManifest(t, manifestFixture)
	manifest, err := LoadManifest(path)
	require.NoError(t, err)

	first, err := manifest.Encode()
	require.NoError(t, err)
	require.NoError(t, manifest.Save(path))

	reloaded, err := LoadManifest(path)
	require.NoError(t, err)
	second, err := reloaded.Encode()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestSaveOverwrites(t *testing.T) {
	path := writeManifest(t, manifestFixture)
	manifest, err := LoadManifest(path)
	require.NoError(t, err)

	base, err := manifest.Exports()
	require.NoError(t, err)

	updated, err := manifest.WithExports(BuildExportMap(Planner{}, []string{"billing"}, base))
	require.NoError(t, err)
	require.NoError(t, updated.Save(path))

	reloaded, err := LoadManifest(path)
	require.NoError(t, err)

	exports, err := reloaded.Exports()
	require.NoError(t, err)

	entry, ok := exports.Targets("./billing")
	require.True(t, ok)
	assert.Equal(t, "./dist/esm/billing.mjs", entry.Import)
}

func TestSaveFailurePropagates(t *testing.T) {
	manifest, err := LoadManifest(writeManifest(t, manifestFixture))
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "missing", "package.json")
	err = manifest.Save(target)
	require.Error(t, err)

	var writeErr ManifestWriteFailed
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, target, writeErr.Path)

	// nothing may be left behind at the destination
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}
