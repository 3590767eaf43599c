package bundler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCacheRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".packplan.cache")
	plan := &Plan{
		Modules:  []string{"billing", "reports"},
		Options:  map[string]string{"mode": "checked"},
		Strategy: TypeCheckedCompile,
	}

	require.NoError(t, WritePlanCache(file, plan))

	loaded, err := ReadPlanCache(file)
	require.NoError(t, err)
	assert.Equal(t, plan, loaded)
}

func TestPlanCacheMissing(t *testing.T) {
	_, err := ReadPlanCache(filepath.Join(t.TempDir(), ".packplan.cache"))
	require.Error(t, err)
	assert.True(t, eris.Is(err, os.ErrNotExist))
}
