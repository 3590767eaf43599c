package bundler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootTargets(t *testing.T) {
	targets := Planner{}.RootTargets()
	require.Len(t, targets, 3)

	assert.Equal(t, KindTypes, targets[0].Kind)
	assert.Equal(t, KindESM, targets[1].Kind)
	assert.Equal(t, KindCJS, targets[2].Kind)

	for _, target := range targets {
		assert.True(t, target.Module.IsRoot())
		assert.Equal(t, "src/index.ts", target.Input)
	}

	assert.Equal(t, "dist/index.d.ts", targets[0].Output)
	assert.Equal(t, "dist/esm/index.mjs", targets[1].Output)
	assert.Equal(t, "dist/cjs/index.cjs", targets[2].Output)

	assert.Equal(t, CompileOptions{EmitTypes: true, FailOnError: true}, targets[0].Options)
	for _, target := range targets[1:] {
		assert.True(t, target.Options.Strict)
		assert.True(t, target.Options.PreferConst)
		assert.False(t, target.Options.SourceMap)
	}
}

func TestRootTargetsIgnoreStrategy(t *testing.T) {
	fast := Planner{Strategy: FastTranspile}.RootTargets()
	checked := Planner{Strategy: TypeCheckedCompile}.RootTargets()
	assert.Equal(t, fast, checked)
}

func TestModuleTargets(t *testing.T) {
	targets := Planner{}.ModuleTargets([]string{"billing", "reports"})
	require.Len(t, targets, 6)

	typeTargets := 0
	for _, target := range targets {
		if target.Kind == KindTypes {
			typeTargets++
		}
	}
	assert.Equal(t, 2, typeTargets)

	assert.Equal(t, "src/modules/billing/index.ts", targets[0].Input)
	assert.Equal(t, "dist/billing/index.d.ts", targets[0].Output)
	assert.Equal(t, "dist/esm/billing.mjs", targets[1].Output)
	assert.Equal(t, "dist/cjs/billing.cjs", targets[2].Output)
	assert.Equal(t, "dist/esm/reports.mjs", targets[4].Output)
}

func TestModuleTargetsEmpty(t *testing.T) {
	assert.Empty(t, Planner{}.ModuleTargets(nil))
	assert.Empty(t, Planner{}.ModuleTargets([]string{}))
}

func TestModuleTargetsKeepDuplicates(t *testing.T) {
	targets := Planner{}.ModuleTargets([]string{"a", "a"})
	require.Len(t, targets, 6)
	assert.Equal(t, targets[:3], targets[3:])
}

func TestModuleTargetsStrategyOptions(t *testing.T) {
	fast := Planner{Strategy: FastTranspile}.ModuleTargets([]string{"billing"})
	for _, target := range fast {
		assert.False(t, target.Options.TypeCheck, target.Name())
	}

	checked := Planner{Strategy: TypeCheckedCompile}.ModuleTargets([]string{"billing"})
	for _, target := range checked {
		if target.Kind == KindTypes {
			continue
		}
		assert.True(t, target.Options.TypeCheck, target.Name())
		assert.True(t, target.Options.FailOnError, target.Name())
	}
}

func TestTargetsCombinesRootAndModules(t *testing.T) {
	targets := Planner{}.Targets([]string{"billing"})
	require.Len(t, targets, 6)
	assert.True(t, targets[0].Module.IsRoot())
	assert.Equal(t, "billing", targets[3].Module.Name)
}

func TestCheckSources(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "src/index.ts")
	writeSource(t, root, "src/modules/billing/index.ts")

	planner := Planner{}
	assert.NoError(t, planner.CheckSources(root, []string{"billing"}))

	err := planner.CheckSources(root, []string{"billing", "reports"})
	require.Error(t, err)

	var missing SourceMissing
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "reports", missing.Module)
}

func TestCheckSourcesMissingRoot(t *testing.T) {
	err := Planner{}.CheckSources(t.TempDir(), nil)
	require.Error(t, err)

	var missing SourceMissing
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "", missing.Module)
}

func writeSource(t *testing.T, root, name string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o770))
	require.NoError(t, os.WriteFile(path, []byte("export {};\n"), 0o660))
}
