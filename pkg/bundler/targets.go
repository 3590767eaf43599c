package bundler

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Planner derives the build targets for one package from its module list.
// The zero value uses the conventional src/ and dist/ directories.
type Planner struct {
	SourceRoot string
	OutputRoot string
	Strategy   Strategy
}

func (p Planner) sourceRoot() string {
	if p.SourceRoot == "" {
		return "src"
	}
	return p.SourceRoot
}

func (p Planner) outputRoot() string {
	if p.OutputRoot == "" {
		return "dist"
	}
	return p.OutputRoot
}

// RootTargets returns the fixed triple for the root entry point: type
// declarations, an ES module build and a CommonJS build. The triple does not
// depend on the module list or the strategy.
func (p Planner) RootTargets() []BuildTarget {
	root := ModuleDescriptor{}
	codeOpts := CompileOptions{Strict: true, PreferConst: true}

	targets := make([]BuildTarget, 0, len(outputKinds))
	for _, kind := range outputKinds {
		opts := codeOpts
		if kind == KindTypes {
			opts = CompileOptions{EmitTypes: true, FailOnError: true}
		}

		targets = append(targets, BuildTarget{
			Module:  root,
			Kind:    kind,
			Input:   root.SourceEntry(p.sourceRoot()),
			Output:  root.OutputPath(p.outputRoot(), kind),
			Options: opts,
		})
	}
	return targets
}

// ModuleTargets returns one type-declaration target plus one target per code
// format for every name in the list. Order is preserved and duplicates are
// kept; an empty list yields an empty plan.
func (p Planner) ModuleTargets(names []string) []BuildTarget {
	comp := CompilerFor(p.Strategy)

	targets := make([]BuildTarget, 0, len(names)*len(outputKinds))
	for _, name := range names {
		module := ModuleDescriptor{Name: name}
		for _, kind := range outputKinds {
			targets = append(targets, BuildTarget{
				Module:  module,
				Kind:    kind,
				Input:   module.SourceEntry(p.sourceRoot()),
				Output:  module.OutputPath(p.outputRoot(), kind),
				Options: comp.Options(kind),
			})
		}
	}
	return targets
}

// Targets returns the full plan: the root triple followed by the sub-module
// targets in declaration order.
func (p Planner) Targets(names []string) []BuildTarget {
	return append(p.RootTargets(), p.ModuleTargets(names)...)
}

// CheckSources verifies that the root entry point and every declared module
// have a source entry below projectRoot. This runs before any target so a
// build never produces a partial output set.
func (p Planner) CheckSources(projectRoot string, names []string) error {
	modules := make([]ModuleDescriptor, 0, len(names)+1)
	modules = append(modules, ModuleDescriptor{})
	for _, name := range names {
		modules = append(modules, ModuleDescriptor{Name: name})
	}

	for _, module := range modules {
		entry := filepath.Join(projectRoot, filepath.FromSlash(module.SourceEntry(p.sourceRoot())))
		_, err := os.Stat(entry)
		if err == nil {
			continue
		}
		if eris.Is(err, os.ErrNotExist) {
			return SourceMissing{Module: module.Name, Entry: entry}
		}
		return eris.Wrapf(err, "Failed to check %s", entry)
	}
	return nil
}
