package bundler

import (
	"fmt"
	"path"
)

// OutputKind selects which artifact a build target produces.
type OutputKind string

const (
	KindTypes OutputKind = "types"
	KindESM   OutputKind = "esm"
	KindCJS   OutputKind = "cjs"
)

// outputKinds is the fixed derivation order for every module.
var outputKinds = []OutputKind{KindTypes, KindESM, KindCJS}

// ModuleDescriptor identifies one sub-module of the package. The zero value
// (an empty name) refers to the package root.
type ModuleDescriptor struct {
	Name string `json:"name" yaml:"name"`
}

func (m ModuleDescriptor) IsRoot() bool {
	return m.Name == ""
}

// SourceEntry returns the canonical source entry point below sourceRoot.
// Sub-modules live in modules/<name>/index.ts, the root entry is index.ts.
func (m ModuleDescriptor) SourceEntry(sourceRoot string) string {
	if m.IsRoot() {
		return path.Join(sourceRoot, "index.ts")
	}
	return path.Join(sourceRoot, "modules", m.Name, "index.ts")
}

// OutputPath returns where the given output kind is written below outputRoot.
func (m ModuleDescriptor) OutputPath(outputRoot string, kind OutputKind) string {
	name := m.Name
	if m.IsRoot() {
		name = "index"
	}

	switch kind {
	case KindESM:
		return path.Join(outputRoot, "esm", name+".mjs")
	case KindCJS:
		return path.Join(outputRoot, "cjs", name+".cjs")
	default:
		if m.IsRoot() {
			return path.Join(outputRoot, "index.d.ts")
		}
		return path.Join(outputRoot, m.Name, "index.d.ts")
	}
}

// CompileOptions contains the format-specific compiler settings for one target.
type CompileOptions struct {
	Strict      bool `json:"strict" yaml:"strict"`
	PreferConst bool `json:"preferConst" yaml:"preferConst"`
	SourceMap   bool `json:"sourceMap" yaml:"sourceMap"`
	EmitTypes   bool `json:"emitTypes" yaml:"emitTypes"`
	TypeCheck   bool `json:"typeCheck" yaml:"typeCheck"`
	FailOnError bool `json:"failOnError" yaml:"failOnError"`
}

// BuildTarget is one unit of compilation: one source entry, one output format
// and one set of compiler options.
type BuildTarget struct {
	Module  ModuleDescriptor `json:"module" yaml:"module"`
	Kind    OutputKind       `json:"kind" yaml:"kind"`
	Input   string           `json:"input" yaml:"input"`
	Output  string           `json:"output" yaml:"output"`
	Options CompileOptions   `json:"options" yaml:"options"`
}

// Name returns a short identifier used in logs, e.g. "billing:esm".
func (t BuildTarget) Name() string {
	name := t.Module.Name
	if t.Module.IsRoot() {
		name = "root"
	}
	return fmt.Sprintf("%s:%s", name, t.Kind)
}
