package bundler

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Strategy selects how module code targets are compiled: a fast single-pass
// transpiler or a full type-checking compiler.
type Strategy int

const (
	FastTranspile Strategy = iota
	TypeCheckedCompile
)

func (s Strategy) String() string {
	if s == TypeCheckedCompile {
		return "checked"
	}
	return "fast"
}

// ParseStrategy converts a config value into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "fast":
		return FastTranspile, nil
	case "checked":
		return TypeCheckedCompile, nil
	}
	return FastTranspile, eris.Errorf("unknown strategy %s (must be fast or checked)", name)
}

// ToolSet names the external compiler binaries the rendered commands invoke.
type ToolSet struct {
	Transpiler string
	Compiler   string
}

// Compiler derives the per-format compile options and the shell command for a
// build target. There is one implementation per strategy.
type Compiler interface {
	Options(kind OutputKind) CompileOptions
	CommandLine(tools ToolSet, target BuildTarget) string
}

// CompilerFor returns the Compiler implementation for the given strategy.
func CompilerFor(s Strategy) Compiler {
	if s == TypeCheckedCompile {
		return checkedCompiler{}
	}
	return fastCompiler{}
}

type fastCompiler struct{}

func (fastCompiler) Options(kind OutputKind) CompileOptions {
	if kind == KindTypes {
		return CompileOptions{EmitTypes: true, FailOnError: true}
	}
	return CompileOptions{Strict: true, PreferConst: true}
}

func (fastCompiler) CommandLine(tools ToolSet, target BuildTarget) string {
	if target.Options.EmitTypes {
		return declarationCommand(tools, target)
	}

	cmd := fmt.Sprintf("%s %s --bundle --format=%s --outfile=%s",
		tools.Transpiler, shellQuote(target.Input), formatName(target.Kind), shellQuote(target.Output))
	if target.Options.SourceMap {
		cmd += " --sourcemap"
	}
	return cmd
}

type checkedCompiler struct{}

func (checkedCompiler) Options(kind OutputKind) CompileOptions {
	if kind == KindTypes {
		return CompileOptions{EmitTypes: true, FailOnError: true}
	}
	return CompileOptions{Strict: true, PreferConst: true, TypeCheck: true, FailOnError: true}
}

func (checkedCompiler) CommandLine(tools ToolSet, target BuildTarget) string {
	if target.Options.EmitTypes {
		return declarationCommand(tools, target)
	}

	module := "esnext"
	if target.Kind == KindCJS {
		module = "commonjs"
	}

	cmd := fmt.Sprintf("%s %s --module %s --outFile %s",
		tools.Compiler, shellQuote(target.Input), module, shellQuote(target.Output))
	if target.Options.Strict {
		cmd += " --strict"
	}
	if target.Options.FailOnError {
		cmd += " --noEmitOnError"
	}
	return cmd
}

// Both strategies extract declarations with the type-checking compiler since
// the transpiler never looks at types.
func declarationCommand(tools ToolSet, target BuildTarget) string {
	return fmt.Sprintf("%s %s --declaration --emitDeclarationOnly --outFile %s",
		tools.Compiler, shellQuote(target.Input), shellQuote(target.Output))
}

func formatName(kind OutputKind) string {
	if kind == KindCJS {
		return "cjs"
	}
	return "esm"
}

func shellQuote(value string) string {
	if strings.ContainsAny(value, " $'\"") {
		return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
	}
	return value
}
