package bundler

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"
	"gopkg.in/yaml.v3"
)

// ScriptOption is an option declared by the project script via option().
type ScriptOption struct {
	DefaultValue starlark.String
	Help         string
}

func (o ScriptOption) Default() string {
	return o.DefaultValue.GoString()
}

// ScriptResult holds everything a project script declared.
type ScriptResult struct {
	Modules []string
	Options map[string]ScriptOption
	Values  map[string]string
}

type scriptCtx struct {
	ctx          context.Context
	filepath     string
	projectRoot  string
	modules      []string
	options      map[string]ScriptOption
	optionValues map[string]string
	yamlCache    map[string]interface{}
}

func getScriptCtx(thread *starlark.Thread) *scriptCtx {
	return thread.Local("scriptCtx").(*scriptCtx)
}

func (ctx *scriptCtx) resolve(path string) string {
	if strings.HasPrefix(path, "//") {
		return filepath.Join(ctx.projectRoot, path[2:])
	}
	if !filepath.IsAbs(path) {
		return filepath.Join(filepath.Dir(ctx.filepath), path)
	}
	return filepath.Clean(path)
}

func (ctx *scriptCtx) simplify(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	if strings.HasPrefix(absPath, ctx.projectRoot) {
		return "//" + absPath[len(ctx.projectRoot)+1:]
	}
	return path
}

func scriptLog(thread *starlark.Thread, level string, msg string) {
	ctx := getScriptCtx(thread)
	pos := thread.CallFrame(1).Pos
	event := log(ctx.ctx).Info()
	if level == "warn" {
		event = log(ctx.ctx).Warn()
	}

	event.Msgf("%s:%d:%d: %s", ctx.simplify(ctx.filepath), pos.Line, pos.Col, msg)
}

// * Builtin functions

func starModule(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string

	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name)
	if err != nil {
		return nil, err
	}

	if name == "" {
		return nil, eris.New("module names can't be empty")
	}
	if strings.ContainsAny(name, "/\\.") {
		return nil, eris.Errorf("invalid module name %s (must be a plain directory name)", name)
	}

	ctx := getScriptCtx(thread)
	ctx.modules = append(ctx.modules, name)
	return starlark.None, nil
}

func starOption(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var defaultValue starlark.String
	var help string

	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "default?", &defaultValue, "help?", &help)
	if err != nil {
		return nil, err
	}

	ctx := getScriptCtx(thread)
	ctx.options[name] = ScriptOption{
		DefaultValue: defaultValue,
		Help:         help,
	}

	value, ok := ctx.optionValues[name]
	if ok {
		return starlark.String(value), nil
	}

	return defaultValue, nil
}

func starReadYaml(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var path string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &path)
	if err != nil {
		return nil, err
	}

	ctx := getScriptCtx(thread)
	path = ctx.resolve(path)

	parsed, ok := ctx.yamlCache[path]
	if !ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to read %s", ctx.simplify(path))
		}

		err = yaml.Unmarshal(data, &parsed)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to parse %s", ctx.simplify(path))
		}

		ctx.yamlCache[path] = parsed
	}

	return interfaceToStarlark(parsed)
}

func starInfo(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
	if err != nil {
		return nil, err
	}

	scriptLog(thread, "info", message)
	return starlark.None, nil
}

func starWarn(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
	if err != nil {
		return nil, err
	}

	scriptLog(thread, "warn", message)
	return starlark.None, nil
}

func starError(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
	if err != nil {
		return nil, err
	}

	return nil, eris.New(message)
}

func interfaceToStarlark(value interface{}) (starlark.Value, error) {
	switch value := value.(type) {
	case nil:
		return starlark.None, nil
	case string:
		return starlark.String(value), nil
	case int:
		return starlark.MakeInt(value), nil
	case bool:
		return starlark.Bool(value), nil
	case float64:
		return starlark.Float(value), nil
	}

	refValue := reflect.ValueOf(value)
	switch refValue.Kind() {
	case reflect.Slice, reflect.Array:
		tuple := make(starlark.Tuple, refValue.Len())
		for idx := 0; idx < refValue.Len(); idx++ {
			item, err := interfaceToStarlark(refValue.Index(idx).Interface())
			if err != nil {
				return nil, err
			}
			tuple[idx] = item
		}
		return tuple, nil
	case reflect.Map:
		dict := starlark.NewDict(refValue.Len())
		iter := refValue.MapRange()
		for iter.Next() {
			key, err := interfaceToStarlark(iter.Key().Interface())
			if err != nil {
				return nil, err
			}

			item, err := interfaceToStarlark(iter.Value().Interface())
			if err != nil {
				return nil, err
			}

			if err := dict.SetKey(key, item); err != nil {
				return nil, err
			}
		}
		return dict, nil
	}

	return nil, eris.Errorf("encountered unsupported type %v", refValue.Kind())
}

// RunScript evaluates a project script and returns the declared modules and
// options. The passed options override the declared defaults.
func RunScript(ctx context.Context, filename, projectRoot string, options map[string]string) (*ScriptResult, error) {
	projectRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, err
	}

	filename, err = filepath.Abs(filename)
	if err != nil {
		return nil, err
	}

	if options == nil {
		options = make(map[string]string)
	}

	builtins := starlark.StringDict{
		"OS":        starlark.String(runtime.GOOS),
		"ARCH":      starlark.String(runtime.GOARCH),
		"module":    starlark.NewBuiltin("module", starModule),
		"option":    starlark.NewBuiltin("option", starOption),
		"read_yaml": starlark.NewBuiltin("read_yaml", starReadYaml),
		"info":      starlark.NewBuiltin("info", starInfo),
		"warn":      starlark.NewBuiltin("warn", starWarn),
		"error":     starlark.NewBuiltin("error", starError),
	}

	thread := &starlark.Thread{
		Name: "main",
		Print: func(thread *starlark.Thread, msg string) {
			log(ctx).Info().Str("thread", thread.Name).Msg(msg)
		},
	}
	threadCtx := scriptCtx{
		ctx:          ctx,
		filepath:     filename,
		projectRoot:  projectRoot,
		modules:      make([]string, 0),
		options:      make(map[string]ScriptOption),
		optionValues: options,
		yamlCache:    make(map[string]interface{}),
	}
	thread.SetLocal("scriptCtx", &threadCtx)

	script, err := os.ReadFile(filename)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read file")
	}

	_, err = starlark.ExecFile(thread, threadCtx.simplify(filename), script, builtins)
	if err != nil {
		if evalError, ok := err.(*starlark.EvalError); ok {
			return nil, eris.Errorf("failed to execute %s:\n%s", threadCtx.simplify(filename), evalError.Backtrace())
		}
		return nil, eris.Wrap(err, "failed to execute")
	}

	values := make(map[string]string, len(threadCtx.options))
	for name, option := range threadCtx.options {
		if value, ok := options[name]; ok {
			values[name] = value
		} else {
			values[name] = option.Default()
		}
	}

	return &ScriptResult{
		Modules: threadCtx.modules,
		Options: threadCtx.options,
		Values:  values,
	}, nil
}
