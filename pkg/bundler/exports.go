package bundler

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// ExportTargets lists the format-specific resolution targets for one public
// subpath. Field order matters to module resolvers: "types" has to come
// first, "default" last.
type ExportTargets struct {
	Types   string `json:"types,omitempty"`
	Import  string `json:"import,omitempty"`
	Require string `json:"require,omitempty"`
	Default string `json:"default,omitempty"`
}

// ExportMap is an ordered mapping from public subpaths to their resolution
// targets. Entries that weren't generated by this tool (for example
// "./package.json") survive a merge untouched and keep their position.
type ExportMap struct {
	paths   []string
	entries map[string]interface{}
}

func NewExportMap() *ExportMap {
	return &ExportMap{entries: make(map[string]interface{})}
}

func (m *ExportMap) Len() int {
	return len(m.paths)
}

// Paths returns the subpaths in document order.
func (m *ExportMap) Paths() []string {
	result := make([]string, len(m.paths))
	copy(result, m.paths)
	return result
}

// Entry returns the raw entry for a subpath.
func (m *ExportMap) Entry(path string) (interface{}, bool) {
	entry, ok := m.entries[path]
	return entry, ok
}

// Targets decodes the entry for a subpath into ExportTargets.
func (m *ExportMap) Targets(path string) (ExportTargets, bool) {
	entry, ok := m.entries[path]
	if !ok {
		return ExportTargets{}, false
	}

	switch value := entry.(type) {
	case ExportTargets:
		return value, true
	case json.RawMessage:
		var targets ExportTargets
		if err := json.Unmarshal(value, &targets); err != nil {
			return ExportTargets{}, false
		}
		return targets, true
	}
	return ExportTargets{}, false
}

// Set stores an entry for the given subpath. An existing subpath keeps its
// position in the map (last write wins), a new one is appended at the end.
func (m *ExportMap) Set(path string, entry interface{}) {
	if m.entries == nil {
		m.entries = make(map[string]interface{})
	}
	if _, ok := m.entries[path]; !ok {
		m.paths = append(m.paths, path)
	}
	m.entries[path] = entry
}

// Clone returns a shallow copy that can be modified independently.
func (m *ExportMap) Clone() *ExportMap {
	result := NewExportMap()
	result.paths = make([]string, len(m.paths))
	copy(result.paths, m.paths)
	for path, entry := range m.entries {
		result.entries[path] = entry
	}
	return result
}

// MarshalJSON encodes the map as a JSON object in document order.
func (m *ExportMap) MarshalJSON() ([]byte, error) {
	buf := bytes.Buffer{}
	buf.WriteByte('{')
	for idx, path := range m.paths {
		if idx > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(path)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to encode subpath %s", path)
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(m.entries[path])
		if err != nil {
			return nil, eris.Wrapf(err, "failed to encode entry for %s", path)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object while preserving its key order.
func (m *ExportMap) UnmarshalJSON(data []byte) error {
	m.paths = nil
	m.entries = make(map[string]interface{})

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return eris.Wrap(err, "failed to parse export map")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return eris.New("export map is not a JSON object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "failed to parse export map")
		}
		key, ok := keyTok.(string)
		if !ok {
			return eris.Errorf("unexpected token %v in export map", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return eris.Wrapf(err, "failed to parse export map entry %s", key)
		}
		m.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return eris.Wrap(err, "failed to parse export map")
	}
	return nil
}

// BuildExportMap returns base extended with the root entry and one "./<name>"
// entry per module, in declaration order. Colliding subpaths are overwritten
// (last write wins), everything else in base is preserved. The result always
// contains at least the root entry and the operation is idempotent.
func BuildExportMap(p Planner, names []string, base *ExportMap) *ExportMap {
	result := base.Clone()

	result.Set(".", exportTargetsFor(p, ModuleDescriptor{}))
	for _, name := range names {
		result.Set("./"+name, exportTargetsFor(p, ModuleDescriptor{Name: name}))
	}
	return result
}

func exportTargetsFor(p Planner, m ModuleDescriptor) ExportTargets {
	cjs := "./" + m.OutputPath(p.outputRoot(), KindCJS)
	return ExportTargets{
		Types:   "./" + m.OutputPath(p.outputRoot(), KindTypes),
		Import:  "./" + m.OutputPath(p.outputRoot(), KindESM),
		Require: cjs,
		Default: cjs,
	}
}
