package bundler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aidarkhanov/nanoid"
	"github.com/rotisserie/eris"
)

// Manifest is a parsed package manifest. The top-level field order of the
// source document is preserved so a rewrite only touches the exports field.
type Manifest struct {
	path   string
	keys   []string
	fields map[string]json.RawMessage
}

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", path)
	}

	m := &Manifest{path: path, fields: make(map[string]json.RawMessage)}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse %s", path)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, eris.Errorf("%s does not contain a JSON object", path)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, eris.Wrapf(err, "failed to parse %s", path)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, eris.Errorf("unexpected token %v in %s", keyTok, path)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, eris.Wrapf(err, "failed to parse field %s in %s", key, path)
		}
		m.set(key, value)
	}

	return m, nil
}

func (m *Manifest) set(key string, value json.RawMessage) {
	if _, ok := m.fields[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.fields[key] = value
}

// Path returns the location the manifest was loaded from.
func (m *Manifest) Path() string {
	return m.path
}

// Field returns the raw value of a top-level field.
func (m *Manifest) Field(key string) (json.RawMessage, bool) {
	value, ok := m.fields[key]
	return value, ok
}

// Exports parses the manifest's exports field. A missing field yields an
// empty map.
func (m *Manifest) Exports() (*ExportMap, error) {
	exports := NewExportMap()
	raw, ok := m.fields["exports"]
	if !ok {
		return exports, nil
	}

	if err := json.Unmarshal(raw, exports); err != nil {
		return nil, eris.Wrapf(err, "failed to parse the exports field of %s", m.path)
	}
	return exports, nil
}

// WithExports returns a copy of the manifest whose exports field is replaced
// with the given map. All other fields are untouched.
func (m *Manifest) WithExports(exports *ExportMap) (*Manifest, error) {
	data, err := json.Marshal(exports)
	if err != nil {
		return nil, eris.Wrap(err, "failed to encode the export map")
	}

	clone := &Manifest{path: m.path, fields: make(map[string]json.RawMessage, len(m.fields))}
	clone.keys = make([]string, len(m.keys))
	copy(clone.keys, m.keys)
	for key, value := range m.fields {
		clone.fields[key] = value
	}

	clone.set("exports", data)
	return clone, nil
}

// Encode renders the manifest with the fixed formatting policy: tab
// indentation, one field per line, a trailing newline and the original field
// order. Encoding the same manifest twice yields identical bytes.
func (m *Manifest) Encode() ([]byte, error) {
	buf := bytes.Buffer{}
	buf.WriteString("{\n")

	for idx, key := range m.keys {
		keyData, err := json.Marshal(key)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to encode field name %s", key)
		}

		buf.WriteByte('\t')
		buf.Write(keyData)
		buf.WriteString(": ")

		value := bytes.Buffer{}
		if err := json.Indent(&value, m.fields[key], "\t", "\t"); err != nil {
			return nil, eris.Wrapf(err, "failed to encode field %s", key)
		}
		buf.Write(value.Bytes())

		if idx < len(m.keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// Save persists the manifest to path, overwriting prior contents. The data is
// written to a temporary file first and moved into place afterwards so a
// failed write never leaves a truncated manifest behind.
func (m *Manifest) Save(path string) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}

	tmpPath := fmt.Sprintf("%s.%s.tmp", path, nanoid.New())
	if err := os.WriteFile(tmpPath, data, 0o660); err != nil {
		return ManifestWriteFailed{Path: path, Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return ManifestWriteFailed{Path: path, Err: err}
	}
	return nil
}
