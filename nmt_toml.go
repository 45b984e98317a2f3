package devtools

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// tomlWriter renders the small subset of TOML a mods.toml needs: string and
// boolean properties, tables and arrays of tables.
type tomlWriter struct {
	buf    bytes.Buffer
	indent int
}

func (w *tomlWriter) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.buf.WriteByte('\t')
	}
}

// str writes a string property. Empty values are skipped.
func (w *tomlWriter) str(key, value string) {
	if value == "" {
		return
	}
	w.writeIndent()
	fmt.Fprintf(&w.buf, "%s = %s\n", tomlKey(key), tomlString(value))
}

func (w *tomlWriter) boolean(key string, value bool) {
	w.writeIndent()
	fmt.Fprintf(&w.buf, "%s = %t\n", tomlKey(key), value)
}

func (w *tomlWriter) table(path ...string) {
	w.header("[", "]", path)
}

func (w *tomlWriter) arrayTable(path ...string) {
	w.header("[[", "]]", path)
}

func (w *tomlWriter) header(open, close string, path []string) {
	w.indent = 0
	w.buf.WriteByte('\n')
	keys := make([]string, len(path))
	for i, p := range path {
		keys[i] = tomlKey(p)
	}
	fmt.Fprintf(&w.buf, "%s%s%s\n", open, strings.Join(keys, "."), close)
	w.indent = 1
}

func (w *tomlWriter) bytes() []byte {
	return bytes.TrimPrefix(w.buf.Bytes(), []byte("\n"))
}

func tomlKey(key string) string {
	if key == "" {
		return `""`
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return tomlString(key)
		}
	}
	return key
}

func tomlString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// EncodeNmt renders n as a mods.toml document. The output is parsed back
// before it is returned.
func EncodeNmt(n Nmt) ([]byte, error) {
	var w tomlWriter
	contact := n.id.Contact

	w.str("modLoader", n.modLoader)
	w.str("loaderVersion", n.loaderVersion)
	w.str("license", n.id.License)
	w.str("issueTrackerURL", contact.issues)

	w.arrayTable("mods")
	w.str("modId", n.id.Namespace)
	w.str("version", n.id.Version)
	w.str("displayName", n.id.Name)
	w.str("description", n.id.Description)
	w.str("authors", strings.Join(n.id.Authors, ", "))
	if n.id.Icon != "" {
		w.str("logoFile", n.id.Icon)
		w.boolean("logoBlur", false)
	}
	w.str("displayURL", contact.homepage)
	w.str("issueTrackerURL", contact.issues)

	for _, d := range n.depends {
		w.arrayTable("dependencies", n.id.Namespace)
		w.str("modId", d.ModID)
		w.str("type", string(d.Type))
		w.str("versionRange", d.VersionRange)
		w.str("ordering", string(d.Ordering))
		w.str("side", string(d.Side))
	}

	if n.id.Icon != "" || len(n.properties) > 0 {
		w.table("modproperties", n.id.Namespace)
		w.str("catalogueImageIcon", n.id.Icon)
		for _, p := range n.properties {
			w.str(p.key, p.value)
		}
	}

	out := w.bytes()
	var check map[string]any
	if err := toml.Unmarshal(out, &check); err != nil {
		return nil, &EncodeError{Format: "toml", Err: err}
	}
	return out, nil
}
