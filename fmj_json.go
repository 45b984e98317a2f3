package devtools

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const fmjSchemaVersion = 1

var prettyOptions = &pretty.Options{Indent: "\t"}

// jsonObject appends keys in call order, which is what keeps the output
// stable across runs.
type jsonObject struct {
	doc []byte
	n   int
	err error
}

func newJSONObject() *jsonObject {
	return &jsonObject{doc: []byte("{}")}
}

func newJSONArray() *jsonObject {
	return &jsonObject{doc: []byte("[]")}
}

func (o *jsonObject) set(key string, value any) {
	if o.err != nil {
		return
	}
	o.doc, o.err = sjson.SetBytes(o.doc, jsonPath(key), value)
	o.n++
}

func (o *jsonObject) setRaw(key string, raw []byte) {
	if o.err != nil {
		return
	}
	o.doc, o.err = sjson.SetRawBytes(o.doc, jsonPath(key), raw)
	o.n++
}

func (o *jsonObject) setString(key, value string) {
	if value != "" {
		o.set(key, value)
	}
}

func (o *jsonObject) setObject(key string, child *jsonObject) {
	if child.err != nil {
		o.err = errors.Join(o.err, child.err)
		return
	}
	if child.n > 0 {
		o.setRaw(key, child.doc)
	}
}

func (o *jsonObject) append(value any) {
	if o.err != nil {
		return
	}
	o.doc, o.err = sjson.SetBytes(o.doc, "-1", value)
	o.n++
}

func (o *jsonObject) appendObject(child *jsonObject) {
	if child.err != nil {
		o.err = errors.Join(o.err, child.err)
		return
	}
	if o.err != nil {
		return
	}
	o.doc, o.err = sjson.SetRawBytes(o.doc, "-1", child.doc)
	o.n++
}

// jsonPath turns an object key into a single sjson path component.
func jsonPath(key string) string {
	escaped := gjson.Escape(key)
	if escaped == "" || escaped[0] == ':' || isDigits(escaped) {
		return ":" + escaped
	}
	return escaped
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// MarshalJSON renders the compact fabric.mod.json document.
func (f Fmj) MarshalJSON() ([]byte, error) {
	doc := newJSONObject()
	doc.set("schemaVersion", fmjSchemaVersion)
	doc.set("id", f.id.Namespace)
	doc.set("name", f.id.Name)
	doc.set("version", f.id.Version)
	doc.setString("description", f.id.Description)
	if len(f.id.Authors) > 0 {
		doc.set("authors", f.id.Authors)
	}
	doc.setObject("contact", contactJSON(f.id.Contact))
	doc.setString("license", f.id.License)
	doc.setString("icon", f.id.Icon)
	doc.setString("environment", string(f.environment))

	entrypoints := newJSONObject()
	for _, g := range f.entrypoints {
		entries := newJSONArray()
		for _, e := range g.entries {
			if e.Adapter == "" {
				entries.append(e.Value)
				continue
			}
			obj := newJSONObject()
			obj.set("adapter", e.Adapter)
			obj.set("value", e.Value)
			entries.appendObject(obj)
		}
		entrypoints.setObject(g.category, entries)
	}
	doc.setObject("entrypoints", entrypoints)

	doc.setString("accessWidener", f.accessWidener)

	mixins := newJSONArray()
	for _, m := range f.mixins {
		if m.Environment == "" {
			mixins.append(m.Config)
			continue
		}
		obj := newJSONObject()
		obj.set("config", m.Config)
		obj.set("environment", string(m.Environment))
		mixins.appendObject(obj)
	}
	doc.setObject("mixins", mixins)

	doc.setObject("depends", dependenciesJSON(f.depends))
	doc.setObject("recommends", dependenciesJSON(f.recommends))
	doc.setObject("suggests", dependenciesJSON(f.suggests))
	doc.setObject("conflicts", dependenciesJSON(f.conflicts))
	doc.setObject("breaks", dependenciesJSON(f.breaks))

	custom := newJSONObject()
	for _, e := range f.custom {
		if m, ok := e.value.(ModMenu); ok {
			custom.setObject(e.key, modMenuJSON(m))
			continue
		}
		custom.set(e.key, e.value)
	}
	doc.setObject("custom", custom)

	if doc.err != nil {
		return nil, doc.err
	}
	return doc.doc, nil
}

// EncodeFmj renders f as the tab-indented document written to disk.
func EncodeFmj(f Fmj) ([]byte, error) {
	raw, err := f.MarshalJSON()
	if err != nil {
		return nil, &EncodeError{Format: "json", Err: err}
	}
	if !gjson.ValidBytes(raw) {
		return nil, &EncodeError{Format: "json", Err: fmt.Errorf("invalid document for %q", f.id.Namespace)}
	}
	return pretty.PrettyOptions(raw, prettyOptions), nil
}

func contactJSON(c Contact) *jsonObject {
	obj := newJSONObject()
	obj.setString("homepage", c.homepage)
	obj.setString("sources", c.sources)
	obj.setString("issues", c.issues)
	return obj
}

func dependenciesJSON(deps []Dependency) *jsonObject {
	obj := newJSONObject()
	for _, d := range deps {
		switch len(d.Versions) {
		case 0:
			obj.set(d.ID, "*")
		case 1:
			obj.set(d.ID, d.Versions[0])
		default:
			obj.set(d.ID, d.Versions)
		}
	}
	return obj
}

func modMenuJSON(m ModMenu) *jsonObject {
	obj := newJSONObject()
	links := newJSONObject()
	for _, l := range m.links {
		links.set(l.key, l.url)
	}
	obj.setObject("links", links)
	if len(m.badges) > 0 {
		obj.set("badges", m.badges)
	}
	if m.parent != nil {
		parent := newJSONObject()
		parent.set("id", m.parent.id)
		parent.setString("name", m.parent.name)
		parent.setString("description", m.parent.description)
		parent.setString("icon", m.parent.icon)
		if len(m.parent.badges) > 0 {
			parent.set("badges", m.parent.badges)
		}
		obj.setObject("parent", parent)
	}
	return obj
}
