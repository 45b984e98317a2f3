package devtools

import "golang.org/x/exp/slices"

type Environment string

const (
	EnvironmentAny    Environment = "*"
	EnvironmentClient Environment = "client"
	EnvironmentServer Environment = "server"
)

// Entrypoint is a symbol the loader invokes. Adapter is empty for the
// default language adapter.
type Entrypoint struct {
	Value   string
	Adapter string
}

type entrypointGroup struct {
	category string
	entries  []Entrypoint
}

// Mixin references a mixin configuration file, optionally restricted to one
// environment.
type Mixin struct {
	Config      string
	Environment Environment
}

// Dependency is a constraint on another mod. An empty Versions list means
// any version.
type Dependency struct {
	ID       string
	Versions []string
}

type customEntry struct {
	key   string
	value any
}

const modMenuKey = "modmenu"

// Fmj is the fabric.mod.json model. It is a persistent value: every With
// method returns an updated copy and leaves the receiver untouched.
type Fmj struct {
	id            Identity
	environment   Environment
	entrypoints   []entrypointGroup
	accessWidener string
	mixins        []Mixin
	depends       []Dependency
	recommends    []Dependency
	suggests      []Dependency
	conflicts     []Dependency
	breaks        []Dependency
	custom        []customEntry
}

func NewFmj(namespace, name, version string) (Fmj, error) {
	f := Fmj{id: Identity{Namespace: namespace, Name: name, Version: version}}
	if err := f.id.require("fabric.mod.json"); err != nil {
		return Fmj{}, err
	}
	return f, nil
}

func (f Fmj) Identity() Identity { return f.id.clone() }
func (f Fmj) Namespace() string { return f.id.Namespace }
func (f Fmj) Version() string { return f.id.Version }
func (f Fmj) Environment() Environment { return f.environment }
func (f Fmj) Depends() []Dependency { return cloneDependencies(f.depends) }
func (f Fmj) Recommends() []Dependency { return cloneDependencies(f.recommends) }
func (f Fmj) Breaks() []Dependency { return cloneDependencies(f.breaks) }
func (f Fmj) Mixins() []Mixin { return slices.Clone(f.mixins) }
func (f Fmj) AccessWidener() string { return f.accessWidener }

func (f Fmj) WithNamespace(namespace string) Fmj {
	f.id.Namespace = namespace
	return f
}

func (f Fmj) WithName(name string) Fmj {
	f.id.Name = name
	return f
}

func (f Fmj) WithVersion(version string) Fmj {
	f.id.Version = version
	return f
}

func (f Fmj) WithDescription(description string) Fmj {
	f.id.Description = description
	return f
}

func (f Fmj) WithAuthors(authors ...string) Fmj {
	f.id.Authors = append(slices.Clip(f.id.Authors), authors...)
	return f
}

func (f Fmj) WithContact(configure func(Contact) Contact) Fmj {
	f.id.Contact = configure(f.id.Contact)
	return f
}

func (f Fmj) WithLicense(license string) Fmj {
	f.id.License = license
	return f
}

func (f Fmj) WithIcon(icon string) Fmj {
	f.id.Icon = icon
	return f
}

func (f Fmj) WithEnvironment(environment Environment) Fmj {
	f.environment = environment
	return f
}

// WithEntrypoints appends plain entrypoints to the category, creating it on
// first use. Categories keep their first-declaration order.
func (f Fmj) WithEntrypoints(category string, values ...string) Fmj {
	for _, v := range values {
		f = f.WithEntrypoint(category, Entrypoint{Value: v})
	}
	return f
}

func (f Fmj) WithEntrypoint(category string, entrypoint Entrypoint) Fmj {
	i := slices.IndexFunc(f.entrypoints, func(g entrypointGroup) bool { return g.category == category })
	groups := slices.Clone(f.entrypoints)
	if i < 0 {
		f.entrypoints = append(groups, entrypointGroup{category: category, entries: []Entrypoint{entrypoint}})
		return f
	}
	groups[i].entries = append(slices.Clip(groups[i].entries), entrypoint)
	f.entrypoints = groups
	return f
}

func (f Fmj) WithAccessWidener(accessWidener string) Fmj {
	f.accessWidener = accessWidener
	return f
}

func (f Fmj) WithMixins(configs ...string) Fmj {
	for _, c := range configs {
		f = f.WithMixin(Mixin{Config: c})
	}
	return f
}

func (f Fmj) WithMixin(mixin Mixin) Fmj {
	f.mixins = append(slices.Clip(f.mixins), mixin)
	return f
}

func (f Fmj) WithDepend(id string, versions ...string) Fmj {
	f.depends = putDependency(f.depends, id, versions)
	return f
}

func (f Fmj) WithRecommend(id string, versions ...string) Fmj {
	f.recommends = putDependency(f.recommends, id, versions)
	return f
}

func (f Fmj) WithSuggest(id string, versions ...string) Fmj {
	f.suggests = putDependency(f.suggests, id, versions)
	return f
}

func (f Fmj) WithConflict(id string, versions ...string) Fmj {
	f.conflicts = putDependency(f.conflicts, id, versions)
	return f
}

func (f Fmj) WithBreak(id string, versions ...string) Fmj {
	f.breaks = putDependency(f.breaks, id, versions)
	return f
}

// WithCustom sets a value under the custom object. The value must be
// encodable by encoding/json; this is only checked at serialization.
func (f Fmj) WithCustom(key string, value any) Fmj {
	f.custom = putCustom(f.custom, key, value)
	return f
}

func (f Fmj) WithModMenu(configure func(ModMenu) ModMenu) Fmj {
	var current ModMenu
	for _, e := range f.custom {
		if m, ok := e.value.(ModMenu); ok && e.key == modMenuKey {
			current = m
		}
	}
	f.custom = putCustom(f.custom, modMenuKey, configure(current))
	return f
}

func putDependency(list []Dependency, id string, versions []string) []Dependency {
	dep := Dependency{ID: id, Versions: slices.Clone(versions)}
	i := slices.IndexFunc(list, func(d Dependency) bool { return d.ID == id })
	if i < 0 {
		return append(slices.Clip(list), dep)
	}
	list = slices.Clone(list)
	list[i] = dep
	return list
}

func putCustom(list []customEntry, key string, value any) []customEntry {
	i := slices.IndexFunc(list, func(e customEntry) bool { return e.key == key })
	if i < 0 {
		return append(slices.Clip(list), customEntry{key: key, value: value})
	}
	list = slices.Clone(list)
	list[i].value = value
	return list
}

func cloneDependencies(list []Dependency) []Dependency {
	out := make([]Dependency, len(list))
	for i, d := range list {
		out[i] = Dependency{ID: d.ID, Versions: slices.Clone(d.Versions)}
	}
	return out
}

// ModMenu is the custom extension read by the Mod Menu configuration screen.
type ModMenu struct {
	links  []modMenuLink
	badges []string
	parent *ParentMod
}

type modMenuLink struct {
	key string
	url string
}

func (m ModMenu) WithLink(key, url string) ModMenu {
	i := slices.IndexFunc(m.links, func(l modMenuLink) bool { return l.key == key })
	if i < 0 {
		m.links = append(slices.Clip(m.links), modMenuLink{key: key, url: url})
		return m
	}
	m.links = slices.Clone(m.links)
	m.links[i].url = url
	return m
}

func (m ModMenu) WithBadges(badges ...string) ModMenu {
	m.badges = append(slices.Clip(m.badges), badges...)
	return m
}

func (m ModMenu) WithParent(id, name string, configure func(ParentMod) ParentMod) ModMenu {
	parent := ParentMod{id: id, name: name}
	if configure != nil {
		parent = configure(parent)
	}
	m.parent = &parent
	return m
}

func (m ModMenu) IsZero() bool {
	return len(m.links) == 0 && len(m.badges) == 0 && m.parent == nil
}

// ParentMod groups a library under its parent entry in the mod list.
type ParentMod struct {
	id          string
	name        string
	description string
	icon        string
	badges      []string
}

func (p ParentMod) WithDescription(description string) ParentMod {
	p.description = description
	return p
}

func (p ParentMod) WithIcon(icon string) ParentMod {
	p.icon = icon
	return p
}

func (p ParentMod) WithBadges(badges ...string) ParentMod {
	p.badges = append(slices.Clip(p.badges), badges...)
	return p
}
