package devtools

import "golang.org/x/exp/slices"

type DependencyType string

const (
	DependencyRequired     DependencyType = "required"
	DependencyOptional     DependencyType = "optional"
	DependencyIncompatible DependencyType = "incompatible"
	DependencyDiscouraged  DependencyType = "discouraged"
)

type Ordering string

const (
	OrderingNone   Ordering = "NONE"
	OrderingBefore Ordering = "BEFORE"
	OrderingAfter  Ordering = "AFTER"
)

type Side string

const (
	SideBoth   Side = "BOTH"
	SideClient Side = "CLIENT"
	SideServer Side = "SERVER"
)

const DefaultModLoader = "javafml"

// NmtDependency is one [[dependencies.<modId>]] entry. Zero fields are
// filled with required / NONE / BOTH when added to an Nmt.
type NmtDependency struct {
	ModID        string
	Type         DependencyType
	VersionRange string
	Ordering     Ordering
	Side         Side
}

type property struct {
	key   string
	value string
}

// Nmt is the neoforge.mods.toml model. Like Fmj it is a persistent value.
type Nmt struct {
	id            Identity
	modLoader     string
	loaderVersion string
	depends       []NmtDependency
	properties    []property
}

func NewNmt(namespace, name, version string) (Nmt, error) {
	n := NmtFromIdentity(Identity{Namespace: namespace, Name: name, Version: version})
	if err := n.id.require("mods.toml"); err != nil {
		return Nmt{}, err
	}
	return n, nil
}

// NmtFromIdentity maps the shared identity onto a fresh Nmt. It is the Nmt
// mapping passed to Derive.
func NmtFromIdentity(id Identity) Nmt {
	return Nmt{id: id.clone(), modLoader: DefaultModLoader}
}

func (n Nmt) Identity() Identity { return n.id.clone() }
func (n Nmt) LoaderVersion() string { return n.loaderVersion }
func (n Nmt) Depends() []NmtDependency { return slices.Clone(n.depends) }

func (n Nmt) WithNamespace(namespace string) Nmt {
	n.id.Namespace = namespace
	return n
}

func (n Nmt) WithName(name string) Nmt {
	n.id.Name = name
	return n
}

func (n Nmt) WithVersion(version string) Nmt {
	n.id.Version = version
	return n
}

func (n Nmt) WithDescription(description string) Nmt {
	n.id.Description = description
	return n
}

func (n Nmt) WithAuthors(authors ...string) Nmt {
	n.id.Authors = append(slices.Clip(n.id.Authors), authors...)
	return n
}

func (n Nmt) WithContact(configure func(Contact) Contact) Nmt {
	n.id.Contact = configure(n.id.Contact)
	return n
}

func (n Nmt) WithLicense(license string) Nmt {
	n.id.License = license
	return n
}

func (n Nmt) WithIcon(icon string) Nmt {
	n.id.Icon = icon
	return n
}

func (n Nmt) WithModLoader(modLoader string) Nmt {
	n.modLoader = modLoader
	return n
}

func (n Nmt) WithLoaderVersion(loaderVersion string) Nmt {
	n.loaderVersion = loaderVersion
	return n
}

func (n Nmt) WithDepend(modID, versionRange string) Nmt {
	return n.WithDependency(NmtDependency{ModID: modID, VersionRange: versionRange})
}

// WithDependency adds the dependency, replacing an earlier one on the same
// mod in place.
func (n Nmt) WithDependency(dep NmtDependency) Nmt {
	if dep.Type == "" {
		dep.Type = DependencyRequired
	}
	if dep.Ordering == "" {
		dep.Ordering = OrderingNone
	}
	if dep.Side == "" {
		dep.Side = SideBoth
	}
	i := slices.IndexFunc(n.depends, func(d NmtDependency) bool { return d.ModID == dep.ModID })
	if i < 0 {
		n.depends = append(slices.Clip(n.depends), dep)
		return n
	}
	n.depends = slices.Clone(n.depends)
	n.depends[i] = dep
	return n
}

func (n Nmt) WithProperty(key, value string) Nmt {
	i := slices.IndexFunc(n.properties, func(p property) bool { return p.key == key })
	if i < 0 {
		n.properties = append(slices.Clip(n.properties), property{key: key, value: value})
		return n
	}
	n.properties = slices.Clone(n.properties)
	n.properties[i].value = value
	return n
}
