package internal

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"

	devtools "github.com/lambdaurora/lambdynamiclights-devtools"
)

const ProjectFile = "ldl.toml"

type GameConfig struct {
	Version     string `mapstructure:"version" toml:"version"`
	JavaVersion int    `mapstructure:"java_version" toml:"java_version,omitempty"`
}

type ContactConfig struct {
	Homepage string `mapstructure:"homepage" toml:"homepage,omitempty"`
	Sources  string `mapstructure:"sources" toml:"sources,omitempty"`
	Issues   string `mapstructure:"issues" toml:"issues,omitempty"`
}

type EntrypointConfig struct {
	Category string `mapstructure:"category" toml:"category"`
	Value    string `mapstructure:"value" toml:"value"`
	Adapter  string `mapstructure:"adapter" toml:"adapter,omitempty"`
}

type DependencyConfig struct {
	ID       string   `mapstructure:"id" toml:"id"`
	Versions []string `mapstructure:"versions" toml:"versions,omitempty"`
}

type LinkConfig struct {
	Key string `mapstructure:"key" toml:"key"`
	URL string `mapstructure:"url" toml:"url"`
}

type ParentConfig struct {
	ID          string   `mapstructure:"id" toml:"id"`
	Name        string   `mapstructure:"name" toml:"name,omitempty"`
	Description string   `mapstructure:"description" toml:"description,omitempty"`
	Icon        string   `mapstructure:"icon" toml:"icon,omitempty"`
	Badges      []string `mapstructure:"badges" toml:"badges,omitempty"`
}

type ModMenuConfig struct {
	Badges []string      `mapstructure:"badges" toml:"badges,omitempty"`
	Links  []LinkConfig  `mapstructure:"links" toml:"links,omitempty"`
	Parent *ParentConfig `mapstructure:"parent" toml:"parent,omitempty"`
}

type NeoForgeDependency struct {
	ID           string `mapstructure:"id" toml:"id"`
	VersionRange string `mapstructure:"version_range" toml:"version_range"`
	Type         string `mapstructure:"type" toml:"type,omitempty"`
	Ordering     string `mapstructure:"ordering" toml:"ordering,omitempty"`
	Side         string `mapstructure:"side" toml:"side,omitempty"`
}

type PropertyConfig struct {
	Key   string `mapstructure:"key" toml:"key"`
	Value string `mapstructure:"value" toml:"value"`
}

type NeoForgeConfig struct {
	Enabled       bool                 `mapstructure:"enabled" toml:"enabled"`
	Loader        string               `mapstructure:"loader" toml:"loader,omitempty"`
	ModLoader     string               `mapstructure:"mod_loader" toml:"mod_loader,omitempty"`
	LoaderVersion string               `mapstructure:"loader_version" toml:"loader_version,omitempty"`
	Depends       []NeoForgeDependency `mapstructure:"depends" toml:"depends,omitempty"`
	Properties    []PropertyConfig     `mapstructure:"properties" toml:"properties,omitempty"`
}

type HooksConfig struct {
	AfterGenerate []string      `mapstructure:"after_generate" toml:"after_generate,omitempty"`
	Timeout       time.Duration `mapstructure:"timeout" toml:"timeout,omitempty"`
}

// PublishConfig is only read from the environment.
type PublishConfig struct {
	CurseForgeToken string `mapstructure:"curseforge_token"`
	ModrinthToken   string `mapstructure:"modrinth_token"`
	Maven           string `mapstructure:"maven"`
}

// Project is the content of ldl.toml, loaded once and handed to everything
// that needs build metadata.
type Project struct {
	Namespace     string             `mapstructure:"namespace" toml:"namespace"`
	Name          string             `mapstructure:"name" toml:"name"`
	Version       string             `mapstructure:"version" toml:"version"`
	Description   string             `mapstructure:"description" toml:"description,omitempty"`
	Authors       []string           `mapstructure:"authors" toml:"authors,omitempty"`
	License       string             `mapstructure:"license" toml:"license,omitempty"`
	Icon          string             `mapstructure:"icon" toml:"icon,omitempty"`
	Environment   string             `mapstructure:"environment" toml:"environment,omitempty"`
	AccessWidener string             `mapstructure:"access_widener" toml:"access_widener,omitempty"`
	Mixins        []string           `mapstructure:"mixins" toml:"mixins,omitempty"`
	ResourcesDir  string             `mapstructure:"resources_dir" toml:"resources_dir,omitempty"`
	OutputDir     string             `mapstructure:"output_dir" toml:"output_dir,omitempty"`
	Game          GameConfig         `mapstructure:"game" toml:"game"`
	Contact       ContactConfig      `mapstructure:"contact" toml:"contact,omitempty"`
	Entrypoints   []EntrypointConfig `mapstructure:"entrypoints" toml:"entrypoints,omitempty"`
	Depends       []DependencyConfig `mapstructure:"depends" toml:"depends,omitempty"`
	Recommends    []DependencyConfig `mapstructure:"recommends" toml:"recommends,omitempty"`
	Suggests      []DependencyConfig `mapstructure:"suggests" toml:"suggests,omitempty"`
	Conflicts     []DependencyConfig `mapstructure:"conflicts" toml:"conflicts,omitempty"`
	Breaks        []DependencyConfig `mapstructure:"breaks" toml:"breaks,omitempty"`
	ModMenu       *ModMenuConfig     `mapstructure:"modmenu" toml:"modmenu,omitempty"`
	NeoForge      NeoForgeConfig     `mapstructure:"neoforge" toml:"neoforge,omitempty"`
	Hooks         HooksConfig        `mapstructure:"hooks" toml:"hooks,omitempty"`
	Publish       PublishConfig      `mapstructure:"publish" toml:"-"`

	root string
}

// ProjectError lists everything wrong with a project file.
type ProjectError struct {
	Path     string
	Problems []string
}

func (e *ProjectError) Error() string {
	return fmt.Sprintf("invalid project %s: %s", e.Path, strings.Join(e.Problems, "; "))
}

var environments = []string{"*", "client", "server"}

func newProjectViper(root string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path.Join(root, ProjectFile))
	v.SetConfigType("toml")

	v.SetDefault("environment", "*")
	v.SetDefault("resources_dir", "src/main/resources")
	v.SetDefault("output_dir", "build/generated/generated_resources")
	v.SetDefault("neoforge.loader", devtools.DefaultNmtLoader)
	v.SetDefault("neoforge.mod_loader", devtools.DefaultModLoader)
	v.SetDefault("hooks.timeout", "30s")

	v.SetEnvPrefix("LDL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("publish.curseforge_token", "CURSEFORGE_TOKEN")
	_ = v.BindEnv("publish.modrinth_token", "MODRINTH_TOKEN")
	_ = v.BindEnv("publish.maven", "LDL_MAVEN")
	return v
}

// LoadProject reads root/ldl.toml. LDL_* environment variables override
// keys of the file.
func LoadProject(root string) (*Project, error) {
	v := newProjectViper(root)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	p := &Project{root: root}
	if err := v.Unmarshal(p); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Project) Root() string {
	return p.root
}

func (p *Project) Validate() error {
	var problems []string
	if p.Namespace == "" {
		problems = append(problems, "namespace is required")
	}
	if p.Name == "" {
		problems = append(problems, "name is required")
	}
	if p.Version == "" {
		problems = append(problems, "version is required")
	}
	if p.Game.Version == "" {
		problems = append(problems, "game.version is required")
	}
	if p.Environment != "" && !slices.Contains(environments, p.Environment) {
		problems = append(problems, fmt.Sprintf("environment %q is not one of %s", p.Environment, strings.Join(environments, ", ")))
	}
	for i, e := range p.Entrypoints {
		if e.Category == "" || e.Value == "" {
			problems = append(problems, fmt.Sprintf("entrypoints[%d] needs a category and a value", i))
		}
	}
	for _, m := range p.Mixins {
		if !doublestar.ValidatePattern(m) {
			problems = append(problems, fmt.Sprintf("mixin pattern %q is invalid", m))
		}
	}
	for i, d := range p.NeoForge.Depends {
		if d.ID == "" {
			problems = append(problems, fmt.Sprintf("neoforge.depends[%d] needs an id", i))
		}
	}
	if len(problems) > 0 {
		return &ProjectError{Path: path.Join(p.root, ProjectFile), Problems: problems}
	}
	return nil
}

func (p *Project) ResourcesPath() string {
	return path.Join(p.root, p.ResourcesDir)
}

func (p *Project) OutputPath() string {
	return path.Join(p.root, p.OutputDir)
}

// expand substitutes ${version}, ${full_version} and ${game_version} in
// dependency ranges.
func (p *Project) expand(s string) string {
	return os.Expand(s, func(key string) string {
		switch key {
		case "version":
			return p.Version
		case "full_version":
			return p.FullVersion()
		case "game_version":
			return p.Game.Version
		}
		return "${" + key + "}"
	})
}

func (p *Project) expandAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = p.expand(v)
	}
	return out
}

// Fmj builds the fabric.mod.json model of the project.
func (p *Project) Fmj() (devtools.Fmj, error) {
	f, err := devtools.NewFmj(p.Namespace, p.Name, p.FullVersion())
	if err != nil {
		return devtools.Fmj{}, err
	}
	f = f.WithDescription(p.Description).
		WithAuthors(p.Authors...).
		WithContact(func(c devtools.Contact) devtools.Contact {
			return c.WithHomepage(p.Contact.Homepage).
				WithSources(p.Contact.Sources).
				WithIssues(p.Contact.Issues)
		}).
		WithLicense(p.License).
		WithIcon(p.Icon).
		WithEnvironment(devtools.Environment(p.Environment)).
		WithAccessWidener(p.AccessWidener)

	for _, e := range p.Entrypoints {
		f = f.WithEntrypoint(e.Category, devtools.Entrypoint{Value: e.Value, Adapter: e.Adapter})
	}

	mixins, err := p.resolveMixins()
	if err != nil {
		return devtools.Fmj{}, err
	}
	f = f.WithMixins(mixins...)

	for _, d := range p.Depends {
		f = f.WithDepend(d.ID, p.expandAll(d.Versions)...)
	}
	for _, d := range p.Recommends {
		f = f.WithRecommend(d.ID, p.expandAll(d.Versions)...)
	}
	for _, d := range p.Suggests {
		f = f.WithSuggest(d.ID, p.expandAll(d.Versions)...)
	}
	for _, d := range p.Conflicts {
		f = f.WithConflict(d.ID, p.expandAll(d.Versions)...)
	}
	for _, d := range p.Breaks {
		f = f.WithBreak(d.ID, p.expandAll(d.Versions)...)
	}

	if mm := p.ModMenu; mm != nil {
		f = f.WithModMenu(func(m devtools.ModMenu) devtools.ModMenu {
			for _, l := range mm.Links {
				m = m.WithLink(l.Key, l.URL)
			}
			m = m.WithBadges(mm.Badges...)
			if parent := mm.Parent; parent != nil {
				m = m.WithParent(parent.ID, parent.Name, func(pm devtools.ParentMod) devtools.ParentMod {
					return pm.WithDescription(parent.Description).
						WithIcon(parent.Icon).
						WithBadges(parent.Badges...)
				})
			}
			return m
		})
	}
	return f, nil
}

// Nmt derives the mods.toml model from f and adds the [neoforge] settings.
func (p *Project) Nmt(f devtools.Fmj) devtools.Nmt {
	nf := p.NeoForge
	n := devtools.Derive(f, devtools.NmtFromIdentity).
		WithLoaderVersion(nf.LoaderVersion)
	if nf.ModLoader != "" {
		n = n.WithModLoader(nf.ModLoader)
	}
	for _, d := range nf.Depends {
		n = n.WithDependency(devtools.NmtDependency{
			ModID:        d.ID,
			Type:         devtools.DependencyType(d.Type),
			VersionRange: p.expand(d.VersionRange),
			Ordering:     devtools.Ordering(strings.ToUpper(d.Ordering)),
			Side:         devtools.Side(strings.ToUpper(d.Side)),
		})
	}
	for _, prop := range nf.Properties {
		n = n.WithProperty(prop.Key, prop.Value)
	}
	return n
}

// resolveMixins expands glob entries against the resources directory.
// Plain entries are kept as written, in order.
func (p *Project) resolveMixins() ([]string, error) {
	var out []string
	fsys := os.DirFS(p.ResourcesPath())
	for _, m := range p.Mixins {
		if !strings.ContainsAny(m, "*?[{") {
			out = append(out, m)
			continue
		}
		matches, err := doublestar.Glob(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("resolve mixins %q: %w", m, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("resolve mixins %q: %w", m, errNoMatch)
		}
		slices.Sort(matches)
		out = append(out, matches...)
	}
	return dedupe(out), nil
}

var errNoMatch = errors.New("pattern matched no file")

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
