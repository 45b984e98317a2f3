package internal

import (
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/erikgeiser/promptkit/confirmation"
	"github.com/erikgeiser/promptkit/selection"
	"github.com/erikgeiser/promptkit/textinput"
	"github.com/pelletier/go-toml/v2"
	"github.com/stoewer/go-strcase"
	"golang.org/x/term"
)

// Prompter asks the questions of ldl init.
type Prompter interface {
	Input(prompt, initial string) (string, error)
	Select(prompt string, choices []string) (string, error)
	Confirm(prompt string, initial bool) (bool, error)
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

type terminalPrompter struct{}

func NewTerminalPrompter() Prompter {
	return terminalPrompter{}
}

func (terminalPrompter) Input(prompt, initial string) (string, error) {
	in := textinput.New(prompt)
	in.InitialValue = initial
	return in.RunPrompt()
}

func (terminalPrompter) Select(prompt string, choices []string) (string, error) {
	return selection.New(prompt, choices).RunPrompt()
}

func (terminalPrompter) Confirm(prompt string, initial bool) (bool, error) {
	def := confirmation.No
	if initial {
		def = confirmation.Yes
	}
	return confirmation.New(prompt, def).RunPrompt()
}

// defaultsPrompter answers every question with its default.
type defaultsPrompter struct{}

func NewDefaultsPrompter() Prompter {
	return defaultsPrompter{}
}

func (defaultsPrompter) Input(_, initial string) (string, error) { return initial, nil }

func (defaultsPrompter) Select(_ string, choices []string) (string, error) {
	if len(choices) == 0 {
		return "", errors.New("nothing to select")
	}
	return choices[0], nil
}

func (defaultsPrompter) Confirm(_ string, initial bool) (bool, error) { return initial, nil }

var namespaceInvalid = regexp.MustCompile(`[^a-z0-9_]+`)

// DefaultNamespace turns a display name into a mod id: "Example Mod"
// becomes example_mod.
func DefaultNamespace(name string) string {
	ns := namespaceInvalid.ReplaceAllString(strcase.SnakeCase(name), "")
	return strings.Trim(ns, "_")
}

type ScaffoldOptions struct {
	Name        string
	GameVersion string
}

// Scaffold builds a new project description from the answers of p.
func Scaffold(p Prompter, opts ScaffoldOptions) (*Project, error) {
	name, err := p.Input("Mod name", opts.Name)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("a mod name is required")
	}
	namespace, err := p.Input("Namespace", DefaultNamespace(name))
	if err != nil {
		return nil, err
	}
	version, err := p.Input("Version", "1.0.0")
	if err != nil {
		return nil, err
	}
	gameVersion := opts.GameVersion
	if gameVersion == "" {
		gameVersion = "1.21.3"
	}
	gameVersion, err = p.Input("Minecraft version", gameVersion)
	if err != nil {
		return nil, err
	}
	description, err := p.Input("Description", "")
	if err != nil {
		return nil, err
	}
	authors, err := p.Input("Authors (comma separated)", "")
	if err != nil {
		return nil, err
	}
	license, err := p.Input("License", "MIT")
	if err != nil {
		return nil, err
	}
	environment, err := p.Select("Environment", environments)
	if err != nil {
		return nil, err
	}
	javaVersion, err := p.Input("Java version", "21")
	if err != nil {
		return nil, err
	}
	java, err := strconv.Atoi(javaVersion)
	if err != nil {
		return nil, fmt.Errorf("java version: %w", err)
	}

	project := &Project{
		Namespace:   namespace,
		Name:        name,
		Version:     version,
		Description: description,
		Authors:     splitList(authors),
		License:     license,
		Icon:        path.Join("assets", namespace, "icon.png"),
		Environment: environment,
		Mixins:      []string{namespace + ".mixins.json"},
		Game:        GameConfig{Version: gameVersion, JavaVersion: java},
		Depends: []DependencyConfig{
			{ID: "fabricloader", Versions: []string{">=0.16.9"}},
			{ID: "minecraft", Versions: []string{"~" + gameVersion}},
			{ID: "java", Versions: []string{">=" + javaVersion}},
		},
	}

	neoforge, err := p.Confirm("Also generate a NeoForge mods.toml?", false)
	if err != nil {
		return nil, err
	}
	if neoforge {
		loaderVersion, err := p.Input("NeoForge loader version range", "[2,)")
		if err != nil {
			return nil, err
		}
		project.NeoForge = NeoForgeConfig{
			Enabled:       true,
			LoaderVersion: loaderVersion,
			Depends: []NeoForgeDependency{
				{ID: "minecraft", VersionRange: "[" + gameVersion + ",)"},
			},
		}
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}
	return project, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// WriteProject writes p to root/ldl.toml, refusing to replace an existing
// file unless overwrite is set.
func WriteProject(root string, p *Project, overwrite bool) (string, error) {
	target := path.Join(root, ProjectFile)
	if !overwrite {
		if _, err := os.Stat(target); err == nil {
			return "", fmt.Errorf("%s: %w", target, os.ErrExist)
		} else if !os.IsNotExist(err) {
			return "", err
		}
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode project: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", err
	}
	return target, nil
}
