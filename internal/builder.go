package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gookit/color"

	devtools "github.com/lambdaurora/lambdynamiclights-devtools"
)

type ManifestKind int

const (
	Fmj ManifestKind = 1 << iota
	Nmt

	All = Fmj | Nmt
)

func (k ManifestKind) String() string {
	switch k {
	case Fmj:
		return "fmj"
	case Nmt:
		return "nmt"
	case All:
		return "all"
	}
	return fmt.Sprintf("ManifestKind(%d)", int(k))
}

// ParseManifestKind accepts fmj, nmt or all.
func ParseManifestKind(s string) (ManifestKind, error) {
	switch strings.ToLower(s) {
	case "fmj", "fabric":
		return Fmj, nil
	case "nmt", "neoforge":
		return Nmt, nil
	case "", "all":
		return All, nil
	}
	return 0, fmt.Errorf("unknown manifest kind %q", s)
}

type result struct {
	stdout []byte
	stderr []byte
	err    error
}

// Result describes one generation run.
type Result struct {
	Project *Project
	Fmj     devtools.Fmj
	Files   []string
	Stdout  []byte
	Stderr  []byte
}

type Builder struct {
	root   string
	logger *log.Logger
	out    io.Writer
}

func NewBuilder(root string, logger *log.Logger) (*Builder, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{
		root:   root,
		logger: logger,
		out:    os.Stdout,
	}, nil
}

// SetOutput redirects progress lines and hook output.
func (b *Builder) SetOutput(w io.Writer) {
	b.out = w
}

func (b *Builder) Project() (*Project, error) {
	return LoadProject(b.root)
}

// Generate writes the requested manifests. A failing task does not stop
// the other one; all failures are joined. Hooks only run when every task
// succeeded.
func (b *Builder) Generate(ctx context.Context, kinds ManifestKind) (*Result, error) {
	project, err := b.Project()
	if err != nil {
		return nil, err
	}
	fmj, err := project.Fmj()
	if err != nil {
		return nil, err
	}
	res := &Result{Project: project, Fmj: fmj}

	outDir := project.OutputPath()
	var tasks []devtools.Task
	if kinds&Fmj != 0 {
		tasks = append(tasks, &devtools.FmjTask{Manifest: fmj, OutputDir: outDir})
	}
	if kinds&Nmt != 0 {
		if project.NeoForge.Enabled {
			tasks = append(tasks, &devtools.NmtTask{
				Manifest:  project.Nmt(fmj),
				OutputDir: outDir,
				Loader:    project.NeoForge.Loader,
			})
		} else if kinds == Nmt {
			b.logger.Warn("neoforge target is disabled", "project", path.Join(b.root, ProjectFile))
		}
	}

	var errs []error
	for _, t := range tasks {
		startTime := time.Now()
		out, err := t.Run()
		if err != nil {
			b.logger.Error("generation failed", "task", t.Name(), "err", err)
			errs = append(errs, err)
			continue
		}
		res.Files = append(res.Files, out)
		color.Fprintf(b.out, "Generated <green>%s</> in %s\n", b.rel(out), time.Since(startTime))
	}
	if err := errors.Join(errs...); err != nil {
		return res, err
	}

	for _, hook := range project.Hooks.AfterGenerate {
		r := b.run(ctx, b.root, hook, project.Hooks.Timeout)
		res.Stdout = append(res.Stdout, r.stdout...)
		res.Stderr = append(res.Stderr, r.stderr...)
		if r.err != nil {
			return res, fmt.Errorf("hook %q: %w", hook, r.err)
		}
	}
	return res, nil
}

// WatchedFiles lists the project file and the resources directory when it
// exists.
func (b *Builder) WatchedFiles() ([]string, error) {
	project, err := b.Project()
	if err != nil {
		return nil, err
	}
	paths := []string{path.Join(b.root, ProjectFile)}
	if _, err := os.Stat(project.ResourcesPath()); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		paths = append(paths, project.ResourcesPath())
	}
	return paths, nil
}

// Clean removes the generated manifests. Missing files are not an error.
func (b *Builder) Clean() error {
	project, err := b.Project()
	if err != nil {
		return err
	}
	outDir := project.OutputPath()
	targets := []string{
		path.Join(outDir, devtools.FmjFileName),
		path.Join(outDir, devtools.NmtPath(project.NeoForge.Loader)),
	}
	for _, target := range targets {
		if err := os.Remove(target); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("remove generated manifest: %w", err)
		}
		b.logger.Debug("removed", "path", target)
	}
	return nil
}

func (b *Builder) rel(p string) string {
	if r, ok := strings.CutPrefix(p, b.root+"/"); ok {
		return r
	}
	return p
}

func (b *Builder) run(ctx context.Context, dir, cmdStr string, timeout time.Duration) result {
	color.Fprintf(b.out, "Running cmd <grey>%s</>\n", cmdStr)
	startTime := time.Now()
	args := strings.Fields(cmdStr)
	if len(args) == 0 {
		return result{err: errors.New("empty command")}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancelFn := context.WithTimeout(ctx, timeout)
	defer cancelFn()
	cmd := exec.CommandContext(ctx, args[0], args[1:]...) // #nosec G204

	var outbuf, errbuf bytes.Buffer
	cmd.Stdout = io.MultiWriter(b.out, &outbuf)
	cmd.Stderr = io.MultiWriter(b.out, &errbuf)
	cmd.Dir = dir
	err := cmd.Run()
	if err == nil {
		b.logger.Info("hook succeeded", "cmd", cmdStr)
	} else {
		b.logger.Error("hook failed", "cmd", cmdStr, "err", err)
	}

	color.Fprintf(b.out, "Running cmd <grey>%s</> finished in %s\n", cmdStr, time.Since(startTime))

	return result{outbuf.Bytes(), errbuf.Bytes(), err}
}
