package devtools

import (
	"fmt"
	"os"
	"path"
)

const (
	FmjFileName      = "fabric.mod.json"
	DefaultNmtLoader = "neoforge"
	metaInfDir       = "META-INF"
)

// NmtPath is the location of the mods.toml of loader, relative to an output
// directory.
func NmtPath(loader string) string {
	if loader == "" {
		loader = DefaultNmtLoader
	}
	return path.Join(metaInfDir, loader+".mods.toml")
}

type TaskState int

const (
	TaskNotRun TaskState = iota
	TaskRun
)

func (s TaskState) String() string {
	if s == TaskRun {
		return "run"
	}
	return "not run"
}

// Task writes one manifest file. Running a task twice with the same
// manifest produces the same bytes.
type Task interface {
	Name() string
	Run() (string, error)
	State() TaskState
}

type FmjTask struct {
	Manifest  Fmj
	OutputDir string

	state TaskState
}

func (t *FmjTask) Name() string { return "generateFmj" }
func (t *FmjTask) State() TaskState { return t.state }

func (t *FmjTask) Run() (string, error) {
	out := path.Join(t.OutputDir, FmjFileName)
	data, err := EncodeFmj(t.Manifest)
	if err != nil {
		return "", fmt.Errorf("%s: %w", t.Name(), err)
	}
	if err := replaceFile(out, data); err != nil {
		return "", &GenerateError{Task: t.Name(), Path: out, Err: err}
	}
	t.state = TaskRun
	return out, nil
}

// NmtTask writes OutputDir/META-INF/<Loader>.mods.toml. Loader defaults to
// neoforge.
type NmtTask struct {
	Manifest  Nmt
	OutputDir string
	Loader    string

	state TaskState
}

func (t *NmtTask) Name() string { return "generateNmt" }
func (t *NmtTask) State() TaskState { return t.state }

func (t *NmtTask) Run() (string, error) {
	out := path.Join(t.OutputDir, NmtPath(t.Loader))
	data, err := EncodeNmt(t.Manifest)
	if err != nil {
		return "", fmt.Errorf("%s: %w", t.Name(), err)
	}
	if err := replaceFile(out, data); err != nil {
		return "", &GenerateError{Task: t.Name(), Path: out, Err: err}
	}
	t.state = TaskRun
	return out, nil
}

// GenerateFmj writes dir/fabric.mod.json.
func GenerateFmj(f Fmj, dir string) (string, error) {
	t := &FmjTask{Manifest: f, OutputDir: dir}
	return t.Run()
}

// GenerateNmt writes dir/META-INF/neoforge.mods.toml.
func GenerateNmt(n Nmt, dir string) (string, error) {
	t := &NmtTask{Manifest: n, OutputDir: dir}
	return t.Run()
}

// replaceFile deletes any previous file at name before writing data. The
// two steps are not atomic.
func replaceFile(name string, data []byte) error {
	if err := os.MkdirAll(path.Dir(name), 0o755); err != nil {
		return err
	}
	fi, err := os.Lstat(name)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	} else {
		if !fi.Mode().IsRegular() {
			return ErrNotRegular
		}
		if err := os.Remove(name); err != nil {
			return fmt.Errorf("remove previous output: %w", err)
		}
	}
	return os.WriteFile(name, data, 0o644)
}
