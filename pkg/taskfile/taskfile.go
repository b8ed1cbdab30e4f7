// Package taskfile loads stackpip.toml, the file that declares install
// tasks, run settings and the target environment.
//
// A minimal task file:
//
//	[environment]
//	python = "3.12"
//
//	[[task]]
//	name = "setup"
//	install = ["pip==24.0"]
//
//	[[task]]
//	name = "tests"
//	python = ["3.11", "3.12"]
//	requires = ["setup"]
//	install = ["pytest==8.2.0"]
//
// A task whose python key is set becomes a family with one member per
// version ("tests-3.11", "tests-3.12").
package taskfile

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackpip/pkg/config"
	"github.com/matzehuels/stackpip/pkg/environment"
	errs "github.com/matzehuels/stackpip/pkg/errors"
	"github.com/matzehuels/stackpip/pkg/manifest"
	"github.com/matzehuels/stackpip/pkg/requirement"
)

// DefaultName is the task file looked up when none is given.
const DefaultName = "stackpip.toml"

// File is a decoded task file.
type File struct {
	Settings    config.Config           `toml:"settings"`
	Environment environment.Environment `toml:"environment"`
	Tasks       []Decl                  `toml:"task"`

	dir string
}

// Decl is one [[task]] entry.
type Decl struct {
	Name         string   `toml:"name"`
	Description  string   `toml:"description"`
	Python       Versions `toml:"python"`       // String or list of interpreter versions
	Requires     []string `toml:"requires"`     // Task names or signatures
	Install      []string `toml:"install"`      // PEP 508 requirement strings
	Requirements string   `toml:"requirements"` // requirements.txt, relative to the task file
	Tags         []string `toml:"tags"`
	Default      bool     `toml:"default"`
}

// Versions accepts either a single version string or a list of them.
type Versions []string

// UnmarshalTOML implements toml.Unmarshaler.
func (v *Versions) UnmarshalTOML(data any) error {
	switch d := data.(type) {
	case string:
		*v = Versions{d}
	case []any:
		out := make(Versions, 0, len(d))
		for _, item := range d {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("python: expected string, got %T", item)
			}
			out = append(out, s)
		}
		*v = out
	default:
		return fmt.Errorf("python: expected string or list, got %T", data)
	}
	return nil
}

// Load reads and decodes the task file at path. Relative paths inside the
// file resolve against its directory.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "task file %s", path)
		}
		return nil, err
	}
	f, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.dir = filepath.Dir(path)
	return f, nil
}

// Decode decodes and validates task file content. Unknown keys are an error.
func Decode(data []byte) (*File, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errs.New(errs.ErrCodeInvalidManifest, "unknown key %q", undecoded[0].String())
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if u := f.Settings.IndexURL; u != "" {
		if err := errs.ValidateIndexURL(u); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
	}
	for name := range f.Environment.Installed {
		if err := errs.ValidatePackageName(name); err != nil {
			return fmt.Errorf("environment.installed: %w", err)
		}
	}
	for i, d := range f.Tasks {
		if err := errs.ValidateTaskName(d.Name); err != nil {
			return fmt.Errorf("task #%d: %w", i+1, err)
		}
		for _, v := range d.Python {
			if v == "" {
				return errs.New(errs.ErrCodeInvalidManifest, "task %s: empty python version", d.Name)
			}
		}
		if dup := duplicate(d.Python); dup != "" {
			return errs.New(errs.ErrCodeInvalidManifest, "task %s: python %s listed twice", d.Name, dup)
		}
		for _, r := range d.Requires {
			if r == "" {
				return errs.New(errs.ErrCodeInvalidManifest, "task %s: empty requires entry", d.Name)
			}
		}
		for _, s := range d.Install {
			if _, err := requirement.Parse(s); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidRequirement, err, "task %s", d.Name)
			}
		}
	}
	return nil
}

func duplicate(values []string) string {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return v
		}
		seen[v] = true
	}
	return ""
}

// Dir returns the directory relative paths resolve against.
func (f *File) Dir() string { return f.dir }

// Resolve returns p joined to the task file directory unless it is absolute.
func (f *File) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(f.dir, p)
}

// Config returns the settings with environment overrides and defaults
// applied.
func (f *File) Config() config.Config {
	return f.Settings.ApplyEnv(os.Getenv).WithDefaults()
}

// LockfilePath returns the location of the lock file.
func (f *File) LockfilePath() string {
	return f.Resolve(f.Config().Lockfile)
}

// ManifestTasks expands the declarations into manifest tasks, one per python
// version for parametrized declarations. Requirements files are read and
// appended to the task's install list.
func (f *File) ManifestTasks() ([]*manifest.Task, error) {
	var tasks []*manifest.Task
	for _, d := range f.Tasks {
		install := slices.Clone(d.Install)
		if d.Requirements != "" {
			reqs, err := requirement.ReadFile(f.Resolve(d.Requirements))
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidRequirement, err, "task %s", d.Name)
			}
			for _, r := range reqs {
				install = append(install, r.String())
			}
		}

		versions := []string(d.Python)
		if len(versions) == 0 {
			versions = []string{""}
		}
		for _, v := range versions {
			tasks = append(tasks, &manifest.Task{
				Name:        d.Name,
				Python:      v,
				Description: d.Description,
				Requires:    slices.Clone(d.Requires),
				Install:     slices.Clone(install),
				Tags:        slices.Clone(d.Tags),
				Default:     d.Default,
			})
		}
	}
	return tasks, nil
}

// Manifest builds a manifest holding every declared task.
func (f *File) Manifest() (*manifest.Manifest, error) {
	tasks, err := f.ManifestTasks()
	if err != nil {
		return nil, err
	}
	m, err := manifest.New(tasks)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "register tasks")
	}
	return m, nil
}
