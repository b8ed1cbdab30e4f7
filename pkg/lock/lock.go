// Package lock reads poetry.lock files and sequences pinned distributions in
// install order.
//
// A lock file holds the full transitive closure of a project's dependencies,
// each pinned to one version, so install ordering never needs to contact the
// package index.
package lock

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackpip/pkg/requirement"
)

// ErrInvalid is wrapped by lock file decoding errors.
var ErrInvalid = errors.New("invalid lock file")

// Lock is a decoded poetry.lock file.
type Lock struct {
	Packages []*Package
	Metadata Metadata

	byName map[string]*Package
}

// Metadata is the [metadata] table of a lock file.
type Metadata struct {
	LockVersion    string `toml:"lock-version"`
	PythonVersions string `toml:"python-versions"`
	ContentHash    string `toml:"content-hash"`
}

// Package is one pinned distribution.
type Package struct {
	Name           string              // PEP 503 normalized name
	Version        string              // Pinned version
	Description    string              // One-line summary
	Optional       bool                // Only installed through an extra
	PythonVersions string              // Supported interpreter range, verbatim
	Files          []File              // Artifacts recorded for the pin
	Dependencies   []Dependency        // Declared dependencies, sorted by name
	Extras         map[string][]string // Extra name to requirement strings
}

// File is a recorded artifact with its hash.
type File struct {
	Name string `toml:"file"`
	Hash string `toml:"hash"`
}

// Wheel reports whether the file is a built distribution.
func (f File) Wheel() bool { return strings.HasSuffix(f.Name, ".whl") }

// HasWheel reports whether any recorded artifact is a wheel.
func (p *Package) HasWheel() bool { return slices.ContainsFunc(p.Files, File.Wheel) }

// Dependency is one entry of a package's [package.dependencies] table.
type Dependency struct {
	Name       string   // PEP 503 normalized name
	Constraint string   // Version constraint, verbatim
	Markers    string   // Environment marker, if any
	Optional   bool     // Only required by an extra
	Extras     []string // Extras requested from the dependency
}

func (p *Package) String() string { return p.Name + "==" + p.Version }

type lockFile struct {
	Packages []lockPackage `toml:"package"`
	Metadata Metadata      `toml:"metadata"`
}

type lockPackage struct {
	Name           string              `toml:"name"`
	Version        string              `toml:"version"`
	Description    string              `toml:"description"`
	Optional       bool                `toml:"optional"`
	PythonVersions string              `toml:"python-versions"`
	Files          []File              `toml:"files"`
	Dependencies   map[string]any      `toml:"dependencies"`
	Extras         map[string][]string `toml:"extras"`
}

// Parse reads and decodes the lock file at path.
func Parse(path string) (*Lock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Decode decodes poetry.lock content.
func Decode(data []byte) (*Lock, error) {
	var raw lockFile
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	l := &Lock{
		Metadata: raw.Metadata,
		byName:   make(map[string]*Package, len(raw.Packages)),
	}
	for _, lp := range raw.Packages {
		if lp.Name == "" || lp.Version == "" {
			return nil, fmt.Errorf("%w: package without name or version", ErrInvalid)
		}
		p := &Package{
			Name:           requirement.NormalizeName(lp.Name),
			Version:        lp.Version,
			Description:    lp.Description,
			Optional:       lp.Optional,
			PythonVersions: lp.PythonVersions,
			Files:          lp.Files,
			Extras:         make(map[string][]string, len(lp.Extras)),
		}
		if _, dup := l.byName[p.Name]; dup {
			return nil, fmt.Errorf("%w: %s is locked twice", ErrInvalid, p.Name)
		}
		for extra, reqs := range lp.Extras {
			p.Extras[requirement.NormalizeName(extra)] = reqs
		}
		deps, err := decodeDependencies(lp.Dependencies)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, p.Name, err)
		}
		p.Dependencies = deps
		l.Packages = append(l.Packages, p)
		l.byName[p.Name] = p
	}
	return l, nil
}

// Lookup returns the locked package with the given name.
func (l *Lock) Lookup(name string) (*Package, bool) {
	p, ok := l.byName[requirement.NormalizeName(name)]
	return p, ok
}

// decodeDependencies accepts the three shapes poetry writes: a constraint
// string, an inline table, or an array of inline tables for
// marker-dependent constraints. Entries are sorted by name since TOML
// tables carry no order.
func decodeDependencies(raw map[string]any) ([]Dependency, error) {
	var out []Dependency
	for name, v := range raw {
		norm := requirement.NormalizeName(name)
		switch v := v.(type) {
		case string:
			out = append(out, Dependency{Name: norm, Constraint: v})
		case map[string]any:
			out = append(out, tableDependency(norm, v))
		case []map[string]any:
			for _, t := range v {
				out = append(out, tableDependency(norm, t))
			}
		case []any:
			for _, item := range v {
				t, ok := item.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("dependency %s: unexpected %T", name, item)
				}
				out = append(out, tableDependency(norm, t))
			}
		default:
			return nil, fmt.Errorf("dependency %s: unexpected %T", name, v)
		}
	}
	slices.SortStableFunc(out, func(a, b Dependency) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func tableDependency(name string, t map[string]any) Dependency {
	d := Dependency{Name: name}
	d.Constraint, _ = t["version"].(string)
	d.Markers, _ = t["markers"].(string)
	d.Optional, _ = t["optional"].(bool)
	if extras, ok := t["extras"].([]any); ok {
		for _, e := range extras {
			if s, ok := e.(string); ok {
				d.Extras = append(d.Extras, requirement.NormalizeName(s))
			}
		}
	}
	return d
}
