// Package environment describes the Python environment that tasks install
// into: interpreter version, platform, and the distributions already present.
package environment

import (
	"runtime"
	"strings"

	"github.com/matzehuels/stackpip/pkg/requirement"
)

// DefaultPython is the interpreter version assumed when none is configured.
const DefaultPython = "3.12"

// Environment is the target of an install run. It is decoded from the
// [environment] table of a task file.
type Environment struct {
	Python         string            `toml:"python" json:"python"`                 // Full or major.minor version
	Platform       string            `toml:"platform" json:"platform"`             // sys.platform (linux, darwin, win32)
	Machine        string            `toml:"machine" json:"machine"`               // platform.machine()
	Implementation string            `toml:"implementation" json:"implementation"` // cpython, pypy
	Tags           []string          `toml:"tags" json:"tags,omitempty"`           // Supported wheel tags
	Installed      map[string]string `toml:"installed" json:"installed,omitempty"` // Distribution name to version
}

var (
	platforms = map[string]string{"linux": "linux", "darwin": "darwin", "windows": "win32", "freebsd": "freebsd"}
	machines  = map[string]string{"amd64": "x86_64", "arm64": "arm64", "386": "i686"}
	systems   = map[string]string{"linux": "Linux", "darwin": "Darwin", "win32": "Windows", "freebsd": "FreeBSD"}
	impls     = map[string]string{"cpython": "CPython", "pypy": "PyPy"}
)

// WithDefaults returns a copy with unset fields filled from the host.
func (e Environment) WithDefaults() Environment {
	if e.Python == "" {
		e.Python = DefaultPython
	}
	if e.Platform == "" {
		e.Platform = platforms[runtime.GOOS]
		if e.Platform == "" {
			e.Platform = runtime.GOOS
		}
	}
	if e.Machine == "" {
		e.Machine = machines[runtime.GOARCH]
		if e.Machine == "" {
			e.Machine = runtime.GOARCH
		}
	}
	if e.Implementation == "" {
		e.Implementation = "cpython"
	}
	e.Installed = normalizeInstalled(e.Installed)
	return e
}

// ForPython returns a copy targeting the given interpreter version. An empty
// version leaves the environment unchanged.
func (e Environment) ForPython(version string) Environment {
	if version != "" {
		e.Python = version
	}
	return e
}

// PythonVersion returns the major.minor interpreter version.
func (e Environment) PythonVersion() string {
	parts := strings.SplitN(e.Python, ".", 3)
	if len(parts) < 2 {
		return e.Python
	}
	return parts[0] + "." + parts[1]
}

// MarkerEnv returns the PEP 508 marker variables for this environment. extra
// is the extra being evaluated, or "" for none.
func (e Environment) MarkerEnv(extra string) requirement.Env {
	full := e.Python
	if strings.Count(full, ".") == 1 {
		full += ".0"
	}
	osName := "posix"
	if e.Platform == "win32" {
		osName = "nt"
	}
	system := systems[e.Platform]
	if system == "" {
		system = e.Platform
	}
	impl := impls[e.Implementation]
	if impl == "" {
		impl = e.Implementation
	}
	return requirement.Env{
		"python_version":                 e.PythonVersion(),
		"python_full_version":            full,
		"implementation_version":         full,
		"implementation_name":            e.Implementation,
		"platform_python_implementation": impl,
		"sys_platform":                   e.Platform,
		"platform_system":                system,
		"platform_machine":               e.Machine,
		"platform_release":               "",
		"platform_version":               "",
		"os_name":                        osName,
		"extra":                          extra,
	}
}

// InstalledVersion returns the installed version of the requirement's
// distribution. A requirement pinned with "==" only counts as installed at
// that version.
func (e Environment) InstalledVersion(req requirement.Requirement) (string, bool) {
	v, ok := e.Installed[req.Name]
	if !ok {
		v, ok = e.Installed[requirement.NormalizeName(req.Name)]
	}
	if !ok {
		return "", false
	}
	if pin := req.Pin(); pin != "" && pin != v {
		return v, false
	}
	return v, true
}

// Has reports whether name is installed at version. An empty version
// matches any installed version.
func (e Environment) Has(name, version string) bool {
	v, ok := e.Installed[requirement.NormalizeName(name)]
	return ok && (version == "" || v == version)
}

func normalizeInstalled(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for name, v := range in {
		out[requirement.NormalizeName(name)] = v
	}
	return out
}
