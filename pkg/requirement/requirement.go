// Package requirement parses PEP 508 requirement strings and evaluates their
// environment markers.
//
// Version specifiers are kept verbatim: choosing a version that satisfies a
// range is the lock file's job, not this package's.
package requirement

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ErrInvalid is wrapped by every parse failure.
var ErrInvalid = errors.New("invalid requirement")

var (
	nameRE      = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)`)
	normalizeRE = regexp.MustCompile(`[-_.]+`)
)

// Requirement is one parsed requirement line, e.g.
// `requests[socks]>=2.28; python_version >= "3.8"`.
type Requirement struct {
	Name      string   // PEP 503 normalized name
	Extras    []string // Requested extras, normalized and sorted
	Specifier string   // Version specifier without spaces (e.g. ">=2.28,<3")
	URL       string   // Direct reference after "@", if any
	Marker    string   // Raw environment marker, if any
}

// NormalizeName converts a distribution name to its PEP 503 canonical form:
// lowercase, with runs of "-", "_" and "." collapsed to a single "-".
func NormalizeName(name string) string {
	return normalizeRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// Parse parses a single requirement string.
func Parse(s string) (Requirement, error) {
	raw := strings.TrimSpace(s)
	if i := strings.Index(raw, " #"); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}
	if raw == "" {
		return Requirement{}, fmt.Errorf("%w: empty string", ErrInvalid)
	}

	var req Requirement
	body := raw
	if i := strings.Index(raw, ";"); i >= 0 {
		body = strings.TrimSpace(raw[:i])
		req.Marker = strings.TrimSpace(raw[i+1:])
		if req.Marker == "" {
			return Requirement{}, fmt.Errorf("%w: %q: empty marker", ErrInvalid, s)
		}
		if _, err := ParseMarker(req.Marker); err != nil {
			return Requirement{}, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
		}
	}

	m := nameRE.FindString(body)
	if m == "" {
		return Requirement{}, fmt.Errorf("%w: %q: missing name", ErrInvalid, s)
	}
	req.Name = NormalizeName(m)
	rest := strings.TrimSpace(body[len(m):])

	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return Requirement{}, fmt.Errorf("%w: %q: unterminated extras", ErrInvalid, s)
		}
		for _, e := range strings.Split(rest[1:end], ",") {
			if e = strings.TrimSpace(e); e != "" {
				req.Extras = append(req.Extras, NormalizeName(e))
			}
		}
		slices.Sort(req.Extras)
		req.Extras = slices.Compact(req.Extras)
		rest = strings.TrimSpace(rest[end+1:])
	}

	switch {
	case rest == "":
	case strings.HasPrefix(rest, "@"):
		req.URL = strings.TrimSpace(rest[1:])
		if req.URL == "" {
			return Requirement{}, fmt.Errorf("%w: %q: empty URL", ErrInvalid, s)
		}
	default:
		spec := strings.TrimSuffix(strings.TrimPrefix(rest, "("), ")")
		spec = strings.Join(strings.Fields(spec), "")
		if spec == "" || !strings.ContainsAny(spec[:1], "<>=!~") {
			return Requirement{}, fmt.Errorf("%w: %q: unexpected %q", ErrInvalid, s, rest)
		}
		req.Specifier = spec
	}
	return req, nil
}

// MustParse is like Parse but panics on error. It is meant for tests and
// package-level literals.
func MustParse(s string) Requirement {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Pin returns the exact version for an "==" specifier, or "" when the
// requirement is not pinned to a single version.
func (r Requirement) Pin() string {
	v, ok := strings.CutPrefix(r.Specifier, "==")
	if !ok || strings.ContainsAny(v, ",*") || strings.HasPrefix(v, "=") {
		return ""
	}
	return v
}

// Applies reports whether the requirement's marker holds in env. A
// requirement without a marker always applies.
func (r Requirement) Applies(env Env) (bool, error) {
	if r.Marker == "" {
		return true, nil
	}
	m, err := ParseMarker(r.Marker)
	if err != nil {
		return false, err
	}
	return m.Evaluate(env)
}

// String renders the requirement back in PEP 508 form.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	if r.URL != "" {
		b.WriteString(" @ " + r.URL)
	}
	b.WriteString(r.Specifier)
	if r.Marker != "" {
		b.WriteString("; " + r.Marker)
	}
	return b.String()
}
