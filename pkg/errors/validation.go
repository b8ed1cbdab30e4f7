package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// maxNameLen bounds distribution names taken from task files and requests.
const maxNameLen = 256

// pep508Name matches a distribution name as PEP 508 allows it.
var pep508Name = regexp.MustCompile(`^([A-Za-z0-9]|[A-Za-z0-9][A-Za-z0-9._-]*[A-Za-z0-9])$`)

// ValidatePackageName checks that name is a PEP 508 distribution name. Names
// end up in index URLs and cache keys, so anything that could escape a path
// segment is rejected before the pattern is even tried.
func ValidatePackageName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	case len(name) > maxNameLen:
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxNameLen)
	case strings.ContainsFunc(name, unicode.IsControl):
		return New(ErrCodeInvalidPackage, "package name contains control characters")
	case strings.Contains(name, ".."), strings.ContainsAny(name, `/\`):
		return New(ErrCodeInvalidPackage, "package name contains path characters: %q", name)
	case !pep508Name.MatchString(name):
		return New(ErrCodeInvalidPackage, "invalid package name: %q", name)
	}
	return nil
}

// ValidateTaskName validates a task name from a task file. Names are used
// in selection flags, requires lists and signatures, so they may not contain
// whitespace, commas or braces.
func ValidateTaskName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidManifest, "task name cannot be empty")
	}
	if strings.ContainsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(",{}", r)
	}) {
		return New(ErrCodeInvalidManifest, "invalid task name: %q", name)
	}
	return nil
}

// ValidateIndexURL checks that raw is an absolute http(s) URL usable as a
// package index root.
func ValidateIndexURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid index URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "index URL must use http or https: %q", raw)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "index URL has no host: %q", raw)
	}
	return nil
}
