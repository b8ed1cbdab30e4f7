package pypi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/stackpip/pkg/cache"
	"github.com/matzehuels/stackpip/pkg/integrations"
	"github.com/matzehuels/stackpip/pkg/requirement"
)

// DefaultIndexURL is the JSON API root of the public index.
const DefaultIndexURL = "https://pypi.org/pypi"

// Package types reported for release files.
const (
	TypeWheel = "bdist_wheel"
	TypeSdist = "sdist"
)

// Release holds metadata for one published version of a project.
//
// Zero values: string fields are empty, slices are nil.
// This struct is safe for concurrent reads after construction.
type Release struct {
	Name           string     `json:"name"`            // Normalized project name
	Version        string     `json:"version"`         // Release version
	Summary        string     `json:"summary"`         // Short description (may be empty)
	License        string     `json:"license"`         // License name or expression (may be empty)
	RequiresPython string     `json:"requires_python"` // Interpreter range, verbatim (may be empty)
	Requires       []string   `json:"requires"`        // requires_dist entries that parse as PEP 508
	Files          []Artifact `json:"files"`           // Uploaded distributions
}

// Artifact is one uploaded distribution file.
type Artifact struct {
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	PackageType string `json:"packagetype"` // TypeWheel or TypeSdist
	SHA256      string `json:"sha256"`
	Size        int64  `json:"size"`
	Yanked      bool   `json:"yanked"`
}

// Wheel reports whether the artifact is a built distribution.
func (a Artifact) Wheel() bool { return a.PackageType == TypeWheel }

// Preferred returns the artifact to install: the first non-yanked wheel, or
// else the first non-yanked sdist. Wheel tag compatibility is not checked.
func (r *Release) Preferred() (Artifact, bool) {
	var sdist *Artifact
	for i, a := range r.Files {
		if a.Yanked {
			continue
		}
		if a.Wheel() {
			return a, true
		}
		if sdist == nil && a.PackageType == TypeSdist {
			sdist = &r.Files[i]
		}
	}
	if sdist != nil {
		return *sdist, true
	}
	return Artifact{}, false
}

// Client provides access to the package index JSON API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client for the index at baseURL (DefaultIndexURL if
// empty), caching release metadata in backend for cacheTTL.
func NewClient(backend cache.Cache, cacheTTL time.Duration, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultIndexURL
	}
	return &Client{
		Client:  integrations.NewClient(backend, "pypi:", cacheTTL, nil),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// FetchRelease retrieves metadata for one version of a project.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
//
// Returns:
//   - [integrations.ErrNotFound] if the project or version doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//   - Other errors for JSON decoding failures
func (c *Client) FetchRelease(ctx context.Context, name, version string, refresh bool) (*Release, error) {
	name = integrations.NormalizePkgName(name)
	key := cache.Key("release", name, version)

	var rel Release
	err := c.Cached(ctx, key, refresh, &rel, func() error {
		return c.fetch(ctx, name, version, &rel)
	})
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (c *Client) fetch(ctx context.Context, name, version string, rel *Release) error {
	var data apiResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/%s/json", c.baseURL, name, version), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: %s %s", err, name, version)
		}
		return err
	}

	*rel = Release{
		Name:           integrations.NormalizePkgName(data.Info.Name),
		Version:        data.Info.Version,
		Summary:        data.Info.Summary,
		License:        extractLicenseType(data.Info.License, data.Info.Classifiers),
		RequiresPython: data.Info.RequiresPython,
		Requires:       extractRequires(data.Info.RequiresDist),
	}
	for _, u := range data.URLs {
		rel.Files = append(rel.Files, Artifact{
			Filename:    u.Filename,
			URL:         u.URL,
			PackageType: u.PackageType,
			SHA256:      u.Digests.SHA256,
			Size:        u.Size,
			Yanked:      u.Yanked,
		})
	}
	return nil
}

// extractRequires keeps requires_dist entries that parse, dropping
// malformed metadata instead of failing the whole release.
func extractRequires(requires []string) []string {
	var out []string
	for _, r := range requires {
		if _, err := requirement.Parse(r); err == nil {
			out = append(out, r)
		}
	}
	return out
}

type apiResponse struct {
	Info apiInfo  `json:"info"`
	URLs []apiURL `json:"urls"`
}

type apiInfo struct {
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Summary        string   `json:"summary"`
	License        string   `json:"license"`
	Classifiers    []string `json:"classifiers"`
	RequiresDist   []string `json:"requires_dist"`
	RequiresPython string   `json:"requires_python"`
}

type apiURL struct {
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	PackageType string `json:"packagetype"`
	Size        int64  `json:"size"`
	Yanked      bool   `json:"yanked"`
	Digests     struct {
		SHA256 string `json:"sha256"`
	} `json:"digests"`
}

// extractLicenseType extracts a short license identifier from index data.
// It prefers the classifier (e.g., "License :: OSI Approved :: MIT License" -> "MIT License")
// and falls back to the license field if it's short enough.
func extractLicenseType(license string, classifiers []string) string {
	for _, c := range classifiers {
		if strings.HasPrefix(c, "License :: ") {
			parts := strings.Split(c, " :: ")
			if len(parts) >= 3 {
				return parts[len(parts)-1]
			}
		}
	}
	if license != "" && len(license) < 100 && !strings.Contains(license, "\n") {
		return strings.TrimSpace(license)
	}
	if license != "" {
		firstLine := strings.TrimSpace(strings.Split(license, "\n")[0])
		if len(firstLine) < 50 {
			return firstLine
		}
	}
	return ""
}
