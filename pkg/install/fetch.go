package install

import (
	"context"
	"fmt"
	"sync"

	"github.com/matzehuels/stackpip/pkg/integrations/pypi"
	"github.com/matzehuels/stackpip/pkg/lock"
)

// Fetcher retrieves release metadata from a package index.
// [*pypi.Client] implements it.
type Fetcher interface {
	// FetchRelease retrieves one version of a project. If refresh is true,
	// cached data is bypassed.
	FetchRelease(ctx context.Context, name, version string, refresh bool) (*pypi.Release, error)
}

type fetchJob struct {
	index int
	pkg   *lock.Package
}

type fetchResult struct {
	fetchJob
	rel *pypi.Release
	err error
}

// fetchReleases looks up every package with at most workers requests in
// flight. Results are indexed like pkgs. The first error cancels the
// remaining lookups.
func fetchReleases(ctx context.Context, f Fetcher, pkgs []*lock.Package, workers int, refresh bool) ([]*pypi.Release, error) {
	out := make([]*pypi.Release, len(pkgs))
	if len(pkgs) == 0 {
		return out, nil
	}
	workers = max(1, min(workers, len(pkgs)))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan fetchJob)
	results := make(chan fetchResult, len(pkgs))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					results <- fetchResult{fetchJob: j, err: ctx.Err()}
					continue
				}
				rel, err := f.FetchRelease(ctx, j.pkg.Name, j.pkg.Version, refresh)
				results <- fetchResult{fetchJob: j, rel: rel, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, p := range pkgs {
			select {
			case jobs <- fetchJob{index: i, pkg: p}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("fetch %s: %w", r.pkg, r.err)
				cancel()
			}
			continue
		}
		out[r.index] = r.rel
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
