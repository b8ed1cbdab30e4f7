// Package pypi provides an HTTP client for the Python Package Index JSON API.
//
// # Usage
//
//	client := pypi.NewClient(backend, cache.TTLRelease, "")
//	rel, err := client.FetchRelease(ctx, "requests", "2.31.0", false)
//	if err != nil {
//	    return err
//	}
//	if a, ok := rel.Preferred(); ok {
//	    fmt.Println(a.Filename, a.URL)
//	}
//
// # Caching
//
// Release metadata is immutable once published, so responses are cached
// for long periods. Pass refresh=true to [Client.FetchRelease] to bypass the
// cache.
//
// Project names are normalized following PEP 503.
package pypi
