package blobprovider

import "context"

// CachingProvider composes a base provider with a cache provider
// (spec.md §6): a read first tries the cache, falls back to base on a
// miss, and best-effort writes the result back to the cache, swallowing
// any cache write error so a flaky or read-only cache never fails a
// build that could otherwise succeed from base. Writes are rejected —
// a CachingProvider is a read path, not a publish path.
type CachingProvider struct {
	Base  BlobProvider
	Cache BlobProvider
}

// Get tries Cache first; on any error (including NotFoundError) it
// falls through to Base, then best-effort populates Cache.
func (p *CachingProvider) Get(ctx context.Context, configName, version string) ([]byte, error) {
	if data, err := p.Cache.Get(ctx, configName, version); err == nil {
		return data, nil
	}

	data, err := p.Base.Get(ctx, configName, version)
	if err != nil {
		return nil, err
	}

	_ = p.Cache.Put(ctx, configName, version, data) // cache write errors are swallowed

	return data, nil
}

// Put is always rejected: a CachingProvider never accepts a write,
// regardless of whether Base would.
func (p *CachingProvider) Put(ctx context.Context, configName, version string, data []byte) error {
	return &UnsupportedError{Op: "CachingProvider.Put"}
}
