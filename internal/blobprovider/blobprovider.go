// Package blobprovider implements the archive transport contract
// (spec.md §6): fetching and optionally storing a named, versioned
// archive blob. The engine itself only depends on the BlobProvider
// interface; HttpProvider and CachingProvider are the two concrete,
// fully-wired implementations SPEC_FULL.md §1 calls for (cmd/gcbuild
// builds from local sheet files and does not use them), even though the spec treats
// CDN fetch and on-disk caching as external collaborators whose
// internal policy is a caller's choice.
package blobprovider

import "context"

// BlobProvider fetches (and, optionally, stores) one named config's
// versioned archive bytes.
type BlobProvider interface {
	// Get fetches configName's bytes at version. Fails with
	// VersionMismatchError, NotFoundError, or TransportError.
	Get(ctx context.Context, configName, version string) ([]byte, error)
	// Put stores configName's bytes under version. May be rejected
	// with UnsupportedError.
	Put(ctx context.Context, configName, version string, data []byte) error
}

// VersionMismatchError reports a provider that located configName but
// not at the requested version.
type VersionMismatchError struct {
	ConfigName string
	Requested  string
	Got        string
}

func (e *VersionMismatchError) Error() string {
	return "blobprovider: " + e.ConfigName + ": requested version " + e.Requested + ", got " + e.Got
}

// NotFoundError reports a config/version pair no backing store has.
type NotFoundError struct {
	ConfigName string
	Version    string
}

func (e *NotFoundError) Error() string {
	return "blobprovider: " + e.ConfigName + "@" + e.Version + " not found"
}

// TransportError reports a low-level IO/network failure reaching url.
type TransportError struct {
	URL   string
	Cause error
}

func (e *TransportError) Error() string {
	return "blobprovider: transport error fetching " + e.URL + ": " + e.Cause.Error()
}

func (e *TransportError) Unwrap() error { return e.Cause }

// UnsupportedError reports a Put a provider does not support.
type UnsupportedError struct {
	Op string
}

func (e *UnsupportedError) Error() string { return "blobprovider: unsupported operation: " + e.Op }
