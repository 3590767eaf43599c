package bundler

import "fmt"

// SourceMissing indicates that a declared module has no source entry point.
// The build aborts before any target runs since a partial output set would be
// advertised by the export map anyway.
type SourceMissing struct {
	Module string
	Entry  string
}

var _ error = (*SourceMissing)(nil)

func (e SourceMissing) Error() string {
	if e.Module == "" {
		return fmt.Sprintf("The root source entry %s is missing.", e.Entry)
	}
	return fmt.Sprintf("The source entry %s for module %s is missing.", e.Entry, e.Module)
}

// CompileFailed indicates that the compiler invocation for a target failed.
type CompileFailed struct {
	Target BuildTarget
	Err    error
}

var _ error = (*CompileFailed)(nil)

func (e CompileFailed) Error() string {
	return fmt.Sprintf("Compilation of target %s failed: %v", e.Target.Name(), e.Err)
}

func (e CompileFailed) Unwrap() error {
	return e.Err
}

// ManifestWriteFailed indicates that the manifest could not be persisted. The
// build is reported as failed even if all code outputs were written since the
// manifest would otherwise misrepresent the available exports.
type ManifestWriteFailed struct {
	Path string
	Err  error
}

var _ error = (*ManifestWriteFailed)(nil)

func (e ManifestWriteFailed) Error() string {
	return fmt.Sprintf("Failed to write manifest %s: %v", e.Path, e.Err)
}

func (e ManifestWriteFailed) Unwrap() error {
	return e.Err
}
