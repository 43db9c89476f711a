package driven

import "context"

// FileStore fetches and stores document bytes. Implementations exist
// for Google Drive and the local filesystem; the core never knows which
// transport carried the bytes.
type FileStore interface {
	// Fetch downloads the content at ref. The ref format is
	// implementation-specific (a Drive file ID, a filesystem path).
	Fetch(ctx context.Context, ref string) ([]byte, error)

	// Store uploads content under name inside the store's configured
	// folder and returns a reference to the stored file.
	Store(ctx context.Context, name string, content []byte) (string, error)

	// EnsureFolder provisions the output folder, returning its
	// reference. Safe to call repeatedly.
	EnsureFolder(ctx context.Context) (string, error)
}
