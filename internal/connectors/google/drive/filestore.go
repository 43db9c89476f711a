// Package drive implements the FileStore port on Google Drive.
//
// Refs are Drive file IDs. Native Google Workspace files are exported to
// their Office equivalents on fetch, so a placement slip kept as a Google
// Sheet arrives as .xlsx bytes and a deck kept as Google Slides arrives
// as .pptx bytes.
package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/slipdeck/internal/connectors/google"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driven"
	"github.com/custodia-labs/slipdeck/internal/logger"
)

// Google Workspace MIME types and their Office export equivalents.
const (
	MimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	MimeTypeFolder       = "application/vnd.google-apps.folder"

	MimeTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeTypePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// MaxFileSize is the maximum size for downloaded content (100MB).
// Proposal decks with embedded media run large.
const MaxFileSize = 100 * 1024 * 1024

// DefaultFolderName is the Drive folder populated decks are uploaded to.
const DefaultFolderName = "Slipdeck Output"

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore is a Google Drive implementation of the file store port.
type FileStore struct {
	svc        *drive.Service
	limiter    *google.RateLimiter
	folderName string

	mu       sync.Mutex
	folderID string
}

// NewFileStore creates a Drive-backed file store. Uploads land in the
// named folder, created on demand. An empty folderName uses
// DefaultFolderName.
func NewFileStore(svc *drive.Service, folderName string) *FileStore {
	if folderName == "" {
		folderName = DefaultFolderName
	}
	return &FileStore{
		svc:        svc,
		limiter:    google.NewRateLimiter(google.ServiceDrive),
		folderName: folderName,
	}
}

// Fetch downloads the content of the Drive file with the given ID.
// Native Google Sheets and Slides are exported to xlsx/pptx.
func (f *FileStore) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	meta, err := f.svc.Files.Get(ref).Fields("id", "name", "mimeType", "size").
		SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get file metadata: %w", google.WrapError(err))
	}
	if meta.MimeType == MimeTypeFolder {
		return nil, fmt.Errorf("fetch %s: %w", ref, google.ErrNotFound)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp *http.Response
	switch meta.MimeType {
	case MimeTypeGoogleSheet:
		logger.Debug("drive: exporting sheet %s as xlsx", meta.Name)
		resp, err = f.svc.Files.Export(ref, MimeTypeXLSX).Context(ctx).Download()
	case MimeTypeGoogleSlides:
		logger.Debug("drive: exporting slides %s as pptx", meta.Name)
		resp, err = f.svc.Files.Export(ref, MimeTypePPTX).Context(ctx).Download()
	default:
		resp, err = f.svc.Files.Get(ref).SupportsAllDrives(true).Context(ctx).Download()
	}
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", ref, google.WrapError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("read file content: %w", err)
	}

	return data, nil
}

// Store uploads content into the output folder and returns the new file ID.
func (f *FileStore) Store(ctx context.Context, name string, content []byte) (string, error) {
	folderID, err := f.EnsureFolder(ctx)
	if err != nil {
		return "", err
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	created, err := f.svc.Files.Create(&drive.File{
		Name:    name,
		Parents: []string{folderID},
	}).Media(bytes.NewReader(content)).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, google.WrapError(err))
	}

	logger.Info("Uploaded %s to Drive (%s)", name, created.Id)
	return created.Id, nil
}

// EnsureFolder finds or creates the output folder, returning its ID.
func (f *FileStore) EnsureFolder(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.folderID != "" {
		return f.folderID, nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		f.folderName, MimeTypeFolder)
	list, err := f.svc.Files.List().Q(query).Fields("files(id, name)").
		PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("find output folder: %w", google.WrapError(err))
	}
	if len(list.Files) > 0 {
		f.folderID = list.Files[0].Id
		return f.folderID, nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	created, err := f.svc.Files.Create(&drive.File{
		Name:     f.folderName,
		MimeType: MimeTypeFolder,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create output folder: %w", google.WrapError(err))
	}

	logger.Debug("drive: created output folder %q (%s)", f.folderName, created.Id)
	f.folderID = created.Id
	return f.folderID, nil
}
