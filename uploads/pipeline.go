// Package uploads owns the path from an incoming multipart payload to durable
// bytes plus a metadata row, and the reverse path for downloads. Bytes in the
// content directory are the source of truth; the database row is the index.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"neovault/models"
	"neovault/storage"
)

var (
	// ErrTypeNotAllowed means the declared MIME type is outside the allow-list.
	ErrTypeNotAllowed = errors.New("file type not allowed")
	// ErrTooLarge means the payload exceeds the configured ceiling.
	ErrTooLarge = errors.New("file exceeds size limit")
	// ErrInvalidCategory means the target category does not exist.
	ErrInvalidCategory = errors.New("invalid category")
)

// allowedMimeTypes is the declared-type allow-list. Executables are admitted
// separately by the .exe filename override regardless of MIME.
var allowedMimeTypes = map[string]struct{}{
	"application/pdf":              {},
	"application/zip":              {},
	"application/x-zip-compressed": {},
	"application/octet-stream":     {},
	"image/jpeg":                   {},
	"image/png":                    {},
	"image/gif":                    {},
	"image/webp":                   {},
	"video/mp4":                    {},
	"video/avi":                    {},
	"video/quicktime":              {},
	"application/msword":           {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"text/plain": {},
}

// Pipeline validates, stores, and indexes uploaded payloads.
type Pipeline struct {
	dir     string
	maxSize int64
	store   *storage.Store
}

// New creates a Pipeline writing into dir, creating it if needed.
func New(dir string, maxSize int64, store *storage.Store) (*Pipeline, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Pipeline{dir: dir, maxSize: maxSize, store: store}, nil
}

// Dir returns the content directory the pipeline writes into.
func (p *Pipeline) Dir() string { return p.dir }

// TypeAllowed applies the MIME allow-list with the .exe filename override.
func TypeAllowed(declaredType, originalName string) bool {
	if strings.HasSuffix(strings.ToLower(originalName), ".exe") {
		return true
	}
	_, ok := allowedMimeTypes[declaredType]
	return ok
}

// Accept runs the full upload pipeline: validation, durable byte placement
// under a server-generated name, then the metadata row. Partial bytes are
// removed on any failure after the write starts.
func (p *Pipeline) Accept(src io.Reader, declaredType, originalName string, declaredSize int64, categoryID *string, actingUser string) (*models.File, error) {
	if !TypeAllowed(declaredType, originalName) {
		return nil, ErrTypeNotAllowed
	}
	if declaredSize > p.maxSize {
		return nil, ErrTooLarge
	}
	if categoryID != nil && *categoryID != "" {
		exists, err := p.store.CategoryExists(*categoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrInvalidCategory
		}
	} else {
		categoryID = nil
	}

	storedName, out, err := p.createStored(filepath.Ext(originalName))
	if err != nil {
		return nil, err
	}
	dstPath := filepath.Join(p.dir, storedName)

	// Enforce the ceiling on actual bytes, not just the declared size.
	written, err := io.Copy(out, &io.LimitedReader{R: src, N: p.maxSize + 1})
	if err != nil {
		out.Close()
		os.Remove(dstPath)
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if written > p.maxSize {
		out.Close()
		os.Remove(dstPath)
		return nil, ErrTooLarge
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dstPath)
		return nil, fmt.Errorf("sync upload: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dstPath)
		return nil, fmt.Errorf("close upload: %w", err)
	}

	file := &models.File{
		Filename:     storedName,
		OriginalName: originalName,
		MimeType:     declaredType,
		Size:         written,
		CategoryID:   categoryID,
		UploadedBy:   actingUser,
		IsActive:     true,
	}
	if err := p.store.CreateFile(file); err != nil {
		os.Remove(dstPath)
		return nil, err
	}
	return file, nil
}

// createStored picks a collision-free server-generated name and opens it
// exclusively. The original name never reaches the filesystem.
func (p *Pipeline) createStored(ext string) (string, *os.File, error) {
	for attempt := 0; attempt < 5; attempt++ {
		name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:9], ext)
		out, err := os.OpenFile(filepath.Join(p.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return name, out, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", nil, fmt.Errorf("create upload file: %w", err)
		}
	}
	return "", nil, errors.New("could not allocate a unique stored filename")
}

// Open resolves a download: the metadata row must be active and the bytes
// must exist, otherwise storage.ErrNotFound. Internal paths never leak to
// the caller's error.
func (p *Pipeline) Open(id string) (*models.File, string, error) {
	file, err := p.store.GetFile(id)
	if err != nil {
		return nil, "", err
	}
	path := filepath.Join(p.dir, file.Filename)
	if _, err := os.Stat(path); err != nil {
		return nil, "", storage.ErrNotFound
	}
	return file, path, nil
}
