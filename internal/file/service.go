package file

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/abduss/fileshare/internal/idgen"
	"github.com/google/uuid"
)

const defaultMaxFileSize = 100 << 20 // 100 MiB

// storedExtPattern limits what part of a client filename may reach a blob name.
var storedExtPattern = regexp.MustCompile(`^\.[A-Za-z0-9_-]{1,16}$`)

// Service manages the shared-file lifecycle.
type Service struct {
	store       Store
	blobs       BlobStore
	maxFileSize int64
	nowFunc     func() time.Time
	newID       func() string
}

// NewService constructs a file service.
func NewService(store Store, blobs BlobStore) *Service {
	return &Service{
		store:       store,
		blobs:       blobs,
		maxFileSize: defaultMaxFileSize,
		nowFunc:     time.Now,
		newID:       idgen.New,
	}
}

// WithMaxFileSize overrides the upload cap.
func (s *Service) WithMaxFileSize(n int64) *Service {
	if n > 0 {
		s.maxFileSize = n
	}
	return s
}

// MaxFileSize returns the upload cap in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// Upload stores the file bytes and creates a record expiring after Retention.
func (s *Service) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (Record, error) {
	if fileHeader == nil {
		return Record{}, ErrMissingFile
	}
	if fileHeader.Size > s.maxFileSize {
		return Record{}, ErrFileTooLarge
	}

	src, err := fileHeader.Open()
	if err != nil {
		return Record{}, fmt.Errorf("open upload file: %w", err)
	}
	defer src.Close()

	filename := sanitizeFilename(fileHeader.Filename)
	mimeType := detectContentType(fileHeader)
	storedName := uuid.NewString() + storedExtension(filename)

	if _, err := s.blobs.Write(ctx, storedName, src, fileHeader.Size, mimeType); err != nil {
		return Record{}, err
	}

	now := s.nowFunc().UTC()
	rec := Record{
		ID:            s.newID(),
		Filename:      filename,
		StoredName:    storedName,
		Size:          fileHeader.Size,
		MimeType:      mimeType,
		UploadDate:    now,
		DownloadCount: 0,
		ExpiresAt:     now.Add(Retention),
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		_ = s.blobs.Remove(ctx, storedName)
		return Record{}, err
	}
	return rec, nil
}

// Visit serves a landing page hit: the record must exist and be unexpired, and the
// download counter is incremented.
func (s *Service) Visit(ctx context.Context, id string) (Record, error) {
	rec, err := s.lookup(ctx, id)
	if err != nil {
		return rec, err
	}
	return s.store.IncrementDownload(ctx, id)
}

// Open serves a direct download. It does not touch the download counter.
// The caller closes the returned reader.
func (s *Service) Open(ctx context.Context, id string) (Record, io.ReadCloser, error) {
	rec, err := s.lookup(ctx, id)
	if err != nil {
		return rec, nil, err
	}
	reader, err := s.blobs.Open(ctx, rec.StoredName)
	if err != nil {
		return rec, nil, err
	}
	return rec, reader, nil
}

// List returns every record, expired ones included.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.store.List(ctx)
}

// Delete removes the blob and then the record.
func (s *Service) Delete(ctx context.Context, id string) (Record, error) {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if err := s.blobs.Remove(ctx, rec.StoredName); err != nil {
		return Record{}, err
	}
	return s.store.Delete(ctx, id)
}

// lookup returns the record when it exists and has not expired. On ErrFileExpired the
// record is still returned.
func (s *Service) lookup(ctx context.Context, id string) (Record, error) {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if rec.Expired(s.nowFunc()) {
		return rec, ErrFileExpired
	}
	return rec, nil
}

func detectContentType(fileHeader *multipart.FileHeader) string {
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}

// storedExtension returns the original extension when it is short and plain, and ""
// otherwise.
func storedExtension(filename string) string {
	ext := filepath.Ext(filename)
	if !storedExtPattern.MatchString(ext) {
		return ""
	}
	return ext
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "upload"
	}
	return name
}
