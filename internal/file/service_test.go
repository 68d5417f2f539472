package file

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"
)

func TestUploadStoresBlobAndRecord(t *testing.T) {
	store := NewMemoryStore()
	blobs := newFakeBlobStore()
	service := NewService(store, blobs)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service.nowFunc = func() time.Time { return fixed }

	fileHeader := buildFileHeader(t, "file", "notes.txt", "text/plain", []byte("hello world"))

	rec, err := service.Upload(context.Background(), fileHeader)
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if rec.Filename != "notes.txt" {
		t.Fatalf("unexpected filename: %s", rec.Filename)
	}
	if rec.MimeType != "text/plain" {
		t.Fatalf("unexpected mime type: %s", rec.MimeType)
	}
	if rec.Size != int64(len("hello world")) {
		t.Fatalf("unexpected size: %d", rec.Size)
	}
	if rec.DownloadCount != 0 {
		t.Fatalf("expected zero downloads, got %d", rec.DownloadCount)
	}
	if !rec.ExpiresAt.Equal(fixed.Add(7 * 24 * time.Hour)) {
		t.Fatalf("unexpected expiry: %s", rec.ExpiresAt)
	}
	if !strings.HasSuffix(rec.StoredName, ".txt") || strings.HasPrefix(rec.StoredName, "notes") {
		t.Fatalf("stored name must be generated and keep the extension, got %s", rec.StoredName)
	}
	if got := string(blobs.objects[rec.StoredName]); got != "hello world" {
		t.Fatalf("unexpected blob content %q", got)
	}
	if _, err := store.FindByID(context.Background(), rec.ID); err != nil {
		t.Fatalf("expected record stored: %v", err)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	blobs := newFakeBlobStore()
	service := NewService(NewMemoryStore(), blobs).WithMaxFileSize(4)

	fileHeader := buildFileHeader(t, "file", "big.bin", "application/octet-stream", []byte("too large"))

	if _, err := service.Upload(context.Background(), fileHeader); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if len(blobs.objects) != 0 {
		t.Fatalf("expected nothing stored, got %d blobs", len(blobs.objects))
	}
}

func TestUploadWithoutFile(t *testing.T) {
	service := NewService(NewMemoryStore(), newFakeBlobStore())

	if _, err := service.Upload(context.Background(), nil); !errors.Is(err, ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}
}

func TestUploadRemovesBlobWhenRecordFails(t *testing.T) {
	blobs := newFakeBlobStore()
	service := NewService(&failingStore{Store: NewMemoryStore()}, blobs)

	fileHeader := buildFileHeader(t, "file", "a.txt", "text/plain", []byte("payload"))
	if _, err := service.Upload(context.Background(), fileHeader); err == nil {
		t.Fatalf("expected error from failing store")
	}
	if blobs.removeCount != 1 || len(blobs.objects) != 0 {
		t.Fatalf("expected orphaned blob to be removed")
	}
}

func TestVisitIncrementsCounter(t *testing.T) {
	store := NewMemoryStore()
	service := NewService(store, newFakeBlobStore())
	rec := uploadSample(t, service)

	for want := int64(1); want <= 2; want++ {
		got, err := service.Visit(context.Background(), rec.ID)
		if err != nil {
			t.Fatalf("Visit returned error: %v", err)
		}
		if got.DownloadCount != want {
			t.Fatalf("expected %d downloads, got %d", want, got.DownloadCount)
		}
	}
}

func TestVisitExpiredDoesNotIncrement(t *testing.T) {
	store := NewMemoryStore()
	service := NewService(store, newFakeBlobStore())
	rec := uploadSample(t, service)

	service.nowFunc = func() time.Time { return rec.ExpiresAt.Add(time.Second) }

	if _, err := service.Visit(context.Background(), rec.ID); !errors.Is(err, ErrFileExpired) {
		t.Fatalf("expected ErrFileExpired, got %v", err)
	}
	stored, _ := store.FindByID(context.Background(), rec.ID)
	if stored.DownloadCount != 0 {
		t.Fatalf("expired visit must not count, got %d", stored.DownloadCount)
	}
}

func TestVisitAtExactExpiryIsAllowed(t *testing.T) {
	service := NewService(NewMemoryStore(), newFakeBlobStore())
	rec := uploadSample(t, service)

	service.nowFunc = func() time.Time { return rec.ExpiresAt }

	if _, err := service.Visit(context.Background(), rec.ID); err != nil {
		t.Fatalf("expected visit at the expiry instant to succeed, got %v", err)
	}
}

func TestOpenDoesNotIncrementCounter(t *testing.T) {
	store := NewMemoryStore()
	service := NewService(store, newFakeBlobStore())
	rec := uploadSample(t, service)

	_, reader, err := service.Open(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if body := readAll(t, reader); body != "payload" {
		t.Fatalf("unexpected body %q", body)
	}

	stored, _ := store.FindByID(context.Background(), rec.ID)
	if stored.DownloadCount != 0 {
		t.Fatalf("direct download must not count, got %d", stored.DownloadCount)
	}
}

func TestOpenReportsMissingBlob(t *testing.T) {
	blobs := newFakeBlobStore()
	service := NewService(NewMemoryStore(), blobs)
	rec := uploadSample(t, service)
	delete(blobs.objects, rec.StoredName)

	if _, _, err := service.Open(context.Background(), rec.ID); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestOpenRejectsExpired(t *testing.T) {
	service := NewService(NewMemoryStore(), newFakeBlobStore())
	rec := uploadSample(t, service)
	service.nowFunc = func() time.Time { return rec.ExpiresAt.Add(time.Minute) }

	if _, _, err := service.Open(context.Background(), rec.ID); !errors.Is(err, ErrFileExpired) {
		t.Fatalf("expected ErrFileExpired, got %v", err)
	}
}

func TestDeleteRemovesRecordAndBlob(t *testing.T) {
	store := NewMemoryStore()
	blobs := newFakeBlobStore()
	service := NewService(store, blobs)
	rec := uploadSample(t, service)

	if _, err := service.Delete(context.Background(), rec.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if blobs.removeCount != 1 || len(blobs.objects) != 0 {
		t.Fatalf("expected blob removed")
	}
	if _, err := store.FindByID(context.Background(), rec.ID); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected record removed, got %v", err)
	}
	if _, err := service.Delete(context.Background(), rec.ID); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound on second delete, got %v", err)
	}
}

func TestListIncludesExpiredRecords(t *testing.T) {
	service := NewService(NewMemoryStore(), newFakeBlobStore())
	rec := uploadSample(t, service)
	service.nowFunc = func() time.Time { return rec.ExpiresAt.Add(time.Hour) }

	list, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected expired record to stay listed, got %d", len(list))
	}
}

func TestStoredExtension(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"a.txt", ".txt"},
		{"archive.tar.gz", ".gz"},
		{"no-extension", ""},
		{"notes.", ""},
		{`report.v1\final`, ""},
		{"photo.jp g", ""},
		{"x." + strings.Repeat("a", 17), ""},
		{"x." + strings.Repeat("a", 16), "." + strings.Repeat("a", 16)},
	}
	for _, tc := range cases {
		if got := storedExtension(tc.in); got != tc.want {
			t.Fatalf("storedExtension(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// --- helpers & fakes ---

func uploadSample(t *testing.T, service *Service) Record {
	t.Helper()
	rec, err := service.Upload(context.Background(), buildFileHeader(t, "file", "a.txt", "text/plain", []byte("payload")))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	return rec
}

func buildFileHeader(t *testing.T, fieldName, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+filename+`"`)
	partHeader.Set("Content-Type", contentType)
	part, err := writer.CreatePart(partHeader)
	if err != nil {
		t.Fatalf("CreatePart error: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(int64(len(content)) + 1024); err != nil {
		t.Fatalf("ParseMultipartForm: %v", err)
	}

	return req.MultipartForm.File[fieldName][0]
}

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

type fakeBlobStore struct {
	objects     map[string][]byte
	removeCount int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) Write(ctx context.Context, name string, r io.Reader, size int64, contentType string) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.objects[name] = data
	return int64(len(data)), nil
}

func (f *fakeBlobStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	data, ok := f.objects[name]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBlobStore) Remove(ctx context.Context, name string) error {
	f.removeCount++
	delete(f.objects, name)
	return nil
}

func (f *fakeBlobStore) Ping(ctx context.Context) error {
	return nil
}

type failingStore struct {
	Store
}

func (f *failingStore) Insert(ctx context.Context, rec Record) error {
	return errors.New("insert failed")
}
