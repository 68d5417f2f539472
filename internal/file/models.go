package file

import "time"

// Retention is how long a shared file stays downloadable after upload.
const Retention = 7 * 24 * time.Hour

// Record represents one uploaded file.
type Record struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	StoredName    string    `json:"storedName"`
	Size          int64     `json:"size"`
	MimeType      string    `json:"mimeType"`
	UploadDate    time.Time `json:"uploadDate"`
	DownloadCount int64     `json:"downloadCount"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Expired reports whether the record's retention window has passed at now.
func (r Record) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

// Summary is the public-safe view of a record returned by the listing endpoint.
type Summary struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	Size          int64     `json:"size"`
	UploadDate    time.Time `json:"uploadDate"`
	DownloadCount int64     `json:"downloadCount"`
	ExpiresAt     time.Time `json:"expiresAt"`
	DownloadURL   string    `json:"downloadUrl"`
}

// Summarize drops storage details and attaches the share link.
func (r Record) Summarize(downloadURL string) Summary {
	return Summary{
		ID:            r.ID,
		Filename:      r.Filename,
		Size:          r.Size,
		UploadDate:    r.UploadDate,
		DownloadCount: r.DownloadCount,
		ExpiresAt:     r.ExpiresAt,
		DownloadURL:   downloadURL,
	}
}
