package file

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS shared_files (
    seq            BIGSERIAL,
    id             TEXT PRIMARY KEY,
    filename       TEXT        NOT NULL,
    stored_name    TEXT        NOT NULL UNIQUE,
    size_bytes     BIGINT      NOT NULL,
    mime_type      TEXT        NOT NULL,
    upload_date    TIMESTAMPTZ NOT NULL,
    download_count BIGINT      NOT NULL DEFAULT 0,
    expires_at     TIMESTAMPTZ NOT NULL
);`

const recordColumns = `id, filename, stored_name, size_bytes, mime_type, upload_date, download_count, expires_at`

// Repository stores file records in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new file repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the records table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure shared_files schema: %w", err)
	}
	return nil
}

// Insert stores a new record.
func (r *Repository) Insert(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO shared_files (` + recordColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.Filename,
		rec.StoredName,
		rec.Size,
		rec.MimeType,
		rec.UploadDate,
		rec.DownloadCount,
		rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert file record: %w", err)
	}
	return nil
}

// FindByID fetches a single record.
func (r *Repository) FindByID(ctx context.Context, id string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + recordColumns + ` FROM shared_files WHERE id = $1;`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, fmt.Errorf("get file record: %w", err)
	}
	return rec, nil
}

// List returns all records in insertion order.
func (r *Repository) List(ctx context.Context) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+recordColumns+` FROM shared_files ORDER BY seq;`)
	if err != nil {
		return nil, fmt.Errorf("list file records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file records: %w", err)
	}
	return records, nil
}

// IncrementDownload bumps the counter in a single statement.
func (r *Repository) IncrementDownload(ctx context.Context, id string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
UPDATE shared_files SET download_count = download_count + 1
WHERE id = $1
RETURNING ` + recordColumns + `;`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, fmt.Errorf("increment download count: %w", err)
	}
	return rec, nil
}

// Delete removes a record and returns it.
func (r *Repository) Delete(ctx context.Context, id string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `DELETE FROM shared_files WHERE id = $1 RETURNING ` + recordColumns + `;`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, fmt.Errorf("delete file record: %w", err)
	}
	return rec, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.Filename,
		&rec.StoredName,
		&rec.Size,
		&rec.MimeType,
		&rec.UploadDate,
		&rec.DownloadCount,
		&rec.ExpiresAt,
	)
	return rec, err
}
