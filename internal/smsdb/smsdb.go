// Package smsdb reconstructs per-chat message streams from the messaging
// store embedded in an iPhone backup.
package smsdb

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sethrj/iphone-message-export/internal/appletime"
	"github.com/sethrj/iphone-message-export/internal/manifest"
)

// smsDBPath is the logical device-side path of the messaging store.
const smsDBPath = "Library/SMS/sms.db"

// Options configures a DB.
type Options struct {
	// MinDate and MaxDate bound returned messages as [MinDate, MaxDate).
	// A zero value leaves that side unbounded.
	MinDate time.Time
	MaxDate time.Time

	// Logger receives per-row anomaly reports (dropped attachments,
	// handle lookup misses). Defaults to slog.Default().
	Logger *slog.Logger
}

// DB provides read-only access to the backup's sms.db. Attachment blobs
// are resolved through the manifest the store was opened with.
type DB struct {
	db       *sql.DB
	manifest *manifest.Manifest
	log      *slog.Logger

	// handles maps handle ROWID to the contact address. The table is
	// small and consulted for every message, so it is loaded once at
	// construction and never mutated.
	handles map[int64]string

	// Date window in Apple nanoseconds; invalid means unbounded.
	minDate sql.NullInt64
	maxDate sql.NullInt64
}

// Open locates sms.db through the manifest and opens it read-only.
func Open(m *manifest.Manifest, opts Options) (*DB, error) {
	path, err := m.Locate(smsDBPath)
	if err != nil {
		return nil, fmt.Errorf("%w: locating %s: %v", manifest.ErrStoreUnavailable, smsDBPath, err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: expected messaging store at %s", manifest.ErrStoreUnavailable, path)
	}

	db, err := manifest.OpenReadOnly(path)
	if err != nil {
		return nil, err
	}

	d := &DB{db: db, manifest: m, log: opts.Logger}
	if d.log == nil {
		d.log = slog.Default()
	}
	if !opts.MinDate.IsZero() {
		d.minDate = sql.NullInt64{Int64: appletime.ToNanoseconds(opts.MinDate), Valid: true}
	}
	if !opts.MaxDate.IsZero() {
		d.maxDate = sql.NullInt64{Int64: appletime.ToNanoseconds(opts.MaxDate), Valid: true}
	}

	if err := d.loadHandles(); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

// Close closes the messaging store connection. The manifest is owned by
// the caller and stays open.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Blob resolves an attachment's logical path to its on-disk blob file.
func (d *DB) Blob(logical string) (string, error) {
	return d.manifest.Locate(logical)
}

// loadHandles caches the full handle table (sender identities).
func (d *DB) loadHandles() error {
	rows, err := d.db.Query("SELECT ROWID, id FROM handle")
	if err != nil {
		return fmt.Errorf("failed to query handles: %w", err)
	}
	defer rows.Close()

	d.handles = make(map[int64]string)
	for rows.Next() {
		var rowid int64
		var id string
		if err := rows.Scan(&rowid, &id); err != nil {
			return fmt.Errorf("failed to scan handle: %w", err)
		}
		d.handles[rowid] = id
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating handles: %w", err)
	}

	return nil
}
