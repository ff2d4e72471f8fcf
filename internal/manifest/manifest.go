// Package manifest reads the content-address index of an iPhone backup.
//
// manifest.db maps logical device-side paths to content-addressed blob
// files under the backup root: the first two characters of the fileID name
// a shard directory and the full fileID is the filename within it.
package manifest

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrStoreUnavailable means a required database file is missing at
	// construction. Fatal for the whole run.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound means a single lookup (logical path, attachment blob)
	// has no match. Callers decide whether this is fatal or skippable.
	ErrNotFound = errors.New("not found in manifest")

	// ErrAmbiguousMapping means more than one manifest entry matched a
	// logical path. The key space is supposed to be unique, so this is a
	// data-integrity failure, not a retryable condition.
	ErrAmbiguousMapping = errors.New("ambiguous manifest mapping")

	// ErrMalformedRow means a row failed an expected-shape assumption,
	// e.g. a lookup expected to return exactly one row returned zero or
	// many. Fatal for that query.
	ErrMalformedRow = errors.New("malformed row")
)

// Manifest provides read-only access to a backup's manifest.db.
type Manifest struct {
	root string
	db   *sql.DB
}

// Open opens manifest.db under the given backup root.
func Open(root string) (*Manifest, error) {
	path := filepath.Join(root, "manifest.db")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: no manifest at %s", ErrStoreUnavailable, path)
	}

	db, err := OpenReadOnly(path)
	if err != nil {
		return nil, err
	}

	return &Manifest{root: root, db: db}, nil
}

// OpenReadOnly opens a sqlite database in read-only URI mode with pragmas
// tuned for scan-heavy access. Also used for the messaging store, which is
// itself resolved through the manifest. The backup is never written; if a
// read-only connection cannot be established, construction fails rather
// than falling back to a writable one.
func OpenReadOnly(path string) (*sql.DB, error) {
	uri := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite3", uri)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA query_only=ON",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA cache_size=-65536",   // 64MB cache
		"PRAGMA mmap_size=268435456", // 256MB memory map
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			// Ignore pragma errors (some may not be supported)
			continue
		}
	}

	return db, nil
}

// Close closes the manifest connection.
func (m *Manifest) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Root returns the backup root directory.
func (m *Manifest) Root() string {
	return m.root
}

// Locate resolves a logical device-side path to the blob file on disk.
// Returns ErrNotFound when the path has no entry and ErrAmbiguousMapping
// when it has more than one.
func (m *Manifest) Locate(logical string) (string, error) {
	rows, err := m.db.Query("SELECT fileID FROM Files WHERE relativePath = ?", logical)
	if err != nil {
		return "", fmt.Errorf("failed to query manifest: %w", err)
	}
	defer rows.Close()

	var fileIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan fileID: %w", err)
		}
		fileIDs = append(fileIDs, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating manifest entries: %w", err)
	}

	switch len(fileIDs) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, logical)
	case 1:
	default:
		return "", fmt.Errorf("%w: %d entries for %s", ErrAmbiguousMapping, len(fileIDs), logical)
	}

	fid := fileIDs[0]
	if len(fid) < 2 {
		return "", fmt.Errorf("%w: fileID %q for %s", ErrMalformedRow, fid, logical)
	}
	return filepath.Join(m.root, fid[:2], fid), nil
}
