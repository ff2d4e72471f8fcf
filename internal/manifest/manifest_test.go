package manifest

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// createTestManifest creates a backup root with a manifest.db containing
// the given (relativePath, fileID) entries
func createTestManifest(t *testing.T, entries [][2]string) string {
	t.Helper()
	root := t.TempDir()

	db, err := sql.Open("sqlite3", filepath.Join(root, "manifest.db"))
	if err != nil {
		t.Fatalf("Failed to create test manifest.db: %v", err)
	}
	defer db.Close()

	schema := `
		CREATE TABLE Files (
			fileID TEXT,
			domain TEXT,
			relativePath TEXT,
			flags INTEGER,
			file BLOB
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	for _, e := range entries {
		_, err := db.Exec(
			"INSERT INTO Files (fileID, domain, relativePath, flags) VALUES (?, 'HomeDomain', ?, 1)",
			e[1], e[0],
		)
		if err != nil {
			t.Fatalf("Failed to insert manifest entry: %v", err)
		}
	}

	return root
}

func TestOpen_MissingManifest(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Expected ErrStoreUnavailable, got %v", err)
	}
}

func TestLocate(t *testing.T) {
	fid := "ab54cd78ef90ab54cd78ef90ab54cd78ef90ab54"
	root := createTestManifest(t, [][2]string{
		{"Library/SMS/sms.db", fid},
	})

	m, err := Open(root)
	if err != nil {
		t.Fatalf("Failed to open manifest: %v", err)
	}
	defer m.Close()

	got, err := m.Locate("Library/SMS/sms.db")
	if err != nil {
		t.Fatalf("Failed to locate path: %v", err)
	}

	want := filepath.Join(root, "ab", fid)
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestLocate_NotFound(t *testing.T) {
	root := createTestManifest(t, nil)

	m, err := Open(root)
	if err != nil {
		t.Fatalf("Failed to open manifest: %v", err)
	}
	defer m.Close()

	_, err = m.Locate("Library/SMS/sms.db")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestLocate_Ambiguous(t *testing.T) {
	root := createTestManifest(t, [][2]string{
		{"Library/SMS/sms.db", "aa00000000000000000000000000000000000000"},
		{"Library/SMS/sms.db", "bb00000000000000000000000000000000000000"},
	})

	m, err := Open(root)
	if err != nil {
		t.Fatalf("Failed to open manifest: %v", err)
	}
	defer m.Close()

	// Neither match may be returned
	_, err = m.Locate("Library/SMS/sms.db")
	if !errors.Is(err, ErrAmbiguousMapping) {
		t.Fatalf("Expected ErrAmbiguousMapping, got %v", err)
	}
}

func TestLocate_ShortFileID(t *testing.T) {
	root := createTestManifest(t, [][2]string{
		{"Library/SMS/sms.db", "x"},
	})

	m, err := Open(root)
	if err != nil {
		t.Fatalf("Failed to open manifest: %v", err)
	}
	defer m.Close()

	_, err = m.Locate("Library/SMS/sms.db")
	if !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("Expected ErrMalformedRow, got %v", err)
	}
}

func TestRoot(t *testing.T) {
	root := createTestManifest(t, nil)

	m, err := Open(root)
	if err != nil {
		t.Fatalf("Failed to open manifest: %v", err)
	}
	defer m.Close()

	if m.Root() != root {
		t.Errorf("Expected root %s, got %s", root, m.Root())
	}
}
