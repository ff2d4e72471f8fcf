package smsdb

import "fmt"

// Chat is one conversation thread row. Multiple rows may share an
// identifier (e.g. group vs 1:1 history with the same contact); guid is
// the globally unique key.
type Chat struct {
	ID         int64
	GUID       string
	Identifier string
}

// Chats returns every chat row in ROWID order. Duplicate identifiers are
// preserved, not deduplicated; the exporter keys output files by guid.
func (d *DB) Chats() ([]Chat, error) {
	rows, err := d.db.Query(`
		SELECT ROWID, guid, chat_identifier
		FROM chat
		ORDER BY ROWID
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var chats []Chat
	for rows.Next() {
		var ch Chat
		if err := rows.Scan(&ch.ID, &ch.GUID, &ch.Identifier); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chats: %w", err)
	}

	return chats, nil
}
