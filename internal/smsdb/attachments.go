package smsdb

import (
	"database/sql"
	"fmt"
	"path"
	"strings"
)

// Attachment is one attachment row scoped to a message.
type Attachment struct {
	Path string         // logical path, trimmed of the home/mobile-root prefix
	UTI  sql.NullString // type tag, may be absent
	Name string         // transfer name, or the path basename if absent
	Date int64          // Apple timestamp in whole seconds (not nanoseconds)
}

// trimPath strips the device home-directory or mobile-root prefix from an
// attachment filename so it matches the manifest's relativePath key space.
// Idempotent: already-trimmed paths pass through unchanged.
func trimPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		return p[2:]
	}
	if strings.HasPrefix(p, "/var/mobile/") {
		return p[len("/var/mobile/"):]
	}
	return p
}

// AttachmentsForChat collects attachment metadata for every message in the
// chat, keyed by message ROWID. Rows with a null filename carry no backing
// file and are dropped with a warning.
func (d *DB) AttachmentsForChat(chatID int64) (map[int64][]Attachment, error) {
	rows, err := d.db.Query(`
		SELECT maj.message_id, a.filename, a.uti, a.transfer_name, a.created_date
		FROM attachment a
		LEFT JOIN message_attachment_join maj ON a.ROWID = maj.attachment_id
		LEFT JOIN chat_message_join cmj ON maj.message_id = cmj.message_id
		WHERE cmj.chat_id = ?
		ORDER BY a.ROWID
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	attachments := make(map[int64][]Attachment)
	for rows.Next() {
		var (
			messageID          int64
			filename, uti, name sql.NullString
			created            sql.NullInt64
		)
		if err := rows.Scan(&messageID, &filename, &uti, &name, &created); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}

		if !filename.Valid {
			d.log.Warn("attachment has no filename", "message_id", messageID)
			continue
		}

		att := Attachment{
			Path: trimPath(filename.String),
			UTI:  uti,
			Date: created.Int64,
		}
		if name.Valid {
			att.Name = name.String
		} else {
			att.Name = path.Base(att.Path)
		}
		attachments[messageID] = append(attachments[messageID], att)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachments: %w", err)
	}

	return attachments, nil
}
