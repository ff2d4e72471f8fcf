package smsdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sethrj/iphone-message-export/internal/appletime"
)

// unknownSender is emitted for messages whose handle id is the zero
// sentinel (sender not recorded in the handle table at all).
const unknownSender = "<unknown>"

type senderKind int

const (
	senderNull senderKind = iota
	senderName
	senderRawHandle
)

// Sender identifies who sent a message. Exactly one case applies: a
// resolved name (handle address, owner account remainder, or the
// <unknown> sentinel), the raw numeric handle id when the handle table
// has no entry for it, or null for an owner message with no account.
type Sender struct {
	kind   senderKind
	name   string
	handle int64
}

// Named returns a Sender carrying a resolved name.
func Named(name string) Sender {
	return Sender{kind: senderName, name: name}
}

// RawHandle returns a Sender carrying an unresolved numeric handle id.
func RawHandle(id int64) Sender {
	return Sender{kind: senderRawHandle, handle: id}
}

// Resolved reports the sender name when the sender resolved to a string.
func (s Sender) Resolved() (string, bool) {
	return s.name, s.kind == senderName
}

// MarshalJSON emits a string for resolved senders, a number for raw
// handle ids, and null otherwise.
func (s Sender) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case senderName:
		return json.Marshal(s.name)
	case senderRawHandle:
		return json.Marshal(s.handle)
	default:
		return []byte("null"), nil
	}
}

// Body is the message payload: plain text (possibly null) or, when the
// row's attachment flag is set, the attachment sequence with the trailing
// text. The flag governs the shape even when every attachment row was
// dropped, so a flagged message with no surviving attachments still
// exports as a one-element sequence.
type Body struct {
	Text           sql.NullString
	Attachments    []Attachment
	HasAttachments bool
}

// Message is one message row with its sender resolved and, when flagged,
// its attachment list joined in.
type Message struct {
	ID   int64
	Date time.Time
	Who  Sender
	Body Body
}

// MessagesForChat returns the chat's messages in ascending ROWID order,
// restricted to the date window the store was opened with. Order comes
// from the join, not from a timestamp sort.
func (d *DB) MessagesForChat(chatID int64) ([]Message, error) {
	attachments, err := d.AttachmentsForChat(chatID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT m.ROWID, m.date, m.handle_id, m.account, m.is_from_me,
		       m.text, m.cache_has_attachments
		FROM message m
		LEFT JOIN chat_message_join cmj ON m.ROWID = cmj.message_id
		WHERE cmj.chat_id = ?
	`
	args := []interface{}{chatID}
	if d.minDate.Valid {
		query += " AND m.date >= ?"
		args = append(args, d.minDate.Int64)
	}
	if d.maxDate.Valid {
		query += " AND m.date < ?"
		args = append(args, d.maxDate.Int64)
	}
	query += " ORDER BY m.ROWID"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var (
			rowid, date    int64
			handleID       sql.NullInt64
			account, text  sql.NullString
			isFromMe       bool
			hasAttachments bool
		)
		if err := rows.Scan(&rowid, &date, &handleID, &account, &isFromMe, &text, &hasAttachments); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		msg := Message{
			ID:   rowid,
			Date: appletime.FromNanoseconds(date),
			Who:  d.resolveSender(rowid, handleID, account, isFromMe),
			Body: Body{Text: text, HasAttachments: hasAttachments},
		}
		if hasAttachments {
			msg.Body.Attachments = attachments[rowid]
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// resolveSender applies the sender policy in order: owner account, the
// zero-handle sentinel, the cached handle table, then the raw handle id.
func (d *DB) resolveSender(msgID int64, handleID sql.NullInt64, account sql.NullString, isFromMe bool) Sender {
	if isFromMe {
		if !account.Valid || account.String == "" {
			return Sender{}
		}
		// Accounts look like "e:address" or "p:number"; keep the part
		// after the last colon, or the whole string if that is empty.
		name := account.String
		if i := strings.LastIndex(name, ":"); i >= 0 && i+1 < len(name) {
			name = name[i+1:]
		}
		return Named(name)
	}

	hid := handleID.Int64 // NULL handle_id behaves like the zero sentinel
	if hid == 0 {
		return Named(unknownSender)
	}
	if name, ok := d.handles[hid]; ok {
		return Named(name)
	}

	d.log.Warn("no handle table entry",
		"handle_id", hid,
		"message_id", msgID,
		"row", d.describeRow("message", "ROWID", msgID),
	)
	return RawHandle(hid)
}
