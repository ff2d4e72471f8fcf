// Package export materializes chats as JSON transcripts with their
// attachment blobs copied alongside.
package export

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sethrj/iphone-message-export/internal/appletime"
	"github.com/sethrj/iphone-message-export/internal/manifest"
	"github.com/sethrj/iphone-message-export/internal/smsdb"
)

// dateLayout renders message dates as e.g. 2022JUN01 13:45:07 once
// upper-cased.
const dateLayout = "2006Jan02 15:04:05"

// Exporter writes one directory per chat identifier under a destination
// root. Duplicate identifiers share a directory; files inside are keyed
// by chat guid, so they never collide.
type Exporter struct {
	DB *smsdb.DB

	// Aliases optionally rewrites resolved senders to display names.
	Aliases map[string]string

	Log *slog.Logger
}

// entry is the JSON shape of one exported message.
type entry struct {
	ID    int64        `json:"id"`
	Date  string       `json:"date"`
	Who   smsdb.Sender `json:"who"`
	Value value        `json:"value"`
}

// descriptor is the export-ready form of one attachment: the destination
// filename (null when the copy failed), the type tag, and the original
// device-side path for traceability.
type descriptor struct {
	Name *string `json:"name"`
	UTI  *string `json:"uti"`
	Orig string  `json:"orig"`
}

// part is one element of an attachment-led sequence: a descriptor or the
// trailing text.
type part struct {
	att  *descriptor
	text sql.NullString
}

// value is the exported message payload. Two cases: scalar text (possibly
// null), or the attachment descriptor sequence ending with the text.
type value struct {
	text  sql.NullString
	parts []part
	mixed bool
}

func (v value) MarshalJSON() ([]byte, error) {
	if !v.mixed {
		if !v.text.Valid {
			return []byte("null"), nil
		}
		return json.Marshal(v.text.String)
	}

	items := make([]json.RawMessage, 0, len(v.parts))
	for _, p := range v.parts {
		var (
			raw []byte
			err error
		)
		switch {
		case p.att != nil:
			raw, err = json.Marshal(p.att)
		case p.text.Valid:
			raw, err = json.Marshal(p.text.String)
		default:
			raw = []byte("null")
		}
		if err != nil {
			return nil, err
		}
		items = append(items, raw)
	}
	return json.Marshal(items)
}

// ExportChat writes one chat under destRoot. Returns false when the chat
// has no messages in the window; nothing is created in that case, since
// stale or duplicate identifiers routinely yield empty chats.
func (e *Exporter) ExportChat(chat smsdb.Chat, destRoot string) (bool, error) {
	messages, err := e.DB.MessagesForChat(chat.ID)
	if err != nil {
		return false, fmt.Errorf("reading messages for chat %d: %w", chat.ID, err)
	}
	if len(messages) == 0 {
		return false, nil
	}

	destDir := filepath.Join(destRoot, chat.Identifier)
	attDir := ""

	entries := make([]entry, 0, len(messages))
	for _, msg := range messages {
		ent := entry{
			ID:   msg.ID,
			Date: strings.ToUpper(msg.Date.Format(dateLayout)),
			Who:  e.applyAlias(msg.Who),
		}

		if !msg.Body.HasAttachments {
			ent.Value = value{text: msg.Body.Text}
			entries = append(entries, ent)
			continue
		}

		val := value{mixed: true}
		for _, att := range msg.Body.Attachments {
			if attDir == "" {
				// Created lazily so text-only chats get no empty dir
				attDir = filepath.Join(destDir, "attachments")
				if err := os.MkdirAll(attDir, 0o755); err != nil {
					return false, fmt.Errorf("creating %s: %w", attDir, err)
				}
			}

			desc := descriptor{Orig: att.Path}
			if att.UTI.Valid {
				uti := att.UTI.String
				desc.UTI = &uti
			}
			name, ok, err := e.copyAttachment(msg.ID, att, attDir)
			if err != nil {
				return false, err
			}
			if ok {
				desc.Name = &name
			}
			val.parts = append(val.parts, part{att: &desc})
		}
		val.parts = append(val.parts, part{text: msg.Body.Text})
		ent.Value = val
		entries = append(entries, ent)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return false, fmt.Errorf("creating %s: %w", destDir, err)
	}

	// Semicolons in guids are unsafe on some target filesystems
	guid := strings.ReplaceAll(chat.GUID, ";", "")
	outPath := filepath.Join(destDir, fmt.Sprintf("messages-%s.json", guid))
	if err := writeJSON(outPath, entries); err != nil {
		return false, err
	}
	return true, nil
}

// copyAttachment copies one blob into the attachments directory and
// stamps it with the attachment's own creation time (seconds since the
// Apple epoch, unlike message dates). A missing blob is logged and
// reported as a failed copy; integrity errors from the resolver abort.
func (e *Exporter) copyAttachment(msgID int64, att smsdb.Attachment, attDir string) (string, bool, error) {
	name := fmt.Sprintf("%d-%s", msgID, att.Name)

	src, err := e.DB.Blob(att.Path)
	if err != nil {
		if !errors.Is(err, manifest.ErrNotFound) {
			return "", false, err
		}
		e.Log.Warn("failed to copy attachment",
			"message_id", msgID, "path", att.Path, "name", att.Name, "err", err)
		return "", false, nil
	}

	dst := filepath.Join(attDir, name)
	if err := copyFile(src, dst); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", false, err
		}
		e.Log.Warn("failed to copy attachment",
			"message_id", msgID, "path", att.Path, "name", att.Name, "err", err)
		return "", false, nil
	}

	ctime := appletime.FromSeconds(att.Date)
	if err := os.Chtimes(dst, ctime, ctime); err != nil {
		e.Log.Warn("failed to stamp attachment times", "dst", dst, "err", err)
	}
	return name, true, nil
}

func (e *Exporter) applyAlias(s smsdb.Sender) smsdb.Sender {
	if len(e.Aliases) == 0 {
		return s
	}
	if name, ok := s.Resolved(); ok {
		if alias, ok := e.Aliases[name]; ok {
			return smsdb.Named(alias)
		}
	}
	return s
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeJSON(path string, entries []entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", " ")
	if err := enc.Encode(entries); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
