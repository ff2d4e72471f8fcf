package smsdb

import "testing"

func TestChats(t *testing.T) {
	b := newTestBackup(t)
	b.exec("INSERT INTO chat (ROWID, guid, chat_identifier) VALUES (1, 'iMessage;-;+15551234567', '+15551234567')")
	b.exec("INSERT INTO chat (ROWID, guid, chat_identifier) VALUES (2, 'SMS;-;+15551234567', '+15551234567')")
	b.exec("INSERT INTO chat (ROWID, guid, chat_identifier) VALUES (3, 'iMessage;+;chat789', 'chat789')")

	d := b.open(Options{})

	chats, err := d.Chats()
	if err != nil {
		t.Fatalf("Failed to enumerate chats: %v", err)
	}

	if len(chats) != 3 {
		t.Fatalf("Expected 3 chats, got %d", len(chats))
	}

	// Duplicate identifiers are preserved, in ROWID order
	if chats[0].ID != 1 || chats[1].ID != 2 || chats[2].ID != 3 {
		t.Errorf("Expected ROWID order 1,2,3, got %d,%d,%d", chats[0].ID, chats[1].ID, chats[2].ID)
	}
	if chats[0].Identifier != "+15551234567" || chats[1].Identifier != "+15551234567" {
		t.Errorf("Expected duplicate identifiers preserved, got %q and %q",
			chats[0].Identifier, chats[1].Identifier)
	}
	if chats[1].GUID != "SMS;-;+15551234567" {
		t.Errorf("Expected guid SMS;-;+15551234567, got %q", chats[1].GUID)
	}
}

func TestChats_Empty(t *testing.T) {
	b := newTestBackup(t)

	d := b.open(Options{})

	chats, err := d.Chats()
	if err != nil {
		t.Fatalf("Failed to enumerate chats: %v", err)
	}
	if len(chats) != 0 {
		t.Errorf("Expected no chats, got %d", len(chats))
	}
}
