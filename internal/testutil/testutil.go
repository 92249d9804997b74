package testutil

import (
	"database/sql"
	"sync"
	"testing"

	"driverDispatch/internal/db"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// Caller is responsible for closing the DB, typically via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// We use a shared cache memory database so that multiple connections share the same DB if needed.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// SentMessage records one outbound chat message captured by RecorderGateway.
type SentMessage struct {
	ChatID   string
	Text     string
	Markdown bool
}

// RecorderGateway implements notify.Gateway and records every message instead
// of talking to Telegram. Safe for concurrent use.
type RecorderGateway struct {
	mu   sync.Mutex
	sent []SentMessage

	// FailNext makes the next send return this error, then resets.
	FailNext error
}

func (r *RecorderGateway) SendMessage(chatID string, text string) error {
	return r.record(chatID, text, false)
}

func (r *RecorderGateway) SendMessageMarkdown(chatID string, text string, markup any) error {
	return r.record(chatID, text, true)
}

func (r *RecorderGateway) record(chatID, text string, markdown bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailNext; err != nil {
		r.FailNext = nil
		return err
	}
	r.sent = append(r.sent, SentMessage{ChatID: chatID, Text: text, Markdown: markdown})
	return nil
}

// Sent returns a copy of the recorded messages in send order.
func (r *RecorderGateway) Sent() []SentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SentMessage, len(r.sent))
	copy(out, r.sent)
	return out
}

// Reset discards all recorded messages.
func (r *RecorderGateway) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
