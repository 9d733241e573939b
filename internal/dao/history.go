package dao

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/textcipher-go/internal/storage"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// HistoryEntry records one finished operation. It never carries key
// material or payload bytes.
type HistoryEntry struct {
	ID             string    `json:"id"`
	Time           time.Time `json:"time"`
	Operation      string    `json:"operation"` // encrypt, decrypt
	Mode           string    `json:"mode"`      // text, file, stream
	Method         string    `json:"method"`
	Source         string    `json:"source,omitempty"`
	Sink           string    `json:"sink,omitempty"`
	Bytes          int64     `json:"bytes"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	KeyFingerprint string    `json:"key_fingerprint,omitempty"`
}

// HistoryDAO persists the operation log
type HistoryDAO struct {
	store *storage.Store
}

// NewHistoryDAO creates a new history DAO
func NewHistoryDAO(store *storage.Store) *HistoryDAO {
	return &HistoryDAO{store: store}
}

// Record assigns an ID and timestamp if missing and stores the entry.
// IDs are UUIDv7 so bucket order is insertion order.
func (d *HistoryDAO) Record(entry *HistoryEntry) error {
	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate history id: %w", err)
		}
		entry.ID = id.String()
	}
	if entry.Time.IsZero() {
		entry.Time = time.Now().UTC()
	}
	return d.store.SetJSON(storage.BucketHistory, entry.ID, entry)
}

// Get retrieves a single entry by ID
func (d *HistoryDAO) Get(id string) (*HistoryEntry, bool) {
	var entry HistoryEntry
	if err := d.store.GetJSON(storage.BucketHistory, id, &entry); err != nil {
		return nil, false
	}
	if entry.ID == "" {
		return nil, false
	}
	return &entry, true
}

// Recent returns up to limit entries, newest first
func (d *HistoryDAO) Recent(limit int) ([]*HistoryEntry, error) {
	raw, err := d.store.Last(storage.BucketHistory, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]*HistoryEntry, 0, len(raw))
	for _, data := range raw {
		var entry HistoryEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("corrupt history entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

// Clear removes all entries
func (d *HistoryDAO) Clear() (int, error) {
	return d.store.Clear(storage.BucketHistory)
}
