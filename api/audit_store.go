package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var auditBucket = []byte("audit_log")

// AuditEntry is one persisted security event.
type AuditEntry struct {
	ID         string `json:"id"`
	Event      string `json:"event"`
	RemoteAddr string `json:"remote_addr"`
	Reason     string `json:"reason,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// AuditStore persists the audit trail in a BBolt database. Sessions
// stay strictly in memory; the audit trail is the one thing worth
// keeping across restarts.
type AuditStore struct {
	db *bbolt.DB
}

// OpenAuditStore opens (creating if needed) the audit database at path.
func OpenAuditStore(path string) (*AuditStore, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening audit db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(auditBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit bucket: %w", err)
	}
	return &AuditStore{db: db}, nil
}

// Close closes the underlying database.
func (s *AuditStore) Close() error {
	return s.db.Close()
}

// Append writes one audit entry. Keys are time-prefixed so a cursor
// walks entries in chronological order.
func (s *AuditStore) Append(event AuditEvent, remoteAddr, reason string) error {
	entry := AuditEntry{
		ID:         uuid.NewString(),
		Event:      string(event),
		RemoteAddr: remoteAddr,
		Reason:     reason,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := entry.CreatedAt + "/" + entry.ID
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(auditBucket).Put([]byte(key), data)
	})
}

// List returns up to limit entries, newest first.
func (s *AuditStore) List(limit int) ([]AuditEntry, error) {
	entries := make([]AuditEntry, 0, limit)
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(auditBucket).Cursor()
		for k, v := c.Last(); k != nil && len(entries) < limit; k, v = c.Prev() {
			var entry AuditEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
