package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ClientValue returns a value stored for a browser client. The second result
// is false when the key was never written.
func (s *SQLiteStore) ClientValue(ctx context.Context, clientID, key string) (string, bool, error) {
	db, err := s.conn()
	if err != nil {
		return "", false, err
	}

	var value string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM client_state WHERE client_id = ? AND key = ?`, clientID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get client value %s: %w", key, err)
	}
	return value, true, nil
}

// SetClientValue stores a value for a browser client, replacing any previous
// value.
func (s *SQLiteStore) SetClientValue(ctx context.Context, clientID, key, value string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO client_state (client_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (client_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		clientID, key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set client value %s: %w", key, err)
	}
	return nil
}

// ClientStore is the key-value store of one browser client.
type ClientStore struct {
	store    *SQLiteStore
	clientID string
}

// ClientStore returns the key-value store of a browser client.
func (s *SQLiteStore) ClientStore(clientID string) *ClientStore {
	return &ClientStore{store: s, clientID: clientID}
}

// Get returns the value stored under key.
func (c *ClientStore) Get(key string) (string, bool, error) {
	return c.store.ClientValue(context.Background(), c.clientID, key)
}

// Set stores value under key.
func (c *ClientStore) Set(key, value string) error {
	return c.store.SetClientValue(context.Background(), c.clientID, key, value)
}
