/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package store persists owned device records in SQLite. It implements
// the opaque key/value-style persistence collaborator of the ownership
// controller; callers treat failures as non-fatal, discovery continues
// from live radio data.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/juergengeck/uvc-sub003/pkg/models"
)

// SQLiteStore is a durable store for owned device records.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (and if needed creates) the database at path.
func New(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS owned_devices (
		device_id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		record JSON NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)

	return err
}

// Save upserts one owned device record. Records without an owner are
// rejected: only owned devices are persisted.
func (s *SQLiteStore) Save(ctx context.Context, record *models.DeviceRecord) error {
	if record.OwnerID == nil {
		return fmt.Errorf("refusing to persist unowned device %q", record.DeviceID)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal device record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO owned_devices (device_id, owner_id, record, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			owner_id = excluded.owner_id,
			record = excluded.record,
			updated_at = excluded.updated_at`,
		record.DeviceID, *record.OwnerID, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save device %q: %w", record.DeviceID, err)
	}

	return nil
}

// LoadAllOwned returns every persisted owned device record.
func (s *SQLiteStore) LoadAllOwned(ctx context.Context) ([]*models.DeviceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM owned_devices ORDER BY device_id`)
	if err != nil {
		return nil, fmt.Errorf("query owned devices: %w", err)
	}
	defer rows.Close()

	var records []*models.DeviceRecord

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan owned device: %w", err)
		}

		var record models.DeviceRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, fmt.Errorf("unmarshal device record: %w", err)
		}

		records = append(records, &record)
	}

	return records, rows.Err()
}

// Delete removes the persisted record for a device. Deleting an
// unknown device is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, deviceID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM owned_devices WHERE device_id = ?`, deviceID)
	if err != nil {
		return fmt.Errorf("delete device %q: %w", deviceID, err)
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
