// Package storage persists complete ledger snapshots.
//
// Every backend stores the snapshot as one JSON document under a key, so the
// in-memory, file, SQLite and Postgres stores are interchangeable behind
// ledger.Store.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"finledger/internal/core"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = core.ErrNoSnapshot

// DefaultKey names the snapshot row in the SQL stores.
const DefaultKey = "default"

// Store is the contract shared by all backends.
type Store interface {
	Load(ctx context.Context) (*core.Snapshot, error)
	Save(ctx context.Context, snap *core.Snapshot) error
	Close() error
}

func encode(snap *core.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, fmt.Errorf("nil snapshot")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*core.Snapshot, error) {
	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	snap.Normalize()
	return &snap, nil
}
