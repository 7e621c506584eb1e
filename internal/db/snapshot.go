// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/toeirei/authkeys/internal/authkeys"
	"github.com/uptrace/bun"
)

// SnapshotModel is one recorded state of a key file.
type SnapshotModel struct {
	bun.BaseModel `bun:"table:snapshots"`
	ID            string    `bun:"id,pk,type:varchar(36)"`
	Path          string    `bun:"path,notnull,type:varchar(1024)"`
	Format        string    `bun:"format,notnull"`
	KeyCount      int       `bun:"key_count,notnull"`
	Note          string    `bun:"note"`
	Content       string    `bun:"content,type:text"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

// SnapshotKeyModel is one key of a snapshot, kept for listing without
// re-parsing the content.
type SnapshotKeyModel struct {
	bun.BaseModel `bun:"table:snapshot_keys"`
	ID            int64  `bun:"id,pk,autoincrement"`
	SnapshotID    string `bun:"snapshot_id,notnull,type:varchar(36)"`
	Position      int    `bun:"position,notnull"`
	KeyType       string `bun:"key_type"`
	Comment       string `bun:"comment,type:text"`
	Options       string `bun:"options,type:text"`
	Line          string `bun:"line,type:text"`
}

// Snapshot is a stored key file state with its keys.
type Snapshot struct {
	SnapshotModel
	Keys []SnapshotKeyModel
}

// keyType is the type column for a key: the algorithm of a modern key or
// "rsa1-<bits>" for a legacy one.
func keyType(k authkeys.Key) string {
	switch kk := k.(type) {
	case *authkeys.ModernKey:
		return kk.Type
	case *authkeys.LegacyKey:
		return "rsa1-" + strconv.Itoa(kk.Bits)
	}
	return ""
}

// Save records the current in-memory state of f.
func (s *Store) Save(ctx context.Context, f *authkeys.File, note string) (*Snapshot, error) {
	snap := &Snapshot{SnapshotModel: SnapshotModel{
		ID:        s.newID(),
		Path:      f.Path(),
		Format:    f.Format().String(),
		KeyCount:  len(f.Keys()),
		Note:      note,
		Content:   f.Render(),
		CreatedAt: s.now().UTC(),
	}}
	for i, k := range f.Keys() {
		snap.Keys = append(snap.Keys, SnapshotKeyModel{
			SnapshotID: snap.ID,
			Position:   i,
			KeyType:    keyType(k),
			Comment:    k.Comment(),
			Options:    k.Options().String(),
			Line:       k.String(),
		})
	}

	err := s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&snap.SnapshotModel).Exec(ctx); err != nil {
			return MapDBError(err)
		}
		if len(snap.Keys) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&snap.Keys).Exec(ctx); err != nil {
			return MapDBError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return snap, nil
}

// List returns the snapshots of path, newest first, without their keys.
func (s *Store) List(ctx context.Context, path string) ([]SnapshotModel, error) {
	var rows []SnapshotModel
	err := s.bun.NewSelect().
		Model(&rows).
		Where("path = ?", path).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return rows, nil
}

// Get loads a snapshot and its keys. id may be any unique prefix of the
// snapshot ID.
func (s *Store) Get(ctx context.Context, id string) (*Snapshot, error) {
	if id == "" || strings.Trim(id, "0123456789abcdefABCDEF-") != "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	var rows []SnapshotModel
	err := s.bun.NewSelect().
		Model(&rows).
		Where("id LIKE ?", id+"%").
		Limit(2).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	switch len(rows) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}

	snap := &Snapshot{SnapshotModel: rows[0]}
	err = s.bun.NewSelect().
		Model(&snap.Keys).
		Where("snapshot_id = ?", snap.ID).
		Order("position ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load snapshot keys: %w", err)
	}
	return snap, nil
}

// Delete removes a snapshot and its keys.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*SnapshotKeyModel)(nil)).Where("snapshot_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*SnapshotModel)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil
	})
}
