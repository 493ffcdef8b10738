// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for the Keywarden vault.
// This file contains the SQLite implementation of the vault store.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os/user"
	"strconv"
	"time"

	"github.com/keywarden/keywarden/internal/model"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ValueModel maps the vault_values table for Bun queries.
type ValueModel struct {
	bun.BaseModel `bun:"table:vault_values"`
	Name          string    `bun:"name,pk"`
	Nonce         []byte    `bun:"nonce"`
	Ciphertext    []byte    `bun:"ciphertext"`
	CreatedAt     time.Time `bun:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

// MetaModel maps the vault_meta table.
type MetaModel struct {
	bun.BaseModel `bun:"table:vault_meta"`
	Key           string `bun:"key,pk"`
	Value         string `bun:"value"`
}

// AuditLogModel maps the audit_log table.
type AuditLogModel struct {
	bun.BaseModel `bun:"table:audit_log"`
	ID            int    `bun:"id,pk,autoincrement"`
	Timestamp     string `bun:"timestamp"`
	Username      string `bun:"username"`
	Action        string `bun:"action"`
	Details       string `bun:"details"`
}

// SqliteStore is the SQLite implementation of the Store interface.
type SqliteStore struct {
	db  *sql.DB
	bun *bun.DB
}

// NewSqliteStore opens (or creates) the vault database and ensures the
// schema exists.
func NewSqliteStore(dsn string) (*SqliteStore, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open vault database: %w", err)
	}
	// SQLite handles one writer; a single connection also keeps
	// :memory: databases coherent across queries.
	sqldb.SetMaxOpenConns(1)

	bdb := bun.NewDB(sqldb, sqlitedialect.New())
	s := &SqliteStore{db: sqldb, bun: bdb}
	if err := s.createSchema(); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqliteStore) createSchema() error {
	ctx := context.Background()
	models := []interface{}{
		(*ValueModel)(nil),
		(*MetaModel)(nil),
		(*AuditLogModel)(nil),
	}
	for _, m := range models {
		if _, err := s.bun.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("could not create vault schema: %w", err)
		}
	}

	// Record the schema version on first creation.
	current, err := s.GetMeta(MetaSchemaVersion)
	if err != nil {
		return err
	}
	if current == "" {
		return s.SetMeta(MetaSchemaVersion, strconv.Itoa(SchemaVersion))
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

// PutValue inserts or replaces an encrypted value.
func (s *SqliteStore) PutValue(name string, nonce, ciphertext []byte) error {
	ctx := context.Background()
	now := time.Now().UTC()
	vm := ValueModel{
		Name:       name,
		Nonce:      nonce,
		Ciphertext: ciphertext,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := s.bun.NewInsert().Model(&vm).
		On("CONFLICT (name) DO UPDATE").
		Set("nonce = EXCLUDED.nonce").
		Set("ciphertext = EXCLUDED.ciphertext").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("could not store value %q: %w", name, err)
	}
	_ = s.LogAction("PUT_VALUE", fmt.Sprintf("name: %s", name))
	return nil
}

// GetValue retrieves a single encrypted value by name.
func (s *SqliteStore) GetValue(name string) (*model.Value, error) {
	ctx := context.Background()
	var vm ValueModel
	err := s.bun.NewSelect().Model(&vm).Where("name = ?", name).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrValueNotFound
		}
		return nil, err
	}
	v := valueModelToModel(vm)
	return &v, nil
}

// GetAllValues retrieves all encrypted values ordered by name.
func (s *SqliteStore) GetAllValues() ([]model.Value, error) {
	ctx := context.Background()
	var vms []ValueModel
	if err := s.bun.NewSelect().Model(&vms).Order("name ASC").Scan(ctx); err != nil {
		return nil, err
	}
	values := make([]model.Value, 0, len(vms))
	for _, vm := range vms {
		values = append(values, valueModelToModel(vm))
	}
	return values, nil
}

// DeleteValue removes an encrypted value by name.
func (s *SqliteStore) DeleteValue(name string) error {
	ctx := context.Background()
	res, err := s.bun.NewDelete().Model((*ValueModel)(nil)).Where("name = ?", name).Exec(ctx)
	if err != nil {
		return fmt.Errorf("could not delete value %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrValueNotFound
	}
	_ = s.LogAction("DELETE_VALUE", fmt.Sprintf("name: %s", name))
	return nil
}

// GetMeta returns the meta value for a key, or "" when the key is not
// set.
func (s *SqliteStore) GetMeta(key string) (string, error) {
	ctx := context.Background()
	var mm MetaModel
	err := s.bun.NewSelect().Model(&mm).Where("key = ?", key).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return mm.Value, nil
}

// SetMeta inserts or replaces a meta entry.
func (s *SqliteStore) SetMeta(key, value string) error {
	ctx := context.Background()
	mm := MetaModel{Key: key, Value: value}
	_, err := s.bun.NewInsert().Model(&mm).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("could not set meta %q: %w", key, err)
	}
	return nil
}

// LogAction appends an entry to the audit log. Details must never
// contain secret material; callers log value names and outcomes only.
func (s *SqliteStore) LogAction(action, details string) error {
	ctx := context.Background()
	username := "unknown"
	if u, err := user.Current(); err == nil && u.Username != "" {
		username = u.Username
	}
	entry := AuditLogModel{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Username:  username,
		Action:    action,
		Details:   details,
	}
	_, err := s.bun.NewInsert().Model(&entry).Exec(ctx)
	return err
}

// GetAllAuditLogEntries retrieves the audit log, newest first.
func (s *SqliteStore) GetAllAuditLogEntries() ([]model.AuditLogEntry, error) {
	ctx := context.Background()
	var ams []AuditLogModel
	if err := s.bun.NewSelect().Model(&ams).Order("id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	entries := make([]model.AuditLogEntry, 0, len(ams))
	for _, am := range ams {
		entries = append(entries, model.AuditLogEntry{
			ID:        am.ID,
			Timestamp: am.Timestamp,
			Username:  am.Username,
			Action:    am.Action,
			Details:   am.Details,
		})
	}
	return entries, nil
}

// ExportBackup assembles the full vault contents for a backup.
func (s *SqliteStore) ExportBackup() (*model.BackupData, error) {
	values, err := s.GetAllValues()
	if err != nil {
		return nil, err
	}
	entries, err := s.GetAllAuditLogEntries()
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	var mms []MetaModel
	if err := s.bun.NewSelect().Model(&mms).Order("key ASC").Scan(ctx); err != nil {
		return nil, err
	}
	meta := make([]model.MetaEntry, 0, len(mms))
	for _, mm := range mms {
		meta = append(meta, model.MetaEntry{Key: mm.Key, Value: mm.Value})
	}

	return &model.BackupData{
		SchemaVersion:   SchemaVersion,
		Meta:            meta,
		Values:          values,
		AuditLogEntries: entries,
	}, nil
}

// ImportBackup replaces the vault contents with the backup data inside
// a single transaction.
func (s *SqliteStore) ImportBackup(data *model.BackupData) error {
	if data == nil {
		return errors.New("backup data is nil")
	}
	if data.SchemaVersion > SchemaVersion {
		return fmt.Errorf("backup schema version %d is newer than supported version %d", data.SchemaVersion, SchemaVersion)
	}

	ctx := context.Background()
	tx, err := s.bun.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Bun requires a WHERE clause on deletes; raw statements wipe the
	// tables wholesale.
	for _, table := range []string{"vault_values", "vault_meta", "audit_log"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("could not clear table %s: %w", table, err)
		}
	}

	for _, m := range data.Meta {
		mm := MetaModel{Key: m.Key, Value: m.Value}
		if _, err := tx.NewInsert().Model(&mm).Exec(ctx); err != nil {
			return fmt.Errorf("could not restore meta %q: %w", m.Key, err)
		}
	}
	for _, v := range data.Values {
		vm := ValueModel{
			Name:       v.Name,
			Nonce:      v.Nonce,
			Ciphertext: v.Ciphertext,
			CreatedAt:  v.CreatedAt,
			UpdatedAt:  v.UpdatedAt,
		}
		if _, err := tx.NewInsert().Model(&vm).Exec(ctx); err != nil {
			return fmt.Errorf("could not restore value %q: %w", v.Name, err)
		}
	}
	for _, e := range data.AuditLogEntries {
		am := AuditLogModel{
			Timestamp: e.Timestamp,
			Username:  e.Username,
			Action:    e.Action,
			Details:   e.Details,
		}
		if _, err := tx.NewInsert().Model(&am).Exec(ctx); err != nil {
			return fmt.Errorf("could not restore audit entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	_ = s.LogAction("RESTORE_BACKUP", fmt.Sprintf("values: %d", len(data.Values)))
	return nil
}

func valueModelToModel(vm ValueModel) model.Value {
	return model.Value{
		Name:       vm.Name,
		Nonce:      vm.Nonce,
		Ciphertext: vm.Ciphertext,
		CreatedAt:  vm.CreatedAt,
		UpdatedAt:  vm.UpdatedAt,
	}
}
