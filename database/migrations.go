/*
 * Copyright 2025 tomoncle.
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

package database

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Migration is an applied migration record.
type Migration struct {
	bun.BaseModel `bun:"table:querydsl_migrations"`

	Version     string    `bun:"version,pk" json:"version"`
	Name        string    `bun:"name" json:"name"`
	AppliedAt   time.Time `bun:"applied_at" json:"appliedAt"`
	Description string    `bun:"description" json:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem is one versioned step.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
}

// MigrationManager creates registered model tables and their foreign keys,
// recording each applied step so reruns are no-ops.
type MigrationManager struct {
	db             *bun.DB
	logger         Logger
	foreignKeys    bool
	foreignKeyFile string
}

func NewMigrationManager(db *bun.DB, logger Logger) *MigrationManager {
	if logger == nil {
		logger = GetLogger()
	}
	return &MigrationManager{db: db, logger: logger}
}

// EnableForeignKeys toggles the foreign key step. A non-empty file replaces
// the registered constraints.
func (mm *MigrationManager) EnableForeignKeys(enabled bool, file string) {
	mm.foreignKeys = enabled
	mm.foreignKeyFile = file
}

func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, err := mm.db.NewCreateTable().Model((*Migration)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations := mm.migrations()
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	for _, m := range migrations {
		if err := mm.run(ctx, m); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", m.Version, err)
		}
	}
	mm.logger.Info("Database migrations completed")
	return nil
}

func (mm *MigrationManager) migrations() []MigrationItem {
	items := []MigrationItem{{
		Version:     "001",
		Name:        "create_base_tables",
		Description: "Create registered model tables",
		Up:          mm.createTables,
	}}
	// sqlite cannot add constraints to an existing table
	if mm.foreignKeys && mm.db.Dialect().Name() != dialect.SQLite {
		items = append(items, MigrationItem{
			Version:     "002",
			Name:        "add_foreign_keys",
			Description: "Add table foreign key constraints",
			Up:          mm.addForeignKeys,
		})
	}
	return items
}

func (mm *MigrationManager) run(ctx context.Context, m MigrationItem) error {
	applied, err := mm.db.NewSelect().Model((*Migration)(nil)).Where("version = ?", m.Version).Exists(ctx)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	err = mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := m.Up(ctx, tx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&Migration{
			Version:     m.Version,
			Name:        m.Name,
			AppliedAt:   time.Now(),
			Description: m.Description,
		}).Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}
	mm.logger.Info("Migration executed", "version", m.Version, "name", m.Name)
	return nil
}

func (mm *MigrationManager) createTables(ctx context.Context, db bun.IDB) error {
	for _, model := range RegisteredModelInstances() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table %s: %w", modelName(model), err)
		}
	}
	return nil
}

// addForeignKeys runs outside the migration transaction: a failed ALTER
// aborts the surrounding transaction on PostgreSQL.
func (mm *MigrationManager) addForeignKeys(ctx context.Context, _ bun.IDB) error {
	fkm := NewForeignKeyManager(mm.logger)
	if mm.foreignKeyFile != "" {
		fkm = NewForeignKeyManagerFromFile(mm.logger, mm.foreignKeyFile)
	}
	return fkm.AddAll(ctx, mm.db)
}

// AppliedMigrations returns migration records ordered by version.
func (mm *MigrationManager) AppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().Model(&migrations).Order("version ASC").Scan(ctx)
	return migrations, err
}

func modelName(model interface{}) string {
	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.PkgPath() + "." + t.Name()
}
