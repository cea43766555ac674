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
	"os"
	"strings"
	"sync"

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"
)

var validReferentialActions = []string{"CASCADE", "RESTRICT", "SET NULL", "SET DEFAULT", "NO ACTION"}

var (
	foreignKeysMu sync.RWMutex
	foreignKeys   []ForeignKeyConstraint
)

// ForeignKeyConstraint describes a foreign key relationship between tables.
type ForeignKeyConstraint struct {
	Table           string `yaml:"table"`
	Column          string `yaml:"column"`
	ReferenceTable  string `yaml:"reference_table"`
	ReferenceColumn string `yaml:"reference_column"`
	OnDelete        string `yaml:"on_delete"`
	OnUpdate        string `yaml:"on_update"`
	ConstraintName  string `yaml:"constraint_name"`
}

// ForeignKeyConfig is the YAML document listing foreign keys.
type ForeignKeyConfig struct {
	ForeignKeys []ForeignKeyConstraint `yaml:"foreign_keys"`
}

// RegisterForeignKey declares a constraint added by the foreign key migration.
func RegisterForeignKey(fk ForeignKeyConstraint) {
	foreignKeysMu.Lock()
	defer foreignKeysMu.Unlock()
	for i, existing := range foreignKeys {
		if existing.Name() == fk.Name() {
			foreignKeys[i] = fk
			return
		}
	}
	foreignKeys = append(foreignKeys, fk)
}

func registeredForeignKeys() []ForeignKeyConstraint {
	foreignKeysMu.RLock()
	defer foreignKeysMu.RUnlock()
	out := make([]ForeignKeyConstraint, len(foreignKeys))
	copy(out, foreignKeys)
	return out
}

// Name returns the explicit constraint name or fk_<table>_<column>.
func (fk ForeignKeyConstraint) Name() string {
	if fk.ConstraintName != "" {
		return fk.ConstraintName
	}
	return fmt.Sprintf("fk_%s_%s", fk.Table, fk.Column)
}

// Statement builds the ALTER TABLE statement through db's formatter.
func (fk ForeignKeyConstraint) Statement(db bun.IDB) *bun.RawQuery {
	q := "ALTER TABLE ? ADD CONSTRAINT ? FOREIGN KEY (?) REFERENCES ? (?)"
	if fk.OnDelete != "" {
		q += " ON DELETE " + strings.ToUpper(fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		q += " ON UPDATE " + strings.ToUpper(fk.OnUpdate)
	}
	return db.NewRaw(q,
		bun.Ident(fk.Table), bun.Ident(fk.Name()), bun.Ident(fk.Column),
		bun.Ident(fk.ReferenceTable), bun.Ident(fk.ReferenceColumn))
}

func (fk ForeignKeyConstraint) validate() []error {
	var errs []error
	if fk.Table == "" {
		errs = append(errs, fmt.Errorf("table name cannot be empty"))
	}
	if fk.Column == "" {
		errs = append(errs, fmt.Errorf("column name cannot be empty: %s", fk.Table))
	}
	if fk.ReferenceTable == "" {
		errs = append(errs, fmt.Errorf("reference table name cannot be empty: %s.%s", fk.Table, fk.Column))
	}
	if fk.ReferenceColumn == "" {
		errs = append(errs, fmt.Errorf("reference column name cannot be empty: %s.%s -> %s", fk.Table, fk.Column, fk.ReferenceTable))
	}
	for _, action := range []string{fk.OnDelete, fk.OnUpdate} {
		if action != "" && !isReferentialAction(action) {
			errs = append(errs, fmt.Errorf("invalid referential action: %s, constraint: %s", action, fk.Name()))
		}
	}
	return errs
}

func isReferentialAction(s string) bool {
	for _, a := range validReferentialActions {
		if strings.EqualFold(s, a) {
			return true
		}
	}
	return false
}

// ForeignKeyManager adds foreign key constraints after tables exist.
type ForeignKeyManager struct {
	constraints []ForeignKeyConstraint
	logger      Logger
}

// NewForeignKeyManager uses the constraints declared with RegisterForeignKey.
func NewForeignKeyManager(logger Logger) *ForeignKeyManager {
	return &ForeignKeyManager{constraints: registeredForeignKeys(), logger: logger}
}

// NewForeignKeyManagerFromFile reads constraints from a YAML file. A missing
// or unreadable file falls back to the registered constraints.
func NewForeignKeyManagerFromFile(logger Logger, path string) *ForeignKeyManager {
	constraints, err := LoadForeignKeyConfig(path)
	if err != nil {
		if logger != nil {
			logger.Debug("Using registered foreign keys", "config_path", path, "error", err.Error())
		}
		return NewForeignKeyManager(logger)
	}
	return &ForeignKeyManager{constraints: constraints, logger: logger}
}

func LoadForeignKeyConfig(path string) ([]ForeignKeyConstraint, error) {
	if path == "" {
		return nil, fmt.Errorf("foreign key config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg ForeignKeyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg.ForeignKeys, nil
}

// Validate checks every constraint and returns all problems found.
func (fkm *ForeignKeyManager) Validate() []error {
	var errs []error
	for _, c := range fkm.constraints {
		errs = append(errs, c.validate()...)
	}
	return errs
}

// AddAll adds every constraint. Failures are logged and skipped so an
// already present constraint does not block the rest.
func (fkm *ForeignKeyManager) AddAll(ctx context.Context, db bun.IDB) error {
	if errs := fkm.Validate(); len(errs) > 0 {
		for _, err := range errs {
			fkm.debug("Foreign key constraint validation failed", "error", err.Error())
		}
		return fmt.Errorf("foreign key constraint validation failed, %d errors in total", len(errs))
	}
	for _, c := range fkm.constraints {
		if _, err := c.Statement(db).Exec(ctx); err != nil {
			fkm.debug("Failed to add foreign key constraint", "constraint", c.Name(), "error", err.Error())
			continue
		}
		fkm.debug("Added foreign key constraint", "constraint", c.Name())
	}
	return nil
}

func (fkm *ForeignKeyManager) Constraints() []ForeignKeyConstraint {
	return fkm.constraints
}

func (fkm *ForeignKeyManager) debug(msg string, fields ...interface{}) {
	if fkm.logger != nil {
		fkm.logger.Debug(msg, fields...)
	}
}
