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
	"sync"

	"github.com/uptrace/bun"
)

var (
	globalMu      sync.RWMutex
	globalFactory *Factory
	globalDB      *bun.DB
)

// GetDB returns the process-wide bun handle set by InitDB or SetDB.
func GetDB() *bun.DB {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalFactory != nil {
		if db := globalFactory.GetDB(); db != nil {
			return db
		}
	}
	return globalDB
}

// SetDB installs an externally opened handle as the global one.
func SetDB(db *bun.DB) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalFactory = nil
	globalDB = db
}

func GetManager() Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalFactory != nil {
		return globalFactory.GetManager()
	}
	return nil
}

// InitDB connects the global database and migrates when configured to.
func InitDB(ctx context.Context, cfg *Config, hooks ...bun.QueryHook) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	f := NewFactory()
	m, err := f.CreateFromConfig(cfg, hooks...)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := f.Initialize(ctx, cfg.DataMigrateConfig.EnableMigrateOnStartup); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	db := m.GetDB()
	db.RegisterModel(RegisteredModelInstances()...)

	globalMu.Lock()
	globalFactory = f
	globalDB = db
	globalMu.Unlock()
	return db, nil
}

// CloseDB closes the global connection if one is open.
func CloseDB() error {
	globalMu.Lock()
	f := globalFactory
	globalFactory, globalDB = nil, nil
	globalMu.Unlock()
	if f != nil {
		return f.Close()
	}
	return nil
}

func GetHealthStatus(ctx context.Context) *HealthStatus {
	globalMu.RLock()
	f := globalFactory
	globalMu.RUnlock()
	if f != nil {
		return f.GetHealthStatus(ctx)
	}
	return &HealthStatus{LastError: "database not initialized"}
}

// RunMigrations migrates the global database.
func RunMigrations(ctx context.Context) error {
	m := GetManager()
	if m == nil {
		return fmt.Errorf("database not initialized")
	}
	return m.RunMigrations(ctx)
}
