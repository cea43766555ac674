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

// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/querydsl/database"
	"github.com/tomoncle/querydsl/model"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var seq atomic.Int64

// Open returns a migrated in-memory sqlite database private to t and a
// counter that sees only the statements issued after setup.
func Open(t testing.TB) (*bun.DB, *database.QueryCounter) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.RegisterModel(database.RegisteredModelInstances()...)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrationManager(db, nil).RunMigrations(context.Background()))

	counter := database.NewQueryCounter()
	db.AddQueryHook(counter)
	return db, counter
}

// Mock returns a PostgreSQL-dialect bun handle over sqlmock.
func Mock(t testing.TB) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqlDB, pgdialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

// Roster is the four-member fixture: member1..4 aged 10..40, the first two
// in teamA and the last two in teamB.
type Roster struct {
	TeamA, TeamB *model.Team
	Members      []*model.Member
}

// SeedRoster inserts the standard fixture.
func SeedRoster(t testing.TB, db bun.IDB) *Roster {
	t.Helper()
	ctx := context.Background()

	r := &Roster{TeamA: model.NewTeam("teamA"), TeamB: model.NewTeam("teamB")}
	InsertTeams(t, db, r.TeamA, r.TeamB)
	r.Members = []*model.Member{
		model.NewMember("member1", 10, r.TeamA),
		model.NewMember("member2", 20, r.TeamA),
		model.NewMember("member3", 30, r.TeamB),
		model.NewMember("member4", 40, r.TeamB),
	}
	_, err := db.NewInsert().Model(&r.Members).Exec(ctx)
	require.NoError(t, err)
	return r
}

func InsertTeams(t testing.TB, db bun.IDB, teams ...*model.Team) {
	t.Helper()
	for _, team := range teams {
		_, err := db.NewInsert().Model(team).Exec(context.Background())
		require.NoError(t, err)
	}
}

func InsertMembers(t testing.TB, db bun.IDB, members ...*model.Member) {
	t.Helper()
	for _, m := range members {
		if m.Team != nil {
			m.TeamID = m.Team.ID
		}
		_, err := db.NewInsert().Model(m).Exec(context.Background())
		require.NoError(t, err)
	}
}
