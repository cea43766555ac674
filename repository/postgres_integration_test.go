//go:build integration

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

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tomoncle/querydsl/database"
	"github.com/tomoncle/querydsl/database/dbtest"
	"github.com/tomoncle/querydsl/model"
	"github.com/tomoncle/querydsl/query"
	"github.com/tomoncle/querydsl/types"
	"github.com/uptrace/bun"
)

func openPostgres(t *testing.T, driver string) (*bun.DB, *database.QueryCounter) {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("querydsl"),
		postgres.WithUsername("querydsl"),
		postgres.WithPassword("querydsl"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := database.DefaultConfig()
	cfg.ConnectionConfig = database.ConnectionConfig{
		Type:     "postgres",
		Driver:   driver,
		Host:     host,
		Port:     port.Int(),
		Username: "querydsl",
		Password: "querydsl",
		DBName:   "querydsl",
	}
	counter := database.NewQueryCounter()
	f := database.NewFactory()
	_, err = f.CreateFromConfig(cfg, counter)
	require.NoError(t, err)
	require.NoError(t, f.Initialize(ctx, true))
	t.Cleanup(func() { _ = f.Close() })

	db := f.GetDB()
	db.RegisterModel(database.RegisteredModelInstances()...)
	return db, counter
}

func TestPostgres_SearchAndPaging(t *testing.T) {
	for _, driver := range []string{"pq", "pgx"} {
		t.Run(driver, func(t *testing.T) {
			db, counter := openPostgres(t, driver)
			r := dbtest.SeedRoster(t, db)
			dbtest.InsertMembers(t, db, model.NewMember("", 50, nil))
			repo := NewMemberRepository(db)
			ctx := context.Background()

			counter.Reset()
			page, err := repo.SearchPage(ctx, model.MemberSearchCondition{},
				types.NewOffsetPageRequest(0, 3, query.MemberUsername.Desc().NullsLast()))
			require.NoError(t, err)
			assert.Equal(t, []string{"member4", "member3", "member2"}, dtoNames(page.Content))
			assert.Equal(t, 5, page.Total)
			assert.Equal(t, 2, counter.Count("SELECT"))

			stats, err := repo.Stats(ctx, model.MemberSearchCondition{}.WithTeamName("teamB"))
			require.NoError(t, err)
			assert.Equal(t, model.AgeStats{Count: 2, Sum: 70, Avg: 35, Max: 40, Min: 30}, stats)

			n, err := repo.MoveToTeam(ctx, r.TeamA, query.MemberTeamID.IsNull())
			require.NoError(t, err)
			assert.EqualValues(t, 1, n)

			_, err = NewTeamRepository(db).BulkDelete(ctx, query.TeamName.Eq("teamA"))
			require.NoError(t, err)
			orphans, err := repo.Find(ctx, query.MemberTeamID.IsNull())
			require.NoError(t, err)
			assert.Len(t, orphans, 3, "team_id set to NULL on team delete")
		})
	}
}
