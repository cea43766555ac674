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
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/querydsl/database/dbtest"
	"github.com/tomoncle/querydsl/model"
	"github.com/tomoncle/querydsl/query"
	"github.com/tomoncle/querydsl/types"
	"github.com/uptrace/bun"
)

func dtoNames(rows []model.MemberTeamDto) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Username
	}
	return names
}

func TestSearchPage_SecondQueryOnlyForFullPage(t *testing.T) {
	db, counter := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	counter.Reset()
	page, err := repo.SearchPage(ctx, model.MemberSearchCondition{},
		types.NewOffsetPageRequest(0, 2, query.MemberAge.Desc()))
	require.NoError(t, err)
	assert.Equal(t, []string{"member4", "member3"}, dtoNames(page.Content))
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.TotalPages())
	assert.True(t, page.HasNext())
	assert.Equal(t, 2, counter.Count("SELECT"))

	counter.Reset()
	page, err = repo.SearchPage(ctx, model.MemberSearchCondition{},
		types.NewOffsetPageRequest(0, 10, query.MemberAge.Asc()))
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Len(t, page.Content, 4)
	assert.Equal(t, 1, counter.Count("SELECT"), "count skipped for a short first page")

	counter.Reset()
	page, err = repo.SearchPage(ctx, model.MemberSearchCondition{},
		types.NewOffsetPageRequest(3, 2, query.MemberAge.Asc()))
	require.NoError(t, err)
	assert.Equal(t, []string{"member4"}, dtoNames(page.Content))
	assert.Equal(t, 4, page.Total)
	assert.True(t, page.IsLast())
	assert.Equal(t, 1, counter.Count("SELECT"), "count skipped for a short last page")
}

func TestSearchPage_OffsetPastTheEnd(t *testing.T) {
	db, counter := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	repo := NewMemberRepository(db)

	counter.Reset()
	page, err := repo.SearchPage(context.Background(), model.MemberSearchCondition{},
		types.NewOffsetPageRequest(10, 2))
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, counter.Count("SELECT"))
}

func TestSearchPage_AppliesCondition(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	repo := NewMemberRepository(db)

	cond := model.MemberSearchCondition{}.WithTeamName("teamB").WithAgeGoe(35)
	page, err := repo.SearchPage(context.Background(), cond, types.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"member4"}, dtoNames(page.Content))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "teamB", page.Content[0].TeamName)
}

func TestSearchPage_OrdersByFieldName(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	page, err := repo.SearchPage(ctx, model.MemberSearchCondition{},
		types.NewOffsetPageRequest(0, 2, types.OrderAsc("id")))
	require.NoError(t, err)
	assert.Equal(t, []string{"member1", "member2"}, dtoNames(page.Content))
	assert.Equal(t, 4, page.Total)

	_, err = repo.SearchPage(ctx, model.MemberSearchCondition{},
		types.NewOffsetPageRequest(0, 2, types.OrderAsc("salary")))
	assert.ErrorIs(t, err, query.ErrUnknownSortField)
	_, err = repo.SearchPageSimple(ctx, model.MemberSearchCondition{},
		types.NewOffsetPageRequest(0, 2, types.OrderAsc("salary")))
	assert.ErrorIs(t, err, query.ErrUnknownSortField)
}

func TestSearchPage_NullUsernamesLast(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	dbtest.InsertMembers(t, db,
		model.NewMember("", 100, nil),
		model.NewMember("member5", 100, nil),
		model.NewMember("member6", 100, nil),
	)
	repo := NewMemberRepository(db)

	page, err := repo.SearchPage(context.Background(), model.MemberSearchCondition{}.WithAgeGoe(100),
		types.NewOffsetPageRequest(0, 10, query.MemberAge.Desc(), query.MemberUsername.Asc().NullsLast()))
	require.NoError(t, err)
	assert.Equal(t, []string{"member5", "member6", ""}, dtoNames(page.Content))
	assert.Equal(t, 3, page.Total)
	assert.False(t, page.Content[2].HasTeam())
}

func TestSearchPageSimple_CountsFirst(t *testing.T) {
	db, counter := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	counter.Reset()
	page, err := repo.SearchPageSimple(ctx, model.MemberSearchCondition{},
		types.NewOffsetPageRequest(0, 10, query.MemberAge.Asc()))
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Len(t, page.Content, 4)
	assert.Equal(t, 2, counter.Count("SELECT"))

	counter.Reset()
	page, err = repo.SearchPageSimple(ctx, model.MemberSearchCondition{},
		types.NewOffsetPageRequest(10, 2))
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 1, counter.Count("SELECT"), "content skipped past the end")
}

func TestSearch_ReturnsFlatRows(t *testing.T) {
	db, _ := dbtest.Open(t)
	r := dbtest.SeedRoster(t, db)
	repo := NewMemberRepository(db)

	rows, err := repo.Search(context.Background(), model.MemberSearchCondition{}.WithUsername("member2"))
	require.NoError(t, err)
	assert.Equal(t, []model.MemberTeamDto{
		model.NewMemberTeamDto(r.Members[1].ID, "member2", 20, r.TeamA.ID, "teamA"),
	}, rows)

	blank, err := repo.Search(context.Background(), model.MemberSearchCondition{}.WithUsername("  "))
	require.NoError(t, err)
	assert.Len(t, blank, 4)
}

func TestSearch_KeepsMemberWithoutTeam(t *testing.T) {
	db, _ := dbtest.Open(t)
	r := dbtest.SeedRoster(t, db)
	loner := model.NewMember("loner", 25, nil)
	dbtest.InsertMembers(t, db, loner)
	repo := NewMemberRepository(db)

	rows, err := repo.Search(context.Background(), model.MemberSearchCondition{}.WithAgeBetween(20, 30))
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.MemberTeamDto{
		model.NewMemberTeamDto(r.Members[1].ID, "member2", 20, r.TeamA.ID, "teamA"),
		model.NewMemberTeamDto(loner.ID, "loner", 25, 0, ""),
		model.NewMemberTeamDto(r.Members[2].ID, "member3", 30, r.TeamB.ID, "teamB"),
	}, rows)
}

func TestSearchMembers_LoadsTeam(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	repo := NewMemberRepository(db)

	members, err := repo.SearchMembers(context.Background(),
		model.MemberSearchCondition{}.WithAgeBetween(20, 30), query.MemberAge.Desc())
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "member3", members[0].Username)
	require.NotNil(t, members[0].Team)
	assert.Equal(t, "teamB", members[0].Team.Name)
	assert.Equal(t, "teamA", members[1].Team.Name)
}

func TestFindOneByUsername(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	m, err := repo.FindOneByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = repo.FindOneByUsername(ctx, "member3")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 30, m.Age)

	dbtest.InsertMembers(t, db, model.NewMember("member3", 33, nil))
	m, err = repo.FindOneByUsername(ctx, "member3")
	assert.ErrorIs(t, err, ErrNonUniqueResult)
	assert.Nil(t, m)

	all, err := repo.FindByUsername(ctx, "member3")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetOne_UsesIdentityMap(t *testing.T) {
	db, counter := dbtest.Open(t)
	r := dbtest.SeedRoster(t, db)
	cache := NewIdentityMap[int64, *model.Member](model.MemberTable)
	repo := NewRepository(db, WithIdentityMap(cache))
	ctx := context.Background()
	id := r.Members[0].ID

	counter.Reset()
	first, err := repo.GetOne(ctx, id)
	require.NoError(t, err)
	second, err := repo.GetOne(ctx, id)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, counter.Count("SELECT"))
	assert.Equal(t, 1, cache.Len())

	_, err = repo.GetOne(ctx, int64(999))
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetOne_IdentityMapNormalizesIntegerIDs(t *testing.T) {
	db, counter := dbtest.Open(t)
	r := dbtest.SeedRoster(t, db)
	cache := NewIdentityMap[int64, *model.Member](model.MemberTable)
	repo := NewRepository(db, WithIdentityMap(cache))
	ctx := context.Background()
	id := r.Members[0].ID

	counter.Reset()
	first, err := repo.GetOne(ctx, id)
	require.NoError(t, err)
	for _, key := range []any{int(id), int32(id), uint64(id)} {
		again, err := repo.GetOne(ctx, key)
		require.NoError(t, err)
		assert.Same(t, first, again, "%T", key)
	}
	assert.Equal(t, 1, counter.Count("SELECT"))
	assert.Equal(t, 1, cache.Len())

	require.NoError(t, repo.Delete(ctx, int(id)))
	assert.Zero(t, cache.Len())
}

func TestBulkUpdate_InvalidatesIdentityMap(t *testing.T) {
	db, counter := dbtest.Open(t)
	r := dbtest.SeedRoster(t, db)
	cache := NewIdentityMap[int64, *model.Member](model.MemberTable)
	repo := NewRepository(db, WithIdentityMap(cache))
	ctx := context.Background()
	id := r.Members[0].ID

	_, err := repo.GetOne(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	n, err := repo.BulkUpdate(ctx, []query.Assignment{query.Multiply(query.MemberAge, 100)}, query.MemberAge.Lt(25))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Zero(t, cache.Len())

	counter.Reset()
	m, err := repo.GetOne(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1000, m.Age)
	assert.Equal(t, 1, counter.Count("SELECT"))

	n, err = repo.BulkUpdate(ctx, []query.Assignment{query.Set(query.MemberUsername, "renamed")},
		query.MemberUsername.Eq("member3"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.BulkUpdate(ctx, nil)
	assert.Error(t, err)
}

func TestBulkDelete(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	n, err := repo.BulkDelete(ctx, query.MemberAge.Goe(30))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	rest, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	n, err = repo.BulkDelete(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

type invalidationLog []string

func (l *invalidationLog) Invalidate(_ context.Context, table string) { *l = append(*l, table) }

func TestBulk_CallsEveryInvalidator(t *testing.T) {
	db, _ := dbtest.Open(t)
	r := dbtest.SeedRoster(t, db)
	var log invalidationLog
	repo := NewMemberRepository(db, WithInvalidator[model.Member](&log))
	ctx := context.Background()

	n, err := repo.MoveToTeam(ctx, r.TeamB, query.MemberTeamID.Eq(r.TeamA.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	_, err = repo.BulkDelete(ctx, query.MemberAge.Eq(10))
	require.NoError(t, err)
	assert.Equal(t, invalidationLog{"members", "members"}, log)

	avgs, err := repo.TeamAverages(ctx)
	require.NoError(t, err)
	require.Len(t, avgs, 1)
	assert.Equal(t, "teamB", avgs[0].TeamName)
	assert.InDelta(t, 30.0, avgs[0].AvgAge, 0.001)
}

func TestStatsAndOldest(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	stats, err := repo.Stats(ctx, model.MemberSearchCondition{}.WithTeamName("teamA"))
	require.NoError(t, err)
	assert.Equal(t, model.AgeStats{Count: 2, Sum: 30, Avg: 15, Max: 20, Min: 10}, stats)

	oldest, err := repo.OldestMembers(ctx)
	require.NoError(t, err)
	require.Len(t, oldest, 1)
	assert.Equal(t, "member4", oldest[0].Username)
}

func TestMembersJoinedToTeam(t *testing.T) {
	db, _ := dbtest.Open(t)
	r := dbtest.SeedRoster(t, db)
	repo := NewMemberRepository(db)

	rows, err := repo.MembersJoinedToTeam(context.Background(), "teamA")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "teamA", rows[0].TeamName)
	assert.Equal(t, r.TeamA.ID, rows[1].TeamID)
	assert.False(t, rows[2].HasTeam())
	assert.Empty(t, rows[3].TeamName)
}

func TestUpsert_OverwritesFields(t *testing.T) {
	db, _ := dbtest.Open(t)
	r := dbtest.SeedRoster(t, db)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	changed := &model.Member{ID: r.Members[0].ID, Username: "member1", Age: 11, TeamID: r.TeamA.ID}
	fresh := &model.Member{ID: 100, Username: "member100", Age: 100}
	require.NoError(t, repo.Upsert(ctx, []string{"age"}, nil, changed, fresh))

	m, err := repo.FindOneByUsername(ctx, "member1")
	require.NoError(t, err)
	assert.Equal(t, 11, m.Age)
	m, err = repo.FindOneByUsername(ctx, "member100")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.False(t, m.HasTeam())

	assert.Error(t, repo.Upsert(ctx, nil, nil, changed))
}

func TestTeamRepository(t *testing.T) {
	db, _ := dbtest.Open(t)
	r := dbtest.SeedRoster(t, db)
	repo := NewTeamRepository(db)
	ctx := context.Background()

	team, err := repo.FindByName(ctx, "teamB")
	require.NoError(t, err)
	require.NotNil(t, team)
	assert.Equal(t, r.TeamB.ID, team.ID)

	missing, err := repo.FindByName(ctx, "teamC")
	require.NoError(t, err)
	assert.Nil(t, missing)

	teams, err := repo.WithMembers(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	require.Len(t, teams[1].Members, 2)
	assert.Equal(t, "member3", teams[1].Members[0].Username)

	page, err := repo.Page(ctx, types.NewOffsetPageRequest(0, 1, query.TeamName.Desc()))
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "teamB", page.Content[0].Name)
}

func TestWithTx_RollsBack(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	repo := NewMemberRepository(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := repo.WithTx(tx).BulkDelete(ctx); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSearchPage_ErrorsPropagate(t *testing.T) {
	boom := errors.New("connection reset")
	cols := []string{"member_id", "username", "age", "team_id", "team_name"}

	t.Run("lazy count failure", func(t *testing.T) {
		db, mock := dbtest.Mock(t)
		mock.ExpectQuery(`SELECT "m"\."id"`).WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), "member1", int64(10), int64(1), "teamA").
			AddRow(int64(2), "member2", int64(20), int64(1), "teamA"))
		mock.ExpectQuery(`count\(\*\)`).WillReturnError(boom)

		page, err := NewMemberRepository(db).SearchPage(context.Background(),
			model.MemberSearchCondition{}, types.NewOffsetPageRequest(0, 2))
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, page)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("content failure", func(t *testing.T) {
		db, mock := dbtest.Mock(t)
		mock.ExpectQuery(`SELECT`).WillReturnError(boom)

		_, err := NewMemberRepository(db).SearchPage(context.Background(),
			model.MemberSearchCondition{}, types.NewOffsetPageRequest(0, 2))
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("eager count failure", func(t *testing.T) {
		db, mock := dbtest.Mock(t)
		mock.ExpectQuery(`count\(\*\)`).WillReturnError(boom)

		_, err := NewMemberRepository(db).SearchPageSimple(context.Background(),
			model.MemberSearchCondition{}, types.NewOffsetPageRequest(0, 2))
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
