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

package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/querydsl/database/dbtest"
	"github.com/tomoncle/querydsl/model"
	"github.com/tomoncle/querydsl/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func usernames(members []*model.Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Username
	}
	return out
}

func TestSearch_NoConditionHasNoWhere(t *testing.T) {
	db, _ := dbtest.Open(t)

	sql := Search(db, model.MemberSearchCondition{}).SelectQuery(MemberID).String()
	assert.Contains(t, sql, `LEFT JOIN "teams" AS "team" ON "team"."id" = "m"."team_id"`)
	assert.NotContains(t, sql, "WHERE")
	assert.NotContains(t, sql, "ORDER BY")
}

func TestSearch_FiltersByTeamAndAge(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	ctx := context.Background()

	members, err := Search(db, model.MemberSearchCondition{TeamName: "teamB"}.WithAgeGoe(35)).Entities(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "member4", members[0].Username)
	require.NotNil(t, members[0].Team)
	assert.Equal(t, "teamB", members[0].Team.Name)

	members, err = Search(db, model.MemberSearchCondition{Username: "member2"}).Entities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"member2"}, usernames(members))
}

func TestSearch_KeepsMemberWithoutTeam(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	dbtest.InsertMembers(t, db, model.NewMember("loner", 25, nil))
	ctx := context.Background()

	q := Search(db, model.MemberSearchCondition{}.WithAgeBetween(20, 30)).OrderBy(MemberAge.Asc())
	members, err := q.Entities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"member2", "loner", "member3"}, usernames(members))
	assert.Nil(t, members[1].Team)

	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSearch_InvertedRangeIsEmpty(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)

	members, err := Search(db, model.MemberSearchCondition{}.WithAgeBetween(40, 10)).Entities(context.Background())
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestOrder_NullsLast(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.InsertMembers(t, db,
		model.NewMember("", 100, nil),
		model.NewMember("member5", 100, nil),
		model.NewMember("member6", 100, nil),
	)
	ctx := context.Background()

	q := NewMemberTeamQuery(db, MemberAge.Eq(100)).
		OrderBy(MemberAge.Desc(), MemberUsername.Asc().NullsLast())
	members, err := q.Entities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"member5", "member6", ""}, usernames(members))

	desc, err := NewMemberTeamQuery(db).OrderBy(MemberUsername.Desc().NullsLast()).Entities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"member6", "member5", ""}, usernames(desc))

	first, err := NewMemberTeamQuery(db).OrderBy(MemberUsername.Asc().NullsFirst()).Entities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "member5", "member6"}, usernames(first))
}

func TestOrderBy_ResolvesFieldNames(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	ctx := context.Background()

	q := NewMemberTeamQuery(db).OrderBy(types.OrderDesc("id"), types.OrderAsc("teamName"))
	require.NoError(t, q.Err())
	assert.Equal(t, []types.Order{types.OrderDesc("m.id"), types.OrderAsc("team.name")}, q.Orders())
	assert.Contains(t, q.SelectQuery(MemberID).String(), `ORDER BY "m"."id" DESC, "team"."name" ASC`)

	members, err := q.Entities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"member4", "member3", "member2", "member1"}, usernames(members))
}

func TestOrderBy_UnknownFieldFailsEveryQuery(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	ctx := context.Background()

	q := NewMemberTeamQuery(db).OrderBy(types.OrderAsc("salary")).OrderBy(MemberID.Asc())
	assert.ErrorIs(t, q.Err(), ErrUnknownSortField)
	assert.ErrorContains(t, q.Err(), `"salary"`)

	_, err := q.Entities(ctx)
	assert.ErrorIs(t, err, ErrUnknownSortField)
	_, err = q.Count(ctx)
	assert.ErrorIs(t, err, ErrUnknownSortField)
	_, err = q.Aggregate(ctx)
	assert.ErrorIs(t, err, ErrUnknownSortField)
}

func TestApplyOrders_Dialects(t *testing.T) {
	order := []types.Order{MemberAge.Desc(), MemberUsername.Asc().NullsLast()}

	pgDB, _ := dbtest.Mock(t)
	pg := pgDB.NewSelect().Model((*model.Member)(nil))
	assert.Contains(t, ApplyOrders(pg, order...).String(),
		`ORDER BY "m"."age" DESC, "m"."username" ASC NULLS LAST`)

	mysqlDB := bun.NewDB(pgDB.DB, mysqldialect.New())
	my := mysqlDB.NewSelect().Model((*model.Member)(nil))
	assert.Contains(t, ApplyOrders(my, order...).String(),
		"ORDER BY `m`.`age` DESC, CASE WHEN `m`.`username` IS NULL THEN 1 ELSE 0 END ASC, `m`.`username` ASC")

	first := ApplyOrders(mysqlDB.NewSelect().Model((*model.Member)(nil)), MemberUsername.Desc().NullsFirst())
	assert.Contains(t, first.String(),
		"ORDER BY CASE WHEN `m`.`username` IS NULL THEN 0 ELSE 1 END ASC, `m`.`username` DESC")

	none := ApplyOrders(bun.NewDB(pgDB.DB, pgdialect.New()).NewSelect().Model((*model.Member)(nil)))
	assert.NotContains(t, none.String(), "ORDER BY")
}

func TestCountQuery_DropsOrderAndWindow(t *testing.T) {
	db, _ := dbtest.Open(t)

	q := Search(db, model.MemberSearchCondition{TeamName: "teamA"}).
		OrderBy(MemberUsername.Desc()).
		Window(20, 10)
	content := q.SelectQuery(MemberID).String()
	assert.Contains(t, content, "ORDER BY")
	assert.Contains(t, content, "LIMIT 10")
	assert.Contains(t, content, "OFFSET 20")

	count := q.CountQuery().String()
	assert.Contains(t, count, `LEFT JOIN "teams" AS "team"`)
	assert.Contains(t, count, `WHERE ("team"."name" = 'teamA')`)
	assert.NotContains(t, count, "ORDER BY")
	assert.NotContains(t, count, "LIMIT")
}

func TestMemberTeamQuery_ModifiersCopy(t *testing.T) {
	db, _ := dbtest.Open(t)

	base := NewMemberTeamQuery(db, MemberAge.Goe(10))
	narrowed := base.Where(MemberAge.Loe(20)).OrderBy(MemberID.Asc())
	assert.Len(t, base.Predicates(), 1)
	assert.Empty(t, base.Orders())
	assert.Len(t, narrowed.Predicates(), 2)
	assert.Len(t, narrowed.Orders(), 1)
}

func TestAggregate(t *testing.T) {
	db, _ := dbtest.Open(t)
	team := model.NewTeam("teamA")
	dbtest.InsertTeams(t, db, team)
	for _, name := range []string{"member1", "member2", "member3", "member4"} {
		dbtest.InsertMembers(t, db, model.NewMember(name, 10, team))
	}

	stats, err := NewMemberTeamQuery(db).Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.AgeStats{Count: 4, Sum: 40, Avg: 10, Max: 10, Min: 10}, stats)

	empty, err := NewMemberTeamQuery(db, MemberAge.Gt(100)).Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.AgeStats{}, empty)
}

func TestJoinOn_KeepsAllMembers(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)

	rows, err := Project(context.Background(),
		NewMemberTeamQuery(db).JoinOn(TeamName.Eq("teamA")).OrderBy(MemberID.Asc()),
		Constructor2(func(username, teamName string) [2]string { return [2]string{username, teamName} }, MemberUsername, TeamName),
	)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{
		{"member1", "teamA"},
		{"member2", "teamA"},
		{"member3", ""},
		{"member4", ""},
	}, rows)
}

func TestSubqueries(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	ctx := context.Background()

	oldest, err := OldestMembers(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"member4"}, usernames(oldest))

	older, err := MembersAtLeastAverageAge(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"member3", "member4"}, usernames(older))
}

func TestTeamAverages(t *testing.T) {
	db, _ := dbtest.Open(t)
	dbtest.SeedRoster(t, db)
	dbtest.InsertMembers(t, db, model.NewMember("loner", 99, nil))
	ctx := context.Background()

	all, err := TeamAverages(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []model.TeamAgeAverage{
		{TeamName: "teamA", AvgAge: 15},
		{TeamName: "teamB", AvgAge: 35},
	}, all)

	onlyB, err := TeamAverages(ctx, db, "teamB")
	require.NoError(t, err)
	assert.Equal(t, []model.TeamAgeAverage{{TeamName: "teamB", AvgAge: 35}}, onlyB)
}
