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

	"github.com/tomoncle/querydsl/model"
	"github.com/uptrace/bun"
)

const subqueryAlias = "ms"

// SubqueryAge is the age column of the members subquery alias.
var SubqueryAge = Col(subqueryAlias, "age")

// ageSubquery selects agg(age) over every member under its own alias.
func ageSubquery(db bun.IDB, agg func(Column) Selection) *bun.SelectQuery {
	s := agg(SubqueryAge)
	return db.NewSelect().
		TableExpr("? AS ?", bun.Ident(model.MemberTable), bun.Ident(subqueryAlias)).
		ColumnExpr(s.expr, s.args...)
}

// AgeSubquery selects the age of every member matching preds, which are
// written against SubqueryAge.
func AgeSubquery(db bun.IDB, preds ...Predicate) *bun.SelectQuery {
	sq := db.NewSelect().
		TableExpr("? AS ?", bun.Ident(model.MemberTable), bun.Ident(subqueryAlias)).
		ColumnExpr("?", SubqueryAge.Ident())
	return Apply(sq, preds...)
}

// Subquery selects the single value sq returns, e.g. AverageAge.
func Subquery(sq *bun.SelectQuery) Selection {
	return Selection{expr: "(?)", args: []interface{}{sq}}
}

// AverageAge selects the average age over all members next to each row.
func AverageAge(db bun.IDB) Selection { return Subquery(ageSubquery(db, Avg)) }

// OldestMembers returns the members whose age equals the maximum age.
func OldestMembers(ctx context.Context, db bun.IDB) ([]*model.Member, error) {
	return NewMemberTeamQuery(db, Expr("? = (?)", MemberAge.Ident(), ageSubquery(db, Max))).
		OrderBy(MemberID.Asc()).
		Entities(ctx)
}

// MembersAtLeastAverageAge returns the members at or above the average age.
func MembersAtLeastAverageAge(ctx context.Context, db bun.IDB) ([]*model.Member, error) {
	return NewMemberTeamQuery(db, Expr("? >= (?)", MemberAge.Ident(), ageSubquery(db, Avg))).
		OrderBy(MemberID.Asc()).
		Entities(ctx)
}

var teamAverageProjection = Fields[model.TeamAgeAverage](
	As(TeamName, "team_name"),
	As(Avg(MemberAge), "avg_age"),
)

// TeamAverages groups members by team name and returns the average age per
// team, ordered by name. Members without a team are not grouped. Non-empty
// names keep only those teams.
func TeamAverages(ctx context.Context, db bun.IDB, names ...string) ([]model.TeamAgeAverage, error) {
	sq := teamAverageProjection.Select(NewMemberTeamQuery(db, TeamID.IsNotNull()).base()).
		GroupExpr("?", TeamName.Ident()).
		OrderExpr("? ASC", TeamName.Ident())
	if len(names) > 0 {
		sq = sq.Having("? IN (?)", TeamName.Ident(), bun.In(names))
	}
	return teamAverageProjection.Fetch(ctx, sq)
}
