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
	"github.com/tomoncle/querydsl/types"
	"github.com/uptrace/bun"
)

// MemberTeamQuery describes a filtered, ordered read of members left-joined
// to their team. It is immutable: every modifier returns a copy, and every
// bun query it produces is new.
type MemberTeamQuery struct {
	db         bun.IDB
	predicates []Predicate
	joinKey    Predicate
	joinOn     Predicate
	orders     []types.Order
	offset     int
	limit      int
	err        error
}

func NewMemberTeamQuery(db bun.IDB, preds ...Predicate) *MemberTeamQuery {
	return &MemberTeamQuery{db: db, predicates: Present(preds...)}
}

// Search builds the query for a search condition.
func Search(db bun.IDB, cond model.MemberSearchCondition) *MemberTeamQuery {
	return NewMemberTeamQuery(db, MemberSearchPredicates(cond)...)
}

func (q *MemberTeamQuery) clone() *MemberTeamQuery {
	c := *q
	c.predicates = append([]Predicate(nil), q.predicates...)
	c.orders = append([]types.Order(nil), q.orders...)
	return &c
}

func (q *MemberTeamQuery) Where(preds ...Predicate) *MemberTeamQuery {
	c := q.clone()
	c.predicates = append(c.predicates, Present(preds...)...)
	return c
}

// JoinOn adds p to the ON clause of the team join, so members whose team
// fails p are kept with an empty team. It applies to projections and counts.
func (q *MemberTeamQuery) JoinOn(p Predicate) *MemberTeamQuery {
	c := q.clone()
	c.joinOn = And(c.joinOn, p)
	return c
}

// JoinUnrelated pairs members with teams through on instead of the team_id
// foreign key, e.g. MemberUsername.EqCol(TeamName). Members without a match
// are kept with an empty team. It applies to projections and counts.
func (q *MemberTeamQuery) JoinUnrelated(on Predicate) *MemberTeamQuery {
	c := q.clone()
	c.joinKey = on
	return c
}

// OrderBy appends orders after resolving their fields to qualified
// columns. An unknown field is reported by every query built afterwards.
func (q *MemberTeamQuery) OrderBy(orders ...types.Order) *MemberTeamQuery {
	c := q.clone()
	resolved, err := ResolveOrders(orders)
	if err != nil {
		if c.err == nil {
			c.err = err
		}
		return c
	}
	c.orders = append(c.orders, resolved...)
	return c
}

// Window limits the content to limit rows starting at offset. A limit of 0
// means unbounded.
func (q *MemberTeamQuery) Window(offset, limit int) *MemberTeamQuery {
	c := q.clone()
	c.offset, c.limit = offset, limit
	return c
}

// Page applies the window and ordering of req.
func (q *MemberTeamQuery) Page(req *types.PageRequest) *MemberTeamQuery {
	return q.OrderBy(req.GetOrders()...).Window(req.GetOffset(), req.GetPageSize())
}

func (q *MemberTeamQuery) Predicates() []Predicate {
	return append([]Predicate(nil), q.predicates...)
}

func (q *MemberTeamQuery) Orders() []types.Order {
	return append([]types.Order(nil), q.orders...)
}

func (q *MemberTeamQuery) DB() bun.IDB { return q.db }

// Err returns the first error recorded while building q.
func (q *MemberTeamQuery) Err() error { return q.err }

func (q *MemberTeamQuery) withErr(sq *bun.SelectQuery) *bun.SelectQuery {
	if q.err != nil {
		return sq.Err(q.err)
	}
	return sq
}

func (q *MemberTeamQuery) joinTeam(sq *bun.SelectQuery) *bun.SelectQuery {
	key := q.joinKey
	if !key.IsPresent() {
		key = TeamID.EqCol(MemberTeamID)
	}
	on := And(key, q.joinOn)
	args := append([]interface{}{bun.Ident(model.TeamTable), bun.Ident(TeamID.table)}, on.args...)
	return sq.Join("LEFT JOIN ? AS ? ON "+on.query, args...)
}

// base is the filtered join without select list, ordering or window.
func (q *MemberTeamQuery) base() *bun.SelectQuery {
	sq := q.withErr(q.db.NewSelect().Model((*model.Member)(nil)))
	return Apply(q.joinTeam(sq), q.predicates...)
}

func (q *MemberTeamQuery) window(sq *bun.SelectQuery) *bun.SelectQuery {
	sq = ApplyOrders(sq, q.orders...)
	if q.offset > 0 {
		sq = sq.Offset(q.offset)
	}
	if q.limit > 0 {
		sq = sq.Limit(q.limit)
	}
	return sq
}

// SelectQuery selects cols over the filtered join with ordering and window.
func (q *MemberTeamQuery) SelectQuery(cols ...Selectable) *bun.SelectQuery {
	return q.window(selectColumns(q.base(), cols...))
}

func selectColumns(sq *bun.SelectQuery, cols ...Selectable) *bun.SelectQuery {
	for _, c := range cols {
		s := c.Selection()
		sq = sq.ColumnExpr(s.expr, s.args...)
	}
	return sq
}

// EntityQuery selects full members into dest with Team loaded through the
// relation's LEFT JOIN.
func (q *MemberTeamQuery) EntityQuery(dest *[]*model.Member) *bun.SelectQuery {
	sq := q.withErr(q.db.NewSelect().Model(dest).Relation("Team"))
	return q.window(Apply(sq, q.predicates...))
}

// CountQuery counts the filtered join. Ordering and window are left out.
func (q *MemberTeamQuery) CountQuery() *bun.SelectQuery {
	return q.base()
}

func (q *MemberTeamQuery) Entities(ctx context.Context) ([]*model.Member, error) {
	members := make([]*model.Member, 0)
	if err := q.EntityQuery(&members).Scan(ctx); err != nil {
		return nil, err
	}
	return members, nil
}

func (q *MemberTeamQuery) Count(ctx context.Context) (int, error) {
	return q.CountQuery().Count(ctx)
}

// Aggregate computes count, sum, avg, max and min of age over the filter.
func (q *MemberTeamQuery) Aggregate(ctx context.Context) (model.AgeStats, error) {
	var stats model.AgeStats
	sq := selectColumns(q.base(),
		As(CountAll(), "count"),
		As(Sum(MemberAge), "sum"),
		As(Avg(MemberAge), "avg"),
		As(Max(MemberAge), "max"),
		As(Min(MemberAge), "min"),
	)
	if err := sq.Scan(ctx, &stats); err != nil {
		return model.AgeStats{}, err
	}
	return stats, nil
}

// ThetaJoin returns members paired with any team satisfying on, through a
// cross join filtered in WHERE. A member matching several teams is returned
// once per team.
func ThetaJoin(ctx context.Context, db bun.IDB, on Predicate, orders ...types.Order) ([]*model.Member, error) {
	resolved, err := ResolveOrders(orders)
	if err != nil {
		return nil, err
	}
	members := make([]*model.Member, 0)
	sq := db.NewSelect().
		Model(&members).
		TableExpr("? AS ?", bun.Ident(model.TeamTable), bun.Ident(TeamID.table))
	if err := ApplyOrders(Apply(sq, on), resolved...).Scan(ctx); err != nil {
		return nil, err
	}
	return members, nil
}
