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
	"errors"
	"fmt"
	"strings"

	"github.com/tomoncle/querydsl/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// ErrUnknownSortField is returned for an order on a field members cannot be
// sorted by.
var ErrUnknownSortField = errors.New("unknown sort field")

var sortableFields = map[string]Column{
	"id":         MemberID,
	"memberid":   MemberID,
	"username":   MemberUsername,
	"age":        MemberAge,
	"teamid":     MemberTeamID,
	"teamname":   TeamName,
	"m.id":       MemberID,
	"m.username": MemberUsername,
	"m.age":      MemberAge,
	"m.team_id":  MemberTeamID,
	"team.id":    TeamID,
	"team.name":  TeamName,
}

// ResolveOrder maps a user-facing field such as "username" or "teamName" to
// its qualified column. Unknown fields are rejected.
func ResolveOrder(o types.Order) (types.Order, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(o.Field), "_", ""))
	col, ok := sortableFields[key]
	if !ok {
		col, ok = sortableFields[strings.ToLower(strings.TrimSpace(o.Field))]
	}
	if !ok {
		return types.Order{}, fmt.Errorf("%w: %q", ErrUnknownSortField, o.Field)
	}
	o.Field = col.Path()
	return o, nil
}

func ResolveOrders(orders []types.Order) ([]types.Order, error) {
	out := make([]types.Order, len(orders))
	for i, o := range orders {
		r, err := ResolveOrder(o)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// nativeNullOrdering lists dialects that understand NULLS FIRST/LAST.
func nativeNullOrdering(name dialect.Name) bool {
	return name == dialect.PG || name == dialect.SQLite
}

// ApplyOrders appends ORDER BY terms. Explicit null placement is rendered
// natively where supported and otherwise as a leading CASE key, so NULLs
// land on the requested side in either direction.
func ApplyOrders(q *bun.SelectQuery, orders ...types.Order) *bun.SelectQuery {
	if len(orders) == 0 {
		return q
	}
	native := nativeNullOrdering(q.DB().Dialect().Name())
	for _, o := range orders {
		col := bun.Ident(o.Field)
		dir := o.Direction.Name()
		switch {
		case o.Nulls == types.NullsNative:
			q = q.OrderExpr("? "+dir, col)
		case native:
			q = q.OrderExpr("? "+dir+" "+o.Nulls.Name(), col)
		case o.Nulls == types.NullsLast:
			q = q.OrderExpr("CASE WHEN ? IS NULL THEN 1 ELSE 0 END ASC", col).OrderExpr("? "+dir, col)
		default:
			q = q.OrderExpr("CASE WHEN ? IS NULL THEN 0 ELSE 1 END ASC", col).OrderExpr("? "+dir, col)
		}
	}
	return q
}
