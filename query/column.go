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
	"github.com/tomoncle/querydsl/types"
	"github.com/uptrace/bun"
)

// Column is a table-alias qualified column.
type Column struct {
	table string
	name  string
}

func Col(table, name string) Column { return Column{table: table, name: name} }

var (
	MemberID       = Col("m", "id")
	MemberUsername = Col("m", "username")
	MemberAge      = Col("m", "age")
	MemberTeamID   = Col("m", "team_id")
	TeamID         = Col("team", "id")
	TeamName       = Col("team", "name")
)

// Path returns "alias.name", or the bare name for an unqualified column.
func (c Column) Path() string {
	if c.table == "" {
		return c.name
	}
	return c.table + "." + c.name
}

func (c Column) Name() string { return c.name }

func (c Column) Ident() bun.Ident { return bun.Ident(c.Path()) }

func (c Column) Eq(v interface{}) Predicate { return Expr("? = ?", c.Ident(), v) }

func (c Column) Ne(v interface{}) Predicate { return Expr("? <> ?", c.Ident(), v) }

func (c Column) Gt(v interface{}) Predicate { return Expr("? > ?", c.Ident(), v) }

func (c Column) Goe(v interface{}) Predicate { return Expr("? >= ?", c.Ident(), v) }

func (c Column) Lt(v interface{}) Predicate { return Expr("? < ?", c.Ident(), v) }

func (c Column) Loe(v interface{}) Predicate { return Expr("? <= ?", c.Ident(), v) }

func (c Column) Between(lo, hi interface{}) Predicate {
	return Expr("? BETWEEN ? AND ?", c.Ident(), lo, hi)
}

// In matches any of vals. An empty list matches nothing.
func (c Column) In(vals ...interface{}) Predicate {
	if len(vals) == 0 {
		return Expr("1 = 0")
	}
	return Expr("? IN (?)", c.Ident(), bun.In(vals))
}

func (c Column) Like(pattern string) Predicate { return Expr("? LIKE ?", c.Ident(), pattern) }

func (c Column) IsNull() Predicate { return Expr("? IS NULL", c.Ident()) }

func (c Column) IsNotNull() Predicate { return Expr("? IS NOT NULL", c.Ident()) }

// EqCol compares two columns, e.g. a join condition.
func (c Column) EqCol(other Column) Predicate { return Expr("? = ?", c.Ident(), other.Ident()) }

// EqExpr compares c to an expression such as Lower(c).
func (c Column) EqExpr(s Selectable) Predicate {
	sel := s.Selection()
	return Expr("? = "+sel.expr, append([]interface{}{c.Ident()}, sel.args...)...)
}

// InQuery matches the values selected by sq, which must select one column.
func (c Column) InQuery(sq *bun.SelectQuery) Predicate { return Expr("? IN (?)", c.Ident(), sq) }

func (c Column) Asc() types.Order { return types.OrderAsc(c.Path()) }

func (c Column) Desc() types.Order { return types.OrderDesc(c.Path()) }

func (c Column) Selection() Selection { return Selection{expr: "?", args: []interface{}{c.Ident()}} }

// Selectable is anything that renders as one select-list expression.
type Selectable interface {
	Selection() Selection
}

// Selection is one select-list expression.
type Selection struct {
	expr string
	args []interface{}
}

func (s Selection) Selection() Selection { return s }

func (s Selection) Expr() string { return s.expr }

func (s Selection) Args() []interface{} { return s.args }

// As renders s AS alias.
func As(s Selectable, alias string) Selection {
	sel := s.Selection()
	args := make([]interface{}, 0, len(sel.args)+1)
	args = append(args, sel.args...)
	args = append(args, bun.Ident(alias))
	return Selection{expr: sel.expr + " AS ?", args: args}
}

func CountAll() Selection { return Selection{expr: "count(*)"} }

func Sum(c Column) Selection { return Selection{expr: "coalesce(sum(?), 0)", args: []interface{}{c.Ident()}} }

func Avg(c Column) Selection { return Selection{expr: "avg(?)", args: []interface{}{c.Ident()}} }

func Max(c Column) Selection { return Selection{expr: "max(?)", args: []interface{}{c.Ident()}} }

func Min(c Column) Selection { return Selection{expr: "min(?)", args: []interface{}{c.Ident()}} }

// Assignment is one SET term of a bulk update.
type Assignment struct {
	expr string
	args []interface{}
}

// Set assigns a literal value. The target is written unqualified, as
// PostgreSQL requires in SET.
func Set(c Column, v interface{}) Assignment {
	return Assignment{expr: "? = ?", args: []interface{}{bun.Ident(c.Name()), v}}
}

// SetExpr assigns an expression, e.g. SetExpr(MemberAge, "? * ?", MemberAge.Ident(), 100).
func SetExpr(c Column, expr string, args ...interface{}) Assignment {
	all := append([]interface{}{bun.Ident(c.Name())}, args...)
	return Assignment{expr: "? = " + expr, args: all}
}

// Add is col = col + n.
func Add(c Column, n interface{}) Assignment { return SetExpr(c, "? + ?", c.Ident(), n) }

// Multiply is col = col * n.
func Multiply(c Column, n interface{}) Assignment { return SetExpr(c, "? * ?", c.Ident(), n) }

func (a Assignment) Expr() string { return a.expr }

func (a Assignment) Args() []interface{} { return a.args }
