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
	"strings"

	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/schema"
)

// Constant selects v as a literal in every row.
func Constant(v interface{}) Selection {
	return Selection{expr: "?", args: []interface{}{v}}
}

// Func renders name(args...). Selectable arguments are inlined as
// expressions and anything else is bound as a value.
func Func(name string, args ...interface{}) Selection {
	parts := make([]string, len(args))
	var bound []interface{}
	for i, a := range args {
		if s, ok := a.(Selectable); ok {
			sel := s.Selection()
			parts[i] = sel.expr
			bound = append(bound, sel.args...)
			continue
		}
		parts[i] = "?"
		bound = append(bound, a)
	}
	return Selection{expr: name + "(" + strings.Join(parts, ", ") + ")", args: bound}
}

func Lower(s Selectable) Selection { return Func("lower", s) }

func Upper(s Selectable) Selection { return Func("upper", s) }

// Replace substitutes every from in s with to.
func Replace(s Selectable, from, to string) Selection { return Func("replace", s, from, to) }

// Concat joins parts as text. Numeric parts are converted by the database.
func Concat(parts ...Selectable) Selection {
	sels := make(concatExpr, len(parts))
	for i, p := range parts {
		sels[i] = p.Selection()
	}
	return Selection{expr: "?", args: []interface{}{sels}}
}

type concatExpr []Selection

var _ schema.QueryAppender = concatExpr(nil)

// AppendQuery renders CONCAT(...) for MySQL, where || is a logical OR, and
// the standard || operator elsewhere.
func (c concatExpr) AppendQuery(fmter schema.Formatter, b []byte) ([]byte, error) {
	sep := " || "
	if fmter.Dialect().Name() == dialect.MySQL {
		sep = ", "
		b = append(b, "CONCAT"...)
	}
	b = append(b, '(')
	for i, s := range c {
		if i > 0 {
			b = append(b, sep...)
		}
		b = fmter.AppendQuery(b, s.expr, s.args...)
	}
	return append(b, ')'), nil
}

// caseExpr accumulates WHEN ... THEN ... arms.
type caseExpr struct {
	expr string
	args []interface{}
}

func (c caseExpr) arm(when string, whenArgs []interface{}, then interface{}) caseExpr {
	args := make([]interface{}, 0, len(c.args)+len(whenArgs)+1)
	args = append(args, c.args...)
	args = append(args, whenArgs...)
	args = append(args, then)
	return caseExpr{expr: c.expr + " WHEN " + when + " THEN ?", args: args}
}

func (c caseExpr) end(otherwise []interface{}) Selection {
	if len(otherwise) == 0 {
		return Selection{expr: c.expr + " END", args: c.args}
	}
	args := append(append([]interface{}(nil), c.args...), otherwise[0])
	return Selection{expr: c.expr + " ELSE ? END", args: args}
}

// SimpleCase compares one expression against values:
// CASE x WHEN v1 THEN r1 ... ELSE r END.
type SimpleCase struct{ c caseExpr }

func CaseOf(s Selectable) SimpleCase {
	sel := s.Selection()
	return SimpleCase{caseExpr{expr: "CASE " + sel.expr, args: sel.args}}
}

func (s SimpleCase) When(value, then interface{}) SimpleCase {
	return SimpleCase{s.c.arm("?", []interface{}{value}, then)}
}

// Else closes the expression with a default result.
func (s SimpleCase) Else(v interface{}) Selection { return s.c.end([]interface{}{v}) }

// Selection closes the expression without a default, so unmatched rows are NULL.
func (s SimpleCase) Selection() Selection { return s.c.end(nil) }

// SearchedCase picks the result of the first matching predicate:
// CASE WHEN p1 THEN r1 ... ELSE r END.
type SearchedCase struct{ c caseExpr }

func Case() SearchedCase { return SearchedCase{caseExpr{expr: "CASE"}} }

// When adds an arm. An absent predicate adds nothing.
func (s SearchedCase) When(p Predicate, then interface{}) SearchedCase {
	if !p.IsPresent() {
		return s
	}
	return SearchedCase{s.c.arm(p.query, p.args, then)}
}

func (s SearchedCase) Else(v interface{}) Selection { return s.c.end([]interface{}{v}) }

func (s SearchedCase) Selection() Selection { return s.c.end(nil) }
