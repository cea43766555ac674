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

// Package query composes optional member filters, orderings and projections
// into bun select queries over members left-joined to teams.
package query

import (
	"strings"
)

// Predicate is a boolean SQL fragment with positional "?" arguments. The
// zero value is the absent predicate: it is dropped by And, Or and Apply and
// never reaches a WHERE clause.
type Predicate struct {
	query string
	args  []interface{}
}

// Expr builds a predicate from a raw bun fragment.
func Expr(query string, args ...interface{}) Predicate {
	return Predicate{query: query, args: args}
}

func (p Predicate) IsPresent() bool { return p.query != "" }

func (p Predicate) Query() string { return p.query }

func (p Predicate) Args() []interface{} { return p.args }

func (p Predicate) And(other Predicate) Predicate { return And(p, other) }

func (p Predicate) Or(other Predicate) Predicate { return Or(p, other) }

// Not negates p. Not of the absent predicate is absent.
func Not(p Predicate) Predicate {
	if !p.IsPresent() {
		return p
	}
	return Predicate{query: "NOT (" + p.query + ")", args: p.args}
}

// And conjoins the present predicates. With none present the result is absent.
func And(preds ...Predicate) Predicate {
	return join(" AND ", preds)
}

// Or disjoins the present predicates. With none present the result is absent.
func Or(preds ...Predicate) Predicate {
	return join(" OR ", preds)
}

func join(sep string, preds []Predicate) Predicate {
	present := Present(preds...)
	switch len(present) {
	case 0:
		return Predicate{}
	case 1:
		return present[0]
	}
	parts := make([]string, len(present))
	var args []interface{}
	for i, p := range present {
		parts[i] = "(" + p.query + ")"
		args = append(args, p.args...)
	}
	return Predicate{query: strings.Join(parts, sep), args: args}
}

// Present returns preds without the absent ones, keeping order.
func Present(preds ...Predicate) []Predicate {
	out := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p.IsPresent() {
			out = append(out, p)
		}
	}
	return out
}

// Where is satisfied by bun's select, update and delete queries.
type Where[Q any] interface {
	Where(query string, args ...interface{}) Q
}

// Apply adds each present predicate as its own WHERE term. bun joins the
// terms with AND.
func Apply[Q Where[Q]](q Q, preds ...Predicate) Q {
	for _, p := range preds {
		if p.IsPresent() {
			q = q.Where(p.query, p.args...)
		}
	}
	return q
}

// EqText is col = s, absent when s is blank.
func EqText(col Column, s string) Predicate {
	if strings.TrimSpace(s) == "" {
		return Predicate{}
	}
	return col.Eq(s)
}

// GoeOpt is col >= *v, absent when v is nil.
func GoeOpt(col Column, v *int) Predicate {
	if v == nil {
		return Predicate{}
	}
	return col.Goe(*v)
}

// LoeOpt is col <= *v, absent when v is nil.
func LoeOpt(col Column, v *int) Predicate {
	if v == nil {
		return Predicate{}
	}
	return col.Loe(*v)
}
