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
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// ErrProjectionShape reports rows that do not fit the projection binding.
var ErrProjectionShape = errors.New("projection shape mismatch")

type scanFunc[T any] func(ctx context.Context, db *bun.DB, rows *sql.Rows) ([]T, error)

// Projection pairs a select list with the way its rows become T values.
type Projection[T any] struct {
	columns []Selectable
	scan    scanFunc[T]
}

func (p Projection[T]) Columns() []Selectable {
	return append([]Selectable(nil), p.columns...)
}

// Select sets p's select list on sq.
func (p Projection[T]) Select(sq *bun.SelectQuery) *bun.SelectQuery {
	return selectColumns(sq, p.columns...)
}

// Fetch runs sq, whose select list must already be p's, and binds every row.
// Query errors are returned unchanged; binding errors wrap ErrProjectionShape.
func (p Projection[T]) Fetch(ctx context.Context, sq *bun.SelectQuery) ([]T, error) {
	rows, err := sq.Rows(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return p.scan(ctx, sq.DB(), rows)
}

// Project runs q with p's select list.
func Project[T any](ctx context.Context, q *MemberTeamQuery, p Projection[T]) ([]T, error) {
	return p.Fetch(ctx, q.SelectQuery(p.columns...))
}

// Constructor1 binds a single column to fn. A NULL column is passed to fn as
// the zero value of A.
func Constructor1[A, T any](fn func(A) T, c1 Selectable) Projection[T] {
	return Projection[T]{
		columns: []Selectable{c1},
		scan: func(_ context.Context, _ *bun.DB, rows *sql.Rows) ([]T, error) {
			return scanEach(rows, 1, func() (T, error) {
				var a sql.Null[A]
				if err := rows.Scan(&a); err != nil {
					var zero T
					return zero, err
				}
				return fn(a.V), nil
			})
		},
	}
}

// Constructor2 binds two columns positionally to fn. A NULL column is passed
// to fn as the zero value of its parameter type.
func Constructor2[A, B, T any](fn func(A, B) T, c1, c2 Selectable) Projection[T] {
	return Projection[T]{
		columns: []Selectable{c1, c2},
		scan: func(_ context.Context, _ *bun.DB, rows *sql.Rows) ([]T, error) {
			return scanEach(rows, 2, func() (T, error) {
				var (
					a sql.Null[A]
					b sql.Null[B]
				)
				if err := rows.Scan(&a, &b); err != nil {
					var zero T
					return zero, err
				}
				return fn(a.V, b.V), nil
			})
		},
	}
}

// Constructor5 binds five columns positionally to fn. A NULL column is
// passed to fn as the zero value of its parameter type.
func Constructor5[A, B, C, D, E, T any](fn func(A, B, C, D, E) T, c1, c2, c3, c4, c5 Selectable) Projection[T] {
	return Projection[T]{
		columns: []Selectable{c1, c2, c3, c4, c5},
		scan: func(_ context.Context, _ *bun.DB, rows *sql.Rows) ([]T, error) {
			return scanEach(rows, 5, func() (T, error) {
				var (
					a sql.Null[A]
					b sql.Null[B]
					c sql.Null[C]
					d sql.Null[D]
					e sql.Null[E]
				)
				if err := rows.Scan(&a, &b, &c, &d, &e); err != nil {
					var zero T
					return zero, err
				}
				return fn(a.V, b.V, c.V, d.V, e.V), nil
			})
		},
	}
}

// Fields binds columns to struct fields by name through bun tags. Use As
// when a field name differs from the column.
func Fields[T any](cols ...Selectable) Projection[T] {
	return Projection[T]{
		columns: cols,
		scan: func(ctx context.Context, db *bun.DB, rows *sql.Rows) ([]T, error) {
			out := make([]T, 0)
			if err := db.ScanRows(ctx, rows, &out); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrProjectionShape, err)
			}
			return out, nil
		},
	}
}

func scanEach[T any](rows *sql.Rows, width int, next func() (T, error)) ([]T, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(cols) != width {
		return nil, fmt.Errorf("%w: query returns %d columns, binding takes %d", ErrProjectionShape, len(cols), width)
	}
	out := make([]T, 0)
	for rows.Next() {
		v, err := next()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProjectionShape, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
