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
	"fmt"
	"math"
	"reflect"

	"github.com/tomoncle/querydsl/database"
	"github.com/tomoncle/querydsl/query"
	"github.com/tomoncle/querydsl/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
)

type baseRepositoryImpl[T any] struct {
	db           bun.IDB
	table        string
	identityMap  *IdentityMap[int64, *T]
	invalidators []Invalidator
}

// Option configures a repository.
type Option[T any] func(*baseRepositoryImpl[T])

// WithIdentityMap caches GetOne results in m keyed by integer primary key.
// The map is invalidated by bulk statements.
func WithIdentityMap[T any](m *IdentityMap[int64, *T]) Option[T] {
	return func(r *baseRepositoryImpl[T]) {
		r.identityMap = m
		r.invalidators = append(r.invalidators, m)
	}
}

// WithInvalidator registers inv to run after every bulk statement.
func WithInvalidator[T any](inv Invalidator) Option[T] {
	return func(r *baseRepositoryImpl[T]) {
		r.invalidators = append(r.invalidators, inv)
	}
}

// NewRepository returns a generic repository backed by db.
func NewRepository[T any](db bun.IDB, opts ...Option[T]) Repository[T] {
	return newBaseRepository(db, opts...)
}

func newBaseRepository[T any](db bun.IDB, opts ...Option[T]) *baseRepositoryImpl[T] {
	r := &baseRepositoryImpl[T]{db: db}
	r.table = db.Dialect().Tables().Get(reflect.TypeOf((*T)(nil)).Elem()).Name
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *baseRepositoryImpl[T]) DB() bun.IDB { return r.db }

func (r *baseRepositoryImpl[T]) TableName() string { return r.table }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) WithTx(tx bun.Tx) Repository[T] {
	return r.withTx(tx)
}

func (r *baseRepositoryImpl[T]) withTx(tx bun.Tx) *baseRepositoryImpl[T] {
	c := *r
	c.db = tx
	return &c
}

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, id any) (*T, error) {
	key, cacheable := identityKey(id)
	cacheable = cacheable && r.identityMap != nil
	if cacheable {
		if cached, ok := r.identityMap.Get(key); ok {
			return cached, nil
		}
	}
	entity := new(T)
	if err := r.db.NewSelect().Model(entity).Where("?TableAlias.id = ?", id).Scan(ctx); err != nil {
		return nil, err
	}
	if cacheable {
		r.identityMap.Put(key, entity)
	}
	return entity, nil
}

// identityKey normalizes an integer id of any width to the identity map key.
func identityKey(id any) (int64, bool) {
	v := reflect.ValueOf(id)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	default:
		return 0, false
	}
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	entities := make([]*T, 0)
	err := r.db.NewSelect().Model(&entities).Scan(ctx)
	return entities, err
}

func (r *baseRepositoryImpl[T]) Find(ctx context.Context, preds ...query.Predicate) ([]*T, error) {
	entities := make([]*T, 0)
	if err := query.Apply(r.db.NewSelect().Model(&entities), preds...).Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) FetchOne(ctx context.Context, preds ...query.Predicate) (*T, error) {
	var entities []*T
	if err := query.Apply(r.db.NewSelect().Model(&entities), preds...).Limit(2).Scan(ctx); err != nil {
		return nil, err
	}
	return uniqueResult(entities)
}

func uniqueResult[T any](rows []T) (T, error) {
	var zero T
	switch len(rows) {
	case 0:
		return zero, nil
	case 1:
		return rows[0], nil
	}
	return zero, ErrNonUniqueResult
}

// Page runs the content query first and counts only when the content does
// not already determine the total.
func (r *baseRepositoryImpl[T]) Page(ctx context.Context, req *types.PageRequest, preds ...query.Predicate) (*types.Page[*T], error) {
	return FetchPage(ctx, req,
		func(ctx context.Context) ([]*T, error) {
			entities := make([]*T, 0)
			sq := query.Apply(r.db.NewSelect().Model(&entities), preds...)
			sq = query.ApplyOrders(sq, req.GetOrders()...).Offset(req.GetOffset()).Limit(req.GetPageSize())
			if err := sq.Scan(ctx); err != nil {
				return nil, err
			}
			return entities, nil
		},
		func(ctx context.Context) (int, error) {
			return query.Apply(r.db.NewSelect().Model((*T)(nil)), preds...).Count(ctx)
		},
	)
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	entities := append([]*T(nil), entity...)
	_, err := r.db.NewInsert().Model(&entities).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, entity *T) error {
	_, err := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) error {
	_, err := r.db.NewDelete().Model((*T)(nil)).Where("?TableAlias.id = ?", id).Exec(ctx)
	if key, ok := identityKey(id); err == nil && ok && r.identityMap != nil {
		r.identityMap.Delete(key)
	}
	return err
}

// Upsert inserts entities and on a duplicate key overwrites fields.
func (r *baseRepositoryImpl[T]) Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields cannot be empty")
	}
	if len(entity) == 0 {
		return nil
	}
	entities := append([]*T(nil), entity...)
	features := r.db.Dialect().Features()

	switch {
	case features.Has(feature.InsertOnConflict):
		if len(duplicateKeys) == 0 {
			duplicateKeys = []string{"id"}
		}
		keys := make([]bun.Ident, len(duplicateKeys))
		for i, k := range duplicateKeys {
			keys[i] = bun.Ident(k)
		}
		iq := r.db.NewInsert().Model(&entities).On("CONFLICT (?) DO UPDATE", bun.In(keys))
		for _, f := range fields {
			iq = iq.Set("? = EXCLUDED.?", bun.Ident(f), bun.Ident(f))
		}
		_, err := iq.Exec(ctx)
		return err
	case features.Has(feature.InsertOnDuplicateKey):
		iq := r.db.NewInsert().Model(&entities).On("DUPLICATE KEY UPDATE")
		for _, f := range fields {
			iq = iq.Set("? = VALUES(?)", bun.Ident(f), bun.Ident(f))
		}
		_, err := iq.Exec(ctx)
		return err
	}
	for _, e := range entities {
		if _, err := r.db.NewInsert().Model(e).Exec(ctx); err != nil {
			if _, updateErr := r.db.NewUpdate().Model(e).WherePK().Exec(ctx); updateErr != nil {
				return fmt.Errorf("upsert failed for entity: insert error: %v, update error: %w", err, updateErr)
			}
		}
	}
	return nil
}

// BulkUpdate applies set to every row matching preds and returns the number
// of affected rows. With no predicates every row is updated.
func (r *baseRepositoryImpl[T]) BulkUpdate(ctx context.Context, set []query.Assignment, preds ...query.Predicate) (int64, error) {
	if len(set) == 0 {
		return 0, fmt.Errorf("bulk update needs at least one assignment")
	}
	uq := r.db.NewUpdate().Model((*T)(nil))
	for _, a := range set {
		uq = uq.Set(a.Expr(), a.Args()...)
	}
	uq = whereAll(uq, preds)
	res, err := uq.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return r.afterBulk(ctx, "update", res.RowsAffected)
}

// BulkDelete deletes every row matching preds. With no predicates every row
// is deleted.
func (r *baseRepositoryImpl[T]) BulkDelete(ctx context.Context, preds ...query.Predicate) (int64, error) {
	res, err := whereAll(r.db.NewDelete().Model((*T)(nil)), preds).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return r.afterBulk(ctx, "delete", res.RowsAffected)
}

// whereAll applies preds; bun refuses UPDATE and DELETE without WHERE, so
// an empty set becomes an explicit always-true term.
func whereAll[Q query.Where[Q]](q Q, preds []query.Predicate) Q {
	if len(query.Present(preds...)) == 0 {
		return q.Where("1 = 1")
	}
	return query.Apply(q, preds...)
}

func (r *baseRepositoryImpl[T]) afterBulk(ctx context.Context, op string, rowsAffected func() (int64, error)) (int64, error) {
	n, err := rowsAffected()
	if err != nil {
		return 0, err
	}
	for _, inv := range r.invalidators {
		inv.Invalidate(ctx, r.table)
	}
	database.GetLogger().Debug("Bulk statement executed", "op", op, "table", r.table, "rows", n, "invalidators", len(r.invalidators))
	return n, nil
}
