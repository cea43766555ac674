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
	"errors"

	"github.com/tomoncle/querydsl/query"
	"github.com/tomoncle/querydsl/types"
	"github.com/uptrace/bun"
)

// ErrNonUniqueResult is returned by single-result fetches that match more
// than one row. Zero rows is not an error.
var ErrNonUniqueResult = errors.New("query did not return a unique result")

// CrudRepository defines basic CRUD operations for a generic entity type.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	GetAll(ctx context.Context) ([]*T, error)

	Find(ctx context.Context, preds ...query.Predicate) ([]*T, error)

	// FetchOne returns nil, nil when nothing matches and ErrNonUniqueResult
	// when several rows do.
	FetchOne(ctx context.Context, preds ...query.Predicate) (*T, error)

	Create(ctx context.Context, entity ...*T) error

	Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error

	Update(ctx context.Context, entity *T) error

	Delete(ctx context.Context, id any) error
}

// PageQueryRepository pages over entities matching predicates.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, req *types.PageRequest, preds ...query.Predicate) (*types.Page[*T], error)
}

// BulkRepository runs set-based statements that bypass cached entities.
// Registered invalidators run after every successful statement.
type BulkRepository interface {
	BulkUpdate(ctx context.Context, set []query.Assignment, preds ...query.Predicate) (int64, error)
	BulkDelete(ctx context.Context, preds ...query.Predicate) (int64, error)
}

// Invalidator drops cached state for a table after a bulk statement.
type Invalidator interface {
	Invalidate(ctx context.Context, table string)
}

// Repository combines CRUD, paging and bulk operations over T.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	BulkRepository
	DB() bun.IDB
	TableName() string
	NewSelect() *bun.SelectQuery
	// WithTx returns a repository bound to tx sharing this one's invalidators.
	WithTx(tx bun.Tx) Repository[T]
}
