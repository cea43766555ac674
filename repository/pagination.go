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

	"github.com/tomoncle/querydsl/database"
	"github.com/tomoncle/querydsl/types"
)

// ContentFunc loads one window of content.
type ContentFunc[T any] func(ctx context.Context) ([]T, error)

// CountFunc counts every row matching the content's filter.
type CountFunc func(ctx context.Context) (int, error)

// GetPage binds content to req and calls count only when the content does
// not settle the total: a short first page holds every row, and a short
// non-empty later page ends at offset+len(content).
func GetPage[T any](ctx context.Context, content []T, req *types.PageRequest, count CountFunc) (*types.Page[T], error) {
	offset, size, n := req.GetOffset(), req.GetPageSize(), len(content)

	if offset == 0 && n < size {
		logCountSkipped(offset, n)
		return types.NewPage(content, req, n), nil
	}
	if offset > 0 && n > 0 && n < size {
		logCountSkipped(offset, n)
		return types.NewPage(content, req, offset+n), nil
	}

	total, err := count(ctx)
	if err != nil {
		return nil, err
	}
	return types.NewPage(content, req, total), nil
}

// FetchPage loads content and then counts lazily through GetPage.
func FetchPage[T any](ctx context.Context, req *types.PageRequest, content ContentFunc[T], count CountFunc) (*types.Page[T], error) {
	rows, err := content(ctx)
	if err != nil {
		return nil, err
	}
	return GetPage(ctx, rows, req, count)
}

// FetchPageEager always counts, first. When the total leaves nothing at
// req's offset the content query is skipped.
func FetchPageEager[T any](ctx context.Context, req *types.PageRequest, content ContentFunc[T], count CountFunc) (*types.Page[T], error) {
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 || req.GetOffset() >= total {
		return types.NewPage[T](nil, req, total), nil
	}
	rows, err := content(ctx)
	if err != nil {
		return nil, err
	}
	return types.NewPage(rows, req, total), nil
}

func logCountSkipped(offset, n int) {
	database.GetLogger().Debug("Count query skipped", "offset", offset, "content", n)
}
