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

package types

import (
	"fmt"
	"strings"
)

const DefaultPageSize = 10

// Order is one ORDER BY term. Field is a qualified column such as "m.username".
type Order struct {
	Field     string
	Direction Direction
	Nulls     NullHandling
}

// OrderAsc returns an ascending order on field.
func OrderAsc(field string) Order { return Order{Field: field, Direction: Asc} }

// OrderDesc returns a descending order on field.
func OrderDesc(field string) Order { return Order{Field: field, Direction: Desc} }

// NullsLast returns a copy of o that sorts NULL after every value.
func (o Order) NullsLast() Order {
	o.Nulls = NullsLast
	return o
}

// NullsFirst returns a copy of o that sorts NULL before every value.
func (o Order) NullsFirst() Order {
	o.Nulls = NullsFirst
	return o
}

func (o Order) String() string {
	s := o.Field + " " + o.Direction.Name()
	if o.Nulls != NullsNative {
		s += " " + o.Nulls.Name()
	}
	return s
}

// ParseOrder parses "field[:asc|desc[:first|last]]".
func ParseOrder(s string) (Order, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if parts[0] == "" {
		return Order{}, fmt.Errorf("order field cannot be empty: %q", s)
	}
	if len(parts) > 3 {
		return Order{}, fmt.Errorf("invalid order: %q", s)
	}
	o := Order{Field: parts[0]}
	var err error
	if len(parts) > 1 {
		if o.Direction, err = ParseDirection(parts[1]); err != nil {
			return Order{}, err
		}
	}
	if len(parts) > 2 {
		if o.Nulls, err = ParseNullHandling(parts[2]); err != nil {
			return Order{}, err
		}
	}
	return o, nil
}

// PageRequest describes an offset/size window and its ordering.
type PageRequest struct {
	offset   int
	pageSize int
	orders   []Order
}

func (p *PageRequest) GetPageSize() int {
	if p.pageSize < 1 {
		p.pageSize = DefaultPageSize
	}
	return p.pageSize
}

func (p *PageRequest) GetOffset() int {
	if p.offset < 0 {
		p.offset = 0
	}
	return p.offset
}

// GetPage returns the 1-based page number the offset falls into.
func (p *PageRequest) GetPage() int {
	return p.GetOffset()/p.GetPageSize() + 1
}

func (p *PageRequest) GetOrders() []Order {
	return p.orders
}

// Next returns the request for the following window with the same ordering.
func (p *PageRequest) Next() *PageRequest {
	return NewOffsetPageRequest(p.GetOffset()+p.GetPageSize(), p.GetPageSize(), p.orders...)
}

// NewPageRequest constructs a request from a 1-based page number.
func NewPageRequest(page int, pageSize int, orders ...Order) *PageRequest {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &PageRequest{offset: (page - 1) * pageSize, pageSize: pageSize, orders: orders}
}

// NewOffsetPageRequest constructs a request from a raw row offset.
func NewOffsetPageRequest(offset int, pageSize int, orders ...Order) *PageRequest {
	return &PageRequest{offset: offset, pageSize: pageSize, orders: orders}
}

// Page holds one window of results along with the total row count.
type Page[T any] struct {
	Content []T `json:"content"`
	Total   int `json:"total"`
	Offset  int `json:"offset"`
	Size    int `json:"size"`
}

// NewPage binds content to the window described by req.
func NewPage[T any](content []T, req *PageRequest, total int) *Page[T] {
	if content == nil {
		content = make([]T, 0)
	}
	return &Page[T]{Content: content, Total: total, Offset: req.GetOffset(), Size: req.GetPageSize()}
}

func (p *Page[T]) Number() int { return p.Offset/p.Size + 1 }

func (p *Page[T]) TotalPages() int {
	if p.Size < 1 {
		return 1
	}
	return (p.Total + p.Size - 1) / p.Size
}

func (p *Page[T]) HasNext() bool { return p.Offset+len(p.Content) < p.Total }

func (p *Page[T]) IsLast() bool { return !p.HasNext() }
