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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/querydsl/types"
)

type countSpy struct {
	total int
	calls int
}

func (s *countSpy) count(context.Context) (int, error) {
	s.calls++
	return s.total, nil
}

func TestGetPage_CountOnlyWhenNeeded(t *testing.T) {
	tests := []struct {
		name      string
		offset    int
		size      int
		content   int
		wantTotal int
		wantCalls int
	}{
		{name: "short first page", offset: 0, size: 10, content: 3, wantTotal: 3},
		{name: "empty first page", offset: 0, size: 10, content: 0, wantTotal: 0},
		{name: "full first page", offset: 0, size: 2, content: 2, wantTotal: 9, wantCalls: 1},
		{name: "short later page", offset: 4, size: 2, content: 1, wantTotal: 5},
		{name: "full later page", offset: 2, size: 2, content: 2, wantTotal: 9, wantCalls: 1},
		{name: "past the end", offset: 20, size: 2, content: 0, wantTotal: 9, wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &countSpy{total: 9}
			page, err := GetPage(context.Background(), make([]int, tt.content),
				types.NewOffsetPageRequest(tt.offset, tt.size), spy.count)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, page.Total)
			assert.Equal(t, tt.wantCalls, spy.calls)
			assert.Len(t, page.Content, tt.content)
		})
	}
}

func TestFetchPage_ContentErrorSkipsCount(t *testing.T) {
	boom := errors.New("boom")
	spy := &countSpy{total: 1}
	_, err := FetchPage(context.Background(), types.NewOffsetPageRequest(0, 2),
		func(context.Context) ([]int, error) { return nil, boom }, spy.count)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, spy.calls)
}

func TestFetchPage_CountErrorAbortsPage(t *testing.T) {
	boom := errors.New("boom")
	page, err := FetchPage(context.Background(), types.NewOffsetPageRequest(0, 2),
		func(context.Context) ([]int, error) { return []int{1, 2}, nil },
		func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, page)
}

func TestFetchPageEager(t *testing.T) {
	loads := 0
	content := func(context.Context) ([]int, error) {
		loads++
		return []int{1, 2}, nil
	}

	spy := &countSpy{total: 4}
	page, err := FetchPageEager(context.Background(), types.NewOffsetPageRequest(0, 2), content, spy.count)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, []int{1, 2}, page.Content)
	assert.Equal(t, 1, loads)

	page, err = FetchPageEager(context.Background(), types.NewOffsetPageRequest(4, 2), content, spy.count)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Empty(t, page.Content)
	assert.Equal(t, 1, loads, "content skipped past the end")

	spy.total = 0
	page, err = FetchPageEager(context.Background(), types.NewOffsetPageRequest(0, 2), content, spy.count)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.NotNil(t, page.Content)
	assert.Equal(t, 1, loads)
	assert.Equal(t, 3, spy.calls)
}

func TestIdentityMap_Invalidate(t *testing.T) {
	m := NewIdentityMap[int, string]("members")
	m.Put(1, "a")
	m.Put(2, "b")

	m.Invalidate(context.Background(), "teams")
	assert.Equal(t, 2, m.Len())

	m.Invalidate(context.Background(), "members")
	assert.Zero(t, m.Len())
	_, ok := m.Get(1)
	assert.False(t, ok)

	m.Put(3, "c")
	m.Invalidate(context.Background(), "")
	assert.Zero(t, m.Len())
}
