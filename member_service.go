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

package querydsl

import (
	"context"
	"sync"

	"github.com/tomoncle/querydsl/database"
	"github.com/tomoncle/querydsl/model"
	"github.com/tomoncle/querydsl/query"
	"github.com/tomoncle/querydsl/repository"
	"github.com/tomoncle/querydsl/types"
)

// MemberService exposes member searches and bulk edits over the global
// database connection.
type MemberService struct {
	Service[model.Member]

	repo *repository.MemberRepository
	once sync.Once
}

func NewMemberService() *MemberService {
	return &MemberService{Service: NewService[model.Member]()}
}

func (s *MemberService) members() *repository.MemberRepository {
	s.once.Do(func() { s.repo = repository.NewMemberRepository(database.GetDB()) })
	return s.repo
}

func (s *MemberService) Search(ctx context.Context, cond model.MemberSearchCondition) ([]model.MemberTeamDto, error) {
	return s.members().Search(ctx, cond)
}

// SearchPage pages cond, counting only when the page does not settle the
// total.
func (s *MemberService) SearchPage(ctx context.Context, cond model.MemberSearchCondition, req *types.PageRequest) (*types.Page[model.MemberTeamDto], error) {
	return s.members().SearchPage(ctx, cond, req)
}

// SearchPageSimple pages cond with an up-front count.
func (s *MemberService) SearchPageSimple(ctx context.Context, cond model.MemberSearchCondition, req *types.PageRequest) (*types.Page[model.MemberTeamDto], error) {
	return s.members().SearchPageSimple(ctx, cond, req)
}

func (s *MemberService) FindOneByUsername(ctx context.Context, username string) (*model.Member, error) {
	return s.members().FindOneByUsername(ctx, username)
}

func (s *MemberService) Stats(ctx context.Context, cond model.MemberSearchCondition) (model.AgeStats, error) {
	return s.members().Stats(ctx, cond)
}

func (s *MemberService) TeamAverages(ctx context.Context, names ...string) ([]model.TeamAgeAverage, error) {
	return s.members().TeamAverages(ctx, names...)
}

// BulkRename sets username to newName on every member younger than age.
func (s *MemberService) BulkRename(ctx context.Context, newName string, age int) (int64, error) {
	return s.members().BulkUpdate(ctx,
		[]query.Assignment{query.Set(query.MemberUsername, newName)},
		query.MemberAge.Lt(age))
}

// BulkDeleteYoungerThan deletes every member younger than age.
func (s *MemberService) BulkDeleteYoungerThan(ctx context.Context, age int) (int64, error) {
	return s.members().BulkDelete(ctx, query.MemberAge.Lt(age))
}
