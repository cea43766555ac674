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

	"github.com/tomoncle/querydsl/model"
	"github.com/tomoncle/querydsl/query"
	"github.com/tomoncle/querydsl/types"
	"github.com/uptrace/bun"
)

// MemberTeamProjection binds the flat member/team columns to
// model.NewMemberTeamDto.
var MemberTeamProjection = query.Constructor5(model.NewMemberTeamDto,
	query.MemberID, query.MemberUsername, query.MemberAge, query.TeamID, query.TeamName)

// MemberRepository reads members together with their team.
type MemberRepository struct {
	Repository[model.Member]
}

// NewMemberRepository returns a member repository with an identity map for
// GetOne.
func NewMemberRepository(db bun.IDB, opts ...Option[model.Member]) *MemberRepository {
	opts = append([]Option[model.Member]{
		WithIdentityMap(NewIdentityMap[int64, *model.Member](model.MemberTable)),
	}, opts...)
	return &MemberRepository{Repository: NewRepository(db, opts...)}
}

func (r *MemberRepository) WithTx(tx bun.Tx) *MemberRepository {
	return &MemberRepository{Repository: r.Repository.WithTx(tx)}
}

func (r *MemberRepository) query(cond model.MemberSearchCondition) *query.MemberTeamQuery {
	return query.Search(r.DB(), cond)
}

// Search returns the flat rows matching cond, in no particular order.
func (r *MemberRepository) Search(ctx context.Context, cond model.MemberSearchCondition) ([]model.MemberTeamDto, error) {
	return query.Project(ctx, r.query(cond), MemberTeamProjection)
}

// SearchMembers returns full members matching cond with their team loaded.
func (r *MemberRepository) SearchMembers(ctx context.Context, cond model.MemberSearchCondition, orders ...types.Order) ([]*model.Member, error) {
	return r.query(cond).OrderBy(orders...).Entities(ctx)
}

// SearchPageSimple pages cond with an up-front count.
func (r *MemberRepository) SearchPageSimple(ctx context.Context, cond model.MemberSearchCondition, req *types.PageRequest) (*types.Page[model.MemberTeamDto], error) {
	q := r.query(cond)
	return FetchPageEager(ctx, req, r.pageContent(q, req), q.Count)
}

// SearchPage pages cond and counts only when the content leaves the total
// open.
func (r *MemberRepository) SearchPage(ctx context.Context, cond model.MemberSearchCondition, req *types.PageRequest) (*types.Page[model.MemberTeamDto], error) {
	q := r.query(cond)
	return FetchPage(ctx, req, r.pageContent(q, req), q.Count)
}

func (r *MemberRepository) pageContent(q *query.MemberTeamQuery, req *types.PageRequest) ContentFunc[model.MemberTeamDto] {
	return func(ctx context.Context) ([]model.MemberTeamDto, error) {
		return query.Project(ctx, q.Page(req), MemberTeamProjection)
	}
}

func (r *MemberRepository) FindByUsername(ctx context.Context, username string) ([]*model.Member, error) {
	return r.Find(ctx, query.MemberUsername.Eq(username))
}

// FindOneByUsername returns nil when no member has username and
// ErrNonUniqueResult when several do.
func (r *MemberRepository) FindOneByUsername(ctx context.Context, username string) (*model.Member, error) {
	return r.FetchOne(ctx, query.MemberUsername.Eq(username))
}

// Stats aggregates age over the members matching cond.
func (r *MemberRepository) Stats(ctx context.Context, cond model.MemberSearchCondition) (model.AgeStats, error) {
	return r.query(cond).Aggregate(ctx)
}

func (r *MemberRepository) TeamAverages(ctx context.Context, names ...string) ([]model.TeamAgeAverage, error) {
	return query.TeamAverages(ctx, r.DB(), names...)
}

func (r *MemberRepository) OldestMembers(ctx context.Context) ([]*model.Member, error) {
	return query.OldestMembers(ctx, r.DB())
}

// MembersJoinedToTeam lists every member, carrying team columns only for
// members of the named team.
func (r *MemberRepository) MembersJoinedToTeam(ctx context.Context, teamName string) ([]model.MemberTeamDto, error) {
	q := query.NewMemberTeamQuery(r.DB()).
		JoinOn(query.TeamName.Eq(teamName)).
		OrderBy(query.MemberID.Asc())
	return query.Project(ctx, q, MemberTeamProjection)
}

// MoveToTeam points every member matching cond at team.
func (r *MemberRepository) MoveToTeam(ctx context.Context, team *model.Team, preds ...query.Predicate) (int64, error) {
	return r.BulkUpdate(ctx, []query.Assignment{query.Set(query.MemberTeamID, team.ID)}, preds...)
}
