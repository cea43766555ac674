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
	"github.com/uptrace/bun"
)

type TeamRepository struct {
	Repository[model.Team]
}

func NewTeamRepository(db bun.IDB, opts ...Option[model.Team]) *TeamRepository {
	return &TeamRepository{Repository: NewRepository(db, opts...)}
}

func (r *TeamRepository) WithTx(tx bun.Tx) *TeamRepository {
	return &TeamRepository{Repository: r.Repository.WithTx(tx)}
}

// FindByName returns nil when no team is called name.
func (r *TeamRepository) FindByName(ctx context.Context, name string) (*model.Team, error) {
	return r.FetchOne(ctx, query.TeamName.Eq(name))
}

// WithMembers loads every team with its members, both ordered by id.
func (r *TeamRepository) WithMembers(ctx context.Context) ([]*model.Team, error) {
	teams := make([]*model.Team, 0)
	err := r.NewSelect().Model(&teams).
		Relation("Members", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?", query.MemberID.Ident())
		}).
		OrderExpr("?", query.TeamID.Ident()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return teams, nil
}
