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
	"fmt"

	"github.com/tomoncle/querydsl/database"
	"github.com/tomoncle/querydsl/model"
	"github.com/tomoncle/querydsl/repository"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// SeedOptions shapes the sample roster.
type SeedOptions struct {
	Teams   []string `mapstructure:"teams"`
	Members int      `mapstructure:"members"`
}

func DefaultSeedOptions() SeedOptions {
	return SeedOptions{Teams: []string{"teamA", "teamB"}, Members: 100}
}

// SeedResult counts the rows written by SeedRoster.
type SeedResult struct {
	Teams   int `json:"teams"`
	Members int `json:"members"`
}

// SeedRoster writes the sample roster: member0..memberN-1 aged 0..N-1,
// dealt round-robin across the teams. Ids are fixed, so seeding again
// overwrites the same rows.
func SeedRoster(ctx context.Context, db *bun.DB, opts SeedOptions) (*SeedResult, error) {
	if len(opts.Teams) == 0 {
		return nil, fmt.Errorf("seed needs at least one team")
	}
	if opts.Members < 0 {
		return nil, fmt.Errorf("invalid member count: %d", opts.Members)
	}

	teams := make([]*model.Team, len(opts.Teams))
	for i, name := range opts.Teams {
		teams[i] = model.NewTeam(name)
		teams[i].ID = int64(i + 1)
	}
	members := make([]*model.Member, opts.Members)
	for i := range members {
		members[i] = model.NewMember(fmt.Sprintf("member%d", i), i, teams[i%len(teams)])
		members[i].ID = int64(i + 1)
	}

	teamRepo := repository.NewTeamRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := teamRepo.WithTx(tx).Upsert(ctx, []string{"name"}, nil, teams...); err != nil {
			return fmt.Errorf("failed to seed teams: %w", err)
		}
		if err := memberRepo.WithTx(tx).Upsert(ctx, []string{"username", "age", "team_id"}, nil, members...); err != nil {
			return fmt.Errorf("failed to seed members: %w", err)
		}
		if db.Dialect().Name() == dialect.PG {
			return resetSequences(ctx, tx, model.TeamTable, model.MemberTable)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	database.GetLogger().Info("Roster seeded", "teams", len(teams), "members", len(members))
	return &SeedResult{Teams: len(teams), Members: len(members)}, nil
}

// resetSequences moves PostgreSQL id sequences past explicitly written ids.
func resetSequences(ctx context.Context, db bun.IDB, tables ...string) error {
	for _, table := range tables {
		_, err := db.NewRaw(
			"SELECT setval(pg_get_serial_sequence(?, 'id'), coalesce(max(id), 0) + 1, false) FROM ?",
			table, bun.Ident(table),
		).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to reset sequence of %s: %w", table, err)
		}
	}
	return nil
}
