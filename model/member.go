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

// Package model holds the Member and Team tables and the flat result types
// read from them.
package model

import (
	"github.com/tomoncle/querydsl/database"
	"github.com/uptrace/bun"
)

// Table names as declared on the models.
const (
	MemberTable = "members"
	TeamTable   = "teams"
)

func init() {
	database.RegisterModel((*Team)(nil), 10)
	database.RegisterModel((*Member)(nil), 20)
	database.RegisterForeignKey(database.ForeignKeyConstraint{
		Table:           "members",
		Column:          "team_id",
		ReferenceTable:  "teams",
		ReferenceColumn: "id",
		OnDelete:        "SET NULL",
	})
}

// Member belongs to at most one Team. An empty Username is stored as NULL
// and a zero TeamID means no team.
type Member struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	Username string `bun:"username,nullzero" json:"username,omitempty"`
	Age      int    `bun:"age,notnull" json:"age"`
	TeamID   int64  `bun:"team_id,nullzero" json:"teamId,omitempty"`
	Team     *Team  `bun:"rel:belongs-to,join:team_id=id" json:"team,omitempty"`
}

// NewMember returns an unsaved member, optionally placed in team.
func NewMember(username string, age int, team *Team) *Member {
	m := &Member{Username: username, Age: age}
	if team != nil {
		m.ChangeTeam(team)
	}
	return m
}

// ChangeTeam moves the member to team and keeps team.Members in step.
func (m *Member) ChangeTeam(team *Team) {
	if m.Team != nil && m.Team != team {
		m.Team.removeMember(m)
	}
	m.Team = team
	m.TeamID = 0
	if team == nil {
		return
	}
	m.TeamID = team.ID
	team.Members = append(team.Members, m)
}

func (m *Member) HasTeam() bool { return m.TeamID != 0 }
