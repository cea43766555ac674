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

package model

// MemberTeamDto is a member flattened together with its team. TeamID and
// TeamName are zero for a member without a team.
type MemberTeamDto struct {
	MemberID int64  `bun:"member_id" json:"memberId"`
	Username string `bun:"username" json:"username"`
	Age      int    `bun:"age" json:"age"`
	TeamID   int64  `bun:"team_id" json:"teamId"`
	TeamName string `bun:"team_name" json:"teamName"`
}

func NewMemberTeamDto(memberID int64, username string, age int, teamID int64, teamName string) MemberTeamDto {
	return MemberTeamDto{MemberID: memberID, Username: username, Age: age, TeamID: teamID, TeamName: teamName}
}

func (d MemberTeamDto) HasTeam() bool { return d.TeamID != 0 }

type MemberDto struct {
	Username string `bun:"username" json:"username"`
	Age      int    `bun:"age" json:"age"`
}

func NewMemberDto(username string, age int) MemberDto {
	return MemberDto{Username: username, Age: age}
}

// UserDto names its fields differently from Member, so it is read through
// column aliases.
type UserDto struct {
	Name string `bun:"name" json:"name"`
	Age  int    `bun:"age" json:"age"`
}

type TeamAgeAverage struct {
	TeamName string  `bun:"team_name" json:"teamName"`
	AvgAge   float64 `bun:"avg_age" json:"avgAge"`
}

// AgeStats aggregates member ages over a filter.
type AgeStats struct {
	Count int64   `bun:"count" json:"count"`
	Sum   int64   `bun:"sum" json:"sum"`
	Avg   float64 `bun:"avg" json:"avg"`
	Max   int     `bun:"max" json:"max"`
	Min   int     `bun:"min" json:"min"`
}
