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

// MemberSearchCondition carries optional member filters. Blank strings and
// nil bounds mean the filter is absent. Age bounds are inclusive.
type MemberSearchCondition struct {
	Username string `json:"username,omitempty" mapstructure:"username"`
	TeamName string `json:"teamName,omitempty" mapstructure:"team_name"`
	AgeGoe   *int   `json:"ageGoe,omitempty" mapstructure:"age_goe"`
	AgeLoe   *int   `json:"ageLoe,omitempty" mapstructure:"age_loe"`
}

func (c MemberSearchCondition) WithUsername(username string) MemberSearchCondition {
	c.Username = username
	return c
}

func (c MemberSearchCondition) WithTeamName(name string) MemberSearchCondition {
	c.TeamName = name
	return c
}

func (c MemberSearchCondition) WithAgeGoe(age int) MemberSearchCondition {
	c.AgeGoe = &age
	return c
}

func (c MemberSearchCondition) WithAgeLoe(age int) MemberSearchCondition {
	c.AgeLoe = &age
	return c
}

// WithAgeBetween sets both bounds.
func (c MemberSearchCondition) WithAgeBetween(goe, loe int) MemberSearchCondition {
	return c.WithAgeGoe(goe).WithAgeLoe(loe)
}
