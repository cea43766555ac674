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

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tomoncle/querydsl"
	"github.com/tomoncle/querydsl/model"
	"github.com/tomoncle/querydsl/query"
	"github.com/tomoncle/querydsl/types"
)

// searchFlags are the member search criteria shared by search and stats.
type searchFlags struct {
	username string
	teamName string
	ageGoe   int
	ageLoe   int
}

func (f *searchFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.username, "username", "", "exact username")
	fs.StringVar(&f.teamName, "team", "", "exact team name")
	fs.IntVar(&f.ageGoe, "age-goe", 0, "minimum age, inclusive")
	fs.IntVar(&f.ageLoe, "age-loe", 0, "maximum age, inclusive")
}

// condition leaves unset age bounds absent.
func (f *searchFlags) condition(cmd *cobra.Command) model.MemberSearchCondition {
	cond := model.MemberSearchCondition{}.WithUsername(f.username).WithTeamName(f.teamName)
	if cmd.Flags().Changed("age-goe") {
		cond = cond.WithAgeGoe(f.ageGoe)
	}
	if cmd.Flags().Changed("age-loe") {
		cond = cond.WithAgeLoe(f.ageLoe)
	}
	return cond
}

var (
	searchCriteria searchFlags
	searchOffset   int
	searchSize     int
	searchOrders   []string
	searchEager    bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Page through members matching the criteria",
	Example: `  # Members of teamB aged 35 or more, oldest first
  querydsl search --team teamB --age-goe 35 --order age:desc

  # Third page of 20 by username, members without a name last
  querydsl search --offset 40 --size 20 --order username:asc:last`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := pageRequest(searchOffset, searchSize, searchOrders)
		if err != nil {
			return err
		}
		if _, err := openDB(cmd.Context()); err != nil {
			return err
		}

		svc := querydsl.NewMemberService()
		cond := searchCriteria.condition(cmd)
		var page *types.Page[model.MemberTeamDto]
		if searchEager {
			page, err = svc.SearchPageSimple(cmd.Context(), cond, req)
		} else {
			page, err = svc.SearchPage(cmd.Context(), cond, req)
		}
		if err != nil {
			return err
		}
		return printJSON(cmd, page)
	},
}

func init() {
	searchCriteria.register(searchCmd)
	f := searchCmd.Flags()
	f.IntVar(&searchOffset, "offset", 0, "rows to skip")
	f.IntVar(&searchSize, "size", types.DefaultPageSize, "page size")
	f.StringArrayVar(&searchOrders, "order", nil, "sort key as field[:asc|desc[:first|last]], repeatable")
	f.BoolVar(&searchEager, "eager", false, "count before loading the page")
}

func pageRequest(offset, size int, specs []string) (*types.PageRequest, error) {
	if offset < 0 {
		return nil, fmt.Errorf("offset must not be negative: %d", offset)
	}
	if size < 1 {
		return nil, fmt.Errorf("size must be positive: %d", size)
	}
	orders := make([]types.Order, 0, len(specs))
	for _, s := range specs {
		o, err := types.ParseOrder(s)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	resolved, err := query.ResolveOrders(orders)
	if err != nil {
		return nil, err
	}
	return types.NewOffsetPageRequest(offset, size, resolved...), nil
}
