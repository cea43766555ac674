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
	"github.com/spf13/cobra"
	"github.com/tomoncle/querydsl"
)

var (
	seedTeams   []string
	seedMembers int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the sample roster",
	Example: `  # Two teams, 100 members
  querydsl seed

  # Three teams, 30 members
  querydsl seed --teams red,green,blue --members 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cfg.Seed
		if cmd.Flags().Changed("teams") {
			opts.Teams = seedTeams
		}
		if cmd.Flags().Changed("members") {
			opts.Members = seedMembers
		}

		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		res, err := querydsl.SeedRoster(cmd.Context(), db, opts)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

func init() {
	f := seedCmd.Flags()
	f.StringSliceVar(&seedTeams, "teams", nil, "team names")
	f.IntVar(&seedMembers, "members", 0, "number of members")
}
