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
	"github.com/tomoncle/querydsl/model"
)

var (
	statsCriteria searchFlags
	statsTeams    []string
)

type statsReport struct {
	Ages  model.AgeStats         `json:"ages"`
	Teams []model.TeamAgeAverage `json:"teams"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Age aggregates for the matching members and per team",
	Example: `  # Aggregates over teamA, averages for every team
  querydsl stats --team teamA`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := openDB(cmd.Context()); err != nil {
			return err
		}

		svc := querydsl.NewMemberService()
		ages, err := svc.Stats(cmd.Context(), statsCriteria.condition(cmd))
		if err != nil {
			return err
		}
		teams, err := svc.TeamAverages(cmd.Context(), statsTeams...)
		if err != nil {
			return err
		}
		return printJSON(cmd, statsReport{Ages: ages, Teams: teams})
	},
}

func init() {
	statsCriteria.register(statsCmd)
	statsCmd.Flags().StringSliceVar(&statsTeams, "average-teams", nil, "limit team averages to these teams")
}
