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
	"github.com/tomoncle/querydsl/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the member and team tables",
	Long: `Create the member and team tables and, outside SQLite, their foreign
key. Applied steps are recorded and skipped on later runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.Migrate.EnableMigrateOnStartup = false
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		if err := database.RunMigrations(cmd.Context()); err != nil {
			return err
		}
		applied, err := database.NewMigrationManager(db, nil).AppliedMigrations(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, applied)
	},
}
