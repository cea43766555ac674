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
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tomoncle/querydsl/database"
	"github.com/tomoncle/querydsl/internal/cli"
	"github.com/tomoncle/querydsl/utils"
	"github.com/uptrace/bun"
)

var (
	cfg        *cli.Config
	configPath string

	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "querydsl",
	Short: "Dynamic member and team queries on bun",
	Long: `querydsl - dynamic member and team queries

Seeds a two-team roster and runs filtered, ordered and paged searches,
aggregates and bulk statements against SQLite, PostgreSQL or MySQL.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		utils.ConfigureLogOutput(os.Stderr)
		utils.ConfigureConsoleLogFormat(cfg.Log.Format)
		utils.ConfigureLogLevel(resolveString(logLevel, cfg.Log.Level))
		if configPath != "" {
			database.GetLogger().Debug("Configuration loaded", "path", configPath)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return database.CloseDB()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./querydsl.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(migrateCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openDB connects the global database with the loaded configuration.
func openDB(ctx context.Context) (*bun.DB, error) {
	db, err := database.InitDB(ctx, cfg.ConfigLoader())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resolveString returns the first non-empty value.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
