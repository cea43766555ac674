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

// Package cli loads the querydsl command configuration.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tomoncle/querydsl"
	"github.com/tomoncle/querydsl/database"
)

// ConfigFileNames are looked up in the working directory when no config
// file is given.
var ConfigFileNames = []string{"querydsl.yaml", "querydsl.yml"}

const EnvPrefix = "QUERYDSL"

// Config is the content of querydsl.yaml.
type Config struct {
	Database database.ConnectionConfig  `mapstructure:"database"`
	Migrate  database.DataMigrateConfig `mapstructure:"migrate"`
	Seed     querydsl.SeedOptions       `mapstructure:"seed"`
	Log      LogConfig                  `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var _ database.ConfigProvider = (*Config)(nil)

func (c *Config) ConfigLoader() *database.Config {
	return &database.Config{
		ConnectionConfig:  c.Database,
		DataMigrateConfig: c.Migrate,
	}
}

// LoadConfig reads .env, then the config file, then QUERYDSL_* variables,
// each overriding the one before. It returns the config file used, empty
// when none was found.
func LoadConfig(explicitPath string) (*Config, string, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := findConfigFile(explicitPath)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, path, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, path, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, path, nil
}

func setDefaults(v *viper.Viper) {
	def := database.DefaultConfig()
	conn := def.ConnectionConfig
	v.SetDefault("database.type", conn.Type)
	v.SetDefault("database.driver", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", conn.DBName)
	v.SetDefault("database.sslmode", "")
	v.SetDefault("database.max_idle_conns", conn.MaxIdleConns)
	v.SetDefault("database.max_open_conns", conn.MaxOpenConns)
	v.SetDefault("database.conn_max_lifetime", conn.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", conn.ConnMaxIdleTime)
	v.SetDefault("database.connect_timeout", conn.ConnectTimeout)
	v.SetDefault("database.read_timeout", conn.ReadTimeout)
	v.SetDefault("database.write_timeout", conn.WriteTimeout)
	v.SetDefault("database.enable_query_log", false)
	v.SetDefault("database.slow_query_time", conn.SlowQueryTime)

	v.SetDefault("migrate.enable_migrate_on_startup", def.DataMigrateConfig.EnableMigrateOnStartup)
	v.SetDefault("migrate.enable_foreign_key", def.DataMigrateConfig.EnableForeignKey)
	v.SetDefault("migrate.foreign_key_file", "")

	seed := querydsl.DefaultSeedOptions()
	v.SetDefault("seed.teams", seed.Teams)
	v.SetDefault("seed.members", seed.Members)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}
