// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config types define the configuration structures used throughout
// sirseer-digest. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

import "time"

// Config represents the complete configuration for sirseer-digest.
type Config struct {
	GitHub   GitHubConfig   `yaml:"github"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GitHubConfig contains GitHub-specific settings including API endpoints
// and authentication configuration. This allows easy configuration for
// GitHub Enterprise deployments by specifying custom endpoints.
type GitHubConfig struct {
	APIEndpoint     string `yaml:"api_endpoint"`
	GraphQLEndpoint string `yaml:"graphql_endpoint"`
	TokenEnv        string `yaml:"token_env"`
	UserAgent       string `yaml:"user_agent"`
	APIVersion      string `yaml:"api_version"`
}

// DefaultsConfig contains settings applied to every summarize run unless
// overridden by command-line flags.
type DefaultsConfig struct {
	// OutputFormat is "text" or "json".
	OutputFormat string `yaml:"output_format"`

	// MaxPages stops a collection after this many pages. Zero means no limit.
	MaxPages int `yaml:"max_pages"`

	// Timeout bounds each HTTP request. Zero leaves the transport default.
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults suitable for most
// use cases. These defaults target public GitHub.com.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIEndpoint:     "https://api.github.com",
			GraphQLEndpoint: "https://api.github.com/graphql",
			TokenEnv:        "GITHUB_TOKEN",
			APIVersion:      "2022-11-28",
		},
		Defaults: DefaultsConfig{
			OutputFormat: "text",
			MaxPages:     0,
			Timeout:      0,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}
