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

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-digest/internal/config"
	"github.com/sirseerhq/sirseer-digest/internal/logging"
)

func newWhoamiCommand() *cobra.Command {
	var (
		token      string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Print the GitHub login and display name the token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runWhoami(cmd.Context(), cfg, token, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "GitHub personal access token (overrides GITHUB_TOKEN env var)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file")

	return cmd
}

func runWhoami(ctx context.Context, cfg *config.Config, tokenFlag string, stdout io.Writer) error {
	log, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	engine, err := newEngine(ctx, cfg, tokenFlag, "", log)
	if err != nil {
		return err
	}
	profile, err := engine.Viewer(ctx)
	if err != nil {
		return err
	}
	log.Debugw("Fetched viewer profile", "login", profile.Login, "name", profile.Name)

	if profile.Name == "" {
		_, err = fmt.Fprintln(stdout, engine.Login())
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s (%s)\n", engine.Login(), profile.Name)
	return err
}
