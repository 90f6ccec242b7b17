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
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	digesterrors "github.com/sirseerhq/sirseer-digest/internal/errors"
	"github.com/sirseerhq/sirseer-digest/internal/giterror"
	"github.com/sirseerhq/sirseer-digest/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI with args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCommand(stdout, stderr)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if hint := giterror.UserAction(giterror.NewErrorChainInspector(giterror.NewInspector()), err); hint != "" {
			fmt.Fprintf(stderr, "%s\n", hint)
		}
		return mapErrorToExitCode(err)
	}
	return 0
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sirseer-digest",
		Short: "Summarize a GitHub account's recent activity",
		Long: `SirSeer Digest collects the issues, pull requests and repositories an
account created on GitHub within a time window and renders them as a
narrative report, a JSON document or an NDJSON export.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.AddCommand(newSummarizeCommand())
	rootCmd.AddCommand(newWhoamiCommand())
	return rootCmd
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	// Malformed responses and the page guard are definitive; their text
	// must not be mistaken for an HTTP status.
	if errors.Is(err, digesterrors.ErrDecode) || errors.Is(err, digesterrors.ErrPageLimit) {
		return 4
	}

	inspector := giterror.NewErrorChainInspector(giterror.NewInspector())

	if errors.Is(err, digesterrors.ErrInvalidToken) ||
		inspector.IsAuthError(err) ||
		inspector.IsRateLimitError(err) ||
		inspector.IsNotFoundError(err) {
		return 2
	}

	if errors.Is(err, digesterrors.ErrNetworkFailure) || inspector.IsNetworkError(err) {
		return 3
	}

	if errors.Is(err, digesterrors.ErrAuthResolution) {
		return 2
	}

	if errors.Is(err, digesterrors.ErrQueryErrors) || errors.Is(err, digesterrors.ErrBadResponse) {
		return 4
	}

	return 1
}
