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
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sirseerhq/sirseer-digest/internal/config"
	digesterrors "github.com/sirseerhq/sirseer-digest/internal/errors"
	"github.com/sirseerhq/sirseer-digest/internal/github"
	"github.com/sirseerhq/sirseer-digest/internal/logging"
	"github.com/sirseerhq/sirseer-digest/internal/metadata"
	"github.com/sirseerhq/sirseer-digest/internal/output"
	"github.com/sirseerhq/sirseer-digest/pkg/version"
)

// summarizeOptions holds the raw flag values of the summarize command.
type summarizeOptions struct {
	from         string
	to           string
	token        string
	user         string
	configPath   string
	format       string
	ndjsonPath   string
	metadataPath string
	maxPages     int
	verbose      bool
	quiet        bool
}

func newSummarizeCommand() *cobra.Command {
	opts := &summarizeOptions{}

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize issues, pull requests and repositories created in a time window",
		Long: `Summarize the issues, pull requests and repositories an account created on
GitHub between --from and --to (default: now).

The window bounds are ISO-8601 timestamps, for example 2025-06-01T00:00:00Z.

Authentication is required via GitHub token:
  - Use --token flag to provide token directly
  - Or set GITHUB_TOKEN environment variable (or a .env file)

The token should have read access to issues, metadata and pull requests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSummarizeConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runSummarize(cmd.Context(), cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "Start of the window, e.g. 2025-06-01T00:00:00Z (required)")
	cmd.Flags().StringVar(&opts.to, "to", "", "End of the window (default: now)")
	cmd.Flags().StringVar(&opts.token, "token", "", "GitHub personal access token (overrides GITHUB_TOKEN env var)")
	cmd.Flags().StringVar(&opts.user, "user", "", "GitHub login to summarize (default: the token's account)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to configuration file")
	cmd.Flags().StringVar(&opts.format, "format", "", "Report format: text or json")
	cmd.Flags().StringVar(&opts.ndjsonPath, "ndjson", "", "Also write every entity to this NDJSON file")
	cmd.Flags().StringVar(&opts.metadataPath, "metadata", "", "Also write run metadata to this JSON file")
	cmd.Flags().IntVar(&opts.maxPages, "max-pages", 0, "Fail a collection after this many pages (0: unlimited)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress progress output")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

// loadSummarizeConfig loads the configuration and applies explicitly set
// flags on top of it.
func loadSummarizeConfig(cmd *cobra.Command, opts *summarizeOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("format") {
		cfg.Defaults.OutputFormat = strings.ToLower(opts.format)
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.Defaults.MaxPages = opts.maxPages
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// parseWindow turns the --from/--to flag values into a Window. An empty to
// means now.
func parseWindow(from, to string) (github.Window, error) {
	start, err := github.ParseTimestamp(from)
	if err != nil {
		return github.Window{}, fmt.Errorf("invalid --from: %w", err)
	}

	end := github.Now()
	if to != "" {
		end, err = github.ParseTimestamp(to)
		if err != nil {
			return github.Window{}, fmt.Errorf("invalid --to: %w", err)
		}
	}

	if end.Before(start) {
		return github.Window{}, fmt.Errorf("invalid window: --to %s is before --from %s", end, start)
	}
	return github.Window{From: start, To: end}, nil
}

// engineOptions translates configuration into engine options.
func engineOptions(cfg *config.Config, log *zap.SugaredLogger) []github.EngineOption {
	return []github.EngineOption{
		github.WithEndpoints(cfg.GitHub.APIEndpoint, cfg.GitHub.GraphQLEndpoint),
		github.WithUserAgent(cfg.GitHub.UserAgent),
		github.WithAPIVersion(cfg.GitHub.APIVersion),
		github.WithTimeout(cfg.Defaults.Timeout),
		github.WithLogger(log),
	}
}

// newEngine resolves the token and builds an engine for user.
func newEngine(ctx context.Context, cfg *config.Config, tokenFlag, user string, log *zap.SugaredLogger) (*github.Engine, error) {
	token := cfg.Token(tokenFlag)
	if token == "" {
		return nil, fmt.Errorf("%w: GitHub token not found. Set %s or use --token flag", digesterrors.ErrInvalidToken, cfg.GitHub.TokenEnv)
	}
	return github.NewEngine(ctx, token, user, engineOptions(cfg, log)...)
}

// runSummarize executes the summarize command
func runSummarize(ctx context.Context, cfg *config.Config, opts *summarizeOptions, stdout, stderr io.Writer) error {
	window, err := parseWindow(opts.from, opts.to)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	engine, err := newEngine(ctx, cfg, opts.token, opts.user, log)
	if err != nil {
		return err
	}
	log.Infow("Summarizing activity", "user", engine.Login(), "from", window.From, "to", window.To)

	digest, err := collect(ctx, engine, window, cfg.Defaults.MaxPages, newProgress(stderr, opts.quiet), log)
	if err != nil {
		return err
	}

	if opts.ndjsonPath != "" {
		if err := exportNDJSON(opts.ndjsonPath, digest); err != nil {
			return err
		}
		log.Infow("Wrote NDJSON export", "path", opts.ndjsonPath)
	}
	if opts.metadataPath != "" {
		if err := metadata.SaveMetadata(digest.Metadata, opts.metadataPath); err != nil {
			return err
		}
		log.Infow("Wrote run metadata", "path", opts.metadataPath)
	}

	return output.Render(stdout, cfg.Defaults.OutputFormat, digest)
}

// collect walks the three contribution collections one after another. The
// first failure aborts the run.
func collect(ctx context.Context, q github.Querier, window github.Window, maxPages int, prog *progress, log *zap.SugaredLogger) (*output.Digest, error) {
	tracker := metadata.New()
	digest := &output.Digest{User: q.Login(), Window: window}

	prs, err := collectOne(ctx, q, window, maxPages, tracker, prog, log,
		metadata.CollectionPullRequests, "pull requests", github.FetchPullRequests,
		func(pr github.PullRequest) github.Timestamp { return pr.CreatedAt })
	if err != nil {
		return nil, err
	}
	digest.PullRequests = prs

	issues, err := collectOne(ctx, q, window, maxPages, tracker, prog, log,
		metadata.CollectionIssues, "issues", github.FetchIssues,
		func(issue github.Issue) github.Timestamp { return issue.CreatedAt })
	if err != nil {
		return nil, err
	}
	digest.Issues = issues

	repos, err := collectOne(ctx, q, window, maxPages, tracker, prog, log,
		metadata.CollectionRepositories, "repositories", github.FetchRepositories,
		func(repo github.Repository) github.Timestamp { return repo.CreatedAt })
	if err != nil {
		return nil, err
	}
	digest.Repositories = repos

	digest.Metadata = tracker.GenerateMetadata(version.Version, metadata.RunParams{
		User:     q.Login(),
		From:     window.From.Time(),
		To:       window.To.Time(),
		MaxPages: maxPages,
	})
	return digest, nil
}

// fetchFunc is the shape shared by the collection fetchers.
type fetchFunc[T any] func(ctx context.Context, q github.Querier, w github.Window, opts ...github.PageOption) ([]T, error)

func collectOne[T any](
	ctx context.Context,
	q github.Querier,
	window github.Window,
	maxPages int,
	tracker *metadata.Tracker,
	prog *progress,
	log *zap.SugaredLogger,
	collection, label string,
	fetch fetchFunc[T],
	createdAt func(T) github.Timestamp,
) ([]T, error) {
	prog.start(fmt.Sprintf("Fetching %s...", label))

	count := tracker.PageHook(collection)
	total := 0
	hook := func(page, items int) {
		count(page, items)
		total += items
		prog.update(fmt.Sprintf("Fetching %s... page %d, %d so far", label, page, total))
		log.Debugw("Fetched page", "collection", collection, "page", page, "items", items)
	}

	items, err := fetch(ctx, q, window, github.WithMaxPages(maxPages), github.WithPageHook(hook))
	if err != nil {
		prog.fail(fmt.Sprintf("Failed to fetch %s", label))
		return nil, err
	}

	for _, item := range items {
		tracker.ObserveItem(collection, createdAt(item).Time())
	}
	prog.success(fmt.Sprintf("Fetched %d %s", len(items), label))
	log.Infow("Collection complete", "collection", collection, "items", len(items))
	return items, nil
}

func exportNDJSON(path string, digest *output.Digest) error {
	w, err := output.NewFileWriter(path)
	if err != nil {
		return err
	}
	if err := output.ExportNDJSON(w, digest); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
