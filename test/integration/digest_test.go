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

package integration

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	digesterrors "github.com/sirseerhq/sirseer-digest/internal/errors"
	"github.com/sirseerhq/sirseer-digest/internal/giterror"
	"github.com/sirseerhq/sirseer-digest/internal/github"
	"github.com/sirseerhq/sirseer-digest/internal/metadata"
	"github.com/sirseerhq/sirseer-digest/internal/output"
	"github.com/sirseerhq/sirseer-digest/test/testutil"
)

func window() github.Window {
	return github.Window{
		From: github.NewTimestamp(testutil.BaseTime),
		To:   github.NewTimestamp(testutil.BaseTime.Add(30 * 24 * time.Hour)),
	}
}

func newEngine(t *testing.T, s *testutil.ContributionServer, opts ...github.EngineOption) *github.Engine {
	t.Helper()
	opts = append([]github.EngineOption{github.WithEndpoints(s.APIEndpoint(), s.GraphQLEndpoint())}, opts...)
	engine, err := github.NewEngine(context.Background(), "test-token", "", opts...)
	require.NoError(t, err)
	return engine
}

// TestIssuesAcrossTwoPages walks 103 issues served 100 per page.
func TestIssuesAcrossTwoPages(t *testing.T) {
	s := testutil.NewContributionServer(t, "octocat", "test-token")
	// Served newest first so the result order comes from sorting.
	for i := 102; i >= 0; i-- {
		s.AddNodes(testutil.ConnectionIssues, testutil.NewIssueBuilder(i).Build())
	}

	issues, err := github.FetchIssues(context.Background(), newEngine(t, s), window())
	require.NoError(t, err)
	require.Len(t, issues, 103)

	for i := 1; i < len(issues); i++ {
		assert.False(t, issues[i].CreatedAt.Before(issues[i-1].CreatedAt), "issue %d out of order", i)
	}
	assert.Equal(t, "issue 0", issues[0].Title)
	assert.Equal(t, "issue 102", issues[102].Title)

	reqs := s.RequestsFor(testutil.ConnectionIssues)
	require.Len(t, reqs, 2)
	assert.Nil(t, reqs[0].Cursor())
	require.NotNil(t, reqs[1].Cursor())
	assert.Equal(t, "cursor:100", *reqs[1].Cursor())
}

func TestFullDigest(t *testing.T) {
	s := testutil.NewContributionServer(t, "octocat", "test-token")
	s.AddNodes(testutil.ConnectionPullRequests,
		testutil.NewPullRequestBuilder(1).WithState("MERGED").WithRepository("acme", "widgets").Build(),
		testutil.NewPullRequestBuilder(2).WithState("CLOSED").Build(),
		testutil.NewPullRequestBuilder(3).WithBody("").Build(),
	)
	s.AddNodes(testutil.ConnectionIssues,
		testutil.NewIssueBuilder(4).WithState("CLOSED").WithTitle("ünïcødé 🚀").Build(),
	)
	s.AddNodes(testutil.ConnectionRepositories,
		testutil.NewRepositoryBuilder("tool").WithDescription("a <small> tool").Build(),
		testutil.NewRepositoryBuilder("fork").ForkOf("acme").WithCreatedAt(testutil.BaseTime.Add(time.Hour)).Build(),
	)

	ctx := context.Background()
	engine := newEngine(t, s)
	assert.Equal(t, "octocat", engine.Login())

	tracker := metadata.New()
	prs, err := github.FetchPullRequests(ctx, engine, window(), github.WithPageHook(tracker.PageHook(metadata.CollectionPullRequests)))
	require.NoError(t, err)
	issues, err := github.FetchIssues(ctx, engine, window(), github.WithPageHook(tracker.PageHook(metadata.CollectionIssues)))
	require.NoError(t, err)
	repos, err := github.FetchRepositories(ctx, engine, window(), github.WithPageHook(tracker.PageHook(metadata.CollectionRepositories)))
	require.NoError(t, err)

	assert.Equal(t, "widgets", prs[0].Repository)
	assert.Equal(t, "acme", prs[0].Owner)
	assert.Equal(t, github.StateMerged, prs[0].State)
	assert.Equal(t, "", prs[2].BodyText)
	assert.Equal(t, "ünïcødé 🚀", issues[0].Title)
	assert.False(t, repos[0].IsFork())
	require.NotNil(t, repos[0].Description)
	assert.Equal(t, "a <small> tool", *repos[0].Description)
	assert.True(t, repos[1].IsFork())

	digest := &output.Digest{
		User:         engine.Login(),
		Window:       window(),
		Issues:       issues,
		PullRequests: prs,
		Repositories: repos,
		Metadata:     tracker.GenerateMetadata("test", metadata.RunParams{User: engine.Login()}),
	}
	assert.Equal(t, output.Summary{
		PullRequests:       3,
		MergedPullRequests: 1,
		Issues:             1,
		ClosedIssues:       1,
		Repositories:       1,
		Forks:              1,
	}, output.Summarize(digest))
	assert.Equal(t, 3, digest.Metadata.Results.APICallCount)

	var text bytes.Buffer
	require.NoError(t, output.RenderText(&text, digest))
	assert.Contains(t, text.String(), `"description": "a <small> tool"`)
	assert.Contains(t, text.String(), "- Opened 3 pull requests, of which 1 were merged.")

	path := filepath.Join(t.TempDir(), "digest.ndjson")
	w, err := output.NewFileWriter(path)
	require.NoError(t, err)
	require.NoError(t, output.ExportNDJSON(w, digest))
	require.NoError(t, w.Close())
	testutil.AssertNDJSONOutput(t, path, map[string]int{"issue": 1, "pull_request": 3, "repository": 2})
}

func TestEmptyWindow(t *testing.T) {
	s := testutil.NewContributionServer(t, "octocat", "test-token")

	repos, err := github.FetchRepositories(context.Background(), newEngine(t, s), window())
	require.NoError(t, err)
	assert.NotNil(t, repos)
	assert.Empty(t, repos)
	assert.Len(t, s.GetRequestHistory(), 1)
}

func TestUnknownUser(t *testing.T) {
	s := testutil.NewContributionServer(t, "octocat", "test-token")
	engine, err := github.NewEngine(context.Background(), "test-token", "ghost",
		github.WithEndpoints(s.APIEndpoint(), s.GraphQLEndpoint()))
	require.NoError(t, err)
	assert.Equal(t, 0, s.UserLookups())

	_, err = github.FetchPullRequests(context.Background(), engine, window())
	require.Error(t, err)

	var qerrs github.QueryErrors
	require.True(t, errors.As(err, &qerrs))
	assert.True(t, qerrs.IsNotFoundError())
	assert.True(t, errors.Is(err, digesterrors.ErrQueryErrors))
	assert.Contains(t, err.Error(), "query PullRequestContributions(")

	inspector := giterror.NewErrorChainInspector(giterror.NewInspector())
	assert.True(t, inspector.IsNotFoundError(err))
	assert.False(t, inspector.IsAuthError(err))
}

func TestBadCredentials(t *testing.T) {
	s := testutil.NewContributionServer(t, "octocat", "test-token")

	_, err := github.NewEngine(context.Background(), "wrong", "",
		github.WithEndpoints(s.APIEndpoint(), s.GraphQLEndpoint()))
	require.Error(t, err)

	var authErr *github.AuthResolutionError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.True(t, errors.Is(err, digesterrors.ErrAuthResolution))
}

func TestUserLookupUnavailable(t *testing.T) {
	server := testutil.NewErrorServer(t, http.StatusServiceUnavailable, `{"message": "Service Unavailable"}`)

	_, err := github.NewEngine(context.Background(), "test-token", "",
		github.WithEndpoints(server.URL, server.URL+"/graphql"))
	require.Error(t, err)

	var authErr *github.AuthResolutionError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusServiceUnavailable, authErr.StatusCode)
	assert.False(t, authErr.IsAuthError())
	assert.True(t, errors.Is(err, digesterrors.ErrAuthResolution))
}

func TestRateLimitMidway(t *testing.T) {
	s := testutil.NewContributionServer(t, "octocat", "test-token")
	for i := 0; i < 250; i++ {
		s.AddNodes(testutil.ConnectionIssues, testutil.NewIssueBuilder(i).Build())
	}
	s.SetRateLimit(2)

	issues, err := github.FetchIssues(context.Background(), newEngine(t, s), window())
	require.Error(t, err)
	assert.Nil(t, issues)

	var bad *github.BadResponseError
	require.True(t, errors.As(err, &bad))
	assert.Equal(t, http.StatusForbidden, bad.StatusCode)
	assert.True(t, bad.IsRateLimitError())
	assert.False(t, bad.IsAuthError())
	assert.Len(t, s.RequestsFor(testutil.ConnectionIssues), 3)
}

func TestMalformedResponseLogsBody(t *testing.T) {
	s := testutil.NewContributionServer(t, "octocat", "test-token")
	s.FailOn(testutil.ConnectionRepositories, 0, testutil.Failure{Body: `{"data": {"user": {"contributionsCollection": `})

	core, logs := observer.New(zap.ErrorLevel)
	engine := newEngine(t, s, github.WithLogger(zap.New(core).Sugar()))

	_, err := github.FetchRepositories(context.Background(), engine, window())
	require.Error(t, err)

	var decodeErr *github.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.True(t, strings.HasPrefix(decodeErr.Body, `{"data"`))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, decodeErr.Body, entries[0].ContextMap()["body"])
}

func TestErrorsWithPartialData(t *testing.T) {
	s := testutil.NewContributionServer(t, "octocat", "test-token")
	body := `{"data":{"user":{"contributionsCollection":{"issueContributions":{"pageInfo":{"endCursor":null,"hasNextPage":false},"nodes":[]}}}},` +
		`"errors":[{"message":"partial outage","path":["user","contributionsCollection"]}]}`
	s.FailOn(testutil.ConnectionIssues, 0, testutil.Failure{Body: body})

	issues, err := github.FetchIssues(context.Background(), newEngine(t, s), window())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestNetworkFailure(t *testing.T) {
	server := testutil.NewDroppingServer(t)

	engine, err := github.NewEngine(context.Background(), "test-token", "octocat",
		github.WithEndpoints(server.URL, server.URL+"/graphql"))
	require.NoError(t, err)

	_, err = github.FetchIssues(context.Background(), engine, window())
	require.Error(t, err)
	assert.True(t, errors.Is(err, digesterrors.ErrNetworkFailure))

	inspector := giterror.NewErrorChainInspector(giterror.NewInspector())
	assert.True(t, inspector.IsNetworkError(err))
}

func TestCanceledContext(t *testing.T) {
	s := testutil.NewContributionServer(t, "octocat", "test-token")
	engine := newEngine(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := github.FetchIssues(ctx, engine, window())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, s.GetRequestHistory())
}
