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
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/sirseer-digest/test/testutil"
)

const from = "2025-06-01T00:00:00Z"

func seededServer(t *testing.T) *testutil.ContributionServer {
	t.Helper()
	s := testutil.NewContributionServer(t, "octocat", "test-token")
	s.AddNodes(testutil.ConnectionPullRequests,
		testutil.NewPullRequestBuilder(1).WithState("MERGED").Build(),
		testutil.NewPullRequestBuilder(2).Build(),
	)
	s.AddNodes(testutil.ConnectionIssues, testutil.NewIssueBuilder(3).WithState("CLOSED").Build())
	s.AddNodes(testutil.ConnectionRepositories,
		testutil.NewRepositoryBuilder("tool").Build(),
		testutil.NewRepositoryBuilder("fork").ForkOf("acme").Build(),
	)
	return s
}

func TestCLI_HelpAndVersion(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}

	result := testutil.RunCLI(t, []string{"--help"}, nil)
	testutil.AssertCLISuccess(t, result)
	assert.Contains(t, result.Stdout, "summarize")
	assert.Contains(t, result.Stdout, "whoami")

	result = testutil.RunCLI(t, []string{"--version"}, nil)
	testutil.AssertCLISuccess(t, result)
	assert.Contains(t, result.Stdout, "sirseer-digest")
}

func TestCLI_TextReport(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	s := seededServer(t)

	result := testutil.RunWithServer(t, s, "--from", from, "--to", "2025-07-01T00:00:00Z")
	testutil.AssertCLISuccess(t, result)

	assert.Contains(t, result.Stdout, "octocat")
	assert.Contains(t, result.Stdout, "- Opened 2 pull requests, of which 1 were merged.")
	assert.Contains(t, result.Stdout, `"title": "issue 3"`)
	assert.Empty(t, result.Stderr)
	assert.Len(t, s.GetRequestHistory(), 3)
}

func TestCLI_JSONWithExports(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	s := seededServer(t)
	dir := t.TempDir()
	ndjsonPath := filepath.Join(dir, "digest.ndjson")
	metadataPath := filepath.Join(dir, "run.json")

	result := testutil.RunWithServer(t, s,
		"--from", from, "--format", "json",
		"--ndjson", ndjsonPath, "--metadata", metadataPath)
	testutil.AssertCLISuccess(t, result)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(result.Stdout), &report))
	assert.Equal(t, "octocat", report["user"])
	assert.Len(t, report["pull_requests"], 2)
	assert.Len(t, report["issues"], 1)
	assert.Len(t, report["repositories"], 2)

	testutil.AssertNDJSONOutput(t, ndjsonPath, map[string]int{
		"issue":        1,
		"pull_request": 2,
		"repository":   2,
	})

	testutil.AssertFileContains(t, metadataPath, `"user": "octocat"`)
	md := testutil.AssertMetadataFile(t, metadataPath)
	results, ok := md["results"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), results["api_calls_made"])
}

func TestCLI_FailedRunWritesNoExports(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	s := seededServer(t)
	s.FailOn(testutil.ConnectionRepositories, 0, testutil.Failure{Status: http.StatusBadGateway, Body: "bad gateway"})
	dir := t.TempDir()
	ndjsonPath := filepath.Join(dir, "digest.ndjson")
	metadataPath := filepath.Join(dir, "run.json")

	result := testutil.RunWithServer(t, s, "--from", from, "--ndjson", ndjsonPath, "--metadata", metadataPath)
	testutil.AssertExitCode(t, result, 4)
	testutil.AssertFileNotExists(t, ndjsonPath)
	testutil.AssertFileNotExists(t, metadataPath)
}

func TestCLI_ConfigPrecedence(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	s := seededServer(t)
	configPath := testutil.WriteConfig(t, t.TempDir(), s, "defaults:\n  output_format: json\n")
	env := map[string]string{"GITHUB_TOKEN": "test-token"}

	// The config file chooses JSON.
	result := testutil.RunCLI(t, []string{"summarize", "-q", "--from", from, "--config", configPath}, env)
	testutil.AssertCLISuccess(t, result)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(result.Stdout), "{"))

	// The environment beats the config file.
	env["SIRSEER_OUTPUT_FORMAT"] = "TEXT"
	result = testutil.RunCLI(t, []string{"summarize", "-q", "--from", from, "--config", configPath}, env)
	testutil.AssertCLISuccess(t, result)
	assert.Contains(t, result.Stdout, "- Opened 2 pull requests")

	// Flags beat both.
	result = testutil.RunCLI(t, []string{"summarize", "-q", "--from", from, "--config", configPath, "--format", "json"}, env)
	testutil.AssertCLISuccess(t, result)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(result.Stdout), "{"))
}

func TestCLI_Whoami(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	s := seededServer(t)

	result := testutil.RunCLI(t, []string{"whoami"}, testutil.ServerEnv(s))
	testutil.AssertCLISuccess(t, result)
	assert.Equal(t, "octocat\n", result.Stdout)
	assert.Equal(t, 1, s.UserLookups())
}

func TestCLI_ExitCodes(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}

	tests := []struct {
		name     string
		setup    func(t *testing.T) ([]string, map[string]string)
		exitCode int
		stderr   string
	}{
		{
			name: "missing from",
			setup: func(t *testing.T) ([]string, map[string]string) {
				s := seededServer(t)
				return []string{"summarize"}, testutil.ServerEnv(s)
			},
			exitCode: 1,
			stderr:   `required flag(s) "from" not set`,
		},
		{
			name: "invalid window",
			setup: func(t *testing.T) ([]string, map[string]string) {
				s := seededServer(t)
				return []string{"summarize", "--from", "yesterday"}, testutil.ServerEnv(s)
			},
			exitCode: 1,
			stderr:   "invalid --from",
		},
		{
			name: "missing token",
			setup: func(t *testing.T) ([]string, map[string]string) {
				return []string{"summarize", "--from", from}, nil
			},
			exitCode: 2,
			stderr:   "GitHub token not found",
		},
		{
			name: "rejected token",
			setup: func(t *testing.T) ([]string, map[string]string) {
				s := seededServer(t)
				env := testutil.ServerEnv(s)
				env["GITHUB_TOKEN"] = "wrong"
				return []string{"summarize", "--from", from}, env
			},
			exitCode: 2,
			stderr:   "failed to get user: 401",
		},
		{
			name: "user lookup unavailable",
			setup: func(t *testing.T) ([]string, map[string]string) {
				server := testutil.NewErrorServer(t, http.StatusServiceUnavailable, `{"message": "Service Unavailable"}`)
				return []string{"summarize", "--from", from}, map[string]string{
					"GITHUB_TOKEN":            "test-token",
					"GITHUB_API_ENDPOINT":     server.URL,
					"GITHUB_GRAPHQL_ENDPOINT": server.URL + "/graphql",
				}
			},
			exitCode: 2,
			stderr:   "failed to get user: 503",
		},
		{
			name: "rate limited",
			setup: func(t *testing.T) ([]string, map[string]string) {
				s := seededServer(t)
				s.SetRateLimit(1)
				return []string{"summarize", "--from", from}, testutil.ServerEnv(s)
			},
			exitCode: 2,
			stderr:   "API rate limit exceeded",
		},
		{
			name: "unreachable",
			setup: func(t *testing.T) ([]string, map[string]string) {
				server := testutil.NewDroppingServer(t)
				return []string{"summarize", "--from", from, "--user", "octocat"}, map[string]string{
					"GITHUB_TOKEN":            "test-token",
					"GITHUB_API_ENDPOINT":     server.URL,
					"GITHUB_GRAPHQL_ENDPOINT": server.URL + "/graphql",
				}
			},
			exitCode: 3,
			stderr:   "failed to send request",
		},
		{
			name: "malformed response",
			setup: func(t *testing.T) ([]string, map[string]string) {
				s := seededServer(t)
				s.FailOn(testutil.ConnectionPullRequests, 0, testutil.Failure{Body: "<html>oops</html>"})
				return []string{"summarize", "--from", from}, testutil.ServerEnv(s)
			},
			exitCode: 4,
			stderr:   "failed to decode response",
		},
		{
			name: "server error",
			setup: func(t *testing.T) ([]string, map[string]string) {
				s := seededServer(t)
				s.FailOn(testutil.ConnectionIssues, 0, testutil.Failure{Status: http.StatusBadGateway, Body: "bad gateway"})
				return []string{"summarize", "--from", from}, testutil.ServerEnv(s)
			},
			exitCode: 4,
			stderr:   "502 response: bad gateway",
		},
		{
			name: "page limit",
			setup: func(t *testing.T) ([]string, map[string]string) {
				s := testutil.NewContributionServer(t, "octocat", "test-token")
				for i := 0; i < 150; i++ {
					s.AddNodes(testutil.ConnectionPullRequests, testutil.NewPullRequestBuilder(i).Build())
				}
				return []string{"summarize", "--from", from, "--max-pages", "1"}, testutil.ServerEnv(s)
			},
			exitCode: 4,
			stderr:   "page limit reached",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, env := tt.setup(t)
			result := testutil.RunCLI(t, append(args, "--quiet"), env)

			testutil.AssertExitCode(t, result, tt.exitCode)
			testutil.AssertCLIError(t, result, tt.stderr)
			assert.Empty(t, result.Stdout)
		})
	}
}
