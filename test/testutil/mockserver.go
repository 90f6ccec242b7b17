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

// Package testutil provides common test helpers for sirseer-digest: a
// GitHub-like contribution server, response builders and CLI runners.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// GraphQLRequest represents a parsed GraphQL request
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
	Operation string                 `json:"-"`
	UserAgent string                 `json:"-"`
	Timestamp time.Time              `json:"-"`
}

// Cursor returns the $cursor variable, or nil when it was not sent.
func (r GraphQLRequest) Cursor() *string {
	c, ok := r.Variables["cursor"].(string)
	if !ok {
		return nil
	}
	return &c
}

// Failure is a scripted HTTP response. A zero Status means 200.
type Failure struct {
	Status int
	Body   string
}

type scriptedFailure struct {
	afterPages int
	failure    Failure
}

// operationConnections maps query operation names to the connection they
// page through.
var operationConnections = map[string]string{
	"IssueContributions":       ConnectionIssues,
	"PullRequestContributions": ConnectionPullRequests,
	"RepositoryContributions":  ConnectionRepositories,
}

// ContributionServer is an httptest server that behaves like the parts of
// the GitHub API the digest uses: GET /user, the viewer profile query and
// the three contribution queries on POST /graphql, paginated by $first and
// $cursor.
type ContributionServer struct {
	*httptest.Server

	login string
	name  string
	token string

	mu                 sync.RWMutex
	nodes              map[string][]map[string]interface{}
	pagesServed        map[string]int
	failures           map[string]scriptedFailure
	rateLimitRemaining int
	requestHistory     []GraphQLRequest
	userLookups        int
}

// NewContributionServer starts a server for login that accepts only token.
// The server is closed when the test ends.
func NewContributionServer(t *testing.T, login, token string) *ContributionServer {
	t.Helper()

	s := &ContributionServer{
		login:              login,
		token:              token,
		nodes:              make(map[string][]map[string]interface{}),
		pagesServed:        make(map[string]int),
		failures:           make(map[string]scriptedFailure),
		rateLimitRemaining: -1,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// APIEndpoint is the REST base URL to configure the engine with.
func (s *ContributionServer) APIEndpoint() string { return s.URL }

// GraphQLEndpoint is the GraphQL URL to configure the engine with.
func (s *ContributionServer) GraphQLEndpoint() string { return s.URL + "/graphql" }

// AddNodes appends contribution nodes to connection.
func (s *ContributionServer) AddNodes(connection string, nodes ...map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[connection] = append(s.nodes[connection], nodes...)
}

// SetName sets the display name the viewer query reports. An empty name is
// reported as null.
func (s *ContributionServer) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// FailOn makes requests for connection answer with f once afterPages pages
// of it have been served.
func (s *ContributionServer) FailOn(connection string, afterPages int, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[connection] = scriptedFailure{afterPages: afterPages, failure: f}
}

// SetRateLimit allows remaining more GraphQL requests before answering 403.
// A negative value means unlimited.
func (s *ContributionServer) SetRateLimit(remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateLimitRemaining = remaining
}

// GetRequestHistory returns a copy of the GraphQL requests received
func (s *ContributionServer) GetRequestHistory() []GraphQLRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := make([]GraphQLRequest, len(s.requestHistory))
	copy(history, s.requestHistory)
	return history
}

// RequestsFor returns the GraphQL requests sent for connection.
func (s *ContributionServer) RequestsFor(connection string) []GraphQLRequest {
	var out []GraphQLRequest
	for _, req := range s.GetRequestHistory() {
		if operationConnections[req.Operation] == connection {
			out = append(out, req)
		}
	}
	return out
}

// UserLookups returns how many times GET /user was called.
func (s *ContributionServer) UserLookups() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userLookups
}

func (s *ContributionServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+s.token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"message":           "Bad credentials",
			"documentation_url": "https://docs.github.com/rest",
		})
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/user":
		s.mu.Lock()
		s.userLookups++
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"login": s.login})
	case r.Method == http.MethodPost && r.URL.Path == "/graphql":
		s.handleGraphQL(w, r)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	}
}

func (s *ContributionServer) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Problems parsing JSON"})
		return
	}
	req.Operation = OperationName(req.Query)
	req.UserAgent = r.Header.Get("User-Agent")
	req.Timestamp = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestHistory = append(s.requestHistory, req)

	if s.rateLimitRemaining == 0 {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"message":           "API rate limit exceeded for user",
			"documentation_url": "https://docs.github.com/graphql/overview/rate-limits-and-node-limits-for-the-graphql-api",
		})
		return
	}
	if s.rateLimitRemaining > 0 {
		s.rateLimitRemaining--
	}

	if strings.HasPrefix(strings.TrimSpace(req.Query), "{viewer") {
		var name interface{}
		if s.name != "" {
			name = s.name
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{
				"viewer": map[string]interface{}{"login": s.login, "name": name},
			},
		})
		return
	}

	connection, ok := operationConnections[req.Operation]
	if !ok {
		writeJSON(w, http.StatusOK, NewResponseBuilder("").
			WithError(fmt.Sprintf("unknown operation %q", req.Operation), "").Build())
		return
	}

	if user, _ := req.Variables["user"].(string); user != s.login {
		writeJSON(w, http.StatusOK, NewResponseBuilder(connection).
			WithNullUser().
			WithError(fmt.Sprintf("Could not resolve to a User with the login of '%s'.", user), "NOT_FOUND", "user").
			Build())
		return
	}

	if f, ok := s.failures[connection]; ok && s.pagesServed[connection] >= f.afterPages {
		status := f.failure.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(f.failure.Body))
		return
	}

	first := 100
	if v, ok := req.Variables["first"].(float64); ok && v > 0 {
		first = int(v)
	}
	offset := 0
	if c := req.Cursor(); c != nil {
		n, err := strconv.Atoi(strings.TrimPrefix(*c, "cursor:"))
		if err != nil {
			writeJSON(w, http.StatusOK, NewResponseBuilder(connection).
				WithError(fmt.Sprintf("`%s` does not appear to be a valid cursor.", *c), "INVALID_CURSOR_ARGUMENTS").Build())
			return
		}
		offset = n
	}

	all := s.nodes[connection]
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + first
	if end > len(all) {
		end = len(all)
	}

	resp := NewResponseBuilder(connection).WithNodes(all[offset:end]...)
	if end > offset {
		resp.WithPagination(end < len(all), fmt.Sprintf("cursor:%d", end))
	}
	s.pagesServed[connection]++
	writeJSON(w, http.StatusOK, resp.Build())
}

// OperationName extracts the operation name from a query document, e.g.
// "IssueContributions" from "query IssueContributions($user: ...".
func OperationName(query string) string {
	for _, line := range strings.Split(query, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(line, "query ")
		if i := strings.IndexAny(line, "({ "); i >= 0 {
			line = line[:i]
		}
		return line
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// NewErrorServer creates a server that answers every request with status
// and body.
func NewErrorServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// NewDroppingServer creates a server that closes every connection without
// answering, which clients observe as a network failure.
func NewDroppingServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Errorf("response writer does not support hijacking")
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Errorf("hijack failed: %v", err)
			return
		}
		_ = conn.Close()
	}))
	t.Cleanup(server.Close)
	return server
}
