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

package testutil

import (
	"fmt"
	"time"
)

// BaseTime is the default creation time of built nodes. Node n is created
// n hours after it.
var BaseTime = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// Connection names of the three contribution queries.
const (
	ConnectionIssues       = "issueContributions"
	ConnectionPullRequests = "pullRequestContributions"
	ConnectionRepositories = "repositoryContributions"
)

// ItemBuilder provides a fluent API for issue and pull request
// contribution nodes.
type ItemBuilder struct {
	wrapper    string
	repository string
	owner      string
	title      string
	state      string
	body       string
	createdAt  time.Time
}

// NewIssueBuilder creates an OPEN issue node with defaults derived from n.
func NewIssueBuilder(n int) *ItemBuilder {
	return newItemBuilder("issue", n)
}

// NewPullRequestBuilder creates an OPEN pull request node with defaults
// derived from n.
func NewPullRequestBuilder(n int) *ItemBuilder {
	return newItemBuilder("pullRequest", n)
}

func newItemBuilder(wrapper string, n int) *ItemBuilder {
	return &ItemBuilder{
		wrapper:    wrapper,
		repository: "hello-world",
		owner:      "octocat",
		title:      fmt.Sprintf("%s %d", wrapper, n),
		state:      "OPEN",
		body:       fmt.Sprintf("This is the body of %s %d", wrapper, n),
		createdAt:  BaseTime.Add(time.Duration(n) * time.Hour),
	}
}

// WithRepository sets the owning repository
func (b *ItemBuilder) WithRepository(owner, name string) *ItemBuilder {
	b.owner = owner
	b.repository = name
	return b
}

// WithTitle sets the title
func (b *ItemBuilder) WithTitle(title string) *ItemBuilder {
	b.title = title
	return b
}

// WithState sets the state (OPEN, CLOSED, MERGED). Any string is accepted
// so malformed responses can be built.
func (b *ItemBuilder) WithState(state string) *ItemBuilder {
	b.state = state
	return b
}

// WithBody sets the plain text body
func (b *ItemBuilder) WithBody(body string) *ItemBuilder {
	b.body = body
	return b
}

// WithCreatedAt sets the creation time
func (b *ItemBuilder) WithCreatedAt(t time.Time) *ItemBuilder {
	b.createdAt = t
	return b
}

// Build creates the contribution node.
func (b *ItemBuilder) Build() map[string]interface{} {
	return map[string]interface{}{
		b.wrapper: map[string]interface{}{
			"repository": map[string]interface{}{
				"name":  b.repository,
				"owner": map[string]interface{}{"login": b.owner},
			},
			"title":     b.title,
			"state":     b.state,
			"createdAt": b.createdAt.Format(time.RFC3339),
			"bodyText":  b.body,
		},
	}
}

// RepositoryBuilder provides a fluent API for repository contribution nodes.
type RepositoryBuilder struct {
	name        string
	owner       string
	description *string
	parentOwner *string
	createdAt   time.Time
}

// NewRepositoryBuilder creates a non-fork repository node owned by octocat.
func NewRepositoryBuilder(name string) *RepositoryBuilder {
	return &RepositoryBuilder{
		name:      name,
		owner:     "octocat",
		createdAt: BaseTime,
	}
}

// WithOwner sets the owner login
func (b *RepositoryBuilder) WithOwner(owner string) *RepositoryBuilder {
	b.owner = owner
	return b
}

// WithDescription sets the description
func (b *RepositoryBuilder) WithDescription(description string) *RepositoryBuilder {
	b.description = &description
	return b
}

// ForkOf marks the repository as a fork of a repository owned by owner.
func (b *RepositoryBuilder) ForkOf(owner string) *RepositoryBuilder {
	b.parentOwner = &owner
	return b
}

// WithCreatedAt sets the creation time
func (b *RepositoryBuilder) WithCreatedAt(t time.Time) *RepositoryBuilder {
	b.createdAt = t
	return b
}

// Build creates the contribution node.
func (b *RepositoryBuilder) Build() map[string]interface{} {
	var description, parent interface{}
	if b.description != nil {
		description = *b.description
	}
	if b.parentOwner != nil {
		parent = map[string]interface{}{
			"owner": map[string]interface{}{"login": *b.parentOwner},
		}
	}

	return map[string]interface{}{
		"repository": map[string]interface{}{
			"name":        b.name,
			"description": description,
			"parent":      parent,
			"owner":       map[string]interface{}{"login": b.owner},
			"createdAt":   b.createdAt.Format(time.RFC3339),
			"url":         fmt.Sprintf("https://github.com/%s/%s", b.owner, b.name),
		},
	}
}

// ResponseBuilder builds complete contribution query responses.
type ResponseBuilder struct {
	connection  string
	nodes       []map[string]interface{}
	hasNextPage bool
	endCursor   string
	errors      []map[string]interface{}
	nullUser    bool
}

// NewResponseBuilder creates a builder for the named connection.
func NewResponseBuilder(connection string) *ResponseBuilder {
	return &ResponseBuilder{
		connection: connection,
		nodes:      []map[string]interface{}{},
	}
}

// WithNodes appends contribution nodes to the page
func (b *ResponseBuilder) WithNodes(nodes ...map[string]interface{}) *ResponseBuilder {
	b.nodes = append(b.nodes, nodes...)
	return b
}

// WithPagination sets pagination info. An empty cursor is sent as null.
func (b *ResponseBuilder) WithPagination(hasNext bool, cursor string) *ResponseBuilder {
	b.hasNextPage = hasNext
	b.endCursor = cursor
	return b
}

// WithError adds a GraphQL error entry. errType may be empty.
func (b *ResponseBuilder) WithError(message, errType string, path ...interface{}) *ResponseBuilder {
	entry := map[string]interface{}{
		"message": message,
	}
	if errType != "" {
		entry["type"] = errType
	}
	if len(path) > 0 {
		entry["path"] = path
	}
	b.errors = append(b.errors, entry)
	return b
}

// WithNullUser makes the response carry "data": {"user": null}, the shape
// GitHub returns alongside errors for an unknown login.
func (b *ResponseBuilder) WithNullUser() *ResponseBuilder {
	b.nullUser = true
	return b
}

// Build creates the response. With errors and no null user, the response
// holds only the errors member.
func (b *ResponseBuilder) Build() map[string]interface{} {
	if b.nullUser {
		resp := map[string]interface{}{
			"data": map[string]interface{}{"user": nil},
		}
		if len(b.errors) > 0 {
			resp["errors"] = b.errors
		}
		return resp
	}

	if len(b.errors) > 0 {
		return map[string]interface{}{
			"errors": b.errors,
		}
	}

	var cursor interface{}
	if b.endCursor != "" {
		cursor = b.endCursor
	}

	return map[string]interface{}{
		"data": map[string]interface{}{
			"user": map[string]interface{}{
				"contributionsCollection": map[string]interface{}{
					b.connection: map[string]interface{}{
						"nodes": b.nodes,
						"pageInfo": map[string]interface{}{
							"hasNextPage": b.hasNextPage,
							"endCursor":   cursor,
						},
					},
				},
			},
		},
	}
}
