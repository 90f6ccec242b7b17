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

package github

import (
	"fmt"
	"time"
)

var testEpoch = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// at returns an ISO-8601 string n hours after testEpoch.
func at(n int) string {
	return testEpoch.Add(time.Duration(n) * time.Hour).Format(time.RFC3339)
}

func strPtr(s string) *string { return &s }

// contributionsPayload builds the "data" member of a contribution query.
// A nil cursor is sent as JSON null.
func contributionsPayload(connection string, nodes []interface{}, cursor *string, hasNext bool) map[string]interface{} {
	var endCursor interface{}
	if cursor != nil {
		endCursor = *cursor
	}
	return map[string]interface{}{
		"user": map[string]interface{}{
			"contributionsCollection": map[string]interface{}{
				connection: map[string]interface{}{
					"pageInfo": map[string]interface{}{
						"endCursor":   endCursor,
						"hasNextPage": hasNext,
					},
					"nodes": nodes,
				},
			},
		},
	}
}

func issueNodeJSON(title, state, createdAt string) map[string]interface{} {
	return map[string]interface{}{
		"issue": map[string]interface{}{
			"repository": map[string]interface{}{
				"name":  "hello-world",
				"owner": map[string]interface{}{"login": "octocat"},
			},
			"title":     title,
			"state":     state,
			"createdAt": createdAt,
			"bodyText":  "body of " + title,
		},
	}
}

func pullRequestNodeJSON(title, state, createdAt string) map[string]interface{} {
	return map[string]interface{}{
		"pullRequest": map[string]interface{}{
			"repository": map[string]interface{}{
				"name":  "spoon-knife",
				"owner": map[string]interface{}{"login": "github"},
			},
			"title":     title,
			"state":     state,
			"createdAt": createdAt,
			"bodyText":  "body of " + title,
		},
	}
}

func repositoryNodeJSON(name string, parentOwner *string, createdAt string) map[string]interface{} {
	var parent interface{}
	if parentOwner != nil {
		parent = map[string]interface{}{
			"owner": map[string]interface{}{"login": *parentOwner},
		}
	}
	return map[string]interface{}{
		"repository": map[string]interface{}{
			"name":        name,
			"description": nil,
			"parent":      parent,
			"owner":       map[string]interface{}{"login": "octocat"},
			"createdAt":   createdAt,
			"url":         "https://github.com/octocat/" + name,
		},
	}
}

// issueNodes builds n OPEN issues titled prefix-0..n-1 created hours apart starting at start.
func issueNodes(prefix string, n, start int) []interface{} {
	nodes := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		nodes = append(nodes, issueNodeJSON(fmt.Sprintf("%s-%d", prefix, i), "OPEN", at(start+i)))
	}
	return nodes
}

func testWindow() Window {
	return Window{
		From: NewTimestamp(testEpoch),
		To:   NewTimestamp(testEpoch.Add(30 * 24 * time.Hour)),
	}
}
