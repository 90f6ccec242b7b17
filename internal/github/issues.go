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
	"context"
	"errors"
	"fmt"
	"slices"
)

const issuesQuery = `
query IssueContributions($user: String!, $from: DateTime!, $to: DateTime!, $first: Int!, $cursor: String) {
  user(login: $user) {
    contributionsCollection(from: $from, to: $to) {
      issueContributions(first: $first, after: $cursor) {
        pageInfo {
          endCursor
          hasNextPage
        }
        nodes {
          issue {
            repository {
              name
              owner { login }
            }
            title
            state
            createdAt
            bodyText
          }
        }
      }
    }
  }
}`

type issuesPayload struct {
	User *struct {
		ContributionsCollection *struct {
			IssueContributions *connection[issueContribution] `json:"issueContributions"`
		} `json:"contributionsCollection"`
	} `json:"user"`
}

type issueContribution struct {
	Issue issueNode `json:"issue"`
}

type issueNode struct {
	Repository repositoryRef  `json:"repository"`
	Title      string         `json:"title"`
	State      LifecycleState `json:"state"`
	CreatedAt  Timestamp      `json:"createdAt"`
	BodyText   string         `json:"bodyText"`
}

// Validate rejects a null user, a missing connection member and nodes
// missing required fields.
func (p *issuesPayload) Validate() error {
	if p.User == nil {
		return errors.New("user is null")
	}
	if p.User.ContributionsCollection == nil {
		return errors.New("contributionsCollection is missing")
	}
	conn := p.User.ContributionsCollection.IssueContributions
	if err := conn.validate("issueContributions"); err != nil {
		return err
	}
	for i, n := range conn.Nodes {
		if !n.Issue.State.Valid() || n.Issue.CreatedAt.IsZero() {
			return fmt.Errorf("issue node %d is missing state or createdAt", i)
		}
	}
	return nil
}

func (n issueNode) toIssue() Issue {
	return Issue{
		Repository: n.Repository.Name,
		Owner:      n.Repository.Owner.Login,
		Title:      n.Title,
		State:      n.State,
		CreatedAt:  n.CreatedAt,
		BodyText:   n.BodyText,
	}
}

func extractIssues(p *issuesPayload) Page[Issue] {
	return pageOf(p.User.ContributionsCollection.IssueContributions, func(c issueContribution) Issue {
		return c.Issue.toIssue()
	})
}

// FetchIssues returns every issue q's account opened inside w, oldest first.
// Issues created at the same instant keep the order GitHub returned them in.
func FetchIssues(ctx context.Context, q Querier, w Window, opts ...PageOption) ([]Issue, error) {
	issues, err := Paginate(ctx, q, issuesQuery, contributionVariables(q.Login(), w), extractIssues, opts...)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(issues, func(a, b Issue) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return issues, nil
}
