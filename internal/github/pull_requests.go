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

const pullRequestsQuery = `
query PullRequestContributions($user: String!, $from: DateTime!, $to: DateTime!, $first: Int!, $cursor: String) {
  user(login: $user) {
    contributionsCollection(from: $from, to: $to) {
      pullRequestContributions(first: $first, after: $cursor) {
        pageInfo {
          endCursor
          hasNextPage
        }
        nodes {
          pullRequest {
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

type pullRequestsPayload struct {
	User *struct {
		ContributionsCollection *struct {
			PullRequestContributions *connection[pullRequestContribution] `json:"pullRequestContributions"`
		} `json:"contributionsCollection"`
	} `json:"user"`
}

type pullRequestContribution struct {
	PullRequest pullRequestNode `json:"pullRequest"`
}

type pullRequestNode struct {
	Repository repositoryRef  `json:"repository"`
	Title      string         `json:"title"`
	State      LifecycleState `json:"state"`
	CreatedAt  Timestamp      `json:"createdAt"`
	BodyText   string         `json:"bodyText"`
}

// Validate rejects a null user, a missing connection member and nodes
// missing required fields.
func (p *pullRequestsPayload) Validate() error {
	if p.User == nil {
		return errors.New("user is null")
	}
	if p.User.ContributionsCollection == nil {
		return errors.New("contributionsCollection is missing")
	}
	conn := p.User.ContributionsCollection.PullRequestContributions
	if err := conn.validate("pullRequestContributions"); err != nil {
		return err
	}
	for i, n := range conn.Nodes {
		if !n.PullRequest.State.Valid() || n.PullRequest.CreatedAt.IsZero() {
			return fmt.Errorf("pull request node %d is missing state or createdAt", i)
		}
	}
	return nil
}

func (n pullRequestNode) toPullRequest() PullRequest {
	return PullRequest{
		Repository: n.Repository.Name,
		Owner:      n.Repository.Owner.Login,
		Title:      n.Title,
		State:      n.State,
		CreatedAt:  n.CreatedAt,
		BodyText:   n.BodyText,
	}
}

func extractPullRequests(p *pullRequestsPayload) Page[PullRequest] {
	return pageOf(p.User.ContributionsCollection.PullRequestContributions, func(c pullRequestContribution) PullRequest {
		return c.PullRequest.toPullRequest()
	})
}

// FetchPullRequests returns every pull request q's account opened inside w,
// oldest first, ties in server order.
func FetchPullRequests(ctx context.Context, q Querier, w Window, opts ...PageOption) ([]PullRequest, error) {
	prs, err := Paginate(ctx, q, pullRequestsQuery, contributionVariables(q.Login(), w), extractPullRequests, opts...)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(prs, func(a, b PullRequest) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return prs, nil
}
