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

const repositoriesQuery = `
query RepositoryContributions($user: String!, $from: DateTime!, $to: DateTime!, $first: Int!, $cursor: String) {
  user(login: $user) {
    contributionsCollection(from: $from, to: $to) {
      repositoryContributions(first: $first, after: $cursor) {
        pageInfo {
          endCursor
          hasNextPage
        }
        nodes {
          repository {
            name
            description
            parent { owner { login } }
            owner { login }
            createdAt
            url
          }
        }
      }
    }
  }
}`

type repositoriesPayload struct {
	User *struct {
		ContributionsCollection *struct {
			RepositoryContributions *connection[repositoryContribution] `json:"repositoryContributions"`
		} `json:"contributionsCollection"`
	} `json:"user"`
}

type repositoryContribution struct {
	Repository repositoryNode `json:"repository"`
}

type repositoryNode struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Parent      *struct {
		Owner ownerRef `json:"owner"`
	} `json:"parent"`
	Owner     ownerRef  `json:"owner"`
	CreatedAt Timestamp `json:"createdAt"`
	URL       string    `json:"url"`
}

// Validate rejects a null user, a missing connection member and nodes
// missing createdAt.
func (p *repositoriesPayload) Validate() error {
	if p.User == nil {
		return errors.New("user is null")
	}
	if p.User.ContributionsCollection == nil {
		return errors.New("contributionsCollection is missing")
	}
	conn := p.User.ContributionsCollection.RepositoryContributions
	if err := conn.validate("repositoryContributions"); err != nil {
		return err
	}
	for i, n := range conn.Nodes {
		if n.Repository.CreatedAt.IsZero() {
			return fmt.Errorf("repository node %d is missing createdAt", i)
		}
	}
	return nil
}

func (n repositoryNode) toRepository() Repository {
	repo := Repository{
		Name:        n.Name,
		Description: n.Description,
		Owner:       n.Owner.Login,
		CreatedAt:   n.CreatedAt,
		URL:         n.URL,
	}
	if n.Parent != nil {
		original := n.Parent.Owner.Login
		repo.OriginalOwner = &original
	}
	return repo
}

func extractRepositories(p *repositoriesPayload) Page[Repository] {
	return pageOf(p.User.ContributionsCollection.RepositoryContributions, func(c repositoryContribution) Repository {
		return c.Repository.toRepository()
	})
}

// FetchRepositories returns every repository q's account created or forked
// inside w, oldest first. Forks carry the parent's owner in OriginalOwner.
func FetchRepositories(ctx context.Context, q Querier, w Window, opts ...PageOption) ([]Repository, error) {
	repos, err := Paginate(ctx, q, repositoriesQuery, contributionVariables(q.Login(), w), extractRepositories, opts...)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(repos, func(a, b Repository) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return repos, nil
}
