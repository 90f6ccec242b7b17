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
	"fmt"

	digesterrors "github.com/sirseerhq/sirseer-digest/internal/errors"
)

// cursorVariable is the document variable carrying the previous page's endCursor.
const cursorVariable = "cursor"

// Page is one response projected by a fetcher: its items in server order
// plus the pageInfo continuation metadata.
type Page[T any] struct {
	Items       []T
	EndCursor   *string
	HasNextPage bool
}

type pageConfig struct {
	maxPages int
	onPage   func(page, items int)
}

// PageOption customizes Paginate.
type PageOption func(*pageConfig)

// WithMaxPages stops pagination with ErrPageLimit once n pages have been
// fetched and GitHub still reports more. Zero or less means no limit.
func WithMaxPages(n int) PageOption {
	return func(c *pageConfig) { c.maxPages = n }
}

// WithPageHook is called after each page with its 1-based number and item count.
func WithPageHook(fn func(page, items int)) PageOption {
	return func(c *pageConfig) { c.onPage = fn }
}

// Paginate runs document repeatedly, threading each page's endCursor into
// the next request as $cursor, until a page reports hasNextPage false or
// carries no endCursor. Items are accumulated in request order. The first
// failure aborts the run and discards everything fetched so far.
func Paginate[P any, T any](ctx context.Context, q Querier, document string, vars Variables, extract func(*P) Page[T], opts ...PageOption) ([]T, error) {
	var cfg pageConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	items := make([]T, 0)
	var cursor *string

	for pageNum := 1; ; pageNum++ {
		if cfg.maxPages > 0 && pageNum > cfg.maxPages {
			return nil, &QueryContextError{
				Query: queryName(document),
				Err:   fmt.Errorf("stopped after %d pages: %w", cfg.maxPages, digesterrors.ErrPageLimit),
			}
		}

		pageVars := vars
		if cursor != nil {
			pageVars = vars.With(cursorVariable, *cursor)
		}

		var payload P
		if err := q.Execute(ctx, document, pageVars, &payload); err != nil {
			return nil, err
		}

		page := extract(&payload)
		items = append(items, page.Items...)

		if cfg.onPage != nil {
			cfg.onPage(pageNum, len(page.Items))
		}

		// Both checks matter: a cursor with hasNextPage false is the normal
		// end, and hasNextPage true without a cursor cannot be followed.
		if !page.HasNextPage || page.EndCursor == nil {
			return items, nil
		}
		cursor = page.EndCursor
	}
}

// contributionVariables are the fixed bindings shared by every contribution query.
func contributionVariables(login string, w Window) Variables {
	return Variables{
		"user":  login,
		"from":  w.From,
		"to":    w.To,
		"first": pageSize,
	}
}

// pageInfo is GitHub's connection pagination metadata. hasNextPage is
// required; endCursor may be null.
type pageInfo struct {
	EndCursor   *string `json:"endCursor"`
	HasNextPage *bool   `json:"hasNextPage"`
}

// connection is the paginated member of a contribution query. A missing
// pageInfo or nodes member fails validate, so the body is not mistaken for
// an empty page.
type connection[N any] struct {
	PageInfo *pageInfo `json:"pageInfo"`
	Nodes    []N       `json:"nodes"`
}

func (c *connection[N]) validate(name string) error {
	switch {
	case c == nil:
		return fmt.Errorf("%s is missing", name)
	case c.PageInfo == nil:
		return fmt.Errorf("%s.pageInfo is missing", name)
	case c.PageInfo.HasNextPage == nil:
		return fmt.Errorf("%s.pageInfo.hasNextPage is missing", name)
	case c.Nodes == nil:
		return fmt.Errorf("%s.nodes is missing", name)
	}
	return nil
}

// pageOf projects every node of a validated connection.
func pageOf[N any, T any](c *connection[N], project func(N) T) Page[T] {
	items := make([]T, 0, len(c.Nodes))
	for _, node := range c.Nodes {
		items = append(items, project(node))
	}
	return Page[T]{
		Items:       items,
		EndCursor:   c.PageInfo.EndCursor,
		HasNextPage: *c.PageInfo.HasNextPage,
	}
}

type ownerRef struct {
	Login string `json:"login"`
}

// repositoryRef is the repository an issue or pull request belongs to.
type repositoryRef struct {
	Name  string   `json:"name"`
	Owner ownerRef `json:"owner"`
}
