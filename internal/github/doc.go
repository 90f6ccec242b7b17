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

// Package github retrieves an account's contributions (issues opened, pull
// requests opened, repositories created or forked) from GitHub's GraphQL API
// within a time window.
//
// The package includes:
//   - An Engine that authenticates, sends GraphQL documents and separates
//     successful payloads from HTTP failures, GraphQL errors and undecodable
//     bodies
//   - A generic Paginate driver that follows endCursor/hasNextPage
//   - FetchIssues, FetchPullRequests and FetchRepositories built on both
//   - A scripted MockQuerier for testing
//
// Basic usage:
//
//	engine, err := github.NewEngine(ctx, token, "")
//	if err != nil {
//	    // Handle error
//	}
//	window := github.Window{From: from, To: github.Now()}
//	issues, err := github.FetchIssues(ctx, engine, window)
//	if err != nil {
//	    // Handle error
//	}
//	for _, issue := range issues {
//	    // Process issue, oldest first
//	}
package github
