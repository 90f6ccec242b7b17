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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrInvalidToken indicates no usable GitHub token was supplied or GitHub
	// rejected it. Maps to exit code 2.
	ErrInvalidToken = errors.New("invalid github token")

	// ErrAuthResolution indicates the account behind the token could not be
	// resolved during client construction. Maps to exit code 2.
	ErrAuthResolution = errors.New("failed to resolve github account")

	// ErrRateLimit indicates GitHub API rate limit has been exceeded.
	// Maps to exit code 2.
	ErrRateLimit = errors.New("github rate limit exceeded")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrBadResponse indicates GitHub answered with a non-success HTTP status.
	// Maps to exit code 4.
	ErrBadResponse = errors.New("bad response from github")

	// ErrQueryErrors indicates GitHub accepted the query but reported
	// field-level GraphQL errors. Maps to exit code 4.
	ErrQueryErrors = errors.New("graphql query errors")

	// ErrDecode indicates a response body matched neither the data shape nor
	// the errors shape. Maps to exit code 4.
	ErrDecode = errors.New("failed to decode response")

	// ErrPageLimit indicates pagination stopped at the configured page guard
	// before GitHub reported the last page. Maps to exit code 4.
	ErrPageLimit = errors.New("page limit reached")
)
