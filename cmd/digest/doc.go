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

// Package main implements the sirseer-digest command-line interface.
// The tool collects the issues, pull requests and repositories an account
// created on GitHub within a time window and renders them as a report.
//
// The CLI supports:
//   - A text narrative or a JSON document on stdout (--format)
//   - An NDJSON export of every entity (--ndjson)
//   - A run metadata file (--metadata)
//   - An explicit account (--user) or the token's own account
//   - Configuration via .sirseer-digest.yaml, .env and environment variables
//
// Usage:
//
//	sirseer-digest summarize --from <timestamp> [flags]
//	sirseer-digest whoami
//
// Example:
//
//	export GITHUB_TOKEN=your_token
//	sirseer-digest summarize --from 2025-06-01T00:00:00Z --format json
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Authentication, rate limit or not-found error
//   - 3: Network error
//   - 4: Query, decode or page limit failure
package main
