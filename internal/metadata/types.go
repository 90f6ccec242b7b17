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

// Package metadata types define the structures used for tracking and
// persisting information about digest runs.
package metadata

import (
	"time"
)

// Collection names used as keys in RunResults.Collections.
const (
	CollectionIssues       = "issues"
	CollectionPullRequests = "pull_requests"
	CollectionRepositories = "repositories"
)

// RunMetadata is the complete record of a single digest run: what was
// asked for and what came back.
type RunMetadata struct {
	DigestVersion string     `json:"digest_version"`
	RunID         string     `json:"run_id"`
	Parameters    RunParams  `json:"parameters"`
	Results       RunResults `json:"results"`
}

// RunParams captures the inputs of a run so it can be reproduced.
type RunParams struct {
	User     string    `json:"user"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	MaxPages int       `json:"max_pages,omitempty"`
}

// RunResults holds per-collection statistics and timing for a run.
type RunResults struct {
	Collections  map[string]CollectionStats `json:"collections"`
	Duration     string                     `json:"run_duration"`
	APICallCount int                        `json:"api_calls_made"`
	StartedAt    time.Time                  `json:"started_at"`
	CompletedAt  time.Time                  `json:"completed_at"`
}

// CollectionStats describes one collection walk. Oldest and Newest are the
// creation time range of the items seen and are nil when there were none.
type CollectionStats struct {
	Pages  int        `json:"pages"`
	Items  int        `json:"items"`
	Oldest *time.Time `json:"oldest,omitempty"`
	Newest *time.Time `json:"newest,omitempty"`
}
