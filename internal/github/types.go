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
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayout is the ISO-8601 profile GitHub uses for DateTime scalars.
const timestampLayout = time.RFC3339Nano

// Timestamp is a point in time with a UTC offset. It crosses the wire only
// as an ISO-8601 string, and ParseTimestamp(t.String()) equals t for every
// instant with a four digit year.
type Timestamp struct {
	t time.Time
}

// NewTimestamp wraps t, dropping any monotonic clock reading. A zone offset
// with a seconds part cannot be written in ISO-8601, so such times are
// moved to UTC.
func NewTimestamp(t time.Time) Timestamp {
	t = t.Round(0)
	if _, offset := t.Zone(); offset%60 != 0 {
		t = t.UTC()
	}
	return Timestamp{t: t}
}

// Now returns the current time in UTC.
func Now() Timestamp {
	return NewTimestamp(time.Now().UTC())
}

// ParseTimestamp parses an ISO-8601 date-time such as 2025-06-01T00:00:00Z.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid ISO-8601 timestamp %q: %w", s, err)
	}
	return Timestamp{t: t}, nil
}

// Time returns the underlying time value.
func (ts Timestamp) Time() time.Time { return ts.t }

// IsZero reports whether ts holds no time.
func (ts Timestamp) IsZero() bool { return ts.t.IsZero() }

// Equal reports whether both timestamps denote the same instant.
func (ts Timestamp) Equal(other Timestamp) bool { return ts.t.Equal(other.t) }

// Before reports whether ts is strictly earlier than other.
func (ts Timestamp) Before(other Timestamp) bool { return ts.t.Before(other.t) }

// Compare returns -1, 0 or +1 following instant order.
func (ts Timestamp) Compare(other Timestamp) int { return ts.t.Compare(other.t) }

func (ts Timestamp) String() string {
	return ts.t.Format(timestampLayout)
}

// MarshalJSON encodes the timestamp as an ISO-8601 string.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

// UnmarshalJSON decodes an ISO-8601 string. null is rejected.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("timestamp must be a string, got null")
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// LifecycleState is the OPEN / CLOSED / MERGED status of an issue or pull request.
// The zero value is not a valid state.
type LifecycleState int

const (
	StateOpen LifecycleState = iota + 1
	StateClosed
	StateMerged
)

var stateTokens = map[LifecycleState]string{
	StateOpen:   "OPEN",
	StateClosed: "CLOSED",
	StateMerged: "MERGED",
}

// ParseLifecycleState decodes the exact uppercase wire token. Any other
// token, including a lowercase spelling, is an error.
func ParseLifecycleState(s string) (LifecycleState, error) {
	switch s {
	case "OPEN":
		return StateOpen, nil
	case "CLOSED":
		return StateClosed, nil
	case "MERGED":
		return StateMerged, nil
	}
	return 0, fmt.Errorf("unknown state %q, expecting OPEN, CLOSED or MERGED", s)
}

// Valid reports whether s is one of the three known states.
func (s LifecycleState) Valid() bool {
	_, ok := stateTokens[s]
	return ok
}

func (s LifecycleState) String() string {
	if token, ok := stateTokens[s]; ok {
		return token
	}
	return fmt.Sprintf("LifecycleState(%d)", int(s))
}

// MarshalJSON encodes the state as its wire token.
func (s LifecycleState) MarshalJSON() ([]byte, error) {
	token, ok := stateTokens[s]
	if !ok {
		return nil, fmt.Errorf("cannot encode invalid state %d", int(s))
	}
	return json.Marshal(token)
}

// UnmarshalJSON decodes a wire token. null and unknown tokens are rejected.
func (s *LifecycleState) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("state must be a string, got null")
	}
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("state must be a string: %w", err)
	}
	parsed, err := ParseLifecycleState(token)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Window is the time range passed to GitHub's contributionsCollection.
// Boundary semantics belong to GitHub; no local filtering is applied.
type Window struct {
	From Timestamp
	To   Timestamp
}

// Issue is an issue opened by the account inside the window.
type Issue struct {
	Repository string         `json:"repository"`
	Owner      string         `json:"owner"`
	Title      string         `json:"title"`
	State      LifecycleState `json:"state"`
	CreatedAt  Timestamp      `json:"created_at"`
	BodyText   string         `json:"body_text"`
}

// PullRequest is a pull request opened by the account inside the window.
type PullRequest struct {
	Repository string         `json:"repository"`
	Owner      string         `json:"owner"`
	Title      string         `json:"title"`
	State      LifecycleState `json:"state"`
	CreatedAt  Timestamp      `json:"created_at"`
	BodyText   string         `json:"body_text"`
}

// Repository is a repository created or forked by the account inside the window.
// OriginalOwner is set only for forks and names the parent's owner.
type Repository struct {
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	Owner         string    `json:"owner"`
	OriginalOwner *string   `json:"original_owner"`
	CreatedAt     Timestamp `json:"created_at"`
	URL           string    `json:"url"`
}

// IsFork reports whether the repository has a recorded parent.
func (r Repository) IsFork() bool {
	return r.OriginalOwner != nil
}

// pageSize is the fixed number of items requested per page.
const pageSize = 100
