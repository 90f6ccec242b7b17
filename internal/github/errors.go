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
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	digesterrors "github.com/sirseerhq/sirseer-digest/internal/errors"
)

// AuthResolutionError reports that the /user lookup made while building an
// Engine failed. StatusCode is zero when the failure was not an HTTP status.
type AuthResolutionError struct {
	StatusCode int
	Err        error
}

func (e *AuthResolutionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to get user: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("failed to get user: %v", e.Err)
}

func (e *AuthResolutionError) Unwrap() error { return e.Err }

// Is matches digesterrors.ErrAuthResolution.
func (e *AuthResolutionError) Is(target error) bool {
	return target == digesterrors.ErrAuthResolution
}

// IsAuthError reports whether GitHub rejected the token.
func (e *AuthResolutionError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// BadResponseError is a non-success HTTP status on a query call. Body holds
// the raw response text; it is never decoded.
type BadResponseError struct {
	StatusCode int
	Body       string
}

func (e *BadResponseError) Error() string {
	return fmt.Sprintf("%d response: %s", e.StatusCode, e.Body)
}

// Is matches digesterrors.ErrBadResponse.
func (e *BadResponseError) Is(target error) bool {
	return target == digesterrors.ErrBadResponse
}

// IsAuthError reports a 401, or a 403 that is not a rate limit.
func (e *BadResponseError) IsAuthError() bool {
	if e.StatusCode == http.StatusUnauthorized {
		return true
	}
	return e.StatusCode == http.StatusForbidden && !e.IsRateLimitError()
}

// IsRateLimitError reports a 429, or a 403 whose body mentions the rate limit.
func (e *BadResponseError) IsRateLimitError() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return e.StatusCode == http.StatusForbidden && strings.Contains(strings.ToLower(e.Body), "rate limit")
}

// IsNotFoundError reports a 404.
func (e *BadResponseError) IsNotFoundError() bool {
	return e.StatusCode == http.StatusNotFound
}

// QueryError is a single entry of a GraphQL "errors" array.
// Path elements are field names or list indexes.
type QueryError struct {
	Path    []interface{} `json:"path,omitempty"`
	Message string        `json:"message"`
	Type    string        `json:"type,omitempty"`
}

// UnmarshalJSON requires the message member; an entry without one does not
// match the errors shape.
func (e *QueryError) UnmarshalJSON(data []byte) error {
	var raw struct {
		Path    []interface{} `json:"path"`
		Message *string       `json:"message"`
		Type    string        `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Message == nil {
		return fmt.Errorf("error entry has no message")
	}
	*e = QueryError{Path: raw.Path, Message: *raw.Message, Type: raw.Type}
	return nil
}

func (e QueryError) String() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Path))
	for _, p := range e.Path {
		parts = append(parts, fmt.Sprint(p))
	}
	return fmt.Sprintf("%s: %s", strings.Join(parts, "."), e.Message)
}

// QueryErrors are the field-level errors GitHub reported for an accepted query.
type QueryErrors []QueryError

func (e QueryErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, qe := range e {
		msgs = append(msgs, qe.String())
	}
	return "errors with query: " + strings.Join(msgs, "; ")
}

// Is matches digesterrors.ErrQueryErrors.
func (e QueryErrors) Is(target error) bool {
	return target == digesterrors.ErrQueryErrors
}

// IsNotFoundError reports whether any entry is of type NOT_FOUND.
func (e QueryErrors) IsNotFoundError() bool {
	return e.hasType("NOT_FOUND")
}

// IsRateLimitError reports whether any entry is of type RATE_LIMITED.
func (e QueryErrors) IsRateLimitError() bool {
	return e.hasType("RATE_LIMITED")
}

func (e QueryErrors) hasType(t string) bool {
	for _, qe := range e {
		if qe.Type == t {
			return true
		}
	}
	return false
}

// DecodeError reports a success-status body that matched neither the data
// shape nor the errors shape. Body is the raw response text.
type DecodeError struct {
	Err  error
	Body string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is matches digesterrors.ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == digesterrors.ErrDecode
}

// NetworkError reports that a request never produced an HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("failed to send request: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is matches digesterrors.ErrNetworkFailure.
func (e *NetworkError) Is(target error) bool {
	return target == digesterrors.ErrNetworkFailure
}

// IsNetworkError always reports true.
func (e *NetworkError) IsNetworkError() bool { return true }

// QueryContextError annotates a failure with the query it came from. Query
// is the first non-blank line of the document, trimmed, without a trailing "{".
type QueryContextError struct {
	Query string
	Err   error
}

func (e *QueryContextError) Error() string {
	return fmt.Sprintf("%s: %v", e.Query, e.Err)
}

func (e *QueryContextError) Unwrap() error { return e.Err }

// queryName derives the QueryContextError label from a document.
func queryName(document string) string {
	for _, line := range strings.Split(document, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return strings.TrimSpace(strings.TrimSuffix(line, "{"))
	}
	return "<empty query>"
}
