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
	"encoding/json"
	"fmt"
)

// MockResponse is one scripted answer of a MockQuerier. Err is returned
// as-is; otherwise Body, or Payload marshaled to JSON, is run through the
// same decode chain the Engine uses.
type MockResponse struct {
	Payload interface{}
	Body    string
	Err     error
}

// MockCall records one Execute invocation.
type MockCall struct {
	Document  string
	Variables Variables
}

// MockQuerier is a scripted Querier for tests.
type MockQuerier struct {
	// LoginName is returned by Login.
	LoginName string

	// Responses are consumed in order, one per Execute call.
	Responses []MockResponse

	// Calls records every Execute in order.
	Calls []MockCall
}

// NewMockQuerier creates a mock for login answering with responses in order.
func NewMockQuerier(login string, responses ...MockResponse) *MockQuerier {
	return &MockQuerier{
		LoginName: login,
		Responses: responses,
	}
}

// Login implements Querier.
func (m *MockQuerier) Login() string {
	return m.LoginName
}

// Execute implements Querier.
func (m *MockQuerier) Execute(ctx context.Context, document string, vars Variables, out interface{}) error {
	m.Calls = append(m.Calls, MockCall{Document: document, Variables: vars})

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	idx := len(m.Calls) - 1
	if idx >= len(m.Responses) {
		return fmt.Errorf("mock querier: unexpected call %d, only %d responses scripted", idx+1, len(m.Responses))
	}
	resp := m.Responses[idx]

	if resp.Err != nil {
		return &QueryContextError{Query: queryName(document), Err: resp.Err}
	}

	text := []byte(resp.Body)
	if resp.Payload != nil {
		var err error
		text, err = json.Marshal(map[string]interface{}{"data": resp.Payload})
		if err != nil {
			return fmt.Errorf("mock querier: encode payload: %w", err)
		}
	}

	if err := decodeResponse(text, out); err != nil {
		return &QueryContextError{Query: queryName(document), Err: err}
	}
	return nil
}

// Cursors returns the $cursor binding of every recorded call, nil where absent.
func (m *MockQuerier) Cursors() []*string {
	cursors := make([]*string, 0, len(m.Calls))
	for _, call := range m.Calls {
		var cursor *string
		if v, ok := call.Variables[cursorVariable]; ok {
			s := fmt.Sprint(v)
			cursor = &s
		}
		cursors = append(cursors, cursor)
	}
	return cursors
}
