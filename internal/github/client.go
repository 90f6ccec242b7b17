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

import "context"

// Querier executes GraphQL documents on behalf of a resolved account.
// This interface allows for easy mocking in tests.
type Querier interface {
	// Execute sends document with vars and decodes the "data" member of the
	// response into out, which must be a pointer. Failures are annotated
	// with the first line of document.
	Execute(ctx context.Context, document string, vars Variables, out interface{}) error

	// Login is the account all contribution queries are made for.
	Login() string
}

// Variables are the named GraphQL variable bindings of one request.
// Entries holding nil are not sent; an empty set omits "variables" entirely.
type Variables map[string]interface{}

// With returns a copy of v with name bound to value.
func (v Variables) With(name string, value interface{}) Variables {
	out := make(Variables, len(v)+1)
	for k, val := range v {
		out[k] = val
	}
	out[name] = value
	return out
}

// wire drops nil bindings and reports nil when nothing is left.
func (v Variables) wire() map[string]interface{} {
	var out map[string]interface{}
	for k, val := range v {
		if val == nil {
			continue
		}
		if out == nil {
			out = make(map[string]interface{}, len(v))
		}
		out[k] = val
	}
	return out
}

// Validator is implemented by payloads that need checks beyond JSON shape,
// such as a required object that GitHub returned as null. A failed Validate
// counts as a failed "data" decode.
type Validator interface {
	Validate() error
}

// graphQLRequest is the POST body of a GraphQL call.
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}
