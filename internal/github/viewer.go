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

	"github.com/shurcooL/graphql"
)

// Profile is the public identity of the account a token belongs to.
type Profile struct {
	Login string
	Name  string
}

// profileQuery is rendered by the graphql client as {viewer{login,name}}.
type profileQuery struct {
	Viewer struct {
		Login graphql.String
		Name  graphql.String
	}
}

// Viewer fetches the token owner's profile. The query goes through the
// typed graphql client over the engine's authenticated transport, so it
// carries the same token, User-Agent and size limit as contribution queries.
// A null name decodes as "".
func (e *Engine) Viewer(ctx context.Context) (Profile, error) {
	var q profileQuery
	if err := graphql.NewClient(e.endpoint, e.httpClient).Query(ctx, &q, nil); err != nil {
		return Profile{}, &QueryContextError{Query: "query Viewer", Err: err}
	}
	return Profile{Login: string(q.Viewer.Login), Name: string(q.Viewer.Name)}, nil
}
