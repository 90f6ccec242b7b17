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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	digesterrors "github.com/sirseerhq/sirseer-digest/internal/errors"
	"github.com/sirseerhq/sirseer-digest/pkg/version"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	defaultAPIEndpoint     = "https://api.github.com"
	defaultGraphQLEndpoint = "https://api.github.com/graphql"
	defaultAPIVersion      = "2022-11-28"
)

// Engine is the single chokepoint every GraphQL request passes through. It
// owns the authenticated HTTP client and the resolved account, both fixed at
// construction, and turns each response into a payload or one of the typed
// failures in errors.go.
type Engine struct {
	httpClient *http.Client
	endpoint   string
	login      string
	log        *zap.SugaredLogger
}

type engineConfig struct {
	apiEndpoint     string
	graphqlEndpoint string
	userAgent       string
	apiVersion      string
	timeout         time.Duration
	base            http.RoundTripper
	log             *zap.SugaredLogger
}

// EngineOption customizes NewEngine.
type EngineOption func(*engineConfig)

// WithEndpoints points the engine at a GitHub Enterprise or test server.
// Empty values keep the github.com defaults.
func WithEndpoints(apiEndpoint, graphqlEndpoint string) EngineOption {
	return func(c *engineConfig) {
		if apiEndpoint != "" {
			c.apiEndpoint = apiEndpoint
		}
		if graphqlEndpoint != "" {
			c.graphqlEndpoint = graphqlEndpoint
		}
	}
}

// WithUserAgent overrides the client identification header.
func WithUserAgent(userAgent string) EngineOption {
	return func(c *engineConfig) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithAPIVersion sets the X-GitHub-Api-Version sent on the user lookup.
func WithAPIVersion(apiVersion string) EngineOption {
	return func(c *engineConfig) {
		if apiVersion != "" {
			c.apiVersion = apiVersion
		}
	}
}

// WithTimeout bounds each request. Zero leaves the transport default in place.
func WithTimeout(d time.Duration) EngineOption {
	return func(c *engineConfig) { c.timeout = d }
}

// WithTransport replaces the base round tripper under auth and identification.
func WithTransport(rt http.RoundTripper) EngineOption {
	return func(c *engineConfig) { c.base = rt }
}

// WithLogger sets the engine's logger.
func WithLogger(log *zap.SugaredLogger) EngineOption {
	return func(c *engineConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// NewEngine builds an authenticated engine. When login is empty the account
// owning token is looked up once through the REST /user endpoint; a failed
// lookup returns an *AuthResolutionError.
func NewEngine(ctx context.Context, token, login string, opts ...EngineOption) (*Engine, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is empty: %w", digesterrors.ErrInvalidToken)
	}

	cfg := engineConfig{
		apiEndpoint:     defaultAPIEndpoint,
		graphqlEndpoint: defaultGraphQLEndpoint,
		userAgent:       version.UserAgent(),
		apiVersion:      defaultAPIVersion,
		base:            http.DefaultTransport,
		log:             zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base: &agentTransport{
				userAgent: cfg.userAgent,
				base:      cfg.base,
			},
		},
		Timeout: cfg.timeout,
	}

	e := &Engine{
		httpClient: httpClient,
		endpoint:   cfg.graphqlEndpoint,
		login:      login,
		log:        cfg.log,
	}

	if e.login == "" {
		resolved, err := fetchLogin(ctx, httpClient, cfg.apiEndpoint, cfg.apiVersion)
		if err != nil {
			return nil, err
		}
		e.login = resolved
		e.log.Debugw("Resolved GitHub account from token", "login", resolved)
	}

	return e, nil
}

// fetchLogin asks the REST API which account owns the token. GraphQL cannot
// answer this without already knowing the login.
func fetchLogin(ctx context.Context, client *http.Client, apiEndpoint, apiVersion string) (string, error) {
	url := strings.TrimSuffix(apiEndpoint, "/") + "/user"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &AuthResolutionError{Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	resp, err := client.Do(req)
	if err != nil {
		return "", &AuthResolutionError{Err: &NetworkError{Err: err}}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &AuthResolutionError{StatusCode: resp.StatusCode}
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", &AuthResolutionError{Err: fmt.Errorf("failed to decode user response: %w", err)}
	}
	if user.Login == "" {
		return "", &AuthResolutionError{Err: errors.New("failed to decode user response: missing login")}
	}

	return user.Login, nil
}

// Login returns the account resolved at construction.
func (e *Engine) Login() string {
	return e.login
}

// Execute implements Querier. Every failure is wrapped in a
// *QueryContextError naming the query.
func (e *Engine) Execute(ctx context.Context, document string, vars Variables, out interface{}) error {
	if err := e.execute(ctx, document, vars, out); err != nil {
		return &QueryContextError{Query: queryName(document), Err: err}
	}
	return nil
}

func (e *Engine) execute(ctx context.Context, document string, vars Variables, out interface{}) error {
	body, err := json.Marshal(graphQLRequest{Query: document, Variables: vars.wire()})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	// Read the whole body before decoding so it can be reported verbatim.
	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to obtain string response: %w", err)
	}

	e.log.Debugw("GraphQL request completed",
		"query", queryName(document),
		"status", resp.StatusCode,
		"bytes", len(text))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &BadResponseError{StatusCode: resp.StatusCode, Body: string(text)}
	}

	err = decodeResponse(text, out)
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		e.log.Errorw("Response matched neither the data nor the errors shape",
			"query", queryName(document),
			"body", decodeErr.Body)
	}
	return err
}

// decodeResponse tries the expected {"data": ...} shape first, then the
// {"errors": [...]} shape, and only then gives up with a *DecodeError.
// Top-level member names are matched exactly.
func decodeResponse(text []byte, out interface{}) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(text, &members); err != nil {
		return &DecodeError{Err: err, Body: string(text)}
	}

	dataErr := decodeData(members, out)
	if dataErr == nil {
		return nil
	}

	if raw, ok := members["errors"]; ok {
		var qerrs QueryErrors
		if err := json.Unmarshal(raw, &qerrs); err == nil && qerrs != nil {
			return qerrs
		}
	}

	return &DecodeError{Err: dataErr, Body: string(text)}
}

func decodeData(members map[string]json.RawMessage, out interface{}) error {
	data, ok := members["data"]
	if !ok || bytes.Equal(data, []byte("null")) {
		return errors.New("missing field `data`")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return err
	}
	if v, ok := out.(Validator); ok {
		return v.Validate()
	}
	return nil
}
