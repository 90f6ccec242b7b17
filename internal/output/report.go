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

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sirseerhq/sirseer-digest/internal/github"
	"github.com/sirseerhq/sirseer-digest/internal/metadata"
)

// Report formats accepted by Render.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Digest is everything collected for one account over one window.
type Digest struct {
	User         string
	Window       github.Window
	Issues       []github.Issue
	PullRequests []github.PullRequest
	Repositories []github.Repository
	Metadata     *metadata.RunMetadata
}

// Summary holds the headline counts of a digest.
type Summary struct {
	PullRequests       int `json:"pull_requests"`
	MergedPullRequests int `json:"merged_pull_requests"`
	Issues             int `json:"issues"`
	ClosedIssues       int `json:"closed_issues"`
	Repositories       int `json:"repositories"`
	Forks              int `json:"forks"`
}

// Summarize counts the digest entities. Repositories excludes forks.
func Summarize(d *Digest) Summary {
	s := Summary{
		PullRequests: len(d.PullRequests),
		Issues:       len(d.Issues),
	}
	for _, pr := range d.PullRequests {
		if pr.State == github.StateMerged {
			s.MergedPullRequests++
		}
	}
	for _, issue := range d.Issues {
		if issue.State == github.StateClosed {
			s.ClosedIssues++
		}
	}
	for _, repo := range d.Repositories {
		if repo.IsFork() {
			s.Forks++
		} else {
			s.Repositories++
		}
	}
	return s
}

// Render writes d to w in the named format.
func Render(w io.Writer, format string, d *Digest) error {
	switch strings.ToLower(format) {
	case FormatText, "":
		return RenderText(w, d)
	case FormatJSON:
		return RenderJSON(w, d)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// RenderText writes the first-person narrative report: issues, pull
// requests and repositories as pretty JSON, followed by the summary lines.
func RenderText(w io.Writer, d *Digest) error {
	rw := &reportWriter{w: w}
	s := Summarize(d)

	rw.linef("Below is a summary of what I've worked on in GitHub since %s.", d.Window.From)
	rw.linef("")
	rw.linef("First, the issues that I've opened, in JSON:")
	rw.linef("")
	for _, issue := range d.Issues {
		rw.pretty(issue)
	}
	rw.linef("")
	rw.linef("Next, the pull requests that I've opened, in JSON:")
	rw.linef("")
	for _, pr := range d.PullRequests {
		rw.pretty(pr)
	}
	rw.linef("")
	rw.linef("Finally, the repositories that I've created or forked (forks have a non-null 'original_owner' field), in JSON:")
	rw.linef("")
	for _, repo := range d.Repositories {
		rw.pretty(repo)
	}
	rw.linef("")
	rw.linef("In summary, I have:")
	rw.linef("- Opened %d pull requests, of which %d were merged.", s.PullRequests, s.MergedPullRequests)
	rw.linef("- Opened %d issues, of which %d have been closed.", s.Issues, s.ClosedIssues)
	rw.linef("- Created %d repositories (not counting forks).", s.Repositories)

	return rw.err
}

// jsonReport is the document written by RenderJSON.
type jsonReport struct {
	User         string                `json:"user"`
	From         github.Timestamp      `json:"from"`
	To           github.Timestamp      `json:"to"`
	Summary      Summary               `json:"summary"`
	Issues       []github.Issue        `json:"issues"`
	PullRequests []github.PullRequest  `json:"pull_requests"`
	Repositories []github.Repository   `json:"repositories"`
	Metadata     *metadata.RunMetadata `json:"metadata,omitempty"`
}

// RenderJSON writes d as one indented JSON document. Empty collections are
// written as [] rather than null.
func RenderJSON(w io.Writer, d *Digest) error {
	report := jsonReport{
		User:         d.User,
		From:         d.Window.From,
		To:           d.Window.To,
		Summary:      Summarize(d),
		Issues:       nonNil(d.Issues),
		PullRequests: nonNil(d.PullRequests),
		Repositories: nonNil(d.Repositories),
		Metadata:     d.Metadata,
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// ExportNDJSON writes every entity of d to w, issues first, then pull
// requests, then repositories.
func ExportNDJSON(w OutputWriter, d *Digest) error {
	for _, issue := range d.Issues {
		if err := writeKind(w, KindIssue, issue); err != nil {
			return err
		}
	}
	for _, pr := range d.PullRequests {
		if err := writeKind(w, KindPullRequest, pr); err != nil {
			return err
		}
	}
	for _, repo := range d.Repositories {
		if err := writeKind(w, KindRepository, repo); err != nil {
			return err
		}
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// reportWriter keeps the first write error so rendering reads linearly.
type reportWriter struct {
	w   io.Writer
	err error
}

func (rw *reportWriter) linef(format string, args ...interface{}) {
	if rw.err != nil {
		return
	}
	_, rw.err = fmt.Fprintf(rw.w, format+"\n", args...)
}

func (rw *reportWriter) pretty(v interface{}) {
	if rw.err != nil {
		return
	}
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		rw.err = fmt.Errorf("failed to encode report entry: %w", err)
		return
	}
	_, rw.err = io.WriteString(rw.w, buf.String())
}
