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

package main

import (
	"io"

	"github.com/pterm/pterm"
)

// progress reports collection progress on stderr. A quiet progress prints
// nothing.
type progress struct {
	out     io.Writer
	quiet   bool
	spinner *pterm.SpinnerPrinter
}

func newProgress(out io.Writer, quiet bool) *progress {
	return &progress{out: out, quiet: quiet}
}

func (p *progress) start(text string) {
	if p.quiet {
		return
	}
	spinner, err := pterm.DefaultSpinner.
		WithWriter(p.out).
		WithRemoveWhenDone(false).
		Start(text)
	if err != nil {
		return
	}
	p.spinner = spinner
}

func (p *progress) update(text string) {
	if p.spinner != nil {
		p.spinner.UpdateText(text)
	}
}

func (p *progress) success(text string) {
	if p.spinner != nil {
		p.spinner.Success(text)
		p.spinner = nil
	}
}

func (p *progress) fail(text string) {
	if p.spinner != nil {
		p.spinner.Fail(text)
		p.spinner = nil
	}
}

func (p *progress) info(text string) {
	if p.quiet {
		return
	}
	pterm.Info.WithWriter(p.out).Println(text)
}
