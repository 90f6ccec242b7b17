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
	"io"
	"testing"
	"time"

	"github.com/sirseerhq/sirseer-digest/internal/github"
)

func samplePullRequest(n int) github.PullRequest {
	return github.PullRequest{
		Repository: "sirseer-digest",
		Owner:      "sirseerhq",
		Title:      "feat: summarize contributions across issues, pull requests and repositories",
		State:      github.StateMerged,
		CreatedAt:  github.NewTimestamp(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Hour)),
		BodyText:   "Adds a digest command that walks the contribution collections of an account and renders them as a report.",
	}
}

func sampleDigest(n int) *Digest {
	d := &Digest{User: "octocat"}
	for i := 0; i < n; i++ {
		d.PullRequests = append(d.PullRequests, samplePullRequest(i))
	}
	return d
}

func BenchmarkWriter_Write(b *testing.B) {
	w := NewWriter(io.Discard)
	record := Record{Kind: KindPullRequest, Data: samplePullRequest(1)}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := w.Write(record); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExportNDJSON(b *testing.B) {
	benchmarks := []struct {
		name  string
		count int
	}{
		{"100PRs", 100},
		{"1000PRs", 1000},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			d := sampleDigest(bm.count)
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if err := ExportNDJSON(NewWriter(io.Discard), d); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRenderText(b *testing.B) {
	d := sampleDigest(500)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := RenderText(io.Discard, d); err != nil {
			b.Fatal(err)
		}
	}
}
