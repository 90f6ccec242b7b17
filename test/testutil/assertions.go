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

package testutil

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"
)

// requiredFields lists the keys every exported entity must carry, by kind.
var requiredFields = map[string][]string{
	"issue":        {"repository", "owner", "title", "state", "created_at", "body_text"},
	"pull_request": {"repository", "owner", "title", "state", "created_at", "body_text"},
	"repository":   {"name", "description", "owner", "original_owner", "created_at", "url"},
}

// AssertNDJSONOutput validates that a file contains valid kind-tagged NDJSON
// records and that the number of records per kind matches want.
func AssertNDJSONOutput(t *testing.T, filePath string, want map[string]int) {
	t.Helper()

	file, err := os.Open(filePath)
	if err != nil {
		t.Fatalf("Failed to open output file: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	got := make(map[string]int)
	line := 0

	for scanner.Scan() {
		line++
		if scanner.Text() == "" {
			continue
		}

		var record struct {
			Kind string                 `json:"kind"`
			Data map[string]interface{} `json:"data"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Errorf("Line %d: invalid JSON: %v", line, err)
			continue
		}

		fields, ok := requiredFields[record.Kind]
		if !ok {
			t.Errorf("Line %d: unknown kind %q", line, record.Kind)
			continue
		}
		for _, field := range fields {
			if _, ok := record.Data[field]; !ok {
				t.Errorf("Line %d: missing required field '%s'", line, field)
			}
		}
		got[record.Kind]++
	}

	if err := scanner.Err(); err != nil {
		t.Fatalf("Error reading file: %v", err)
	}

	for kind, n := range want {
		if got[kind] != n {
			t.Errorf("Expected %d %s records, got %d", n, kind, got[kind])
		}
	}
	for kind, n := range got {
		if _, ok := want[kind]; !ok {
			t.Errorf("Unexpected %d %s records", n, kind)
		}
	}
}

// AssertMetadataFile validates a run metadata file and returns its decoded
// contents.
func AssertMetadataFile(t *testing.T, path string) map[string]interface{} {
	t.Helper()

	var metadata map[string]interface{}
	ReadJSON(t, path, &metadata)

	for _, field := range []string{"digest_version", "run_id", "parameters", "results"} {
		if _, ok := metadata[field]; !ok {
			t.Errorf("Metadata missing required field: %s", field)
		}
	}

	results, ok := metadata["results"].(map[string]interface{})
	if !ok {
		t.Fatal("Metadata results is not an object")
	}
	if _, ok := results["collections"].(map[string]interface{}); !ok {
		t.Error("Metadata results missing collections")
	}

	return metadata
}
