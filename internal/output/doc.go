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

// Package output renders digest results. Two shapes are supported:
//
//   - Reports: a human readable text narrative or a single JSON document
//     holding every entity, the summary counts and the run metadata.
//   - NDJSON exports: one JSON object per line, each tagged with the kind
//     of entity it carries, suitable for loading into other tools.
//
// Example usage:
//
//	w, err := output.NewFileWriter("activity.ndjson")
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	if err := output.ExportNDJSON(w, digest); err != nil {
//	    return err
//	}
//	fmt.Printf("Wrote %d records\n", w.Count())
package output
