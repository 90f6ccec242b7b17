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

// Package metadata tracks statistics about a digest run: pages requested and
// items received per collection, the creation-time range of those items, and
// the overall duration. The resulting record is embedded in JSON reports and
// can be saved to a file alongside an NDJSON export.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Tracker collects statistics during a digest run. Create one at the start
// of a run, hand PageHook to each collection walk, report every fetched
// item through ObserveItem, then call GenerateMetadata.
type Tracker struct {
	startTime    time.Time
	apiCallCount int
	collections  map[string]*CollectionStats
}

// New creates a new metadata tracker and initializes it with the current time.
func New() *Tracker {
	return &Tracker{
		startTime:   time.Now(),
		collections: make(map[string]*CollectionStats),
	}
}

func (t *Tracker) stats(collection string) *CollectionStats {
	s, ok := t.collections[collection]
	if !ok {
		s = &CollectionStats{}
		t.collections[collection] = s
	}
	return s
}

// PageHook returns a callback suitable for github.WithPageHook that counts
// each decoded page and its item count against collection.
func (t *Tracker) PageHook(collection string) func(page, items int) {
	s := t.stats(collection)
	return func(page, items int) {
		t.apiCallCount++
		s.Pages++
		s.Items += items
	}
}

// ObserveItem widens the creation-time range of collection to include
// createdAt.
func (t *Tracker) ObserveItem(collection string, createdAt time.Time) {
	s := t.stats(collection)
	if s.Oldest == nil || createdAt.Before(*s.Oldest) {
		c := createdAt
		s.Oldest = &c
	}
	if s.Newest == nil || createdAt.After(*s.Newest) {
		c := createdAt
		s.Newest = &c
	}
}

// APICallCount returns the number of pages recorded so far.
func (t *Tracker) APICallCount() int {
	return t.apiCallCount
}

// GenerateMetadata creates a RunMetadata capturing the run statistics.
// Call this at the end of a successful run.
func (t *Tracker) GenerateMetadata(digestVersion string, params RunParams) *RunMetadata {
	completedAt := time.Now()
	duration := completedAt.Sub(t.startTime)

	collections := make(map[string]CollectionStats, len(t.collections))
	for name, s := range t.collections {
		collections[name] = *s
	}

	return &RunMetadata{
		DigestVersion: digestVersion,
		RunID:         fmt.Sprintf("digest-%d", t.startTime.Unix()),
		Parameters:    params,
		Results: RunResults{
			Collections:  collections,
			Duration:     duration.String(),
			APICallCount: t.apiCallCount,
			StartedAt:    t.startTime,
			CompletedAt:  completedAt,
		},
	}
}

// SaveMetadata persists metadata as indented JSON at path. The file is
// written to a temporary sibling first and renamed into place.
func SaveMetadata(metadata *RunMetadata, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create metadata directory: %w", err)
		}
	}

	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create metadata file: %w", err)
	}

	if err := WriteMetadataToWriter(metadata, file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to close metadata file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		return fmt.Errorf("failed to save metadata file: %w", err)
	}

	return nil
}

// LoadMetadata reads a record previously written by SaveMetadata.
func LoadMetadata(path string) (*RunMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer file.Close()

	var metadata RunMetadata
	if err := json.NewDecoder(file).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &metadata, nil
}

// WriteMetadataToWriter serializes metadata as indented JSON to w.
func WriteMetadataToWriter(metadata *RunMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}
