//
// Copyright (C) 2022 IBM Corporation.
//
// Authors:
// Frederico Araujo <frederico.araujo@ibm.com>
// Teryl Taylor <terylt@ibm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package catalog implements the authoritative set of log-file stems under
// ingestion. It is the only structure shared between the Watcher (writer)
// and the Tailer (reader) goroutines, so every operation here must be safe
// for concurrent add/list.
package catalog

import (
	"sort"
	"strings"
	"sync"
)

// excluded names carry no flow data and are never added to the catalog.
var excludedSubstrings = []string{
	"capture_loss",
	"loaded_scripts",
	"packet_filter",
	"stats",
	"weird",
	"reporter",
}

// Excluded reports whether stem names a file that the catalog ignores.
func Excluded(stem string) bool {
	for _, s := range excludedSubstrings {
		if strings.Contains(stem, s) {
			return true
		}
	}
	return false
}

// Catalog is the thread-safe registry of log-file stems currently under
// ingestion. Add is idempotent; List returns a sorted snapshot so callers
// iterate in a deterministic order.
type Catalog struct {
	mu    sync.RWMutex
	stems map[string]struct{}
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{stems: make(map[string]struct{})}
}

// Add registers stem in the catalog. It is a no-op if stem is excluded or
// already present. Returns true if this call actually added the stem.
func (c *Catalog) Add(stem string) bool {
	if Excluded(stem) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.stems[stem]; ok {
		return false
	}
	c.stems[stem] = struct{}{}
	return true
}

// List returns a sorted snapshot of all known stems.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.stems))
	for s := range c.stems {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of known stems.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stems)
}
