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

package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/catalog"
	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/queue"
)

func TestRunDispatchesFlatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "capture.binetflow")
	if err := os.WriteFile(path, []byte("flow a\nflow b\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cat := catalog.New()
	profiler := queue.NewProfiler(8)
	telemetry := queue.NewTelemetry(8)

	d := Descriptor{Mode: ModeFile, Target: path}
	lines, err := Run(context.Background(), d, cat, profiler, telemetry)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if lines != 2 {
		t.Fatalf("lines = %d, want 2", lines)
	}
	if r := <-profiler.Chan(); r.Type != "argus" {
		t.Errorf("Type = %q, want argus for a .binetflow target", r.Type)
	}
}

func TestRunDispatchesFolder(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "conn", "1\ta\n")
	writeLog(t, dir, "weird", "1\tb\n")

	cat := catalog.New()
	profiler := queue.NewProfiler(8)
	telemetry := queue.NewTelemetry(8)

	d := Descriptor{Mode: ModeFile, Target: dir}
	lines, err := Run(context.Background(), d, cat, profiler, telemetry)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if lines != 1 {
		t.Fatalf("lines = %d, want 1 (weird.log is excluded)", lines)
	}
}

func TestRunRejectsUnsupportedMode(t *testing.T) {
	cat := catalog.New()
	profiler := queue.NewProfiler(1)
	telemetry := queue.NewTelemetry(1)

	d := Descriptor{Mode: "bogus"}
	if _, err := Run(context.Background(), d, cat, profiler, telemetry); err == nil {
		t.Fatal("expected an error for an unsupported mode")
	}
}
