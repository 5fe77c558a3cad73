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
	"sync"
	"testing"
	"time"

	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/catalog"
	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/queue"
	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/waker"
)

func writeLog(t *testing.T, dir, stem, contents string) {
	t.Helper()
	path := filepath.Join(dir, stem+".log")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
}

// TestTailerMergesTwoFilesInTimestampOrder covers the two-file merge and
// tie-break scenario (spec §8 S2/S3): lines from two stems are interleaved
// by ascending timestamp, ties broken by stem name.
func TestTailerMergesTwoFilesInTimestampOrder(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "conn", "2\tfirst-conn\n5\tthird-conn\n")
	writeLog(t, dir, "dns", "1\tfirst-dns\n2\ttie-dns\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat := catalog.New()
	cat.Add(filepath.Join(dir, "conn"))
	cat.Add(filepath.Join(dir, "dns"))

	profiler := queue.NewProfiler(16)
	telemetry := queue.NewTelemetry(16)

	var wg sync.WaitGroup
	tl := New(ctx, &wg, cat, profiler, telemetry, 150*time.Millisecond, PollWaker(waker.NewInterval(ctx, 5*time.Millisecond)))

	done := make(chan error, 1)
	go func() { done <- tl.Run() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tailer did not quiesce")
	}
	wg.Wait()

	var types []string
	for {
		select {
		case r := <-profiler.Chan():
			types = append(types, r.Type)
		default:
			goto done
		}
	}
done:
	want := []string{
		filepath.Join(dir, "dns"),
		filepath.Join(dir, "conn"),
		filepath.Join(dir, "dns"),
		filepath.Join(dir, "conn"),
	}
	if len(types) != len(want) {
		t.Fatalf("emitted %d records %v, want %d %v", len(types), types, len(want), want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("record %d stem = %q, want %q", i, types[i], want[i])
		}
	}
}

// TestTailerSkipsTSVComments covers the comment-dropping scenario (S4): a
// leading '#' line never reaches the profiler, but still counts as activity.
func TestTailerSkipsTSVComments(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "conn", "#fields\tts\tuid\n1\treal-line\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat := catalog.New()
	cat.Add(filepath.Join(dir, "conn"))

	profiler := queue.NewProfiler(4)
	telemetry := queue.NewTelemetry(4)

	var wg sync.WaitGroup
	tl := New(ctx, &wg, cat, profiler, telemetry, 100*time.Millisecond, PollWaker(waker.NewInterval(ctx, 5*time.Millisecond)))
	if err := tl.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	wg.Wait()

	if tl.LinesEmitted() != 1 {
		t.Fatalf("LinesEmitted() = %d, want 1 (comment line must be dropped)", tl.LinesEmitted())
	}
}

// TestTailerQuiescesWithNoFiles covers the quiescence-timeout scenario (S5):
// an empty catalog causes Run to return promptly once quiescence elapses.
func TestTailerQuiescesWithNoFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat := catalog.New()
	profiler := queue.NewProfiler(1)
	telemetry := queue.NewTelemetry(4)

	var wg sync.WaitGroup
	tl := New(ctx, &wg, cat, profiler, telemetry, 20*time.Millisecond, PollWaker(waker.NewInterval(ctx, 5*time.Millisecond)))

	start := time.Now()
	if err := tl.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("tailer took too long to quiesce on an empty catalog")
	}
	if tl.LinesEmitted() != 0 {
		t.Errorf("LinesEmitted() = %d, want 0", tl.LinesEmitted())
	}
}

// TestTailerStopsOnCancellation ensures Run returns promptly (without error)
// once ctx is cancelled, even with files still active.
func TestTailerStopsOnCancellation(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "conn", "1\tline\n")

	ctx, cancel := context.WithCancel(context.Background())
	cat := catalog.New()
	cat.Add(filepath.Join(dir, "conn"))
	profiler := queue.NewProfiler(4)
	telemetry := queue.NewTelemetry(4)

	var wg sync.WaitGroup
	tl := New(ctx, &wg, cat, profiler, telemetry, time.Hour, PollWaker(waker.NewInterval(ctx, 5*time.Millisecond)))

	done := make(chan error, 1)
	go func() { done <- tl.Run() }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tailer did not stop promptly on cancellation")
	}
	wg.Wait()
}
