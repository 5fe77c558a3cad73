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
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/catalog"
	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/queue"
)

// Run is the Source Dispatcher (spec §4.A): it examines d and selects one
// of the four ingestion strategies, running it to completion and returning
// the number of records sent to the profiler queue before the terminal
// sentinel.
func Run(ctx context.Context, d Descriptor, cat *catalog.Catalog, profiler *queue.Profiler, telemetry *queue.Telemetry) (int, error) {
	switch d.Mode {
	case ModeFile, "":
		return dispatchFile(ctx, d, cat, profiler, telemetry)
	case ModeNfdump:
		return dispatchNfdump(ctx, d, profiler, telemetry)
	case ModePcap, ModeInterface:
		return dispatchAnalyzer(ctx, d, cat, profiler, telemetry)
	default:
		return 0, fmt.Errorf("ingest: unsupported mode %q", d.Mode)
	}
}

func dispatchFile(ctx context.Context, d Descriptor, cat *catalog.Catalog, profiler *queue.Profiler, telemetry *queue.Telemetry) (int, error) {
	if d.Target == "" || d.Target == "-" {
		telemetry.Print(3, 0, "receiving flows from the stdin")
		return ReadLines(ctx, os.Stdin, "stdin", 0, profiler, telemetry)
	}

	fi, err := os.Stat(d.Target)
	if err != nil {
		return 0, err
	}
	if fi.IsDir() {
		return dispatchFolder(ctx, d, cat, profiler, telemetry)
	}

	typ, pacing := recordType(d.Target)
	telemetry.Print(3, 0, "receiving flows from the single file %s", d.Target)
	f, err := os.Open(d.Target)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ReadLines(ctx, f, typ, pacing, profiler, telemetry)
}

// dispatchFolder enumerates *.log children of a directory target, registers
// each stem, and hands control to the Tailer with no Watcher or Supervisor
// involved (spec §4.A).
func dispatchFolder(ctx context.Context, d Descriptor, cat *catalog.Catalog, profiler *queue.Profiler, telemetry *queue.Telemetry) (int, error) {
	entries, err := os.ReadDir(d.Target)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		stem := filepath.Join(d.Target, strings.TrimSuffix(e.Name(), ".log"))
		cat.Add(stem)
	}

	var wg sync.WaitGroup
	t := New(ctx, &wg, cat, profiler, telemetry, FolderQuiescence)
	err = t.Run()
	wg.Wait()
	telemetry.Print(1, 0, "we read everything from the folder, no more input, sent %d lines", t.LinesEmitted())
	return t.LinesEmitted(), err
}

func dispatchNfdump(ctx context.Context, d Descriptor, profiler *queue.Profiler, telemetry *queue.Telemetry) (int, error) {
	if err := MaterializeNfdumpCSV(ctx, d.Target, NfdumpOutputPath); err != nil {
		return 0, err
	}
	defer os.Remove(NfdumpOutputPath)

	lines, err := ReadNfdumpCSV(ctx, NfdumpOutputPath, NfdumpQuiescence, profiler, telemetry)
	telemetry.Print(1, 0, "we read everything, no more input, sent %d lines", lines)
	return lines, err
}

func dispatchAnalyzer(ctx context.Context, d Descriptor, cat *catalog.Catalog, profiler *queue.Profiler, telemetry *queue.Telemetry) (int, error) {
	sup := NewSupervisor(WorkingDir, d.AnalyzerBinary)
	if err := sup.Prepare(); err != nil {
		return 0, err
	}

	watcher, err := StartWatcher(ctx, WorkingDir, cat)
	if err != nil {
		return 0, err
	}
	defer watcher.Stop()

	quiescence := PcapQuiescence
	if d.Mode == ModeInterface {
		quiescence = time.Duration(math.MaxInt64)
		if err := sup.StartInterface(ctx, d.Target, d); err != nil {
			return 0, err
		}
	} else {
		if err := sup.StartPcap(ctx, d.Target, d); err != nil {
			return 0, err
		}
	}
	defer sup.Stop()

	// Give the analyzer a moment to produce its first file before the
	// Tailer starts polling an empty catalog.
	select {
	case <-time.After(3 * time.Second):
	case <-ctx.Done():
	}

	var wg sync.WaitGroup
	t := New(ctx, &wg, cat, profiler, telemetry, quiescence)
	err = t.Run()
	wg.Wait()
	telemetry.Print(1, 0, "we read everything, no more input, sent %d lines", t.LinesEmitted())
	return t.LinesEmitted(), err
}
