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
	"bufio"
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/queue"
	"github.com/Aman123lug/StratosphereLinuxIPS/internal/record"
)

// recordType infers the record type for a flat-file or stdin source, and
// whether the argus inter-line pacing delay applies.
func recordType(path string) (typ string, pacingDelay time.Duration) {
	base := strings.ToLower(filepath.Base(path))
	if strings.Contains(base, "binetflow") || strings.Contains(base, "argus") {
		return "argus", ArgusPacingDelay
	}
	return "zeek", 0
}

// ReadLines is the Single-Stream Reader for stdin and single flat files: it
// determines the record type once, then streams every line as a record,
// applying the argus pacing delay when the source looks like a binetflow
// file.
func ReadLines(ctx context.Context, r io.Reader, typ string, pacingDelay time.Duration, profiler *queue.Profiler, telemetry *queue.Telemetry) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if c, ok := r.(io.Closer); ok {
		// A scan blocked on a read only returns once the reader is closed.
		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stop()
	}
	lines := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return lines, ctx.Err()
		}
		if pacingDelay > 0 {
			select {
			case <-time.After(pacingDelay):
			case <-ctx.Done():
				return lines, ctx.Err()
			}
		}
		line := scanner.Text() + "\n"
		telemetry.Print(0, 3, "> sent line: %s", strings.TrimRight(line, "\n"))
		if err := profiler.Push(ctx, record.New(typ, line)); err != nil {
			return lines, err
		}
		lines++
	}
	if ctx.Err() != nil {
		return lines, ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return lines, err
	}
	return lines, nil
}
