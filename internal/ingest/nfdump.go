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
	"expvar"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/queue"
	"github.com/Aman123lug/StratosphereLinuxIPS/internal/parse"
	"github.com/Aman123lug/StratosphereLinuxIPS/internal/record"
)

// nfdumpInvalidRows counts rows skipped for not starting with a digit,
// surfaced per spec §9 Open Question (c) ("surface a debug-level counter").
var nfdumpInvalidRows = expvar.NewInt("nfdump_invalid_rows_total")

// MaterializeNfdumpCSV invokes the external nfdump tool to dump binary
// flow data at target as timestamped CSV rows into outPath, replacing the
// original's `nfdump -b -N -o csv -q -r <target> > <path>` shell pipeline
// with a structured exec.Cmd whose stdout is redirected in-process.
func MaterializeNfdumpCSV(ctx context.Context, target, outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	cmd := exec.CommandContext(ctx, "nfdump", "-b", "-N", "-o", "csv", "-q", "-r", target)
	cmd.Stdout = out
	return cmd.Run()
}

// ReadNfdumpCSV tails the materialized CSV file, validating that each row
// begins with a digit (the timestamp column) and dropping the rest,
// including the CSV header row. It terminates after quiescence of no new
// valid line.
func ReadNfdumpCSV(ctx context.Context, path string, quiescence time.Duration, profiler *queue.Profiler, telemetry *queue.Telemetry) (int, error) {
	var f *os.File
	var err error
	for {
		f, err = os.Open(path)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		telemetry.Print(0, 1, "the output file for nfdump is still not created")
		select {
		case <-time.After(1 * time.Second):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	defer f.Close()

	r := bufio.NewReader(f)
	lines := 0
	lastActivity := time.Now()
	for {
		if ctx.Err() != nil {
			return lines, ctx.Err()
		}
		line, rerr := r.ReadString('\n')
		if line != "" {
			if parse.ValidNfdumpRow(line) {
				lastActivity = time.Now()
				telemetry.Print(0, 3, "> sent line: %s", line)
				if err := profiler.Push(ctx, record.New("nfdump", line)); err != nil {
					return lines, err
				}
				lines++
			} else {
				nfdumpInvalidRows.Add(1)
			}
		}
		if rerr != nil {
			if rerr != io.EOF {
				return lines, rerr
			}
			if time.Since(lastActivity) >= quiescence {
				return lines, nil
			}
			select {
			case <-time.After(200 * time.Millisecond):
			case <-ctx.Done():
				return lines, ctx.Err()
			}
		}
	}
}
