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

// Package testutil provides testing helpers shared across the ingestion
// core's test suites.
// Adapted from https://github.com/google/mtail/tree/main/internal
package testutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Aman123lug/StratosphereLinuxIPS/internal/record"
)

// FatalIfErr fails the test with a fatal error if err is not nil.
func FatalIfErr(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatal(err)
	}
}

// Diff reports the difference between a and b, or "" if there is none.
func Diff(a, b any, opts ...cmp.Option) string {
	return cmp.Diff(a, b, opts...)
}

// IgnoreFields builds a cmp.Option that ignores the named fields of typ.
func IgnoreFields(typ any, names ...string) cmp.Option {
	return cmpopts.IgnoreFields(typ, names...)
}

// ExpectNoDiff fails the test and logs both values if a and b differ.
func ExpectNoDiff(tb testing.TB, a, b any, opts ...cmp.Option) bool {
	tb.Helper()
	if diff := Diff(a, b, opts...); diff != "" {
		tb.Errorf("unexpected diff, -want +got:\n%s", diff)
		return false
	}
	return true
}

// TestTempDir creates a temporary directory for use during a test.
func TestTempDir(tb testing.TB) string {
	tb.Helper()
	dir, err := os.MkdirTemp("", "slipsinput-test")
	FatalIfErr(tb, err)
	tb.Cleanup(func() {
		FatalIfErr(tb, os.RemoveAll(dir))
	})
	return dir
}

// OpenLogFile creates a new, empty file that emulates a freshly created
// analyzer log.
func OpenLogFile(tb testing.TB, name string) *os.File {
	tb.Helper()
	f, err := os.OpenFile(filepath.Clean(name), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	FatalIfErr(tb, err)
	return f
}

// WriteString writes str to f and, for a regular file, syncs it so the
// write happens-before this call returns.
func WriteString(tb testing.TB, f io.StringWriter, str string) int {
	tb.Helper()
	n, err := f.WriteString(str)
	FatalIfErr(tb, err)
	if v, ok := f.(*os.File); ok {
		fi, err := v.Stat()
		FatalIfErr(tb, err)
		if fi.Mode().IsRegular() {
			FatalIfErr(tb, v.Sync())
		}
	}
	return n
}

// DrainProfiler reads every record currently available on ch without
// blocking once it is empty.
func DrainProfiler(ch <-chan record.Record) []record.Record {
	var out []record.Record
	for {
		select {
		case r := <-ch:
			out = append(out, r)
		default:
			return out
		}
	}
}
