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

package record

import "testing"

func TestNewIsRawUnparsed(t *testing.T) {
	r := New("argus", "1,2,3\n")
	if r.Type != "argus" {
		t.Errorf("Type = %q, want argus", r.Type)
	}
	if r.Data.IsParsed {
		t.Error("IsParsed = true, want false for a raw record")
	}
	if r.Data.Raw != "1,2,3\n" {
		t.Errorf("Raw = %q, want %q", r.Data.Raw, "1,2,3\n")
	}
}

func TestNewParsedIsParsed(t *testing.T) {
	obj := map[string]any{"ts": 1.0}
	r := NewParsed("zeek_files/conn", obj)
	if !r.Data.IsParsed {
		t.Error("IsParsed = false, want true for a parsed record")
	}
	if r.Data.Parsed["ts"] != 1.0 {
		t.Errorf("Parsed[ts] = %v, want 1.0", r.Data.Parsed["ts"])
	}
}

func TestStopSentinel(t *testing.T) {
	r := New(Stop, "")
	if r.Type != "stop" {
		t.Errorf("Type = %q, want %q", r.Type, Stop)
	}
}
