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

// Package record defines the envelope delivered to the profiler queue: a
// source tag plus a tagged-union payload. It has no dependencies on the
// ingestion machinery so that both the queue package and the ingest
// package can depend on it without forming a cycle.
package record

// Stop is the terminal sentinel value pushed onto the profiler queue to mark
// end of stream. Downstream treats this string, and only this string, as
// end-of-stream.
const Stop = "stop"

// Payload is the tagged union of record bodies a Record may carry: either a
// raw, not-yet-parsed line, or a JSON object successfully decoded from one.
// The tag lives here, not in Record.Type, because Record.Type names the
// source (stdin, argus, zeek, nfdump, or a log stem) and says nothing about
// the payload's shape.
type Payload struct {
	Raw      string
	Parsed   map[string]any
	IsParsed bool
}

// RawPayload wraps an unparsed line.
func RawPayload(line string) Payload {
	return Payload{Raw: line}
}

// ParsedPayload wraps a decoded JSON object.
func ParsedPayload(obj map[string]any) Payload {
	return Payload{Parsed: obj, IsParsed: true}
}

// Record is the unit delivered to the profiler queue.
type Record struct {
	// Type is a tag drawn from {"stdin", "argus", "zeek", "nfdump"} or the
	// originating log-file stem; it guides downstream parsing.
	Type string
	// Data is the opaque payload.
	Data Payload
}

// New builds a Record carrying a raw, unparsed line.
func New(typ, line string) Record {
	return Record{Type: typ, Data: RawPayload(line)}
}

// NewParsed builds a Record carrying an already-decoded JSON object.
func NewParsed(typ string, obj map[string]any) Record {
	return Record{Type: typ, Data: ParsedPayload(obj)}
}
