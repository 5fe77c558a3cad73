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

// Package parse implements the line-classification rules of the Tailer's
// "Fill heads" phase: try JSON first, fall back to tab-separated text,
// and recover a comparable timestamp from either shape.
package parse

import (
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/Aman123lug/StratosphereLinuxIPS/internal/record"
)

// Line is the outcome of classifying one raw log line.
type Line struct {
	// Timestamp is the normalized sort key: the JSON "ts" field, or the
	// leading tab-delimited token of a TSV line, as a float64 seconds
	// value. Missing timestamps sort as 0, ranking before all real ones.
	Timestamp float64
	Payload   record.Payload
	// Comment is true for empty lines and TSV lines starting with '#': no
	// head, no count.
	Comment bool
}

// ParseLine classifies one raw line read from a catalog file. JSON is tried
// first; on failure the line is treated as tab-separated text, where an
// empty line or a leading '#' marks a discarded comment.
func ParseLine(raw string) Line {
	trimmed := strings.TrimRight(raw, "\r\n")

	var obj map[string]any
	if err := gojson.Unmarshal([]byte(trimmed), &obj); err == nil {
		ts := 0.0
		if v, ok := obj["ts"]; ok {
			ts = toFloat(v)
		}
		return Line{Timestamp: ts, Payload: record.ParsedPayload(obj)}
	}

	if trimmed == "" {
		return Line{Comment: true}
	}
	if trimmed[0] == '#' {
		return Line{Comment: true}
	}

	ts := 0.0
	if tab := strings.IndexByte(trimmed, '\t'); tab >= 0 {
		ts = parseTimestampToken(trimmed[:tab])
	} else {
		ts = parseTimestampToken(trimmed)
	}
	return Line{Timestamp: ts, Payload: record.RawPayload(raw)}
}

func parseTimestampToken(tok string) float64 {
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0
	}
	return f
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		return parseTimestampToken(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// ValidNfdumpRow reports whether a raw nfdump CSV row begins with a digit,
// the only validity check nfdump rows receive (spec §4.E / §9 open
// question (c)).
func ValidNfdumpRow(raw string) bool {
	trimmed := strings.TrimRight(raw, "\r\n")
	first, _ := splitFirstField(trimmed)
	if first == "" {
		return false
	}
	return first[0] >= '0' && first[0] <= '9'
}

func splitFirstField(s string) (string, string) {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}
