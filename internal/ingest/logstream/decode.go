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

package logstream

import (
	"bytes"
	"expvar"
	"unicode/utf8"
)

// logLines counts the number of lines read per log file.
var logLines = expvar.NewMap("log_lines_total")

// decodeAndSend transforms the byte array b into unicode in partial, sending
// to lines as each newline is decoded.
func decodeAndSend(pathname string, b []byte, partial *bytes.Buffer, lines chan<- *Line) {
	var (
		r     rune
		width int
	)
	for i := 0; i < len(b); i += width {
		r, width = utf8.DecodeRune(b[i:])
		switch r {
		case '\r':
			// eat a trailing CR; see RFC 3164 / syslog(7).
		case '\n':
			sendLine(pathname, partial, lines)
		default:
			partial.WriteRune(r)
		}
	}
}

func sendLine(pathname string, partial *bytes.Buffer, lines chan<- *Line) {
	logLines.Add(pathname, 1)
	lines <- &Line{Pathname: pathname, Text: partial.String()}
	partial.Reset()
}
