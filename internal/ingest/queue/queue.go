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

// Package queue provides the two outbound FIFOs the ingestion core talks
// to: the profiler queue (typed records) and the telemetry queue (operator
// status lines). Both are backed by buffered channels; channel send/receive
// order already gives FIFO semantics, so there is no call for a hand-rolled
// mutex-and-slice queue here.
package queue

import (
	"context"
	"fmt"

	"github.com/Aman123lug/StratosphereLinuxIPS/internal/record"
)

// Profiler is the outbound FIFO of records consumed by the downstream
// profiler stage. Push is the only operation the ingestion core needs; a
// push past cancellation is a fatal condition for the Tailer (spec §7).
type Profiler struct {
	ch chan record.Record
}

// NewProfiler creates a profiler queue with the given buffer size.
func NewProfiler(buffer int) *Profiler {
	return &Profiler{ch: make(chan record.Record, buffer)}
}

// Push enqueues a record, blocking under backpressure. It returns an error
// only if ctx is cancelled first, matching the "profiler-queue enqueues may
// block under backpressure" suspension point in spec §5.
func (p *Profiler) Push(ctx context.Context, r record.Record) error {
	select {
	case p.ch <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PushStop enqueues the terminal sentinel record.
func (p *Profiler) PushStop(ctx context.Context) error {
	return p.Push(ctx, record.New(record.Stop, ""))
}

// Chan exposes the receive side for the profiler stage.
func (p *Profiler) Chan() <-chan record.Record {
	return p.ch
}

// Telemetry is the outbound FIFO of operator-facing status strings, encoded
// as "<VD>|<source>|<text>" where VD = verbose*10 + debug.
type Telemetry struct {
	ch chan string
}

// NewTelemetry creates a telemetry queue with the given buffer size.
func NewTelemetry(buffer int) *Telemetry {
	return &Telemetry{ch: make(chan string, buffer)}
}

// Print formats and enqueues a telemetry line in the same style as the
// original Python InputProcess.print: verbose and debug levels are folded
// into a two-digit decimal VD prefix, and the source is always "input".
func (t *Telemetry) Print(verbose, debug int, format string, args ...any) {
	vd := verbose*10 + debug
	text := fmt.Sprintf(format, args...)
	select {
	case t.ch <- fmt.Sprintf("%02d|input|[input] %s", vd, text):
	default:
		// Telemetry is best-effort status reporting; never block the
		// ingestion hot path waiting for a slow consumer.
	}
}

// Chan exposes the receive side for the telemetry sink.
func (t *Telemetry) Chan() <-chan string {
	return t.ch
}
