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
	"sort"
	"sync"
	"time"

	"github.com/sysflow-telemetry/sf-apis/go/logger"

	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/catalog"
	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/logstream"
	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/queue"
	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/waker"
	"github.com/Aman123lug/StratosphereLinuxIPS/internal/parse"
	"github.com/Aman123lug/StratosphereLinuxIPS/internal/record"
)

// Option configures a Tailer.
type Option func(*Tailer)

// QuiescenceTimeout overrides the default "no updates for this long" exit
// condition.
func QuiescenceTimeout(d time.Duration) Option {
	return func(t *Tailer) { t.quiescence = d }
}

// PollWaker overrides the back-off waker used between empty passes.
func PollWaker(w waker.Waker) Option {
	return func(t *Tailer) { t.waker = w }
}

// headEntry is the at-most-one buffered record per file, per spec.md §3.
type headEntry struct {
	line parse.Line
}

// Tailer is the Multi-File Tailer / Merger: the core of the ingestion
// pipeline. It owns every open file handle, reads at most one new line per
// catalog entry per pass, and emits the buffered head with the smallest
// timestamp (ties broken by stem) to the profiler queue.
type Tailer struct {
	ctx       context.Context
	wg        *sync.WaitGroup
	cat       *catalog.Catalog
	profiler  *queue.Profiler
	telemetry *queue.Telemetry

	quiescence time.Duration
	waker      waker.Waker

	streams map[string]*fileHandle
	heads   map[string]headEntry

	lastActivity time.Time
	linesEmitted int
}

type fileHandle struct {
	ch chan *logstream.Line
	fs *logstream.FileStream
}

// New creates a Tailer reading from the stems registered in cat, quiescing
// after quiescence of no successful reads with no buffered heads.
func New(ctx context.Context, wg *sync.WaitGroup, cat *catalog.Catalog, profiler *queue.Profiler, telemetry *queue.Telemetry, quiescence time.Duration, opts ...Option) *Tailer {
	t := &Tailer{
		ctx:          ctx,
		wg:           wg,
		cat:          cat,
		profiler:     profiler,
		telemetry:    telemetry,
		quiescence:   quiescence,
		waker:        waker.NewInterval(ctx, 200*time.Millisecond),
		streams:      make(map[string]*fileHandle),
		heads:        make(map[string]headEntry),
		lastActivity: time.Now(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// LinesEmitted returns the number of records pushed to the profiler queue
// so far.
func (t *Tailer) LinesEmitted() int {
	return t.linesEmitted
}

// Run drives the refresh/fill/quiesce/emit/back-off loop until quiescence
// is reached or ctx is cancelled, then closes every open file handle.
func (t *Tailer) Run() error {
	defer t.closeAll()
	for {
		if t.ctx.Err() != nil {
			t.telemetry.Print(0, 4, "cancellation requested, stopping tailer (%d lines emitted)", t.linesEmitted)
			return nil
		}

		stems := t.cat.List()
		t.fillHeads(stems)

		if len(t.heads) == 0 && time.Since(t.lastActivity) >= t.quiescence {
			t.telemetry.Print(0, 0, "no more input, stopping tailer (%d lines emitted)", t.linesEmitted)
			return nil
		}

		if emitted := t.emitOne(); !emitted {
			select {
			case <-t.waker.Wake():
			case <-t.ctx.Done():
			}
			continue
		}
	}
}

// fillHeads ensures every stem without a buffered head attempts one line
// read: lazily opening its handle, parsing the line if one is available,
// and leaving the head empty (for retry) on EOF-for-now or open failure.
func (t *Tailer) fillHeads(stems []string) {
	for _, stem := range stems {
		if _, ok := t.heads[stem]; ok {
			continue
		}
		h, ok := t.streams[stem]
		if !ok {
			ch := make(chan *logstream.Line, 1)
			fs, err := logstream.New(t.ctx, t.wg, t.waker, stem+".log", ch, true)
			if err != nil {
				// Catalog miss / open failure: skip, retry next pass.
				continue
			}
			h = &fileHandle{ch: ch, fs: fs}
			t.streams[stem] = h
		}

		select {
		case ln := <-h.ch:
			t.lastActivity = time.Now()
			parsed := parse.ParseLine(ln.Text)
			if parsed.Comment {
				continue
			}
			t.heads[stem] = headEntry{line: parsed}
		default:
			// No data yet; the file will be retried next pass.
		}
	}
}

// emitOne selects the stem with the smallest buffered timestamp (ties
// broken lexicographically), pushes its record, and clears the head. It
// returns false if there was nothing to emit.
func (t *Tailer) emitOne() bool {
	if len(t.heads) == 0 {
		return false
	}
	stems := make([]string, 0, len(t.heads))
	for s := range t.heads {
		stems = append(stems, s)
	}
	sort.Slice(stems, func(i, j int) bool {
		hi, hj := t.heads[stems[i]].line, t.heads[stems[j]].line
		if hi.Timestamp != hj.Timestamp {
			return hi.Timestamp < hj.Timestamp
		}
		return stems[i] < stems[j]
	})
	stem := stems[0]
	entry := t.heads[stem]
	delete(t.heads, stem)

	r := record.Record{Type: stem, Data: entry.line.Payload}
	if err := t.profiler.Push(t.ctx, r); err != nil {
		logger.Error.Printf("profiler queue push failed: %v", err)
		return false
	}
	t.linesEmitted++
	return true
}

func (t *Tailer) closeAll() {
	for _, h := range t.streams {
		h.fs.Stop()
	}
}
