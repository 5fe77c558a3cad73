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

// Package logstream makes one pathname look like one perpetual source of
// log lines, even though the underlying file is being appended to by
// another process and might be rotated or truncated out from under us.
// Adapted from https://github.com/google/mtail/tree/main/internal
package logstream

import (
	"bytes"
	"context"
	"expvar"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sysflow-telemetry/sf-apis/go/logger"

	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/waker"
)

var (
	// logErrors counts the IO errors encountered per file.
	logErrors = expvar.NewMap("log_errors_total")
	// logOpens counts the opens of new log file descriptors.
	logOpens = expvar.NewMap("log_opens_total")
	// logCloses counts the closes of old log file descriptors.
	logCloses = expvar.NewMap("log_closes_total")
	// fileTruncates counts truncations observed on a stream.
	fileTruncates = expvar.NewMap("file_truncates_total")
)

// defaultReadBufferSize is the size of the buffer used for reading bytes.
const defaultReadBufferSize = 4096

// Line is one decoded line read from a log file, stripped of its newline.
type Line struct {
	Pathname string
	Text     string
}

// FileStream tails a single regular file. Rotation is detected by a change
// of inode at the same pathname; truncation is detected by the file
// shrinking below the current read offset. Both are handled by continuing
// to read from (possibly) a freshly reopened file descriptor.
type FileStream struct {
	ctx   context.Context
	lines chan<- *Line

	pathname string

	mu           sync.RWMutex
	lastReadTime time.Time
	completed    bool

	stopOnce sync.Once
	stopChan chan struct{}
}

// New opens pathname and starts tailing it in a background goroutine,
// sending decoded lines to lines. If fromStart is false, the stream seeks
// to the current end of file before reading (the common "tail -f" case);
// if true it reads from byte zero (used for files discovered mid-run by the
// folder-of-logs or watcher paths, where no line may be skipped).
func New(ctx context.Context, wg *sync.WaitGroup, wk waker.Waker, pathname string, lines chan<- *Line, fromStart bool) (*FileStream, error) {
	fi, err := os.Stat(pathname)
	if err != nil {
		logErrors.Add(pathname, 1)
		return nil, err
	}
	fs := &FileStream{ctx: ctx, pathname: pathname, lastReadTime: time.Now(), lines: lines, stopChan: make(chan struct{})}
	if err := fs.stream(ctx, wg, wk, fi, fromStart); err != nil {
		return nil, err
	}
	return fs, nil
}

// LastReadTime returns the time of the most recent successful read.
func (fs *FileStream) LastReadTime() time.Time {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.lastReadTime
}

// IsComplete reports whether the stream has permanently stopped.
func (fs *FileStream) IsComplete() bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.completed
}

// Stop asks the stream to gracefully wind down at the next EOF.
func (fs *FileStream) Stop() {
	fs.stopOnce.Do(func() {
		close(fs.stopChan)
	})
}

func (fs *FileStream) stream(ctx context.Context, wg *sync.WaitGroup, wk waker.Waker, fi os.FileInfo, fromStart bool) error {
	fd, err := os.OpenFile(fs.pathname, os.O_RDONLY, 0o600)
	if err != nil {
		logErrors.Add(fs.pathname, 1)
		return err
	}
	logOpens.Add(fs.pathname, 1)
	if !fromStart {
		if _, err := fd.Seek(0, io.SeekEnd); err != nil {
			logErrors.Add(fs.pathname, 1)
			_ = fd.Close()
			return err
		}
	}
	b := make([]byte, defaultReadBufferSize)
	partial := bytes.NewBufferString("")
	started := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if err := fd.Close(); err != nil {
				logErrors.Add(fs.pathname, 1)
			}
			logCloses.Add(fs.pathname, 1)
		}()
		close(started)
		for {
			count, rerr := fd.Read(b)
			if count > 0 {
				decodeAndSend(fs.pathname, b[:count], partial, fs.lines)
				fs.mu.Lock()
				fs.lastReadTime = time.Now()
				fs.mu.Unlock()
			}

			if rerr != nil && rerr != io.EOF {
				logErrors.Add(fs.pathname, 1)
				logger.Info.Println(rerr)
			}

			if rerr == io.EOF && count == 0 {
				newfi, serr := os.Stat(fs.pathname)
				if serr != nil {
					if os.IsNotExist(serr) {
						fs.finish(partial)
						return
					}
					logErrors.Add(fs.pathname, 1)
					goto Sleep
				}
				if !os.SameFile(fi, newfi) {
					if err := fs.stream(ctx, wg, wk, newfi, true); err != nil {
						logger.Info.Println(err)
					}
					return
				}
				currentOffset, serr := fd.Seek(0, io.SeekCurrent)
				if serr != nil {
					logErrors.Add(fs.pathname, 1)
					continue
				}
				if newfi.Size() < currentOffset {
					if partial.Len() > 0 {
						sendLine(fs.pathname, partial, fs.lines)
					}
					if _, serr := fd.Seek(0, io.SeekStart); serr != nil {
						logErrors.Add(fs.pathname, 1)
					}
					fileTruncates.Add(fs.pathname, 1)
					continue
				}
			}

			if rerr == nil && ctx.Err() == nil {
				continue
			}

		Sleep:
			if rerr == io.EOF || ctx.Err() != nil {
				select {
				case <-fs.stopChan:
					fs.finish(partial)
					return
				case <-ctx.Done():
					fs.finish(partial)
					return
				default:
				}
			}

			select {
			case <-fs.stopChan:
			case <-ctx.Done():
			case <-wk.Wake():
			}
		}
	}()
	<-started
	return nil
}

func (fs *FileStream) finish(partial *bytes.Buffer) {
	if partial.Len() > 0 {
		sendLine(fs.pathname, partial, fs.lines)
	}
	fs.mu.Lock()
	fs.completed = true
	fs.mu.Unlock()
}
