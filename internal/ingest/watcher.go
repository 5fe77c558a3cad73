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
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sysflow-telemetry/sf-apis/go/logger"

	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/catalog"
)

// Watcher observes the analyzer's working directory for newly created *.log
// files and registers their stems in the catalog. It only ever writes to
// the catalog (spec §5); the Tailer is solely responsible for reading it.
type Watcher struct {
	fsw     *fsnotify.Watcher
	cat     *catalog.Catalog
	dir     string
	added   chan string
	done    chan struct{}
	cancel  context.CancelFunc
	closeMu sync.Once
}

// StartWatcher creates and starts a Watcher on dir, recursively. Discovered
// stems are both registered directly in cat and published on the Added
// channel, per Design Note §9 ("file-watcher callbacks -> channels"), so a
// caller can observe additions without polling the catalog.
func StartWatcher(ctx context.Context, dir string, cat *catalog.Catalog) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	wctx, cancel := context.WithCancel(ctx)
	w := &Watcher{fsw: fsw, cat: cat, dir: dir, added: make(chan string, 64), done: make(chan struct{}), cancel: cancel}
	if err := w.addRecursive(dir); err != nil {
		cancel()
		_ = fsw.Close()
		return nil, err
	}
	go w.run(wctx)
	return w, nil
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		w.consider(path)
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
				_ = w.fsw.Add(ev.Name)
				continue
			}
			w.consider(ev.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Error.Printf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) consider(path string) {
	if !strings.HasSuffix(path, ".log") {
		return
	}
	stem := strings.TrimSuffix(path, ".log")
	if w.cat.Add(stem) {
		select {
		case w.added <- stem:
		default:
		}
	}
}

// Added exposes newly discovered stems as they're added to the catalog.
func (w *Watcher) Added() <-chan string {
	return w.added
}

// Stop signals the watcher to shut down and waits for its goroutine to
// exit.
func (w *Watcher) Stop() {
	w.closeMu.Do(func() {
		w.cancel()
		<-w.done
	})
}
