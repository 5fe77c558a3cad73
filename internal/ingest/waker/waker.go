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

// Package waker provides the back-off primitive used by the Tailer's
// refresh loop and by each logstream.FileStream's EOF wait, so that "sleep
// briefly, then retry" is a named, swappable dependency rather than bare
// time.Sleep calls scattered through the hot path. The Single-Stream
// Readers wait with time.After instead.
// Adapted from https://github.com/google/mtail/tree/main/internal
package waker

import (
	"context"
	"sync"
	"time"
)

// Waker lets a routine block until it's worth looking for new work again.
type Waker interface {
	// Wake returns a channel that closes when the caller should retry.
	Wake() <-chan struct{}
}

// intervalWaker wakes its caller on a fixed period. This is the waker used
// outside of tests: the Tailer's "back off" phase uses one, and passes it
// on to the file streams it opens.
type intervalWaker struct {
	ctx      context.Context
	interval time.Duration
}

// NewInterval creates a Waker that fires every interval until ctx is done,
// at which point Wake returns a channel that is immediately closed.
func NewInterval(ctx context.Context, interval time.Duration) Waker {
	return &intervalWaker{ctx: ctx, interval: interval}
}

func (w *intervalWaker) Wake() <-chan struct{} {
	c := make(chan struct{})
	go func() {
		defer close(c)
		t := time.NewTimer(w.interval)
		defer t.Stop()
		select {
		case <-t.C:
		case <-w.ctx.Done():
		}
	}()
	return c
}

// A testWaker is used to manually signal to idle routines it's time to look
// for new work, giving tests deterministic control over the poll loop
// instead of racing against wall-clock sleeps.
type testWaker struct {
	ctx context.Context

	n int

	wakeeReady chan struct{}
	wakeeDone  chan struct{}
	wait       chan struct{}

	mu   sync.Mutex // protects wake
	wake chan struct{}
}

// WakeFunc triggers a wakeup of blocked idle goroutines under test. It takes
// the number of goroutines to await before returning to the caller.
type WakeFunc func(int)

// NewTest creates a Waker for use in tests, returning it and a function to
// trigger a wakeup. n says how many wakees are expected in the first pass.
func NewTest(ctx context.Context, n int) (Waker, WakeFunc) {
	t := &testWaker{
		ctx:        ctx,
		n:          n,
		wakeeReady: make(chan struct{}),
		wakeeDone:  make(chan struct{}),
		wait:       make(chan struct{}),
		wake:       make(chan struct{}),
	}
	initDone := make(chan struct{})
	go func() {
		defer close(initDone)
		for i := 0; i < t.n; i++ {
			<-t.wakeeDone
		}
	}()
	wakeFunc := func(after int) {
		<-initDone
		for i := 0; i < t.n; i++ {
			t.wait <- struct{}{}
		}
		for i := 0; i < t.n; i++ {
			<-t.wakeeReady
		}
		t.broadcastWakeAndReset()
		for i := 0; i < after; i++ {
			<-t.wakeeDone
		}
		t.n = after
	}
	return t, wakeFunc
}

// Wake satisfies the Waker interface.
func (t *testWaker) Wake() (w <-chan struct{}) {
	t.mu.Lock()
	w = t.wake
	t.mu.Unlock()
	go func() {
		select {
		case <-t.ctx.Done():
			return
		case t.wakeeDone <- struct{}{}:
		}
		select {
		case <-t.ctx.Done():
			return
		case <-t.wait:
		}
		select {
		case <-t.ctx.Done():
			return
		case t.wakeeReady <- struct{}{}:
		}
	}()
	return
}

func (t *testWaker) broadcastWakeAndReset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	close(t.wake)
	t.wake = make(chan struct{})
}

// alwaysWaker never blocks the wakee; useful for tests that don't care
// about pacing at all.
type alwaysWaker struct {
	wake chan struct{}
}

// NewAlways returns a Waker whose Wake channel is always ready.
func NewAlways() Waker {
	w := &alwaysWaker{wake: make(chan struct{})}
	close(w.wake)
	return w
}

func (w *alwaysWaker) Wake() <-chan struct{} {
	return w.wake
}
