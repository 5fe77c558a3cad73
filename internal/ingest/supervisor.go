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
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sysflow-telemetry/sf-apis/go/logger"
)

// Supervisor prepares the analyzer's working directory, launches the
// analyzer subprocess, and tears it down. Per Design Note §9 ("subprocess
// orchestration"), it builds an argv slice and uses exec.Cmd directly
// rather than concatenating a shell command string.
type Supervisor struct {
	workDir  string
	binary   string
	cmd      *exec.Cmd
	inFlight bool
}

// NewSupervisor creates a Supervisor rooted at workDir, running binary
// (e.g. a zeek/bro executable).
func NewSupervisor(workDir, binary string) *Supervisor {
	return &Supervisor{workDir: workDir, binary: binary}
}

// Prepare ensures the working directory exists and, if non-empty, purges
// any prior *.log files before analysis starts.
func (s *Supervisor) Prepare() error {
	if err := os.MkdirAll(s.workDir, 0o755); err != nil {
		return fmt.Errorf("create working dir %s: %w", s.workDir, err)
	}
	matches, err := filepath.Glob(filepath.Join(s.workDir, "*.log"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return fmt.Errorf("purge stale log %s: %w", m, err)
		}
	}
	return nil
}

// StartInterface launches the analyzer for live capture on iface.
func (s *Supervisor) StartInterface(ctx context.Context, iface string, d Descriptor) error {
	return s.start(ctx, append([]string{"-i", iface}, s.commonArgs(d)...))
}

// StartPcap launches the analyzer reading from pcapPath, made absolute so
// the analyzer (run with workDir as its cwd) can find it regardless of
// whether the caller passed a relative path.
func (s *Supervisor) StartPcap(ctx context.Context, pcapPath string, d Descriptor) error {
	abs, err := filepath.Abs(pcapPath)
	if err != nil {
		return err
	}
	return s.start(ctx, append([]string{"-C", "-r", abs}, s.commonArgs(d)...))
}

func (s *Supervisor) commonArgs(d Descriptor) []string {
	args := []string{"-e", "redef LogAscii::use_json=T;"}
	if d.InactivityTimeout != "" {
		args = append(args, d.InactivityTimeout)
	}
	filter := d.PacketFilter
	if filter == "" {
		filter = DefaultPacketFilter
	}
	return append(args, "-f", filter)
}

func (s *Supervisor) start(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, s.binary, args...)
	cmd.Dir = s.workDir
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start analyzer: %w", err)
	}
	s.cmd = cmd
	s.inFlight = true
	go func() {
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			logger.Info.Printf("analyzer exited: %v", err)
		}
		s.inFlight = false
	}()
	return nil
}

// Stop kills the analyzer subprocess if it is still running. The analyzer
// is otherwise expected to exit on its own EOF (pcap) or when the process
// is killed (interface).
func (s *Supervisor) Stop() {
	if s.cmd != nil && s.inFlight && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
}
