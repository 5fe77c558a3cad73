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

// Command slipsinput is the flow ingestion core: it drives one of stdin, a
// flat file, a folder of analyzer logs, an nfdump binary dump, a pcap
// file, or a live interface into a time-ordered stream of records on the
// profiler queue.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/sysflow-telemetry/sf-apis/go/logger"

	"github.com/Aman123lug/StratosphereLinuxIPS/internal/config"
	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest"
	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/catalog"
	"github.com/Aman123lug/StratosphereLinuxIPS/internal/ingest/queue"
)

func main() {
	var (
		mode           = pflag.StringP("mode", "m", "file", "ingestion mode: file, nfdump, pcap, interface")
		target         = pflag.StringP("target", "f", "-", "input target: path, directory, nfdump dump, pcap file, or interface name")
		configPath     = pflag.StringP("config", "c", "", "path to the configuration file")
		packetFilter   = pflag.String("packet-filter", "", "override the configured BPF capture filter")
		analyzerBinary = pflag.String("analyzer", "zeek", "path to the packet-analyzer executable (pcap/interface modes)")
	)
	pflag.Parse()

	logger.InitLoggers(logger.INFO)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error.Printf("loading configuration: %v", err)
		os.Exit(1)
	}
	config.ApplyCLIOverrides(cfg, pflag.CommandLine)
	if *packetFilter != "" {
		cfg.PacketFilter = *packetFilter
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profiler := queue.NewProfiler(1024)
	telemetry := queue.NewTelemetry(256)
	go drainTelemetry(telemetry)

	descriptor := ingest.Descriptor{
		Mode:              ingest.Mode(*mode),
		Target:            *target,
		PacketFilter:      cfg.PacketFilter,
		InactivityTimeout: cfg.TCPInactivityTimeout,
		AnalyzerBinary:    *analyzerBinary,
	}

	exitCode := run(ctx, descriptor, profiler, telemetry)
	os.Exit(exitCode)
}

// run drives one ingestion pass to completion, translating the
// cancellation/fatal-error taxonomy of spec §7 into a process exit code.
func run(ctx context.Context, d ingest.Descriptor, profiler *queue.Profiler, telemetry *queue.Telemetry) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			telemetry.Print(0, 1, "problem with input process: %T: %v\n%s", r, r, stack)
			logger.Error.Printf("panic in input process: %T: %v\n%s", r, r, stack)
			exitCode = 1
		}
	}()

	cat := catalog.New()
	lines, err := ingest.Run(ctx, d, cat, profiler, telemetry)
	_ = profiler.PushStop(context.Background())

	switch {
	case err == nil:
		return 0
	case ctx.Err() != nil:
		telemetry.Print(0, 4, "no more input, stopping input process, sent %d lines", lines)
		return 0
	default:
		telemetry.Print(0, 1, "stopping input process, sent %d lines: %v", lines, err)
		return 1
	}
}

// drainTelemetry is a placeholder sink: in the full pipeline the telemetry
// queue is consumed by the shared logging process, which is out of scope
// here (spec §1).
func drainTelemetry(t *queue.Telemetry) {
	for line := range t.Chan() {
		fmt.Fprintln(os.Stderr, line)
	}
}
