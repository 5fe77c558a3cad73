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

// Package ingest wires together the Source Dispatcher, Analyzer Supervisor,
// Log-Directory Watcher, Multi-File Tailer, and Single-Stream Reader into
// the flow ingestion core described by the system's input-process
// specification.
package ingest

import "time"

// Mode selects one of the four ingestion strategies.
type Mode string

const (
	ModeFile      Mode = "file"
	ModeNfdump    Mode = "nfdump"
	ModePcap      Mode = "pcap"
	ModeInterface Mode = "interface"
)

// Descriptor is the input descriptor the Source Dispatcher examines to pick
// an ingestion mode.
type Descriptor struct {
	Mode Mode
	// Target is the stdin marker ("-"/empty), a directory of *.log files,
	// a flat file, an nfdump binary dump, a pcap file, or an interface
	// name, depending on Mode.
	Target string
	// PacketFilter overrides the configured BPF filter when non-empty.
	PacketFilter string
	// InactivityTimeout is passed through to the analyzer unexamined.
	InactivityTimeout string
	// AnalyzerBinary is the path to the packet-analyzer executable (e.g.
	// zeek/bro) used for pcap/interface modes.
	AnalyzerBinary string
}

// Defaults bundle the per-mode constants spec.md §4.A assigns.
const (
	WorkingDir          = "./zeek_files"
	NfdumpOutputPath    = "./nfdump_output.txt"
	FolderQuiescence    = 1 * time.Second
	NfdumpQuiescence    = 10 * time.Second
	PcapQuiescence      = 30 * time.Second
	DefaultPacketFilter = "ip or not ip"
	ArgusPacingDelay    = 20 * time.Millisecond
)
