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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PacketFilter != defaultPacketFilter {
		t.Errorf("PacketFilter = %q, want %q", cfg.PacketFilter, defaultPacketFilter)
	}
	if cfg.TCPInactivityTimeout != "" {
		t.Errorf("TCPInactivityTimeout = %q, want empty", cfg.TCPInactivityTimeout)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slips.yaml")
	contents := "parameters:\n  pcapfilter: \"tcp port 80\"\n  tcp_inactivity_timeout: \"-a\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PacketFilter != "tcp port 80" {
		t.Errorf("PacketFilter = %q, want %q", cfg.PacketFilter, "tcp port 80")
	}
	if cfg.TCPInactivityTimeout != "-a" {
		t.Errorf("TCPInactivityTimeout = %q, want %q", cfg.TCPInactivityTimeout, "-a")
	}
}

func TestApplyCLIOverridesTakesPrecedence(t *testing.T) {
	cfg := &Config{PacketFilter: "ip or not ip"}
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("packet-filter", "", "")
	if err := flags.Parse([]string{"--packet-filter=tcp port 443"}); err != nil {
		t.Fatal(err)
	}
	ApplyCLIOverrides(cfg, flags)
	if cfg.PacketFilter != "tcp port 443" {
		t.Errorf("PacketFilter = %q, want %q", cfg.PacketFilter, "tcp port 443")
	}
}

func TestApplyCLIOverridesNoopWhenUnset(t *testing.T) {
	cfg := &Config{PacketFilter: "ip or not ip"}
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("packet-filter", "", "")
	if err := flags.Parse(nil); err != nil {
		t.Fatal(err)
	}
	ApplyCLIOverrides(cfg, flags)
	if cfg.PacketFilter != "ip or not ip" {
		t.Errorf("PacketFilter = %q, want unchanged", cfg.PacketFilter)
	}
}
