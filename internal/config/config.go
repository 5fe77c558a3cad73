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

// Package config loads the small set of options the ingestion core reads
// from the configuration store: the capture filter and the TCP inactivity
// timeout passed through to the analyzer.
package config

import (
	"errors"
	"io/fs"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultPacketFilter = "ip or not ip"
)

// Config holds the configuration-store options the ingestion core needs.
type Config struct {
	// PacketFilter is a BPF-style capture filter string.
	PacketFilter string
	// TCPInactivityTimeout is an opaque string passed through to the
	// analyzer's argv unexamined (spec §9, Open Question (b)).
	TCPInactivityTimeout string
}

// Load reads configuration from the named file (if it exists; viper
// tolerates a missing file) plus environment variables prefixed SLIPS_,
// applying defaults for any option left unset.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("slips")
	v.AutomaticEnv()
	v.SetDefault("parameters.pcapfilter", defaultPacketFilter)
	v.SetDefault("parameters.tcp_inactivity_timeout", "")

	if configPath != "" {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	return &Config{
		PacketFilter:         v.GetString("parameters.pcapfilter"),
		TCPInactivityTimeout: v.GetString("parameters.tcp_inactivity_timeout"),
	}, nil
}

// ApplyCLIOverrides layers CLI flags on top of the loaded configuration.
// A CLI-set --packet-filter takes precedence over the configuration file,
// per spec §6.
func ApplyCLIOverrides(cfg *Config, flags *pflag.FlagSet) {
	if flags == nil {
		return
	}
	if flags.Changed("packet-filter") {
		if v, err := flags.GetString("packet-filter"); err == nil && v != "" {
			cfg.PacketFilter = v
		}
	}
}
