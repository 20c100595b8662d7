/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package discovery

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/netcrawl/discovery/pkg/logger"
)

// Config is the crawl configuration loaded from a JSON file or assembled
// from CLI flags.
type Config struct {
	Seeds           []string        `json:"seeds"`
	MaxDepth        int             `json:"max_depth"`
	Domains         []string        `json:"domains"`
	ExcludePatterns []string        `json:"exclude_patterns"`
	CredentialNames []string        `json:"credential_names"`
	OutputDir       string          `json:"output_dir"`
	Concurrency     int             `json:"concurrency"`
	Timeout         time.Duration   `json:"timeout"`
	NoDNS           bool            `json:"no_dns"`
	Logging         *logger.Config  `json:"logging"`
}

// UnmarshalJSON accepts Timeout as a duration string (e.g. "5s"), matching
// the convention used across this module.
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config

	aux := &struct {
		Timeout string `json:"timeout"`
		*Alias
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if aux.Timeout != "" {
		dur, err := time.ParseDuration(aux.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}

		c.Timeout = dur
	}

	return nil
}

// DefaultConfig returns the engine's baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxDepth:    2,
		Concurrency: defaultMaxConcurrent,
		Timeout:     defaultSNMPTimeout,
		Logging:     logger.DefaultConfig(),
	}
}

// LoadConfig reads and parses a JSON config file, falling back to
// DefaultConfig's values for anything the file omits.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
