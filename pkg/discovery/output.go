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
	"path/filepath"
)

const outputFileMode = 0o644
const outputDirMode = 0o755

// WriteDeviceJSON persists dev to <output>/<hostname>/device.json, plus
// cdp.json/lldp.json when the device has neighbors of that protocol.
func WriteDeviceJSON(outputDir string, dev *Device) error {
	dir := filepath.Join(outputDir, dev.CanonicalName())
	if err := os.MkdirAll(dir, outputDirMode); err != nil {
		return fmt.Errorf("create device output dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, "device.json"), dev); err != nil {
		return err
	}

	cdp := filterNeighbors(dev.Neighbors, ProtocolCDP)
	if len(cdp) > 0 {
		if err := writeJSON(filepath.Join(dir, "cdp.json"), cdp); err != nil {
			return err
		}
	}

	lldp := filterNeighbors(dev.Neighbors, ProtocolLLDP)
	if len(lldp) > 0 {
		if err := writeJSON(filepath.Join(dir, "lldp.json"), lldp); err != nil {
			return err
		}
	}

	return nil
}

// WriteTopologyJSON persists the validated topology to <output>/map.json.
func WriteTopologyJSON(outputDir string, topo TopologyMap) error {
	if err := os.MkdirAll(outputDir, outputDirMode); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	return writeJSON(filepath.Join(outputDir, "map.json"), topo)
}

// WriteSummaryJSON persists the crawl's aggregate result to
// <output>/discovery_summary.json.
func WriteSummaryJSON(outputDir string, result *DiscoveryResult) error {
	if err := os.MkdirAll(outputDir, outputDirMode); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	return writeJSON(filepath.Join(outputDir, "discovery_summary.json"), result)
}

func filterNeighbors(neighbors []Neighbor, proto Protocol) []Neighbor {
	var out []Neighbor

	for _, n := range neighbors {
		if n.Protocol == proto {
			out = append(out, n)
		}
	}

	return out
}

func writeJSON(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	if err := os.WriteFile(path, b, outputFileMode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
