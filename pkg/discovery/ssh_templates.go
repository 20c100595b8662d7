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

import "strings"

// neighborTemplate is a minimal line-oriented record template: each
// required field is recognized by its leading label, and a template only
// contributes a Neighbor once every required field has matched at least
// once. Modeled on CLI "show neighbors detail" blocks, which are a
// sequence of "Label: value" lines separated by blank lines.
type neighborTemplate struct {
	vendor    Vendor
	command   string
	protocol  Protocol
	fields    map[string]string // output field name -> line label prefix
	required  []string
}

var neighborTemplates = []neighborTemplate{
	{
		vendor:   VendorCisco,
		command:  "show cdp neighbors detail",
		protocol: ProtocolCDP,
		fields: map[string]string{
			"device_id":   "Device ID:",
			"platform":    "Platform:",
			"interface":   "Interface:",
			"port_id":     "Port ID (outgoing port):",
			"ip_address":  "IP address:",
		},
		required: []string{"device_id", "interface", "port_id"},
	},
	{
		vendor:   VendorCisco,
		command:  "show lldp neighbors detail",
		protocol: ProtocolLLDP,
		fields: map[string]string{
			"local_interface": "Local Intf:",
			"device_id":       "System Name:",
			"port_id":         "Port id:",
			"port_desc":       "Port Description:",
			"capabilities":    "System Capabilities:",
		},
		required: []string{"local_interface", "port_id"},
	},
	{
		vendor:   VendorArista,
		command:  "show lldp neighbors detail",
		protocol: ProtocolLLDP,
		fields: map[string]string{
			"local_interface": "Interface",
			"device_id":       "System Name:",
			"port_id":         "Port ID:",
		},
		required: []string{"local_interface", "port_id"},
	},
	{
		vendor:   VendorJuniper,
		command:  "show lldp neighbors",
		protocol: ProtocolLLDP,
		fields: map[string]string{
			"local_interface": "",
		},
		required: []string{"local_interface"},
	},
}

// bestTemplate returns the first registered template whose vendor matches
// and whose command matches case-insensitively. Templates are not scored
// against the command output.
func bestTemplate(vendor Vendor, command string) (neighborTemplate, bool) {
	for _, t := range neighborTemplates {
		if t.vendor == vendor && strings.EqualFold(t.command, command) {
			return t, true
		}
	}

	return neighborTemplate{}, false
}

// parse walks cleaned output as a sequence of blocks separated by blank
// lines for the labeled templates, or whitespace-delimited columns for the
// Juniper tabular template, and emits one Neighbor per matched block/row.
func (t neighborTemplate) parse(cleaned string, vendor Vendor) []Neighbor {
	if t.vendor == VendorJuniper {
		return t.parseJuniperTable(cleaned, vendor)
	}

	return t.parseLabeledBlocks(cleaned, vendor)
}

func (t neighborTemplate) parseLabeledBlocks(cleaned string, vendor Vendor) []Neighbor {
	var neighbors []Neighbor

	current := map[string]string{}

	flush := func() {
		if !t.hasAllRequired(current) {
			current = map[string]string{}
			return
		}

		neighbors = append(neighbors, t.toNeighbor(current, vendor))
		current = map[string]string{}
	}

	for _, line := range strings.Split(cleaned, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}

		for field, label := range t.fields {
			if label == "" {
				continue
			}

			if strings.HasPrefix(trimmed, label) {
				current[field] = strings.TrimSpace(strings.TrimPrefix(trimmed, label))
			}
		}
	}

	flush()

	return neighbors
}

// parseJuniperTable handles "show lldp neighbors" tabular output: one
// neighbor per row, columns are whitespace-separated and the local
// interface is the first column.
func (t neighborTemplate) parseJuniperTable(cleaned string, vendor Vendor) []Neighbor {
	var neighbors []Neighbor

	for _, line := range strings.Split(cleaned, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		if strings.EqualFold(fields[0], "Local") || strings.EqualFold(fields[0], "Interface") {
			continue
		}

		n := Neighbor{
			Protocol:       ProtocolLLDP,
			LocalInterface: normalizeInterfaceName(fields[0], vendor),
			RemoteDevice:   fields[len(fields)-1],
		}

		if len(fields) >= 3 {
			n.RemoteInterface = normalizeInterfaceName(fields[len(fields)-2], VendorUnknown)
		}

		neighbors = append(neighbors, n)
	}

	return neighbors
}

func (t neighborTemplate) hasAllRequired(fields map[string]string) bool {
	for _, name := range t.required {
		if fields[name] == "" {
			return false
		}
	}

	return true
}

func (t neighborTemplate) toNeighbor(fields map[string]string, vendor Vendor) Neighbor {
	return Neighbor{
		Protocol:        t.protocol,
		LocalInterface:  normalizeInterfaceName(fields["interface"]+fields["local_interface"], vendor),
		RemoteDevice:    fields["device_id"],
		RemoteInterface: normalizeInterfaceName(fields["port_id"], VendorUnknown),
		RemoteIP:        fields["ip_address"],
		Platform:        fields["platform"],
		Description:     fields["port_desc"],
		Capabilities:    fields["capabilities"],
		PortID:          fields["port_id"],
	}
}
