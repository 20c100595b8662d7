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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestTemplateLookup(t *testing.T) {
	tmpl, ok := bestTemplate(VendorCisco, "show cdp neighbors detail")
	require.True(t, ok)
	assert.Equal(t, ProtocolCDP, tmpl.protocol)

	_, ok = bestTemplate(VendorFortinet, "show version")
	assert.False(t, ok)
}

func TestParseCiscoCDPNeighborsDetail(t *testing.T) {
	cleaned := "Device ID: core-b.example.com\n" +
		"Entry address(es):\n" +
		"IP address: 10.0.0.2\n" +
		"Platform: cisco WS-C3850\n" +
		"Interface: GigabitEthernet0/1\n" +
		"Port ID (outgoing port): GigabitEthernet0/2\n"

	tmpl, ok := bestTemplate(VendorCisco, "show cdp neighbors detail")
	require.True(t, ok)

	neighbors := tmpl.parse(cleaned, VendorCisco)
	require.Len(t, neighbors, 1)

	n := neighbors[0]
	assert.Equal(t, ProtocolCDP, n.Protocol)
	assert.Equal(t, "core-b.example.com", n.RemoteDevice)
	assert.Equal(t, "Gi0/1", n.LocalInterface)
	assert.Equal(t, "Gi0/2", n.RemoteInterface)
	assert.Equal(t, "10.0.0.2", n.RemoteIP)
}

func TestParseJuniperLLDPTable(t *testing.T) {
	cleaned := "Local Interface    Parent Interface    Chassis Id          Port info          System Name\n" +
		"ge-0/0/1.0         -                   aa:bb:cc:dd:ee:ff   ge-0/0/2           core-b\n"

	tmpl, ok := bestTemplate(VendorJuniper, "show lldp neighbors")
	require.True(t, ok)

	neighbors := tmpl.parse(cleaned, VendorJuniper)
	require.Len(t, neighbors, 1)

	n := neighbors[0]
	assert.Equal(t, ProtocolLLDP, n.Protocol)
	assert.Equal(t, "ge-0/0/1", n.LocalInterface)
	assert.Equal(t, "core-b", n.RemoteDevice)
}

func TestParseNeighborsFromOutputUnknownVendorYieldsNone(t *testing.T) {
	neighbors := parseNeighborsFromOutput("anything", "show version", VendorFortinet)
	assert.Empty(t, neighbors)
}
