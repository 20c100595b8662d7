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

// Package discovery implements a concurrent, breadth-first SNMP/SSH network
// discovery engine: it identifies devices, walks their neighbor tables, and
// assembles a validated bidirectional topology map.
package discovery

import "time"

// Vendor is a coarse device-OS classification derived from sysDescr.
type Vendor string

const (
	VendorCisco    Vendor = "cisco"
	VendorArista   Vendor = "arista"
	VendorJuniper  Vendor = "juniper"
	VendorPaloAlto Vendor = "paloalto"
	VendorFortinet Vendor = "fortinet"
	VendorHuawei   Vendor = "huawei"
	VendorHP       Vendor = "hp"
	VendorLinux    Vendor = "linux"
	VendorUnknown  Vendor = "unknown"
)

// Protocol identifies which collection path produced a Device or Neighbor.
type Protocol string

const (
	ProtocolSNMP Protocol = "snmp"
	ProtocolSSH  Protocol = "ssh"
	ProtocolCDP  Protocol = "cdp"
	ProtocolLLDP Protocol = "lldp"
)

// InterfaceStatus mirrors ifOperStatus, collapsed to the four states the
// spec cares about.
type InterfaceStatus string

const (
	InterfaceUp        InterfaceStatus = "up"
	InterfaceDown      InterfaceStatus = "down"
	InterfaceAdminDown InterfaceStatus = "admin_down"
	InterfaceUnknown   InterfaceStatus = "unknown"
)

// Interface is one row of IF-MIB data, keyed by ifIndex.
type Interface struct {
	IfIndex     int             `json:"if_index"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Alias       string          `json:"alias,omitempty"`
	MAC         string          `json:"mac,omitempty"`
	IP          string          `json:"ip,omitempty"`
	SpeedMbps   int64           `json:"speed_mbps,omitempty"`
	MTU         int             `json:"mtu,omitempty"`
	Status      InterfaceStatus `json:"status"`
}

// DisplayName resolves the interface's name with the spec's fallback chain:
// ifName -> ifDescr -> synthetic "ifIndex_N".
func (i *Interface) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}

	if i.Description != "" {
		return i.Description
	}

	return syntheticIfName(i.IfIndex)
}

func syntheticIfName(ifIndex int) string {
	return "ifIndex_" + itoa(ifIndex)
}

// Neighbor normalizes a CDP or LLDP record into one shape.
type Neighbor struct {
	Protocol          Protocol `json:"protocol"` // cdp | lldp
	LocalInterface    string   `json:"local_interface"`
	LocalInterfaceIdx int      `json:"local_interface_index"`
	RemoteDevice      string   `json:"remote_device"`
	RemoteInterface   string   `json:"remote_interface,omitempty"`
	RemoteIP          string   `json:"remote_ip,omitempty"`
	Platform          string   `json:"platform,omitempty"`
	Description       string   `json:"description,omitempty"`
	Capabilities      string   `json:"capabilities,omitempty"`
	ChassisID         string   `json:"chassis_id,omitempty"`
	ChassisIDSubtype  int      `json:"chassis_id_subtype,omitempty"`
	PortID            string   `json:"port_id,omitempty"`
	PortIDSubtype     int      `json:"port_id_subtype,omitempty"`
}

// dedupKey is the within-device neighbor dedup key.
func (n *Neighbor) dedupKey() string {
	return n.RemoteDevice + "\x00" + n.LocalInterface + "\x00" + string(n.Protocol)
}

// Device is the full record for one discovered node.
type Device struct {
	Hostname       string        `json:"hostname"`
	FQDN           string        `json:"fqdn,omitempty"`
	IP             string        `json:"ip"`
	SysName        string        `json:"sys_name,omitempty"`
	Vendor         Vendor        `json:"vendor"`
	SysDescr       string        `json:"sys_descr,omitempty"`
	SysLocation    string        `json:"sys_location,omitempty"`
	SysContact     string        `json:"sys_contact,omitempty"`
	SysObjectID    string        `json:"sys_object_id,omitempty"`
	UptimeTicks    uint32        `json:"uptime_ticks"`
	Protocol       Protocol      `json:"discovery_protocol"` // snmp | ssh
	CredentialUsed string        `json:"credential_used,omitempty"`
	Depth          int           `json:"depth"`
	DiscoveredAt   time.Time     `json:"discovered_at"`
	Duration       time.Duration `json:"duration_ns"`
	Success        bool          `json:"success"`
	Errors         []string      `json:"discovery_errors,omitempty"`

	Interfaces []Interface `json:"interfaces"`
	Neighbors  []Neighbor  `json:"neighbors"`

	// ARPTable maps lowercase colon-separated MAC -> IPv4, gathered by the
	// ARP collector and consulted by LLDP post-processing.
	ARPTable map[string]string `json:"arp_table,omitempty"`
}

// Identifiers returns every alias this device is known by, for registration
// in the deduplication registry after a successful discovery.
func (d *Device) Identifiers() []string {
	ids := make([]string, 0, 4)
	if d.IP != "" {
		ids = append(ids, d.IP)
	}

	if d.Hostname != "" {
		ids = append(ids, d.Hostname)
	}

	if d.SysName != "" {
		ids = append(ids, d.SysName)
	}

	if d.FQDN != "" {
		ids = append(ids, d.FQDN)
	}

	return ids
}

// AddNeighbor appends n unless an entry with the same dedup key already
// exists on the device.
func (d *Device) AddNeighbor(n Neighbor) {
	key := n.dedupKey()
	for i := range d.Neighbors {
		if d.Neighbors[i].dedupKey() == key {
			return
		}
	}

	d.Neighbors = append(d.Neighbors, n)
}

// InterfaceByIndex returns the interface record for ifIndex, if collected.
func (d *Device) InterfaceByIndex(ifIndex int) (*Interface, bool) {
	for i := range d.Interfaces {
		if d.Interfaces[i].IfIndex == ifIndex {
			return &d.Interfaces[i], true
		}
	}

	return nil, false
}

// CanonicalName is the display identity used in the topology map: sys_name,
// else hostname, else ip.
func (d *Device) CanonicalName() string {
	switch {
	case d.SysName != "":
		return d.SysName
	case d.Hostname != "":
		return d.Hostname
	default:
		return d.IP
	}
}

// DiscoveryResult is the aggregate output of one Crawl call.
type DiscoveryResult struct {
	RunID           string    `json:"run_id"`
	Seeds           []string  `json:"seeds"`
	MaxDepth        int       `json:"max_depth"`
	Domains         []string  `json:"domains,omitempty"`
	ExcludePatterns []string  `json:"exclude_patterns,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	Attempted       int       `json:"total_attempted"`
	Successful      int       `json:"successful"`
	Failed          int       `json:"failed"`
	Excluded        int       `json:"excluded"`
	Skipped         int       `json:"skipped"`
	Cancelled       bool      `json:"cancelled"`
	Devices         []*Device `json:"devices"`
}

// DevicesByDepth groups the result's devices by discovery depth.
func (r *DiscoveryResult) DevicesByDepth() map[int][]*Device {
	out := make(map[int][]*Device)
	for _, d := range r.Devices {
		out[d.Depth] = append(out[d.Depth], d)
	}

	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	neg := n < 0
	if neg {
		n = -n
	}

	var buf [20]byte

	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	if neg {
		i--
		buf[i] = '-'
	}

	return string(buf[i:])
}
