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
	"regexp"

	"github.com/rs/zerolog/log"
)

// macDeviceIDPattern matches a remote_device that is actually a bare MAC
// address, which must not be queued for further discovery.
var macDeviceIDPattern = regexp.MustCompile(`^([0-9a-fA-F]{2}[:.-]){5}[0-9a-fA-F]{2}$`)

// IsMACIdentifier reports whether id looks like a MAC address rather than
// a hostname or chassis identifier.
func IsMACIdentifier(id string) bool {
	return macDeviceIDPattern.MatchString(id)
}

// LinkEndpoint is one side of a confirmed topology connection.
type LinkEndpoint struct {
	LocalInterface  string `json:"local_interface"`
	RemoteInterface string `json:"remote_interface"`
}

// PeerInfo holds everything the topology map knows about one peer of a
// node: its identity and the confirmed connections reaching it.
type PeerInfo struct {
	IP          string         `json:"ip,omitempty"`
	Platform    string         `json:"platform,omitempty"`
	Connections []LinkEndpoint `json:"connections"`
}

// NodeInfo is one node in the topology map.
type NodeInfo struct {
	IP       string               `json:"ip"`
	Platform string               `json:"platform,omitempty"`
	Peers    map[string]*PeerInfo `json:"peers"`
}

// TopologyMap is keyed by canonical device name.
type TopologyMap map[string]*NodeInfo

// BuildTopology validates every claimed link across devices and returns
// the bidirectionally-confirmed map, with leaf-node and edge-referent
// exceptions per the validator design.
func BuildTopology(devices []*Device) TopologyMap {
	byName := make(map[string]*Device, len(devices))
	for _, d := range devices {
		byName[d.CanonicalName()] = d
	}

	out := make(TopologyMap, len(devices))
	for name, d := range byName {
		out[name] = &NodeInfo{IP: d.IP, Platform: string(d.Vendor), Peers: make(map[string]*PeerInfo)}
	}

	usedLocalIf := make(map[string]map[string]bool)

	for name, d := range byName {
		for _, n := range d.Neighbors {
			if !validateLink(name, d, n, byName, usedLocalIf) {
				continue
			}

			addLink(out, name, d, n, byName)
		}
	}

	return out
}

func validateLink(
	name string, d *Device, n Neighbor, byName map[string]*Device, usedLocalIf map[string]map[string]bool,
) bool {
	localIf := normalizeInterfaceName(n.LocalInterface, d.Vendor)

	if usedLocalIf[name] == nil {
		usedLocalIf[name] = make(map[string]bool)
	}

	if usedLocalIf[name][localIf] {
		return false
	}

	remote, ok := byName[n.RemoteDevice]
	if !ok {
		usedLocalIf[name][localIf] = true
		return true
	}

	if len(remote.Neighbors) == 0 {
		usedLocalIf[name][localIf] = true
		return true
	}

	remoteIf := normalizeInterfaceName(n.RemoteInterface, remote.Vendor)

	for _, rn := range remote.Neighbors {
		if rn.RemoteDevice != name {
			continue
		}

		if normalizeInterfaceName(rn.LocalInterface, remote.Vendor) != remoteIf {
			continue
		}

		if normalizeInterfaceName(rn.RemoteInterface, d.Vendor) != localIf {
			continue
		}

		usedLocalIf[name][localIf] = true

		return true
	}

	log.Debug().Str("local", name).Str("remote", n.RemoteDevice).Msg("dropping unconfirmed topology link")

	return false
}

func addLink(out TopologyMap, name string, d *Device, n Neighbor, byName map[string]*Device) {
	node := out[name]

	peer, ok := node.Peers[n.RemoteDevice]
	if !ok {
		peer = &PeerInfo{IP: n.RemoteIP, Platform: n.Platform}
		node.Peers[n.RemoteDevice] = peer
	}

	remoteVendor := VendorUnknown
	if remote, ok := byName[n.RemoteDevice]; ok {
		remoteVendor = remote.Vendor
	}

	peer.Connections = append(peer.Connections, LinkEndpoint{
		LocalInterface:  normalizeInterfaceName(n.LocalInterface, d.Vendor),
		RemoteInterface: normalizeInterfaceName(n.RemoteInterface, remoteVendor),
	})
}
