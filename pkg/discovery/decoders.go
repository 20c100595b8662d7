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
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const macByteLength = 6

// decodeMAC accepts colon, dash, or Cisco dotted notation, plus a hex string
// or raw 6-byte binary form, and returns lowercase colon-separated output.
// Strings that do not parse into six octets return false.
func decodeMAC(raw []byte) (string, bool) {
	if len(raw) == macByteLength {
		return formatMAC(raw), true
	}

	s := strings.TrimSpace(string(raw))
	if s == "" {
		return "", false
	}

	s = strings.NewReplacer("-", "", ":", "", ".", "").Replace(s)
	if len(s) == macByteLength*2 {
		decoded, err := hex.DecodeString(s)
		if err == nil && len(decoded) == macByteLength {
			return formatMAC(decoded), true
		}
	}

	return "", false
}

func formatMAC(b []byte) string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}

// decodeIPv4 accepts a 4-byte binary value, a dotted-quad string, or an
// address-family-prefixed 5-byte form (first byte is the family, dropped).
// Each octet must be in [0,255]; anything else returns false.
func decodeIPv4(raw []byte) (string, bool) {
	switch len(raw) {
	case 4:
		return fmt.Sprintf("%d.%d.%d.%d", raw[0], raw[1], raw[2], raw[3]), true
	case 5:
		return fmt.Sprintf("%d.%d.%d.%d", raw[1], raw[2], raw[3], raw[4]), true
	default:
		s := strings.TrimSpace(string(raw))
		parts := strings.Split(s, ".")
		if len(parts) != 4 {
			return "", false
		}

		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 || n > 255 {
				return "", false
			}
		}

		return s, true
	}
}

// LLDP chassis-ID subtypes, IEEE 802.1AB.
const (
	chassisSubtypeChassisComponent = 1
	chassisSubtypeIfAlias          = 2
	chassisSubtypePortComponent    = 3
	chassisSubtypeMACAddress       = 4
	chassisSubtypeNetworkAddress   = 5
	chassisSubtypeIfName           = 6
	chassisSubtypeLocal            = 7
)

// decodeChassisID decodes an lldpRemChassisId value by its subtype.
func decodeChassisID(subtype int, raw []byte) string {
	switch subtype {
	case chassisSubtypeMACAddress:
		if mac, ok := decodeMAC(raw); ok {
			return mac
		}

		return string(raw)
	case chassisSubtypeNetworkAddress:
		if len(raw) >= 1 {
			if ip, ok := decodeIPv4(raw[1:]); ok {
				return ip
			}
		}

		return string(raw)
	case chassisSubtypeIfName, chassisSubtypeLocal:
		return string(raw)
	default:
		return string(raw)
	}
}

// LLDP port-ID subtypes, IEEE 802.1AB.
const (
	portSubtypeIfAlias        = 1
	portSubtypePortComponent  = 2
	portSubtypeMACAddress     = 3
	portSubtypeNetworkAddress = 4
	portSubtypeIfName         = 5
	portSubtypeAgentCircuitID = 6
	portSubtypeLocal          = 7
)

// decodePortID decodes an lldpRemPortId value by its subtype.
func decodePortID(subtype int, raw []byte) string {
	switch subtype {
	case portSubtypeMACAddress:
		if mac, ok := decodeMAC(raw); ok {
			return mac
		}

		return string(raw)
	case portSubtypeNetworkAddress:
		if len(raw) >= 1 {
			if ip, ok := decodeIPv4(raw[1:]); ok {
				return ip
			}
		}

		return string(raw)
	case portSubtypeIfName, portSubtypeLocal:
		return string(raw)
	default:
		return string(raw)
	}
}

// detectVendor classifies a device from its sysDescr text.
func detectVendor(sysDescr string) Vendor {
	s := strings.ToLower(sysDescr)

	switch {
	case strings.Contains(s, "cisco ios"), strings.Contains(s, "nx-os"):
		return VendorCisco
	case strings.Contains(s, "arista"), strings.Contains(s, "eos"):
		return VendorArista
	case strings.Contains(s, "junos"), strings.Contains(s, "juniper"):
		return VendorJuniper
	case strings.Contains(s, "pan-os"):
		return VendorPaloAlto
	case strings.Contains(s, "fortios"):
		return VendorFortinet
	case strings.Contains(s, "huawei"):
		return VendorHuawei
	case strings.Contains(s, "hp"), strings.Contains(s, "procurve"), strings.Contains(s, "aruba"):
		return VendorHP
	case strings.Contains(s, "linux"):
		return VendorLinux
	default:
		return VendorUnknown
	}
}

// ifaceRule is one entry of the interface-name normalization table. Longer,
// more specific prefixes must be ordered before their shorter substrings
// (e.g. TenGigabitEthernet before Ethernet) since matching stops at the
// first hit.
type ifaceRule struct {
	pattern *regexp.Regexp
	replace string
}

var ifaceRules = buildIfaceRules()

func buildIfaceRules() []ifaceRule {
	rules := []struct {
		pattern string
		replace string
	}{
		{`(?i)^TenGigabitEthernet(\S*)$`, "Te$1"},
		{`(?i)^TenGigE(\S*)$`, "Te$1"},
		{`(?i)^FortyGig(?:abitEthernet|E)(\S*)$`, "Fo$1"},
		{`(?i)^HundredGigE(\S*)$`, "Hu$1"},
		{`(?i)^GigabitEthernet(\S*)$`, "Gi$1"},
		{`(?i)^FastEthernet(\S*)$`, "Fa$1"},
		{`(?i)^Et(\d\S*)$`, "Eth$1"},
		{`(?i)^Ethernet(\S*)$`, "Eth$1"},
		{`(?i)^Port-Channel\s*(\d+)$`, "Po $1"},
		{`(?i)^Vlan\s*(\d+)$`, "Vl $1"},
		{`(?i)^Loopback\s*(\d+)$`, "Lo $1"},
		{`(?i)^Null\s*(\d+)$`, "Nu $1"},
	}

	out := make([]ifaceRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, ifaceRule{pattern: regexp.MustCompile(r.pattern), replace: r.replace})
	}

	return out
}

// normalizeInterfaceName expands vendor long forms to the canonical short
// form used across Neighbor and Interface records. Juniper physical
// interfaces additionally lose a trailing ".0" unit.
func normalizeInterfaceName(name string, vendor Vendor) string {
	name = strings.TrimSpace(name)

	for _, rule := range ifaceRules {
		if rule.pattern.MatchString(name) {
			name = rule.pattern.ReplaceAllString(name, rule.replace)
			break
		}
	}

	if vendor == VendorJuniper && strings.Contains(name, "/") {
		name = strings.TrimSuffix(name, ".0")
	}

	return name
}
