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
	"context"
	"strconv"
	"strings"

	"github.com/gosnmp/gosnmp"
	"github.com/rs/zerolog/log"
)

const (
	oidLLDPRemTable   = ".1.0.8802.1.1.2.1.4.1.1"
	oidLLDPLocPortID  = ".1.0.8802.1.1.2.1.3.7.1.3"
	oidLLDPRemManAddr = ".1.0.8802.1.1.2.1.4.2.1.3"
)

// lldpRemTable column numbers, relative to oidLLDPRemTable.
const (
	lldpColChassisIDSubtype = 4
	lldpColChassisID        = 5
	lldpColPortIDSubtype    = 6
	lldpColPortID           = 7
	lldpColPortDesc         = 8
	lldpColSysName          = 9
	lldpColSysDesc          = 10
	lldpColCapEnabled       = 12
)

const lldpManAddrFamilyIPv4 = 1

// LLDPCollector walks lldpRemTable and the supporting local-port and
// management-address tables.
type LLDPCollector struct {
	Transport *Transport
}

type lldpRemRow struct {
	localPortNum     int
	chassisIDSubtype int
	chassisID        []byte
	portIDSubtype    int
	portID           []byte
	portDesc         string
	sysName          string
	sysDesc          string
	capabilities     string
}

func (c *LLDPCollector) Neighbors(ctx context.Context, dev *Device) ([]Neighbor, error) {
	locPorts := c.walkLocalPorts(ctx)

	rows := make(map[string]*lldpRemRow)

	rawRows, err := c.Transport.Walk(ctx, oidLLDPRemTable)
	if err != nil {
		return nil, err
	}

	for _, row := range rawRows {
		col, key, ok := lldpColumnAndKey(row.OID)
		if !ok {
			continue
		}

		r, ok := rows[key]
		if !ok {
			r = &lldpRemRow{localPortNum: lldpLocalPortFromKey(key)}
			rows[key] = r
		}

		applyLLDPColumn(r, col, row.Value)
	}

	neighbors := make([]Neighbor, 0, len(rows))

	for _, r := range rows {
		localName, ok := locPorts[r.localPortNum]
		if !ok {
			if iface, ok := dev.InterfaceByIndex(r.localPortNum); ok {
				localName = iface.DisplayName()
			} else {
				localName = syntheticIfName(r.localPortNum)
			}
		}

		remoteDevice := r.sysName
		if remoteDevice == "" {
			remoteDevice = decodeChassisID(r.chassisIDSubtype, r.chassisID)
		}

		neighbors = append(neighbors, Neighbor{
			Protocol:          ProtocolLLDP,
			LocalInterface:    normalizeInterfaceName(localName, dev.Vendor),
			LocalInterfaceIdx: r.localPortNum,
			RemoteDevice:      remoteDevice,
			RemoteInterface:   normalizeInterfaceName(decodePortID(r.portIDSubtype, r.portID), VendorUnknown),
			Platform:          r.sysDesc,
			Description:       r.portDesc,
			Capabilities:      r.capabilities,
			ChassisID:         decodeChassisID(r.chassisIDSubtype, r.chassisID),
			ChassisIDSubtype:  r.chassisIDSubtype,
			PortID:            decodePortID(r.portIDSubtype, r.portID),
			PortIDSubtype:     r.portIDSubtype,
		})
	}

	c.attachManagementAddresses(ctx, dev, &neighbors)

	return neighbors, nil
}

// walkLocalPorts builds lldpLocPortNum -> interface name. Absence of this
// table is not an error: callers fall back to treating the port number as
// an ifIndex.
func (c *LLDPCollector) walkLocalPorts(ctx context.Context) map[int]string {
	out := make(map[int]string)

	rows, err := c.Transport.Walk(ctx, oidLLDPLocPortID)
	if err != nil || len(rows) == 0 {
		log.Debug().Msg("lldpLocPortTable absent, falling back to ifIndex for local port resolution")
		return out
	}

	for _, row := range rows {
		idx, ok := trailingIndex(row.OID, oidLLDPLocPortID)
		if !ok {
			continue
		}

		if raw, ok := row.Value.Value.([]byte); ok {
			out[idx] = string(raw)
		}
	}

	return out
}

func applyLLDPColumn(r *lldpRemRow, col int, v gosnmp.SnmpPDU) {
	switch col {
	case lldpColChassisIDSubtype:
		r.chassisIDSubtype = pduInt(v)
	case lldpColChassisID:
		r.chassisID, _ = v.Value.([]byte)
	case lldpColPortIDSubtype:
		r.portIDSubtype = pduInt(v)
	case lldpColPortID:
		r.portID, _ = v.Value.([]byte)
	case lldpColPortDesc:
		r.portDesc = pduString(v)
	case lldpColSysName:
		r.sysName = pduString(v)
	case lldpColSysDesc:
		r.sysDesc = pduString(v)
	case lldpColCapEnabled:
		r.capabilities = decodeCapabilities(v)
	}
}

func pduInt(v gosnmp.SnmpPDU) int {
	switch n := v.Value.(type) {
	case int:
		return n
	case uint32:
		return int(n)
	default:
		return 0
	}
}

func decodeCapabilities(v gosnmp.SnmpPDU) string {
	raw, ok := v.Value.([]byte)
	if !ok || len(raw) == 0 {
		return ""
	}

	bits := raw[0]

	var caps []string

	names := []string{"other", "repeater", "bridge", "wlan-ap", "router", "telephone", "docsis", "station"}
	for i, name := range names {
		if bits&(1<<uint(i)) != 0 {
			caps = append(caps, name)
		}
	}

	return strings.Join(caps, ",")
}

// lldpColumnAndKey splits a walked lldpRemTable OID into its column number
// and the "timeMark.localPortNum.remIndex" key.
func lldpColumnAndKey(oid string) (col int, key string, ok bool) {
	suffix := strings.TrimPrefix(oid, oidLLDPRemTable)
	suffix = strings.TrimPrefix(suffix, ".")

	parts := strings.SplitN(suffix, ".", 2)
	if len(parts) != 2 {
		return 0, "", false
	}

	col, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", false
	}

	return col, parts[1], true
}

// lldpManAddrFields splits a lldpRemManAddrTable OID into the local port
// number, the address-subtype, and the IPv4 address, per the table's
// timeMark.localPortNum.remIndex.addrSubtype.addrLen.<address-octets>
// index. The address itself lives in the OID, not the varbind value.
func lldpManAddrFields(oid, base string) (localPort, addrSubtype int, ip string, ok bool) {
	suffix := strings.TrimPrefix(oid, base)
	suffix = strings.TrimPrefix(suffix, ".")

	parts := strings.Split(suffix, ".")
	if len(parts) < 9 {
		return 0, 0, "", false
	}

	localPort = lldpLocalPortFromKey(parts[0] + "." + parts[1])

	addrSubtype, err := strconv.Atoi(parts[3])
	if err != nil {
		return 0, 0, "", false
	}

	tail := parts[len(parts)-4:]
	for _, p := range tail {
		n, convErr := strconv.Atoi(p)
		if convErr != nil || n < 0 || n > 255 {
			return 0, 0, "", false
		}
	}

	return localPort, addrSubtype, strings.Join(tail, "."), true
}

func lldpLocalPortFromKey(key string) int {
	parts := strings.SplitN(key, ".", 3)
	if len(parts) < 2 {
		return 0
	}

	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}

	return n
}

// attachManagementAddresses walks lldpRemManAddrTable and fills RemoteIP
// for neighbors it can match to, creating a minimal neighbor record for
// management-only entries that have no corresponding lldpRemTable row.
func (c *LLDPCollector) attachManagementAddresses(ctx context.Context, dev *Device, neighbors *[]Neighbor) {
	rows, err := c.Transport.Walk(ctx, oidLLDPRemManAddr)
	if err != nil {
		return
	}

	byLocalPort := make(map[int]*Neighbor)
	for i := range *neighbors {
		byLocalPort[(*neighbors)[i].LocalInterfaceIdx] = &(*neighbors)[i]
	}

	skipped := 0

	defer func() {
		if skipped > 0 {
			log.Debug().Int("count", skipped).Msg("dropped non-IPv4 LLDP management addresses")
		}
	}()

	for _, row := range rows {
		localPort, addrSubtype, ip, ok := lldpManAddrFields(row.OID, oidLLDPRemManAddr)
		if !ok {
			continue
		}

		if addrSubtype != lldpManAddrFamilyIPv4 {
			skipped++
			continue
		}

		if n, ok := byLocalPort[localPort]; ok {
			n.RemoteIP = ip
			continue
		}

		name := syntheticIfName(localPort)
		if iface, ok := dev.InterfaceByIndex(localPort); ok {
			name = iface.DisplayName()
		}

		*neighbors = append(*neighbors, Neighbor{
			Protocol:          ProtocolLLDP,
			LocalInterface:    normalizeInterfaceName(name, dev.Vendor),
			LocalInterfaceIdx: localPort,
			RemoteDevice:      ip,
			RemoteIP:          ip,
		})
	}
}
