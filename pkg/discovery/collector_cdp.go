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
)

const (
	oidCDPCacheDeviceId   = ".1.3.6.1.4.1.9.9.23.1.2.1.1.6"
	oidCDPCacheDevicePort = ".1.3.6.1.4.1.9.9.23.1.2.1.1.7"
	oidCDPCacheAddress    = ".1.3.6.1.4.1.9.9.23.1.2.1.1.4"
	oidCDPCachePlatform   = ".1.3.6.1.4.1.9.9.23.1.2.1.1.8"
	oidCDPCacheVersion    = ".1.3.6.1.4.1.9.9.23.1.2.1.1.5"
)

// CDPCollector walks cdpCacheTable. It runs only against Cisco devices.
type CDPCollector struct {
	Transport *Transport
}

type cdpRow struct {
	ifIndex    int
	deviceID   string
	devicePort string
	address    string
	platform   string
	version    string
}

func (c *CDPCollector) Neighbors(ctx context.Context, dev *Device) ([]Neighbor, error) {
	if dev.Vendor != VendorCisco {
		return nil, nil
	}

	rows := make(map[string]*cdpRow)

	cols := []struct {
		oid   string
		apply func(*cdpRow, gosnmp.SnmpPDU)
	}{
		{oidCDPCacheDeviceId, func(r *cdpRow, v gosnmp.SnmpPDU) { r.deviceID = pduString(v) }},
		{oidCDPCacheDevicePort, func(r *cdpRow, v gosnmp.SnmpPDU) { r.devicePort = pduString(v) }},
		{oidCDPCacheAddress, func(r *cdpRow, v gosnmp.SnmpPDU) { r.address = decodeCDPAddress(v) }},
		{oidCDPCachePlatform, func(r *cdpRow, v gosnmp.SnmpPDU) { r.platform = pduString(v) }},
		{oidCDPCacheVersion, func(r *cdpRow, v gosnmp.SnmpPDU) { r.version = pduString(v) }},
	}

	for _, col := range cols {
		walked, err := c.Transport.Walk(ctx, col.oid)
		if err != nil {
			continue
		}

		for _, row := range walked {
			key, ifIndex, ok := cdpTableKey(row.OID, col.oid)
			if !ok {
				continue
			}

			r, ok := rows[key]
			if !ok {
				r = &cdpRow{ifIndex: ifIndex}
				rows[key] = r
			}

			col.apply(r, row.Value)
		}
	}

	var neighbors []Neighbor

	for _, r := range rows {
		if isSentinelCDPDeviceID(r.deviceID) {
			if r.address == "" {
				continue
			}

			r.deviceID = r.address
		}

		localName := r.devicePort
		if iface, ok := dev.InterfaceByIndex(r.ifIndex); ok {
			localName = iface.DisplayName()
		}

		neighbors = append(neighbors, Neighbor{
			Protocol:          ProtocolCDP,
			LocalInterface:    normalizeInterfaceName(localName, dev.Vendor),
			LocalInterfaceIdx: r.ifIndex,
			RemoteDevice:      r.deviceID,
			RemoteInterface:   normalizeInterfaceName(r.devicePort, VendorUnknown),
			RemoteIP:          r.address,
			Platform:          r.platform,
			Description:       r.version,
		})
	}

	return neighbors, nil
}

func isSentinelCDPDeviceID(id string) bool {
	switch id {
	case "", "(", "(\x00", "CW_":
		return true
	default:
		return strings.HasPrefix(id, "CW_")
	}
}

// cdpTableKey derives the "ifIndex.entryIndex" table key and the leading
// ifIndex from a walked cdpCacheTable OID.
func cdpTableKey(oid, base string) (string, int, bool) {
	suffix := strings.TrimPrefix(oid, base)
	suffix = strings.TrimPrefix(suffix, ".")

	parts := strings.SplitN(suffix, ".", 2)
	if len(parts) == 0 || parts[0] == "" {
		return "", 0, false
	}

	ifIndex, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", 0, false
	}

	return suffix, ifIndex, true
}

func decodeCDPAddress(v gosnmp.SnmpPDU) string {
	raw, ok := v.Value.([]byte)
	if !ok {
		return ""
	}

	if ip, ok := decodeIPv4(raw); ok {
		return ip
	}

	return string(raw)
}
