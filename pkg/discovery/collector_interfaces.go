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
	"sort"
	"strconv"
	"strings"

	"github.com/gosnmp/gosnmp"
)

const (
	oidIfName        = ".1.3.6.1.2.1.31.1.1.1.1"
	oidIfDescr       = ".1.3.6.1.2.1.2.2.1.2"
	oidIfAlias       = ".1.3.6.1.2.1.31.1.1.1.18"
	oidIfOperStatus  = ".1.3.6.1.2.1.2.2.1.8"
	oidIfAdminStatus = ".1.3.6.1.2.1.2.2.1.7"
	oidIfPhysAddress = ".1.3.6.1.2.1.2.2.1.6"
	oidIfHighSpeed   = ".1.3.6.1.2.1.31.1.1.1.15"
	oidIfMtu         = ".1.3.6.1.2.1.2.2.1.4"
)

const (
	ifStatusUp   = 1
	ifStatusDown = 2
)

// InterfaceCollector walks ifName, ifDescr, ifAlias, and the extended
// columns, assembling Device.Interfaces keyed by ifIndex.
type InterfaceCollector struct {
	Transport *Transport
}

// ifBuild accumulates the raw oper/admin status columns before they are
// collapsed into Interface.Status once both are known.
type ifBuild struct {
	iface      Interface
	operStatus int
	adminDown  bool
}

func (c *InterfaceCollector) Populate(ctx context.Context, dev *Device) error {
	byIndex := make(map[int]*ifBuild)

	get := func(idx int) *ifBuild {
		b, ok := byIndex[idx]
		if !ok {
			b = &ifBuild{iface: Interface{IfIndex: idx}}
			byIndex[idx] = b
		}

		return b
	}

	walks := []struct {
		oid   string
		apply func(*ifBuild, gosnmp.SnmpPDU)
	}{
		{oidIfName, func(b *ifBuild, v gosnmp.SnmpPDU) { b.iface.Name = pduString(v) }},
		{oidIfDescr, func(b *ifBuild, v gosnmp.SnmpPDU) { b.iface.Description = pduString(v) }},
		{oidIfAlias, func(b *ifBuild, v gosnmp.SnmpPDU) { b.iface.Alias = pduString(v) }},
		{oidIfPhysAddress, func(b *ifBuild, v gosnmp.SnmpPDU) {
			if raw, ok := v.Value.([]byte); ok {
				if mac, ok := decodeMAC(raw); ok {
					b.iface.MAC = mac
				}
			}
		}},
		{oidIfOperStatus, func(b *ifBuild, v gosnmp.SnmpPDU) {
			if v.Type == gosnmp.Integer {
				if n, ok := v.Value.(int); ok {
					b.operStatus = n
				}
			}
		}},
		{oidIfAdminStatus, func(b *ifBuild, v gosnmp.SnmpPDU) {
			if v.Type == gosnmp.Integer {
				if n, ok := v.Value.(int); ok {
					b.adminDown = n == ifStatusDown
				}
			}
		}},
		{oidIfHighSpeed, func(b *ifBuild, v gosnmp.SnmpPDU) { b.iface.SpeedMbps = pduGauge64(v) }},
		{oidIfMtu, func(b *ifBuild, v gosnmp.SnmpPDU) { b.iface.MTU = int(pduGauge64(v)) }},
	}

	found := false

	for _, w := range walks {
		rows, err := c.Transport.Walk(ctx, w.oid)
		if err != nil || len(rows) == 0 {
			continue
		}

		found = true

		for _, row := range rows {
			idx, ok := trailingIndex(row.OID, w.oid)
			if !ok {
				continue
			}

			w.apply(get(idx), row.Value)
		}
	}

	if !found {
		return ErrNoSNMPDataReturned
	}

	indices := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indices = append(indices, idx)
	}

	sort.Ints(indices)

	for _, idx := range indices {
		b := byIndex[idx]
		b.iface.Status = collapseStatus(b.operStatus, b.adminDown)
		dev.Interfaces = append(dev.Interfaces, b.iface)
	}

	return nil
}

func collapseStatus(oper int, adminDown bool) InterfaceStatus {
	if adminDown {
		return InterfaceAdminDown
	}

	switch oper {
	case ifStatusUp:
		return InterfaceUp
	case ifStatusDown:
		return InterfaceDown
	default:
		return InterfaceUnknown
	}
}

// trailingIndex extracts the integer suffix after base from a walked OID,
// e.g. trailingIndex(".1.3.6.1.2.1.2.2.1.2.7", ".1.3.6.1.2.1.2.2.1.2") -> 7.
func trailingIndex(oid, base string) (int, bool) {
	suffix := strings.TrimPrefix(oid, base)
	suffix = strings.TrimPrefix(suffix, ".")

	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}

	return n, true
}

func pduGauge64(v gosnmp.SnmpPDU) int64 {
	switch n := v.Value.(type) {
	case int:
		return int64(n)
	case uint:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	default:
		return 0
	}
}
