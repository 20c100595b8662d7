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

	"github.com/gosnmp/gosnmp"
)

const (
	oidSysDescr    = ".1.3.6.1.2.1.1.1.0"
	oidSysObjectID = ".1.3.6.1.2.1.1.2.0"
	oidSysUptime   = ".1.3.6.1.2.1.1.3.0"
	oidSysContact  = ".1.3.6.1.2.1.1.4.0"
	oidSysName     = ".1.3.6.1.2.1.1.5.0"
	oidSysLocation = ".1.3.6.1.2.1.1.6.0"
)

// SystemCollector fills in Device.SysDescr, SysName, SysLocation, SysContact,
// SysObjectID, UptimeTicks, and Vendor from a single batched GetMulti.
type SystemCollector struct {
	Transport *Transport
}

func (c *SystemCollector) Populate(ctx context.Context, dev *Device) error {
	oids := []string{oidSysDescr, oidSysName, oidSysLocation, oidSysContact, oidSysObjectID, oidSysUptime}

	values, ok := c.Transport.GetMulti(ctx, oids)
	if !ok {
		return ErrNoSNMPDataReturned
	}

	for i, v := range values {
		switch oids[i] {
		case oidSysDescr:
			dev.SysDescr = pduString(v)
		case oidSysName:
			dev.SysName = pduString(v)
		case oidSysLocation:
			dev.SysLocation = pduString(v)
		case oidSysContact:
			dev.SysContact = pduString(v)
		case oidSysObjectID:
			dev.SysObjectID = pduObjectID(v)
		case oidSysUptime:
			dev.UptimeTicks = pduUptime(v)
		}
	}

	dev.Vendor = detectVendor(dev.SysDescr)

	return nil
}

func pduString(v gosnmp.SnmpPDU) string {
	if v.Type != gosnmp.OctetString {
		return ""
	}

	b, ok := v.Value.([]byte)
	if !ok {
		return ""
	}

	return string(b)
}

func pduObjectID(v gosnmp.SnmpPDU) string {
	if v.Type != gosnmp.ObjectIdentifier {
		return ""
	}

	s, _ := v.Value.(string)

	return s
}

func pduUptime(v gosnmp.SnmpPDU) uint32 {
	if v.Type != gosnmp.TimeTicks {
		return 0
	}

	switch n := v.Value.(type) {
	case uint32:
		return n
	case int:
		return uint32(n)
	default:
		return 0
	}
}
