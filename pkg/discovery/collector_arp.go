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
)

const oidIPNetToMediaPhysAddress = ".1.3.6.1.2.1.4.22.1.2"

// ARPCollector walks ipNetToMediaPhysAddress and fills Device.ARPTable with
// mac_lowercase -> ipv4. The IPv4 address is the last four dotted elements
// of the table OID, not the varbind value.
type ARPCollector struct {
	Transport *Transport
}

func (c *ARPCollector) Populate(ctx context.Context, dev *Device) error {
	rows, err := c.Transport.Walk(ctx, oidIPNetToMediaPhysAddress)
	if err != nil {
		return err
	}

	if dev.ARPTable == nil {
		dev.ARPTable = make(map[string]string)
	}

	for _, row := range rows {
		ip, ok := arpIPFromOID(row.OID, oidIPNetToMediaPhysAddress)
		if !ok {
			continue
		}

		raw, ok := row.Value.Value.([]byte)
		if !ok {
			continue
		}

		mac, ok := decodeMAC(raw)
		if !ok {
			continue
		}

		dev.ARPTable[mac] = ip
	}

	return nil
}

func arpIPFromOID(oid, base string) (string, bool) {
	suffix := strings.TrimPrefix(oid, base)
	suffix = strings.TrimPrefix(suffix, ".")

	parts := strings.Split(suffix, ".")
	if len(parts) < 4 {
		return "", false
	}

	tail := parts[len(parts)-4:]
	for _, p := range tail {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return "", false
		}
	}

	return strings.Join(tail, "."), true
}
