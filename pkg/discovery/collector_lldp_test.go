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

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
)

func TestLLDPColumnAndKey(t *testing.T) {
	col, key, ok := lldpColumnAndKey(oidLLDPRemTable + ".5.12.3")
	assert.True(t, ok)
	assert.Equal(t, 5, col)
	assert.Equal(t, "12.3", key)

	_, _, ok = lldpColumnAndKey(oidLLDPRemTable)
	assert.False(t, ok)
}

func TestLLDPLocalPortFromKey(t *testing.T) {
	assert.Equal(t, 12, lldpLocalPortFromKey("0.12.3"))
	assert.Equal(t, 0, lldpLocalPortFromKey("onlyone"))
}

func TestDecodeCapabilities(t *testing.T) {
	// bit 2 (bridge) and bit 4 (router) set.
	got := decodeCapabilities(gosnmp.SnmpPDU{Value: []byte{0b00010100}})
	assert.Equal(t, "bridge,router", got)

	assert.Equal(t, "", decodeCapabilities(gosnmp.SnmpPDU{Value: []byte{}}))
	assert.Equal(t, "", decodeCapabilities(gosnmp.SnmpPDU{Value: "not-bytes"}))
}

func TestPduInt(t *testing.T) {
	assert.Equal(t, 42, pduInt(gosnmp.SnmpPDU{Value: int(42)}))
	assert.Equal(t, 42, pduInt(gosnmp.SnmpPDU{Value: uint32(42)}))
	assert.Equal(t, 0, pduInt(gosnmp.SnmpPDU{Value: "nope"}))
}

func TestLLDPManAddrFields(t *testing.T) {
	// timeMark=0, localPort=12, remIndex=3, addrSubtype=1 (IPv4), addrLen=4, octets=10.0.0.50
	oid := oidLLDPRemManAddr + ".0.12.3.1.4.10.0.0.50"

	localPort, addrSubtype, ip, ok := lldpManAddrFields(oid, oidLLDPRemManAddr)
	assert.True(t, ok)
	assert.Equal(t, 12, localPort)
	assert.Equal(t, 1, addrSubtype)
	assert.Equal(t, "10.0.0.50", ip)
}

func TestLLDPManAddrFieldsRejectsShortSuffix(t *testing.T) {
	_, _, _, ok := lldpManAddrFields(oidLLDPRemManAddr+".0.12.3.1", oidLLDPRemManAddr)
	assert.False(t, ok)
}

func TestLLDPManAddrFieldsRejectsOutOfRangeOctet(t *testing.T) {
	oid := oidLLDPRemManAddr + ".0.12.3.1.4.10.0.0.999"

	_, _, _, ok := lldpManAddrFields(oid, oidLLDPRemManAddr)
	assert.False(t, ok)
}

func TestApplyLLDPColumn(t *testing.T) {
	r := &lldpRemRow{}

	applyLLDPColumn(r, lldpColChassisIDSubtype, gosnmp.SnmpPDU{Value: int(4)})
	applyLLDPColumn(r, lldpColChassisID, gosnmp.SnmpPDU{Value: []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}})
	applyLLDPColumn(r, lldpColPortIDSubtype, gosnmp.SnmpPDU{Value: int(5)})
	applyLLDPColumn(r, lldpColPortID, gosnmp.SnmpPDU{Value: []byte("Gi0/2")})
	applyLLDPColumn(r, lldpColSysName, gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: []byte("core-b")})

	assert.Equal(t, 4, r.chassisIDSubtype)
	assert.Equal(t, 5, r.portIDSubtype)
	assert.Equal(t, "core-b", r.sysName)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", decodeChassisID(r.chassisIDSubtype, r.chassisID))
	assert.Equal(t, "Gi0/2", decodePortID(r.portIDSubtype, r.portID))
}
