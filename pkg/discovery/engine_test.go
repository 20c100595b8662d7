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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineFillsDefaults(t *testing.T) {
	e := NewEngine(nil, EngineConfig{})

	assert.Equal(t, defaultMaxConcurrent, e.cfg.MaxConcurrent)
	assert.Equal(t, defaultSNMPTimeout, e.cfg.Timeout)
	assert.Nil(t, e.resolver, "a nil vault must not produce a resolver")
}

func TestNewEngineKeepsExplicitValues(t *testing.T) {
	e := NewEngine(newFakeVault(), EngineConfig{MaxConcurrent: 5, Timeout: 1})

	assert.Equal(t, 5, e.cfg.MaxConcurrent)
	assert.NotNil(t, e.resolver)
}

func TestResolveTargetParsesIPWithoutDNS(t *testing.T) {
	e := &Engine{cfg: EngineConfig{NoDNS: true}}

	ip, hostname, fqdn, err := e.resolveTarget("10.0.0.1", nil)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", ip)
	assert.Empty(t, hostname)
	assert.Empty(t, fqdn)
}

func TestResolveTargetNoDNSRejectsHostname(t *testing.T) {
	e := &Engine{cfg: EngineConfig{NoDNS: true}}

	_, _, _, err := e.resolveTarget("switch-a", nil)
	assert.ErrorIs(t, err, ErrNoDNSRecord)
}

func TestDomainSuffixedSkipsEmptyDomain(t *testing.T) {
	got := domainSuffixed("switch-a", []string{"example.com", "", "lab.example.com"})
	assert.Equal(t, []string{"switch-a.example.com", "switch-a.lab.example.com"}, got)
}

func TestShortHostnameTrimsConfiguredSuffix(t *testing.T) {
	assert.Equal(t, "switch-a", shortHostname("switch-a.example.com", []string{"example.com"}))
	assert.Equal(t, "switch-a.other.net", shortHostname("switch-a.other.net", []string{"example.com"}))
}

func TestCrawlRejectsEmptySeeds(t *testing.T) {
	e := &Engine{}

	_, err := e.Crawl(context.Background(), nil, 1, nil, nil, nil, "")
	assert.ErrorIs(t, err, ErrNoSeedsProvided)
}

func TestCrawlRejectsNegativeMaxDepth(t *testing.T) {
	e := &Engine{}

	_, err := e.Crawl(context.Background(), []string{"switch-a"}, -1, nil, nil, nil, "")
	assert.ErrorIs(t, err, ErrInvalidMaxDepth)
}

func TestFillLLDPNeighborIPsFromARPFillsMatchingChassisMAC(t *testing.T) {
	dev := &Device{
		ARPTable: map[string]string{"aa:bb:cc:dd:ee:ff": "10.0.0.50"},
		Neighbors: []Neighbor{
			{Protocol: ProtocolLLDP, ChassisID: "aa:bb:cc:dd:ee:ff", RemoteDevice: "aa:bb:cc:dd:ee:ff"},
		},
	}

	fillLLDPNeighborIPsFromARP(dev)

	assert.Equal(t, "10.0.0.50", dev.Neighbors[0].RemoteIP)
}

func TestFillLLDPNeighborIPsFromARPLeavesNonMACChassisAlone(t *testing.T) {
	dev := &Device{
		ARPTable: map[string]string{"aa:bb:cc:dd:ee:ff": "10.0.0.50"},
		Neighbors: []Neighbor{
			{Protocol: ProtocolLLDP, ChassisID: "core-b", RemoteDevice: "core-b"},
		},
	}

	fillLLDPNeighborIPsFromARP(dev)

	assert.Empty(t, dev.Neighbors[0].RemoteIP)
}

func TestResolveCredentialUsesAuthOverrideWithoutResolver(t *testing.T) {
	e := &Engine{}
	auth := &AuthOverride{Credential: &Credential{Name: "manual"}, Protocol: ProtocolSNMP}

	cred, proto, err := e.resolveCredential(context.Background(), "10.0.0.1", auth, nil)
	require.NoError(t, err)
	assert.Equal(t, "manual", cred.Name)
	assert.Equal(t, ProtocolSNMP, proto)
}

func TestResolveCredentialErrorsWithoutResolverOrOverride(t *testing.T) {
	e := &Engine{}

	_, _, err := e.resolveCredential(context.Background(), "10.0.0.1", nil, nil)
	assert.ErrorIs(t, err, ErrNoResolverConfigured)
}

func TestDiscoverDeviceErrorsWithoutResolverOrOverride(t *testing.T) {
	e := NewEngine(nil, EngineConfig{})

	dev, err := e.DiscoverDevice(context.Background(), "10.0.0.1", nil, nil, nil, 0, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoResolverConfigured)
	assert.False(t, dev.Success)
}

func TestFallbackSSHNeighborsNoopsWithoutResolver(t *testing.T) {
	e := &Engine{}
	dev := &Device{}

	assert.NoError(t, e.fallbackSSHNeighbors(context.Background(), "10.0.0.1", dev))
}

func TestFillLLDPNeighborIPsFromARPSkipsAlreadyResolvedIP(t *testing.T) {
	dev := &Device{
		ARPTable: map[string]string{"aa:bb:cc:dd:ee:ff": "10.0.0.50"},
		Neighbors: []Neighbor{
			{Protocol: ProtocolLLDP, ChassisID: "aa:bb:cc:dd:ee:ff", RemoteIP: "10.0.0.99"},
		},
	}

	fillLLDPNeighborIPsFromARP(dev)

	assert.Equal(t, "10.0.0.99", dev.Neighbors[0].RemoteIP)
}
