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

func newTestScheduler(excludePatterns ...string) *Scheduler {
	return &Scheduler{
		registry:        NewRegistry(),
		bus:             NewEventBus(),
		excludePatterns: excludePatterns,
	}
}

func TestEnqueueNeighborSkipsMACIdentifier(t *testing.T) {
	s := newTestScheduler()
	result := &DiscoveryResult{}

	var next []queueEntry
	s.enqueueNeighbor(Neighbor{RemoteDevice: "aa:bb:cc:dd:ee:ff"}, 0, &next, result)

	assert.Empty(t, next)
	assert.Equal(t, 1, result.Skipped)
}

func TestEnqueueNeighborSkipsEmptyIdentifier(t *testing.T) {
	s := newTestScheduler()
	result := &DiscoveryResult{}

	var next []queueEntry
	s.enqueueNeighbor(Neighbor{}, 0, &next, result)

	assert.Empty(t, next)
	assert.Equal(t, 1, result.Skipped)
}

func TestEnqueueNeighborSkipsAlreadyClaimed(t *testing.T) {
	s := newTestScheduler()
	require.True(t, s.registry.TryClaim("core-b"))

	result := &DiscoveryResult{}

	var next []queueEntry
	s.enqueueNeighbor(Neighbor{RemoteDevice: "core-b"}, 0, &next, result)

	assert.Empty(t, next)
	assert.Equal(t, 1, result.Skipped)
}

func TestEnqueueNeighborSuccessClaimsRemoteIPToo(t *testing.T) {
	s := newTestScheduler()
	result := &DiscoveryResult{}

	var next []queueEntry
	s.enqueueNeighbor(Neighbor{RemoteDevice: "core-b", RemoteIP: "10.0.0.2", LocalInterface: "Gi0/1"}, 1, &next, result)

	require.Len(t, next, 1)
	assert.Equal(t, "core-b", next[0].target)
	assert.Equal(t, 2, next[0].depth)
	assert.Equal(t, 0, result.Skipped)

	assert.False(t, s.registry.TryClaim("10.0.0.2"), "remote IP should already be claimed as an alias")
}

func TestEnqueueNeighborFallsBackToRemoteIPWhenNoDeviceName(t *testing.T) {
	s := newTestScheduler()
	result := &DiscoveryResult{}

	var next []queueEntry
	s.enqueueNeighbor(Neighbor{RemoteIP: "10.0.0.2"}, 0, &next, result)

	require.Len(t, next, 1)
	assert.Equal(t, "10.0.0.2", next[0].target)
}

func TestSchedulerIsExcludedMatchesAnyField(t *testing.T) {
	s := newTestScheduler("lab-", "")

	assert.True(t, s.isExcluded(&Device{Hostname: "lab-switch-1"}))
	assert.True(t, s.isExcluded(&Device{SysName: "lab-core"}))
	assert.True(t, s.isExcluded(&Device{SysDescr: "lab-test unit"}))
	assert.False(t, s.isExcluded(&Device{Hostname: "prod-switch-1"}))
}

func TestSchedulerMatchedPatternIgnoresEmptyPatterns(t *testing.T) {
	s := newTestScheduler("", "core-")

	assert.Equal(t, "core-", s.matchedPattern(&Device{Hostname: "core-switch-1"}))
	assert.Equal(t, "", s.matchedPattern(&Device{Hostname: "edge-switch-1"}))
}

func TestSchedulerRunStampsRunID(t *testing.T) {
	s := newTestScheduler()
	s.maxConcurrent = 1

	result := s.Run(context.Background(), nil, 0, nil)

	assert.NotEmpty(t, result.RunID)
	assert.Empty(t, result.Devices)
}
