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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusDispatchOrderAndMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	var first, second []EventType

	bus.Subscribe(SubscriberFunc(func(e Event) { first = append(first, e.Type) }))
	bus.Subscribe(SubscriberFunc(func(e Event) { second = append(second, e.Type) }))

	bus.Emit(Event{Type: EventCrawlStarted})
	bus.Emit(Event{Type: EventDeviceStarted, Target: "10.0.0.1"})
	bus.Emit(Event{Type: EventDeviceComplete, Hostname: "core-a"})

	want := []EventType{EventCrawlStarted, EventDeviceStarted, EventDeviceComplete}
	assert.Equal(t, want, first)
	assert.Equal(t, want, second)
}

func TestEventBusSubscriberPanicDoesNotAbort(t *testing.T) {
	bus := NewEventBus()

	var delivered []EventType

	bus.Subscribe(SubscriberFunc(func(e Event) { panic("subscriber exploded") }))
	bus.Subscribe(SubscriberFunc(func(e Event) { delivered = append(delivered, e.Type) }))

	require.NotPanics(t, func() {
		bus.Emit(Event{Type: EventDeviceFailed, Target: "10.0.0.2"})
	})

	assert.Equal(t, []EventType{EventDeviceFailed}, delivered)
}

func TestEventBusStatsAggregation(t *testing.T) {
	bus := NewEventBus()

	bus.Emit(Event{Type: EventDeviceComplete})
	bus.Emit(Event{Type: EventDeviceComplete})
	bus.Emit(Event{Type: EventDeviceFailed})
	bus.Emit(Event{Type: EventDeviceQueued})
	bus.Emit(Event{Type: EventDepthStarted, Depth: 3})
	bus.Emit(Event{Type: EventDeviceStarted, Hostname: "core-a"})

	stats := bus.Stats()
	assert.Equal(t, 2, stats.Discovered)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Queue)
	assert.Equal(t, 3, stats.CurrentDepth)
	assert.Equal(t, "core-a", stats.CurrentDevice)
}

func TestEventBusStatsCurrentDeviceFallsBackToTarget(t *testing.T) {
	bus := NewEventBus()

	bus.Emit(Event{Type: EventDeviceStarted, Target: "10.0.0.9"})

	assert.Equal(t, "10.0.0.9", bus.Stats().CurrentDevice)
}

func TestEventEmitStampsTimestampWhenZero(t *testing.T) {
	bus := NewEventBus()

	var got Event

	bus.Subscribe(SubscriberFunc(func(e Event) { got = e }))
	bus.Emit(Event{Type: EventCrawlStarted})

	assert.False(t, got.Timestamp.IsZero())
}
