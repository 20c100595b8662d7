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
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType discriminates the Event payload.
type EventType string

const (
	EventCrawlStarted    EventType = "crawl_started"
	EventCrawlComplete   EventType = "crawl_complete"
	EventCrawlCancelled  EventType = "crawl_cancelled"
	EventDepthStarted    EventType = "depth_started"
	EventDepthComplete   EventType = "depth_complete"
	EventDeviceQueued    EventType = "device_queued"
	EventDeviceStarted   EventType = "device_started"
	EventDeviceComplete  EventType = "device_complete"
	EventDeviceFailed    EventType = "device_failed"
	EventDeviceExcluded  EventType = "device_excluded"
	EventNeighborQueued  EventType = "neighbor_queued"
	EventNeighborSkipped EventType = "neighbor_skipped"
	EventStatsUpdated    EventType = "stats_updated"
	EventTopologyUpdated EventType = "topology_updated"
	EventLogMessage      EventType = "log_message"
)

// LogLevel tags a log_message event.
type LogLevel string

const (
	LogDebug   LogLevel = "debug"
	LogInfo    LogLevel = "info"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
	LogSuccess LogLevel = "success"
)

// Event is a tagged variant with a timestamp and a typed payload. Exactly
// the fields relevant to Type are populated; the rest are zero.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	Depth          int    `json:"depth,omitempty"`
	DeviceCount    int    `json:"device_count,omitempty"`
	Discovered     int    `json:"discovered,omitempty"`
	Failed         int    `json:"failed,omitempty"`
	Hostname       string `json:"hostname,omitempty"`
	Vendor         Vendor `json:"vendor,omitempty"`
	NeighborCount  int    `json:"neighbor_count,omitempty"`
	DurationMs     int64  `json:"duration_ms,omitempty"`
	Method         Protocol `json:"method,omitempty"`
	Target         string `json:"target,omitempty"`
	Error          string `json:"error,omitempty"`
	Pattern        string `json:"pattern,omitempty"`
	FromDevice     string `json:"from_device,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Queue          int    `json:"queue,omitempty"`
	Total          int    `json:"total,omitempty"`
	CurrentDepth   int    `json:"current_depth,omitempty"`
	MaxDepth       int    `json:"max_depth,omitempty"`
	DepthProgress  float64 `json:"depth_progress,omitempty"`
	CurrentDevice  string `json:"current_device,omitempty"`
	Level          LogLevel `json:"level,omitempty"`
	Message        string `json:"message,omitempty"`
	Device         string `json:"device,omitempty"`
}

// Subscriber receives events from an EventBus in registration order.
type Subscriber interface {
	Handle(Event)
}

// SubscriberFunc adapts a function to a Subscriber.
type SubscriberFunc func(Event)

func (f SubscriberFunc) Handle(e Event) { f(e) }

// EventBus is a single-writer, multi-reader synchronous dispatcher. A
// subscriber panic is caught, logged, and does not abort the crawl.
type EventBus struct {
	mu          sync.Mutex
	subscribers []Subscriber
	stats       DiscoveryStats
}

// NewEventBus returns an empty EventBus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers s to receive all future events, in registration order.
func (b *EventBus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers = append(b.subscribers, s)
}

// Emit dispatches e to every subscriber synchronously and updates the
// aggregate stats counters.
func (b *EventBus) Emit(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	b.mu.Lock()
	b.stats.apply(e)
	subs := append([]Subscriber(nil), b.subscribers...)
	b.mu.Unlock()

	for _, s := range subs {
		dispatchSafely(s, e)
	}
}

func dispatchSafely(s Subscriber, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("event subscriber panicked, continuing")
		}
	}()

	s.Handle(e)
}

// Stats returns a snapshot of the bus's aggregate counters.
func (b *EventBus) Stats() DiscoveryStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.stats
}

// DiscoveryStats is the running aggregate the stats_updated event reports.
type DiscoveryStats struct {
	Discovered    int
	Failed        int
	Queue         int
	Total         int
	CurrentDepth  int
	MaxDepth      int
	CurrentDevice string
}

func (s *DiscoveryStats) apply(e Event) {
	switch e.Type {
	case EventDeviceComplete:
		s.Discovered++
	case EventDeviceFailed:
		s.Failed++
	case EventDeviceQueued:
		s.Queue++
	case EventDeviceStarted:
		if e.Hostname != "" {
			s.CurrentDevice = e.Hostname
		} else {
			s.CurrentDevice = e.Target
		}
	case EventDepthStarted:
		s.CurrentDepth = e.Depth
	}
}
