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
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultMaxConcurrent = 20

type queueEntry struct {
	target string
	depth  int
}

// Scheduler drives a breadth-first crawl: one fully-completed depth layer
// at a time, bounded parallelism within a layer, cancellation, and
// partial-failure tolerance. It is the sole mutator of its queues and the
// sole caller of Registry.Register.
type Scheduler struct {
	engine          *Engine
	registry        *Registry
	bus             *EventBus
	maxConcurrent   int
	excludePatterns []string
	credentialNames []string
	outputDir       string
}

// Run executes the BFS crawl described by seeds/maxDepth/domains and
// returns the aggregate result. It writes partial output and returns a
// partial result if ctx is cancelled mid-crawl.
func (s *Scheduler) Run(ctx context.Context, seeds []string, maxDepth int, domains []string) *DiscoveryResult {
	result := &DiscoveryResult{
		RunID:           uuid.New().String(),
		Seeds:           seeds,
		MaxDepth:        maxDepth,
		Domains:         domains,
		ExcludePatterns: s.excludePatterns,
		StartedAt:       time.Now(),
	}

	s.bus.Emit(Event{Type: EventCrawlStarted, Total: len(seeds)})

	current := make([]queueEntry, 0, len(seeds))

	for _, seed := range seeds {
		if s.registry.TryClaim(seed) {
			current = append(current, queueEntry{target: seed, depth: 0})
		}
	}

	sem := make(chan struct{}, s.maxConcurrent)

	for depth := 0; len(current) > 0; depth++ {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}

		s.bus.Emit(Event{Type: EventDepthStarted, Depth: depth, DeviceCount: len(current)})

		var (
			wg               sync.WaitGroup
			mu               sync.Mutex
			next             []queueEntry
			discoveredInRun  int
			failedInRun      int
		)

		for _, entry := range current {
			wg.Add(1)

			go func(entry queueEntry) {
				defer wg.Done()

				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					return
				}

				s.runWorker(ctx, entry, domains, result, &mu, &next, &discoveredInRun, &failedInRun)
			}(entry)
		}

		wg.Wait()

		result.Attempted += len(current)

		s.bus.Emit(Event{Type: EventDepthComplete, Depth: depth, Discovered: discoveredInRun, Failed: failedInRun})

		if depth == maxDepth {
			break
		}

		current = next
	}

	result.CompletedAt = time.Now()

	topo := BuildTopology(result.Devices)
	s.writeMapJSON(topo)
	s.writeSummaryJSON(result)

	if result.Cancelled {
		s.bus.Emit(Event{Type: EventCrawlCancelled})
	} else {
		s.bus.Emit(Event{Type: EventCrawlComplete})
	}

	s.bus.Emit(Event{Type: EventTopologyUpdated, DeviceCount: len(result.Devices)})

	return result
}

func (s *Scheduler) runWorker(
	ctx context.Context,
	entry queueEntry,
	domains []string,
	result *DiscoveryResult,
	mu *sync.Mutex,
	next *[]queueEntry,
	discoveredInRun, failedInRun *int,
) {
	defer func() {
		if r := recover(); r != nil {
			s.bus.Emit(Event{Type: EventDeviceFailed, Target: entry.target, Error: "worker panic"})

			mu.Lock()
			*failedInRun++
			result.Failed++
			mu.Unlock()
		}
	}()

	s.bus.Emit(Event{Type: EventDeviceStarted, Target: entry.target})

	dev, err := s.engine.DiscoverDevice(ctx, entry.target, nil, s.credentialNames, domains, entry.depth, true)

	mu.Lock()
	defer mu.Unlock()

	if err != nil || dev == nil || !dev.Success {
		*failedInRun++
		result.Failed++

		errMsg := ""
		if err != nil {
			errMsg = err.Error()
		}

		s.bus.Emit(Event{Type: EventDeviceFailed, Target: entry.target, Error: errMsg})

		return
	}

	s.registry.Register(dev)

	if s.isExcluded(dev) {
		result.Excluded++
		s.bus.Emit(Event{Type: EventDeviceExcluded, Hostname: dev.Hostname, Pattern: s.matchedPattern(dev)})

		return
	}

	result.Devices = append(result.Devices, dev)
	*discoveredInRun++
	result.Successful++

	s.writeDeviceJSON(dev)

	for _, n := range dev.Neighbors {
		s.enqueueNeighbor(n, entry.depth, next, result)
	}

	s.bus.Emit(Event{
		Type:          EventDeviceComplete,
		Hostname:      dev.CanonicalName(),
		Vendor:        dev.Vendor,
		NeighborCount: len(dev.Neighbors),
		DurationMs:    dev.Duration.Milliseconds(),
		Method:        dev.Protocol,
	})
}

func (s *Scheduler) enqueueNeighbor(n Neighbor, depth int, next *[]queueEntry, result *DiscoveryResult) {
	target := n.RemoteDevice
	if target == "" {
		target = n.RemoteIP
	}

	if target == "" || IsMACIdentifier(target) {
		result.Skipped++
		s.bus.Emit(Event{Type: EventNeighborSkipped, Reason: "no usable identifier"})

		return
	}

	if !s.registry.TryClaim(target) {
		result.Skipped++
		s.bus.Emit(Event{Type: EventNeighborSkipped, Reason: "already claimed"})

		return
	}

	if n.RemoteIP != "" && n.RemoteIP != target {
		s.registry.TryClaim(n.RemoteIP)
	}

	*next = append(*next, queueEntry{target: target, depth: depth + 1})
	s.bus.Emit(Event{Type: EventNeighborQueued, Target: target, FromDevice: n.LocalInterface, Depth: depth + 1})
}

func (s *Scheduler) isExcluded(dev *Device) bool {
	return s.matchedPattern(dev) != ""
}

func (s *Scheduler) matchedPattern(dev *Device) string {
	for _, p := range s.excludePatterns {
		if p == "" {
			continue
		}

		if strings.Contains(dev.SysDescr, p) || strings.Contains(dev.Hostname, p) || strings.Contains(dev.SysName, p) {
			return p
		}
	}

	return ""
}

func (s *Scheduler) writeDeviceJSON(dev *Device) {
	if s.outputDir == "" {
		return
	}

	if err := WriteDeviceJSON(s.outputDir, dev); err != nil {
		s.bus.Emit(Event{Type: EventLogMessage, Level: LogError, Message: err.Error(), Device: dev.CanonicalName()})
	}
}

func (s *Scheduler) writeMapJSON(topo TopologyMap) {
	if s.outputDir == "" {
		return
	}

	if err := WriteTopologyJSON(s.outputDir, topo); err != nil {
		s.bus.Emit(Event{Type: EventLogMessage, Level: LogError, Message: err.Error()})
	}
}

func (s *Scheduler) writeSummaryJSON(result *DiscoveryResult) {
	if s.outputDir == "" {
		return
	}

	if err := WriteSummaryJSON(s.outputDir, result); err != nil {
		s.bus.Emit(Event{Type: EventLogMessage, Level: LogError, Message: err.Error()})
	}
}
