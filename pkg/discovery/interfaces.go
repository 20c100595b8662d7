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

import "context"

// Collector is satisfied by the system, interface and ARP collectors. Populate
// reads from a single target and fills in whatever fields of dev it owns;
// it must not clear fields other collectors populated.
type Collector interface {
	Populate(ctx context.Context, dev *Device) error
}

// NeighborSource is satisfied by the collectors that discover adjacent
// devices (CDP, LLDP and SSH), whose results the scheduler uses to expand
// the BFS frontier.
type NeighborSource interface {
	Neighbors(ctx context.Context, dev *Device) ([]Neighbor, error)
}
