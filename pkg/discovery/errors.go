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

import "errors"

var (
	// ErrNoSeedsProvided occurs when a crawl is started with an empty seed list.
	ErrNoSeedsProvided = errors.New("no seeds provided")

	// ErrCancelled is returned by in-flight operations when the crawl's context
	// is cancelled before they complete.
	ErrCancelled = errors.New("discovery cancelled")

	// ErrNoWorkingCredential occurs when every credential the resolver tried
	// against a target failed.
	ErrNoWorkingCredential = errors.New("no working credential found for target")

	// ErrSNMPGetFailed wraps a failed SNMP GET/GETBULK request.
	ErrSNMPGetFailed = errors.New("SNMP request failed")

	// ErrNoSNMPDataReturned occurs when a collector's SNMP requests return no
	// usable data for the target.
	ErrNoSNMPDataReturned = errors.New("no SNMP data returned")

	// ErrUnsupportedSNMPVersion occurs when a credential names an SNMP version
	// the transport does not implement.
	ErrUnsupportedSNMPVersion = errors.New("unsupported SNMP version")

	// ErrSSHCommandFailed wraps a failed SSH command execution.
	ErrSSHCommandFailed = errors.New("SSH command failed")

	// ErrNoDNSRecord occurs when a hostname seed has no resolvable address and
	// no domain suffix trial succeeds.
	ErrNoDNSRecord = errors.New("no DNS record found for hostname")

	// ErrAlreadyDiscovered occurs when the deduplication registry already holds
	// one of a target's identifiers.
	ErrAlreadyDiscovered = errors.New("target already discovered")

	// ErrExcludedByPattern occurs when a target matches a configured exclude
	// pattern and is skipped before any probing is attempted.
	ErrExcludedByPattern = errors.New("target excluded by pattern")

	// ErrOutsideDomain occurs when a target's resolved name falls outside the
	// configured domain allow-list.
	ErrOutsideDomain = errors.New("target outside configured domains")

	// ErrVaultLookupFailed wraps a credential vault lookup failure.
	ErrVaultLookupFailed = errors.New("credential vault lookup failed")

	// ErrInvalidMaxDepth occurs when a crawl is configured with a negative
	// max depth.
	ErrInvalidMaxDepth = errors.New("max depth must be >= 0")

	// ErrInvalidConcurrency occurs when a crawl is configured with a
	// non-positive concurrency limit.
	ErrInvalidConcurrency = errors.New("concurrency must be greater than 0")

	// ErrNoResolverConfigured occurs when DiscoverDevice is called without an
	// auth override and the Engine was built with a nil vault, so there is no
	// Resolver to fall back to.
	ErrNoResolverConfigured = errors.New("no resolver configured: build the engine with a vault or pass an auth override")
)
