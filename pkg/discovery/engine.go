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
	"fmt"
	"net"
	"strings"
	"time"
)

// EngineConfig configures an Engine's defaults.
type EngineConfig struct {
	Timeout       time.Duration
	MaxConcurrent int
	NoDNS         bool
}

// Engine is the façade wiring the resolver, collectors, registry, and
// event bus into DiscoverDevice and Crawl.
type Engine struct {
	vault    Vault
	resolver *Resolver
	bus      *EventBus
	cfg      EngineConfig
}

// NewEngine builds an Engine over vault. A nil vault is legal for ad-hoc
// testing where every DiscoverDevice call supplies an AuthOverride; calling
// DiscoverDevice without one on a nil-vault Engine returns
// ErrNoResolverConfigured instead of the resolver itself.
func NewEngine(vault Vault, cfg EngineConfig) *Engine {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSNMPTimeout
	}

	var resolver *Resolver
	if vault != nil {
		resolver = NewResolver(vault)
	}

	return &Engine{vault: vault, resolver: resolver, bus: NewEventBus(), cfg: cfg}
}

// Events returns the façade's event bus, for subscribing before a crawl.
func (e *Engine) Events() *EventBus {
	return e.bus
}

// AuthOverride lets a caller pass a pre-built credential directly to
// DiscoverDevice, bypassing the vault-backed Resolver entirely. Intended for
// ad-hoc testing against a single device when no vault is available.
type AuthOverride struct {
	Credential *Credential
	Protocol   Protocol
}

// DiscoverDevice resolves target (DNS if it is a hostname), finds a working
// credential — auth if supplied, else the vault-backed Resolver — and runs
// the collector sequence system -> interfaces -> arp -> cdp/lldp (or the SSH
// fallback) against it.
func (e *Engine) DiscoverDevice(
	ctx context.Context, target string, auth *AuthOverride, credentialNames, domains []string, depth int, collectARP bool,
) (*Device, error) {
	start := time.Now()

	ip, hostname, fqdn, err := e.resolveTarget(target, domains)
	if err != nil {
		return &Device{Hostname: target, Success: false, Errors: []string{err.Error()}, Depth: depth}, err
	}

	dev := &Device{
		IP:           ip,
		Hostname:     hostname,
		FQDN:         fqdn,
		Depth:        depth,
		DiscoveredAt: start,
	}

	cred, proto, err := e.resolveCredential(ctx, ip, auth, credentialNames)
	if err != nil {
		dev.Errors = append(dev.Errors, err.Error())
		dev.Duration = time.Since(start)

		return dev, err
	}

	dev.Protocol = proto
	dev.CredentialUsed = cred.Name

	switch proto {
	case ProtocolSNMP:
		err = e.collectSNMP(ctx, ip, cred, dev, collectARP)
	case ProtocolSSH:
		err = e.collectSSH(ctx, ip, cred, dev)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedSNMPVersion, proto)
	}

	dev.Duration = time.Since(start)
	dev.Success = err == nil

	if err != nil {
		dev.Errors = append(dev.Errors, err.Error())
	}

	return dev, err
}

// resolveCredential returns auth verbatim when supplied, bypassing the
// vault-backed Resolver. Otherwise it delegates to the Resolver, which must
// be configured (a nil vault produces no Resolver in NewEngine).
func (e *Engine) resolveCredential(
	ctx context.Context, ip string, auth *AuthOverride, credentialNames []string,
) (*Credential, Protocol, error) {
	if auth != nil {
		return auth.Credential, auth.Protocol, nil
	}

	if e.resolver == nil {
		return nil, "", ErrNoResolverConfigured
	}

	return e.resolver.Resolve(ctx, ip, credentialNames)
}

func (e *Engine) collectSNMP(ctx context.Context, ip string, cred *Credential, dev *Device, collectARP bool) error {
	transport, err := NewTransport(ip, cred)
	if err != nil {
		return err
	}
	defer transport.Close()

	collectors := []Collector{
		&SystemCollector{Transport: transport},
		&InterfaceCollector{Transport: transport},
	}

	if collectARP {
		collectors = append(collectors, &ARPCollector{Transport: transport})
	}

	for _, c := range collectors {
		if err := c.Populate(ctx, dev); err != nil {
			dev.Errors = append(dev.Errors, err.Error())
		}
	}

	cdp := &CDPCollector{Transport: transport}

	if neighbors, err := cdp.Neighbors(ctx, dev); err != nil {
		dev.Errors = append(dev.Errors, err.Error())
	} else {
		for _, n := range neighbors {
			dev.AddNeighbor(n)
		}
	}

	lldp := &LLDPCollector{Transport: transport}

	if neighbors, err := lldp.Neighbors(ctx, dev); err != nil {
		dev.Errors = append(dev.Errors, err.Error())
	} else {
		for _, n := range neighbors {
			dev.AddNeighbor(n)
		}
	}

	fillLLDPNeighborIPsFromARP(dev)

	if len(dev.Neighbors) == 0 {
		return e.fallbackSSHNeighbors(ctx, ip, dev)
	}

	return nil
}

// fillLLDPNeighborIPsFromARP fills a neighbor's remote IP from the device's
// ARP table when the LLDP management-address table left it empty but the
// chassis-id is a MAC address present in ARP.
func fillLLDPNeighborIPsFromARP(dev *Device) {
	if len(dev.ARPTable) == 0 {
		return
	}

	for i := range dev.Neighbors {
		n := &dev.Neighbors[i]

		if n.Protocol != ProtocolLLDP || n.RemoteIP != "" || !IsMACIdentifier(n.ChassisID) {
			continue
		}

		if ip, ok := dev.ARPTable[n.ChassisID]; ok {
			n.RemoteIP = ip
		}
	}
}

// fallbackSSHNeighbors is used when SNMP yields zero neighbors: the
// resolver's candidates are re-consulted restricted to SSH-capable
// credentials, in priority order, until one collects successfully.
func (e *Engine) fallbackSSHNeighbors(ctx context.Context, ip string, dev *Device) error {
	if e.resolver == nil {
		return nil
	}

	creds, err := e.resolver.candidateCredentials(nil)
	if err != nil {
		return nil
	}

	for _, cred := range creds {
		if cred.Kind != CredentialSSH {
			continue
		}

		if err := e.collectSSH(ctx, ip, cred, dev); err == nil {
			return nil
		}
	}

	return nil
}

func (e *Engine) collectSSH(ctx context.Context, ip string, cred *Credential, dev *Device) error {
	collector, err := DialSSH(ctx, ip, cred)
	if err != nil {
		return err
	}
	defer collector.Close()

	neighbors, err := collector.Neighbors(ctx, dev)
	if err != nil {
		return err
	}

	for _, n := range neighbors {
		dev.AddNeighbor(n)
	}

	return nil
}

// resolveTarget returns (ip, hostname, fqdn). If target is already an IP,
// hostname/fqdn are left empty. If target is a hostname, forward DNS
// resolution is attempted against target directly, then against each
// configured domain suffix.
func (e *Engine) resolveTarget(target string, domains []string) (ip, hostname, fqdn string, err error) {
	if parsed := net.ParseIP(target); parsed != nil {
		return parsed.String(), "", "", nil
	}

	if e.cfg.NoDNS {
		return "", "", "", ErrNoDNSRecord
	}

	candidates := append([]string{target}, domainSuffixed(target, domains)...)

	for _, candidate := range candidates {
		addrs, lookupErr := net.LookupHost(candidate)
		if lookupErr == nil && len(addrs) > 0 {
			return addrs[0], shortHostname(target, domains), candidate, nil
		}
	}

	return "", "", "", ErrNoDNSRecord
}

func domainSuffixed(target string, domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if d == "" {
			continue
		}

		out = append(out, target+"."+d)
	}

	return out
}

// shortHostname strips a configured domain suffix from target, giving the
// short name used for output folder naming while the FQDN is kept
// separately on Device.
func shortHostname(target string, domains []string) string {
	for _, d := range domains {
		suffix := "." + d
		if strings.HasSuffix(target, suffix) {
			return strings.TrimSuffix(target, suffix)
		}
	}

	return target
}

// Crawl drives the Scheduler across a breadth-first traversal of seeds.
func (e *Engine) Crawl(
	ctx context.Context, seeds []string, maxDepth int, domains, excludePatterns, credentialNames []string, outputDir string,
) (*DiscoveryResult, error) {
	if len(seeds) == 0 {
		return nil, ErrNoSeedsProvided
	}

	if maxDepth < 0 {
		return nil, ErrInvalidMaxDepth
	}

	sched := &Scheduler{
		engine:          e,
		registry:        NewRegistry(),
		bus:             e.bus,
		maxConcurrent:   e.cfg.MaxConcurrent,
		excludePatterns: excludePatterns,
		credentialNames: credentialNames,
		outputDir:       outputDir,
	}

	return sched.Run(ctx, seeds, maxDepth, domains), nil
}
