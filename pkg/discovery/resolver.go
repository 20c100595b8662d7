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
	"net"
	"strings"
	"sync"
	"time"
)

const (
	probeTimeout    = 3 * time.Second
	sshProbeTimeout = 10 * time.Second
)

// subnetPref remembers the credential that last worked for a /24, so the
// resolver can skip straight to it for the rest of that subnet.
type subnetPref struct {
	credentialName string
	protocol       Protocol
}

// Resolver finds a working credential for a target, preferring the cached
// choice for the target's /24 subnet and probing SNMP before SSH.
type Resolver struct {
	Vault Vault

	mu    sync.Mutex
	cache map[string]subnetPref
}

// NewResolver builds a Resolver over vault.
func NewResolver(vault Vault) *Resolver {
	return &Resolver{Vault: vault, cache: make(map[string]subnetPref)}
}

// Resolve implements the order of attempts in the credential resolver
// design: subnet cache hit, then SNMP probing in vault priority order,
// then SSH probing, returning ErrNoWorkingCredential on total failure.
func (r *Resolver) Resolve(ctx context.Context, target string, names []string) (*Credential, Protocol, error) {
	subnet := subnet24(target)

	if pref, ok := r.cachedPref(subnet); ok {
		if cred, err := r.lookupByName(pref.credentialName); err == nil {
			return cred, pref.protocol, nil
		}
	}

	candidates, err := r.candidateCredentials(names)
	if err != nil {
		return nil, "", err
	}

	for _, cred := range candidates {
		if cred.Kind == CredentialSSH {
			continue
		}

		if r.probeSNMP(ctx, target, cred) {
			r.rememberPref(subnet, cred.Name, ProtocolSNMP)
			return cred, ProtocolSNMP, nil
		}
	}

	for _, cred := range candidates {
		if cred.Kind != CredentialSSH {
			continue
		}

		if r.probeSSH(ctx, target, cred) {
			r.rememberPref(subnet, cred.Name, ProtocolSSH)
			return cred, ProtocolSSH, nil
		}
	}

	return nil, "", ErrNoWorkingCredential
}

func (r *Resolver) cachedPref(subnet string) (subnetPref, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pref, ok := r.cache[subnet]

	return pref, ok
}

func (r *Resolver) rememberPref(subnet, name string, proto Protocol) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache[subnet] = subnetPref{credentialName: name, protocol: proto}
}

func (r *Resolver) candidateCredentials(names []string) ([]*Credential, error) {
	if len(names) > 0 {
		creds := make([]*Credential, 0, len(names))

		for _, name := range names {
			cred, err := r.lookupByName(name)
			if err != nil {
				continue
			}

			creds = append(creds, cred)
		}

		sortByPriority(creds)

		return creds, nil
	}

	infos, err := r.Vault.ListCredentials("")
	if err != nil {
		return nil, err
	}

	creds := make([]*Credential, 0, len(infos))

	for _, info := range infos {
		cred, err := r.lookupByName(info.Name)
		if err != nil {
			continue
		}

		creds = append(creds, cred)
	}

	sortByPriority(creds)

	return creds, nil
}

func sortByPriority(creds []*Credential) {
	for i := 1; i < len(creds); i++ {
		for j := i; j > 0 && creds[j].Priority < creds[j-1].Priority; j-- {
			creds[j], creds[j-1] = creds[j-1], creds[j]
		}
	}
}

func (r *Resolver) lookupByName(name string) (*Credential, error) {
	if cred, err := r.Vault.GetSNMPv2cCredential(name); err == nil && cred != nil {
		return cred, nil
	}

	if cred, err := r.Vault.GetSNMPv3Credential(name); err == nil && cred != nil {
		return cred, nil
	}

	if cred, err := r.Vault.GetSSHCredential(name); err == nil && cred != nil {
		return cred, nil
	}

	return nil, ErrVaultLookupFailed
}

func (r *Resolver) probeSNMP(parent context.Context, target string, cred *Credential) bool {
	ctx, cancel := context.WithTimeout(parent, probeTimeout)
	defer cancel()

	transport, err := NewTransport(target, cred)
	if err != nil {
		return false
	}
	defer transport.Close()

	_, ok := transport.Get(ctx, oidSysName)

	return ok
}

func (r *Resolver) probeSSH(parent context.Context, target string, cred *Credential) bool {
	ctx, cancel := context.WithTimeout(parent, sshProbeTimeout)
	defer cancel()

	collector, err := DialSSH(ctx, target, cred)
	if err != nil {
		return false
	}
	defer collector.Close()

	return true
}

// subnet24 returns the /24 network for target's IP, or target itself if it
// does not parse as an IPv4 address (used as a coarser cache key).
func subnet24(target string) string {
	ip := net.ParseIP(target)
	if ip == nil || ip.To4() == nil {
		return target
	}

	parts := strings.Split(ip.To4().String(), ".")
	if len(parts) != 4 {
		return target
	}

	return strings.Join(parts[:3], ".") + ".0/24"
}
