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

// fakeVault is an in-memory Vault used to exercise the resolver's credential
// lookup and ordering logic without any external collaborator.
type fakeVault struct {
	creds map[string]*Credential
}

func newFakeVault(creds ...*Credential) *fakeVault {
	v := &fakeVault{creds: make(map[string]*Credential, len(creds))}
	for _, c := range creds {
		v.creds[c.Name] = c
	}

	return v
}

func (v *fakeVault) IsInitialized() bool { return true }
func (v *fakeVault) IsUnlocked() bool    { return true }

func (v *fakeVault) ListCredentials(filter string) ([]CredentialInfo, error) {
	var infos []CredentialInfo

	for _, c := range v.creds {
		if filter != "" && c.Kind != CredentialKind(filter) {
			continue
		}

		infos = append(infos, CredentialInfo{ID: c.Name, Name: c.Name, Kind: c.Kind, Priority: c.Priority})
	}

	return infos, nil
}

func (v *fakeVault) getKind(name string, kind CredentialKind) (*Credential, error) {
	c, ok := v.creds[name]
	if !ok || c.Kind != kind {
		return nil, ErrVaultLookupFailed
	}

	return c, nil
}

func (v *fakeVault) GetSSHCredential(name string) (*Credential, error) {
	return v.getKind(name, CredentialSSH)
}

func (v *fakeVault) GetSNMPv2cCredential(name string) (*Credential, error) {
	return v.getKind(name, CredentialSNMPv2c)
}

func (v *fakeVault) GetSNMPv3Credential(name string) (*Credential, error) {
	return v.getKind(name, CredentialSNMPv3)
}

func (v *fakeVault) UpdateTestResult(id string, success bool, errMsg string) error {
	return nil
}

func TestSubnet24(t *testing.T) {
	assert.Equal(t, "10.0.0.0/24", subnet24("10.0.0.17"))
	assert.Equal(t, "10.0.0.0/24", subnet24("10.0.0.254"))
	assert.Equal(t, "switch.example.com", subnet24("switch.example.com"))
}

func TestSortByPriority(t *testing.T) {
	creds := []*Credential{
		{Name: "low", Priority: 20},
		{Name: "high", Priority: 1},
		{Name: "mid", Priority: 10},
	}

	sortByPriority(creds)

	assert.Equal(t, []string{"high", "mid", "low"}, []string{creds[0].Name, creds[1].Name, creds[2].Name})
}

func TestResolverLookupByNamePrefersSNMPThenSSH(t *testing.T) {
	vault := newFakeVault(
		&Credential{Name: "snmp-ro", Kind: CredentialSNMPv2c, SNMPv2c: &SNMPv2cCredential{Community: "public"}},
		&Credential{Name: "ssh-admin", Kind: CredentialSSH, SSH: &SSHCredential{User: "admin"}},
	)
	r := NewResolver(vault)

	cred, err := r.lookupByName("snmp-ro")
	require.NoError(t, err)
	assert.Equal(t, CredentialSNMPv2c, cred.Kind)

	cred, err = r.lookupByName("ssh-admin")
	require.NoError(t, err)
	assert.Equal(t, CredentialSSH, cred.Kind)

	_, err = r.lookupByName("missing")
	assert.ErrorIs(t, err, ErrVaultLookupFailed)
}

func TestResolverCandidateCredentialsByExplicitNames(t *testing.T) {
	vault := newFakeVault(
		&Credential{Name: "a", Priority: 20, Kind: CredentialSNMPv2c, SNMPv2c: &SNMPv2cCredential{}},
		&Credential{Name: "b", Priority: 5, Kind: CredentialSNMPv2c, SNMPv2c: &SNMPv2cCredential{}},
	)
	r := NewResolver(vault)

	creds, err := r.candidateCredentials([]string{"a", "b", "nonexistent"})
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, "b", creds[0].Name)
	assert.Equal(t, "a", creds[1].Name)
}

func TestResolverCandidateCredentialsFallsBackToVaultList(t *testing.T) {
	vault := newFakeVault(
		&Credential{Name: "only", Priority: 1, Kind: CredentialSNMPv2c, SNMPv2c: &SNMPv2cCredential{}},
	)
	r := NewResolver(vault)

	creds, err := r.candidateCredentials(nil)
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "only", creds[0].Name)
}
