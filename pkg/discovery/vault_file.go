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
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// fileCredential is the on-disk shape of one vault entry. The encrypted
// vault this core is normally built against is an external collaborator;
// this is a minimal stand-in used for local testing and ad-hoc crawls,
// reading a plaintext JSON file rather than anything encrypted.
type fileCredential struct {
	Name     string             `json:"name"`
	Priority int                `json:"priority"`
	Kind     CredentialKind     `json:"kind"`
	SSH      *SSHCredential     `json:"ssh,omitempty"`
	SNMPv2c  *SNMPv2cCredential `json:"snmpv2c,omitempty"`
	SNMPv3   *SNMPv3Credential  `json:"snmpv3,omitempty"`
}

// FileVault is a Vault backed by a plaintext JSON credential list. It
// exists for local testing and single-operator use; production
// deployments supply their own Vault over the encrypted store.
type FileVault struct {
	mu    sync.RWMutex
	creds map[string]*fileCredential
}

// NewFileVault loads credentials from path.
func NewFileVault(path string) (*FileVault, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultLookupFailed, err)
	}

	var list []*fileCredential
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultLookupFailed, err)
	}

	v := &FileVault{creds: make(map[string]*fileCredential, len(list))}
	for _, c := range list {
		v.creds[c.Name] = c
	}

	return v, nil
}

func (v *FileVault) IsInitialized() bool { return true }
func (v *FileVault) IsUnlocked() bool    { return true }

func (v *FileVault) ListCredentials(filter string) ([]CredentialInfo, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	infos := make([]CredentialInfo, 0, len(v.creds))

	for _, c := range v.creds {
		if filter != "" && c.Kind != CredentialKind(filter) {
			continue
		}

		infos = append(infos, CredentialInfo{ID: c.Name, Name: c.Name, Kind: c.Kind, Priority: c.Priority})
	}

	return infos, nil
}

func (v *FileVault) get(nameOrID string, kind CredentialKind) (*Credential, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	c, ok := v.creds[nameOrID]
	if !ok || c.Kind != kind {
		return nil, ErrVaultLookupFailed
	}

	return &Credential{Name: c.Name, Priority: c.Priority, Kind: c.Kind, SSH: c.SSH, SNMPv2c: c.SNMPv2c, SNMPv3: c.SNMPv3}, nil
}

func (v *FileVault) GetSSHCredential(nameOrID string) (*Credential, error) {
	return v.get(nameOrID, CredentialSSH)
}

func (v *FileVault) GetSNMPv2cCredential(nameOrID string) (*Credential, error) {
	return v.get(nameOrID, CredentialSNMPv2c)
}

func (v *FileVault) GetSNMPv3Credential(nameOrID string) (*Credential, error) {
	return v.get(nameOrID, CredentialSNMPv3)
}

func (v *FileVault) UpdateTestResult(id string, success bool, errMsg string) error {
	return nil
}
