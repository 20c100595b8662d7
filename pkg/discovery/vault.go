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

import "time"

// AuthProtocol is an SNMPv3 USM authentication protocol.
type AuthProtocol string

const (
	AuthNone   AuthProtocol = "none"
	AuthMD5    AuthProtocol = "md5"
	AuthSHA    AuthProtocol = "sha"
	AuthSHA224 AuthProtocol = "sha224"
	AuthSHA256 AuthProtocol = "sha256"
	AuthSHA384 AuthProtocol = "sha384"
	AuthSHA512 AuthProtocol = "sha512"
)

// PrivProtocol is an SNMPv3 USM privacy (encryption) protocol.
type PrivProtocol string

const (
	PrivNone   PrivProtocol = "none"
	PrivDES    PrivProtocol = "des"
	PrivAES128 PrivProtocol = "aes128"
	PrivAES192 PrivProtocol = "aes192"
	PrivAES256 PrivProtocol = "aes256"
)

// CredentialKind discriminates the Credential sum type.
type CredentialKind string

const (
	CredentialSSH     CredentialKind = "ssh"
	CredentialSNMPv2c CredentialKind = "snmpv2c"
	CredentialSNMPv3  CredentialKind = "snmpv3"
)

// SSHCredential authenticates a Credential of kind CredentialSSH.
type SSHCredential struct {
	User       string
	Password   string
	PrivateKey []byte
	Passphrase string
	Port       int
	Timeout    time.Duration
}

// SNMPv2cCredential authenticates a Credential of kind CredentialSNMPv2c.
type SNMPv2cCredential struct {
	Community string
	Port      int
	Timeout   time.Duration
	Retries   int
}

// SNMPv3Credential authenticates a Credential of kind CredentialSNMPv3.
type SNMPv3Credential struct {
	SecurityName string
	AuthProto    AuthProtocol
	AuthKey      string
	PrivProto    PrivProtocol
	PrivKey      string
	Context      string
	Port         int
	Timeout      time.Duration
	Retries      int
}

// Valid enforces the vault-write-time invariant: priv-set with auth-none
// is rejected, priv-none with auth-set is legal.
func (c *SNMPv3Credential) Valid() bool {
	if c.PrivProto != PrivNone && c.AuthProto == AuthNone {
		return false
	}

	return true
}

// Credential is a vault-owned, read-only authentication record. Exactly one
// of SSH, SNMPv2c, SNMPv3 is populated, selected by Kind.
type Credential struct {
	Name     string
	Priority int
	Kind     CredentialKind
	SSH      *SSHCredential
	SNMPv2c  *SNMPv2cCredential
	SNMPv3   *SNMPv3Credential
}

// CredentialInfo is the metadata-only view returned by Vault.ListCredentials.
type CredentialInfo struct {
	ID              string
	Name            string
	Kind            CredentialKind
	DisplayUsername string
	Priority        int
	IsDefault       bool
}

// Vault is the external credential store the Resolver consumes. The core
// never writes credentials and never persists decrypted material beyond the
// crawl's lifetime.
type Vault interface {
	IsInitialized() bool
	IsUnlocked() bool
	ListCredentials(filter string) ([]CredentialInfo, error)
	GetSSHCredential(nameOrID string) (*Credential, error)
	GetSNMPv2cCredential(nameOrID string) (*Credential, error)
	GetSNMPv3Credential(nameOrID string) (*Credential, error)
	UpdateTestResult(id string, success bool, errMsg string) error
}
