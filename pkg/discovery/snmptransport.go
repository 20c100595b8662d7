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
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

const (
	walkMaxRepetitions = 25
	walkIterationCap   = 1500
	defaultSNMPPort    = 161
	defaultSNMPRetries = 1
	defaultSNMPTimeout = 5 * time.Second
	lldpTimeoutFactor  = 2
)

// Row is one (oid, value) pair returned by a walk.
type Row struct {
	OID   string
	Value gosnmp.SnmpPDU
}

// Transport is the SNMP operation set the collectors are built on. A
// Transport is bound to one target and one credential for the lifetime of
// a single device discovery.
type Transport struct {
	client *gosnmp.GoSNMP
}

// NewTransport connects a Transport to target using cred, which must be a
// CredentialSNMPv2c or CredentialSNMPv3.
func NewTransport(target string, cred *Credential) (*Transport, error) {
	client, err := buildSNMPClient(target, cred)
	if err != nil {
		return nil, err
	}

	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSNMPGetFailed, err)
	}

	return &Transport{client: client}, nil
}

// Close releases the underlying UDP socket.
func (t *Transport) Close() error {
	if t.client.Conn == nil {
		return nil
	}

	return t.client.Conn.Close()
}

func buildSNMPClient(target string, cred *Credential) (*gosnmp.GoSNMP, error) {
	client := &gosnmp.GoSNMP{
		Target:         target,
		Port:           defaultSNMPPort,
		Timeout:        defaultSNMPTimeout,
		Retries:        defaultSNMPRetries,
		MaxOids:        gosnmp.MaxOids,
		MaxRepetitions: walkMaxRepetitions,
	}

	switch cred.Kind {
	case CredentialSNMPv2c:
		client.Version = gosnmp.Version2c
		client.Community = cred.SNMPv2c.Community

		if cred.SNMPv2c.Port > 0 {
			client.Port = uint16(cred.SNMPv2c.Port)
		}

		if cred.SNMPv2c.Timeout > 0 {
			client.Timeout = cred.SNMPv2c.Timeout
		}

		if cred.SNMPv2c.Retries > 0 {
			client.Retries = cred.SNMPv2c.Retries
		}
	case CredentialSNMPv3:
		client.Version = gosnmp.Version3

		usm := &gosnmp.UsmSecurityParameters{UserName: cred.SNMPv3.SecurityName}
		configureV3Auth(usm, cred.SNMPv3)
		configureV3Priv(usm, cred.SNMPv3)

		client.SecurityModel = gosnmp.UserSecurityModel
		client.SecurityParameters = usm
		client.ContextName = cred.SNMPv3.Context
		client.MsgFlags = v3MsgFlags(cred.SNMPv3)

		if cred.SNMPv3.Port > 0 {
			client.Port = uint16(cred.SNMPv3.Port)
		}

		if cred.SNMPv3.Timeout > 0 {
			client.Timeout = cred.SNMPv3.Timeout
		}

		if cred.SNMPv3.Retries > 0 {
			client.Retries = cred.SNMPv3.Retries
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSNMPVersion, cred.Kind)
	}

	return client, nil
}

func v3MsgFlags(c *SNMPv3Credential) gosnmp.SnmpV3MsgFlags {
	switch {
	case c.AuthProto != AuthNone && c.PrivProto != PrivNone:
		return gosnmp.AuthPriv
	case c.AuthProto != AuthNone:
		return gosnmp.AuthNoPriv
	default:
		return gosnmp.NoAuthNoPriv
	}
}

func configureV3Auth(usm *gosnmp.UsmSecurityParameters, c *SNMPv3Credential) {
	usm.AuthenticationPassphrase = c.AuthKey

	switch c.AuthProto {
	case AuthMD5:
		usm.AuthenticationProtocol = gosnmp.MD5
	case AuthSHA:
		usm.AuthenticationProtocol = gosnmp.SHA
	case AuthSHA224:
		usm.AuthenticationProtocol = gosnmp.SHA224
	case AuthSHA256:
		usm.AuthenticationProtocol = gosnmp.SHA256
	case AuthSHA384:
		usm.AuthenticationProtocol = gosnmp.SHA384
	case AuthSHA512:
		usm.AuthenticationProtocol = gosnmp.SHA512
	case AuthNone:
		usm.AuthenticationProtocol = gosnmp.NoAuth
	}
}

func configureV3Priv(usm *gosnmp.UsmSecurityParameters, c *SNMPv3Credential) {
	usm.PrivacyPassphrase = c.PrivKey

	switch c.PrivProto {
	case PrivDES:
		usm.PrivacyProtocol = gosnmp.DES
	case PrivAES128:
		usm.PrivacyProtocol = gosnmp.AES
	case PrivAES192:
		usm.PrivacyProtocol = gosnmp.AES192
	case PrivAES256:
		usm.PrivacyProtocol = gosnmp.AES256
	case PrivNone:
		usm.PrivacyProtocol = gosnmp.NoPriv
	}
}

// Get performs a single GetRequest. It returns ok=false on any
// error-indication, a non-zero error-status, or a network failure.
func (t *Transport) Get(ctx context.Context, oid string) (gosnmp.SnmpPDU, bool) {
	values, ok := t.GetMulti(ctx, []string{oid})
	if !ok || len(values) != 1 {
		return gosnmp.SnmpPDU{}, false
	}

	return values[0], values[0].Type != gosnmp.NoSuchObject && values[0].Type != gosnmp.NoSuchInstance
}

// GetMulti performs one GetRequest carrying every oid, preserving order.
// Individual failed varbinds come back as NoSuchObject/NoSuchInstance PDUs
// rather than aborting the whole call.
func (t *Transport) GetMulti(ctx context.Context, oids []string) ([]gosnmp.SnmpPDU, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	result, err := t.client.Get(oids)
	if err != nil || result == nil || result.Error != gosnmp.NoError {
		return nil, false
	}

	return result.Variables, true
}

// Walk performs a GetBulkRequest loop rooted at baseOID with
// max-repetitions = 25 and non-repeaters = 0. It stops on error, on a
// varbind falling outside baseOID's prefix, on a short final page, on
// context cancellation, or at the 1500-iteration safety cap.
func (t *Transport) Walk(ctx context.Context, baseOID string) ([]Row, error) {
	var rows []Row

	current := baseOID

	for i := 0; i < walkIterationCap; i++ {
		if ctx.Err() != nil {
			return rows, ErrCancelled
		}

		result, err := t.client.GetBulk([]string{current}, 0, walkMaxRepetitions)
		if err != nil {
			return rows, fmt.Errorf("%w: %w", ErrSNMPGetFailed, err)
		}

		if result.Error != gosnmp.NoError {
			return rows, fmt.Errorf("%w: error-status %d", ErrSNMPGetFailed, result.Error)
		}

		if len(result.Variables) == 0 {
			break
		}

		inPrefix := 0

		for _, v := range result.Variables {
			if !strings.HasPrefix(v.Name, baseOID) {
				return rows, nil
			}

			rows = append(rows, Row{OID: v.Name, Value: v})
			current = v.Name
			inPrefix++
		}

		if inPrefix < walkMaxRepetitions {
			break
		}
	}

	return rows, nil
}

// WalkWithFallback attempts a walk rooted at numericOid; mibName/mibObject
// are accepted for symmetry with named-MIB resolution in deployments that
// configure a MIB search path, but this transport always resolves
// numerically (gosnmp does no MIB parsing), so it is the sole attempt here.
// The name is retained so callers can log which logical column they asked
// for regardless of resolution path.
func (t *Transport) WalkWithFallback(ctx context.Context, mibName, mibObject, numericOid string) ([]Row, error) {
	_ = mibName
	_ = mibObject

	return t.Walk(ctx, numericOid)
}

func lldpTimeout(base time.Duration) time.Duration {
	return base * lldpTimeoutFactor
}
