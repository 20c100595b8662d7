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
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

const sshHandshakeTimeout = 10 * time.Second

// sshVendorCommands is the vendor-keyed command table driving SSH
// collection. "unknown" issues every known pagination-disable command
// ignoring errors, then a generic version probe.
var sshVendorCommands = map[Vendor]struct {
	disablePaging []string
	commands      []string
}{
	VendorCisco: {
		disablePaging: []string{"terminal length 0"},
		commands:      []string{"show version", "show cdp neighbors detail", "show lldp neighbors detail"},
	},
	VendorArista: {
		disablePaging: []string{"terminal length 0"},
		commands:      []string{"show version", "show lldp neighbors detail"},
	},
	VendorJuniper: {
		disablePaging: []string{"set cli screen-length 0"},
		commands:      []string{"show version", "show lldp neighbors"},
	},
	VendorUnknown: {
		disablePaging: []string{"terminal length 0", "set cli screen-length 0"},
		commands:      []string{"show version"},
	},
}

// SSHCollector drives the SSH fallback path: command execution, output
// cleaning, and template-based parsing into Neighbor records.
type SSHCollector struct {
	client *ssh.Client
}

// DialSSH opens a client connection using cred, which must be a
// CredentialSSH. Host key verification is intentionally disabled: this is
// a discovery probe, not a production authentication path.
func DialSSH(ctx context.Context, target string, cred *Credential) (*SSHCollector, error) {
	if cred.Kind != CredentialSSH {
		return nil, fmt.Errorf("%w: credential is not SSH", ErrSSHCommandFailed)
	}

	auths := buildAuthMethods(cred.SSH)

	timeout := sshHandshakeTimeout
	if cred.SSH.Timeout > 0 && cred.SSH.Timeout < timeout {
		timeout = cred.SSH.Timeout
	}

	cfg := &ssh.ClientConfig{
		User:            cred.SSH.User,
		Auth:            auths,
		Timeout:         timeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	port := cred.SSH.Port
	if port == 0 {
		port = 22
	}

	addr := net.JoinHostPort(target, strconv.Itoa(port))

	dialer := net.Dialer{Timeout: timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSSHCommandFailed, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSSHCommandFailed, err)
	}

	return &SSHCollector{client: ssh.NewClient(sshConn, chans, reqs)}, nil
}

func buildAuthMethods(cred *SSHCredential) []ssh.AuthMethod {
	var auths []ssh.AuthMethod

	if len(cred.PrivateKey) > 0 {
		var signer ssh.Signer

		var err error

		if cred.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(cred.PrivateKey, []byte(cred.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(cred.PrivateKey)
		}

		if err == nil {
			auths = append(auths, ssh.PublicKeys(signer))
		}
	}

	if cred.Password != "" {
		auths = append(auths, ssh.Password(cred.Password))
	}

	return auths
}

// Close releases the underlying connection.
func (s *SSHCollector) Close() error {
	return s.client.Close()
}

// runCommand opens one exec channel per command and reads its combined
// output to completion, rather than scraping an interactive shell on a
// fixed delay.
func (s *SSHCollector) runCommand(command string) (string, error) {
	session, err := s.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSSHCommandFailed, err)
	}
	defer session.Close()

	out, err := session.CombinedOutput(command)
	if err != nil {
		return string(out), fmt.Errorf("%w: %w", ErrSSHCommandFailed, err)
	}

	return string(out), nil
}

// Neighbors issues the vendor's command table and parses cleaned output
// into Neighbor records. Per-command failures are non-fatal: they append
// to dev.Errors and execution continues with the next command.
func (s *SSHCollector) Neighbors(_ context.Context, dev *Device) ([]Neighbor, error) {
	table, ok := sshVendorCommands[dev.Vendor]
	if !ok {
		table = sshVendorCommands[VendorUnknown]
	}

	for _, cmd := range table.disablePaging {
		_, _ = s.runCommand(cmd)
	}

	var neighbors []Neighbor

	for _, cmd := range table.commands {
		raw, err := s.runCommand(cmd)
		if err != nil {
			dev.Errors = append(dev.Errors, fmt.Sprintf("ssh %q: %v", cmd, err))
			continue
		}

		cleaned := cleanSSHOutput(raw, cmd)
		neighbors = append(neighbors, parseNeighborsFromOutput(cleaned, cmd, dev.Vendor)...)
	}

	return neighbors, nil
}

var (
	ansiEscape   = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)
	promptLine   = regexp.MustCompile(`(?m)^\S+[>#]\s*$`)
	echoedCmdRgx = regexp.MustCompile(`(?m)^\S+[>#]\s*.+$`)
)

// cleanSSHOutput strips ANSI escapes, the echoed command line, and
// prompt-only lines from raw command output. Blank lines are kept as empty
// lines so that block-oriented templates can still split on them. Banner or
// MOTD text is not recognized and is passed through unchanged.
func cleanSSHOutput(raw, command string) string {
	out := ansiEscape.ReplaceAllString(raw, "")

	lines := strings.Split(out, "\n")

	var kept []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			kept = append(kept, "")
			continue
		}

		if strings.Contains(trimmed, command) && echoedCmdRgx.MatchString(trimmed) {
			continue
		}

		if promptLine.MatchString(trimmed) {
			continue
		}

		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}

// parseNeighborsFromOutput matches cleaned output against the
// line-oriented template registered for vendor/command and maps that
// template's captures into Neighbor records.
func parseNeighborsFromOutput(cleaned, command string, vendor Vendor) []Neighbor {
	tmpl, ok := bestTemplate(vendor, command)
	if !ok {
		return nil
	}

	return tmpl.parse(cleaned, vendor)
}
