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
)

func TestCleanSSHOutputStripsEchoAndPrompt(t *testing.T) {
	raw := "switch-a#show version\n" +
		"Cisco IOS Software, Version 15.2\n" +
		"Uptime is 10 days\n" +
		"switch-a#"

	cleaned := cleanSSHOutput(raw, "show version")

	assert.Contains(t, cleaned, "Cisco IOS Software, Version 15.2")
	assert.Contains(t, cleaned, "Uptime is 10 days")
	assert.NotContains(t, cleaned, "show version")
	assert.NotContains(t, cleaned, "switch-a#")
}

func TestCleanSSHOutputStripsANSIEscapes(t *testing.T) {
	raw := "\x1b[1mbold-looking-line\x1b[0m\nplain line"

	cleaned := cleanSSHOutput(raw, "show version")

	assert.NotContains(t, cleaned, "\x1b[")
	assert.Contains(t, cleaned, "bold-looking-line")
	assert.Contains(t, cleaned, "plain line")
}

func TestBuildAuthMethodsPasswordOnly(t *testing.T) {
	methods := buildAuthMethods(&SSHCredential{Password: "secret"})
	assert.Len(t, methods, 1)
}

func TestBuildAuthMethodsNoCredentialMaterial(t *testing.T) {
	methods := buildAuthMethods(&SSHCredential{})
	assert.Empty(t, methods)
}

func TestBuildAuthMethodsInvalidKeyFallsBackToPassword(t *testing.T) {
	methods := buildAuthMethods(&SSHCredential{PrivateKey: []byte("not a real key"), Password: "secret"})
	assert.Len(t, methods, 1)
}
