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

func TestArpIPFromOID(t *testing.T) {
	ip, ok := arpIPFromOID(oidIPNetToMediaPhysAddress+".5.10.0.0.1", oidIPNetToMediaPhysAddress)
	assert.True(t, ok)
	assert.Equal(t, "10.0.0.1", ip)

	_, ok = arpIPFromOID(oidIPNetToMediaPhysAddress+".5.10.0.999", oidIPNetToMediaPhysAddress)
	assert.False(t, ok)

	_, ok = arpIPFromOID(oidIPNetToMediaPhysAddress+".1.2", oidIPNetToMediaPhysAddress)
	assert.False(t, ok)
}
