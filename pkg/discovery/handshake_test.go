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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juergengeck/uvc-sub003/pkg/codec"
	"github.com/juergengeck/uvc-sub003/pkg/ownership"
)

func credentialFrame(t *testing.T, deviceID, issuer string) []byte {
	t.Helper()

	payload, err := json.Marshal(credentialPresentation{
		DeviceID: deviceID,
		Credential: &ownership.Credential{
			ID:       "cred-1",
			DeviceID: deviceID,
			Issuer:   issuer,
			IssuedAt: time.Now(),
			Token:    "token",
		},
	})
	require.NoError(t, err)

	return codec.EncodeFrame(codec.FrameTypeCredential, payload)
}

func TestCredentialPresentationRecoversOwnership(t *testing.T) {
	f := newSessionFixture(t, nil)

	f.session.handleDatagram(deviceFrame("esp-01"), "127.0.0.1:50000")
	f.session.handleDatagram(credentialFrame(t, "esp-01", appIdentity.PersonID), "127.0.0.1:50000")

	record := f.session.GetDevice("esp-01")
	require.NotNil(t, record)
	require.NotNil(t, record.OwnerID)
	assert.Equal(t, appIdentity.PersonID, *record.OwnerID)
	assert.True(t, record.HasValidCredential)
	assert.True(t, record.IsAuthenticated)
	assert.True(t, f.store.has("esp-01"))
}

func TestForeignCredentialPresentationIgnored(t *testing.T) {
	f := newSessionFixture(t, nil)

	f.session.handleDatagram(deviceFrame("esp-01"), "127.0.0.1:50000")
	f.session.handleDatagram(credentialFrame(t, "esp-01", "person-other"), "127.0.0.1:50000")

	record := f.session.GetDevice("esp-01")
	require.NotNil(t, record)
	assert.Nil(t, record.OwnerID)
	assert.False(t, record.HasValidCredential)
	assert.False(t, f.store.has("esp-01"))
}

func TestMalformedHandshakeFramesDropped(t *testing.T) {
	f := newSessionFixture(t, nil)

	f.session.handleDatagram(codec.EncodeFrame(codec.FrameTypeAck, []byte(`{broken`)), "127.0.0.1:50000")
	f.session.handleDatagram(codec.EncodeFrame(codec.FrameTypeAck, []byte(`{"accepted": true}`)), "127.0.0.1:50000")
	f.session.handleDatagram(codec.EncodeFrame(codec.FrameTypeCredential, []byte(`{"device_id": "esp-01"}`)), "127.0.0.1:50000")
	f.session.handleDatagram(codec.EncodeFrame(0x7F, []byte(`{}`)), "127.0.0.1:50000")

	assert.Empty(t, f.session.ListDevices())
}

func TestStrayAckWithoutClaimIgnored(t *testing.T) {
	f := newSessionFixture(t, nil)

	f.session.handleDatagram(deviceFrame("esp-01"), "127.0.0.1:50000")

	ack, err := json.Marshal(ackPayload{DeviceID: "esp-01", Accepted: true})
	require.NoError(t, err)

	f.session.handleDatagram(codec.EncodeFrame(codec.FrameTypeAck, ack), "127.0.0.1:50000")

	record := f.session.GetDevice("esp-01")
	assert.Nil(t, record.OwnerID)
	assert.False(t, record.IsAuthenticated)
}
