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

package ownership

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juergengeck/uvc-sub003/pkg/codec"
)

type capturingSender struct {
	payloads  [][]byte
	addresses []string
}

func (c *capturingSender) Send(payload []byte, address string) error {
	c.payloads = append(c.payloads, payload)
	c.addresses = append(c.addresses, address)

	return nil
}

func newJWTService(t *testing.T) (*JWTCredentialService, *capturingSender) {
	t.Helper()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	sender := &capturingSender{}

	return NewJWTCredentialService(key, sender), sender
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc, _ := newJWTService(t)
	ctx := context.Background()

	cred, err := svc.Issue(ctx, "esp-01", "person-1")
	require.NoError(t, err)

	assert.NotEmpty(t, cred.ID)
	assert.Equal(t, "esp-01", cred.DeviceID)
	assert.Equal(t, "person-1", cred.Issuer)
	assert.NotEmpty(t, cred.Token)

	info, err := svc.Verify(ctx, cred)
	require.NoError(t, err)

	assert.Equal(t, "esp-01", info.DeviceID)
	assert.Equal(t, "person-1", info.Issuer)
	assert.WithinDuration(t, cred.IssuedAt, info.IssuedAt, time.Second)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc, _ := newJWTService(t)
	ctx := context.Background()

	cred, err := svc.Issue(ctx, "esp-01", "person-1")
	require.NoError(t, err)

	cred.Token += "x"

	_, err = svc.Verify(ctx, cred)
	assert.ErrorIs(t, err, errCredentialInvalid)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	svc, _ := newJWTService(t)
	other, _ := newJWTService(t)
	ctx := context.Background()

	cred, err := other.Issue(ctx, "esp-01", "person-1")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, cred)
	assert.ErrorIs(t, err, errCredentialInvalid)
}

func TestTransmitSendsCredentialFrame(t *testing.T) {
	svc, sender := newJWTService(t)
	ctx := context.Background()

	cred, err := svc.Issue(ctx, "esp-01", "person-1")
	require.NoError(t, err)

	require.NoError(t, svc.Transmit(ctx, cred, "10.0.0.5:49497"))
	require.Len(t, sender.payloads, 1)
	assert.Equal(t, "10.0.0.5:49497", sender.addresses[0])

	frameType, payload, _, err := codec.SplitFrame(sender.payloads[0])
	require.NoError(t, err)
	assert.Equal(t, byte(codec.FrameTypeCredential), frameType)

	var envelope credentialEnvelope
	require.NoError(t, json.Unmarshal(payload, &envelope))
	assert.Equal(t, "esp-01", envelope.DeviceID)
	require.NotNil(t, envelope.Credential)
	assert.Equal(t, cred.Token, envelope.Credential.Token)
	assert.False(t, envelope.Release)
}

func TestRevokeSendsReleaseFrame(t *testing.T) {
	svc, sender := newJWTService(t)

	require.NoError(t, svc.Revoke(context.Background(), "esp-01", "10.0.0.5:49497"))
	require.Len(t, sender.payloads, 1)

	frameType, payload, _, err := codec.SplitFrame(sender.payloads[0])
	require.NoError(t, err)
	assert.Equal(t, byte(codec.FrameTypeRelease), frameType)

	var envelope credentialEnvelope
	require.NoError(t, json.Unmarshal(payload, &envelope))
	assert.Equal(t, "esp-01", envelope.DeviceID)
	assert.True(t, envelope.Release)
	assert.Nil(t, envelope.Credential)
}

func TestSendWithoutSender(t *testing.T) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	svc := NewJWTCredentialService(key, nil)

	cred, err := svc.Issue(context.Background(), "esp-01", "person-1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Transmit(context.Background(), cred, "10.0.0.5:49497"), errNoSender)
}
