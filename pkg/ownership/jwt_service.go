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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/juergengeck/uvc-sub003/pkg/codec"
)

var (
	errNoSender          = errors.New("no datagram sender configured")
	errCredentialInvalid = errors.New("credential token invalid")
)

// DatagramSender puts raw datagrams on the wire. Implemented by the
// discovery session, which owns the UDP socket.
type DatagramSender interface {
	Send(payload []byte, address string) error
}

// credentialEnvelope is the wire payload of credential and release
// frames.
type credentialEnvelope struct {
	Credential *Credential `json:"credential,omitempty"`
	DeviceID   string      `json:"device_id"`
	Release    bool        `json:"release,omitempty"`
}

// JWTCredentialService issues device-scoped credentials as
// ed25519-signed JWTs: issuer is the owning person, subject the device.
type JWTCredentialService struct {
	key    ed25519.PrivateKey
	pub    ed25519.PublicKey
	sender DatagramSender
	now    func() time.Time
}

// NewJWTCredentialService builds a credential service around an ed25519
// signing key.
func NewJWTCredentialService(key ed25519.PrivateKey, sender DatagramSender) *JWTCredentialService {
	return &JWTCredentialService{
		key:    key,
		pub:    key.Public().(ed25519.PublicKey),
		sender: sender,
		now:    time.Now,
	}
}

// Issue mints a credential for the device scoped to the owner.
func (s *JWTCredentialService) Issue(_ context.Context, deviceID, ownerID string) (*Credential, error) {
	id := uuid.NewString()
	issuedAt := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.RegisteredClaims{
		ID:       id,
		Issuer:   ownerID,
		Subject:  deviceID,
		IssuedAt: jwt.NewNumericDate(issuedAt),
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return nil, fmt.Errorf("sign credential: %w", err)
	}

	return &Credential{
		ID:       id,
		DeviceID: deviceID,
		Issuer:   ownerID,
		IssuedAt: issuedAt,
		Token:    signed,
	}, nil
}

// Verify checks the credential's signature and returns the claims the
// controller decides on. The issuer comparison itself stays in the
// controller.
func (s *JWTCredentialService) Verify(_ context.Context, cred *Credential) (*VerifiedInfo, error) {
	parsed, err := jwt.ParseWithClaims(cred.Token, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return s.pub, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errCredentialInvalid, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, errCredentialInvalid
	}

	info := &VerifiedInfo{
		DeviceID: claims.Subject,
		Issuer:   claims.Issuer,
	}

	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}

	return info, nil
}

// Transmit sends the credential to the device as a credential frame.
func (s *JWTCredentialService) Transmit(_ context.Context, cred *Credential, address string) error {
	return s.send(codec.FrameTypeCredential, credentialEnvelope{Credential: cred, DeviceID: cred.DeviceID}, address)
}

// Revoke runs the release handshake against the device.
func (s *JWTCredentialService) Revoke(_ context.Context, deviceID, address string) error {
	return s.send(codec.FrameTypeRelease, credentialEnvelope{DeviceID: deviceID, Release: true}, address)
}

func (s *JWTCredentialService) send(frameType byte, envelope credentialEnvelope, address string) error {
	if s.sender == nil {
		return errNoSender
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal credential envelope: %w", err)
	}

	return s.sender.Send(codec.EncodeFrame(frameType, payload), address)
}
