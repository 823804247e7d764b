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

//go:generate mockgen -destination=mock_ownership.go -package=ownership github.com/juergengeck/uvc-sub003/pkg/ownership CredentialService,Store,HeartbeatTracker

package ownership

import (
	"context"
	"time"

	"github.com/juergengeck/uvc-sub003/pkg/models"
)

// Credential is a device-scoped ownership credential. The token format
// is opaque to the controller; only the credential service interprets
// it.
type Credential struct {
	ID       string    `json:"id"`
	DeviceID string    `json:"device_id"`
	Issuer   string    `json:"issuer"`
	IssuedAt time.Time `json:"issued_at"`
	Token    string    `json:"token"`
}

// VerifiedInfo is the result of verifying a credential.
type VerifiedInfo struct {
	DeviceID string
	Issuer   string
	IssuedAt time.Time
}

// CredentialService is the external credential collaborator. The
// controller drives the protocol; issuance, verification and transport
// of credentials live behind this interface.
type CredentialService interface {
	Issue(ctx context.Context, deviceID, ownerID string) (*Credential, error)
	Verify(ctx context.Context, cred *Credential) (*VerifiedInfo, error)
	Transmit(ctx context.Context, cred *Credential, address string) error
	Revoke(ctx context.Context, deviceID, address string) error
}

// Store is the opaque persistence collaborator for owned device
// records. Failures are non-fatal: discovery continues from live radio
// data even when persistence is degraded.
type Store interface {
	Save(ctx context.Context, record *models.DeviceRecord) error
	LoadAllOwned(ctx context.Context) ([]*models.DeviceRecord, error)
	Delete(ctx context.Context, deviceID string) error
}

// HeartbeatTracker starts and stops liveness tracking for owned
// devices. Implemented by the liveness scheduler.
type HeartbeatTracker interface {
	Track(deviceID string)
	Untrack(deviceID string)
}
