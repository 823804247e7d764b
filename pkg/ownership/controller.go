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

// Package ownership drives the claim/release/verify workflow. It is the
// only component allowed to mutate the ownership fields of a device
// record: the discovery merge path copies them forward untouched.
package ownership

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/juergengeck/uvc-sub003/pkg/logger"
	"github.com/juergengeck/uvc-sub003/pkg/models"
	"github.com/juergengeck/uvc-sub003/pkg/notifier"
	"github.com/juergengeck/uvc-sub003/pkg/registry"
)

// pendingClaim tracks one in-flight ownership claim. At most one exists
// per device at a time; it is destroyed on success, failure, timeout or
// session cancellation.
type pendingClaim struct {
	deviceID     string
	attemptToken string
	startedAt    time.Time
	ack          chan error
}

// Controller owns the per-device ownership state machine:
// Unclaimed -> Claiming -> Owned(Authenticated), with release and
// claim failure returning to Unclaimed.
type Controller struct {
	registry   *registry.DeviceRegistry
	notifier   *notifier.Notifier
	creds      CredentialService
	store      Store
	heartbeats HeartbeatTracker
	identity   models.LocalIdentity

	claimTimeout time.Duration

	mu      sync.Mutex
	pending map[string]*pendingClaim

	logger logger.Logger
	now    func() time.Time
}

// NewController wires the ownership controller to its collaborators.
func NewController(
	reg *registry.DeviceRegistry,
	not *notifier.Notifier,
	creds CredentialService,
	store Store,
	heartbeats HeartbeatTracker,
	identity models.LocalIdentity,
	claimTimeout time.Duration,
	log logger.Logger,
) *Controller {
	if claimTimeout <= 0 {
		claimTimeout = models.DefaultClaimTimeout
	}

	return &Controller{
		registry:     reg,
		notifier:     not,
		creds:        creds,
		store:        store,
		heartbeats:   heartbeats,
		identity:     identity,
		claimTimeout: claimTimeout,
		pending:      make(map[string]*pendingClaim),
		logger:       log.WithComponent("ownership"),
		now:          time.Now,
	}
}

// Claim attempts to take ownership of a device. It mints a
// device-scoped credential, transmits it to the device's current
// address and waits for an application-level acknowledgement with a
// bounded timeout. Claims are idempotency-guarded: a second Claim for
// the same device while one is in flight returns ErrClaimInFlight.
func (c *Controller) Claim(ctx context.Context, deviceID string) error {
	claim, err := c.beginClaim(deviceID)
	if err != nil {
		return err
	}

	cred, err := c.creds.Issue(ctx, deviceID, c.identity.PersonID)
	if err != nil {
		c.endClaim(deviceID, claim.attemptToken)
		return err
	}

	record := c.registry.Get(deviceID)
	if record == nil {
		c.endClaim(deviceID, claim.attemptToken)
		return ErrDeviceNotFound
	}

	if err := c.creds.Transmit(ctx, cred, record.Endpoint()); err != nil {
		c.endClaim(deviceID, claim.attemptToken)
		return err
	}

	c.logger.Info().
		Str("device_id", deviceID).
		Str("attempt_token", claim.attemptToken).
		Msg("Credential transmitted, awaiting acknowledgement")

	timer := time.NewTimer(c.claimTimeout)
	defer timer.Stop()

	select {
	case err := <-claim.ack:
		c.endClaim(deviceID, claim.attemptToken)

		if err != nil {
			c.logger.Warn().Err(err).Str("device_id", deviceID).Msg("Claim failed")
			return err
		}

		return c.completeClaim(ctx, deviceID)
	case <-timer.C:
		c.endClaim(deviceID, claim.attemptToken)
		return ErrClaimTimeout
	case <-ctx.Done():
		c.endClaim(deviceID, claim.attemptToken)
		return ctx.Err()
	}
}

// beginClaim validates preconditions and registers the pending claim
// under the lock, so a concurrent Claim for the same device cannot
// race past the idempotency guard.
func (c *Controller) beginClaim(deviceID string) (*pendingClaim, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, inFlight := c.pending[deviceID]; inFlight {
		return nil, ErrClaimInFlight
	}

	record := c.registry.Get(deviceID)
	if record == nil {
		return nil, ErrDeviceNotFound
	}

	if record.OwnerID != nil && !record.OwnedBy(c.identity.PersonID) {
		return nil, ErrAlreadyOwned
	}

	if record.Address == "" {
		return nil, ErrDeviceUnreachable
	}

	claim := &pendingClaim{
		deviceID:     deviceID,
		attemptToken: uuid.NewString(),
		startedAt:    c.now(),
		ack:          make(chan error, 1),
	}

	c.pending[deviceID] = claim

	return claim, nil
}

// endClaim removes the pending claim if the attempt token still
// matches. A stale token means the claim was already resolved.
func (c *Controller) endClaim(deviceID, attemptToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if claim, ok := c.pending[deviceID]; ok && claim.attemptToken == attemptToken {
		delete(c.pending, deviceID)
	}
}

// completeClaim applies the Owned(Authenticated) terminal state. The
// record is re-fetched under the registry lock: the acknowledgement
// wait was a suspension point and the pre-wait snapshot may be stale.
func (c *Controller) completeClaim(ctx context.Context, deviceID string) error {
	owner := c.identity.PersonID

	update, found := c.registry.Apply(deviceID, func(record *models.DeviceRecord) *models.DeviceUpdate {
		record.OwnerID = &owner
		record.HasValidCredential = true
		record.IsAuthenticated = true
		record.Connected = true

		connected := true

		return &models.DeviceUpdate{
			DeviceID:  deviceID,
			Connected: &connected,
			Ownership: &models.OwnershipState{
				OwnerID:            record.OwnerID,
				HasValidCredential: true,
				IsAuthenticated:    true,
			},
		}
	})
	if !found {
		return ErrDeviceNotFound
	}

	c.persist(ctx, deviceID)
	c.notifier.Notify(update)
	c.heartbeats.Track(deviceID)

	c.logger.Info().Str("device_id", deviceID).Msg("Device claimed")

	return nil
}

// HandleAck resolves an in-flight claim with the device's answer.
// Acknowledgements whose attempt token does not match the pending claim
// are stale and ignored.
func (c *Controller) HandleAck(deviceID, attemptToken string, accepted bool) {
	c.mu.Lock()
	claim, ok := c.pending[deviceID]

	if ok && attemptToken != "" && claim.attemptToken != attemptToken {
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		c.logger.Debug().
			Str("device_id", deviceID).
			Msg("Ignoring acknowledgement with no matching claim")

		return
	}

	if accepted {
		claim.ack <- nil
	} else {
		claim.ack <- ErrClaimRejected
	}
}

// Release gives up local ownership: runs the device-release handshake,
// clears the ownership triple, cancels the heartbeat schedule and
// removes the persisted record.
func (c *Controller) Release(ctx context.Context, deviceID string) error {
	record := c.registry.Get(deviceID)
	if record == nil {
		return ErrDeviceNotFound
	}

	if !record.OwnedBy(c.identity.PersonID) {
		return ErrNotOwned
	}

	if err := c.creds.Revoke(ctx, deviceID, record.Endpoint()); err != nil {
		// The device may be dead or out of range. Local ownership is
		// cleared regardless so the user is never stuck with an
		// unreleasable device.
		c.logger.Warn().Err(err).Str("device_id", deviceID).Msg("Release handshake failed")
	}

	update, found := c.registry.Apply(deviceID, func(rec *models.DeviceRecord) *models.DeviceUpdate {
		rec.OwnerID = nil
		rec.HasValidCredential = false
		rec.IsAuthenticated = false
		rec.Connected = false

		disconnected := false

		return &models.DeviceUpdate{
			DeviceID:  deviceID,
			Connected: &disconnected,
			Ownership: &models.OwnershipState{},
		}
	})
	if !found {
		return ErrDeviceNotFound
	}

	c.heartbeats.Untrack(deviceID)

	if err := c.store.Delete(ctx, deviceID); err != nil {
		c.logger.Warn().Err(err).Str("device_id", deviceID).Msg("Failed to delete persisted record")
	}

	c.notifier.Notify(update)

	c.logger.Info().Str("device_id", deviceID).Msg("Device released")

	return nil
}

// OnCredentialObserved handles a device spontaneously presenting a
// credential, typically after an app restart. A credential issued by
// the local identity recovers ownership without re-running the claim
// handshake. A foreign issuer is ignored: a device owned by someone
// else must never be treated as locally owned.
func (c *Controller) OnCredentialObserved(ctx context.Context, deviceID string, cred *Credential) error {
	info, err := c.creds.Verify(ctx, cred)
	if err != nil {
		c.logger.Warn().Err(err).Str("device_id", deviceID).Msg("Observed credential failed verification")
		return err
	}

	if info.Issuer != c.identity.PersonID {
		c.logger.Info().
			Str("device_id", deviceID).
			Str("issuer", info.Issuer).
			Msg("Ignoring credential issued by another identity")

		return ErrIssuerMismatch
	}

	if info.DeviceID != deviceID {
		c.logger.Warn().
			Str("device_id", deviceID).
			Str("credential_device_id", info.DeviceID).
			Msg("Ignoring credential scoped to a different device")

		return ErrIssuerMismatch
	}

	owner := c.identity.PersonID

	update, found := c.registry.Apply(deviceID, func(record *models.DeviceRecord) *models.DeviceUpdate {
		if record.OwnedBy(owner) && record.IsAuthenticated {
			return nil
		}

		record.OwnerID = &owner
		record.HasValidCredential = true
		record.IsAuthenticated = true
		record.Connected = true

		connected := true

		return &models.DeviceUpdate{
			DeviceID:  deviceID,
			Connected: &connected,
			Ownership: &models.OwnershipState{
				OwnerID:            record.OwnerID,
				HasValidCredential: true,
				IsAuthenticated:    true,
			},
		}
	})
	if !found {
		return ErrDeviceNotFound
	}

	if update == nil {
		// Already owned and authenticated.
		return nil
	}

	c.persist(ctx, deviceID)
	c.notifier.Notify(update)
	c.heartbeats.Track(deviceID)

	c.logger.Info().Str("device_id", deviceID).Msg("Ownership recovered from observed credential")

	return nil
}

// RestoreOwned seeds the registry with persisted owned devices at
// session start. Restored devices begin offline; heartbeat tracking
// resumes once the device is observed and presents its credential.
func (c *Controller) RestoreOwned(ctx context.Context) {
	records, err := c.store.LoadAllOwned(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to load persisted owned devices")
		return
	}

	for _, record := range records {
		if c.registry.Restore(record) {
			c.logger.Debug().
				Str("device_id", record.DeviceID).
				Msg("Restored owned device from persistence")
		}
	}
}

// HasPendingClaim reports whether a claim is in flight for the device.
func (c *Controller) HasPendingClaim(deviceID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.pending[deviceID]

	return ok
}

// CancelAll resolves every in-flight claim with ErrCancelled. Called
// when the discovery session stops so no claim caller is left pending
// forever.
func (c *Controller) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for deviceID, claim := range c.pending {
		select {
		case claim.ack <- ErrCancelled:
		default:
		}

		delete(c.pending, deviceID)
	}
}

func (c *Controller) persist(ctx context.Context, deviceID string) {
	record := c.registry.Get(deviceID)
	if record == nil {
		return
	}

	if err := c.store.Save(ctx, record); err != nil {
		c.logger.Warn().Err(err).Str("device_id", deviceID).Msg("Failed to persist device record")
	}
}
