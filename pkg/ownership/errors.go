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

import "errors"

var (
	ErrDeviceNotFound    = errors.New("device not found")
	ErrDeviceUnreachable = errors.New("device has no known address")
	ErrAlreadyOwned      = errors.New("device is owned by someone else")
	ErrClaimInFlight     = errors.New("a claim for this device is already in flight")
	ErrClaimTimeout      = errors.New("claim timed out waiting for device acknowledgement")
	ErrClaimRejected     = errors.New("claim rejected by device")
	ErrCancelled         = errors.New("claim cancelled")
	ErrNotOwned          = errors.New("device is not owned by the local identity")

	// ErrIssuerMismatch is returned when an observed credential was not
	// issued by the local identity. Callers log and ignore it; it is
	// never surfaced to the user.
	ErrIssuerMismatch = errors.New("credential issuer does not match local identity")
)
