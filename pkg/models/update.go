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

package models

import "time"

// OwnershipState carries the full ownership triple so an update can
// never apply a partial ownership transition.
type OwnershipState struct {
	OwnerID            *string `json:"owner_id,omitempty"`
	HasValidCredential bool    `json:"has_valid_credential"`
	IsAuthenticated    bool    `json:"is_authenticated"`
}

// DeviceUpdate is a partial mutation of one device record. Nil fields
// mean "unchanged". Updates for the same device are merged field-wise,
// last write wins, before being emitted to subscribers.
type DeviceUpdate struct {
	DeviceID string `json:"device_id"`
	Created  bool   `json:"created,omitempty"`

	DisplayName *string          `json:"display_name,omitempty"`
	DeviceType  *string          `json:"device_type,omitempty"`
	Address     *string          `json:"address,omitempty"`
	Port        *uint16          `json:"port,omitempty"`
	WiFiStatus  *TransportStatus `json:"wifi_status,omitempty"`
	BLEStatus   *TransportStatus `json:"ble_status,omitempty"`
	Online      *bool            `json:"online,omitempty"`
	Connected   *bool            `json:"connected,omitempty"`
	LastSeen    *time.Time       `json:"last_seen,omitempty"`
	Ownership   *OwnershipState  `json:"ownership,omitempty"`
	LEDStatus   *LEDStatus       `json:"led_status,omitempty"`

	// Capabilities is the full post-merge set, not a delta.
	Capabilities []string `json:"capabilities,omitempty"`
}

// Merge folds a newer update into u. Fields set on next overwrite the
// corresponding fields on u; unset fields are left alone.
func (u *DeviceUpdate) Merge(next *DeviceUpdate) {
	if next == nil {
		return
	}

	u.Created = u.Created || next.Created

	if next.DisplayName != nil {
		u.DisplayName = next.DisplayName
	}

	if next.DeviceType != nil {
		u.DeviceType = next.DeviceType
	}

	if next.Address != nil {
		u.Address = next.Address
	}

	if next.Port != nil {
		u.Port = next.Port
	}

	if next.WiFiStatus != nil {
		u.WiFiStatus = next.WiFiStatus
	}

	if next.BLEStatus != nil {
		u.BLEStatus = next.BLEStatus
	}

	if next.Online != nil {
		u.Online = next.Online
	}

	if next.Connected != nil {
		u.Connected = next.Connected
	}

	if next.LastSeen != nil {
		u.LastSeen = next.LastSeen
	}

	if next.Ownership != nil {
		u.Ownership = next.Ownership
	}

	if next.LEDStatus != nil {
		u.LEDStatus = next.LEDStatus
	}

	if next.Capabilities != nil {
		u.Capabilities = next.Capabilities
	}
}
