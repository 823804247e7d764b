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

// Package models contains the shared data model for device discovery,
// ownership and liveness tracking.
package models

import (
	"net"
	"sort"
	"strconv"
	"time"
)

// Transport identifies which radio a device observation arrived on.
type Transport string

const (
	TransportWiFi Transport = "wifi"
	TransportBLE  Transport = "ble"
)

// TransportStatus is the per-transport reachability flag on a device record.
type TransportStatus string

const (
	TransportActive   TransportStatus = "active"
	TransportInactive TransportStatus = "inactive"
)

// LEDStatus is the device-reported LED state. Advisory only.
type LEDStatus string

const (
	LEDOn      LEDStatus = "on"
	LEDOff     LEDStatus = "off"
	LEDBlink   LEDStatus = "blink"
	LEDUnknown LEDStatus = "unknown"
)

// DeviceRecord is the unit of truth for one physical device. The primary
// key is DeviceID, a stable device-chosen identifier that is never reused
// across physical devices.
//
// OwnerID, HasValidCredential and IsAuthenticated are mutated only by the
// ownership controller. Discovery frames carry no ownership information,
// so the merge path must copy these fields forward unchanged.
type DeviceRecord struct {
	DeviceID    string `json:"device_id" db:"device_id"`
	DisplayName string `json:"display_name,omitempty" db:"display_name"`
	DeviceType  string `json:"device_type,omitempty" db:"device_type"`

	// Last-known reachable endpoint. Empty until seen over the datagram
	// transport.
	Address string `json:"address,omitempty" db:"address"`
	Port    uint16 `json:"port,omitempty" db:"port"`

	// Each flag is owned exclusively by its transport's merge path.
	WiFiStatus TransportStatus `json:"wifi_status" db:"wifi_status"`
	BLEStatus  TransportStatus `json:"ble_status" db:"ble_status"`

	Online    bool      `json:"online" db:"online"`
	Connected bool      `json:"connected" db:"connected"`
	FirstSeen time.Time `json:"first_seen" db:"first_seen"`
	LastSeen  time.Time `json:"last_seen" db:"last_seen"`

	OwnerID            *string `json:"owner_id,omitempty" db:"owner_id"`
	HasValidCredential bool    `json:"has_valid_credential" db:"has_valid_credential"`
	IsAuthenticated    bool    `json:"is_authenticated" db:"is_authenticated"`

	Capabilities []string  `json:"capabilities,omitempty" db:"capabilities"`
	LEDStatus    LEDStatus `json:"led_status" db:"led_status"`
}

// Clone returns a deep copy so callers can hand records out of the
// registry without aliasing its internal state.
func (r *DeviceRecord) Clone() *DeviceRecord {
	if r == nil {
		return nil
	}

	clone := *r

	if r.OwnerID != nil {
		owner := *r.OwnerID
		clone.OwnerID = &owner
	}

	if r.Capabilities != nil {
		clone.Capabilities = make([]string, len(r.Capabilities))
		copy(clone.Capabilities, r.Capabilities)
	}

	return &clone
}

// Endpoint formats the last-known reachable address as "host:port".
// Empty when the device has never been seen over the datagram
// transport.
func (r *DeviceRecord) Endpoint() string {
	if r.Address == "" {
		return ""
	}

	return net.JoinHostPort(r.Address, strconv.Itoa(int(r.Port)))
}

// OwnedBy reports whether the record is owned by the given person.
func (r *DeviceRecord) OwnedBy(personID string) bool {
	return r.OwnerID != nil && *r.OwnerID == personID
}

// MergeCapabilities unions new capabilities into the record, keeping the
// slice sorted and free of duplicates.
func (r *DeviceRecord) MergeCapabilities(caps []string) {
	if len(caps) == 0 {
		return
	}

	seen := make(map[string]struct{}, len(r.Capabilities)+len(caps))
	for _, c := range r.Capabilities {
		seen[c] = struct{}{}
	}

	for _, c := range caps {
		seen[c] = struct{}{}
	}

	merged := make([]string, 0, len(seen))
	for c := range seen {
		merged = append(merged, c)
	}

	sort.Strings(merged)
	r.Capabilities = merged
}

// DiscoveryFrame is the structured result of decoding a discovery
// datagram or a wireless advertisement. It deliberately has no ownership
// fields.
type DiscoveryFrame struct {
	DeviceID     string    `json:"device_id"`
	DeviceType   string    `json:"device_type"`
	DisplayName  string    `json:"display_name,omitempty"`
	Capabilities []string  `json:"capabilities,omitempty"`
	LEDStatus    LEDStatus `json:"led_status,omitempty"`
	Port         uint16    `json:"port,omitempty"`
}

// Advertisement is the vendor record delivered by the platform BTLE
// stack's scan callback.
type Advertisement struct {
	LocalName        string
	ManufacturerData []byte
	Address          string
}

// LocalIdentity describes this node for self-announcement broadcasts and
// ownership claims.
type LocalIdentity struct {
	PersonID     string   `json:"person_id"`
	DeviceID     string   `json:"device_id"`
	DisplayName  string   `json:"display_name,omitempty"`
	DeviceType   string   `json:"device_type,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	Port         uint16   `json:"port,omitempty"`
}
