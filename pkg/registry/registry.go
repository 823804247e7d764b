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

// Package registry holds the canonical in-memory table of device
// records and owns the merge rules applied when the same device is
// observed on multiple transports.
package registry

import (
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/juergengeck/uvc-sub003/pkg/logger"
	"github.com/juergengeck/uvc-sub003/pkg/models"
)

// DeviceRegistry is the single source of truth for device state. All
// components mutate device records through it; the two transports are
// just two inbound event sources feeding Observe.
type DeviceRegistry struct {
	mu      sync.RWMutex
	devices map[string]*models.DeviceRecord
	logger  logger.Logger
	now     func() time.Time
}

// NewDeviceRegistry creates an empty, authoritative device registry.
func NewDeviceRegistry(log logger.Logger) *DeviceRegistry {
	return &DeviceRegistry{
		devices: make(map[string]*models.DeviceRecord),
		logger:  log.WithComponent("registry"),
		now:     time.Now,
	}
}

// Observe merges one discovery frame into the registry and returns the
// resulting delta. On first sight a record is created with ownership
// seeded empty; on re-sight only the fields the observing transport is
// authoritative for are touched. Ownership fields are copied forward
// unchanged: discovery frames carry no ownership information, and
// taking them from the frame would silently erase ownership on the
// next discovery tick.
func (r *DeviceRegistry) Observe(frame *models.DiscoveryFrame, transport models.Transport, sourceAddr string) *models.DeviceUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	address, port := splitEndpoint(sourceAddr, frame.Port)

	record, exists := r.devices[frame.DeviceID]
	if !exists {
		return r.create(frame, transport, address, port, now)
	}

	update := &models.DeviceUpdate{DeviceID: frame.DeviceID}

	if address != "" && (record.Address != address || record.Port != port) {
		record.Address = address
		record.Port = port
		update.Address = &address
		update.Port = &port
	}

	if frame.DisplayName != "" && frame.DisplayName != record.DisplayName {
		record.DisplayName = frame.DisplayName
		update.DisplayName = &record.DisplayName
	}

	if frame.DeviceType != "" && frame.DeviceType != record.DeviceType {
		record.DeviceType = frame.DeviceType
		update.DeviceType = &record.DeviceType
	}

	if len(frame.Capabilities) > 0 {
		before := len(record.Capabilities)
		record.MergeCapabilities(frame.Capabilities)

		if len(record.Capabilities) != before {
			update.Capabilities = append([]string(nil), record.Capabilities...)
		}
	}

	if frame.LEDStatus != "" && frame.LEDStatus != models.LEDUnknown && frame.LEDStatus != record.LEDStatus {
		record.LEDStatus = frame.LEDStatus
		update.LEDStatus = &record.LEDStatus
	}

	record.LastSeen = now
	update.LastSeen = &record.LastSeen

	if !record.Online {
		record.Online = true
		online := true
		update.Online = &online
	}

	r.setTransportStatus(record, update, transport, models.TransportActive)

	return update
}

func (r *DeviceRegistry) create(frame *models.DiscoveryFrame, transport models.Transport, address string, port uint16, now time.Time) *models.DeviceUpdate {
	record := &models.DeviceRecord{
		DeviceID:    frame.DeviceID,
		DisplayName: frame.DisplayName,
		DeviceType:  frame.DeviceType,
		Address:     address,
		Port:        port,
		WiFiStatus:  models.TransportInactive,
		BLEStatus:   models.TransportInactive,
		Online:      true,
		FirstSeen:   now,
		LastSeen:    now,
		LEDStatus:   models.LEDUnknown,
	}

	record.MergeCapabilities(frame.Capabilities)

	if frame.LEDStatus != "" {
		record.LEDStatus = frame.LEDStatus
	}

	switch transport {
	case models.TransportWiFi:
		record.WiFiStatus = models.TransportActive
	case models.TransportBLE:
		record.BLEStatus = models.TransportActive
	}

	r.devices[frame.DeviceID] = record

	r.logger.Info().
		Str("device_id", record.DeviceID).
		Str("device_type", record.DeviceType).
		Str("transport", string(transport)).
		Str("address", address).
		Msg("Discovered new device")

	online := true
	update := &models.DeviceUpdate{
		DeviceID:     record.DeviceID,
		Created:      true,
		Online:       &online,
		LastSeen:     &record.LastSeen,
		Capabilities: append([]string(nil), record.Capabilities...),
	}

	if record.DisplayName != "" {
		update.DisplayName = &record.DisplayName
	}

	if record.DeviceType != "" {
		update.DeviceType = &record.DeviceType
	}

	if address != "" {
		update.Address = &record.Address
		update.Port = &record.Port
	}

	switch transport {
	case models.TransportWiFi:
		update.WiFiStatus = &record.WiFiStatus
	case models.TransportBLE:
		update.BLEStatus = &record.BLEStatus
	}

	return update
}

func (r *DeviceRegistry) setTransportStatus(record *models.DeviceRecord, update *models.DeviceUpdate, transport models.Transport, status models.TransportStatus) {
	switch transport {
	case models.TransportWiFi:
		if record.WiFiStatus != status {
			record.WiFiStatus = status
			update.WiFiStatus = &record.WiFiStatus
		}
	case models.TransportBLE:
		if record.BLEStatus != status {
			record.BLEStatus = status
			update.BLEStatus = &record.BLEStatus
		}
	}
}

// MarkTransportInactive flips one transport's status flag. When both
// transports are inactive the device is taken offline.
func (r *DeviceRegistry) MarkTransportInactive(deviceID string, transport models.Transport) *models.DeviceUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.devices[deviceID]
	if !exists {
		return nil
	}

	update := &models.DeviceUpdate{DeviceID: deviceID}
	r.setTransportStatus(record, update, transport, models.TransportInactive)

	if record.WiFiStatus == models.TransportInactive && record.BLEStatus == models.TransportInactive {
		r.takeOffline(record, update)
	}

	if update.WiFiStatus == nil && update.BLEStatus == nil && update.Online == nil {
		return nil
	}

	return update
}

func (r *DeviceRegistry) takeOffline(record *models.DeviceRecord, update *models.DeviceUpdate) {
	if record.Online {
		record.Online = false
		offline := false
		update.Online = &offline
	}

	if record.Connected {
		record.Connected = false
		disconnected := false
		update.Connected = &disconnected
	}
}

// SweepTimeouts transitions every record whose last sighting is older
// than timeout to offline. Records are never removed: a silent device
// is offline, not forgotten.
func (r *DeviceRegistry) SweepTimeouts(now time.Time, timeout time.Duration) []*models.DeviceUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updates []*models.DeviceUpdate

	for _, record := range r.devices {
		if !record.Online || now.Sub(record.LastSeen) <= timeout {
			continue
		}

		update := &models.DeviceUpdate{DeviceID: record.DeviceID}

		r.setTransportStatusBoth(record, update, models.TransportInactive)
		r.takeOffline(record, update)

		r.logger.Debug().
			Str("device_id", record.DeviceID).
			Time("last_seen", record.LastSeen).
			Msg("Device timed out")

		updates = append(updates, update)
	}

	return updates
}

func (r *DeviceRegistry) setTransportStatusBoth(record *models.DeviceRecord, update *models.DeviceUpdate, status models.TransportStatus) {
	r.setTransportStatus(record, update, models.TransportWiFi, status)
	r.setTransportStatus(record, update, models.TransportBLE, status)
}

// Get returns a copy of one device record, or nil if unknown.
func (r *DeviceRegistry) Get(deviceID string) *models.DeviceRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.devices[deviceID].Clone()
}

// List returns copies of all device records ordered by device id.
func (r *DeviceRegistry) List() []*models.DeviceRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*models.DeviceRecord, 0, len(r.devices))
	for _, record := range r.devices {
		records = append(records, record.Clone())
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].DeviceID < records[j].DeviceID
	})

	return records
}

// Apply runs fn against the live record under the registry lock and
// returns the delta fn produced. Ownership transitions go through here
// so a claim that awaited a network acknowledgement mutates the current
// record, not a stale pre-await snapshot.
func (r *DeviceRegistry) Apply(deviceID string, fn func(*models.DeviceRecord) *models.DeviceUpdate) (*models.DeviceUpdate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.devices[deviceID]
	if !exists {
		return nil, false
	}

	return fn(record), true
}

// Restore seeds the registry with a persisted record. The device starts
// offline with both transports inactive until a live observation
// arrives; ownership fields are kept as persisted. Existing records are
// not overwritten.
func (r *DeviceRegistry) Restore(record *models.DeviceRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[record.DeviceID]; exists {
		return false
	}

	restored := record.Clone()
	restored.Online = false
	restored.Connected = false
	restored.WiFiStatus = models.TransportInactive
	restored.BLEStatus = models.TransportInactive

	r.devices[restored.DeviceID] = restored

	return true
}

// splitEndpoint extracts host and port from a "host:port" source
// address. A port carried in the frame itself wins over the source
// port: devices may answer from an ephemeral port while listening on a
// fixed one.
func splitEndpoint(sourceAddr string, framePort uint16) (string, uint16) {
	if sourceAddr == "" {
		return "", framePort
	}

	host, portStr, err := net.SplitHostPort(sourceAddr)
	if err != nil {
		return sourceAddr, framePort
	}

	if framePort != 0 {
		return host, framePort
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return host, 0
	}

	return host, uint16(port)
}
