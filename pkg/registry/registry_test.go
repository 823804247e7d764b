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

package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juergengeck/uvc-sub003/pkg/logger"
	"github.com/juergengeck/uvc-sub003/pkg/models"
)

func newTestRegistry(t *testing.T) *DeviceRegistry {
	t.Helper()
	return NewDeviceRegistry(logger.NewTestLogger())
}

func espFrame() *models.DiscoveryFrame {
	return &models.DiscoveryFrame{
		DeviceID:     "esp-01",
		DeviceType:   "ESP32",
		Capabilities: []string{"led"},
	}
}

func TestObserveCreatesRecord(t *testing.T) {
	reg := newTestRegistry(t)

	update := reg.Observe(espFrame(), models.TransportWiFi, "10.0.0.5:49497")
	require.NotNil(t, update)
	assert.True(t, update.Created)

	record := reg.Get("esp-01")
	require.NotNil(t, record)
	assert.True(t, record.Online)
	assert.Equal(t, "10.0.0.5", record.Address)
	assert.Equal(t, uint16(49497), record.Port)
	assert.Equal(t, models.TransportActive, record.WiFiStatus)
	assert.Equal(t, models.TransportInactive, record.BLEStatus)
	assert.Equal(t, []string{"led"}, record.Capabilities)

	// Ownership is seeded empty on creation.
	assert.Nil(t, record.OwnerID)
	assert.False(t, record.HasValidCredential)
	assert.False(t, record.IsAuthenticated)
}

func TestObserveMergePreservesOwnership(t *testing.T) {
	reg := newTestRegistry(t)
	reg.Observe(espFrame(), models.TransportWiFi, "10.0.0.5:49497")

	// Ownership is set by the controller path, never by merges.
	owner := "person-1"
	_, found := reg.Apply("esp-01", func(record *models.DeviceRecord) *models.DeviceUpdate {
		record.OwnerID = &owner
		record.HasValidCredential = true
		record.IsAuthenticated = true
		return nil
	})
	require.True(t, found)

	// A second observation of the same device from the other transport.
	update := reg.Observe(espFrame(), models.TransportBLE, "")
	require.NotNil(t, update)
	assert.False(t, update.Created)
	assert.Nil(t, update.Ownership)

	record := reg.Get("esp-01")
	require.NotNil(t, record.OwnerID)
	assert.Equal(t, "person-1", *record.OwnerID)
	assert.True(t, record.HasValidCredential)
	assert.True(t, record.IsAuthenticated)

	// Both transports are active; each merge touched only its own flag.
	assert.Equal(t, models.TransportActive, record.WiFiStatus)
	assert.Equal(t, models.TransportActive, record.BLEStatus)
}

func TestObserveMergesFields(t *testing.T) {
	reg := newTestRegistry(t)
	reg.Observe(espFrame(), models.TransportWiFi, "10.0.0.5:49497")

	update := reg.Observe(&models.DiscoveryFrame{
		DeviceID:     "esp-01",
		DisplayName:  "Kitchen Lamp",
		Capabilities: []string{"sensor"},
		LEDStatus:    models.LEDBlink,
	}, models.TransportWiFi, "10.0.0.6:50000")

	require.NotNil(t, update)
	require.NotNil(t, update.Address)
	assert.Equal(t, "10.0.0.6", *update.Address)

	record := reg.Get("esp-01")
	assert.Equal(t, "Kitchen Lamp", record.DisplayName)
	assert.Equal(t, []string{"led", "sensor"}, record.Capabilities)
	assert.Equal(t, models.LEDBlink, record.LEDStatus)
}

func TestFramePortWinsOverSourcePort(t *testing.T) {
	reg := newTestRegistry(t)

	frame := espFrame()
	frame.Port = 49497

	reg.Observe(frame, models.TransportWiFi, "10.0.0.5:60123")

	record := reg.Get("esp-01")
	assert.Equal(t, "10.0.0.5", record.Address)
	assert.Equal(t, uint16(49497), record.Port)
}

func TestMarkTransportInactive(t *testing.T) {
	reg := newTestRegistry(t)
	reg.Observe(espFrame(), models.TransportWiFi, "10.0.0.5:49497")
	reg.Observe(espFrame(), models.TransportBLE, "")

	update := reg.MarkTransportInactive("esp-01", models.TransportBLE)
	require.NotNil(t, update)

	record := reg.Get("esp-01")
	assert.Equal(t, models.TransportInactive, record.BLEStatus)
	assert.Equal(t, models.TransportActive, record.WiFiStatus)
	assert.True(t, record.Online, "one transport still active")

	update = reg.MarkTransportInactive("esp-01", models.TransportWiFi)
	require.NotNil(t, update)
	require.NotNil(t, update.Online)
	assert.False(t, *update.Online)

	record = reg.Get("esp-01")
	assert.False(t, record.Online)
	assert.False(t, record.Connected)
}

func TestMarkTransportInactiveUnknownDevice(t *testing.T) {
	reg := newTestRegistry(t)
	assert.Nil(t, reg.MarkTransportInactive("ghost", models.TransportWiFi))
}

func TestSweepTimeouts(t *testing.T) {
	reg := newTestRegistry(t)

	base := time.Now()
	reg.now = func() time.Time { return base }
	reg.Observe(espFrame(), models.TransportWiFi, "10.0.0.5:49497")

	// Within the timeout nothing happens.
	updates := reg.SweepTimeouts(base.Add(30*time.Second), time.Minute)
	assert.Empty(t, updates)

	updates = reg.SweepTimeouts(base.Add(61*time.Second), time.Minute)
	require.Len(t, updates, 1)
	require.NotNil(t, updates[0].Online)
	assert.False(t, *updates[0].Online)

	// The record survives the timeout; only its state changed.
	record := reg.Get("esp-01")
	require.NotNil(t, record)
	assert.False(t, record.Online)
	assert.Equal(t, models.TransportInactive, record.WiFiStatus)

	// Sweeping again emits nothing new.
	updates = reg.SweepTimeouts(base.Add(2*time.Minute), time.Minute)
	assert.Empty(t, updates)
}

func TestObserveAfterTimeoutBringsDeviceBack(t *testing.T) {
	reg := newTestRegistry(t)

	base := time.Now()
	reg.now = func() time.Time { return base }
	reg.Observe(espFrame(), models.TransportWiFi, "10.0.0.5:49497")
	reg.SweepTimeouts(base.Add(2*time.Minute), time.Minute)

	reg.now = func() time.Time { return base.Add(3 * time.Minute) }
	update := reg.Observe(espFrame(), models.TransportWiFi, "10.0.0.5:49497")
	require.NotNil(t, update)
	require.NotNil(t, update.Online)
	assert.True(t, *update.Online)

	assert.True(t, reg.Get("esp-01").Online)
}

func TestRestore(t *testing.T) {
	reg := newTestRegistry(t)

	owner := "person-1"
	restored := reg.Restore(&models.DeviceRecord{
		DeviceID:           "esp-01",
		OwnerID:            &owner,
		HasValidCredential: true,
		IsAuthenticated:    true,
		Online:             true,
		WiFiStatus:         models.TransportActive,
	})
	require.True(t, restored)

	record := reg.Get("esp-01")
	require.NotNil(t, record)
	assert.False(t, record.Online, "restored devices start offline")
	assert.Equal(t, models.TransportInactive, record.WiFiStatus)
	require.NotNil(t, record.OwnerID)
	assert.Equal(t, "person-1", *record.OwnerID)

	// A live record is never overwritten by persistence.
	reg.Observe(espFrame(), models.TransportWiFi, "10.0.0.5:49497")
	assert.False(t, reg.Restore(&models.DeviceRecord{DeviceID: "esp-01"}))
}

func TestListOrdering(t *testing.T) {
	reg := newTestRegistry(t)

	for _, id := range []string{"esp-03", "esp-01", "esp-02"} {
		reg.Observe(&models.DiscoveryFrame{DeviceID: id, DeviceType: "ESP32"}, models.TransportWiFi, "10.0.0.5:49497")
	}

	records := reg.List()
	require.Len(t, records, 3)
	assert.Equal(t, "esp-01", records[0].DeviceID)
	assert.Equal(t, "esp-02", records[1].DeviceID)
	assert.Equal(t, "esp-03", records[2].DeviceID)
}

func TestGetReturnsCopy(t *testing.T) {
	reg := newTestRegistry(t)
	reg.Observe(espFrame(), models.TransportWiFi, "10.0.0.5:49497")

	record := reg.Get("esp-01")
	record.DisplayName = "mutated"
	record.Capabilities[0] = "mutated"

	fresh := reg.Get("esp-01")
	assert.Empty(t, fresh.DisplayName)
	assert.Equal(t, []string{"led"}, fresh.Capabilities)
}
