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

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{name: "string form", input: `"5s"`, want: 5 * time.Second},
		{name: "compound string", input: `"1m30s"`, want: 90 * time.Second},
		{name: "nanosecond number", input: `100000000`, want: 100 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			assert.Equal(t, tt.want, d.Std())
		})
	}
}

func TestDurationUnmarshalInvalid(t *testing.T) {
	var d Duration

	assert.Error(t, json.Unmarshal([]byte(`"not a duration"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestDurationMarshalRoundTrip(t *testing.T) {
	d := Duration(250 * time.Millisecond)

	out, err := json.Marshal(d)
	require.NoError(t, err)

	var back Duration
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, d, back)
}

func TestDiscoveryConfigDefaults(t *testing.T) {
	var cfg DiscoveryConfig

	cfg.ApplyDefaults()

	assert.Equal(t, "0.0.0.0:49497", cfg.ListenAddr)
	assert.Equal(t, "255.255.255.255:49497", cfg.BroadcastAddr)
	assert.Equal(t, 5*time.Second, cfg.BroadcastInterval.Std())
	assert.Equal(t, 100*time.Millisecond, cfg.DebounceWindow.Std())
	assert.Equal(t, 5*time.Second, cfg.ClaimTimeout.Std())
	assert.Equal(t, 30*time.Second, cfg.InactivityThreshold.Std())
	assert.Equal(t, 10*time.Second, cfg.SweepInterval.Std())
	assert.Equal(t, 60*time.Second, cfg.DeviceTimeout.Std())
}

func TestDiscoveryConfigDefaultsKeepExplicitValues(t *testing.T) {
	cfg := DiscoveryConfig{
		ListenAddr:        "10.1.2.3:1234",
		BroadcastInterval: Duration(time.Second),
	}

	cfg.ApplyDefaults()

	assert.Equal(t, "10.1.2.3:1234", cfg.ListenAddr)
	assert.Equal(t, time.Second, cfg.BroadcastInterval.Std())
	assert.Equal(t, "255.255.255.255:49497", cfg.BroadcastAddr)
}

func TestDeviceRecordClone(t *testing.T) {
	owner := "person-1"
	record := &DeviceRecord{
		DeviceID:     "esp-01",
		OwnerID:      &owner,
		Capabilities: []string{"led", "sensor"},
	}

	clone := record.Clone()

	*clone.OwnerID = "person-2"
	clone.Capabilities[0] = "display"

	assert.Equal(t, "person-1", *record.OwnerID)
	assert.Equal(t, []string{"led", "sensor"}, record.Capabilities)
}

func TestDeviceRecordEndpoint(t *testing.T) {
	record := &DeviceRecord{Address: "10.0.0.5", Port: 49497}
	assert.Equal(t, "10.0.0.5:49497", record.Endpoint())

	assert.Empty(t, (&DeviceRecord{}).Endpoint())
}

func TestDeviceRecordOwnedBy(t *testing.T) {
	owner := "person-1"
	record := &DeviceRecord{OwnerID: &owner}

	assert.True(t, record.OwnedBy("person-1"))
	assert.False(t, record.OwnedBy("person-2"))
	assert.False(t, (&DeviceRecord{}).OwnedBy("person-1"))
}

func TestMergeCapabilities(t *testing.T) {
	record := &DeviceRecord{Capabilities: []string{"led"}}

	record.MergeCapabilities([]string{"sensor", "led", "button"})
	assert.Equal(t, []string{"button", "led", "sensor"}, record.Capabilities)

	record.MergeCapabilities(nil)
	assert.Equal(t, []string{"button", "led", "sensor"}, record.Capabilities)
}

func TestDeviceUpdateMerge(t *testing.T) {
	name1 := "first"
	name2 := "second"
	online := true

	update := &DeviceUpdate{DeviceID: "esp-01", Created: true, DisplayName: &name1}
	update.Merge(&DeviceUpdate{DeviceID: "esp-01", DisplayName: &name2, Online: &online})

	// Created survives, later field values win, unset fields stay.
	assert.True(t, update.Created)
	assert.Equal(t, "second", *update.DisplayName)
	require.NotNil(t, update.Online)
	assert.True(t, *update.Online)
	assert.Nil(t, update.Connected)

	update.Merge(nil)
	assert.Equal(t, "second", *update.DisplayName)
}

func TestDeviceUpdateMergeOwnershipAtomic(t *testing.T) {
	owner := "person-1"

	update := &DeviceUpdate{DeviceID: "esp-01", Ownership: &OwnershipState{
		OwnerID:            &owner,
		HasValidCredential: true,
		IsAuthenticated:    true,
	}}

	// A later release replaces the whole triple, never a partial one.
	update.Merge(&DeviceUpdate{DeviceID: "esp-01", Ownership: &OwnershipState{}})

	require.NotNil(t, update.Ownership)
	assert.Nil(t, update.Ownership.OwnerID)
	assert.False(t, update.Ownership.HasValidCredential)
	assert.False(t, update.Ownership.IsAuthenticated)
}
