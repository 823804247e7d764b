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
	"errors"
	"fmt"
	"time"
)

var errInvalidDuration = errors.New("invalid duration: must be a string like \"5s\" or nanoseconds")

// Duration wraps time.Duration so JSON configs can use either a duration
// string ("5s", "1h30m") or raw nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DiscoveryConfig configures the discovery session, the liveness
// scheduler and the ownership controller.
type DiscoveryConfig struct {
	// ListenAddr is the UDP bind address for inbound discovery
	// datagrams, e.g. "0.0.0.0:49497".
	ListenAddr string `json:"listen_addr"`

	// BroadcastAddr is the destination for periodic self-announcements,
	// e.g. "255.255.255.255:49497".
	BroadcastAddr string `json:"broadcast_addr"`

	BroadcastInterval   Duration `json:"broadcast_interval"`
	DebounceWindow      Duration `json:"debounce_window"`
	ClaimTimeout        Duration `json:"claim_timeout"`
	InactivityThreshold Duration `json:"inactivity_threshold"`
	SweepInterval       Duration `json:"sweep_interval"`
	DeviceTimeout       Duration `json:"device_timeout"`
}

const (
	DefaultDiscoveryPort       = 49497
	DefaultBroadcastInterval   = 5 * time.Second
	DefaultDebounceWindow      = 100 * time.Millisecond
	DefaultClaimTimeout        = 5 * time.Second
	DefaultInactivityThreshold = 30 * time.Second
	DefaultSweepInterval       = 10 * time.Second
	DefaultDeviceTimeout       = 60 * time.Second
)

// ApplyDefaults fills zero-valued fields with the protocol defaults.
func (c *DiscoveryConfig) ApplyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf("0.0.0.0:%d", DefaultDiscoveryPort)
	}

	if c.BroadcastAddr == "" {
		c.BroadcastAddr = fmt.Sprintf("255.255.255.255:%d", DefaultDiscoveryPort)
	}

	if c.BroadcastInterval == 0 {
		c.BroadcastInterval = Duration(DefaultBroadcastInterval)
	}

	if c.DebounceWindow == 0 {
		c.DebounceWindow = Duration(DefaultDebounceWindow)
	}

	if c.ClaimTimeout == 0 {
		c.ClaimTimeout = Duration(DefaultClaimTimeout)
	}

	if c.InactivityThreshold == 0 {
		c.InactivityThreshold = Duration(DefaultInactivityThreshold)
	}

	if c.SweepInterval == 0 {
		c.SweepInterval = Duration(DefaultSweepInterval)
	}

	if c.DeviceTimeout == 0 {
		c.DeviceTimeout = Duration(DefaultDeviceTimeout)
	}
}
