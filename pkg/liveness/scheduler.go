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

// Package liveness tracks last-seen activity per owned device,
// schedules heartbeat probes to fill silent gaps and sweeps the
// registry for timed-out devices.
//
// Probes are sent only after a period of inactivity, never as an
// acknowledgement of inbound frames. Devices emit periodic status
// frames on their own; acknowledging each one was found to create a
// positive-feedback packet storm.
package liveness

import (
	"sync"
	"time"

	"github.com/juergengeck/uvc-sub003/pkg/logger"
	"github.com/juergengeck/uvc-sub003/pkg/models"
	"github.com/juergengeck/uvc-sub003/pkg/notifier"
	"github.com/juergengeck/uvc-sub003/pkg/registry"
)

// Prober sends a lightweight liveness probe to a device. Implemented by
// the discovery session, which owns the datagram socket.
type Prober interface {
	Probe(deviceID, address string) error
}

type schedule struct {
	lastActivity time.Time
	scheduledAt  time.Time
	timer        *time.Timer
}

// Scheduler owns one heartbeat schedule per owned device plus the
// ownership-independent availability sweep.
type Scheduler struct {
	registry *registry.DeviceRegistry
	notifier *notifier.Notifier
	prober   Prober

	inactivityThreshold time.Duration
	sweepInterval       time.Duration
	deviceTimeout       time.Duration

	mu        sync.Mutex
	schedules map[string]*schedule
	running   bool
	done      chan struct{}

	wg     sync.WaitGroup
	logger logger.Logger
	now    func() time.Time
}

// NewScheduler creates a stopped scheduler. Zero durations fall back to
// the protocol defaults.
func NewScheduler(
	reg *registry.DeviceRegistry,
	not *notifier.Notifier,
	prober Prober,
	inactivityThreshold, sweepInterval, deviceTimeout time.Duration,
	log logger.Logger,
) *Scheduler {
	if inactivityThreshold <= 0 {
		inactivityThreshold = models.DefaultInactivityThreshold
	}

	if sweepInterval <= 0 {
		sweepInterval = models.DefaultSweepInterval
	}

	if deviceTimeout <= 0 {
		deviceTimeout = models.DefaultDeviceTimeout
	}

	return &Scheduler{
		registry:            reg,
		notifier:            not,
		prober:              prober,
		inactivityThreshold: inactivityThreshold,
		sweepInterval:       sweepInterval,
		deviceTimeout:       deviceTimeout,
		schedules:           make(map[string]*schedule),
		logger:              log.WithComponent("liveness"),
		now:                 time.Now,
	}
}

// Start launches the availability sweep loop. Idempotent while running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.running = true
	s.done = make(chan struct{})

	s.wg.Add(1)
	go s.sweepLoop(s.done)
}

// Stop cancels the sweep loop and every per-device heartbeat timer. The
// scheduler can be restarted with Start afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		return
	}

	s.running = false

	for deviceID, sched := range s.schedules {
		sched.timer.Stop()
		delete(s.schedules, deviceID)
	}

	done := s.done
	s.mu.Unlock()

	close(done)
	s.wg.Wait()
}

// Track creates the heartbeat schedule for a newly owned device.
func (s *Scheduler) Track(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	if _, exists := s.schedules[deviceID]; exists {
		return
	}

	now := s.now()
	s.schedules[deviceID] = &schedule{
		lastActivity: now,
		scheduledAt:  now,
		timer:        s.scheduleProbe(deviceID),
	}

	s.logger.Debug().Str("device_id", deviceID).Msg("Heartbeat schedule started")
}

// Untrack destroys the heartbeat schedule, typically on release.
func (s *Scheduler) Untrack(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sched, ok := s.schedules[deviceID]; ok {
		sched.timer.Stop()
		delete(s.schedules, deviceID)

		s.logger.Debug().Str("device_id", deviceID).Msg("Heartbeat schedule cancelled")
	}
}

// Tracked reports whether a heartbeat schedule exists for the device.
func (s *Scheduler) Tracked(deviceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.schedules[deviceID]

	return ok
}

// RecordActivity notes inbound traffic from a device. For tracked
// devices the pending probe timer is cancelled and rescheduled one
// inactivity threshold out.
func (s *Scheduler) RecordActivity(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[deviceID]
	if !ok || !s.running {
		return
	}

	now := s.now()
	sched.lastActivity = now
	sched.scheduledAt = now
	sched.timer.Stop()
	sched.timer = s.scheduleProbe(deviceID)
}

func (s *Scheduler) scheduleProbe(deviceID string) *time.Timer {
	return time.AfterFunc(s.inactivityThreshold, func() { s.onProbeTimer(deviceID) })
}

// onProbeTimer fires after one inactivity threshold of silence. If
// activity arrived in the meantime the fire is a no-op: RecordActivity
// already armed a fresh timer.
func (s *Scheduler) onProbeTimer(deviceID string) {
	s.mu.Lock()

	sched, ok := s.schedules[deviceID]
	if !ok || !s.running {
		s.mu.Unlock()
		return
	}

	scheduledAt := sched.scheduledAt
	if sched.lastActivity.After(scheduledAt) {
		s.mu.Unlock()
		return
	}

	sched.scheduledAt = s.now()
	sched.timer = s.scheduleProbe(deviceID)
	s.mu.Unlock()

	record := s.registry.Get(deviceID)
	if record == nil || record.Address == "" {
		return
	}

	if err := s.prober.Probe(deviceID, record.Endpoint()); err != nil {
		s.logger.Warn().Err(err).Str("device_id", deviceID).Msg("Heartbeat probe failed")
		return
	}

	s.logger.Debug().
		Str("device_id", deviceID).
		Str("address", record.Endpoint()).
		Msg("Heartbeat probe sent")
}

func (s *Scheduler) sweepLoop(done <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-done:
			return
		}
	}
}

// Sweep marks devices offline when nothing has been seen from them for
// the device timeout, regardless of ownership.
func (s *Scheduler) Sweep() {
	updates := s.registry.SweepTimeouts(s.now(), s.deviceTimeout)

	for _, update := range updates {
		s.notifier.Notify(update)
	}
}
