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

package liveness

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juergengeck/uvc-sub003/pkg/logger"
	"github.com/juergengeck/uvc-sub003/pkg/models"
	"github.com/juergengeck/uvc-sub003/pkg/notifier"
	"github.com/juergengeck/uvc-sub003/pkg/registry"
)

const (
	testInactivity = 40 * time.Millisecond
	testSweep      = time.Hour
	testTimeout    = time.Hour
)

type recordingProber struct {
	mu     sync.Mutex
	probes []string
}

func (p *recordingProber) Probe(deviceID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.probes = append(p.probes, deviceID)

	return nil
}

func (p *recordingProber) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.probes)
}

func (p *recordingProber) first() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.probes) == 0 {
		return ""
	}

	return p.probes[0]
}

type schedulerFixture struct {
	scheduler *Scheduler
	registry  *registry.DeviceRegistry
	notifier  *notifier.Notifier
	prober    *recordingProber
}

func newSchedulerFixture(t *testing.T, inactivity, sweep, timeout time.Duration) *schedulerFixture {
	t.Helper()

	log := logger.NewTestLogger()

	f := &schedulerFixture{
		registry: registry.NewDeviceRegistry(log),
		notifier: notifier.NewNotifier(5*time.Millisecond, log),
		prober:   &recordingProber{},
	}
	f.scheduler = NewScheduler(f.registry, f.notifier, f.prober, inactivity, sweep, timeout, log)

	t.Cleanup(func() {
		f.scheduler.Stop()
		f.notifier.Close()
	})

	return f
}

func (f *schedulerFixture) observe(deviceID string) {
	f.registry.Observe(&models.DiscoveryFrame{
		DeviceID:   deviceID,
		DeviceType: "ESP32",
	}, models.TransportWiFi, "10.0.0.5:49497")
}

func TestProbeAfterInactivity(t *testing.T) {
	f := newSchedulerFixture(t, testInactivity, testSweep, testTimeout)
	f.observe("esp-01")

	f.scheduler.Start()
	f.scheduler.Track("esp-01")

	// One silent threshold elapses, exactly one probe goes out.
	require.Eventually(t, func() bool {
		return f.prober.count() == 1
	}, time.Second, time.Millisecond)

	assert.Equal(t, "esp-01", f.prober.first())
}

func TestNoProbeWhileActive(t *testing.T) {
	f := newSchedulerFixture(t, testInactivity, testSweep, testTimeout)
	f.observe("esp-01")

	f.scheduler.Start()
	f.scheduler.Track("esp-01")

	// Keep feeding activity faster than the inactivity threshold.
	deadline := time.Now().Add(3 * testInactivity)
	for time.Now().Before(deadline) {
		f.scheduler.RecordActivity("esp-01")
		time.Sleep(testInactivity / 4)
	}

	assert.Zero(t, f.prober.count())
}

func TestUntrackStopsProbing(t *testing.T) {
	f := newSchedulerFixture(t, testInactivity, testSweep, testTimeout)
	f.observe("esp-01")

	f.scheduler.Start()
	f.scheduler.Track("esp-01")
	require.True(t, f.scheduler.Tracked("esp-01"))

	f.scheduler.Untrack("esp-01")
	assert.False(t, f.scheduler.Tracked("esp-01"))

	time.Sleep(3 * testInactivity)
	assert.Zero(t, f.prober.count())
}

func TestTrackRequiresRunningScheduler(t *testing.T) {
	f := newSchedulerFixture(t, testInactivity, testSweep, testTimeout)
	f.observe("esp-01")

	f.scheduler.Track("esp-01")
	assert.False(t, f.scheduler.Tracked("esp-01"))
}

func TestStopCancelsSchedules(t *testing.T) {
	f := newSchedulerFixture(t, testInactivity, testSweep, testTimeout)
	f.observe("esp-01")

	f.scheduler.Start()
	f.scheduler.Track("esp-01")
	f.scheduler.Stop()

	assert.False(t, f.scheduler.Tracked("esp-01"))

	time.Sleep(3 * testInactivity)
	assert.Zero(t, f.prober.count())
}

func TestSchedulerRestart(t *testing.T) {
	f := newSchedulerFixture(t, testInactivity, testSweep, testTimeout)
	f.observe("esp-01")

	f.scheduler.Start()
	f.scheduler.Stop()

	f.scheduler.Start()
	f.scheduler.Track("esp-01")

	require.Eventually(t, func() bool {
		return f.prober.count() == 1
	}, time.Second, time.Millisecond)
}

func TestSweepMarksTimedOutDevicesOffline(t *testing.T) {
	f := newSchedulerFixture(t, testInactivity, testSweep, 50*time.Millisecond)
	f.observe("esp-01")

	var (
		mu      sync.Mutex
		offline []*models.DeviceUpdate
	)

	cancel := f.notifier.SubscribeFunc(func(update *models.DeviceUpdate) {
		mu.Lock()
		defer mu.Unlock()

		if update.Online != nil && !*update.Online {
			offline = append(offline, update)
		}
	})
	defer cancel()

	time.Sleep(60 * time.Millisecond)
	f.scheduler.Sweep()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(offline) == 1
	}, time.Second, time.Millisecond)

	record := f.registry.Get("esp-01")
	require.NotNil(t, record)
	assert.False(t, record.Online)
}
