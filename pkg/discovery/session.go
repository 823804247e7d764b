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

// Package discovery is the top-level discovery session: it binds the
// listening transports, runs periodic self-announcement broadcasts and
// wires the codec, registry, notifier, liveness scheduler and ownership
// controller together behind one public API.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/juergengeck/uvc-sub003/pkg/codec"
	"github.com/juergengeck/uvc-sub003/pkg/liveness"
	"github.com/juergengeck/uvc-sub003/pkg/logger"
	"github.com/juergengeck/uvc-sub003/pkg/models"
	"github.com/juergengeck/uvc-sub003/pkg/notifier"
	"github.com/juergengeck/uvc-sub003/pkg/ownership"
	"github.com/juergengeck/uvc-sub003/pkg/registry"
)

// SessionState is the orchestrator lifecycle state.
type SessionState int32

const (
	StateStopped SessionState = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s SessionState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "stopped"
	}
}

const readBufferSize = 2048

// Deps are the external collaborators of a discovery session.
type Deps struct {
	// CredentialFactory builds the credential collaborator around the
	// session's datagram sender. Required.
	CredentialFactory func(ownership.DatagramSender) ownership.CredentialService

	// Store persists owned device records. Required; failures at
	// runtime are logged and non-fatal.
	Store ownership.Store

	// BLE is the platform BTLE stack. Nil when the radio is absent;
	// discovery then degrades to the datagram transport.
	BLE BLETransport

	// Handshake receives non-discovery datagrams. Nil selects the
	// default ownership handshake router.
	Handshake HandshakeHandler

	Logger logger.Logger
}

// Session is the discovery session orchestrator and the public API
// surface consumed by the rest of the application.
type Session struct {
	config   *models.DiscoveryConfig
	identity models.LocalIdentity

	registry   *registry.DeviceRegistry
	notifier   *notifier.Notifier
	scheduler  *liveness.Scheduler
	controller *ownership.Controller
	handshake  HandshakeHandler
	ble        BLETransport

	mu               sync.Mutex
	state            SessionState
	forciblyDisabled bool
	conn             *net.UDPConn
	done             chan struct{}
	bleActive        bool

	wg     sync.WaitGroup
	logger logger.Logger
}

// NewSession assembles a discovery session from config and
// collaborators. The session starts in StateStopped.
func NewSession(config *models.DiscoveryConfig, identity models.LocalIdentity, deps Deps) (*Session, error) {
	if config == nil {
		return nil, ErrNilConfig
	}

	if deps.CredentialFactory == nil {
		return nil, ErrNilCredentials
	}

	if deps.Store == nil {
		return nil, ErrNilStore
	}

	if deps.Logger == nil {
		return nil, ErrNilLogger
	}

	config.ApplyDefaults()

	s := &Session{
		config:   config,
		identity: identity,
		ble:      deps.BLE,
		logger:   deps.Logger.WithComponent("discovery"),
	}

	s.registry = registry.NewDeviceRegistry(deps.Logger)
	s.notifier = notifier.NewNotifier(config.DebounceWindow.Std(), deps.Logger)
	s.scheduler = liveness.NewScheduler(
		s.registry,
		s.notifier,
		s,
		config.InactivityThreshold.Std(),
		config.SweepInterval.Std(),
		config.DeviceTimeout.Std(),
		deps.Logger,
	)
	s.controller = ownership.NewController(
		s.registry,
		s.notifier,
		deps.CredentialFactory(s),
		deps.Store,
		s.scheduler,
		identity,
		config.ClaimTimeout.Std(),
		deps.Logger,
	)

	if deps.Handshake != nil {
		s.handshake = deps.Handshake
	} else {
		s.handshake = newOwnershipHandshake(s.controller, s.scheduler.RecordActivity, deps.Logger)
	}

	return s, nil
}

// Start binds the listening transports and begins broadcasting and
// sweeping. Idempotent while running. While forcibly disabled it is a
// silent no-op: background reactivation against the user's privacy
// settings would be worse than doing nothing.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.forciblyDisabled {
		s.mu.Unlock()
		s.logger.Info().Msg("Discovery disabled by settings, ignoring start")

		return nil
	}

	if s.state == StateRunning || s.state == StateStarting {
		s.mu.Unlock()
		return nil
	}

	s.state = StateStarting

	addr, err := net.ResolveUDPAddr("udp4", s.config.ListenAddr)
	if err != nil {
		s.state = StateStopped
		s.mu.Unlock()

		return err
	}

	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		s.state = StateStopped
		s.mu.Unlock()

		return err
	}

	if err := enableBroadcast(conn); err != nil {
		s.logger.Warn().Err(err).Msg("Could not enable broadcast on discovery socket")
	}

	s.conn = conn
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.controller.RestoreOwned(ctx)
	s.scheduler.Start()

	s.wg.Add(2)
	go s.readLoop(conn)
	go s.broadcastLoop(s.done)

	s.startBLE()

	s.mu.Lock()
	if s.state != StateStarting {
		// A concurrent Stop tore the session down while the loops were
		// being armed. Unwind what was started after its teardown pass.
		s.mu.Unlock()
		s.stopBLE()
		s.scheduler.Stop()

		return nil
	}

	s.state = StateRunning
	s.mu.Unlock()

	s.logger.Info().
		Str("listen_addr", s.config.ListenAddr).
		Str("device_id", s.identity.DeviceID).
		Msg("Discovery session started")

	return nil
}

// Stop cancels every timer, unbinds the transports and resolves
// in-flight claims with a cancellation error. Idempotent when stopped.
func (s *Session) Stop() error {
	s.mu.Lock()

	if s.state != StateRunning && s.state != StateStarting {
		s.mu.Unlock()
		return nil
	}

	s.state = StateStopping
	conn := s.conn
	done := s.done
	s.conn = nil
	s.mu.Unlock()

	close(done)

	if conn != nil {
		_ = conn.Close()
	}

	s.stopBLE()
	s.scheduler.Stop()
	s.controller.CancelAll()
	s.wg.Wait()

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()

	s.logger.Info().Msg("Discovery session stopped")

	return nil
}

// Close stops the session and tears down the update stream. The
// session cannot be restarted afterwards.
func (s *Session) Close() error {
	err := s.Stop()
	s.notifier.Close()

	return err
}

// SetForciblyDisabled drives the privacy kill switch. Disabling a
// running session stops it.
func (s *Session) SetForciblyDisabled(disabled bool) {
	s.mu.Lock()
	s.forciblyDisabled = disabled
	running := s.state == StateRunning || s.state == StateStarting
	s.mu.Unlock()

	if disabled && running {
		_ = s.Stop()
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// ClaimOwnership claims the device for the local identity.
func (s *Session) ClaimOwnership(ctx context.Context, deviceID string) error {
	return s.controller.Claim(ctx, deviceID)
}

// ReleaseOwnership gives up local ownership of the device.
func (s *Session) ReleaseOwnership(ctx context.Context, deviceID string) error {
	return s.controller.Release(ctx, deviceID)
}

// ListDevices returns all known devices.
func (s *Session) ListDevices() []*models.DeviceRecord {
	return s.registry.List()
}

// GetDevice returns one device, or nil if unknown.
func (s *Session) GetDevice(deviceID string) *models.DeviceRecord {
	return s.registry.Get(deviceID)
}

// Subscribe returns a stream of debounced device updates and a cancel
// function.
func (s *Session) Subscribe() (<-chan *models.DeviceUpdate, func()) {
	return s.notifier.Subscribe()
}

// Send implements ownership.DatagramSender over the session's UDP
// socket.
func (s *Session) Send(payload []byte, address string) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return ErrSessionStopped
	}

	addr, err := net.ResolveUDPAddr("udp4", address)
	if err != nil {
		return err
	}

	_, err = conn.WriteToUDP(payload, addr)

	return err
}

// Probe implements liveness.Prober with a lightweight ping frame.
func (s *Session) Probe(deviceID, address string) error {
	payload, err := json.Marshal(map[string]string{"device_id": deviceID})
	if err != nil {
		return err
	}

	return s.Send(codec.EncodeFrame(codec.FrameTypePing, payload), address)
}

func (s *Session) readLoop(conn *net.UDPConn) {
	defer s.wg.Done()

	buf := make([]byte, readBufferSize)

	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			// Closed socket means the session is stopping.
			return
		}

		datagram := make([]byte, n)
		copy(datagram, buf[:n])

		s.handleDatagram(datagram, addr.String())
	}
}

// handleDatagram is the single inbound path for the datagram transport.
// A malformed packet is logged and dropped; it must never stop
// discovery for all devices.
func (s *Session) handleDatagram(buf []byte, sourceAddr string) {
	frame, err := codec.DecodeDatagram(buf)

	switch {
	case err == nil:
		if frame.DeviceID == s.identity.DeviceID {
			// Our own broadcast reflected back.
			return
		}

		s.observe(frame, models.TransportWiFi, sourceAddr)
	case errors.Is(err, codec.ErrNotDiscovery):
		s.handshake.HandleDatagram(buf, sourceAddr)
	default:
		s.logger.Debug().Err(err).Str("source", sourceAddr).Msg("Dropping malformed datagram")
	}
}

// onAdvertisement is the single inbound path for the BTLE transport.
func (s *Session) onAdvertisement(adv models.Advertisement) {
	frame, err := codec.DecodeAdvertisement(adv)
	if err != nil {
		s.logger.Debug().Err(err).Str("address", adv.Address).Msg("Ignoring advertisement")
		return
	}

	if frame.DeviceID == s.identity.DeviceID {
		return
	}

	s.observe(frame, models.TransportBLE, "")
}

func (s *Session) observe(frame *models.DiscoveryFrame, transport models.Transport, sourceAddr string) {
	update := s.registry.Observe(frame, transport, sourceAddr)
	s.notifier.Notify(update)
	s.scheduler.RecordActivity(frame.DeviceID)
}

func (s *Session) broadcastLoop(done <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.BroadcastInterval.Std())
	defer ticker.Stop()

	s.broadcast()

	for {
		select {
		case <-ticker.C:
			s.broadcast()
		case <-done:
			return
		}
	}
}

func (s *Session) broadcast() {
	if err := s.Send(codec.EncodeBroadcast(s.identity), s.config.BroadcastAddr); err != nil {
		s.logger.Warn().Err(err).Msg("Broadcast failed")
	}
}

func (s *Session) startBLE() {
	if s.ble == nil {
		s.logger.Info().Err(ErrTransportUnavailable).Msg("BTLE stack absent, datagram transport only")
		return
	}

	if err := s.ble.StartScan(s.onAdvertisement); err != nil {
		s.logger.Warn().Err(err).Msg("BTLE scan unavailable")
		return
	}

	if err := s.ble.StartAdvertising(codec.EncodeAdvertisement(s.identity)); err != nil {
		s.logger.Warn().Err(err).Msg("BTLE advertising unavailable")
	}

	s.mu.Lock()
	s.bleActive = true
	s.mu.Unlock()
}

// stopBLE unwinds scanning and advertising and marks the BLE transport
// inactive on every record it had active, so reachability reflects the
// stack going away rather than the devices.
func (s *Session) stopBLE() {
	s.mu.Lock()
	active := s.bleActive
	s.bleActive = false
	s.mu.Unlock()

	if s.ble == nil || !active {
		return
	}

	if err := s.ble.StopAdvertising(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to stop BTLE advertising")
	}

	if err := s.ble.StopScan(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to stop BTLE scan")
	}

	for _, record := range s.registry.List() {
		if record.BLEStatus != models.TransportActive {
			continue
		}

		if update := s.registry.MarkTransportInactive(record.DeviceID, models.TransportBLE); update != nil {
			s.notifier.Notify(update)
		}
	}
}
