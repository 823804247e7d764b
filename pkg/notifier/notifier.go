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

// Package notifier coalesces per-device mutations into discrete update
// events. A single physical observation can trigger several internal
// field writes; debouncing collapses them into one event so observers
// never see partially-consistent intermediate states.
package notifier

import (
	"sync"
	"time"

	"github.com/juergengeck/uvc-sub003/pkg/logger"
	"github.com/juergengeck/uvc-sub003/pkg/models"
)

const subscriberBuffer = 64

type pendingUpdate struct {
	update *models.DeviceUpdate
	timer  *time.Timer
}

type subscriber struct {
	id int
	fn func(*models.DeviceUpdate)

	// mu makes send and close mutually exclusive: a subscriber may
	// cancel while a delivery is in flight on the dispatch goroutine.
	mu     sync.Mutex
	ch     chan *models.DeviceUpdate
	closed bool
}

// trySend delivers without blocking. Reports whether the update was
// accepted; a cancelled subscriber accepts silently.
func (s *subscriber) trySend(update *models.DeviceUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return true
	}

	select {
	case s.ch <- update:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Notifier debounces device updates and fans them out to subscribers.
// For a given device, emitted events are ordered by flush time and each
// event carries the most recent value of every field at flush time.
type Notifier struct {
	mu          sync.Mutex
	flushMu     sync.Mutex
	window      time.Duration
	pending     map[string]*pendingUpdate
	subscribers map[int]*subscriber
	nextSubID   int
	events      chan *models.DeviceUpdate
	done        chan struct{}
	closed      bool
	logger      logger.Logger
	wg          sync.WaitGroup
}

// NewNotifier creates a notifier with the given debounce window and
// starts its dispatch loop.
func NewNotifier(window time.Duration, log logger.Logger) *Notifier {
	if window <= 0 {
		window = models.DefaultDebounceWindow
	}

	n := &Notifier{
		window:      window,
		pending:     make(map[string]*pendingUpdate),
		subscribers: make(map[int]*subscriber),
		events:      make(chan *models.DeviceUpdate, 256),
		done:        make(chan struct{}),
		logger:      log.WithComponent("notifier"),
	}

	n.wg.Add(1)
	go n.dispatch()

	return n
}

// Notify queues a partial update. Updates for the same device arriving
// within the debounce window are merged field-wise, last write wins,
// and flushed as a single event when the window elapses.
func (n *Notifier) Notify(update *models.DeviceUpdate) {
	if update == nil || update.DeviceID == "" {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}

	if p, ok := n.pending[update.DeviceID]; ok {
		p.update.Merge(update)
		return
	}

	merged := &models.DeviceUpdate{DeviceID: update.DeviceID}
	merged.Merge(update)

	deviceID := update.DeviceID
	n.pending[deviceID] = &pendingUpdate{
		update: merged,
		timer:  time.AfterFunc(n.window, func() { n.flush(deviceID) }),
	}
}

// flush holds flushMu across removal and enqueue so that consecutive
// flushes for the same device reach the event queue in flush order even
// when their timer goroutines are scheduled adversely.
func (n *Notifier) flush(deviceID string) {
	n.flushMu.Lock()
	defer n.flushMu.Unlock()

	n.mu.Lock()

	p, ok := n.pending[deviceID]
	if ok {
		delete(n.pending, deviceID)
	}

	closed := n.closed
	n.mu.Unlock()

	if !ok || closed {
		return
	}

	select {
	case n.events <- p.update:
	case <-n.done:
	}
}

// dispatch delivers events to subscribers in arrival order. One loop
// for all devices keeps per-device ordering trivially correct.
func (n *Notifier) dispatch() {
	defer n.wg.Done()

	for {
		select {
		case update := <-n.events:
			n.deliver(update)
		case <-n.done:
			// Drain whatever was flushed before Close.
			for {
				select {
				case update := <-n.events:
					n.deliver(update)
				default:
					return
				}
			}
		}
	}
}

func (n *Notifier) deliver(update *models.DeviceUpdate) {
	n.mu.Lock()
	subs := make([]*subscriber, 0, len(n.subscribers))

	for _, s := range n.subscribers {
		subs = append(subs, s)
	}
	n.mu.Unlock()

	for _, s := range subs {
		if s.ch != nil {
			if !s.trySend(update) {
				n.logger.Warn().
					Str("device_id", update.DeviceID).
					Int("subscriber", s.id).
					Msg("Subscriber channel full, dropping update")
			}

			continue
		}

		n.callSubscriber(s, update)
	}
}

// callSubscriber isolates subscriber failures: one faulty observer must
// never break the discovery loop.
func (n *Notifier) callSubscriber(s *subscriber, update *models.DeviceUpdate) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error().
				Int("subscriber", s.id).
				Interface("panic", r).
				Msg("Subscriber panicked")
		}
	}()

	s.fn(update)
}

// Subscribe returns a buffered channel of flushed updates and a cancel
// function. Slow consumers lose updates rather than stalling delivery.
func (n *Notifier) Subscribe() (<-chan *models.DeviceUpdate, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextSubID
	n.nextSubID++

	s := &subscriber{id: id, ch: make(chan *models.DeviceUpdate, subscriberBuffer)}
	n.subscribers[id] = s

	return s.ch, func() { n.unsubscribe(id) }
}

// SubscribeFunc registers a callback subscriber. Panics in the callback
// are recovered and logged.
func (n *Notifier) SubscribeFunc(fn func(*models.DeviceUpdate)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextSubID
	n.nextSubID++

	n.subscribers[id] = &subscriber{id: id, fn: fn}

	return func() { n.unsubscribe(id) }
}

func (n *Notifier) unsubscribe(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if s, ok := n.subscribers[id]; ok {
		delete(n.subscribers, id)

		if s.ch != nil {
			s.close()
		}
	}
}

// Close stops the debounce timers, flushes nothing further and shuts
// down the dispatch loop. Pending updates inside the window are dropped:
// the session is stopping and observers are about to be torn down.
func (n *Notifier) Close() {
	n.mu.Lock()

	if n.closed {
		n.mu.Unlock()
		return
	}

	n.closed = true

	for deviceID, p := range n.pending {
		p.timer.Stop()
		delete(n.pending, deviceID)
	}

	subs := n.subscribers
	n.subscribers = make(map[int]*subscriber)
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()

	for _, s := range subs {
		if s.ch != nil {
			s.close()
		}
	}
}
