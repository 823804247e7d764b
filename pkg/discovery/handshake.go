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

package discovery

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/juergengeck/uvc-sub003/pkg/codec"
	"github.com/juergengeck/uvc-sub003/pkg/logger"
	"github.com/juergengeck/uvc-sub003/pkg/ownership"
)

// ackPayload is the device's application-level answer to a transmitted
// credential.
type ackPayload struct {
	DeviceID     string `json:"device_id"`
	AttemptToken string `json:"attempt_token,omitempty"`
	Accepted     bool   `json:"accepted"`
}

// credentialPresentation is a device spontaneously presenting its
// stored credential, e.g. after an app restart.
type credentialPresentation struct {
	DeviceID   string                `json:"device_id"`
	Credential *ownership.Credential `json:"credential"`
}

// ownershipHandshake routes non-discovery frames to the ownership
// controller: claim acknowledgements resolve pending claims, credential
// presentations trigger ownership recovery. Frame types it does not
// understand are dropped; it is the end of the line.
type ownershipHandshake struct {
	controller *ownership.Controller
	activity   func(deviceID string)
	logger     logger.Logger
}

func newOwnershipHandshake(controller *ownership.Controller, activity func(string), log logger.Logger) *ownershipHandshake {
	return &ownershipHandshake{
		controller: controller,
		activity:   activity,
		logger:     log.WithComponent("handshake"),
	}
}

func (h *ownershipHandshake) HandleDatagram(buf []byte, sourceAddr string) {
	frameType, payload, _, err := codec.SplitFrame(buf)
	if err != nil {
		h.logger.Debug().Err(err).Str("source", sourceAddr).Msg("Dropping unparseable datagram")
		return
	}

	switch frameType {
	case codec.FrameTypeAck:
		h.handleAck(payload, sourceAddr)
	case codec.FrameTypeCredential:
		h.handleCredential(payload, sourceAddr)
	default:
		h.logger.Debug().
			Int("frame_type", int(frameType)).
			Str("source", sourceAddr).
			Msg("Dropping unhandled frame type")
	}
}

func (h *ownershipHandshake) handleAck(payload []byte, sourceAddr string) {
	var ack ackPayload
	if err := json.Unmarshal(payload, &ack); err != nil || ack.DeviceID == "" {
		h.logger.Debug().Str("source", sourceAddr).Msg("Dropping malformed acknowledgement")
		return
	}

	h.activity(ack.DeviceID)
	h.controller.HandleAck(ack.DeviceID, ack.AttemptToken, ack.Accepted)
}

func (h *ownershipHandshake) handleCredential(payload []byte, sourceAddr string) {
	var pres credentialPresentation
	if err := json.Unmarshal(payload, &pres); err != nil || pres.DeviceID == "" || pres.Credential == nil {
		h.logger.Debug().Str("source", sourceAddr).Msg("Dropping malformed credential presentation")
		return
	}

	h.activity(pres.DeviceID)

	err := h.controller.OnCredentialObserved(context.Background(), pres.DeviceID, pres.Credential)
	if err != nil && !errors.Is(err, ownership.ErrIssuerMismatch) {
		h.logger.Debug().Err(err).Str("device_id", pres.DeviceID).Msg("Credential observation not applied")
	}
}
