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

//go:generate mockgen -destination=mock_discovery.go -package=discovery github.com/juergengeck/uvc-sub003/pkg/discovery BLETransport,HandshakeHandler

package discovery

import (
	"github.com/juergengeck/uvc-sub003/pkg/models"
)

// BLETransport is the platform BTLE collaborator. A nil transport means
// the radio stack is absent; discovery degrades to the datagram
// transport.
type BLETransport interface {
	// StartScan begins delivering advertisement callbacks until
	// StopScan. Callbacks may arrive on arbitrary goroutines.
	StartScan(onAdvertisement func(models.Advertisement)) error
	StopScan() error

	// StartAdvertising announces the local identity with the given
	// manufacturer data until StopAdvertising.
	StartAdvertising(manufacturerData []byte) error
	StopAdvertising() error
}

// HandshakeHandler receives every inbound datagram that is not a
// discovery frame, untouched. The default handler routes claim
// acknowledgements and spontaneous credential presentations to the
// ownership controller.
type HandshakeHandler interface {
	HandleDatagram(buf []byte, sourceAddr string)
}
