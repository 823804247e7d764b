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

package codec

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/juergengeck/uvc-sub003/pkg/models"
)

// espressifVendorID is the Bluetooth SIG company identifier carried in
// the manufacturer-data record, little endian on the wire.
const espressifVendorID = 0x02E5

// Device type tags in manufacturer data. Advertisements with a tag
// outside this allow-list never create device records; arbitrary nearby
// peripherals must not enter the registry.
const (
	advTypeESP32   = 0x01
	advTypeESP32C3 = 0x02
	advTypeESP32S3 = 0x03
)

var advDeviceTypes = map[byte]string{
	advTypeESP32:   "ESP32",
	advTypeESP32C3: "ESP32-C3",
	advTypeESP32S3: "ESP32-S3",
}

// Capability bits in the advertisement's capability mask.
var advCapabilities = []struct {
	bit  byte
	name string
}{
	{0x01, "led"},
	{0x02, "sensor"},
	{0x04, "display"},
	{0x08, "button"},
}

// DecodeAdvertisement maps a vendor-specific wireless advertisement into
// a DiscoveryFrame. Layout of manufacturer data: vendor id (2 bytes,
// little endian), device type tag (1), capability mask (1), device id
// (remaining UTF-8 bytes).
func DecodeAdvertisement(adv models.Advertisement) (*models.DiscoveryFrame, error) {
	data := adv.ManufacturerData

	if len(data) < 4 {
		return nil, truncated("manufacturer data", len(data))
	}

	if binary.LittleEndian.Uint16(data[:2]) != espressifVendorID {
		return nil, &CodecError{Op: "vendor id", Offset: 0, Err: ErrUnknownDeviceType}
	}

	deviceType, ok := advDeviceTypes[data[2]]
	if !ok {
		return nil, &CodecError{Op: "device type tag", Offset: 2, Err: ErrUnknownDeviceType}
	}

	deviceID := data[4:]
	if len(deviceID) == 0 || !utf8.Valid(deviceID) {
		return nil, &CodecError{Op: "device id", Offset: 4, Err: ErrMalformedPayload}
	}

	var caps []string

	mask := data[3]
	for _, c := range advCapabilities {
		if mask&c.bit != 0 {
			caps = append(caps, c.name)
		}
	}

	return &models.DiscoveryFrame{
		DeviceID:     string(deviceID),
		DeviceType:   deviceType,
		DisplayName:  adv.LocalName,
		Capabilities: caps,
		LEDStatus:    models.LEDUnknown,
	}, nil
}

// EncodeAdvertisement builds the manufacturer-data record announcing
// the local identity over BTLE. Logical inverse of DecodeAdvertisement
// for the fields the encoder controls.
func EncodeAdvertisement(identity models.LocalIdentity) []byte {
	typeTag := byte(advTypeESP32)

	for tag, name := range advDeviceTypes {
		if name == identity.DeviceType {
			typeTag = tag
			break
		}
	}

	var mask byte

	for _, c := range advCapabilities {
		for _, have := range identity.Capabilities {
			if have == c.name {
				mask |= c.bit
				break
			}
		}
	}

	data := make([]byte, 0, 4+len(identity.DeviceID))
	data = binary.LittleEndian.AppendUint16(data, espressifVendorID)
	data = append(data, typeTag, mask)
	data = append(data, identity.DeviceID...)

	return data
}
