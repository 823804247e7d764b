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

// Package codec parses and builds discovery frames from the two wire
// formats: a length-prefixed, versioned datagram envelope and wireless
// advertisement records. Decoding is total: malformed input yields a
// typed error, never a panic or an out-of-bounds read.
package codec

import (
	"encoding/binary"
	"encoding/json"
	"unicode/utf8"

	"github.com/juergengeck/uvc-sub003/pkg/models"
)

const (
	// longHeaderBit distinguishes the versioned long header from short
	// headers, which belong to the handshake layer.
	longHeaderBit = 0x80

	// FrameTypeDiscovery is the only frame type this codec decodes.
	// Credential and release frames share the envelope but their
	// payloads belong to the handshake layer.
	FrameTypeDiscovery  = 0x01
	FrameTypeCredential = 0x02
	FrameTypeRelease    = 0x03
	FrameTypeAck        = 0x04
	FrameTypePing       = 0x05

	// ProtocolVersion is the version stamped on outgoing broadcasts.
	ProtocolVersion uint32 = 1

	// maxConnIDLen bounds the variable-length connection-id fields.
	maxConnIDLen = 20
)

// DecodeDatagram parses a discovery datagram envelope. It returns
// ErrNotDiscovery for short headers and for long headers whose frame is
// not a discovery frame, so the caller can hand the untouched buffer to
// the handshake layer. Malformed discovery frames return a *CodecError.
func DecodeDatagram(buf []byte) (*models.DiscoveryFrame, error) {
	frameType, payload, offset, err := SplitFrame(buf)
	if err != nil {
		return nil, err
	}

	if frameType != FrameTypeDiscovery {
		return nil, ErrNotDiscovery
	}

	return decodeDiscoveryPayload(payload, offset)
}

// SplitFrame walks the long-header envelope and returns the frame type
// and payload without interpreting the payload. Short headers yield
// ErrNotDiscovery; they belong to other protocol layers. The returned
// offset is the payload's position in buf, for error attribution.
func SplitFrame(buf []byte) (frameType byte, payload []byte, payloadOffset int, err error) {
	if len(buf) == 0 {
		return 0, nil, 0, truncated("header", 0)
	}

	if buf[0]&longHeaderBit == 0 {
		return 0, nil, 0, ErrNotDiscovery
	}

	offset := 1

	// 4-byte protocol version, big endian.
	if len(buf) < offset+4 {
		return 0, nil, 0, truncated("version", offset)
	}

	offset += 4

	// Destination and source connection IDs, each length-prefixed.
	for _, field := range []string{"dest connection id", "src connection id"} {
		if len(buf) < offset+1 {
			return 0, nil, 0, truncated(field, offset)
		}

		idLen := int(buf[offset])
		offset++

		if idLen > maxConnIDLen {
			return 0, nil, 0, &CodecError{Op: field, Offset: offset, Err: ErrMalformedPayload}
		}

		if len(buf) < offset+idLen {
			return 0, nil, 0, truncated(field, offset)
		}

		offset += idLen
	}

	// 1-byte packet number.
	if len(buf) < offset+1 {
		return 0, nil, 0, truncated("packet number", offset)
	}

	offset++

	// Frame header: type:1, length:2 big endian.
	if len(buf) < offset+3 {
		return 0, nil, 0, truncated("frame header", offset)
	}

	frameType = buf[offset]
	frameLen := int(binary.BigEndian.Uint16(buf[offset+1 : offset+3]))
	offset += 3

	if len(buf) < offset+frameLen {
		return 0, nil, 0, truncated("frame payload", offset)
	}

	return frameType, buf[offset : offset+frameLen], offset, nil
}

func decodeDiscoveryPayload(payload []byte, offset int) (*models.DiscoveryFrame, error) {
	if !utf8.Valid(payload) {
		return nil, &CodecError{Op: "frame payload", Offset: offset, Err: ErrMalformedPayload}
	}

	var frame models.DiscoveryFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return nil, malformed("frame payload", offset, err)
	}

	if frame.DeviceID == "" {
		return nil, &CodecError{Op: "frame payload", Offset: offset, Err: ErrMalformedPayload}
	}

	if frame.LEDStatus == "" {
		frame.LEDStatus = models.LEDUnknown
	}

	return &frame, nil
}

// EncodeBroadcast builds the self-announcement datagram for the local
// identity. The result decodes back through DecodeDatagram.
func EncodeBroadcast(identity models.LocalIdentity) []byte {
	payload, err := json.Marshal(models.DiscoveryFrame{
		DeviceID:     identity.DeviceID,
		DeviceType:   identity.DeviceType,
		DisplayName:  identity.DisplayName,
		Capabilities: identity.Capabilities,
		LEDStatus:    models.LEDUnknown,
		Port:         identity.Port,
	})
	if err != nil {
		// models.DiscoveryFrame contains only marshalable fields.
		panic(err)
	}

	return EncodeFrame(FrameTypeDiscovery, payload)
}

// EncodeFrame wraps a payload in the versioned long-header envelope
// with empty connection ids and packet number zero.
func EncodeFrame(frameType byte, payload []byte) []byte {
	buf := make([]byte, 0, 10+len(payload))
	buf = append(buf, longHeaderBit)
	buf = binary.BigEndian.AppendUint32(buf, ProtocolVersion)
	buf = append(buf, 0) // empty dest connection id
	buf = append(buf, 0) // empty src connection id
	buf = append(buf, 0) // packet number
	buf = append(buf, frameType)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(payload)))
	buf = append(buf, payload...)

	return buf
}
