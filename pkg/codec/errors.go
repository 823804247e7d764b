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
	"errors"
	"fmt"
)

var (
	// ErrNotDiscovery marks buffers that are valid wire data but not a
	// discovery frame (short headers, other frame types). Callers
	// forward such buffers to the handshake layer untouched.
	ErrNotDiscovery = errors.New("not a discovery frame")

	ErrTruncated         = errors.New("truncated frame")
	ErrMalformedPayload  = errors.New("malformed discovery payload")
	ErrUnknownDeviceType = errors.New("unknown device type")
)

// CodecError describes where and why a decode failed. It wraps one of
// the sentinel errors above so callers can branch with errors.Is.
type CodecError struct {
	Op     string
	Offset int
	Err    error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("codec: %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

func truncated(op string, offset int) error {
	return &CodecError{Op: op, Offset: offset, Err: ErrTruncated}
}

func malformed(op string, offset int, cause error) error {
	return &CodecError{Op: op, Offset: offset, Err: fmt.Errorf("%w: %w", ErrMalformedPayload, cause)}
}
