// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package websocket

import (
	"github.com/pkg/errors"
)

const (
	finBit     = 0x80
	opcodeText = 0x1

	// MaxPayloadLength is the largest payload that fits the 7-bit length
	// field. Extended lengths are not encoded.
	MaxPayloadLength = 125
)

var (
	ErrPayloadTooLarge = errors.New("payload exceeds 125 bytes")
	ErrLengthMismatch  = errors.New("declared length does not match payload")
)

// EncodeFrame builds a single final, unmasked text frame with a two byte
// header. declaredLength must equal len(payload) and be at most
// MaxPayloadLength.
func EncodeFrame(payload []byte, declaredLength int) ([]byte, error) {
	if declaredLength < 0 || declaredLength > MaxPayloadLength {
		return nil, errors.Wrapf(ErrPayloadTooLarge, "declared length %d", declaredLength)
	}
	if declaredLength != len(payload) {
		return nil, errors.Wrapf(ErrLengthMismatch, "declared %d, payload %d", declaredLength, len(payload))
	}

	frame := make([]byte, 0, 2+len(payload))
	frame = append(frame, finBit|opcodeText, byte(declaredLength))
	frame = append(frame, payload...)

	return frame, nil
}

// TextFrame encodes text as a frame declaring its own length.
func TextFrame(text string) ([]byte, error) {
	return EncodeFrame([]byte(text), len(text))
}
