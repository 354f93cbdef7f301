package net

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Frame layout: [2 bytes LE total length including this header][payload].
// The payload's first byte is the opcode.

const (
	frameHeaderSize = 2
	maxPayloadSize  = 65533
)

// ReadFrame reads one length-prefixed frame and returns its payload.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	total := int(binary.LittleEndian.Uint16(header[:]))
	payloadLen := total - frameHeaderSize
	if payloadLen <= 0 || payloadLen > maxPayloadSize {
		return nil, fmt.Errorf("invalid frame length %d", total)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload: %w", err)
	}
	return payload, nil
}

// WriteFrame writes one length-prefixed frame.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 || len(payload) > maxPayloadSize {
		return fmt.Errorf("invalid payload length %d", len(payload))
	}

	buf := make([]byte, frameHeaderSize+len(payload))
	binary.LittleEndian.PutUint16(buf[0:frameHeaderSize], uint16(frameHeaderSize+len(payload)))
	copy(buf[frameHeaderSize:], payload)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
