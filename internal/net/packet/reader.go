package packet

import "math"

// Reader walks the payload of a decoded frame. All multi-byte fields are
// little-endian. Reads past the end return zero values instead of panicking
// so a short packet degrades to zeroed fields.
type Reader struct {
	data []byte
	off  int
}

// NewReader wraps a frame payload. The offset starts past the opcode byte.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, off: 1}
}

// Opcode returns the first byte of the frame.
func (r *Reader) Opcode() byte {
	if len(r.data) == 0 {
		return 0
	}
	return r.data[0]
}

// Remaining reports how many unread bytes are left.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// ReadC reads one unsigned byte.
func (r *Reader) ReadC() byte {
	if r.off+1 > len(r.data) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

// ReadH reads an unsigned 16-bit integer.
func (r *Reader) ReadH() uint16 {
	if r.off+2 > len(r.data) {
		return 0
	}
	v := uint16(r.data[r.off]) | uint16(r.data[r.off+1])<<8
	r.off += 2
	return v
}

// ReadD reads an unsigned 32-bit integer.
func (r *Reader) ReadD() uint32 {
	if r.off+4 > len(r.data) {
		return 0
	}
	v := uint32(r.data[r.off]) | uint32(r.data[r.off+1])<<8 |
		uint32(r.data[r.off+2])<<16 | uint32(r.data[r.off+3])<<24
	r.off += 4
	return v
}

// ReadF reads a float64 stored as its IEEE 754 bit pattern.
func (r *Reader) ReadF() float64 {
	if r.off+8 > len(r.data) {
		return 0
	}
	var bits uint64
	for i := 0; i < 8; i++ {
		bits |= uint64(r.data[r.off+i]) << (8 * i)
	}
	r.off += 8
	return math.Float64frombits(bits)
}

// ReadS reads a null-terminated UTF-8 string. A missing terminator consumes
// the rest of the payload.
func (r *Reader) ReadS() string {
	if r.off >= len(r.data) {
		return ""
	}
	start := r.off
	for r.off < len(r.data) && r.data[r.off] != 0 {
		r.off++
	}
	s := string(r.data[start:r.off])
	if r.off < len(r.data) {
		r.off++ // skip terminator
	}
	return s
}
