package packet

import "math"

// Writer builds an outbound frame payload, opcode first.
type Writer struct {
	buf []byte
}

// NewWriter starts a frame with the given opcode.
func NewWriter(opcode byte) *Writer {
	w := &Writer{buf: make([]byte, 0, 64)}
	w.buf = append(w.buf, opcode)
	return w
}

// WriteC appends one unsigned byte.
func (w *Writer) WriteC(v byte) {
	w.buf = append(w.buf, v)
}

// WriteH appends an unsigned 16-bit integer, little-endian.
func (w *Writer) WriteH(v uint16) {
	w.buf = append(w.buf, byte(v), byte(v>>8))
}

// WriteD appends an unsigned 32-bit integer, little-endian.
func (w *Writer) WriteD(v uint32) {
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// WriteF appends a float64 as its IEEE 754 bit pattern, little-endian.
func (w *Writer) WriteF(v float64) {
	bits := math.Float64bits(v)
	for i := 0; i < 8; i++ {
		w.buf = append(w.buf, byte(bits>>(8*i)))
	}
}

// WriteS appends a null-terminated UTF-8 string.
func (w *Writer) WriteS(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// Bytes returns the assembled payload including the opcode byte.
func (w *Writer) Bytes() []byte {
	return w.buf
}
