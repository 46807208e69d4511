package npz

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// encodeNpy serializes a single array into the .npy v1.0 binary format:
// an 8-byte magic+version header, a little-endian uint16 header length, a
// padded Python-dict-literal header, then the raw little-endian payload.
func encodeNpy(descr string, shape []int, payload []byte) []byte {
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", descr, shapeTuple(shape))

	// Total prefix (magic+version+headerlen+header) must be a multiple of
	// 64 bytes; pad the header with spaces and a trailing newline.
	const prefixLen = 10 // 6 magic + 2 version + 2 header-length field
	padded := len(header) + 1
	total := prefixLen + padded
	if rem := total % 64; rem != 0 {
		padded += 64 - rem
	}
	header += string(bytes.Repeat([]byte{' '}, padded-len(header)-1)) + "\n"

	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY")
	buf.WriteByte(1) // major version
	buf.WriteByte(0) // minor version
	var hlen [2]byte
	binary.LittleEndian.PutUint16(hlen[:], uint16(len(header)))
	buf.Write(hlen[:])
	buf.WriteString(header)
	buf.Write(payload)
	return buf.Bytes()
}

func shapeTuple(shape []int) string {
	if len(shape) == 1 {
		return fmt.Sprintf("(%d,)", shape[0])
	}
	var b bytes.Buffer
	b.WriteByte('(')
	for i, d := range shape {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", d)
	}
	b.WriteByte(')')
	return b.String()
}

// EncodeU8 serializes a 1-D uint8 array.
func EncodeU8(v []uint8) []byte {
	return encodeNpy("|u1", []int{len(v)}, v)
}

// EncodeI32 serializes a 1-D int32 array.
func EncodeI32(v []int32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(x))
	}
	return encodeNpy("<i4", []int{len(v)}, buf)
}

// EncodeI32Matrix serializes an Nx2 int32 matrix, row-major.
func EncodeI32Matrix(rows [][2]int32) []byte {
	buf := make([]byte, 8*len(rows))
	for i, r := range rows {
		binary.LittleEndian.PutUint32(buf[i*8:], uint32(r[0]))
		binary.LittleEndian.PutUint32(buf[i*8+4:], uint32(r[1]))
	}
	return encodeNpy("<i4", []int{len(rows), 2}, buf)
}
