package common

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadTag reads a four byte chunk identifier
func ReadTag(reader io.Reader) ([4]byte, error) {
	var tag [4]byte
	_, err := io.ReadFull(reader, tag[:])
	return tag, err
}

// ReadUint32LE reads a uint32 in little-endian format
func ReadUint32LE(reader io.Reader) (uint32, error) {
	var value uint32
	err := binary.Read(reader, binary.LittleEndian, &value)
	return value, err
}

// ReadBytes reads a specified number of bytes
func ReadBytes(reader io.Reader, count int) ([]byte, error) {
	buffer := make([]byte, count)
	n, err := io.ReadFull(reader, buffer)
	if err != nil {
		return nil, err
	}
	if n != count {
		return nil, fmt.Errorf("expected to read %d bytes, got %d", count, n)
	}
	return buffer, nil
}

// AlignTo rounds value up to the next multiple of alignment.
// Alignment must be a power of two.
func AlignTo(value, alignment int) int {
	return (value + alignment - 1) &^ (alignment - 1)
}

// PrintableTag renders a chunk identifier for messages, replacing
// non-printable bytes with '.'.
func PrintableTag(tag [4]byte) string {
	out := make([]byte, 4)
	for i, b := range tag {
		if b >= 0x20 && b < 0x7F {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}
