package bnk

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
)

type testChunk struct {
	tag     string
	payload []byte
}

type testAsset struct {
	id   uint32
	data []byte
}

// encodeChunks serializes chunks in order
func encodeChunks(chunks ...testChunk) []byte {
	var buf bytes.Buffer
	for _, c := range chunks {
		buf.WriteString(c.tag)
		binary.Write(&buf, binary.LittleEndian, uint32(len(c.payload)))
		buf.Write(c.payload)
	}
	return buf.Bytes()
}

func headerChunk(version, bankID uint32, tail []byte) testChunk {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, version)
	binary.Write(&buf, binary.LittleEndian, bankID)
	buf.Write(tail)
	return testChunk{"BKHD", buf.Bytes()}
}

// mediaChunks lays assets out the way banks store them: each payload padded
// to 16 bytes except the last
func mediaChunks(assets ...testAsset) (testChunk, testChunk) {
	var index, data bytes.Buffer
	for i, a := range assets {
		binary.Write(&index, binary.LittleEndian, a.id)
		binary.Write(&index, binary.LittleEndian, uint32(data.Len()))
		binary.Write(&index, binary.LittleEndian, uint32(len(a.data)))
		data.Write(a.data)
		if i < len(assets)-1 {
			data.Write(make([]byte, Pad16(len(a.data))-len(a.data)))
		}
	}
	return testChunk{"DIDX", index.Bytes()}, testChunk{"DATA", data.Bytes()}
}

func fill(n int, b byte) []byte {
	return bytes.Repeat([]byte{b}, n)
}

// sampleBank is a bank with three assets surrounded by opaque chunks
func sampleBank() []byte {
	didx, data := mediaChunks(
		testAsset{100, fill(10, 0xA1)},
		testAsset{200, fill(32, 0xB2)},
		testAsset{300, fill(7, 0xC3)},
	)
	return encodeChunks(
		headerChunk(134, 0xCAFE, []byte{1, 2, 3, 4}),
		didx,
		data,
		testChunk{"HIRC", []byte("hierarchy-objects")},
		testChunk{"STID", []byte{9, 8, 7}},
	)
}

func loadBytes(t *testing.T, data []byte) *Container {
	t.Helper()
	c, err := Load(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return c
}
