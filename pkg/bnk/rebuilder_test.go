package bnk

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestRebuild_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		bank []byte
	}{
		{"sample bank", sampleBank()},
		{"header only", encodeChunks(headerChunk(134, 9, nil))},
		{"trailing bytes", append(sampleBank(), 0xEE, 0xEE)},
		{"all opaque kinds", encodeChunks(
			headerChunk(140, 3, fill(12, 0x5A)),
			testChunk{"STMG", []byte("state")},
			testChunk{"ENVS", []byte("env")},
			testChunk{"FXPR", nil},
			testChunk{"PLAT", []byte("Windows")},
			testChunk{"INIT", fill(5, 1)},
			testChunk{"HIRC", fill(33, 2)},
			testChunk{"STID", fill(3, 3)},
		)},
		{"single asset", func() []byte {
			didx, data := mediaChunks(testAsset{77, fill(13, 4)})
			return encodeChunks(headerChunk(134, 1, nil), didx, data)
		}()},
		{"aligned assets", func() []byte {
			didx, data := mediaChunks(testAsset{1, fill(16, 1)}, testAsset{2, fill(32, 2)}, testAsset{3, fill(16, 3)})
			return encodeChunks(headerChunk(134, 1, nil), didx, data)
		}()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := loadBytes(t, tc.bank)
			rebuilt, err := Rebuild(c)
			if err != nil {
				t.Fatalf("Rebuild() unexpected error: %v", err)
			}
			if !bytes.Equal(rebuilt, tc.bank) {
				t.Errorf("Rebuild() differs at offset %d", firstMismatch(rebuilt, tc.bank))
			}
		})
	}
}

func TestRebuild_Idempotent(t *testing.T) {
	c := loadBytes(t, sampleBank())

	first, err := Rebuild(c)
	if err != nil {
		t.Fatalf("Rebuild() unexpected error: %v", err)
	}
	second, err := Rebuild(c)
	if err != nil {
		t.Fatalf("Rebuild() unexpected error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("consecutive rebuilds should be identical")
	}
}

func TestPaddedLength(t *testing.T) {
	testCases := []struct {
		name     string
		sizes    []int
		expected int
	}{
		{"empty", nil, 0},
		{"single unaligned", []int{10}, 10},
		{"two assets", []int{10, 7}, 23},
		{"aligned first", []int{16, 1}, 17},
		{"three assets", []int{1, 17, 5}, 16 + 32 + 5},
		{"zero sized middle", []int{3, 0, 3}, 16 + 0 + 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PaddedLength(tc.sizes); got != tc.expected {
				t.Errorf("PaddedLength(%v) = %d, want %d", tc.sizes, got, tc.expected)
			}
		})
	}
}

func TestRebuild_AfterReplace(t *testing.T) {
	c := loadBytes(t, sampleBank())
	a, _ := c.Library.Get(100)
	NewReplaceCommand(a, fill(40, 0x77), "").Execute()

	rebuilt, err := Rebuild(c)
	if err != nil {
		t.Fatalf("Rebuild() unexpected error: %v", err)
	}

	reloaded := loadBytes(t, rebuilt)
	sizes := []int{40, 32, 7}
	for i, s := range sizes {
		if reloaded.Library.At(i).Size() != s {
			t.Errorf("asset %d size = %d, want %d", i, reloaded.Library.At(i).Size(), s)
		}
	}
	if !bytes.Equal(reloaded.Library.At(0).Data, fill(40, 0x77)) {
		t.Error("replaced payload not written")
	}
	if !bytes.Equal(reloaded.Library.At(2).Data, fill(7, 0xC3)) {
		t.Error("following assets should be unchanged")
	}

	idx, _ := reloaded.Section(KindAssetIndex)
	records := idx.(*AssetIndexSection).Records
	expectedOffsets := []uint32{0, 48, 80}
	for i, off := range expectedOffsets {
		if records[i].RelativeOffset != off {
			t.Errorf("record %d offset = %d, want %d", i, records[i].RelativeOffset, off)
		}
	}

	data, _ := reloaded.Section(KindAssetData)
	if got := data.Descriptor().Size; got != uint32(PaddedLength(sizes)) {
		t.Errorf("data chunk size = %d, want %d", got, PaddedLength(sizes))
	}

	// Padding bytes are zero
	start := data.Descriptor().PayloadOffset()
	padding := rebuilt[start+40 : start+48]
	if !bytes.Equal(padding, make([]byte, 8)) {
		t.Errorf("padding = %v, want zeros", padding)
	}

	// Opaque chunks keep their bytes
	hirc, _ := reloaded.Section(KindObjectHierarchy)
	if string(hirc.(*OpaqueSection).Payload) != "hierarchy-objects" {
		t.Error("opaque chunk changed")
	}
}

func TestRebuild_ShrinkLastAsset(t *testing.T) {
	c := loadBytes(t, sampleBank())
	a, _ := c.Library.Get(300)
	NewReplaceCommand(a, []byte{1}, "").Execute()

	rebuilt, err := Rebuild(c)
	if err != nil {
		t.Fatalf("Rebuild() unexpected error: %v", err)
	}
	data, _ := loadBytes(t, rebuilt).Section(KindAssetData)
	if got := data.Descriptor().Size; got != 16+32+1 {
		t.Errorf("data chunk size = %d, want 49", got)
	}
	idx, _ := loadBytes(t, rebuilt).Section(KindAssetIndex)
	last := idx.(*AssetIndexSection).Records[2]
	if last.Size != 1 {
		t.Errorf("last record size = %d, want 1", last.Size)
	}
	// Header chunk is 8 + 12 bytes, the index size field follows the DIDX tag
	sizeField := binary.LittleEndian.Uint32(rebuilt[20+4:])
	if sizeField != 36 {
		t.Errorf("index chunk size = %d, want 36", sizeField)
	}
}
