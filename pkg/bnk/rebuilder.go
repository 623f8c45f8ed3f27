package bnk

import (
	"encoding/binary"
	"fmt"

	"github.com/hansbonini/bnktools/pkg/common"
	"github.com/valyala/bytebufferpool"
)

// AssetAlignment is the boundary every asset but the last is padded to.
const AssetAlignment = 16

// Pad16 rounds n up to the next multiple of AssetAlignment.
func Pad16(n int) int {
	return common.AlignTo(n, AssetAlignment)
}

// PaddedLength returns the media data payload length for assets of the given
// sizes: every size padded to AssetAlignment except the last one.
func PaddedLength(sizes []int) int {
	total := 0
	for i, s := range sizes {
		if i == len(sizes)-1 {
			total += s
		} else {
			total += Pad16(s)
		}
	}
	return total
}

// Rebuild serializes c into a new bank image. Chunks are emitted in source
// order; the media index and media data are recomputed from the library and
// every other chunk is copied verbatim. Rebuild does not modify c.
func Rebuild(c *Container) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	assets := c.Library.Assets()
	for _, s := range c.Sections {
		var err error
		switch sec := s.(type) {
		case *HeaderSection:
			err = writeHeader(buf, sec)
		case *AssetIndexSection:
			err = writeAssetIndex(buf, assets)
		case *AssetDataSection:
			err = writeAssetData(buf, assets)
		case *OpaqueSection:
			err = writeChunk(buf, sec.Kind(), sec.Payload)
		default:
			err = fmt.Errorf("no writer for section %T", s)
		}
		if err != nil {
			return nil, err
		}
	}
	buf.Write(c.Trailing)

	common.LogDebug(common.DebugRebuildComplete, len(c.Sections), buf.Len())

	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

func writeChunkHeader(buf *bytebufferpool.ByteBuffer, kind ChunkKind, size int) error {
	size32, err := common.SafeIntToUint32(size)
	if err != nil {
		return &BoundsError{Reason: fmt.Sprintf("%s too large: %v", kind, err)}
	}
	tag := kind.Tag()
	buf.Write(tag[:])
	buf.B = binary.LittleEndian.AppendUint32(buf.B, size32)
	return nil
}

func writeChunk(buf *bytebufferpool.ByteBuffer, kind ChunkKind, payload []byte) error {
	if err := writeChunkHeader(buf, kind, len(payload)); err != nil {
		return err
	}
	buf.Write(payload)
	return nil
}

func writeHeader(buf *bytebufferpool.ByteBuffer, h *HeaderSection) error {
	if err := writeChunkHeader(buf, KindHeader, HeaderFixedSize+len(h.Tail)); err != nil {
		return err
	}
	buf.B = binary.LittleEndian.AppendUint32(buf.B, h.Version)
	buf.B = binary.LittleEndian.AppendUint32(buf.B, h.BankID)
	buf.Write(h.Tail)
	return nil
}

func writeAssetIndex(buf *bytebufferpool.ByteBuffer, assets []*Asset) error {
	if err := writeChunkHeader(buf, KindAssetIndex, len(assets)*IndexRecordSize); err != nil {
		return err
	}

	offset := 0
	for _, a := range assets {
		offset32, err := common.SafeIntToUint32(offset)
		if err != nil {
			return &BoundsError{Reason: fmt.Sprintf("asset %d offset: %v", a.ID, err)}
		}
		size32, err := common.SafeIntToUint32(len(a.Data))
		if err != nil {
			return &BoundsError{Reason: fmt.Sprintf("asset %d size: %v", a.ID, err)}
		}
		buf.B = binary.LittleEndian.AppendUint32(buf.B, a.ID)
		buf.B = binary.LittleEndian.AppendUint32(buf.B, offset32)
		buf.B = binary.LittleEndian.AppendUint32(buf.B, size32)

		common.LogDebug(common.DebugRebuildAsset, a.ID, offset, len(a.Data), Pad16(len(a.Data)))
		offset += Pad16(len(a.Data))
	}
	return nil
}

func writeAssetData(buf *bytebufferpool.ByteBuffer, assets []*Asset) error {
	sizes := make([]int, len(assets))
	for i, a := range assets {
		sizes[i] = len(a.Data)
	}
	if err := writeChunkHeader(buf, KindAssetData, PaddedLength(sizes)); err != nil {
		return err
	}

	var zeros [AssetAlignment]byte
	for i, a := range assets {
		buf.Write(a.Data)
		if i == len(assets)-1 {
			break
		}
		buf.Write(zeros[:Pad16(len(a.Data))-len(a.Data)])
	}
	return nil
}
